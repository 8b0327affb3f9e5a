package cache

import (
	"context"
	"strings"

	"github.com/matzehuels/timeline/pkg/errors"
)

// Open returns the cache selected by url:
//   - "" or "none": a NullCache
//   - "redis://..." or "rediss://...": a RedisCache
//   - "file://<dir>" or a plain directory path: a FileCache
func Open(ctx context.Context, url string) (Cache, error) {
	switch {
	case url == "" || url == "none":
		return NewNullCache(), nil
	case strings.HasPrefix(url, "redis://"), strings.HasPrefix(url, "rediss://"):
		return NewRedisCache(ctx, url)
	case strings.Contains(url, "://") && !strings.HasPrefix(url, "file://"):
		return nil, errors.New(errors.ErrCodeInvalidConfig, "unsupported cache url: %s", url)
	}
	fc, err := NewFileCache(strings.TrimPrefix(url, "file://"))
	if err != nil {
		return nil, err
	}
	return fc, nil
}
