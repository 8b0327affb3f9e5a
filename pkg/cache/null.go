package cache

import (
	"context"
	"time"
)

// NullCache stores nothing. It backs --no-cache and the "none" cache URL.
type NullCache struct{}

func NewNullCache() Cache {
	return &NullCache{}
}

// Get reports a miss for every key.
func (c *NullCache) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, nil
}

func (c *NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (c *NullCache) Delete(context.Context, string) error                     { return nil }
func (c *NullCache) Close() error                                             { return nil }

var _ Cache = (*NullCache)(nil)
