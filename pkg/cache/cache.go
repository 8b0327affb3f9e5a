// Package cache stores rendered timelines and their layouts.
//
// Entries are addressed by content keys produced by a [Keyer]: the same
// document rendered with the same configuration always maps to the same key,
// so a repeated render can skip the layout and drawing stages entirely.
//
// Three backends are provided:
//   - [FileCache]: one file per entry under the user's cache directory (CLI)
//   - [RedisCache]: a shared Redis instance (render API behind a load balancer)
//   - [NullCache]: caching disabled
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with optional expiry.
type Cache interface {
	// Get returns the value for key. A miss is reported as (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A zero ttl means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources held by the cache.
	Close() error
}

// Default time-to-live for cache entries.
const (
	TTLLayout   = 7 * 24 * time.Hour
	TTLArtifact = 7 * 24 * time.Hour
)

// Key type names reported to observability hooks.
const (
	KeyTypeLayout   = "layout"
	KeyTypeArtifact = "artifact"
)

// LayoutKeyOpts are the inputs that change a computed layout.
type LayoutKeyOpts struct {
	// Config is the canonical string form of the layout configuration.
	Config string `json:"config"`
}

// ArtifactKeyOpts are the inputs that change a rendered artifact.
type ArtifactKeyOpts struct {
	Format   string  `json:"format"`
	PNGScale float64 `json:"png_scale,omitempty"`
}

// Keyer generates cache keys.
type Keyer interface {
	// LayoutKey returns the key for the layout of a document.
	LayoutKey(docHash string, opts LayoutKeyOpts) string

	// ArtifactKey returns the key for an artifact rendered from a layout.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer builds keys of the form "<kind>:<sha256>".
type DefaultKeyer struct{}

// NewDefaultKeyer creates the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// LayoutKey generates a key for layout caching.
func (DefaultKeyer) LayoutKey(docHash string, opts LayoutKeyOpts) string {
	return hashKey(KeyTypeLayout, docHash, opts)
}

// ArtifactKey generates a key for artifact caching.
func (DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey(KeyTypeArtifact, layoutHash, opts)
}

var _ Keyer = DefaultKeyer{}
