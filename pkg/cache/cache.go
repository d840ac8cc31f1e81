// Package cache stores computed layouts and rendered artifacts.
//
// # Backends
//
//   - [FileCache]: one JSON file per entry under a directory (CLI default)
//   - [RedisCache]: a shared Redis instance (server deployments)
//   - [NullCache]: stores nothing (--no-cache)
//
// # Keys
//
// A [Keyer] derives keys from content hashes plus the options that affect
// the cached value, so changing the frame size or the output format never
// returns a stale entry:
//
//	k := cache.NewDefaultKeyer()
//	layoutKey := k.LayoutKey(cache.Hash(input), cache.LayoutKeyOpts{Root: "/", Width: 800, Height: 600})
//	svgKey := k.ArtifactKey(cache.Hash(layoutJSON), cache.ArtifactKeyOpts{Format: "svg"})
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with per-entry expiry.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get returns the stored value and true, or false on a miss.
	// Expired entries are misses.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases the backend.
	Close() error
}

// LayoutKeyOpts holds the options that change a computed layout.
type LayoutKeyOpts struct {
	Root     string `json:"root"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	MaxDepth int    `json:"max_depth,omitempty"`
}

// ArtifactKeyOpts holds the options that change a rendered artifact.
type ArtifactKeyOpts struct {
	Format string  `json:"format"`
	Minify bool    `json:"minify,omitempty"`
	Title  string  `json:"title,omitempty"`
	Scale  float64 `json:"scale,omitempty"`
}

// Keyer derives cache keys.
type Keyer interface {
	// LayoutKey returns the key of the layout computed from the input with
	// the given hash.
	LayoutKey(inputHash string, opts LayoutKeyOpts) string
	// ArtifactKey returns the key of an artifact rendered from the layout
	// with the given hash.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer produces "layout:<sha256>" and "artifact:<sha256>" keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// LayoutKey implements [Keyer].
func (DefaultKeyer) LayoutKey(inputHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", inputHash, opts)
}

// ArtifactKey implements [Keyer].
func (DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", layoutHash, opts)
}

var _ Keyer = DefaultKeyer{}
