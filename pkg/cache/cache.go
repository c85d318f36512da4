// Package cache provides pluggable byte caches and cache-key derivation for
// the composition pipeline. Keys are content-addressed: a graph's key is the
// hash of its canonical JSON, so edits invalidate naturally without explicit
// bookkeeping.
package cache

import (
	"context"
	"time"
)

// Default TTLs per artifact class. Validation and layout results are cheap
// to recompute, rendered artifacts are not.
const (
	TTLValidation = 15 * time.Minute
	TTLLayout     = 1 * time.Hour
	TTLArtifact   = 24 * time.Hour
)

// Cache is a byte-oriented cache with TTL expiry. Implementations must be
// safe for concurrent use.
type Cache interface {
	// Get returns the cached bytes for key. The bool reports whether the
	// key was present and unexpired; a miss is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A non-positive ttl means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes the key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases any resources held by the cache.
	Close() error
}

// LayoutKeyOpts distinguishes layout results computed with different
// spacing parameters.
type LayoutKeyOpts struct {
	SpacingX float64 `json:"spacing_x"`
	SpacingY float64 `json:"spacing_y"`
}

// ArtifactKeyOpts distinguishes rendered artifacts of the same composition.
type ArtifactKeyOpts struct {
	Format string `json:"format"` // "dot" or "svg"
}

// Keyer derives cache keys for the pipeline's stages.
type Keyer interface {
	// ValidationKey keys a validation report by the composition hash.
	ValidationKey(graphHash string) string

	// LayoutKey keys an auto-layout result by composition hash and
	// layout options.
	LayoutKey(graphHash string, opts LayoutKeyOpts) string

	// ArtifactKey keys a rendered artifact by composition hash and
	// render options.
	ArtifactKey(graphHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer hashes key components with SHA-256 under a per-stage prefix.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// ValidationKey generates a key for validation report caching.
func (k *DefaultKeyer) ValidationKey(graphHash string) string {
	return hashKey("validate", graphHash)
}

// LayoutKey generates a key for layout caching.
func (k *DefaultKeyer) LayoutKey(graphHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", graphHash, opts)
}

// ArtifactKey generates a key for rendered artifact caching.
func (k *DefaultKeyer) ArtifactKey(graphHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", graphHash, opts)
}

var _ Keyer = (*DefaultKeyer)(nil)
