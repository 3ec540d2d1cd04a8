// Package cache stores resolved drainage results and rendered artifacts so
// repeated runs over the same inputs skip the sweep.
//
// # Backends
//
//   - [FileCache]: one JSON file per entry under a local directory (CLI default)
//   - [RedisCache]: a shared redis instance, selected with DRAINFLOW_REDIS_URL
//   - [NullCache]: stores nothing (--no-cache)
//
// # Keys
//
// Keys are built by a [Keyer] from the content hash of the input grids and
// every option that changes the output, so a changed lambda or metric never
// hits a stale entry.
package cache

import (
	"context"
	"time"
)

// Cache is a byte store with per-entry expiry.
type Cache interface {
	// Get returns the value for key and whether it was found.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A ttl of zero never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases backend resources.
	Close() error
}

// Default time-to-live values.
const (
	TTLResult   = 7 * 24 * time.Hour
	TTLArtifact = 7 * 24 * time.Hour
)

// ResultKeyOpts are the options that change a resolved result.
type ResultKeyOpts struct {
	Metric       string  `json:"metric"`
	Lambda       float64 `json:"lambda"`
	FixedNetwork bool    `json:"fixed_network"`
	StrictAbort  bool    `json:"strict_abort"`
	CellSizeX    float64 `json:"cell_size_x"`
	CellSizeY    float64 `json:"cell_size_y"`
}

// ArtifactKeyOpts are the options that change a rendered artifact.
type ArtifactKeyOpts struct {
	Format   string  `json:"format"`
	MinArea  float64 `json:"min_area"`
	Detailed bool    `json:"detailed"`
}

// Keyer builds cache keys.
type Keyer interface {
	// ResultKey identifies a resolved result by the hash of its inputs.
	ResultKey(inputHash string, opts ResultKeyOpts) string
	// ArtifactKey identifies a rendered artifact by the hash of its result.
	ArtifactKey(resultHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer hashes the key components with SHA-256.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// ResultKey implements Keyer.
func (DefaultKeyer) ResultKey(inputHash string, opts ResultKeyOpts) string {
	return hashKey("result", inputHash, opts)
}

// ArtifactKey implements Keyer.
func (DefaultKeyer) ArtifactKey(resultHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", resultHash, opts)
}
