// Package cache provides pluggable byte caches for the render pipeline.
// Backends store opaque blobs keyed by content hashes, so a warm cache can
// skip graph normalization, layout, or artifact emission entirely.
package cache

import (
	"context"
	"time"
)

// Default TTLs per pipeline stage. Layouts and artifacts are derived
// purely from their inputs, so they can live longer than parsed graphs.
const (
	TTLGraph    = 1 * time.Hour
	TTLLayout   = 24 * time.Hour
	TTLArtifact = 24 * time.Hour
)

// Cache is a byte-oriented cache with TTL support.
type Cache interface {
	// Get retrieves a value. The second return reports whether the key
	// was present and unexpired.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value. A zero ttl means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// GraphKeyOpts carry the inputs that affect graph normalization.
type GraphKeyOpts struct {
	Direction string
}

// LayoutKeyOpts carry the inputs that affect node placement.
type LayoutKeyOpts struct {
	Algorithm      string
	Direction      string
	NodeSpacing    float64
	LayerSpacing   float64
	ClusterPadding float64
	Curve          string
}

// ArtifactKeyOpts carry the inputs that affect a rendered artifact.
type ArtifactKeyOpts struct {
	Format string
	Theme  string
}

// Keyer generates cache keys for each pipeline stage.
type Keyer interface {
	GraphKey(sourceHash string, opts GraphKeyOpts) string
	LayoutKey(graphHash string, opts LayoutKeyOpts) string
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer hashes the option structs into stage-prefixed keys.
type DefaultKeyer struct{}

func NewDefaultKeyer() Keyer { return &DefaultKeyer{} }

func (k *DefaultKeyer) GraphKey(sourceHash string, opts GraphKeyOpts) string {
	return hashKey("graph", sourceHash, opts)
}

func (k *DefaultKeyer) LayoutKey(graphHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", graphHash, opts)
}

func (k *DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", layoutHash, opts)
}
