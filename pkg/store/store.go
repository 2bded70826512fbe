// Package store persists named diagrams so the server can re-render
// them without re-uploading the source document. Implementations keep
// the graph document plus bookkeeping metadata; rendered artifacts stay
// in the cache layer, not here.
package store

import (
	"context"
	"time"

	"github.com/loomviz/loom/pkg/errors"
	"github.com/loomviz/loom/pkg/graph"
)

// Diagram is one stored document.
type Diagram struct {
	ID        string    `json:"id" bson:"_id"`
	Name      string    `json:"name" bson:"name"`
	Doc       graph.Doc `json:"doc" bson:"doc"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// Store is the persistence contract for named diagrams.
type Store interface {
	// Put inserts or replaces a diagram by ID.
	Put(ctx context.Context, d Diagram) error

	// Get fetches a diagram by ID; NOT_FOUND when absent.
	Get(ctx context.Context, id string) (Diagram, error)

	// List returns all stored diagrams sorted by update time, newest
	// first.
	List(ctx context.Context) ([]Diagram, error)

	// Delete removes a diagram. Deleting a missing ID is NOT_FOUND.
	Delete(ctx context.Context, id string) error

	// Close releases backend resources.
	Close(ctx context.Context) error
}

func notFound(id string) error {
	return errors.New(errors.ErrCodeNotFound, "diagram %q not found", id)
}
