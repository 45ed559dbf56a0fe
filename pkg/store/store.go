// Package store persists plan graphs. The production backend is MongoDB;
// the interface is small enough that tests run against an in-memory map.
package store

import (
	"context"
	"time"

	"github.com/strataviz/strataviz/pkg/graph"
)

// GraphInfo is the listing view of a stored graph: metadata without the
// node and edge payload.
type GraphInfo struct {
	ID        string    `json:"id" bson:"_id"`
	Name      string    `json:"name" bson:"name"`
	NodeCount int       `json:"node_count" bson:"node_count"`
	EdgeCount int       `json:"edge_count" bson:"edge_count"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// Store persists graphs by ID. SaveGraph overwrites an existing graph with
// the same ID. LoadGraph returns a NOT_FOUND error for unknown IDs.
type Store interface {
	SaveGraph(ctx context.Context, g *graph.Graph) error
	LoadGraph(ctx context.Context, id string) (*graph.Graph, error)
	ListGraphs(ctx context.Context) ([]GraphInfo, error)
	DeleteGraph(ctx context.Context, id string) error
	Close(ctx context.Context) error
}
