package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/strataviz/strataviz/pkg/errors"
	"github.com/strataviz/strataviz/pkg/graph"
)

// MemoryStore is an in-process Store for tests and for running the server
// without a database.
type MemoryStore struct {
	mu     sync.RWMutex
	graphs map[string]graphDoc
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{graphs: make(map[string]graphDoc)}
}

// SaveGraph stores a deep copy of the graph under its ID.
func (s *MemoryStore) SaveGraph(ctx context.Context, g *graph.Graph) error {
	if g.ID == "" {
		return errors.New(errors.ErrCodeInvalidGraph, "graph has no id")
	}
	data, err := graph.MarshalGraph(g)
	if err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "save graph %s", g.ID)
	}
	cp, err := graph.UnmarshalGraph(data)
	if err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "save graph %s", g.ID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.graphs[g.ID] = graphDoc{
		ID:        g.ID,
		Name:      g.Name,
		NodeCount: g.NodeCount(),
		EdgeCount: g.EdgeCount(),
		UpdatedAt: time.Now().UTC(),
		Graph:     cp,
	}
	return nil
}

// LoadGraph fetches a graph by ID.
func (s *MemoryStore) LoadGraph(ctx context.Context, id string) (*graph.Graph, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.graphs[id]
	if !ok {
		return nil, errors.New(errors.ErrCodeNotFound, "graph %s not found", id)
	}
	return doc.Graph, nil
}

// ListGraphs returns metadata for every stored graph, most recently
// updated first.
func (s *MemoryStore) ListGraphs(ctx context.Context) ([]GraphInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	infos := make([]GraphInfo, 0, len(s.graphs))
	for _, doc := range s.graphs {
		infos = append(infos, GraphInfo{
			ID:        doc.ID,
			Name:      doc.Name,
			NodeCount: doc.NodeCount,
			EdgeCount: doc.EdgeCount,
			UpdatedAt: doc.UpdatedAt,
		})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].UpdatedAt.After(infos[j].UpdatedAt) })
	return infos, nil
}

// DeleteGraph removes a graph by ID.
func (s *MemoryStore) DeleteGraph(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.graphs[id]; !ok {
		return errors.New(errors.ErrCodeNotFound, "graph %s not found", id)
	}
	delete(s.graphs, id)
	return nil
}

// Close does nothing for the in-memory store.
func (s *MemoryStore) Close(ctx context.Context) error { return nil }

// Ensure MemoryStore implements Store.
var _ Store = (*MemoryStore)(nil)
