package store

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore keeps diagrams in process memory. It backs tests and
// single-process servers that don't need durability.
type MemoryStore struct {
	mu       sync.RWMutex
	diagrams map[string]Diagram
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{diagrams: make(map[string]Diagram)}
}

func (s *MemoryStore) Put(ctx context.Context, d Diagram) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.diagrams[d.ID] = d
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (Diagram, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.diagrams[id]
	if !ok {
		return Diagram{}, notFound(id)
	}
	return d, nil
}

func (s *MemoryStore) List(ctx context.Context) ([]Diagram, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Diagram, 0, len(s.diagrams))
	for _, d := range s.diagrams {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out, nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.diagrams[id]; !ok {
		return notFound(id)
	}
	delete(s.diagrams, id)
	return nil
}

func (s *MemoryStore) Close(ctx context.Context) error { return nil }

var _ Store = (*MemoryStore)(nil)
