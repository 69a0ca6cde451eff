package cart

import (
	"context"
	"sync"
)

// MemoryStore is an in-memory Store. It is safe for concurrent use and keeps
// lines in insertion order. Contents are lost when the process exits.
type MemoryStore struct {
	mu    sync.RWMutex
	lines []Line
	index map[string]int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{index: make(map[string]int)}
}

func (s *MemoryStore) UpsertLine(_ context.Context, productID string, fields DisplayFields) error {
	if productID == "" {
		return ErrInvalidProduct
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if i, ok := s.index[productID]; ok {
		s.lines[i].DisplayFields = copyFields(fields)
		s.lines[i].Quantity = clampAdd(s.lines[i].Quantity, 1)
		return nil
	}
	s.index[productID] = len(s.lines)
	s.lines = append(s.lines, Line{ProductID: productID, DisplayFields: copyFields(fields), Quantity: 1})
	return nil
}

func (s *MemoryStore) AdjustQuantity(_ context.Context, productID string, delta int32) (int32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[productID]
	if !ok {
		return 0, ErrNotFound
	}
	s.lines[i].Quantity = clampAdd(s.lines[i].Quantity, delta)
	return s.lines[i].Quantity, nil
}

func (s *MemoryStore) DeleteLine(_ context.Context, productID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[productID]
	if !ok {
		return nil
	}
	s.lines = append(s.lines[:i], s.lines[i+1:]...)
	delete(s.index, productID)
	for j := i; j < len(s.lines); j++ {
		s.index[s.lines[j].ProductID] = j
	}
	return nil
}

func (s *MemoryStore) DeleteAllLines(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lines = nil
	s.index = make(map[string]int)
	return nil
}

func (s *MemoryStore) FetchLine(_ context.Context, productID string) (*Line, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.index[productID]
	if !ok {
		return nil, nil
	}
	line := s.lines[i]
	line.DisplayFields = copyFields(line.DisplayFields)
	return &line, nil
}

func (s *MemoryStore) FetchAllLines(_ context.Context) ([]Line, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	lines := make([]Line, len(s.lines))
	for i, l := range s.lines {
		l.DisplayFields = copyFields(l.DisplayFields)
		lines[i] = l
	}
	return lines, nil
}

func (s *MemoryStore) FetchAllProductIDs(_ context.Context) (IDSet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make(IDSet, len(s.lines))
	for _, l := range s.lines {
		ids[l.ProductID] = struct{}{}
	}
	return ids, nil
}

// copyFields detaches the price pointer so callers cannot mutate stored state.
func copyFields(f DisplayFields) DisplayFields {
	if f.Price != nil {
		v := *f.Price
		f.Price = &v
	}
	return f
}
