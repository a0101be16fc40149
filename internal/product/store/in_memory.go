package store

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"github.com/abgdnv/kasir/internal/product/errors"
)

// inMemory implements ProductStore using an in-memory map.
type inMemory struct {
	mu       sync.RWMutex
	products map[int64]Row
	nextID   int64
}

// NewInMemoryStore creates a new instance of ProductStore
func NewInMemoryStore() ProductStore {
	return &inMemory{
		products: make(map[int64]Row),
		nextID:   1,
	}
}

// Insert stores a copy of the row under a fresh ID.
func (s *inMemory) Insert(ctx context.Context, row Row) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	row.ID = s.nextID
	s.nextID++
	s.products[row.ID] = row
	return row.ID, nil
}

// InsertAll stores every row under the lock, so readers never see part of the batch.
func (s *inMemory) InsertAll(ctx context.Context, rows []Row) ([]int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]int64, len(rows))
	for i, row := range rows {
		row.ID = s.nextID
		s.nextID++
		s.products[row.ID] = row
		ids[i] = row.ID
	}
	return ids, nil
}

// Update replaces the row with the same ID.
func (s *inMemory) Update(ctx context.Context, row Row) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.products[row.ID]; !exists {
		return errors.ErrProductNotFound
	}
	s.products[row.ID] = row
	return nil
}

// Delete removes a product by its ID.
func (s *inMemory) Delete(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.products, id)
	return nil
}

// FindAll retrieves all products ordered by ID.
func (s *inMemory) FindAll(ctx context.Context) ([]Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := make([]Row, 0, len(s.products))
	for _, r := range s.products {
		list = append(list, r)
	}
	slices.SortFunc(list, func(a, b Row) int {
		return cmp.Compare(a.ID, b.ID)
	})
	return list, nil
}

// FindByID retrieves a product by its ID.
func (s *inMemory) FindByID(ctx context.Context, id int64) (*Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.products[id]
	if !ok {
		return nil, errors.ErrProductNotFound
	}
	return &r, nil
}

func (s *inMemory) Close() error { return nil }

