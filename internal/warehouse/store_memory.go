package warehouse

import (
	"context"
	"fmt"
	"sync"

	id "boxtribute/pkg/domain"
	"boxtribute/pkg/platform/sentinel"
)

// InMemoryStore backs unit tests and the dev server with seeded reference
// data.
type InMemoryStore struct {
	mu        sync.RWMutex
	bases     map[id.BaseID]*Base
	locations map[id.LocationID]*Location
	products  map[id.ProductID]*Product
	sizes     map[id.SizeID]*Size
	tags      map[id.TagID]*Tag
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		bases:     map[id.BaseID]*Base{},
		locations: map[id.LocationID]*Location{},
		products:  map[id.ProductID]*Product{},
		sizes:     map[id.SizeID]*Size{},
		tags:      map[id.TagID]*Tag{},
	}
}

// Seed methods register reference data. They overwrite by id.

func (s *InMemoryStore) SeedBase(b *Base) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bases[b.ID] = b
}

func (s *InMemoryStore) SeedLocation(l *Location) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.locations[l.ID] = l
}

func (s *InMemoryStore) SeedProduct(p *Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[p.ID] = p
}

func (s *InMemoryStore) SeedSize(sz *Size) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sizes[sz.ID] = sz
}

func (s *InMemoryStore) SeedTag(t *Tag) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tags[t.ID] = t
}

func (s *InMemoryStore) BaseByID(ctx context.Context, baseID id.BaseID) (*Base, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if b, ok := s.bases[baseID]; ok {
		cp := *b
		return &cp, nil
	}
	return nil, fmt.Errorf("base %s: %w", baseID, sentinel.ErrNotFound)
}

func (s *InMemoryStore) LocationByID(ctx context.Context, locationID id.LocationID) (*Location, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if l, ok := s.locations[locationID]; ok {
		cp := *l
		return &cp, nil
	}
	return nil, fmt.Errorf("location %s: %w", locationID, sentinel.ErrNotFound)
}

func (s *InMemoryStore) ProductByID(ctx context.Context, productID id.ProductID) (*Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if p, ok := s.products[productID]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, fmt.Errorf("product %s: %w", productID, sentinel.ErrNotFound)
}

func (s *InMemoryStore) SizeByID(ctx context.Context, sizeID id.SizeID) (*Size, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if sz, ok := s.sizes[sizeID]; ok {
		cp := *sz
		return &cp, nil
	}
	return nil, fmt.Errorf("size %s: %w", sizeID, sentinel.ErrNotFound)
}

func (s *InMemoryStore) TagByID(ctx context.Context, tagID id.TagID) (*Tag, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if t, ok := s.tags[tagID]; ok {
		cp := *t
		return &cp, nil
	}
	return nil, fmt.Errorf("tag %s: %w", tagID, sentinel.ErrNotFound)
}
