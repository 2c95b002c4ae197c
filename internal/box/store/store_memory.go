package store

import (
	"context"
	"fmt"
	"sync"

	"boxtribute/internal/box/models"
	id "boxtribute/pkg/domain"
	"boxtribute/pkg/platform/sentinel"
)

// InMemoryStore backs unit tests and the dev server.
type InMemoryStore struct {
	mu     sync.RWMutex
	nextID int64
	byID   map[id.BoxID]*models.Box
	byLbl  map[id.BoxLabel]id.BoxID
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{
		nextID: 1,
		byID:   map[id.BoxID]*models.Box{},
		byLbl:  map[id.BoxLabel]id.BoxID{},
	}
}

func (s *InMemoryStore) Create(ctx context.Context, box *models.Box) (*models.Box, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byLbl[box.Label]; ok {
		return nil, fmt.Errorf("box label %s: %w", box.Label, sentinel.ErrConflict)
	}
	cp := cloneBox(box)
	cp.ID = id.BoxID(s.nextID)
	s.nextID++
	s.byID[cp.ID] = cp
	s.byLbl[cp.Label] = cp.ID
	return cloneBox(cp), nil
}

func (s *InMemoryStore) ByLabel(ctx context.Context, label id.BoxLabel) (*models.Box, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	boxID, ok := s.byLbl[label]
	if !ok {
		return nil, fmt.Errorf("box %s: %w", label, sentinel.ErrNotFound)
	}
	return cloneBox(s.byID[boxID]), nil
}

func (s *InMemoryStore) ByID(ctx context.Context, boxID id.BoxID) (*models.Box, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	box, ok := s.byID[boxID]
	if !ok {
		return nil, fmt.Errorf("box %s: %w", boxID, sentinel.ErrNotFound)
	}
	return cloneBox(box), nil
}

func (s *InMemoryStore) Update(ctx context.Context, box *models.Box) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[box.ID]; !ok {
		return fmt.Errorf("box %s: %w", box.ID, sentinel.ErrNotFound)
	}
	s.byID[box.ID] = cloneBox(box)
	return nil
}

func (s *InMemoryStore) LabelExists(ctx context.Context, label id.BoxLabel) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.byLbl[label]
	return ok, nil
}

func cloneBox(box *models.Box) *models.Box {
	cp := *box
	cp.TagIDs = append([]id.TagID(nil), box.TagIDs...)
	if box.DeletedOn != nil {
		t := *box.DeletedOn
		cp.DeletedOn = &t
	}
	return &cp
}
