package agreement

import (
	"context"
	"fmt"
	"sync"

	id "boxtribute/pkg/domain"
	"boxtribute/pkg/platform/sentinel"
)

// InMemoryStore backs unit tests and the dev server.
type InMemoryStore struct {
	mu         sync.RWMutex
	agreements map[id.AgreementID]*Agreement
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{agreements: map[id.AgreementID]*Agreement{}}
}

func (s *InMemoryStore) Seed(a *Agreement) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.agreements[a.ID] = a
}

func (s *InMemoryStore) ByID(ctx context.Context, agreementID id.AgreementID) (*Agreement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if a, ok := s.agreements[agreementID]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, fmt.Errorf("transfer agreement %s: %w", agreementID, sentinel.ErrNotFound)
}
