package qrcode

import (
	"context"
	"fmt"
	"sync"

	id "boxtribute/pkg/domain"
	"boxtribute/pkg/platform/sentinel"
)

// InMemoryStore backs unit tests and the dev server.
type InMemoryStore struct {
	mu    sync.Mutex
	codes map[id.QRCodeID]QRCode
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{codes: map[id.QRCodeID]QRCode{}}
}

func (s *InMemoryStore) Create(ctx context.Context, code QRCode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.codes[code.ID]; ok {
		return fmt.Errorf("qr code %s: %w", code.ID, sentinel.ErrConflict)
	}
	s.codes[code.ID] = code
	return nil
}

func (s *InMemoryStore) ByID(ctx context.Context, qrID id.QRCodeID) (*QRCode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	code, ok := s.codes[qrID]
	if !ok {
		return nil, fmt.Errorf("qr code %s: %w", qrID, sentinel.ErrNotFound)
	}
	cp := code
	return &cp, nil
}

func (s *InMemoryStore) Link(ctx context.Context, qrID id.QRCodeID, boxID id.BoxID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	code, ok := s.codes[qrID]
	if !ok {
		return fmt.Errorf("qr code %s: %w", qrID, sentinel.ErrNotFound)
	}
	if code.IsLinked() {
		return fmt.Errorf("qr code %s already linked to box %s: %w", qrID, code.BoxID, sentinel.ErrConflict)
	}
	code.BoxID = boxID
	s.codes[qrID] = code
	return nil
}
