package history

import (
	"context"
	"sync"
)

// InMemoryStore keeps ledger entries in process. Used by unit tests and the
// dev server; production uses the Postgres store.
type InMemoryStore struct {
	mu      sync.RWMutex
	nextID  int64
	entries []Entry
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{nextID: 1}
}

func (s *InMemoryStore) Append(ctx context.Context, entry Entry) (Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry.ID = s.nextID
	s.nextID++
	s.entries = append(s.entries, entry)
	return entry, nil
}

func (s *InMemoryStore) ListByRecord(ctx context.Context, table string, recordID int64) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Entry
	for _, e := range s.entries {
		if e.Table == table && e.RecordID == recordID {
			out = append(out, e)
		}
	}
	return out, nil
}
