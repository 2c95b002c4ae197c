package history

//go:generate mockgen -source=store.go -destination=mocks/mocks.go -package=mocks Store

import "context"

// Store persists ledger entries. Implementations must treat entries as
// append-only; there is deliberately no update or delete.
type Store interface {
	Append(ctx context.Context, entry Entry) (Entry, error)
	ListByRecord(ctx context.Context, table string, recordID int64) ([]Entry, error)
}
