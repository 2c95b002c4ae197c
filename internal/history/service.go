package history

import (
	"context"
	"log/slog"

	id "boxtribute/pkg/domain"
	dErrors "boxtribute/pkg/domain-errors"
	"boxtribute/pkg/requestcontext"
)

// Publisher fans appended entries out to an external stream. Emission is
// best effort: a failed or slow publisher must never fail the originating
// transaction.
type Publisher interface {
	Publish(entry Entry)
}

// Ledger stamps, persists, and fans out history entries. It joins the
// caller's transaction through the context, so a rolled-back mutation leaves
// no ledger trace.
type Ledger struct {
	store     Store
	publisher Publisher
	logger    *slog.Logger
}

type Option func(*Ledger)

func WithPublisher(p Publisher) Option {
	return func(l *Ledger) {
		l.publisher = p
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(l *Ledger) {
		l.logger = logger
	}
}

func NewLedger(store Store, opts ...Option) *Ledger {
	l := &Ledger{store: store, logger: slog.Default()}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Record stamps the entries with the acting user and the request time, then
// appends them in order. The first failure aborts; partially recorded
// batches are rolled back with the enclosing transaction.
func (l *Ledger) Record(ctx context.Context, actorID id.UserID, entries ...Entry) error {
	now := requestcontext.Now(ctx)
	for _, entry := range entries {
		entry.ActorID = actorID
		entry.RecordedAt = now
		appended, err := l.store.Append(ctx, entry)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to append history entry")
		}
		if l.publisher != nil {
			l.publisher.Publish(appended)
		}
	}
	return nil
}

// ListByBox returns the audit trail of a box, oldest first.
func (l *Ledger) ListByBox(ctx context.Context, boxID id.BoxID) ([]Entry, error) {
	entries, err := l.store.ListByRecord(ctx, TableStock, int64(boxID))
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list history")
	}
	return entries, nil
}
