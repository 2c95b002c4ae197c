package history

import (
	"context"
	"database/sql"
	"fmt"

	id "boxtribute/pkg/domain"
	txcontext "boxtribute/pkg/platform/tx"
)

// PostgresStore persists ledger entries in the history table. It joins an
// enclosing transaction when one is present in the context so history rows
// commit or roll back with the mutation that produced them.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type dbQuerier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *PostgresStore) querier(ctx context.Context) dbQuerier {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

func (s *PostgresStore) Append(ctx context.Context, entry Entry) (Entry, error) {
	const q = `
		INSERT INTO history
			(table_name, record_id, change_kind, changes, actor_id, recorded_at,
			 from_int, to_int, from_text, to_text, from_label, to_label)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id`
	err := s.querier(ctx).QueryRowContext(ctx, q,
		entry.Table, entry.RecordID, string(entry.Kind), entry.Render(),
		int64(entry.ActorID), entry.RecordedAt,
		entry.From.Code, entry.To.Code, entry.FromText, entry.ToText,
		entry.From.Label, entry.To.Label,
	).Scan(&entry.ID)
	if err != nil {
		return Entry{}, fmt.Errorf("append history entry: %w", err)
	}
	return entry, nil
}

func (s *PostgresStore) ListByRecord(ctx context.Context, table string, recordID int64) ([]Entry, error) {
	const q = `
		SELECT id, table_name, record_id, change_kind, actor_id, recorded_at,
		       from_int, to_int, from_text, to_text, from_label, to_label
		FROM history
		WHERE table_name = $1 AND record_id = $2
		ORDER BY id`
	rows, err := s.querier(ctx).QueryContext(ctx, q, table, recordID)
	if err != nil {
		return nil, fmt.Errorf("list history entries: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		var kind string
		var actorID int64
		if err := rows.Scan(
			&e.ID, &e.Table, &e.RecordID, &kind, &actorID, &e.RecordedAt,
			&e.From.Code, &e.To.Code, &e.FromText, &e.ToText,
			&e.From.Label, &e.To.Label,
		); err != nil {
			return nil, fmt.Errorf("scan history entry: %w", err)
		}
		e.Kind = ChangeKind(kind)
		e.ActorID = id.UserID(actorID)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history entries: %w", err)
	}
	return out, nil
}
