package agreement

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	id "boxtribute/pkg/domain"
	"boxtribute/pkg/platform/sentinel"
	txcontext "boxtribute/pkg/platform/tx"
)

// PostgresStore reads agreements from the relational schema. Covered bases
// are stored as integer arrays per side.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) ByID(ctx context.Context, agreementID id.AgreementID) (*Agreement, error) {
	q := `
		SELECT id, source_organisation_id, target_organisation_id, type, state,
		       valid_from, valid_until, source_base_ids, target_base_ids
		FROM transfer_agreements
		WHERE id = $1`

	var row interface {
		Scan(dest ...any) error
	}
	if tx, ok := txcontext.From(ctx); ok {
		row = tx.QueryRowContext(ctx, q, int64(agreementID))
	} else {
		row = s.db.QueryRowContext(ctx, q, int64(agreementID))
	}

	var a Agreement
	var agrType, state string
	var validUntil sql.NullTime
	var sourceBases, targetBases pq.Int64Array
	err := row.Scan(
		&a.ID, &a.SourceOrganisationID, &a.TargetOrganisationID, &agrType, &state,
		&a.ValidFrom, &validUntil, &sourceBases, &targetBases,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("transfer agreement %s: %w", agreementID, sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("select transfer agreement: %w", err)
	}

	a.Type = AgreementType(agrType)
	a.State = AgreementState(state)
	if validUntil.Valid {
		a.ValidUntil = &validUntil.Time
	}
	for _, b := range sourceBases {
		a.SourceBaseIDs = append(a.SourceBaseIDs, id.BaseID(b))
	}
	for _, b := range targetBases {
		a.TargetBaseIDs = append(a.TargetBaseIDs, id.BaseID(b))
	}
	return &a, nil
}
