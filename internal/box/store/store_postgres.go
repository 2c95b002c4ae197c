package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"boxtribute/internal/box/models"
	id "boxtribute/pkg/domain"
	"boxtribute/pkg/platform/sentinel"
	txcontext "boxtribute/pkg/platform/tx"
)

// PostgresStore persists boxes in the stock table. Tag relations are stored
// as an integer array; the relational tag catalog stays in the warehouse
// schema.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type dbQuerier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *PostgresStore) querier(ctx context.Context) dbQuerier {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

const boxColumns = `
	id, label, state, location_id, product_id, size_id, number_of_items,
	comment, qr_code_id, tag_ids, created_on, created_by, modified_on,
	modified_by, deleted_on`

func (s *PostgresStore) Create(ctx context.Context, box *models.Box) (*models.Box, error) {
	const q = `
		INSERT INTO stock
			(label, state, location_id, product_id, size_id, number_of_items,
			 comment, qr_code_id, tag_ids, created_on, created_by, modified_on,
			 modified_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id`
	cp := *box
	err := s.querier(ctx).QueryRowContext(ctx, q,
		string(box.Label), int64(box.State), int64(box.LocationID),
		int64(box.ProductID), int64(box.SizeID), box.NumberOfItems,
		box.Comment, qrValue(box.QRCodeID), tagArray(box.TagIDs),
		box.CreatedOn, int64(box.CreatedBy), box.ModifiedOn, int64(box.ModifiedBy),
	).Scan(&cp.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("box label %s: %w", box.Label, sentinel.ErrConflict)
		}
		return nil, fmt.Errorf("insert box: %w", err)
	}
	return &cp, nil
}

func (s *PostgresStore) ByLabel(ctx context.Context, label id.BoxLabel) (*models.Box, error) {
	q := `SELECT` + boxColumns + `FROM stock WHERE label = $1`
	return s.scanBox(s.querier(ctx).QueryRowContext(ctx, q, string(label)), label.String())
}

func (s *PostgresStore) ByID(ctx context.Context, boxID id.BoxID) (*models.Box, error) {
	q := `SELECT` + boxColumns + `FROM stock WHERE id = $1`
	return s.scanBox(s.querier(ctx).QueryRowContext(ctx, q, int64(boxID)), boxID.String())
}

func (s *PostgresStore) Update(ctx context.Context, box *models.Box) error {
	const q = `
		UPDATE stock SET
			state = $2, location_id = $3, product_id = $4, size_id = $5,
			number_of_items = $6, comment = $7, tag_ids = $8,
			modified_on = $9, modified_by = $10, deleted_on = $11
		WHERE id = $1`
	res, err := s.querier(ctx).ExecContext(ctx, q,
		int64(box.ID), int64(box.State), int64(box.LocationID),
		int64(box.ProductID), int64(box.SizeID), box.NumberOfItems,
		box.Comment, tagArray(box.TagIDs),
		box.ModifiedOn, int64(box.ModifiedBy), box.DeletedOn,
	)
	if err != nil {
		return fmt.Errorf("update box: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update box rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("box %s: %w", box.ID, sentinel.ErrNotFound)
	}
	return nil
}

func (s *PostgresStore) LabelExists(ctx context.Context, label id.BoxLabel) (bool, error) {
	var exists bool
	err := s.querier(ctx).QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM stock WHERE label = $1)`, string(label),
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check box label: %w", err)
	}
	return exists, nil
}

func (s *PostgresStore) scanBox(row *sql.Row, key string) (*models.Box, error) {
	var box models.Box
	var state, locationID, productID, sizeID, createdBy, modifiedBy int64
	var qrID uuid.NullUUID
	var tags pq.Int64Array
	var deletedOn sql.NullTime
	err := row.Scan(
		&box.ID, &box.Label, &state, &locationID, &productID, &sizeID,
		&box.NumberOfItems, &box.Comment, &qrID, &tags,
		&box.CreatedOn, &createdBy, &box.ModifiedOn, &modifiedBy, &deletedOn,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("box %s: %w", key, sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("scan box: %w", err)
	}
	box.State = models.State(state)
	box.LocationID = id.LocationID(locationID)
	box.ProductID = id.ProductID(productID)
	box.SizeID = id.SizeID(sizeID)
	box.CreatedBy = id.UserID(createdBy)
	box.ModifiedBy = id.UserID(modifiedBy)
	if qrID.Valid {
		box.QRCodeID = id.QRCodeID(qrID.UUID)
	}
	for _, t := range tags {
		box.TagIDs = append(box.TagIDs, id.TagID(t))
	}
	if deletedOn.Valid {
		box.DeletedOn = &deletedOn.Time
	}
	return &box, nil
}

func qrValue(qrID id.QRCodeID) any {
	if qrID.IsNil() {
		return nil
	}
	return uuid.UUID(qrID)
}

func tagArray(tags []id.TagID) pq.Int64Array {
	out := make(pq.Int64Array, 0, len(tags))
	for _, t := range tags {
		out = append(out, int64(t))
	}
	return out
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
