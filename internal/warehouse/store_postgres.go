package warehouse

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	boxmodels "boxtribute/internal/box/models"
	id "boxtribute/pkg/domain"
	"boxtribute/pkg/platform/sentinel"
	txcontext "boxtribute/pkg/platform/tx"
)

// PostgresStore reads reference data from the relational schema.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type rowQuerier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *PostgresStore) querier(ctx context.Context) rowQuerier {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

func (s *PostgresStore) BaseByID(ctx context.Context, baseID id.BaseID) (*Base, error) {
	var b Base
	err := s.querier(ctx).QueryRowContext(ctx,
		`SELECT id, organisation_id, name FROM bases WHERE id = $1`, int64(baseID),
	).Scan(&b.ID, &b.OrganisationID, &b.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("base %s: %w", baseID, sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("select base: %w", err)
	}
	return &b, nil
}

func (s *PostgresStore) LocationByID(ctx context.Context, locationID id.LocationID) (*Location, error) {
	var l Location
	var defaultState sql.NullInt64
	err := s.querier(ctx).QueryRowContext(ctx,
		`SELECT id, base_id, name, default_box_state FROM locations WHERE id = $1`, int64(locationID),
	).Scan(&l.ID, &l.BaseID, &l.Name, &defaultState)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("location %s: %w", locationID, sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("select location: %w", err)
	}
	if defaultState.Valid {
		st := boxmodels.State(defaultState.Int64)
		l.DefaultBoxState = &st
	}
	return &l, nil
}

func (s *PostgresStore) ProductByID(ctx context.Context, productID id.ProductID) (*Product, error) {
	var p Product
	err := s.querier(ctx).QueryRowContext(ctx,
		`SELECT id, base_id, name FROM products WHERE id = $1`, int64(productID),
	).Scan(&p.ID, &p.BaseID, &p.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("product %s: %w", productID, sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("select product: %w", err)
	}
	return &p, nil
}

func (s *PostgresStore) SizeByID(ctx context.Context, sizeID id.SizeID) (*Size, error) {
	var sz Size
	err := s.querier(ctx).QueryRowContext(ctx,
		`SELECT id, label FROM sizes WHERE id = $1`, int64(sizeID),
	).Scan(&sz.ID, &sz.Label)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("size %s: %w", sizeID, sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("select size: %w", err)
	}
	return &sz, nil
}

func (s *PostgresStore) TagByID(ctx context.Context, tagID id.TagID) (*Tag, error) {
	var t Tag
	err := s.querier(ctx).QueryRowContext(ctx,
		`SELECT id, base_id, name FROM tags WHERE id = $1`, int64(tagID),
	).Scan(&t.ID, &t.BaseID, &t.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("tag %s: %w", tagID, sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("select tag: %w", err)
	}
	return &t, nil
}
