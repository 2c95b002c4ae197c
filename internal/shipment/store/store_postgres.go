package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"boxtribute/internal/shipment/models"
	id "boxtribute/pkg/domain"
	"boxtribute/pkg/platform/sentinel"
	txcontext "boxtribute/pkg/platform/tx"
)

// PostgresStore persists shipments in the shipments and shipment_details
// tables. It joins an enclosing transaction when one is present in the
// context.
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

const shipmentColumns = `
	id, code, source_base_id, target_base_id, agreement_id, state,
	started_by, started_on, sent_by, sent_on,
	receiving_started_by, receiving_started_on,
	completed_by, completed_on, canceled_by, canceled_on`

func (s *PostgresStore) Create(ctx context.Context, shipment *models.Shipment) (*models.Shipment, error) {
	const q = `
		INSERT INTO shipments
			(code, source_base_id, target_base_id, agreement_id, state,
			 started_by, started_on)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`
	var agreementID sql.NullInt64
	if !shipment.AgreementID.IsNil() {
		agreementID = sql.NullInt64{Int64: int64(shipment.AgreementID), Valid: true}
	}
	err := s.querier(ctx).QueryRowContext(ctx, q,
		string(shipment.Code), int64(shipment.SourceBaseID), int64(shipment.TargetBaseID),
		agreementID, string(shipment.State),
		int64(shipment.StartedBy), shipment.StartedOn,
	).Scan(&shipment.ID)
	if err != nil {
		return nil, fmt.Errorf("insert shipment: %w", err)
	}
	return shipment, nil
}

func (s *PostgresStore) ByID(ctx context.Context, shipmentID id.ShipmentID) (*models.Shipment, error) {
	q := `SELECT` + shipmentColumns + ` FROM shipments WHERE id = $1`
	shipment, err := scanShipment(s.querier(ctx).QueryRowContext(ctx, q, int64(shipmentID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("shipment %d: %w", shipmentID, sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("select shipment: %w", err)
	}

	details, err := s.detailsByShipment(ctx, shipmentID)
	if err != nil {
		return nil, err
	}
	shipment.Details = details
	return shipment, nil
}

func (s *PostgresStore) Update(ctx context.Context, shipment *models.Shipment) error {
	const q = `
		UPDATE shipments
		SET target_base_id = $2, agreement_id = $3, state = $4,
		    sent_by = $5, sent_on = $6,
		    receiving_started_by = $7, receiving_started_on = $8,
		    completed_by = $9, completed_on = $10,
		    canceled_by = $11, canceled_on = $12
		WHERE id = $1`
	var agreementID sql.NullInt64
	if !shipment.AgreementID.IsNil() {
		agreementID = sql.NullInt64{Int64: int64(shipment.AgreementID), Valid: true}
	}
	res, err := s.querier(ctx).ExecContext(ctx, q,
		int64(shipment.ID), int64(shipment.TargetBaseID), agreementID, string(shipment.State),
		nullUser(shipment.SentBy), nullTime(shipment.SentOn),
		nullUser(shipment.ReceivingStartedBy), nullTime(shipment.ReceivingStartedOn),
		nullUser(shipment.CompletedBy), nullTime(shipment.CompletedOn),
		nullUser(shipment.CanceledBy), nullTime(shipment.CanceledOn),
	)
	if err != nil {
		return fmt.Errorf("update shipment: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update shipment: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("shipment %d: %w", shipment.ID, sentinel.ErrNotFound)
	}
	return nil
}

const detailColumns = `
	id, shipment_id, box_id, box_label,
	source_product_id, source_location_id, source_size_id, source_quantity,
	target_product_id, target_location_id, target_size_id, target_quantity,
	created_by, created_on, removed_by, removed_on,
	lost_by, lost_on, received_by, received_on`

func (s *PostgresStore) AddDetail(ctx context.Context, detail *models.Detail) (*models.Detail, error) {
	const q = `
		INSERT INTO shipment_details
			(shipment_id, box_id, box_label,
			 source_product_id, source_location_id, source_size_id, source_quantity,
			 created_by, created_on)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`
	err := s.querier(ctx).QueryRowContext(ctx, q,
		int64(detail.ShipmentID), int64(detail.BoxID), string(detail.BoxLabel),
		int64(detail.SourceProductID), int64(detail.SourceLocationID),
		int64(detail.SourceSizeID), detail.SourceQuantity,
		int64(detail.CreatedBy), detail.CreatedOn,
	).Scan(&detail.ID)
	if err != nil {
		return nil, fmt.Errorf("insert shipment detail: %w", err)
	}
	return detail, nil
}

func (s *PostgresStore) UpdateDetail(ctx context.Context, detail *models.Detail) error {
	const q = `
		UPDATE shipment_details
		SET target_product_id = $2, target_location_id = $3,
		    target_size_id = $4, target_quantity = $5,
		    removed_by = $6, removed_on = $7,
		    lost_by = $8, lost_on = $9,
		    received_by = $10, received_on = $11
		WHERE id = $1`
	res, err := s.querier(ctx).ExecContext(ctx, q,
		detail.ID,
		nullProduct(detail.TargetProductID), nullLocation(detail.TargetLocationID),
		nullSize(detail.TargetSizeID), nullInt(detail.TargetQuantity),
		nullUser(detail.RemovedBy), nullTime(detail.RemovedOn),
		nullUser(detail.LostBy), nullTime(detail.LostOn),
		nullUser(detail.ReceivedBy), nullTime(detail.ReceivedOn),
	)
	if err != nil {
		return fmt.Errorf("update shipment detail: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update shipment detail: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("shipment detail %d: %w", detail.ID, sentinel.ErrNotFound)
	}
	return nil
}

func (s *PostgresStore) LiveDetailByBox(ctx context.Context, boxID id.BoxID) (*models.Detail, error) {
	q := `SELECT` + detailColumns + `
		FROM shipment_details
		WHERE box_id = $1 AND removed_on IS NULL
		ORDER BY id DESC
		LIMIT 1`
	detail, err := scanDetail(s.querier(ctx).QueryRowContext(ctx, q, int64(boxID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("live detail for box %d: %w", boxID, sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("select shipment detail: %w", err)
	}
	return detail, nil
}

func (s *PostgresStore) NextSequence(ctx context.Context) (int64, error) {
	var seq int64
	if err := s.querier(ctx).QueryRowContext(ctx, `SELECT nextval('shipment_code_seq')`).Scan(&seq); err != nil {
		return 0, fmt.Errorf("next shipment sequence: %w", err)
	}
	return seq, nil
}

func (s *PostgresStore) CodeExists(ctx context.Context, code id.ShipmentCode) (bool, error) {
	var exists bool
	err := s.querier(ctx).QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM shipments WHERE code = $1)`, string(code),
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check shipment code: %w", err)
	}
	return exists, nil
}

func (s *PostgresStore) detailsByShipment(ctx context.Context, shipmentID id.ShipmentID) ([]*models.Detail, error) {
	q := `SELECT` + detailColumns + ` FROM shipment_details WHERE shipment_id = $1 ORDER BY id`
	rows, err := s.querier(ctx).QueryContext(ctx, q, int64(shipmentID))
	if err != nil {
		return nil, fmt.Errorf("select shipment details: %w", err)
	}
	defer rows.Close()

	var out []*models.Detail
	for rows.Next() {
		detail, err := scanDetail(rows)
		if err != nil {
			return nil, fmt.Errorf("scan shipment detail: %w", err)
		}
		out = append(out, detail)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate shipment details: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanShipment(row rowScanner) (*models.Shipment, error) {
	var (
		shipment    models.Shipment
		code, state string
		agreementID sql.NullInt64
		startedBy   int64
		sentBy, receivingBy, completedBy, canceledBy sql.NullInt64
		sentOn, receivingOn, completedOn, canceledOn sql.NullTime
	)
	err := row.Scan(
		&shipment.ID, &code, &shipment.SourceBaseID, &shipment.TargetBaseID,
		&agreementID, &state,
		&startedBy, &shipment.StartedOn, &sentBy, &sentOn,
		&receivingBy, &receivingOn, &completedBy, &completedOn,
		&canceledBy, &canceledOn,
	)
	if err != nil {
		return nil, err
	}
	shipment.Code = id.ShipmentCode(code)
	shipment.State = models.State(state)
	shipment.StartedBy = id.UserID(startedBy)
	if agreementID.Valid {
		shipment.AgreementID = id.AgreementID(agreementID.Int64)
	}
	shipment.SentBy = userPtr(sentBy)
	shipment.SentOn = timePtr(sentOn)
	shipment.ReceivingStartedBy = userPtr(receivingBy)
	shipment.ReceivingStartedOn = timePtr(receivingOn)
	shipment.CompletedBy = userPtr(completedBy)
	shipment.CompletedOn = timePtr(completedOn)
	shipment.CanceledBy = userPtr(canceledBy)
	shipment.CanceledOn = timePtr(canceledOn)
	return &shipment, nil
}

func scanDetail(row rowScanner) (*models.Detail, error) {
	var (
		detail    models.Detail
		boxLabel  string
		createdBy int64
		targetProduct, targetLocation, targetSize, targetQuantity sql.NullInt64
		removedBy, lostBy, receivedBy                             sql.NullInt64
		removedOn, lostOn, receivedOn                             sql.NullTime
	)
	err := row.Scan(
		&detail.ID, &detail.ShipmentID, &detail.BoxID, &boxLabel,
		&detail.SourceProductID, &detail.SourceLocationID,
		&detail.SourceSizeID, &detail.SourceQuantity,
		&targetProduct, &targetLocation, &targetSize, &targetQuantity,
		&createdBy, &detail.CreatedOn, &removedBy, &removedOn,
		&lostBy, &lostOn, &receivedBy, &receivedOn,
	)
	if err != nil {
		return nil, err
	}
	detail.BoxLabel = id.BoxLabel(boxLabel)
	detail.CreatedBy = id.UserID(createdBy)
	if targetProduct.Valid {
		p := id.ProductID(targetProduct.Int64)
		detail.TargetProductID = &p
	}
	if targetLocation.Valid {
		l := id.LocationID(targetLocation.Int64)
		detail.TargetLocationID = &l
	}
	if targetSize.Valid {
		sz := id.SizeID(targetSize.Int64)
		detail.TargetSizeID = &sz
	}
	if targetQuantity.Valid {
		n := int(targetQuantity.Int64)
		detail.TargetQuantity = &n
	}
	detail.RemovedBy = userPtr(removedBy)
	detail.RemovedOn = timePtr(removedOn)
	detail.LostBy = userPtr(lostBy)
	detail.LostOn = timePtr(lostOn)
	detail.ReceivedBy = userPtr(receivedBy)
	detail.ReceivedOn = timePtr(receivedOn)
	return &detail, nil
}

func nullUser(u *id.UserID) sql.NullInt64 {
	if u == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*u), Valid: true}
}

func nullProduct(p *id.ProductID) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*p), Valid: true}
}

func nullLocation(l *id.LocationID) sql.NullInt64 {
	if l == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*l), Valid: true}
}

func nullSize(s *id.SizeID) sql.NullInt64 {
	if s == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*s), Valid: true}
}

func nullInt(n *int) sql.NullInt64 {
	if n == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*n), Valid: true}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func userPtr(n sql.NullInt64) *id.UserID {
	if !n.Valid {
		return nil
	}
	u := id.UserID(n.Int64)
	return &u
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}
