// Package service implements the shipment state machine: the lifecycle
// Preparing → Sent → Receiving → Completed | Lost | Canceled and the box
// side effects each transition carries. Box lists in update operations follow
// the partial-success contract: ineligible boxes are skipped silently so
// stale client state never aborts a whole batch.
package service

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"boxtribute/internal/agreement"
	"boxtribute/internal/auth"
	boxmodels "boxtribute/internal/box/models"
	"boxtribute/internal/history"
	shipmentmetrics "boxtribute/internal/shipment/metrics"
	"boxtribute/internal/shipment/models"
	"boxtribute/internal/warehouse"
	id "boxtribute/pkg/domain"
	dErrors "boxtribute/pkg/domain-errors"
	"boxtribute/pkg/platform/sentinel"
	"boxtribute/pkg/platform/tx"
	"boxtribute/pkg/requestcontext"
)

// Store interfaces are declared on the consumer side so the service can be
// wired against the real stores or test doubles.

type ShipmentStore interface {
	Create(ctx context.Context, shipment *models.Shipment) (*models.Shipment, error)
	ByID(ctx context.Context, shipmentID id.ShipmentID) (*models.Shipment, error)
	Update(ctx context.Context, shipment *models.Shipment) error
	AddDetail(ctx context.Context, detail *models.Detail) (*models.Detail, error)
	UpdateDetail(ctx context.Context, detail *models.Detail) error
	LiveDetailByBox(ctx context.Context, boxID id.BoxID) (*models.Detail, error)
	NextSequence(ctx context.Context) (int64, error)
}

type BoxStore interface {
	ByLabel(ctx context.Context, label id.BoxLabel) (*boxmodels.Box, error)
	ByID(ctx context.Context, boxID id.BoxID) (*boxmodels.Box, error)
	Update(ctx context.Context, box *boxmodels.Box) error
}

type ReferenceStore interface {
	BaseByID(ctx context.Context, baseID id.BaseID) (*warehouse.Base, error)
	LocationByID(ctx context.Context, locationID id.LocationID) (*warehouse.Location, error)
	ProductByID(ctx context.Context, productID id.ProductID) (*warehouse.Product, error)
	SizeByID(ctx context.Context, sizeID id.SizeID) (*warehouse.Size, error)
}

type AgreementGate interface {
	ValidateShipmentBases(ctx context.Context, source, target *warehouse.Base, agreementID id.AgreementID) (*agreement.Agreement, error)
}

type CodeGenerator interface {
	NewShipmentCode(ctx context.Context, seq int64) (id.ShipmentCode, error)
}

type Ledger interface {
	Record(ctx context.Context, actorID id.UserID, entries ...history.Entry) error
}

// Service drives shipment lifecycle transitions.
type Service struct {
	shipments ShipmentStore
	boxes     BoxStore
	refs      ReferenceStore
	gate      AgreementGate
	codes     CodeGenerator
	ledger    Ledger
	tx        tx.Runner
	logger    *slog.Logger
	metrics   *shipmentmetrics.Metrics
	tracer    trace.Tracer
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *shipmentmetrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func New(shipments ShipmentStore, boxes BoxStore, refs ReferenceStore, gate AgreementGate, codes CodeGenerator, ledger Ledger, txRunner tx.Runner, opts ...Option) *Service {
	s := &Service{
		shipments: shipments,
		boxes:     boxes,
		refs:      refs,
		gate:      gate,
		codes:     codes,
		ledger:    ledger,
		tx:        txRunner,
		logger:    slog.Default(),
		tracer:    otel.Tracer("boxtribute/shipment"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create opens a new shipment in the Preparing state. Cross-organisation
// shipments must reference an accepted transfer agreement covering the base
// pair; intra-organisation shipments need none.
func (s *Service) Create(ctx context.Context, actor *auth.Actor, in models.CreateShipmentInput) (*models.Shipment, error) {
	ctx, span := s.tracer.Start(ctx, "shipment.Create")
	defer span.End()

	source, err := s.refs.BaseByID(ctx, in.SourceBaseID)
	if err != nil {
		return nil, baseError(err, in.SourceBaseID)
	}
	target, err := s.refs.BaseByID(ctx, in.TargetBaseID)
	if err != nil {
		return nil, baseError(err, in.TargetBaseID)
	}
	if err := actor.Authorize(auth.ForPermission(auth.PermShipmentWrite), auth.ForBase(source.ID)); err != nil {
		return nil, err
	}

	agr, err := s.gate.ValidateShipmentBases(ctx, source, target, in.AgreementID)
	if err != nil {
		return nil, err
	}
	agreementID := id.AgreementID(0)
	if agr != nil {
		agreementID = agr.ID
	}

	var created *models.Shipment
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		seq, err := s.shipments.NextSequence(txCtx)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to allocate shipment sequence")
		}
		code, err := s.codes.NewShipmentCode(txCtx, seq)
		if err != nil {
			return err
		}
		shipment, err := models.NewShipment(code, source.ID, target.ID, agreementID, actor.ID, requestcontext.Now(txCtx))
		if err != nil {
			return err
		}
		created, err = s.shipments.Create(txCtx, shipment)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create shipment")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.Int64("shipment.id", int64(created.ID)))
	if s.metrics != nil {
		s.metrics.IncrementCreated()
	}
	s.logger.InfoContext(ctx, "shipment created",
		"shipment_id", created.ID,
		"code", created.Code,
		"source_base", created.SourceBaseID,
		"target_base", created.TargetBaseID,
	)
	return created, nil
}

// Get resolves a shipment for an actor authorized on either side.
func (s *Service) Get(ctx context.Context, actor *auth.Actor, shipmentID id.ShipmentID) (*models.Shipment, error) {
	shipment, err := s.loadShipment(ctx, shipmentID)
	if err != nil {
		return nil, err
	}
	if !actor.Can(auth.PermShipmentRead, shipment.SourceBaseID) &&
		!actor.Can(auth.PermShipmentRead, shipment.TargetBaseID) {
		return nil, dErrors.New(dErrors.CodeForbidden, "actor may not view this shipment")
	}
	return shipment, nil
}

func (s *Service) loadShipment(ctx context.Context, shipmentID id.ShipmentID) (*models.Shipment, error) {
	shipment, err := s.shipments.ByID(ctx, shipmentID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.Newf(dErrors.CodeNotFound, "shipment %d does not exist", shipmentID)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load shipment")
	}
	return shipment, nil
}

func spanShipmentID(shipmentID id.ShipmentID) trace.SpanStartOption {
	return trace.WithAttributes(attribute.Int64("shipment.id", int64(shipmentID)))
}

// setBoxState transitions a box and returns the matching ledger entry.
func setBoxState(box *boxmodels.Box, to boxmodels.State) history.Entry {
	entry := history.BoxStateChanged(box.ID,
		history.Value{Code: box.State.Code(), Label: box.State.String()},
		history.Value{Code: to.Code(), Label: to.String()},
	)
	box.State = to
	return entry
}

// saveBox persists a box mutated by a shipment transition.
func (s *Service) saveBox(ctx context.Context, actor *auth.Actor, box *boxmodels.Box) error {
	box.ModifiedOn = requestcontext.Now(ctx)
	box.ModifiedBy = actor.ID
	if err := s.boxes.Update(ctx, box); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update box")
	}
	return nil
}

// loadEligibleBox resolves a box for a bulk shipment operation. Unknown and
// soft-deleted labels are dropped per the partial-success policy.
func (s *Service) loadEligibleBox(ctx context.Context, label id.BoxLabel) (*boxmodels.Box, bool, error) {
	box, err := s.boxes.ByLabel(ctx, label)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, false, nil
		}
		return nil, false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load box")
	}
	if box.IsDeleted() {
		return nil, false, nil
	}
	return box, true, nil
}

// transitionBox moves a box to the given state, persists it, and records the
// change in the ledger.
func (s *Service) transitionBox(ctx context.Context, actor *auth.Actor, boxID id.BoxID, to boxmodels.State) error {
	box, err := s.boxes.ByID(ctx, boxID)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load box")
	}
	if box.State == to {
		return nil
	}
	entry := setBoxState(box, to)
	if err := s.saveBox(ctx, actor, box); err != nil {
		return err
	}
	return s.ledger.Record(ctx, actor.ID, entry)
}

func baseError(err error, baseID id.BaseID) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.Newf(dErrors.CodeBadRequest, "base %d does not exist", baseID)
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load base")
}
