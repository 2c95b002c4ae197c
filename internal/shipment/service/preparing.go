package service

import (
	"context"

	"boxtribute/internal/auth"
	boxmodels "boxtribute/internal/box/models"
	"boxtribute/internal/shipment/models"
	id "boxtribute/pkg/domain"
	dErrors "boxtribute/pkg/domain-errors"
	"boxtribute/pkg/requestcontext"
)

// UpdateWhenPreparing applies preparation-phase changes: adding boxes,
// removing boxes, and changing the target base. Box labels that do not
// qualify (unknown, deleted, wrong state, wrong base, already attached) are
// skipped without failing the batch.
func (s *Service) UpdateWhenPreparing(ctx context.Context, actor *auth.Actor, shipmentID id.ShipmentID, in models.UpdateWhenPreparingInput) (*models.Shipment, error) {
	ctx, span := s.tracer.Start(ctx, "shipment.UpdateWhenPreparing",
		spanShipmentID(shipmentID))
	defer span.End()

	shipment, err := s.loadShipment(ctx, shipmentID)
	if err != nil {
		return nil, err
	}
	if err := shipment.CanUpdateWhenPreparing(); err != nil {
		return nil, err
	}
	if err := actor.Authorize(auth.ForPermission(auth.PermShipmentEdit), auth.ForBase(shipment.SourceBaseID)); err != nil {
		return nil, err
	}

	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if in.TargetBaseID != nil && *in.TargetBaseID != shipment.TargetBaseID {
			if err := s.changeTargetBase(txCtx, shipment, *in.TargetBaseID); err != nil {
				return err
			}
		}
		for _, label := range in.BoxLabelsToAdd {
			if err := s.addBox(txCtx, actor, shipment, label); err != nil {
				return err
			}
		}
		for _, label := range in.BoxLabelsToRemove {
			if err := s.removeBox(txCtx, actor, shipment, label); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.loadShipment(ctx, shipmentID)
}

// Send transitions the shipment from Preparing to Sent and puts every live
// box in transit.
func (s *Service) Send(ctx context.Context, actor *auth.Actor, shipmentID id.ShipmentID) (*models.Shipment, error) {
	ctx, span := s.tracer.Start(ctx, "shipment.Send", spanShipmentID(shipmentID))
	defer span.End()

	shipment, err := s.loadShipment(ctx, shipmentID)
	if err != nil {
		return nil, err
	}
	if err := shipment.CanSend(); err != nil {
		return nil, err
	}
	if err := actor.Authorize(auth.ForPermission(auth.PermShipmentEdit), auth.ForBase(shipment.SourceBaseID)); err != nil {
		return nil, err
	}

	live := shipment.LiveDetails()
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		for _, detail := range live {
			if err := s.transitionBox(txCtx, actor, detail.BoxID, boxmodels.StateInTransit); err != nil {
				return err
			}
		}
		shipment.ApplySend(actor.ID, requestcontext.Now(txCtx))
		if err := s.shipments.Update(txCtx, shipment); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update shipment")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.ObserveBoxesSent(len(live))
	}
	s.logger.InfoContext(ctx, "shipment sent",
		"shipment_id", shipment.ID, "code", shipment.Code, "boxes", len(live))
	return shipment, nil
}

// Cancel aborts a shipment that is still being prepared. Every live box
// returns to stock and its detail is closed as removed.
func (s *Service) Cancel(ctx context.Context, actor *auth.Actor, shipmentID id.ShipmentID) (*models.Shipment, error) {
	ctx, span := s.tracer.Start(ctx, "shipment.Cancel", spanShipmentID(shipmentID))
	defer span.End()

	shipment, err := s.loadShipment(ctx, shipmentID)
	if err != nil {
		return nil, err
	}
	if err := shipment.CanCancel(); err != nil {
		return nil, err
	}
	if err := actor.Authorize(auth.ForPermission(auth.PermShipmentEdit), auth.ForBase(shipment.SourceBaseID)); err != nil {
		return nil, err
	}

	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		now := requestcontext.Now(txCtx)
		for _, detail := range shipment.LiveDetails() {
			if err := s.transitionBox(txCtx, actor, detail.BoxID, boxmodels.StateInStock); err != nil {
				return err
			}
			detail.MarkRemoved(actor.ID, now)
			if err := s.shipments.UpdateDetail(txCtx, detail); err != nil {
				return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update shipment detail")
			}
		}
		shipment.ApplyCancel(actor.ID, now)
		if err := s.shipments.Update(txCtx, shipment); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update shipment")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.IncrementClosed(string(models.StateCanceled))
	}
	s.logger.InfoContext(ctx, "shipment canceled", "shipment_id", shipment.ID, "code", shipment.Code)
	return shipment, nil
}

func (s *Service) changeTargetBase(ctx context.Context, shipment *models.Shipment, newTargetID id.BaseID) error {
	source, err := s.refs.BaseByID(ctx, shipment.SourceBaseID)
	if err != nil {
		return baseError(err, shipment.SourceBaseID)
	}
	target, err := s.refs.BaseByID(ctx, newTargetID)
	if err != nil {
		return baseError(err, newTargetID)
	}
	agr, err := s.gate.ValidateShipmentBases(ctx, source, target, shipment.AgreementID)
	if err != nil {
		return err
	}
	shipment.TargetBaseID = newTargetID
	// An agreement is referenced only while the shipment actually crosses
	// organisations; retargeting within the source's own organisation drops it.
	shipment.AgreementID = id.AgreementID(0)
	if agr != nil {
		shipment.AgreementID = agr.ID
	}
	if err := s.shipments.Update(ctx, shipment); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update shipment")
	}
	return nil
}

// addBox attaches one box to the preparing shipment. Ineligible boxes are
// skipped; only infrastructure failures abort the batch.
func (s *Service) addBox(ctx context.Context, actor *auth.Actor, shipment *models.Shipment, label id.BoxLabel) error {
	box, ok, err := s.loadEligibleBox(ctx, label)
	if err != nil || !ok {
		return err
	}
	if box.State != boxmodels.StateInStock {
		return nil
	}
	location, err := s.refs.LocationByID(ctx, box.LocationID)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load box location")
	}
	if location.BaseID != shipment.SourceBaseID {
		return nil
	}
	// Already live on this shipment is a no-op; live on another shipment
	// cannot happen for an InStock box but is guarded anyway.
	if shipment.DetailForBox(box.ID) != nil {
		return nil
	}

	now := requestcontext.Now(ctx)
	detail := models.NewDetail(shipment.ID, box.ID, box.Label,
		box.ProductID, box.LocationID, box.SizeID, box.NumberOfItems, actor.ID, now)
	stored, err := s.shipments.AddDetail(ctx, detail)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to add shipment detail")
	}
	shipment.Details = append(shipment.Details, stored)

	entry := setBoxState(box, boxmodels.StateMarkedForShipment)
	if err := s.saveBox(ctx, actor, box); err != nil {
		return err
	}
	return s.ledger.Record(ctx, actor.ID, entry)
}

func (s *Service) removeBox(ctx context.Context, actor *auth.Actor, shipment *models.Shipment, label id.BoxLabel) error {
	box, ok, err := s.loadEligibleBox(ctx, label)
	if err != nil || !ok {
		return err
	}
	detail := shipment.DetailForBox(box.ID)
	if detail == nil || box.State != boxmodels.StateMarkedForShipment {
		return nil
	}

	detail.MarkRemoved(actor.ID, requestcontext.Now(ctx))
	if err := s.shipments.UpdateDetail(ctx, detail); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update shipment detail")
	}
	entry := setBoxState(box, boxmodels.StateInStock)
	if err := s.saveBox(ctx, actor, box); err != nil {
		return err
	}
	return s.ledger.Record(ctx, actor.ID, entry)
}
