package service

import (
	"context"
	"errors"
	"time"

	"boxtribute/internal/auth"
	boxmodels "boxtribute/internal/box/models"
	"boxtribute/internal/history"
	"boxtribute/internal/shipment/models"
	id "boxtribute/pkg/domain"
	dErrors "boxtribute/pkg/domain-errors"
	"boxtribute/pkg/platform/sentinel"
	"boxtribute/pkg/requestcontext"
)

// StartReceiving transitions the shipment from Sent to Receiving and moves
// every live box into the Receiving state.
func (s *Service) StartReceiving(ctx context.Context, actor *auth.Actor, shipmentID id.ShipmentID) (*models.Shipment, error) {
	ctx, span := s.tracer.Start(ctx, "shipment.StartReceiving", spanShipmentID(shipmentID))
	defer span.End()

	shipment, err := s.loadShipment(ctx, shipmentID)
	if err != nil {
		return nil, err
	}
	if err := shipment.CanStartReceiving(); err != nil {
		return nil, err
	}
	if err := actor.Authorize(auth.ForPermission(auth.PermShipmentEdit), auth.ForBase(shipment.TargetBaseID)); err != nil {
		return nil, err
	}

	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		for _, detail := range shipment.LiveDetails() {
			if err := s.transitionBox(txCtx, actor, detail.BoxID, boxmodels.StateReceiving); err != nil {
				return err
			}
		}
		shipment.ApplyStartReceiving(actor.ID, requestcontext.Now(txCtx))
		if err := s.shipments.Update(txCtx, shipment); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update shipment")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "shipment receiving started",
		"shipment_id", shipment.ID, "code", shipment.Code)
	return shipment, nil
}

// UpdateWhenReceiving records receiving-side outcomes: boxes checked in with
// their target attributes and boxes that went missing. Once every live
// detail is resolved the shipment completes in the same transaction.
func (s *Service) UpdateWhenReceiving(ctx context.Context, actor *auth.Actor, shipmentID id.ShipmentID, in models.UpdateWhenReceivingInput) (*models.Shipment, error) {
	ctx, span := s.tracer.Start(ctx, "shipment.UpdateWhenReceiving", spanShipmentID(shipmentID))
	defer span.End()
	start := time.Now()

	shipment, err := s.loadShipment(ctx, shipmentID)
	if err != nil {
		return nil, err
	}
	if err := shipment.CanUpdateWhenReceiving(); err != nil {
		return nil, err
	}
	if err := actor.Authorize(auth.ForPermission(auth.PermShipmentEdit), auth.ForBase(shipment.TargetBaseID)); err != nil {
		return nil, err
	}

	completed := false
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		for _, rec := range in.ReceivedBoxes {
			if err := s.receiveBox(txCtx, actor, shipment, rec); err != nil {
				return err
			}
		}
		for _, label := range in.LostBoxLabels {
			if err := s.markBoxLost(txCtx, actor, shipment, label); err != nil {
				return err
			}
		}
		if shipment.AllResolved() {
			shipment.ApplyComplete(actor.ID, requestcontext.Now(txCtx))
			if err := s.shipments.Update(txCtx, shipment); err != nil {
				return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update shipment")
			}
			completed = true
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.ObserveReceive(start)
		if completed {
			s.metrics.IncrementClosed(string(models.StateCompleted))
		}
	}
	if completed {
		s.logger.InfoContext(ctx, "shipment completed",
			"shipment_id", shipment.ID, "code", shipment.Code)
	}
	return shipment, nil
}

// MarkLost closes a Sent shipment that never arrived. Every live box becomes
// NotDelivered.
func (s *Service) MarkLost(ctx context.Context, actor *auth.Actor, shipmentID id.ShipmentID) (*models.Shipment, error) {
	ctx, span := s.tracer.Start(ctx, "shipment.MarkLost", spanShipmentID(shipmentID))
	defer span.End()

	shipment, err := s.loadShipment(ctx, shipmentID)
	if err != nil {
		return nil, err
	}
	if err := shipment.CanMarkLost(); err != nil {
		return nil, err
	}
	if err := actor.Authorize(auth.ForPermission(auth.PermShipmentEdit), auth.ForBase(shipment.TargetBaseID)); err != nil {
		return nil, err
	}

	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		now := requestcontext.Now(txCtx)
		for _, detail := range shipment.LiveDetails() {
			if err := s.transitionBox(txCtx, actor, detail.BoxID, boxmodels.StateNotDelivered); err != nil {
				return err
			}
			detail.MarkLost(actor.ID, now)
			if err := s.shipments.UpdateDetail(txCtx, detail); err != nil {
				return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update shipment detail")
			}
		}
		shipment.ApplyMarkLost()
		if err := s.shipments.Update(txCtx, shipment); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update shipment")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.IncrementClosed(string(models.StateLost))
	}
	s.logger.InfoContext(ctx, "shipment marked lost", "shipment_id", shipment.ID, "code", shipment.Code)
	return shipment, nil
}

// MoveNotDeliveredBoxesInStock resolves boxes stranded in NotDelivered. Who
// may move a box depends on where it was lost: the source side owns boxes
// lost before receiving started, the target side owns the rest. Ineligible
// or unauthorized labels are skipped. Returns the boxes that were moved.
func (s *Service) MoveNotDeliveredBoxesInStock(ctx context.Context, actor *auth.Actor, labels []id.BoxLabel) ([]*boxmodels.Box, error) {
	ctx, span := s.tracer.Start(ctx, "shipment.MoveNotDeliveredBoxesInStock")
	defer span.End()

	var moved []*boxmodels.Box
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		for _, label := range labels {
			box, ok, err := s.moveNotDeliveredBox(txCtx, actor, label)
			if err != nil {
				return err
			}
			if ok {
				moved = append(moved, box)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return moved, nil
}

func (s *Service) moveNotDeliveredBox(ctx context.Context, actor *auth.Actor, label id.BoxLabel) (*boxmodels.Box, bool, error) {
	box, ok, err := s.loadEligibleBox(ctx, label)
	if err != nil || !ok {
		return nil, false, err
	}
	if box.State != boxmodels.StateNotDelivered {
		return nil, false, nil
	}
	detail, err := s.shipments.LiveDetailByBox(ctx, box.ID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, false, nil
		}
		return nil, false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load shipment detail")
	}
	if detail.LostOn == nil {
		return nil, false, nil
	}
	shipment, err := s.loadShipment(ctx, detail.ShipmentID)
	if err != nil {
		return nil, false, err
	}

	lostBeforeReceiving := shipment.ReceivingStartedOn == nil ||
		detail.LostOn.Before(*shipment.ReceivingStartedOn)
	owningBase := shipment.TargetBaseID
	if lostBeforeReceiving {
		owningBase = shipment.SourceBaseID
	}
	if !actor.Can(auth.PermStockWrite, owningBase) {
		return nil, false, nil
	}

	now := requestcontext.Now(ctx)
	var entry history.Entry
	switch {
	case shipment.State == models.StateReceiving:
		// Back into the receiving flow: the detail is pending again and can
		// be checked in normally.
		detail.ClearLost()
		entry = setBoxState(box, boxmodels.StateReceiving)
	default:
		// The shipment is closed; the box returns to stock and the detail is
		// closed with it.
		detail.MarkRemoved(actor.ID, now)
		entry = setBoxState(box, boxmodels.StateInStock)
	}
	if err := s.shipments.UpdateDetail(ctx, detail); err != nil {
		return nil, false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update shipment detail")
	}
	if err := s.saveBox(ctx, actor, box); err != nil {
		return nil, false, err
	}
	if err := s.ledger.Record(ctx, actor.ID, entry); err != nil {
		return nil, false, err
	}

	// A completed shipment reopens when a detail becomes pending again.
	if shipment.State == models.StateCompleted && !shipment.AllResolved() {
		shipment.ApplyReopen()
		if err := s.shipments.Update(ctx, shipment); err != nil {
			return nil, false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update shipment")
		}
	}
	return box, true, nil
}

// receiveBox checks one box in on the target side. Boxes without a pending
// detail on the shipment are skipped; invalid target references fail the
// call since they are caller input, not stale state.
func (s *Service) receiveBox(ctx context.Context, actor *auth.Actor, shipment *models.Shipment, in models.ReceiveBoxInput) error {
	box, ok, err := s.loadEligibleBox(ctx, in.BoxLabel)
	if err != nil || !ok {
		return err
	}
	detail := shipment.DetailForBox(box.ID)
	if detail == nil || !detail.IsPending() {
		return nil
	}

	if in.TargetQuantity < 0 {
		return dErrors.New(dErrors.CodeValidation, "target quantity must not be negative")
	}
	location, err := s.refs.LocationByID(ctx, in.TargetLocationID)
	if err != nil {
		return targetRefError(err, "location", int64(in.TargetLocationID))
	}
	if location.BaseID != shipment.TargetBaseID {
		return dErrors.Newf(dErrors.CodeBadRequest, "location %d does not belong to the target base", in.TargetLocationID)
	}
	product, err := s.refs.ProductByID(ctx, in.TargetProductID)
	if err != nil {
		return targetRefError(err, "product", int64(in.TargetProductID))
	}
	if product.BaseID != shipment.TargetBaseID {
		return dErrors.Newf(dErrors.CodeBadRequest, "product %d does not belong to the target base", in.TargetProductID)
	}
	size, err := s.refs.SizeByID(ctx, in.TargetSizeID)
	if err != nil {
		return targetRefError(err, "size", int64(in.TargetSizeID))
	}

	entries := []history.Entry{setBoxState(box, boxmodels.StateInStock)}

	if box.LocationID != location.ID {
		oldLocation, err := s.refs.LocationByID(ctx, box.LocationID)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load current location")
		}
		entries = append(entries, history.BoxLocationChanged(box.ID,
			history.Value{Code: int64(oldLocation.ID), Label: oldLocation.Name},
			history.Value{Code: int64(location.ID), Label: location.Name},
		))
		box.LocationID = location.ID
	}
	if box.ProductID != product.ID {
		oldProduct, err := s.refs.ProductByID(ctx, box.ProductID)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load current product")
		}
		entries = append(entries, history.BoxProductChanged(box.ID,
			history.Value{Code: int64(oldProduct.ID), Label: oldProduct.Name},
			history.Value{Code: int64(product.ID), Label: product.Name},
		))
		box.ProductID = product.ID
	}
	if box.SizeID != size.ID {
		oldSize, err := s.refs.SizeByID(ctx, box.SizeID)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load current size")
		}
		entries = append(entries, history.BoxSizeChanged(box.ID,
			history.Value{Code: int64(oldSize.ID), Label: oldSize.Label},
			history.Value{Code: int64(size.ID), Label: size.Label},
		))
		box.SizeID = size.ID
	}
	if box.NumberOfItems != in.TargetQuantity {
		entries = append(entries, history.BoxQuantityChanged(box.ID, box.NumberOfItems, in.TargetQuantity))
		box.NumberOfItems = in.TargetQuantity
	}

	detail.MarkReceived(product.ID, location.ID, size.ID, in.TargetQuantity, actor.ID, requestcontext.Now(ctx))
	if err := s.shipments.UpdateDetail(ctx, detail); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update shipment detail")
	}
	if err := s.saveBox(ctx, actor, box); err != nil {
		return err
	}
	return s.ledger.Record(ctx, actor.ID, entries...)
}

func (s *Service) markBoxLost(ctx context.Context, actor *auth.Actor, shipment *models.Shipment, label id.BoxLabel) error {
	box, ok, err := s.loadEligibleBox(ctx, label)
	if err != nil || !ok {
		return err
	}
	detail := shipment.DetailForBox(box.ID)
	if detail == nil || !detail.IsPending() {
		return nil
	}

	detail.MarkLost(actor.ID, requestcontext.Now(ctx))
	if err := s.shipments.UpdateDetail(ctx, detail); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update shipment detail")
	}
	entry := setBoxState(box, boxmodels.StateNotDelivered)
	if err := s.saveBox(ctx, actor, box); err != nil {
		return err
	}
	return s.ledger.Record(ctx, actor.ID, entry)
}

func targetRefError(err error, kind string, key int64) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.Newf(dErrors.CodeBadRequest, "%s %d does not exist", kind, key)
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load "+kind)
}
