package service

import (
	"context"
	"errors"

	"boxtribute/internal/auth"
	"boxtribute/internal/box/models"
	"boxtribute/internal/history"
	"boxtribute/internal/warehouse"
	id "boxtribute/pkg/domain"
	dErrors "boxtribute/pkg/domain-errors"
	"boxtribute/pkg/platform/sentinel"
	"boxtribute/pkg/requestcontext"
)

// Bulk operations collect a per-item outcome internally and project only the
// successful boxes at the boundary. Skip reasons are logged but not returned;
// a stale client retrying a batch gets an empty result for the items that
// were already processed, never an error.

type skipReason string

const (
	skipNotFound     skipReason = "not_found"
	skipDeleted      skipReason = "deleted"
	skipUnauthorized skipReason = "unauthorized"
	skipWrongState   skipReason = "wrong_state"
	skipNoop         skipReason = "noop"
)

type itemOutcome struct {
	label id.BoxLabel
	box   *models.Box
	skip  skipReason
}

// isShipmentBound reports whether the state ties the box to an active
// shipment, making it ineligible for direct stock operations.
func isShipmentBound(state models.State) bool {
	switch state {
	case models.StateMarkedForShipment, models.StateInTransit, models.StateReceiving, models.StateNotDelivered:
		return true
	}
	return false
}

// Move relocates boxes to the target location. The target must exist and the
// actor must hold stock:write on its base; individual boxes are skipped when
// missing, deleted, unauthorized, shipment-bound, or already at the target.
func (s *Service) Move(ctx context.Context, actor *auth.Actor, labels []id.BoxLabel, locationID id.LocationID) ([]*models.Box, error) {
	target, err := s.refs.LocationByID(ctx, locationID)
	if err != nil {
		return nil, refError(err, "location", locationID.String())
	}
	if err := actor.Authorize(auth.ForPermission(auth.PermStockWrite), auth.ForBase(target.BaseID)); err != nil {
		return nil, err
	}

	var moved []*models.Box
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		for _, label := range labels {
			outcome := s.moveOne(txCtx, actor, label, target)
			if outcome.skip != "" {
				s.logger.DebugContext(txCtx, "bulk move skipped box",
					"label", label.String(), "reason", string(outcome.skip))
				continue
			}
			moved = append(moved, outcome.box)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return moved, nil
}

func (s *Service) moveOne(ctx context.Context, actor *auth.Actor, label id.BoxLabel, target *warehouse.Location) itemOutcome {
	box, err := s.boxes.ByLabel(ctx, label)
	if err != nil {
		return itemOutcome{label: label, skip: skipNotFound}
	}
	if box.IsDeleted() {
		return itemOutcome{label: label, skip: skipDeleted}
	}
	if box.LocationID == target.ID {
		return itemOutcome{label: label, skip: skipNoop}
	}
	current, err := s.refs.LocationByID(ctx, box.LocationID)
	if err != nil {
		return itemOutcome{label: label, skip: skipNotFound}
	}
	if !actor.Can(auth.PermStockWrite, current.BaseID) {
		return itemOutcome{label: label, skip: skipUnauthorized}
	}
	if isShipmentBound(box.State) {
		return itemOutcome{label: label, skip: skipWrongState}
	}

	entries := []history.Entry{history.BoxLocationChanged(box.ID,
		history.Value{Code: int64(current.ID), Label: current.Name},
		history.Value{Code: int64(target.ID), Label: target.Name},
	)}
	box.LocationID = target.ID
	if target.DefaultBoxState != nil && box.State != *target.DefaultBoxState {
		entries = append(entries, history.BoxStateChanged(box.ID,
			history.Value{Code: box.State.Code(), Label: box.State.String()},
			history.Value{Code: target.DefaultBoxState.Code(), Label: target.DefaultBoxState.String()},
		))
		box.State = *target.DefaultBoxState
	}
	box.ModifiedOn = requestcontext.Now(ctx)
	box.ModifiedBy = actor.ID
	if err := s.boxes.Update(ctx, box); err != nil {
		return itemOutcome{label: label, skip: skipNotFound}
	}
	if err := s.ledger.Record(ctx, actor.ID, entries...); err != nil {
		return itemOutcome{label: label, skip: skipNotFound}
	}
	return itemOutcome{label: label, box: box}
}

// AssignTags adds the given tags to each eligible box. Unknown tags are
// dropped; a tag only applies to boxes of its own base. Boxes already
// carrying every applicable tag are skipped.
func (s *Service) AssignTags(ctx context.Context, actor *auth.Actor, labels []id.BoxLabel, tagIDs []id.TagID) ([]*models.Box, error) {
	tags := s.resolveTags(ctx, tagIDs)
	if len(tags) == 0 {
		return nil, nil
	}

	var tagged []*models.Box
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		for _, label := range labels {
			box, base, err := s.loadForBulk(txCtx, actor, label, auth.PermTagWrite)
			if err != nil {
				continue
			}
			var entries []history.Entry
			for _, tag := range tags {
				if tag.BaseID != base || box.HasTag(tag.ID) {
					continue
				}
				box.TagIDs = append(box.TagIDs, tag.ID)
				entries = append(entries, history.TagAssigned(box.ID,
					history.Value{Code: int64(tag.ID), Label: tag.Name}))
			}
			if len(entries) == 0 {
				continue
			}
			box.ModifiedOn = requestcontext.Now(txCtx)
			box.ModifiedBy = actor.ID
			if err := s.boxes.Update(txCtx, box); err != nil {
				continue
			}
			if err := s.ledger.Record(txCtx, actor.ID, entries...); err != nil {
				return err
			}
			tagged = append(tagged, box)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return tagged, nil
}

// UnassignTags removes the given tags from each eligible box. Boxes not
// carrying any of the tags are skipped.
func (s *Service) UnassignTags(ctx context.Context, actor *auth.Actor, labels []id.BoxLabel, tagIDs []id.TagID) ([]*models.Box, error) {
	tags := s.resolveTags(ctx, tagIDs)
	if len(tags) == 0 {
		return nil, nil
	}

	var untagged []*models.Box
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		for _, label := range labels {
			box, _, err := s.loadForBulk(txCtx, actor, label, auth.PermTagWrite)
			if err != nil {
				continue
			}
			var entries []history.Entry
			for _, tag := range tags {
				if !box.HasTag(tag.ID) {
					continue
				}
				box.TagIDs = removeTag(box.TagIDs, tag.ID)
				entries = append(entries, history.TagUnassigned(box.ID,
					history.Value{Code: int64(tag.ID), Label: tag.Name}))
			}
			if len(entries) == 0 {
				continue
			}
			box.ModifiedOn = requestcontext.Now(txCtx)
			box.ModifiedBy = actor.ID
			if err := s.boxes.Update(txCtx, box); err != nil {
				continue
			}
			if err := s.ledger.Record(txCtx, actor.ID, entries...); err != nil {
				return err
			}
			untagged = append(untagged, box)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return untagged, nil
}

// Delete soft-deletes the eligible boxes. Already deleted boxes are skipped,
// so a repeated call returns an empty result.
func (s *Service) Delete(ctx context.Context, actor *auth.Actor, labels []id.BoxLabel) ([]*models.Box, error) {
	var deleted []*models.Box
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		for _, label := range labels {
			box, _, err := s.loadForBulk(txCtx, actor, label, auth.PermStockWrite)
			if err != nil {
				continue
			}
			if isShipmentBound(box.State) {
				continue
			}
			now := requestcontext.Now(txCtx)
			box.DeletedOn = &now
			box.ModifiedOn = now
			box.ModifiedBy = actor.ID
			if err := s.boxes.Update(txCtx, box); err != nil {
				continue
			}
			if err := s.ledger.Record(txCtx, actor.ID, history.BoxDeleted(box.ID)); err != nil {
				return err
			}
			deleted = append(deleted, box)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return deleted, nil
}

// loadForBulk resolves an eligible box for a bulk mutation: existing, not
// deleted, actor authorized on the owning base. Returns the owning base id.
func (s *Service) loadForBulk(ctx context.Context, actor *auth.Actor, label id.BoxLabel, perm auth.Permission) (*models.Box, id.BaseID, error) {
	box, err := s.boxes.ByLabel(ctx, label)
	if err != nil {
		return nil, 0, err
	}
	if box.IsDeleted() {
		return nil, 0, errors.New("box deleted")
	}
	location, err := s.refs.LocationByID(ctx, box.LocationID)
	if err != nil {
		return nil, 0, err
	}
	if !actor.Can(perm, location.BaseID) {
		return nil, 0, dErrors.New(dErrors.CodeForbidden, "not authorized for base")
	}
	return box, location.BaseID, nil
}

func (s *Service) resolveTags(ctx context.Context, tagIDs []id.TagID) []*warehouse.Tag {
	var tags []*warehouse.Tag
	for _, tagID := range tagIDs {
		tag, err := s.refs.TagByID(ctx, tagID)
		if err != nil {
			if !errors.Is(err, sentinel.ErrNotFound) {
				s.logger.Warn("tag lookup failed", "tag_id", tagID.String(), "error", err)
			}
			continue
		}
		tags = append(tags, tag)
	}
	return tags
}

func removeTag(tags []id.TagID, tagID id.TagID) []id.TagID {
	out := tags[:0]
	for _, t := range tags {
		if t != tagID {
			out = append(out, t)
		}
	}
	return out
}
