// Package service implements the box registry: creation, field updates with
// audit diffing, and the bulk stock operations. Bulk operations follow the
// partial-success contract: ineligible items are skipped silently so that
// stale client state never aborts a whole batch.
package service

import (
	"context"
	"errors"
	"log/slog"

	"boxtribute/internal/auth"
	"boxtribute/internal/box/models"
	"boxtribute/internal/history"
	"boxtribute/internal/qrcode"
	"boxtribute/internal/warehouse"
	id "boxtribute/pkg/domain"
	dErrors "boxtribute/pkg/domain-errors"
	"boxtribute/pkg/platform/sentinel"
	"boxtribute/pkg/platform/tx"
	"boxtribute/pkg/requestcontext"
)

// Store interfaces are declared on the consumer side so the service can be
// wired against the real stores or test doubles.

type BoxStore interface {
	Create(ctx context.Context, box *models.Box) (*models.Box, error)
	ByLabel(ctx context.Context, label id.BoxLabel) (*models.Box, error)
	Update(ctx context.Context, box *models.Box) error
	LabelExists(ctx context.Context, label id.BoxLabel) (bool, error)
}

type ReferenceStore interface {
	BaseByID(ctx context.Context, baseID id.BaseID) (*warehouse.Base, error)
	LocationByID(ctx context.Context, locationID id.LocationID) (*warehouse.Location, error)
	ProductByID(ctx context.Context, productID id.ProductID) (*warehouse.Product, error)
	SizeByID(ctx context.Context, sizeID id.SizeID) (*warehouse.Size, error)
	TagByID(ctx context.Context, tagID id.TagID) (*warehouse.Tag, error)
}

type QRStore interface {
	ByID(ctx context.Context, qrID id.QRCodeID) (*qrcode.QRCode, error)
	Link(ctx context.Context, qrID id.QRCodeID, boxID id.BoxID) error
}

type LabelGenerator interface {
	NewBoxLabel(ctx context.Context) (id.BoxLabel, error)
}

type Ledger interface {
	Record(ctx context.Context, actorID id.UserID, entries ...history.Entry) error
	ListByBox(ctx context.Context, boxID id.BoxID) ([]history.Entry, error)
}

// Service is the box registry façade.
type Service struct {
	boxes  BoxStore
	refs   ReferenceStore
	qrs    QRStore
	labels LabelGenerator
	ledger Ledger
	tx     tx.Runner
	logger *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithQRStore(qrs QRStore) Option {
	return func(s *Service) {
		s.qrs = qrs
	}
}

func New(boxes BoxStore, refs ReferenceStore, labels LabelGenerator, ledger Ledger, txRunner tx.Runner, opts ...Option) *Service {
	s := &Service{
		boxes:  boxes,
		refs:   refs,
		labels: labels,
		ledger: ledger,
		tx:     txRunner,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get resolves a box by label for an authorized actor. Soft-deleted boxes
// are reported as not found.
func (s *Service) Get(ctx context.Context, actor *auth.Actor, label id.BoxLabel) (*models.Box, error) {
	box, base, err := s.loadActive(ctx, label)
	if err != nil {
		return nil, err
	}
	if err := actor.Authorize(auth.ForPermission(auth.PermStockRead), auth.ForBase(base.ID)); err != nil {
		return nil, err
	}
	return box, nil
}

// History returns the audit trail of a box.
func (s *Service) History(ctx context.Context, actor *auth.Actor, label id.BoxLabel) ([]history.Entry, error) {
	box, base, err := s.loadActive(ctx, label)
	if err != nil {
		return nil, err
	}
	if err := actor.Authorize(auth.ForPermission(auth.PermHistoryRead), auth.ForBase(base.ID)); err != nil {
		return nil, err
	}
	return s.ledger.ListByBox(ctx, box.ID)
}

// Create registers a new box. The state falls back to the location's default
// box state, then to InStock. A supplied QR code must exist and not yet be
// linked to another box.
func (s *Service) Create(ctx context.Context, actor *auth.Actor, in models.CreateBoxInput) (*models.Box, error) {
	location, err := s.refs.LocationByID(ctx, in.LocationID)
	if err != nil {
		return nil, refError(err, "location", in.LocationID.String())
	}
	if err := actor.Authorize(auth.ForPermission(auth.PermStockWrite), auth.ForBase(location.BaseID)); err != nil {
		return nil, err
	}
	if _, err := s.refs.ProductByID(ctx, in.ProductID); err != nil {
		return nil, refError(err, "product", in.ProductID.String())
	}
	if _, err := s.refs.SizeByID(ctx, in.SizeID); err != nil {
		return nil, refError(err, "size", in.SizeID.String())
	}
	for _, tagID := range in.TagIDs {
		if _, err := s.refs.TagByID(ctx, tagID); err != nil {
			return nil, refError(err, "tag", tagID.String())
		}
	}

	quantity := 0
	if in.NumberOfItems != nil {
		quantity = *in.NumberOfItems
	}
	if quantity < 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "number of items must not be negative")
	}

	state := models.StateInStock
	if location.DefaultBoxState != nil {
		state = *location.DefaultBoxState
	}
	if in.State != nil {
		state = *in.State
	}
	if !state.IsValid() {
		return nil, dErrors.Newf(dErrors.CodeValidation, "invalid box state %d", state)
	}

	if !in.QRCodeID.IsNil() && s.qrs != nil {
		code, err := s.qrs.ByID(ctx, in.QRCodeID)
		if err != nil {
			return nil, refError(err, "qr code", in.QRCodeID.String())
		}
		if code.IsLinked() {
			return nil, dErrors.Newf(dErrors.CodeConflict, "qr code %s is already linked to another box", in.QRCodeID)
		}
	}

	var created *models.Box
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		label, err := s.labels.NewBoxLabel(txCtx)
		if err != nil {
			return err
		}
		now := requestcontext.Now(txCtx)
		box := &models.Box{
			Label:         label,
			State:         state,
			LocationID:    in.LocationID,
			ProductID:     in.ProductID,
			SizeID:        in.SizeID,
			NumberOfItems: quantity,
			Comment:       in.Comment,
			QRCodeID:      in.QRCodeID,
			TagIDs:        append([]id.TagID(nil), in.TagIDs...),
			CreatedOn:     now,
			CreatedBy:     actor.ID,
			ModifiedOn:    now,
			ModifiedBy:    actor.ID,
		}
		created, err = s.boxes.Create(txCtx, box)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create box")
		}
		if !in.QRCodeID.IsNil() && s.qrs != nil {
			if err := s.qrs.Link(txCtx, in.QRCodeID, created.ID); err != nil {
				if errors.Is(err, sentinel.ErrConflict) {
					return dErrors.Newf(dErrors.CodeConflict, "qr code %s is already linked to another box", in.QRCodeID)
				}
				return dErrors.Wrap(err, dErrors.CodeInternal, "failed to link qr code")
			}
		}
		return s.ledger.Record(txCtx, actor.ID, history.BoxCreated(created.ID))
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Update applies only the supplied fields and emits one history entry per
// changed field. When the location changes and the new location declares a
// default box state, the box state is reset to that default; a location
// without a default leaves the state untouched. A supplied tag set replaces
// the box's tags; the diff is audited as tag relation entries.
func (s *Service) Update(ctx context.Context, actor *auth.Actor, label id.BoxLabel, in models.UpdateBoxInput) (*models.Box, error) {
	box, base, err := s.loadActive(ctx, label)
	if err != nil {
		return nil, err
	}
	if err := actor.Authorize(auth.ForPermission(auth.PermStockWrite), auth.ForBase(base.ID)); err != nil {
		return nil, err
	}

	var entries []history.Entry

	if in.LocationID != nil && *in.LocationID != box.LocationID {
		newLocation, err := s.refs.LocationByID(ctx, *in.LocationID)
		if err != nil {
			return nil, refError(err, "location", in.LocationID.String())
		}
		if newLocation.BaseID != base.ID {
			if err := actor.Authorize(auth.ForPermission(auth.PermStockWrite), auth.ForBase(newLocation.BaseID)); err != nil {
				return nil, err
			}
		}
		oldLocation, err := s.refs.LocationByID(ctx, box.LocationID)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load current location")
		}
		entries = append(entries, history.BoxLocationChanged(box.ID,
			history.Value{Code: int64(oldLocation.ID), Label: oldLocation.Name},
			history.Value{Code: int64(newLocation.ID), Label: newLocation.Name},
		))
		box.LocationID = *in.LocationID
		if newLocation.DefaultBoxState != nil && box.State != *newLocation.DefaultBoxState {
			entries = append(entries, history.BoxStateChanged(box.ID,
				history.Value{Code: box.State.Code(), Label: box.State.String()},
				history.Value{Code: newLocation.DefaultBoxState.Code(), Label: newLocation.DefaultBoxState.String()},
			))
			box.State = *newLocation.DefaultBoxState
		}
	}

	if in.ProductID != nil && *in.ProductID != box.ProductID {
		newProduct, err := s.refs.ProductByID(ctx, *in.ProductID)
		if err != nil {
			return nil, refError(err, "product", in.ProductID.String())
		}
		oldProduct, err := s.refs.ProductByID(ctx, box.ProductID)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load current product")
		}
		entries = append(entries, history.BoxProductChanged(box.ID,
			history.Value{Code: int64(oldProduct.ID), Label: oldProduct.Name},
			history.Value{Code: int64(newProduct.ID), Label: newProduct.Name},
		))
		box.ProductID = *in.ProductID
	}

	if in.SizeID != nil && *in.SizeID != box.SizeID {
		newSize, err := s.refs.SizeByID(ctx, *in.SizeID)
		if err != nil {
			return nil, refError(err, "size", in.SizeID.String())
		}
		oldSize, err := s.refs.SizeByID(ctx, box.SizeID)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load current size")
		}
		entries = append(entries, history.BoxSizeChanged(box.ID,
			history.Value{Code: int64(oldSize.ID), Label: oldSize.Label},
			history.Value{Code: int64(newSize.ID), Label: newSize.Label},
		))
		box.SizeID = *in.SizeID
	}

	if in.NumberOfItems != nil && *in.NumberOfItems != box.NumberOfItems {
		if *in.NumberOfItems < 0 {
			return nil, dErrors.New(dErrors.CodeValidation, "number of items must not be negative")
		}
		entries = append(entries, history.BoxQuantityChanged(box.ID, box.NumberOfItems, *in.NumberOfItems))
		box.NumberOfItems = *in.NumberOfItems
	}

	if in.State != nil && *in.State != box.State {
		// Direct state edits are unrestricted but always audited.
		if !in.State.IsValid() {
			return nil, dErrors.Newf(dErrors.CodeValidation, "invalid box state %d", *in.State)
		}
		entries = append(entries, history.BoxStateChanged(box.ID,
			history.Value{Code: box.State.Code(), Label: box.State.String()},
			history.Value{Code: in.State.Code(), Label: in.State.String()},
		))
		box.State = *in.State
	}

	if in.Comment != nil && *in.Comment != box.Comment {
		entries = append(entries, history.BoxCommentChanged(box.ID, box.Comment, *in.Comment))
		box.Comment = *in.Comment
	}

	if in.TagIDs != nil {
		next := make([]id.TagID, 0, len(*in.TagIDs))
		keep := make(map[id.TagID]bool, len(*in.TagIDs))
		for _, tagID := range *in.TagIDs {
			if keep[tagID] {
				continue
			}
			tag, err := s.refs.TagByID(ctx, tagID)
			if err != nil {
				return nil, refError(err, "tag", tagID.String())
			}
			if tag.BaseID != base.ID {
				return nil, dErrors.Newf(dErrors.CodeValidation, "tag %d belongs to a different base", tag.ID)
			}
			keep[tagID] = true
			next = append(next, tagID)
			if !box.HasTag(tagID) {
				entries = append(entries, history.TagAssigned(box.ID,
					history.Value{Code: int64(tag.ID), Label: tag.Name}))
			}
		}
		for _, tagID := range box.TagIDs {
			if keep[tagID] {
				continue
			}
			entries = append(entries, history.TagUnassigned(box.ID, s.tagValue(ctx, tagID)))
		}
		box.TagIDs = next
	}

	if len(entries) == 0 {
		return box, nil
	}

	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		box.ModifiedOn = requestcontext.Now(txCtx)
		box.ModifiedBy = actor.ID
		if err := s.boxes.Update(txCtx, box); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update box")
		}
		return s.ledger.Record(txCtx, actor.ID, entries...)
	})
	if err != nil {
		return nil, err
	}
	return box, nil
}

// tagValue builds the ledger value for a tag the box is about to lose. The
// tag may already be gone from the catalog; the id alone still identifies
// the relation.
func (s *Service) tagValue(ctx context.Context, tagID id.TagID) history.Value {
	v := history.Value{Code: int64(tagID)}
	if tag, err := s.refs.TagByID(ctx, tagID); err == nil {
		v.Label = tag.Name
	}
	return v
}

// loadActive resolves a non-deleted box and its owning base.
func (s *Service) loadActive(ctx context.Context, label id.BoxLabel) (*models.Box, *warehouse.Base, error) {
	box, err := s.boxes.ByLabel(ctx, label)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, nil, dErrors.Newf(dErrors.CodeNotFound, "box %s does not exist", label)
		}
		return nil, nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load box")
	}
	if box.IsDeleted() {
		return nil, nil, dErrors.Newf(dErrors.CodeNotFound, "box %s does not exist", label)
	}
	location, err := s.refs.LocationByID(ctx, box.LocationID)
	if err != nil {
		return nil, nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load box location")
	}
	base, err := s.refs.BaseByID(ctx, location.BaseID)
	if err != nil {
		return nil, nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load box base")
	}
	return box, base, nil
}

// refError translates a store lookup failure on a caller-supplied reference.
func refError(err error, kind, key string) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.Newf(dErrors.CodeValidation, "%s %s does not exist", kind, key)
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load "+kind)
}
