// Package models holds the box aggregate and its inputs. Boxes are plain
// data manipulated through the store interface; the peewee-style active
// records of the legacy system do not carry over.
package models

import (
	"time"

	id "boxtribute/pkg/domain"
)

// Box is a container of donated goods tracked through locations and
// shipments.
//
// Invariants:
//   - Label is unique across all boxes and never changes
//   - NumberOfItems is non-negative
//   - The owning base is derived through the location, never stored directly
//   - Boxes are soft-deleted: DeletedOn set, row retained
//   - At most one live shipment detail references the box at any time
type Box struct {
	ID            id.BoxID
	Label         id.BoxLabel
	State         State
	LocationID    id.LocationID
	ProductID     id.ProductID
	SizeID        id.SizeID
	NumberOfItems int
	Comment       string
	QRCodeID      id.QRCodeID
	TagIDs        []id.TagID

	CreatedOn  time.Time
	CreatedBy  id.UserID
	ModifiedOn time.Time
	ModifiedBy id.UserID
	DeletedOn  *time.Time
}

// IsDeleted reports whether the box has been soft-deleted.
func (b *Box) IsDeleted() bool {
	return b.DeletedOn != nil
}

// HasTag reports tag membership.
func (b *Box) HasTag(tag id.TagID) bool {
	for _, t := range b.TagIDs {
		if t == tag {
			return true
		}
	}
	return false
}

// CreateBoxInput carries the caller-supplied fields for box creation.
// Quantity and state are optional; absent state falls back to the location's
// default.
type CreateBoxInput struct {
	ProductID     id.ProductID
	LocationID    id.LocationID
	SizeID        id.SizeID
	NumberOfItems *int
	Comment       string
	QRCodeID      id.QRCodeID
	State         *State
	TagIDs        []id.TagID
}

// UpdateBoxInput applies only the fields that are set.
type UpdateBoxInput struct {
	ProductID     *id.ProductID
	LocationID    *id.LocationID
	SizeID        *id.SizeID
	NumberOfItems *int
	Comment       *string
	State         *State
	TagIDs        *[]id.TagID
}
