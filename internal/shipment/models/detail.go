package models

import (
	"time"

	id "boxtribute/pkg/domain"
)

// Detail records one box's participation in a shipment. The source fields
// are captured when the box is added during preparation; the target fields
// are filled when the box is checked in on the receiving side. A detail with
// RemovedOn set was pulled back out before sending and does not travel;
// re-adding the box creates a fresh detail that supersedes the removed one.
type Detail struct {
	ID         int64
	ShipmentID id.ShipmentID
	BoxID      id.BoxID
	BoxLabel   id.BoxLabel

	SourceProductID  id.ProductID
	SourceLocationID id.LocationID
	SourceSizeID     id.SizeID
	SourceQuantity   int

	TargetProductID  *id.ProductID
	TargetLocationID *id.LocationID
	TargetSizeID     *id.SizeID
	TargetQuantity   *int

	CreatedBy  id.UserID
	CreatedOn  time.Time
	RemovedBy  *id.UserID
	RemovedOn  *time.Time
	LostBy     *id.UserID
	LostOn     *time.Time
	ReceivedBy *id.UserID
	ReceivedOn *time.Time
}

// IsLive reports whether the detail still belongs to the shipment's box set.
func (d *Detail) IsLive() bool {
	return d.RemovedOn == nil
}

// IsPending reports whether the box still awaits a receiving-side outcome.
func (d *Detail) IsPending() bool {
	return d.IsLive() && d.LostOn == nil && d.ReceivedOn == nil
}

// MarkRemoved takes the detail out of the shipment during preparation, or
// closes it when a not-delivered box returns to stock.
func (d *Detail) MarkRemoved(actor id.UserID, now time.Time) {
	d.RemovedBy = &actor
	d.RemovedOn = &now
}

// MarkLost records that the box did not arrive.
func (d *Detail) MarkLost(actor id.UserID, now time.Time) {
	d.LostBy = &actor
	d.LostOn = &now
}

// ClearLost reverses MarkLost, making the detail pending again.
func (d *Detail) ClearLost() {
	d.LostBy = nil
	d.LostOn = nil
}

// MarkReceived captures the target attributes chosen at check-in.
func (d *Detail) MarkReceived(product id.ProductID, location id.LocationID, size id.SizeID, quantity int, actor id.UserID, now time.Time) {
	d.TargetProductID = &product
	d.TargetLocationID = &location
	d.TargetSizeID = &size
	d.TargetQuantity = &quantity
	d.ReceivedBy = &actor
	d.ReceivedOn = &now
}

// NewDetail captures the box's source attributes at add-time.
func NewDetail(shipmentID id.ShipmentID, boxID id.BoxID, boxLabel id.BoxLabel, product id.ProductID, location id.LocationID, size id.SizeID, quantity int, actor id.UserID, now time.Time) *Detail {
	return &Detail{
		ShipmentID:       shipmentID,
		BoxID:            boxID,
		BoxLabel:         boxLabel,
		SourceProductID:  product,
		SourceLocationID: location,
		SourceSizeID:     size,
		SourceQuantity:   quantity,
		CreatedBy:        actor,
		CreatedOn:        now,
	}
}
