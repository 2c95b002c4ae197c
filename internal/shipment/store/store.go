// Package store persists shipments and their detail records. Implementations
// return sentinel errors; the service layer translates them into domain
// errors.
package store

import (
	"context"

	"boxtribute/internal/shipment/models"
	id "boxtribute/pkg/domain"
)

type Store interface {
	// Create inserts the shipment and returns it with its assigned id.
	Create(ctx context.Context, shipment *models.Shipment) (*models.Shipment, error)
	// ByID resolves a shipment with all of its details, removed ones
	// included.
	ByID(ctx context.Context, shipmentID id.ShipmentID) (*models.Shipment, error)
	// Update persists the shipment row. Details are saved separately.
	Update(ctx context.Context, shipment *models.Shipment) error

	// AddDetail inserts the detail and returns it with its assigned id.
	AddDetail(ctx context.Context, detail *models.Detail) (*models.Detail, error)
	UpdateDetail(ctx context.Context, detail *models.Detail) error
	// LiveDetailByBox resolves the box's current non-removed detail across
	// all shipments, if any.
	LiveDetailByBox(ctx context.Context, boxID id.BoxID) (*models.Detail, error)

	// NextSequence returns the next value of the shipment code sequence.
	NextSequence(ctx context.Context) (int64, error)
	CodeExists(ctx context.Context, code id.ShipmentCode) (bool, error)
}
