package main

import (
	"context"

	boxstore "boxtribute/internal/box/store"
	shipmentstore "boxtribute/internal/shipment/store"
	id "boxtribute/pkg/domain"
)

// uniquenessChecker answers the label generator's collision probes from the
// box and shipment stores.
type uniquenessChecker struct {
	boxes     *boxstore.PostgresStore
	shipments *shipmentstore.PostgresStore
}

func (u *uniquenessChecker) BoxLabelExists(ctx context.Context, label id.BoxLabel) (bool, error) {
	return u.boxes.LabelExists(ctx, label)
}

func (u *uniquenessChecker) ShipmentCodeExists(ctx context.Context, code id.ShipmentCode) (bool, error) {
	return u.shipments.CodeExists(ctx, code)
}
