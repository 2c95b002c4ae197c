package models

import (
	id "boxtribute/pkg/domain"
)

// CreateShipmentInput carries the caller-supplied fields for a new shipment.
type CreateShipmentInput struct {
	SourceBaseID id.BaseID
	TargetBaseID id.BaseID
	// AgreementID is required when source and target belong to different
	// organisations and ignored otherwise.
	AgreementID id.AgreementID
}

// UpdateWhenPreparingInput batches preparation-phase changes. Box lists
// follow the partial-success policy: ineligible labels are skipped.
type UpdateWhenPreparingInput struct {
	BoxLabelsToAdd    []id.BoxLabel
	BoxLabelsToRemove []id.BoxLabel
	TargetBaseID      *id.BaseID
}

// ReceiveBoxInput checks one box in on the target side. The referenced
// product, location, and size must belong to the target base.
type ReceiveBoxInput struct {
	BoxLabel         id.BoxLabel
	TargetProductID  id.ProductID
	TargetLocationID id.LocationID
	TargetSizeID     id.SizeID
	TargetQuantity   int
}

// UpdateWhenReceivingInput batches receiving-phase outcomes.
type UpdateWhenReceivingInput struct {
	ReceivedBoxes []ReceiveBoxInput
	LostBoxLabels []id.BoxLabel
}
