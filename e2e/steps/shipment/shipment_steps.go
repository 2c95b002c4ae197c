// Package shipment holds step definitions for shipment lifecycle scenarios.
package shipment

import (
	"fmt"

	"github.com/cucumber/godog"
)

// TestContext is the slice of the shared context these steps need.
type TestContext interface {
	AuthenticateAs(userID string, orgID int64, baseIDs []any, permissions []any) error
	POST(path string, body any) error
	PATCH(path string, body any) error
	GET(path string) error
	LastStatus() int
	ResponseField(field string) (any, error)
	BoxLabels() []string
	RememberShipmentID(id int64)
	ShipmentID() int64
}

// RegisterSteps registers shipment-related step definitions.
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &shipmentSteps{tc: tc}

	ctx.Step(`^I am a logistics coordinator at base (\d+) of organisation (\d+)$`, steps.authenticateAsCoordinator)
	ctx.Step(`^I start a shipment from base (\d+) to base (\d+)$`, steps.startShipment)
	ctx.Step(`^I start a shipment from base (\d+) to base (\d+) under agreement (\d+)$`, steps.startShipmentWithAgreement)
	ctx.Step(`^I add the created boxes to the shipment$`, steps.addBoxes)
	ctx.Step(`^I send the shipment$`, steps.sendShipment)
	ctx.Step(`^I cancel the shipment$`, steps.cancelShipment)
	ctx.Step(`^I start receiving the shipment$`, steps.startReceiving)
	ctx.Step(`^I receive box "([^"]*)" into product (\d+), location (\d+), size (\d+) with (\d+) items$`, steps.receiveBox)
	ctx.Step(`^the shipment state should be "([^"]*)"$`, steps.shipmentStateShouldBe)
}

type shipmentSteps struct {
	tc TestContext
}

func (s *shipmentSteps) authenticateAsCoordinator(base, org int64) error {
	return s.tc.AuthenticateAs("8", org, []any{base}, []any{
		"stock:read", "stock:write",
		"shipment:read", "shipment:write", "shipment:edit",
	})
}

func (s *shipmentSteps) startShipment(source, target int64) error {
	return s.create(map[string]any{
		"source_base_id": source,
		"target_base_id": target,
	})
}

func (s *shipmentSteps) startShipmentWithAgreement(source, target, agreement int64) error {
	return s.create(map[string]any{
		"source_base_id": source,
		"target_base_id": target,
		"agreement_id":   agreement,
	})
}

func (s *shipmentSteps) create(body map[string]any) error {
	if err := s.tc.POST("/shipments", body); err != nil {
		return err
	}
	if s.tc.LastStatus() != 201 {
		return fmt.Errorf("expected 201 creating shipment, got %d", s.tc.LastStatus())
	}
	raw, err := s.tc.ResponseField("id")
	if err != nil {
		return err
	}
	id, ok := raw.(float64)
	if !ok {
		return fmt.Errorf("shipment id is not numeric: %v", raw)
	}
	s.tc.RememberShipmentID(int64(id))
	return nil
}

func (s *shipmentSteps) addBoxes() error {
	return s.tc.PATCH(fmt.Sprintf("/shipments/%d", s.tc.ShipmentID()), map[string]any{
		"box_labels_to_add": s.tc.BoxLabels(),
	})
}

func (s *shipmentSteps) sendShipment() error {
	return s.tc.POST(fmt.Sprintf("/shipments/%d/send", s.tc.ShipmentID()), nil)
}

func (s *shipmentSteps) cancelShipment() error {
	return s.tc.POST(fmt.Sprintf("/shipments/%d/cancel", s.tc.ShipmentID()), nil)
}

func (s *shipmentSteps) startReceiving() error {
	return s.tc.POST(fmt.Sprintf("/shipments/%d/start-receiving", s.tc.ShipmentID()), nil)
}

func (s *shipmentSteps) receiveBox(label string, product, location, size, items int64) error {
	return s.tc.POST(fmt.Sprintf("/shipments/%d/receive", s.tc.ShipmentID()), map[string]any{
		"received_boxes": []map[string]any{{
			"label":              label,
			"target_product_id":  product,
			"target_location_id": location,
			"target_size_id":     size,
			"target_quantity":    items,
		}},
	})
}

func (s *shipmentSteps) shipmentStateShouldBe(state string) error {
	if err := s.tc.GET(fmt.Sprintf("/shipments/%d", s.tc.ShipmentID())); err != nil {
		return err
	}
	got, err := s.tc.ResponseField("state")
	if err != nil {
		return err
	}
	if fmt.Sprintf("%v", got) != state {
		return fmt.Errorf("expected shipment state %q, got %v", state, got)
	}
	return nil
}
