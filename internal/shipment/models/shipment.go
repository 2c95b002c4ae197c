// Package models holds the shipment aggregate: the shipment itself, its
// lifecycle state, and the per-box detail records. State transitions are
// validated here; the service layer decides who may trigger them and what
// happens to the boxes.
package models

import (
	"time"

	id "boxtribute/pkg/domain"
	dErrors "boxtribute/pkg/domain-errors"
)

// State is the lifecycle stage of a shipment.
type State string

const (
	StatePreparing State = "Preparing"
	StateSent      State = "Sent"
	StateReceiving State = "Receiving"
	StateCompleted State = "Completed"
	StateLost      State = "Lost"
	StateCanceled  State = "Canceled"
)

// transitions is the closed set of legal state changes. Completed → Receiving
// exists only for reopening: a box that was marked lost during receiving can
// be brought back into the flow, which makes its detail pending again.
var transitions = map[State][]State{
	StatePreparing: {StateSent, StateCanceled},
	StateSent:      {StateReceiving, StateLost},
	StateReceiving: {StateCompleted},
	StateCompleted: {StateReceiving},
}

func (s State) CanTransitionTo(to State) bool {
	for _, next := range transitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the state admits no caller-initiated mutation.
func (s State) IsTerminal() bool {
	return s == StateCompleted || s == StateLost || s == StateCanceled
}

func (s State) IsValid() bool {
	switch s {
	case StatePreparing, StateSent, StateReceiving, StateCompleted, StateLost, StateCanceled:
		return true
	}
	return false
}

// Shipment is the aggregate root for a cross-base transfer.
//
// Invariants:
//   - SourceBaseID differs from TargetBaseID
//   - AgreementID is set for cross-organisation shipments and nil otherwise
//   - State follows the transition table; Completed, Lost, and Canceled are
//     terminal for caller-initiated mutations
//   - a box has at most one live (non-removed) detail on the shipment
type Shipment struct {
	ID           id.ShipmentID
	Code         id.ShipmentCode
	SourceBaseID id.BaseID
	TargetBaseID id.BaseID
	AgreementID  id.AgreementID
	State        State

	StartedBy          id.UserID
	StartedOn          time.Time
	SentBy             *id.UserID
	SentOn             *time.Time
	ReceivingStartedBy *id.UserID
	ReceivingStartedOn *time.Time
	CompletedBy        *id.UserID
	CompletedOn        *time.Time
	CanceledBy         *id.UserID
	CanceledOn         *time.Time

	Details []*Detail
}

// LiveDetails returns the details that have not been removed during
// preparation. These are the boxes that travel.
func (s *Shipment) LiveDetails() []*Detail {
	var live []*Detail
	for _, d := range s.Details {
		if d.IsLive() {
			live = append(live, d)
		}
	}
	return live
}

// DetailForBox returns the box's live detail on this shipment, or nil.
func (s *Shipment) DetailForBox(boxID id.BoxID) *Detail {
	for _, d := range s.Details {
		if d.BoxID == boxID && d.IsLive() {
			return d
		}
	}
	return nil
}

// AllResolved reports whether every live detail has been received or marked
// lost. A shipment in Receiving auto-completes once this holds.
func (s *Shipment) AllResolved() bool {
	for _, d := range s.LiveDetails() {
		if d.IsPending() {
			return false
		}
	}
	return true
}

func (s *Shipment) CanUpdateWhenPreparing() error {
	if s.State != StatePreparing {
		return dErrors.Newf(dErrors.CodeBadRequest, "shipment %s is not in Preparing state", s.Code)
	}
	return nil
}

func (s *Shipment) CanUpdateWhenReceiving() error {
	if s.State != StateReceiving {
		return dErrors.Newf(dErrors.CodeBadRequest, "shipment %s is not in Receiving state", s.Code)
	}
	return nil
}

func (s *Shipment) CanSend() error {
	if s.State != StatePreparing {
		return dErrors.Newf(dErrors.CodeBadRequest, "shipment %s cannot be sent from state %s", s.Code, s.State)
	}
	return nil
}

// ApplySend transitions the shipment to Sent. Call CanSend first.
func (s *Shipment) ApplySend(actor id.UserID, now time.Time) {
	s.State = StateSent
	s.SentBy = &actor
	s.SentOn = &now
}

func (s *Shipment) CanStartReceiving() error {
	if s.State != StateSent {
		return dErrors.Newf(dErrors.CodeBadRequest, "shipment %s cannot start receiving from state %s", s.Code, s.State)
	}
	return nil
}

func (s *Shipment) ApplyStartReceiving(actor id.UserID, now time.Time) {
	s.State = StateReceiving
	s.ReceivingStartedBy = &actor
	s.ReceivingStartedOn = &now
}

func (s *Shipment) CanCancel() error {
	if s.State != StatePreparing {
		return dErrors.Newf(dErrors.CodeBadRequest, "shipment %s cannot be canceled from state %s", s.Code, s.State)
	}
	return nil
}

func (s *Shipment) ApplyCancel(actor id.UserID, now time.Time) {
	s.State = StateCanceled
	s.CanceledBy = &actor
	s.CanceledOn = &now
}

func (s *Shipment) CanMarkLost() error {
	if s.State != StateSent {
		return dErrors.Newf(dErrors.CodeBadRequest, "shipment %s cannot be marked lost from state %s", s.Code, s.State)
	}
	return nil
}

func (s *Shipment) ApplyMarkLost() {
	s.State = StateLost
}

// ApplyComplete closes the shipment after the last pending detail has been
// resolved.
func (s *Shipment) ApplyComplete(actor id.UserID, now time.Time) {
	s.State = StateCompleted
	s.CompletedBy = &actor
	s.CompletedOn = &now
}

// ApplyReopen moves a completed shipment back into Receiving. Used when a
// not-delivered box re-enters the flow after the shipment auto-completed.
func (s *Shipment) ApplyReopen() {
	s.State = StateReceiving
	s.CompletedBy = nil
	s.CompletedOn = nil
}

// NewShipment constructs a shipment in the Preparing state.
func NewShipment(code id.ShipmentCode, source, target id.BaseID, agreementID id.AgreementID, actor id.UserID, now time.Time) (*Shipment, error) {
	if source == target {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "source and target base must differ")
	}
	return &Shipment{
		Code:         code,
		SourceBaseID: source,
		TargetBaseID: target,
		AgreementID:  agreementID,
		State:        StatePreparing,
		StartedBy:    actor,
		StartedOn:    now,
	}, nil
}
