// Package agreement validates that cross-organisation shipments are covered
// by an active transfer agreement. Agreement CRUD itself lives outside the
// transfer core; this package reads agreements and answers one question: may
// a shipment run from this source base to this target base right now.
package agreement

import (
	"time"

	id "boxtribute/pkg/domain"
)

// AgreementState is the lifecycle stage of a transfer agreement.
type AgreementState string

const (
	StateUnderReview AgreementState = "UnderReview"
	StateAccepted    AgreementState = "Accepted"
	StateRejected    AgreementState = "Rejected"
	StateCanceled    AgreementState = "Canceled"
	StateExpired     AgreementState = "Expired"
)

// AgreementType is the directionality of an agreement.
type AgreementType string

const (
	// TypeBidirectional allows either organisation to initiate shipments.
	TypeBidirectional AgreementType = "Bidirectional"
	// TypeUnidirectional allows only the source organisation to initiate.
	TypeUnidirectional AgreementType = "SendingTo"
)

// Agreement is the authorization contract between two organisations.
// Covered bases are listed per side; a shipment is covered when its source
// base appears on the initiating side and its target base on the other.
type Agreement struct {
	ID                   id.AgreementID
	SourceOrganisationID id.OrganisationID
	TargetOrganisationID id.OrganisationID
	Type                 AgreementType
	State                AgreementState
	ValidFrom            time.Time
	ValidUntil           *time.Time // nil means open-ended
	SourceBaseIDs        []id.BaseID
	TargetBaseIDs        []id.BaseID
}

// IsActive reports whether the agreement is accepted and its validity window
// contains now.
func (a *Agreement) IsActive(now time.Time) bool {
	if a.State != StateAccepted {
		return false
	}
	if now.Before(a.ValidFrom) {
		return false
	}
	if a.ValidUntil != nil && now.After(*a.ValidUntil) {
		return false
	}
	return true
}

// covers reports whether the base pair is listed for the given orientation.
func (a *Agreement) covers(sourceOrg id.OrganisationID, sourceBase, targetBase id.BaseID) bool {
	if sourceOrg == a.SourceOrganisationID {
		return containsBase(a.SourceBaseIDs, sourceBase) && containsBase(a.TargetBaseIDs, targetBase)
	}
	if sourceOrg == a.TargetOrganisationID && a.Type == TypeBidirectional {
		return containsBase(a.TargetBaseIDs, sourceBase) && containsBase(a.SourceBaseIDs, targetBase)
	}
	return false
}

func containsBase(bases []id.BaseID, base id.BaseID) bool {
	for _, b := range bases {
		if b == base {
			return true
		}
	}
	return false
}
