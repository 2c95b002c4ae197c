package agreement

import (
	"context"
	"errors"

	"boxtribute/internal/warehouse"
	id "boxtribute/pkg/domain"
	dErrors "boxtribute/pkg/domain-errors"
	"boxtribute/pkg/platform/sentinel"
	"boxtribute/pkg/requestcontext"
)

// Gate answers whether a shipment between two bases is permitted.
type Gate struct {
	store Store
}

func NewGate(store Store) *Gate {
	return &Gate{store: store}
}

// ValidateShipmentBases enforces the agreement rules for a shipment between
// the two bases:
//
//   - same organisation: always valid, any supplied agreement is ignored
//   - different organisations: the referenced agreement must be accepted,
//     currently within its validity window, and must list the source base on
//     the initiating side and the target base on the other (orientation is
//     checked for unidirectional agreements)
//
// Returns the agreement in effect, or nil for intra-organisation shipments.
func (g *Gate) ValidateShipmentBases(ctx context.Context, source, target *warehouse.Base, agreementID id.AgreementID) (*Agreement, error) {
	if source.ID == target.ID {
		return nil, dErrors.New(dErrors.CodeBadRequest, "source and target base must differ")
	}
	if source.OrganisationID == target.OrganisationID {
		return nil, nil
	}

	if agreementID.IsNil() {
		return nil, dErrors.New(dErrors.CodeBadRequest,
			"shipment between different organisations requires a transfer agreement")
	}
	agr, err := g.store.ByID(ctx, agreementID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.Newf(dErrors.CodeBadRequest, "transfer agreement %s does not exist", agreementID)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load transfer agreement")
	}

	now := requestcontext.Now(ctx)
	if !agr.IsActive(now) {
		return nil, dErrors.New(dErrors.CodeBadRequest, "transfer agreement is not accepted or not currently valid")
	}
	if !agr.covers(source.OrganisationID, source.ID, target.ID) {
		return nil, dErrors.New(dErrors.CodeBadRequest,
			"transfer agreement does not cover shipments from the source base to the target base")
	}
	return agr, nil
}
