package agreement

import (
	"context"

	id "boxtribute/pkg/domain"
)

// Store resolves transfer agreements.
type Store interface {
	ByID(ctx context.Context, agreementID id.AgreementID) (*Agreement, error)
}
