// Package store persists boxes. Implementations return sentinel errors for
// missing or conflicting records; the service layer translates them.
package store

import (
	"context"

	"boxtribute/internal/box/models"
	id "boxtribute/pkg/domain"
)

type Store interface {
	// Create inserts the box and returns it with its assigned id.
	Create(ctx context.Context, box *models.Box) (*models.Box, error)
	// ByLabel resolves a box by its printed label, including soft-deleted
	// boxes; callers filter on DeletedOn.
	ByLabel(ctx context.Context, label id.BoxLabel) (*models.Box, error)
	ByID(ctx context.Context, boxID id.BoxID) (*models.Box, error)
	// Update persists all mutable fields of the box.
	Update(ctx context.Context, box *models.Box) error
	LabelExists(ctx context.Context, label id.BoxLabel) (bool, error)
}
