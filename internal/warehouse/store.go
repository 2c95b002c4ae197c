package warehouse

import (
	"context"

	id "boxtribute/pkg/domain"
)

// Store resolves reference entities. Implementations return
// sentinel.ErrNotFound (wrapped) for missing ids; services translate that
// into the domain error fitting the call site.
type Store interface {
	BaseByID(ctx context.Context, baseID id.BaseID) (*Base, error)
	LocationByID(ctx context.Context, locationID id.LocationID) (*Location, error)
	ProductByID(ctx context.Context, productID id.ProductID) (*Product, error)
	SizeByID(ctx context.Context, sizeID id.SizeID) (*Size, error)
	TagByID(ctx context.Context, tagID id.TagID) (*Tag, error)
}
