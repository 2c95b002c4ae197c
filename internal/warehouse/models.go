// Package warehouse holds the reference entities the transfer core reads
// but never owns: organisations' bases, their locations, and the product,
// size, and tag catalogs. CRUD for these lives outside the core; here they
// are lookup data for validation.
package warehouse

import (
	boxmodels "boxtribute/internal/box/models"
	id "boxtribute/pkg/domain"
)

// Base is a physical site belonging to one organisation.
type Base struct {
	ID             id.BaseID
	OrganisationID id.OrganisationID
	Name           string
}

// Location is a place inside a base where boxes sit. A location may define a
// default box state that newly arriving boxes take on.
type Location struct {
	ID              id.LocationID
	BaseID          id.BaseID
	Name            string
	DefaultBoxState *boxmodels.State
}

// Product is a catalog entry owned by a base.
type Product struct {
	ID     id.ProductID
	BaseID id.BaseID
	Name   string
}

// Size is a product size catalog entry.
type Size struct {
	ID    id.SizeID
	Label string
}

// Tag labels boxes within one base.
type Tag struct {
	ID     id.TagID
	BaseID id.BaseID
	Name   string
}
