package auth

import (
	id "boxtribute/pkg/domain"
)

// Permission names the actions the transfer core gates on. The strings match
// the resource:method convention of the permission claims in access tokens.
type Permission string

const (
	PermStockRead  Permission = "stock:read"
	PermStockWrite Permission = "stock:write"
	PermStockEdit  Permission = "stock:edit"

	PermLocationRead Permission = "location:read"
	PermProductRead  Permission = "product:read"
	PermQRRead       Permission = "qr:read"
	PermQRCreate     Permission = "qr:create"
	PermTagRead      Permission = "tag:read"
	PermTagWrite     Permission = "tag_relation:assign"

	PermShipmentRead  Permission = "shipment:read"
	PermShipmentWrite Permission = "shipment:write"
	PermShipmentEdit  Permission = "shipment:edit"

	PermAgreementRead  Permission = "transfer_agreement:read"
	PermAgreementWrite Permission = "transfer_agreement:write"

	PermHistoryRead Permission = "history:read"
)

// Scope bounds a granted permission to a set of bases. The zero value allows
// nothing; use Unrestricted or RestrictedTo.
//
// Access tokens encode grants either as a flat permission list (meaning "all
// bases the user belongs to") or as a mapping from permission to explicit
// base ids. Both shapes resolve into a Scope at actor construction, so the
// rest of the system never sees the dynamic claim format.
type Scope struct {
	unrestricted bool
	bases        map[id.BaseID]struct{}
}

// Unrestricted grants the permission for every base.
func Unrestricted() Scope {
	return Scope{unrestricted: true}
}

// RestrictedTo grants the permission only for the given bases. An empty list
// resolves to Unrestricted, matching the legacy claim semantics where an
// empty base list meant "no restriction".
func RestrictedTo(bases ...id.BaseID) Scope {
	if len(bases) == 0 {
		return Unrestricted()
	}
	set := make(map[id.BaseID]struct{}, len(bases))
	for _, b := range bases {
		set[b] = struct{}{}
	}
	return Scope{bases: set}
}

// Allows reports whether the scope covers the given base.
func (s Scope) Allows(base id.BaseID) bool {
	if s.unrestricted {
		return true
	}
	_, ok := s.bases[base]
	return ok
}

// Bases returns the explicitly granted base ids; nil when unrestricted.
func (s Scope) Bases() []id.BaseID {
	if s.unrestricted {
		return nil
	}
	out := make([]id.BaseID, 0, len(s.bases))
	for b := range s.bases {
		out = append(out, b)
	}
	return out
}
