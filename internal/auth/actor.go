// Package auth holds the actor context and the permission gate. Every
// mutation in the transfer core receives an explicit *Actor and calls
// Authorize with a resource selector before touching state; there is no
// ambient current-user global.
package auth

import (
	id "boxtribute/pkg/domain"
	dErrors "boxtribute/pkg/domain-errors"
)

// Actor is the authenticated principal of a request, resolved once from the
// access token claims. Permission scopes are immutable after construction.
type Actor struct {
	ID             id.UserID
	OrganisationID id.OrganisationID
	BaseIDs        []id.BaseID
	IsGod          bool

	permissions map[Permission]Scope
}

// NewActor builds an actor with resolved permission scopes.
func NewActor(userID id.UserID, orgID id.OrganisationID, bases []id.BaseID, perms map[Permission]Scope, god bool) *Actor {
	if perms == nil {
		perms = map[Permission]Scope{}
	}
	return &Actor{
		ID:             userID,
		OrganisationID: orgID,
		BaseIDs:        bases,
		IsGod:          god,
		permissions:    perms,
	}
}

// Scope returns the actor's scope for a permission and whether it is granted
// at all.
func (a *Actor) Scope(p Permission) (Scope, bool) {
	s, ok := a.permissions[p]
	return s, ok
}

// Selector names the resource an authorization check is about. Exactly as in
// the upstream contract, calling Authorize without any selector is a
// programming error, not a denial.
type Selector func(*check)

type check struct {
	perm       Permission
	permSet    bool
	base       id.BaseID
	baseSet    bool
	org        id.OrganisationID
	orgSet     bool
	user       id.UserID
	userSet    bool
}

// ForPermission selects a permission check. Without ForBase it verifies the
// permission is granted for at least one base.
func ForPermission(p Permission) Selector {
	return func(c *check) {
		c.perm = p
		c.permSet = true
	}
}

// ForBase narrows a permission check to a single base.
func ForBase(base id.BaseID) Selector {
	return func(c *check) {
		c.base = base
		c.baseSet = true
	}
}

// ForOrganisation checks direct organisation membership instead of a
// permission string.
func ForOrganisation(org id.OrganisationID) Selector {
	return func(c *check) {
		c.org = org
		c.orgSet = true
	}
}

// ForUser checks actor identity.
func ForUser(user id.UserID) Selector {
	return func(c *check) {
		c.user = user
		c.userSet = true
	}
}

// Authorize evaluates the selectors against the actor and returns a
// CodeForbidden error on denial. It never mutates state. A god-mode actor
// passes every check.
func (a *Actor) Authorize(selectors ...Selector) error {
	var c check
	for _, sel := range selectors {
		sel(&c)
	}
	if !c.permSet && !c.orgSet && !c.userSet {
		return dErrors.New(dErrors.CodeInternal, "authorization check without resource selector")
	}
	if a.IsGod {
		return nil
	}

	if c.orgSet && a.OrganisationID != c.org {
		return dErrors.Newf(dErrors.CodeForbidden, "actor is not member of organisation %s", c.org)
	}
	if c.userSet && a.ID != c.user {
		return dErrors.New(dErrors.CodeForbidden, "actor does not match requested user")
	}
	if c.permSet {
		scope, ok := a.permissions[c.perm]
		if !ok {
			return dErrors.Newf(dErrors.CodeForbidden, "missing permission %s", c.perm)
		}
		if c.baseSet && !scope.Allows(c.base) {
			return dErrors.Newf(dErrors.CodeForbidden, "permission %s not granted for base %s", c.perm, c.base)
		}
	}
	return nil
}

// Can is a convenience wrapper reporting authorization as a bool for the
// silent-skip paths of bulk operations.
func (a *Actor) Can(p Permission, base id.BaseID) bool {
	return a.Authorize(ForPermission(p), ForBase(base)) == nil
}
