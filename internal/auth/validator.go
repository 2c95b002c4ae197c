package auth

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	id "boxtribute/pkg/domain"
	dErrors "boxtribute/pkg/domain-errors"
)

// Claim keys are namespaced the way the upstream identity provider emits
// them.
const (
	claimOrganisation = "https://www.boxtribute.com/organisation_id"
	claimBaseIDs      = "https://www.boxtribute.com/base_ids"
	claimPermissions  = "https://www.boxtribute.com/permissions"
	claimGod          = "https://www.boxtribute.com/actions" // contains "manage_everything" for god accounts
)

// TokenValidator verifies access tokens and resolves their claims into an
// Actor. Token issuance is the identity provider's job; we only validate.
type TokenValidator struct {
	signingKey []byte
}

func NewTokenValidator(signingKey string) *TokenValidator {
	return &TokenValidator{signingKey: []byte(signingKey)}
}

// ValidateToken parses and verifies a bearer token and returns the resolved
// actor. The permissions claim historically comes in two shapes: a flat list
// of permission names (valid for all of the user's bases) or a mapping from
// permission name to explicit base ids. Both are resolved into Scopes here,
// once, so services only ever see the tagged representation.
func (v *TokenValidator) ValidateToken(tokenString string) (*Actor, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return v.signingKey, nil
	})
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnauthorized, "invalid or expired token")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "unexpected token claims")
	}
	return actorFromClaims(claims)
}

func actorFromClaims(claims jwt.MapClaims) (*Actor, error) {
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "token has no subject")
	}
	userID, err := id.ParseUserID(sub)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnauthorized, "token subject is not a user id")
	}

	orgID := id.OrganisationID(asInt64(claims[claimOrganisation]))
	bases := asBaseIDs(claims[claimBaseIDs])
	god := hasAction(claims[claimGod], "manage_everything")

	perms, err := resolvePermissions(claims[claimPermissions], bases)
	if err != nil {
		return nil, err
	}
	return NewActor(userID, orgID, bases, perms, god), nil
}

// resolvePermissions normalizes the two historical claim shapes into
// map[Permission]Scope.
func resolvePermissions(raw any, userBases []id.BaseID) (map[Permission]Scope, error) {
	perms := map[Permission]Scope{}
	switch v := raw.(type) {
	case nil:
		return perms, nil
	case []any:
		// Flat list: each permission is valid for all of the user's bases.
		for _, item := range v {
			name, ok := item.(string)
			if !ok {
				return nil, dErrors.New(dErrors.CodeUnauthorized, "malformed permissions claim")
			}
			perms[Permission(name)] = RestrictedTo(userBases...)
		}
		return perms, nil
	case map[string]any:
		// Mapping: permission name to explicit base ids. An empty or absent
		// list means unrestricted.
		for name, basesRaw := range v {
			perms[Permission(name)] = RestrictedTo(asBaseIDs(basesRaw)...)
		}
		return perms, nil
	default:
		return nil, dErrors.New(dErrors.CodeUnauthorized, "malformed permissions claim")
	}
}

func asInt64(v any) int64 {
	switch n := v.(type) {
	case float64:
		return int64(n)
	case int64:
		return n
	case int:
		return int64(n)
	default:
		return 0
	}
}

func asBaseIDs(v any) []id.BaseID {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]id.BaseID, 0, len(list))
	for _, item := range list {
		if n := asInt64(item); n > 0 {
			out = append(out, id.BaseID(n))
		}
	}
	return out
}

func hasAction(v any, action string) bool {
	list, ok := v.([]any)
	if !ok {
		return false
	}
	for _, item := range list {
		if s, ok := item.(string); ok && s == action {
			return true
		}
	}
	return false
}
