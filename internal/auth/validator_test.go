package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "boxtribute/pkg/domain"
	dErrors "boxtribute/pkg/domain-errors"
)

const testSigningKey = "unit-test-signing-key"

func signToken(t *testing.T, key string, claims jwt.MapClaims) string {
	t.Helper()
	if _, ok := claims["exp"]; !ok {
		claims["exp"] = time.Now().Add(time.Hour).Unix()
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(key))
	require.NoError(t, err)
	return signed
}

func TestValidateToken(t *testing.T) {
	v := NewTokenValidator(testSigningKey)

	t.Run("resolves flat permission list against the user bases", func(t *testing.T) {
		token := signToken(t, testSigningKey, jwt.MapClaims{
			"sub":             "7",
			claimOrganisation: 1,
			claimBaseIDs:      []any{1, 3},
			claimPermissions:  []any{"stock:write", "shipment:read"},
		})

		actor, err := v.ValidateToken(token)

		require.NoError(t, err)
		assert.Equal(t, id.UserID(7), actor.ID)
		assert.Equal(t, id.OrganisationID(1), actor.OrganisationID)
		assert.Equal(t, []id.BaseID{1, 3}, actor.BaseIDs)
		assert.False(t, actor.IsGod)

		scope, ok := actor.Scope(PermStockWrite)
		require.True(t, ok)
		assert.True(t, scope.Allows(1))
		assert.True(t, scope.Allows(3))
		assert.False(t, scope.Allows(2))
	})

	t.Run("resolves mapped permissions with explicit base ids", func(t *testing.T) {
		token := signToken(t, testSigningKey, jwt.MapClaims{
			"sub":             "8",
			claimOrganisation: 2,
			claimBaseIDs:      []any{2, 4},
			claimPermissions: map[string]any{
				"shipment:edit": []any{2},
				"stock:read":    []any{},
			},
		})

		actor, err := v.ValidateToken(token)

		require.NoError(t, err)
		scope, ok := actor.Scope(PermShipmentEdit)
		require.True(t, ok)
		assert.True(t, scope.Allows(2))
		assert.False(t, scope.Allows(4))

		// Empty base list in the mapped shape means unrestricted.
		scope, ok = actor.Scope(PermStockRead)
		require.True(t, ok)
		assert.True(t, scope.Allows(999))
	})

	t.Run("recognizes god accounts", func(t *testing.T) {
		token := signToken(t, testSigningKey, jwt.MapClaims{
			"sub":    "1",
			claimGod: []any{"manage_everything"},
		})

		actor, err := v.ValidateToken(token)

		require.NoError(t, err)
		assert.True(t, actor.IsGod)
	})

	t.Run("rejects a token signed with another key", func(t *testing.T) {
		token := signToken(t, "some-other-key", jwt.MapClaims{"sub": "7"})

		_, err := v.ValidateToken(token)

		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	t.Run("rejects an expired token", func(t *testing.T) {
		token := signToken(t, testSigningKey, jwt.MapClaims{
			"sub": "7",
			"exp": time.Now().Add(-time.Minute).Unix(),
		})

		_, err := v.ValidateToken(token)

		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	t.Run("rejects a token without a subject", func(t *testing.T) {
		token := signToken(t, testSigningKey, jwt.MapClaims{
			claimOrganisation: 1,
		})

		_, err := v.ValidateToken(token)

		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	t.Run("rejects a non numeric subject", func(t *testing.T) {
		token := signToken(t, testSigningKey, jwt.MapClaims{"sub": "alice"})

		_, err := v.ValidateToken(token)

		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	t.Run("rejects garbage", func(t *testing.T) {
		_, err := v.ValidateToken("not.a.token")

		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	t.Run("rejects a malformed permissions claim", func(t *testing.T) {
		token := signToken(t, testSigningKey, jwt.MapClaims{
			"sub":            "7",
			claimPermissions: "stock:write",
		})

		_, err := v.ValidateToken(token)

		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})
}
