package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "boxtribute/pkg/domain"
	dErrors "boxtribute/pkg/domain-errors"
)

func TestScope(t *testing.T) {
	t.Run("unrestricted allows every base", func(t *testing.T) {
		s := Unrestricted()
		assert.True(t, s.Allows(1))
		assert.True(t, s.Allows(9999))
		assert.Nil(t, s.Bases())
	})

	t.Run("restricted allows only the listed bases", func(t *testing.T) {
		s := RestrictedTo(1, 3)
		assert.True(t, s.Allows(1))
		assert.True(t, s.Allows(3))
		assert.False(t, s.Allows(2))
		assert.ElementsMatch(t, []id.BaseID{1, 3}, s.Bases())
	})

	t.Run("empty restriction resolves to unrestricted", func(t *testing.T) {
		s := RestrictedTo()
		assert.True(t, s.Allows(42))
	})

	t.Run("zero value allows nothing", func(t *testing.T) {
		var s Scope
		assert.False(t, s.Allows(1))
	})
}

func TestAuthorize(t *testing.T) {
	actor := NewActor(7, 1, []id.BaseID{1, 3}, map[Permission]Scope{
		PermStockWrite:   RestrictedTo(1),
		PermShipmentRead: Unrestricted(),
	}, false)

	t.Run("permission granted for the base", func(t *testing.T) {
		assert.NoError(t, actor.Authorize(ForPermission(PermStockWrite), ForBase(1)))
	})

	t.Run("permission granted but base out of scope", func(t *testing.T) {
		err := actor.Authorize(ForPermission(PermStockWrite), ForBase(2))
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	t.Run("permission missing entirely", func(t *testing.T) {
		err := actor.Authorize(ForPermission(PermShipmentWrite), ForBase(1))
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	t.Run("permission without base checks any grant", func(t *testing.T) {
		assert.NoError(t, actor.Authorize(ForPermission(PermShipmentRead)))
	})

	t.Run("organisation membership", func(t *testing.T) {
		assert.NoError(t, actor.Authorize(ForOrganisation(1)))

		err := actor.Authorize(ForOrganisation(2))
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	t.Run("user identity", func(t *testing.T) {
		assert.NoError(t, actor.Authorize(ForUser(7)))

		err := actor.Authorize(ForUser(8))
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	t.Run("no selector is a programming error not a denial", func(t *testing.T) {
		err := actor.Authorize()
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInternal))

		err = actor.Authorize(ForBase(1))
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInternal))
	})

	t.Run("god mode passes every check", func(t *testing.T) {
		god := NewActor(1, 99, nil, nil, true)
		assert.NoError(t, god.Authorize(ForPermission(PermStockWrite), ForBase(5)))
		assert.NoError(t, god.Authorize(ForOrganisation(1)))
		assert.NoError(t, god.Authorize(ForUser(12345)))
	})

	t.Run("god mode still rejects a selectorless check", func(t *testing.T) {
		god := NewActor(1, 99, nil, nil, true)
		err := god.Authorize()
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInternal))
	})
}

func TestCan(t *testing.T) {
	actor := NewActor(7, 1, []id.BaseID{1}, map[Permission]Scope{
		PermStockWrite: RestrictedTo(1),
	}, false)

	assert.True(t, actor.Can(PermStockWrite, 1))
	assert.False(t, actor.Can(PermStockWrite, 2))
	assert.False(t, actor.Can(PermShipmentEdit, 1))
}
