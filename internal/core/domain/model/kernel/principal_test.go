package kernel_test

import (
	"testing"
	"time"

	"freight/internal/core/domain/model/kernel"
	"freight/internal/pkg/errs"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPrincipal(t *testing.T) {
	company := kernel.MustUUIDFromString(companyIDString)

	t.Run("should represent its own company only", func(t *testing.T) {
		p, err := kernel.NewPrincipal(kernel.NewUUID(), company, kernel.RoleMember)

		require.NoError(t, err)
		assert.True(t, p.Represents(company))
		assert.False(t, p.Represents(kernel.NewUUID()))
		assert.False(t, p.Represents(kernel.UUID{}))
		assert.False(t, p.IsAdmin())
	})

	t.Run("should flag admins", func(t *testing.T) {
		p, err := kernel.NewPrincipal(kernel.NewUUID(), company, kernel.RoleAdmin)

		require.NoError(t, err)
		assert.True(t, p.IsAdmin())
	})

	t.Run("should reject missing ids and unknown roles", func(t *testing.T) {
		_, err := kernel.NewPrincipal(kernel.UUID{}, company, kernel.RoleMember)
		assert.ErrorIs(t, err, kernel.ErrUUIDIsNotConstructed)

		_, err = kernel.NewPrincipal(kernel.NewUUID(), company, kernel.Role("root"))
		assert.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})
}

func TestNewRoute(t *testing.T) {
	pickup := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

	t.Run("should trim locations", func(t *testing.T) {
		r, err := kernel.NewRoute(" Berlin ", "Paris", pickup, pickup.Add(48*time.Hour))

		require.NoError(t, err)
		assert.Equal(t, "Berlin", r.PickupLocation())
		assert.NoError(t, r.Validate())
	})

	t.Run("should collect every missing field", func(t *testing.T) {
		_, err := kernel.NewRoute("", "  ", time.Time{}, time.Time{})

		require.Error(t, err)
		for _, field := range []string{"pickupLocation", "deliveryLocation", "pickupDate", "deliveryDate"} {
			assert.Contains(t, err.Error(), field)
		}
	})

	t.Run("should reject delivery before pickup", func(t *testing.T) {
		_, err := kernel.NewRoute("Berlin", "Paris", pickup, pickup.Add(-time.Hour))

		assert.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})
}

func TestNewCargo(t *testing.T) {
	_, err := kernel.NewCargo("pallets", decimal.Zero)
	assert.ErrorIs(t, err, errs.ErrValueIsInvalid)

	_, err = kernel.NewCargo(" ", decimal.NewFromInt(10))
	assert.ErrorIs(t, err, errs.ErrValueIsRequired)

	c, err := kernel.NewCargo("pallets", decimal.RequireFromString("1200.5"))
	require.NoError(t, err)
	assert.Equal(t, "pallets", c.Description())
}
