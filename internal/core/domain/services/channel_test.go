package services_test

import (
	"testing"

	"freight/internal/core/domain/model/kernel"
	"freight/internal/core/domain/services"
	"freight/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseChannel(t *testing.T) {
	id := kernel.NewUUID()

	t.Run("should parse every channel kind", func(t *testing.T) {
		for _, kind := range []services.ChannelKind{
			services.ChannelUser, services.ChannelCompany, services.ChannelConversation,
			services.ChannelOrder, services.ChannelTracking,
		} {
			c, err := services.ParseChannel(string(kind) + "." + id.String())

			require.NoError(t, err, kind)
			assert.Equal(t, kind, c.Kind)
			assert.True(t, c.EntityID.IsEqual(id))
			assert.Equal(t, string(kind)+"."+id.String(), c.Name())
		}
	})

	t.Run("should accept the private- prefix", func(t *testing.T) {
		c, err := services.ParseChannel("private-order." + id.String())

		require.NoError(t, err)
		assert.Equal(t, services.ChannelOrder, c.Kind)
	})

	t.Run("should reject malformed names", func(t *testing.T) {
		for _, name := range []string{
			"",
			"order",
			"invoice." + id.String(),
			"order.42",
			"order.00000000-0000-0000-0000-000000000000",
		} {
			_, err := services.ParseChannel(name)
			assert.Error(t, err, name)
		}

		_, err := services.ParseChannel("invoice." + id.String())
		assert.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})
}
