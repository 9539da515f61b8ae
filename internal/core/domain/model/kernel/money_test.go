package kernel_test

import (
	"testing"

	"freight/internal/core/domain/model/kernel"
	"freight/internal/pkg/errs"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMoney(t *testing.T) {
	t.Run("should accept a positive amount with two decimals", func(t *testing.T) {
		m, err := kernel.ParseMoney("1000.00", "EUR")

		require.NoError(t, err)
		assert.NoError(t, m.Validate())
		assert.Equal(t, "1000.00 EUR", m.String())
		assert.Equal(t, int64(100000), m.MinorUnits())
	})

	t.Run("should reject invalid amounts and currencies", func(t *testing.T) {
		cases := []struct {
			name     string
			amount   string
			currency string
		}{
			{"zero", "0", "EUR"},
			{"negative", "-5.00", "EUR"},
			{"three decimals", "10.005", "EUR"},
			{"lowercase currency", "10.00", "eur"},
			{"long currency", "10.00", "EURO"},
			{"not a number", "ten", "EUR"},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				_, err := kernel.ParseMoney(tc.amount, tc.currency)

				assert.ErrorIs(t, err, errs.ErrValueIsInvalid)
			})
		}
	})

	t.Run("should keep 0.1 plus 0.2 exact", func(t *testing.T) {
		m, err := kernel.NewMoney(decimal.RequireFromString("0.1").Add(decimal.RequireFromString("0.2")), "USD")

		require.NoError(t, err)
		assert.True(t, m.IsEqual(kernel.MustParseMoney("0.30", "USD")))
	})
}

func TestMoney_Compare(t *testing.T) {
	small := kernel.MustParseMoney("10", "EUR")
	big := kernel.MustParseMoney("10.50", "EUR")

	t.Run("should compare within a currency", func(t *testing.T) {
		le, err := small.LessThanOrEqual(big)

		require.NoError(t, err)
		assert.True(t, le)
		assert.True(t, small.IsEqual(kernel.MustParseMoney("10.00", "EUR")))
	})

	t.Run("should refuse to compare across currencies", func(t *testing.T) {
		_, err := small.LessThanOrEqual(kernel.MustParseMoney("10", "USD"))

		assert.ErrorIs(t, err, errs.ErrValueIsInvalid)
		assert.False(t, small.IsEqual(kernel.MustParseMoney("10", "USD")))
	})

	t.Run("zero value is not constructed", func(t *testing.T) {
		var m kernel.Money

		assert.ErrorIs(t, m.Validate(), errs.ErrValueIsRequired)
	})
}
