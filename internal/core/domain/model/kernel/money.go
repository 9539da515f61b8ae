package kernel

import (
	"fmt"
	"regexp"

	"freight/internal/pkg/errs"
	"freight/internal/pkg/guard"

	"github.com/shopspring/decimal"
)

// MoneyScale is the number of minor-unit digits every amount is kept at.
const MoneyScale = 2

var (
	ErrMoneyIsNotConstructed = errs.NewValueIsRequiredError("money must be created via NewMoney or ParseMoney")

	currencyPattern = regexp.MustCompile(`^[A-Z]{3}$`)
)

// Money is a positive fixed-point amount in a single ISO 4217 currency.
// Amounts never carry more than MoneyScale fractional digits.
type Money struct { //nolint:recvcheck //using for validation
	amount   decimal.Decimal
	currency string
	guard    guard.ConstructorGuard
}

// NewMoney validates amount and currency.
func NewMoney(amount decimal.Decimal, currency string) (Money, error) {
	if !amount.IsPositive() {
		return Money{}, errs.NewValueIsInvalidErrorWithCause(
			"amount", fmt.Errorf("%s is not greater than 0", amount.String()))
	}
	if !amount.Equal(amount.Round(MoneyScale)) {
		return Money{}, errs.NewValueIsInvalidErrorWithCause(
			"amount", fmt.Errorf("%s has more than %d decimal places", amount.String(), MoneyScale))
	}
	if !currencyPattern.MatchString(currency) {
		return Money{}, errs.NewValueIsInvalidErrorWithCause(
			"currency", fmt.Errorf("%q is not an ISO 4217 code", currency))
	}

	return Money{
		amount:   amount,
		currency: currency,
		guard:    guard.NewConstructorGuard(),
	}, nil
}

// ParseMoney parses a decimal string such as "1000.00".
func ParseMoney(amount, currency string) (Money, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return Money{}, errs.NewValueIsInvalidErrorWithCause("amount", err)
	}
	return NewMoney(d, currency)
}

// MustParseMoney is ParseMoney for tests and fixtures.
func MustParseMoney(amount, currency string) Money {
	m, err := ParseMoney(amount, currency)
	if err != nil {
		panic(err)
	}
	return m
}

func (m Money) Validate() error {
	return m.guard.Validate(ErrMoneyIsNotConstructed)
}

func (m Money) Amount() decimal.Decimal {
	return m.amount
}

func (m Money) Currency() string {
	return m.currency
}

// MinorUnits returns the amount in cents, as payment providers expect.
func (m Money) MinorUnits() int64 {
	return m.amount.Shift(MoneyScale).IntPart()
}

// IsEqual compares amount and currency; 10.0 EUR equals 10.00 EUR.
func (m Money) IsEqual(other Money) bool {
	return m.currency == other.currency && m.amount.Equal(other.amount)
}

// LessThanOrEqual compares two amounts in the same currency.
func (m Money) LessThanOrEqual(other Money) (bool, error) {
	if m.currency != other.currency {
		return false, errs.NewValueIsInvalidErrorWithCause(
			"currency", fmt.Errorf("%s differs from %s", m.currency, other.currency))
	}
	return m.amount.LessThanOrEqual(other.amount), nil
}

func (m Money) String() string {
	return m.amount.StringFixed(MoneyScale) + " " + m.currency
}
