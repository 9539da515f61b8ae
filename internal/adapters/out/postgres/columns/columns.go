// Package columns holds the column groups and conversions shared by the
// GORM repositories.
package columns

import (
	"time"

	"freight/internal/core/domain/model/kernel"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Route holds the route columns shared by orders and tenders.
type Route struct {
	PickupLocation   string
	DeliveryLocation string
	PickupDate       time.Time
	DeliveryDate     time.Time
}

type Cargo struct {
	Description string          `gorm:"column:cargo_description"`
	WeightKg    decimal.Decimal `gorm:"column:weight_kg;type:numeric(12,3)"`
}

func RouteFromDomain(r kernel.Route) Route {
	return Route{
		PickupLocation:   r.PickupLocation(),
		DeliveryLocation: r.DeliveryLocation(),
		PickupDate:       r.PickupDate(),
		DeliveryDate:     r.DeliveryDate(),
	}
}

func (c Route) ToDomain() (kernel.Route, error) {
	return kernel.NewRoute(c.PickupLocation, c.DeliveryLocation, c.PickupDate, c.DeliveryDate)
}

func CargoFromDomain(c kernel.Cargo) Cargo {
	return Cargo{Description: c.Description(), WeightKg: c.WeightKg()}
}

func (c Cargo) ToDomain() (kernel.Cargo, error) {
	return kernel.NewCargo(c.Description, c.WeightKg)
}

// ID converts a non-null uuid column.
func ID(id uuid.UUID) (kernel.UUID, error) {
	return kernel.UUIDFromBytes(id[:])
}

// OptionalID converts a nullable uuid column.
func OptionalID(id *uuid.UUID) (*kernel.UUID, error) {
	if id == nil {
		return nil, nil
	}
	kid, err := kernel.UUIDFromBytes(id[:])
	if err != nil {
		return nil, err
	}
	return &kid, nil
}

// OptionalRaw is the inverse of OptionalID.
func OptionalRaw(id *kernel.UUID) *uuid.UUID {
	if id == nil {
		return nil
	}
	raw := id.Bytes()
	return &raw
}

// OptionalMoney converts a nullable amount and currency pair.
func OptionalMoney(amount decimal.NullDecimal, currency *string) (*kernel.Money, error) {
	if !amount.Valid || currency == nil {
		return nil, nil
	}
	m, err := kernel.NewMoney(amount.Decimal, *currency)
	if err != nil {
		return nil, err
	}
	return &m, nil
}
