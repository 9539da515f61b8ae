package kernel

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"freight/internal/pkg/errs"
	"freight/internal/pkg/guard"

	"github.com/shopspring/decimal"
)

var (
	ErrRouteIsNotConstructed = errs.NewValueIsRequiredError("route must be created via NewRoute")
	ErrCargoIsNotConstructed = errs.NewValueIsRequiredError("cargo must be created via NewCargo")
)

// Route holds pickup and delivery locations with their planned dates.
type Route struct { //nolint:recvcheck //using for validation
	pickupLocation   string
	deliveryLocation string
	pickupDate       time.Time
	deliveryDate     time.Time
	guard            guard.ConstructorGuard
}

// NewRoute requires both locations and a delivery date not before the pickup date.
func NewRoute(pickupLocation, deliveryLocation string, pickupDate, deliveryDate time.Time) (Route, error) {
	pickupLocation = strings.TrimSpace(pickupLocation)
	deliveryLocation = strings.TrimSpace(deliveryLocation)

	var errList []error
	if pickupLocation == "" {
		errList = append(errList, errs.NewValueIsRequiredError("pickupLocation"))
	}
	if deliveryLocation == "" {
		errList = append(errList, errs.NewValueIsRequiredError("deliveryLocation"))
	}
	if pickupDate.IsZero() {
		errList = append(errList, errs.NewValueIsRequiredError("pickupDate"))
	}
	if deliveryDate.IsZero() {
		errList = append(errList, errs.NewValueIsRequiredError("deliveryDate"))
	}
	if err := errors.Join(errList...); err != nil {
		return Route{}, err
	}
	if deliveryDate.Before(pickupDate) {
		return Route{}, errs.NewValueIsInvalidErrorWithCause("deliveryDate",
			fmt.Errorf("%s is before pickup %s", deliveryDate.Format(time.DateOnly), pickupDate.Format(time.DateOnly)))
	}

	return Route{
		pickupLocation:   pickupLocation,
		deliveryLocation: deliveryLocation,
		pickupDate:       pickupDate.UTC(),
		deliveryDate:     deliveryDate.UTC(),
		guard:            guard.NewConstructorGuard(),
	}, nil
}

func (r Route) Validate() error {
	return r.guard.Validate(ErrRouteIsNotConstructed)
}

func (r Route) PickupLocation() string   { return r.pickupLocation }
func (r Route) DeliveryLocation() string { return r.deliveryLocation }
func (r Route) PickupDate() time.Time    { return r.pickupDate }
func (r Route) DeliveryDate() time.Time  { return r.deliveryDate }

// Cargo describes what is transported.
type Cargo struct { //nolint:recvcheck //using for validation
	description string
	weightKg    decimal.Decimal
	guard       guard.ConstructorGuard
}

// NewCargo requires a description and a positive weight.
func NewCargo(description string, weightKg decimal.Decimal) (Cargo, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return Cargo{}, errs.NewValueIsRequiredError("cargoDescription")
	}
	if !weightKg.IsPositive() {
		return Cargo{}, errs.NewValueIsInvalidErrorWithCause("weightKg",
			fmt.Errorf("%s is not greater than 0", weightKg.String()))
	}

	return Cargo{
		description: description,
		weightKg:    weightKg,
		guard:       guard.NewConstructorGuard(),
	}, nil
}

func (c Cargo) Validate() error {
	return c.guard.Validate(ErrCargoIsNotConstructed)
}

func (c Cargo) Description() string       { return c.description }
func (c Cargo) WeightKg() decimal.Decimal { return c.weightKg }
