package http

import (
	"strings"
	"time"

	"freight/internal/core/domain/model/kernel"
	"freight/internal/pkg/errs"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/oapi-codegen/runtime"
	"github.com/shopspring/decimal"
)

// pathID binds a uuid path parameter the way generated oapi servers do.
func pathID(c echo.Context, name string) (kernel.UUID, error) {
	var id uuid.UUID
	err := runtime.BindStyledParameterWithOptions("simple", name, c.Param(name), &id, runtime.BindStyledParameterOptions{
		ParamLocation: runtime.ParamLocationPath,
		Explode:       false,
		Required:      true,
	})
	if err != nil {
		return kernel.UUID{}, errs.NewValueIsInvalidErrorWithCause(name, err)
	}
	return kernel.UUIDFromBytes(id[:])
}

func bind(c echo.Context, dst any) error {
	if err := c.Bind(dst); err != nil {
		return errs.NewValueIsInvalidErrorWithCause("body", err)
	}
	return nil
}

// routeFields is shared by order and tender creation.
type routeFields struct {
	PickupLocation   string    `json:"pickup_location"`
	DeliveryLocation string    `json:"delivery_location"`
	PickupDate       time.Time `json:"pickup_date"`
	DeliveryDate     time.Time `json:"delivery_date"`
	CargoDescription string    `json:"cargo_description"`
	WeightKg         string    `json:"weight_kg"`
}

func (r routeFields) toDomain() (kernel.Route, kernel.Cargo, error) {
	route, err := kernel.NewRoute(r.PickupLocation, r.DeliveryLocation, r.PickupDate, r.DeliveryDate)
	if err != nil {
		return kernel.Route{}, kernel.Cargo{}, err
	}
	weight, err := decimal.NewFromString(strings.TrimSpace(r.WeightKg))
	if err != nil {
		return kernel.Route{}, kernel.Cargo{}, errs.NewValueIsInvalidErrorWithCause("weight_kg", err)
	}
	cargo, err := kernel.NewCargo(r.CargoDescription, weight)
	if err != nil {
		return kernel.Route{}, kernel.Cargo{}, err
	}
	return route, cargo, nil
}

func optionalID(id *uuid.UUID) (*kernel.UUID, error) {
	if id == nil {
		return nil, nil
	}
	k, err := kernel.UUIDFromBytes(id[:])
	if err != nil {
		return nil, err
	}
	return &k, nil
}

type reasonRequest struct {
	Reason string `json:"reason"`
}
