package commands

import (
	"errors"

	"freight/internal/core/domain/model/kernel"
	"freight/internal/pkg/guard"
)

var ErrCreateOrderCommandIsNotConstructed = errors.New(
	"CreateOrderCommand must be created via NewCreateOrderCommand constructor",
)

// CreateOrderCommand represents a shipper registering a transport order
// directly, without a tender.
//
// Example:
//
//	cmd, err := NewCreateOrderCommand(kernel.NewUUID(), principal, &carrierID, route, cargo, price)
//	if err != nil {
//	    return fmt.Errorf("invalid order data: %w", err)
//	}
//	if err := handler.Handle(ctx, cmd); err != nil {
//	    return fmt.Errorf("failed to create order: %w", err)
//	}
type CreateOrderCommand struct { //nolint:recvcheck //using for validation
	orderID    kernel.UUID
	shipper    kernel.Principal
	carrierID  *kernel.UUID
	route      kernel.Route
	cargo      kernel.Cargo
	totalPrice kernel.Money

	guard guard.ConstructorGuard
}

// NewCreateOrderCommand validates the order data. carrierID may be nil to
// leave the order open to any carrier.
func NewCreateOrderCommand(
	orderID kernel.UUID,
	shipper kernel.Principal,
	carrierID *kernel.UUID,
	route kernel.Route,
	cargo kernel.Cargo,
	totalPrice kernel.Money,
) (CreateOrderCommand, error) {
	errList := []error{
		orderID.Validate(),
		shipper.Validate(),
		route.Validate(),
		cargo.Validate(),
		totalPrice.Validate(),
	}
	if carrierID != nil {
		errList = append(errList, carrierID.Validate())
	}
	if err := errors.Join(errList...); err != nil {
		return CreateOrderCommand{}, err
	}

	return CreateOrderCommand{
		orderID:    orderID,
		shipper:    shipper,
		carrierID:  carrierID,
		route:      route,
		cargo:      cargo,
		totalPrice: totalPrice,
		guard:      guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the command was created through the constructor.
func (c CreateOrderCommand) Validate() error {
	return c.guard.Validate(ErrCreateOrderCommandIsNotConstructed)
}

func (c CreateOrderCommand) OrderID() kernel.UUID      { return c.orderID }
func (c CreateOrderCommand) Shipper() kernel.Principal { return c.shipper }
func (c CreateOrderCommand) CarrierID() *kernel.UUID   { return c.carrierID }
func (c CreateOrderCommand) Route() kernel.Route       { return c.route }
func (c CreateOrderCommand) Cargo() kernel.Cargo       { return c.cargo }
func (c CreateOrderCommand) TotalPrice() kernel.Money  { return c.totalPrice }
