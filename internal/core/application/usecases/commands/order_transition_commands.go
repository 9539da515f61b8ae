package commands

import (
	"errors"
	"strings"

	"freight/internal/core/domain/model/kernel"
	"freight/internal/core/domain/model/order"
)

var (
	ErrAcceptOrderCommandIsNotConstructed = errors.New(
		"AcceptOrderCommand must be created via NewAcceptOrderCommand constructor")
	ErrRejectOrderCommandIsNotConstructed = errors.New(
		"RejectOrderCommand must be created via NewRejectOrderCommand constructor")
	ErrUpdateOrderStatusCommandIsNotConstructed = errors.New(
		"UpdateOrderStatusCommand must be created via NewUpdateOrderStatusCommand constructor")
	ErrCancelOrderCommandIsNotConstructed = errors.New(
		"CancelOrderCommand must be created via NewCancelOrderCommand constructor")
)

// AcceptOrderCommand is a carrier taking on a pending order.
type AcceptOrderCommand struct{ targetCommand }

func NewAcceptOrderCommand(orderID kernel.UUID, actor kernel.Principal) (AcceptOrderCommand, error) {
	base, err := newTargetCommand(orderID, actor)
	return AcceptOrderCommand{base}, err
}

func (c AcceptOrderCommand) Validate() error {
	return c.validate(ErrAcceptOrderCommandIsNotConstructed)
}
func (c AcceptOrderCommand) OrderID() kernel.UUID { return c.id }

// RejectOrderCommand is the designated carrier declining a pending order.
type RejectOrderCommand struct{ targetCommand }

func NewRejectOrderCommand(orderID kernel.UUID, actor kernel.Principal) (RejectOrderCommand, error) {
	base, err := newTargetCommand(orderID, actor)
	return RejectOrderCommand{base}, err
}

func (c RejectOrderCommand) Validate() error {
	return c.validate(ErrRejectOrderCommandIsNotConstructed)
}
func (c RejectOrderCommand) OrderID() kernel.UUID { return c.id }

// UpdateOrderStatusCommand requests a move to any status of the order state machine.
type UpdateOrderStatusCommand struct {
	targetCommand
	target order.Status
}

func NewUpdateOrderStatusCommand(
	orderID kernel.UUID,
	actor kernel.Principal,
	target order.Status,
) (UpdateOrderStatusCommand, error) {
	base, err := newTargetCommand(orderID, actor)
	if err = errors.Join(err, target.Validate()); err != nil {
		return UpdateOrderStatusCommand{}, err
	}
	return UpdateOrderStatusCommand{targetCommand: base, target: target}, nil
}

func (c UpdateOrderStatusCommand) Validate() error {
	return c.validate(ErrUpdateOrderStatusCommandIsNotConstructed)
}
func (c UpdateOrderStatusCommand) OrderID() kernel.UUID { return c.id }
func (c UpdateOrderStatusCommand) Target() order.Status { return c.target }

// CancelOrderCommand cancels an order with a free-text reason kept on the tombstone.
type CancelOrderCommand struct {
	targetCommand
	reason string
}

func NewCancelOrderCommand(orderID kernel.UUID, actor kernel.Principal, reason string) (CancelOrderCommand, error) {
	base, err := newTargetCommand(orderID, actor)
	if err != nil {
		return CancelOrderCommand{}, err
	}
	return CancelOrderCommand{targetCommand: base, reason: strings.TrimSpace(reason)}, nil
}

func (c CancelOrderCommand) Validate() error {
	return c.validate(ErrCancelOrderCommandIsNotConstructed)
}
func (c CancelOrderCommand) OrderID() kernel.UUID { return c.id }
func (c CancelOrderCommand) Reason() string       { return c.reason }
