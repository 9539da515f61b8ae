package commands

import (
	"errors"
	"strings"

	"freight/internal/core/domain/model/kernel"
	"freight/internal/core/ports"
	"freight/internal/pkg/errs"
	"freight/internal/pkg/guard"
)

var (
	ErrCreateEscrowCommandIsNotConstructed = errors.New(
		"CreateEscrowCommand must be created via NewCreateEscrowCommand constructor")
	ErrFundEscrowCommandIsNotConstructed = errors.New(
		"FundEscrowCommand must be created via NewFundEscrowCommand constructor")
	ErrReleaseEscrowCommandIsNotConstructed = errors.New(
		"ReleaseEscrowCommand must be created via NewReleaseEscrowCommand constructor")
	ErrDisputeEscrowCommandIsNotConstructed = errors.New(
		"DisputeEscrowCommand must be created via NewDisputeEscrowCommand constructor")
	ErrRefundEscrowCommandIsNotConstructed = errors.New(
		"RefundEscrowCommand must be created via NewRefundEscrowCommand constructor")
	ErrCancelEscrowCommandIsNotConstructed = errors.New(
		"CancelEscrowCommand must be created via NewCancelEscrowCommand constructor")
	ErrApplyPaymentNotificationCommandIsNotConstructed = errors.New(
		"ApplyPaymentNotificationCommand must be created via NewApplyPaymentNotificationCommand constructor")
)

// CreateEscrowCommand opens escrow for an accepted order. escrowID names the new record.
type CreateEscrowCommand struct {
	targetCommand
	escrowID kernel.UUID
}

func NewCreateEscrowCommand(orderID, escrowID kernel.UUID, actor kernel.Principal) (CreateEscrowCommand, error) {
	base, err := newTargetCommand(orderID, actor)
	if err = errors.Join(err, escrowID.Validate()); err != nil {
		return CreateEscrowCommand{}, err
	}
	return CreateEscrowCommand{targetCommand: base, escrowID: escrowID}, nil
}

func (c CreateEscrowCommand) Validate() error {
	return c.validate(ErrCreateEscrowCommandIsNotConstructed)
}
func (c CreateEscrowCommand) OrderID() kernel.UUID  { return c.id }
func (c CreateEscrowCommand) EscrowID() kernel.UUID { return c.escrowID }

// FundEscrowCommand charges the shipper's saved payment method. customer is
// the provider's customer the method is attached to, empty for a method used
// on its own.
type FundEscrowCommand struct {
	targetCommand
	paymentMethod string
	customer      string
}

func NewFundEscrowCommand(
	escrowID kernel.UUID,
	payer kernel.Principal,
	paymentMethod, customer string,
) (FundEscrowCommand, error) {
	base, err := newTargetCommand(escrowID, payer)
	paymentMethod = strings.TrimSpace(paymentMethod)
	if paymentMethod == "" {
		err = errors.Join(err, errs.NewValueIsRequiredError("paymentMethod"))
	}
	if err != nil {
		return FundEscrowCommand{}, err
	}
	return FundEscrowCommand{
		targetCommand: base,
		paymentMethod: paymentMethod,
		customer:      strings.TrimSpace(customer),
	}, nil
}

func (c FundEscrowCommand) Validate() error       { return c.validate(ErrFundEscrowCommandIsNotConstructed) }
func (c FundEscrowCommand) EscrowID() kernel.UUID { return c.id }
func (c FundEscrowCommand) PaymentMethod() string { return c.paymentMethod }
func (c FundEscrowCommand) Customer() string      { return c.customer }

type ReleaseEscrowCommand struct{ targetCommand }

func NewReleaseEscrowCommand(escrowID kernel.UUID, actor kernel.Principal) (ReleaseEscrowCommand, error) {
	base, err := newTargetCommand(escrowID, actor)
	return ReleaseEscrowCommand{base}, err
}

func (c ReleaseEscrowCommand) Validate() error {
	return c.validate(ErrReleaseEscrowCommandIsNotConstructed)
}
func (c ReleaseEscrowCommand) EscrowID() kernel.UUID { return c.id }

type DisputeEscrowCommand struct {
	targetCommand
	reason string
}

func NewDisputeEscrowCommand(escrowID kernel.UUID, actor kernel.Principal, reason string) (DisputeEscrowCommand, error) {
	base, err := newTargetCommand(escrowID, actor)
	if err != nil {
		return DisputeEscrowCommand{}, err
	}
	return DisputeEscrowCommand{targetCommand: base, reason: strings.TrimSpace(reason)}, nil
}

func (c DisputeEscrowCommand) Validate() error {
	return c.validate(ErrDisputeEscrowCommandIsNotConstructed)
}
func (c DisputeEscrowCommand) EscrowID() kernel.UUID { return c.id }
func (c DisputeEscrowCommand) Reason() string        { return c.reason }

type RefundEscrowCommand struct{ targetCommand }

func NewRefundEscrowCommand(escrowID kernel.UUID, actor kernel.Principal) (RefundEscrowCommand, error) {
	base, err := newTargetCommand(escrowID, actor)
	return RefundEscrowCommand{base}, err
}

func (c RefundEscrowCommand) Validate() error {
	return c.validate(ErrRefundEscrowCommandIsNotConstructed)
}
func (c RefundEscrowCommand) EscrowID() kernel.UUID { return c.id }

type CancelEscrowCommand struct{ targetCommand }

func NewCancelEscrowCommand(escrowID kernel.UUID, actor kernel.Principal) (CancelEscrowCommand, error) {
	base, err := newTargetCommand(escrowID, actor)
	return CancelEscrowCommand{base}, err
}

func (c CancelEscrowCommand) Validate() error {
	return c.validate(ErrCancelEscrowCommandIsNotConstructed)
}
func (c CancelEscrowCommand) EscrowID() kernel.UUID { return c.id }

// ApplyPaymentNotificationCommand carries a verified payment provider webhook.
type ApplyPaymentNotificationCommand struct { //nolint:recvcheck //using for validation
	provider     string
	notification ports.PaymentNotification

	guard guard.ConstructorGuard
}

func NewApplyPaymentNotificationCommand(
	provider string,
	n ports.PaymentNotification,
) (ApplyPaymentNotificationCommand, error) {
	var errList []error
	if strings.TrimSpace(provider) == "" {
		errList = append(errList, errs.NewValueIsRequiredError("provider"))
	}
	if strings.TrimSpace(n.ProviderEventID) == "" {
		errList = append(errList, errs.NewValueIsRequiredError("providerEventId"))
	}
	if n.Kind != ports.PaymentIgnored {
		errList = append(errList, n.EscrowID.Validate())
	}
	if err := errors.Join(errList...); err != nil {
		return ApplyPaymentNotificationCommand{}, err
	}

	return ApplyPaymentNotificationCommand{
		provider:     provider,
		notification: n,
		guard:        guard.NewConstructorGuard(),
	}, nil
}

func (c ApplyPaymentNotificationCommand) Validate() error {
	return c.guard.Validate(ErrApplyPaymentNotificationCommandIsNotConstructed)
}

func (c ApplyPaymentNotificationCommand) Provider() string { return c.provider }
func (c ApplyPaymentNotificationCommand) Notification() ports.PaymentNotification {
	return c.notification
}
