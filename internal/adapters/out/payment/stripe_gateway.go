// Package payment is the Stripe side of escrow funding: payment intents for
// fund, refunds for compensation and refund settlement, and verification of
// the provider's webhooks.
package payment

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"syscall"

	"freight/internal/core/ports"
	"freight/internal/pkg/errs"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"
)

// Provider is the name webhook events are recorded under.
const Provider = "stripe"

// Metadata keys set on every object created for an escrow.
const (
	MetadataEscrowID = "escrow_id"
	MetadataOrderID  = "order_id"
)

// StripeGateway implements ports.PaymentGateway with a per-instance client,
// never the package-level stripe.Key.
type StripeGateway struct {
	client *client.API
}

var _ ports.PaymentGateway = (*StripeGateway)(nil)

func NewStripeGateway(secretKey string) *StripeGateway {
	sc := &client.API{}
	sc.Init(secretKey, nil)
	return &StripeGateway{client: sc}
}

// NewStripeGatewayWithBackends points the client at other backends, used to
// talk to stripe-mock or a test server.
func NewStripeGatewayWithBackends(secretKey string, backends *stripe.Backends) *StripeGateway {
	sc := &client.API{}
	sc.Init(secretKey, backends)
	return &StripeGateway{client: sc}
}

// Charge confirms a payment intent for the escrow amount against the
// shipper's saved payment method, off session. The result is settled only
// when the intent succeeded, or awaits capture; a processing intent is
// funded later by the payment_intent.succeeded webhook. Declined intents
// report errs.ErrInsufficientFunds.
func (g *StripeGateway) Charge(ctx context.Context, req ports.ChargeRequest) (ports.ChargeResult, error) {
	if !req.Amount.Amount().IsPositive() {
		return ports.ChargeResult{}, errs.NewValueIsInvalidError("amount")
	}
	if req.PaymentMethod == "" {
		return ports.ChargeResult{}, errs.NewValueIsRequiredError("paymentMethod")
	}

	params := &stripe.PaymentIntentParams{
		Amount:        stripe.Int64(req.Amount.MinorUnits()),
		Currency:      stripe.String(strings.ToLower(req.Amount.Currency())),
		PaymentMethod: stripe.String(req.PaymentMethod),
		Confirm:       stripe.Bool(true),
		OffSession:    stripe.Bool(true),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled:        stripe.Bool(true),
			AllowRedirects: stripe.String(string(stripe.PaymentIntentAutomaticPaymentMethodsAllowRedirectsNever)),
		},
		Description: stripe.String("Escrow for order " + req.OrderID.String()),
	}
	if req.Customer != "" {
		params.Customer = stripe.String(req.Customer)
	}
	params.AddMetadata(MetadataEscrowID, req.EscrowID.String())
	params.AddMetadata(MetadataOrderID, req.OrderID.String())
	if req.IdempotencyKey != "" {
		params.IdempotencyKey = stripe.String(req.IdempotencyKey)
	}
	params.Context = ctx

	pi, err := g.client.PaymentIntents.New(params)
	if err != nil {
		return ports.ChargeResult{}, mapStripeError(err)
	}
	return chargeResult(pi)
}

func chargeResult(pi *stripe.PaymentIntent) (ports.ChargeResult, error) {
	//nolint:exhaustive // remaining statuses are still in progress
	switch pi.Status {
	case stripe.PaymentIntentStatusSucceeded, stripe.PaymentIntentStatusRequiresCapture:
		return ports.ChargeResult{Reference: pi.ID, Settled: true}, nil
	case stripe.PaymentIntentStatusRequiresPaymentMethod, stripe.PaymentIntentStatusCanceled:
		reason := "payment was declined"
		if pi.LastPaymentError != nil && pi.LastPaymentError.Msg != "" {
			reason = pi.LastPaymentError.Msg
		}
		return ports.ChargeResult{}, fmt.Errorf("%w: payment intent %s is %s: %s",
			errs.ErrInsufficientFunds, pi.ID, pi.Status, reason)
	default:
		return ports.ChargeResult{Reference: pi.ID}, nil
	}
}

// Refund returns req.Amount of the payment intent named by req.Reference.
func (g *StripeGateway) Refund(ctx context.Context, req ports.RefundRequest) error {
	if req.Reference == "" {
		return errs.NewValueIsRequiredError("reference")
	}

	params := &stripe.RefundParams{
		PaymentIntent: stripe.String(req.Reference),
		Amount:        stripe.Int64(req.Amount.MinorUnits()),
	}
	params.AddMetadata(MetadataEscrowID, req.EscrowID.String())
	if req.IdempotencyKey != "" {
		params.IdempotencyKey = stripe.String(req.IdempotencyKey)
	}
	params.Context = ctx

	if _, err := g.client.Refunds.New(params); err != nil {
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) && stripeErr.Code == stripe.ErrorCodeChargeAlreadyRefunded {
			return nil
		}
		return mapStripeError(err)
	}
	return nil
}

// mapStripeError turns provider failures into the error taxonomy so stripe
// types stay in this package.
func mapStripeError(err error) error {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		switch {
		case stripeErr.Code == stripe.ErrorCodeCardDeclined,
			stripeErr.Code == stripe.ErrorCodeBalanceInsufficient,
			stripeErr.Code == stripe.ErrorCodeExpiredCard,
			stripeErr.Code == stripe.ErrorCodeAuthenticationRequired,
			stripeErr.DeclineCode == stripe.DeclineCodeInsufficientFunds:
			return fmt.Errorf("%w: %s", errs.ErrInsufficientFunds, stripeErr.Msg)
		case stripeErr.Code == stripe.ErrorCodeRateLimit,
			stripeErr.Code == stripe.ErrorCodeLockTimeout,
			stripeErr.HTTPStatusCode >= http.StatusInternalServerError:
			return fmt.Errorf("%w: %s", errs.ErrPaymentUnavailable, stripeErr.Msg)
		}
		return fmt.Errorf("stripe %s: %w", stripeErr.Type, err)
	}

	if isUnreachable(err) {
		return fmt.Errorf("%w: %w", errs.ErrPaymentUnavailable, err)
	}
	return fmt.Errorf("stripe: %w", err)
}

func isUnreachable(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
