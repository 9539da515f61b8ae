package ports

import (
	"context"

	"freight/internal/core/domain/model/kernel"
)

// ChargeRequest charges the shipper's saved payment method without the
// shipper present.
type ChargeRequest struct {
	EscrowID       kernel.UUID
	OrderID        kernel.UUID
	Amount         kernel.Money
	PaymentMethod  string
	Customer       string
	IdempotencyKey string
}

// ChargeResult names the provider's payment. Settled is true only when the
// provider holds the funds; an unsettled charge is still being processed and
// is confirmed later by a PaymentSucceeded notification.
type ChargeResult struct {
	Reference string
	Settled   bool
}

type RefundRequest struct {
	EscrowID       kernel.UUID
	Reference      string
	Amount         kernel.Money
	IdempotencyKey string
}

// PaymentGateway is the external payment collaborator. Charge returns
// errs.ErrInsufficientFunds when the payment is declined and
// errs.ErrPaymentUnavailable when the provider cannot be reached in time.
type PaymentGateway interface {
	Charge(ctx context.Context, req ChargeRequest) (ChargeResult, error)
	Refund(ctx context.Context, req RefundRequest) error
}

// PaymentNotificationKind is what a verified provider callback reports.
type PaymentNotificationKind string

const (
	PaymentSucceeded PaymentNotificationKind = "payment_succeeded"
	PayoutPaid       PaymentNotificationKind = "payout_paid"
	PaymentIgnored   PaymentNotificationKind = "ignored"
)

// PaymentNotification is a provider callback after signature verification.
type PaymentNotification struct {
	ProviderEventID string
	Type            string
	Kind            PaymentNotificationKind
	EscrowID        kernel.UUID
	Reference       string
}

// WebhookVerifier authenticates and normalizes a raw provider callback.
type WebhookVerifier interface {
	Verify(payload []byte, signature string) (PaymentNotification, error)
}

// WebhookInbox deduplicates provider callbacks by their event id.
type WebhookInbox interface {
	// Record stores the event id and reports false if it was already stored.
	Record(ctx context.Context, provider, eventID, eventType string) (bool, error)
}
