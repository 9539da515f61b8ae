package payment

import (
	"encoding/json"
	"fmt"

	"freight/internal/core/domain/model/kernel"
	"freight/internal/core/ports"
	"freight/internal/pkg/errs"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/webhook"
)

// SignatureHeader carries the webhook signature.
const SignatureHeader = "Stripe-Signature"

const (
	eventPaymentIntentSucceeded stripe.EventType = "payment_intent.succeeded"
	eventTransferPaid           stripe.EventType = "transfer.paid"
	eventPayoutPaid             stripe.EventType = "payout.paid"
)

// StripeWebhookVerifier checks webhook signatures and reduces the events the
// escrow engine cares about to a ports.PaymentNotification.
type StripeWebhookVerifier struct {
	secret string
}

var _ ports.WebhookVerifier = (*StripeWebhookVerifier)(nil)

func NewStripeWebhookVerifier(secret string) *StripeWebhookVerifier {
	return &StripeWebhookVerifier{secret: secret}
}

func (v *StripeWebhookVerifier) Verify(payload []byte, signature string) (ports.PaymentNotification, error) {
	evt, err := webhook.ConstructEventWithOptions(payload, signature, v.secret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return ports.PaymentNotification{}, errs.NewValueIsInvalidErrorWithCause("signature", err)
	}

	n := ports.PaymentNotification{
		ProviderEventID: evt.ID,
		Type:            string(evt.Type),
		Kind:            ports.PaymentIgnored,
	}

	var (
		kind      ports.PaymentNotificationKind
		reference string
		metadata  map[string]string
	)
	switch evt.Type {
	case eventPaymentIntentSucceeded:
		var pi stripe.PaymentIntent
		if err = decode(evt, &pi); err != nil {
			return ports.PaymentNotification{}, err
		}
		kind, reference, metadata = ports.PaymentSucceeded, pi.ID, pi.Metadata
	case eventTransferPaid:
		var tr stripe.Transfer
		if err = decode(evt, &tr); err != nil {
			return ports.PaymentNotification{}, err
		}
		kind, reference, metadata = ports.PayoutPaid, tr.ID, tr.Metadata
	case eventPayoutPaid:
		var po stripe.Payout
		if err = decode(evt, &po); err != nil {
			return ports.PaymentNotification{}, err
		}
		kind, reference, metadata = ports.PayoutPaid, po.ID, po.Metadata
	default:
		return n, nil
	}

	// Objects created outside this service carry no escrow id.
	escrowID, err := kernel.UUIDFromString(metadata[MetadataEscrowID])
	if err != nil || escrowID.Validate() != nil {
		return n, nil
	}
	n.Kind = kind
	n.EscrowID = escrowID
	n.Reference = reference
	return n, nil
}

// decode reports a signed but malformed payload as invalid input so the
// provider gets a 400 and stops redelivering it.
func decode(evt stripe.Event, dst any) error {
	if err := json.Unmarshal(evt.Data.Raw, dst); err != nil {
		return errs.NewValueIsInvalidErrorWithCause("payload", fmt.Errorf("decode %s: %w", evt.Type, err))
	}
	return nil
}
