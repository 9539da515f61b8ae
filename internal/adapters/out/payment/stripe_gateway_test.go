package payment_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"freight/internal/adapters/out/payment"
	"freight/internal/core/domain/model/kernel"
	"freight/internal/core/ports"
	"freight/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v79"
)

func gatewayAgainst(t *testing.T, handler http.HandlerFunc) *payment.StripeGateway {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	backend := stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
		URL:               stripe.String(srv.URL),
		MaxNetworkRetries: stripe.Int64(0),
		LeveledLogger:     &stripe.LeveledLogger{Level: stripe.LevelNull},
	})
	return payment.NewStripeGatewayWithBackends("sk_test_123", &stripe.Backends{
		API:     backend,
		Connect: backend,
		Uploads: backend,
	})
}

func chargeRequest() ports.ChargeRequest {
	return ports.ChargeRequest{
		EscrowID:       kernel.NewUUID(),
		OrderID:        kernel.NewUUID(),
		Amount:         kernel.MustParseMoney("2500.00", "EUR"),
		PaymentMethod:  "pm_card_visa",
		Customer:       "cus_1",
		IdempotencyKey: "fund-1",
	}
}

func TestStripeGateway_Charge(t *testing.T) {
	req := chargeRequest()
	gw := gatewayAgainst(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/payment_intents", r.URL.Path)
		assert.Equal(t, "fund-1", r.Header.Get("Idempotency-Key"))
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "250000", r.PostForm.Get("amount"))
		assert.Equal(t, "eur", r.PostForm.Get("currency"))
		assert.Equal(t, "pm_card_visa", r.PostForm.Get("payment_method"))
		assert.Equal(t, "cus_1", r.PostForm.Get("customer"))
		assert.Equal(t, "true", r.PostForm.Get("confirm"))
		assert.Equal(t, "true", r.PostForm.Get("off_session"))
		assert.Equal(t, "never", r.PostForm.Get("automatic_payment_methods[allow_redirects]"))
		assert.Equal(t, req.EscrowID.String(), r.PostForm.Get("metadata[escrow_id]"))
		assert.Equal(t, req.OrderID.String(), r.PostForm.Get("metadata[order_id]"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"pi_123","object":"payment_intent","status":"succeeded"}`))
	})

	res, err := gw.Charge(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "pi_123", res.Reference)
	assert.True(t, res.Settled)
}

func TestStripeGateway_ChargeIntentStatus(t *testing.T) {
	tests := []struct {
		status  string
		settled bool
		wantErr error
	}{
		{status: "succeeded", settled: true},
		{status: "requires_capture", settled: true},
		{status: "processing"},
		{status: "requires_action"},
		{status: "requires_payment_method", wantErr: errs.ErrInsufficientFunds},
		{status: "canceled", wantErr: errs.ErrInsufficientFunds},
	}
	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			gw := gatewayAgainst(t, func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(`{"id":"pi_1","object":"payment_intent","status":"` + tt.status + `"}`))
			})

			res, err := gw.Charge(context.Background(), chargeRequest())
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, res.Reference)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "pi_1", res.Reference)
			assert.Equal(t, tt.settled, res.Settled)
		})
	}
}

func TestStripeGateway_ChargeRequiresPaymentMethod(t *testing.T) {
	req := chargeRequest()
	req.PaymentMethod = ""
	_, err := payment.NewStripeGateway("sk_test_123").Charge(context.Background(), req)
	require.ErrorIs(t, err, errs.ErrValueIsRequired)
}

func TestStripeGateway_ChargeErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{
			name:   "declined for funds",
			status: http.StatusPaymentRequired,
			body:   `{"error":{"type":"card_error","code":"card_declined","decline_code":"insufficient_funds","message":"Your card has insufficient funds."}}`,
			want:   errs.ErrInsufficientFunds,
		},
		{
			name:   "needs the shipper to authenticate",
			status: http.StatusPaymentRequired,
			body:   `{"error":{"type":"card_error","code":"authentication_required","message":"This payment requires authentication."}}`,
			want:   errs.ErrInsufficientFunds,
		},
		{
			name:   "provider outage",
			status: http.StatusInternalServerError,
			body:   `{"error":{"type":"api_error","message":"internal"}}`,
			want:   errs.ErrPaymentUnavailable,
		},
		{
			name:   "rate limited",
			status: http.StatusTooManyRequests,
			body:   `{"error":{"type":"invalid_request_error","code":"rate_limit","message":"slow down"}}`,
			want:   errs.ErrPaymentUnavailable,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := gatewayAgainst(t, func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := gw.Charge(context.Background(), chargeRequest())
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestStripeGateway_ChargeTimeout(t *testing.T) {
	gw := gatewayAgainst(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
		w.WriteHeader(http.StatusGatewayTimeout)
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := gw.Charge(ctx, chargeRequest())
	require.ErrorIs(t, err, errs.ErrPaymentUnavailable)
}

func TestStripeGateway_Refund(t *testing.T) {
	escrowID := kernel.NewUUID()
	gw := gatewayAgainst(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/refunds", r.URL.Path)
		assert.Equal(t, "refund-1", r.Header.Get("Idempotency-Key"))
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "pi_123", r.PostForm.Get("payment_intent"))
		assert.Equal(t, "1999", r.PostForm.Get("amount"))
		assert.Equal(t, escrowID.String(), r.PostForm.Get("metadata[escrow_id]"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"re_1","object":"refund","status":"succeeded"}`))
	})

	err := gw.Refund(context.Background(), ports.RefundRequest{
		EscrowID:       escrowID,
		Reference:      "pi_123",
		Amount:         kernel.MustParseMoney("19.99", "EUR"),
		IdempotencyKey: "refund-1",
	})
	require.NoError(t, err)
}

func TestStripeGateway_RefundRequiresReference(t *testing.T) {
	gw := payment.NewStripeGateway("sk_test_123")
	err := gw.Refund(context.Background(), ports.RefundRequest{
		EscrowID: kernel.NewUUID(),
		Amount:   kernel.MustParseMoney("1.00", "EUR"),
	})
	require.ErrorIs(t, err, errs.ErrValueIsRequired)
}

func TestStripeGateway_RefundAlreadyRefunded(t *testing.T) {
	gw := gatewayAgainst(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"type":"invalid_request_error","code":"charge_already_refunded","message":"Charge has already been refunded."}}`))
	})

	err := gw.Refund(context.Background(), ports.RefundRequest{
		EscrowID:  kernel.NewUUID(),
		Reference: "pi_123",
		Amount:    kernel.MustParseMoney("19.99", "EUR"),
	})
	require.NoError(t, err)
}
