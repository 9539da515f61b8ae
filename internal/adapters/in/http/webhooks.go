package http

import (
	"io"
	"net/http"

	"freight/internal/adapters/out/payment"
	"freight/internal/core/application/usecases/commands"
	"freight/internal/pkg/errs"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const maxWebhookBody = 1 << 20

// PaymentWebhook handles POST /webhooks/payments. It answers 2xx for every
// verified notification the ledger processed or deliberately skipped, and
// 5xx only when storage failed, so the provider retries just those.
func (s *Server) PaymentWebhook(c echo.Context) error {
	body, err := io.ReadAll(http.MaxBytesReader(c.Response(), c.Request().Body, maxWebhookBody))
	if err != nil {
		return s.fail(c, errs.NewValueIsInvalidErrorWithCause("body", err))
	}

	n, err := s.h.WebhookVerifier.Verify(body, c.Request().Header.Get(payment.SignatureHeader))
	if err != nil {
		s.logger.Warn("payment webhook rejected", zap.Error(err))
		return s.fail(c, err)
	}

	cmd, err := commands.NewApplyPaymentNotificationCommand(s.h.WebhookProvider, n)
	if err != nil {
		return s.fail(c, err)
	}
	if err = s.h.Escrow.ApplyNotification(c.Request().Context(), cmd); err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, map[string]bool{"received": true})
}
