package http

import (
	"errors"
	"net/http"

	"freight/internal/pkg/errs"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// retryAfterSeconds is sent with 503 when the payment provider is unavailable.
const retryAfterSeconds = "5"

type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

var statusByCode = map[string]int{
	errs.CodeInvalidTransition:  http.StatusUnprocessableEntity,
	errs.CodeAlreadyAwarded:     http.StatusUnprocessableEntity,
	errs.CodeTenderClosed:       http.StatusUnprocessableEntity,
	errs.CodeInsufficientFunds:  http.StatusUnprocessableEntity,
	errs.CodePrematureRelease:   http.StatusUnprocessableEntity,
	errs.CodeUnauthorized:       http.StatusForbidden,
	errs.CodeNotFound:           http.StatusNotFound,
	errs.CodeStateConflict:      http.StatusConflict,
	errs.CodeValidation:         http.StatusBadRequest,
	errs.CodePaymentUnavailable: http.StatusServiceUnavailable,
}

// StatusFor maps an error from the use cases to its HTTP status.
func StatusFor(err error) int {
	if status, ok := statusByCode[errs.Code(err)]; ok {
		return status
	}
	return http.StatusInternalServerError
}

func (s *Server) fail(c echo.Context, err error) error {
	status := StatusFor(err)
	code := errs.Code(err)
	message := err.Error()

	switch status {
	case http.StatusInternalServerError:
		s.logger.Error("request failed",
			zap.String("method", c.Request().Method),
			zap.String("path", c.Path()),
			zap.Error(err))
		message = "internal error"
	case http.StatusServiceUnavailable:
		c.Response().Header().Set("Retry-After", retryAfterSeconds)
	}
	return c.JSON(status, ErrorBody{Code: code, Message: message})
}

// ErrorHandler renders errors returned by middleware and by echo itself in
// the same body as use case errors.
func ErrorHandler(logger *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status := http.StatusInternalServerError
		message := "internal error"
		var he *echo.HTTPError
		if errors.As(err, &he) {
			status = he.Code
			if m, ok := he.Message.(string); ok {
				message = m
			} else {
				message = http.StatusText(status)
			}
		} else {
			logger.Error("unhandled error", zap.String("path", c.Path()), zap.Error(err))
		}

		code := http.StatusText(status)
		if status == http.StatusTooManyRequests {
			code = "RateLimited"
		}
		if c.Request().Method == http.MethodHead {
			err = c.NoContent(status)
		} else {
			err = c.JSON(status, ErrorBody{Code: code, Message: message})
		}
		if err != nil {
			logger.Warn("writing error response failed", zap.Error(err))
		}
	}
}
