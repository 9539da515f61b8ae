package http

import (
	"net/http"
	"strings"

	"freight/internal/adapters/in/http/api"
	"freight/internal/pkg/metrics"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// RouterConfig assembles the echo instance.
type RouterConfig struct {
	Server        *Server
	Authenticator *Authenticator
	Gatherer      prometheus.Gatherer
	Metrics       *metrics.Metrics
	Logger        *zap.Logger

	// RateLimit is requests per second per principal; zero disables it.
	RateLimit float64
	Burst     int
}

// publicPaths need no bearer token.
var publicPaths = []string{"/health", "/metrics", "/swagger", "/webhooks/"}

func isPublic(c echo.Context) bool {
	path := c.Request().URL.Path
	for _, prefix := range publicPaths {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// NewRouter builds the echo instance with middleware and every route.
func NewRouter(cfg RouterConfig) (*echo.Echo, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	doc, err := api.Load()
	if err != nil {
		return nil, err
	}
	if err = api.RegisterSwagger(doc); err != nil {
		return nil, err
	}
	validator, err := RequestValidator(doc, isPublic)
	if err != nil {
		return nil, err
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = ErrorHandler(logger)

	e.Use(middleware.Recover())
	e.Use(RequestLogger(logger))
	e.Use(cfg.Authenticator.Middleware(isPublic))
	if cfg.RateLimit > 0 {
		e.Use(RateLimiter(rate.Limit(cfg.RateLimit), cfg.Burst, cfg.Metrics))
	}
	e.Use(validator)

	e.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "Healthy")
	})
	if cfg.Gatherer != nil {
		e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{})))
	}
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	RegisterHandlers(e, cfg.Server)
	return e, nil
}

// RegisterHandlers binds every operation of the OpenAPI document.
func RegisterHandlers(e *echo.Echo, s *Server) {
	e.POST("/orders", s.CreateOrder)
	e.GET("/orders/:id", s.GetOrder)
	e.POST("/orders/:id/accept", s.AcceptOrder)
	e.POST("/orders/:id/reject", s.RejectOrder)
	e.PUT("/orders/:id/status", s.UpdateOrderStatus)
	e.POST("/orders/:id/cancel", s.CancelOrder)

	e.POST("/tenders", s.CreateTender)
	e.GET("/tenders/:id", s.GetTender)
	e.POST("/tenders/:id/open", s.OpenTender)
	e.POST("/tenders/:id/cancel", s.CancelTender)
	e.POST("/tenders/:id/bids", s.SubmitBid)
	e.POST("/tenders/:id/bids/:bidId/award", s.AwardBid)

	e.POST("/escrow/orders/:orderId", s.CreateEscrow)
	e.GET("/escrow/:id", s.GetEscrow)
	e.POST("/escrow/:id/fund", s.FundEscrow)
	e.POST("/escrow/:id/release", s.ReleaseEscrow)
	e.POST("/escrow/:id/dispute", s.DisputeEscrow)
	e.POST("/escrow/:id/refund", s.RefundEscrow)
	e.POST("/escrow/:id/cancel", s.CancelEscrow)

	e.POST("/broadcasting/auth", s.SubscribeChannel)
	e.DELETE("/broadcasting/auth", s.UnsubscribeChannel)

	e.POST("/webhooks/payments", s.PaymentWebhook)
}
