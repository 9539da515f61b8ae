package http

import (
	"context"
	"net/http"

	"freight/internal/core/application/usecases/commands"
	"freight/internal/core/application/usecases/queries"
	"freight/internal/core/domain/model/escrow"
	"freight/internal/core/domain/model/kernel"

	"github.com/labstack/echo/v4"
)

type escrowResponse struct {
	Message string             `json:"message,omitempty"`
	Escrow  queries.EscrowView `json:"escrow"`
}

// CreateEscrow handles POST /escrow/orders/{orderId}.
func (s *Server) CreateEscrow(c echo.Context) error {
	orderID, err := pathID(c, "orderId")
	if err != nil {
		return s.fail(c, err)
	}
	escrowID := kernel.NewUUID()
	cmd, err := commands.NewCreateEscrowCommand(orderID, escrowID, principal(c))
	if err != nil {
		return s.fail(c, err)
	}
	if err = s.h.Escrow.Create(c.Request().Context(), cmd); err != nil {
		return s.fail(c, err)
	}
	return s.respondEscrow(c, http.StatusCreated, escrowID, "Escrow created")
}

// GetEscrow handles GET /escrow/{id}.
func (s *Server) GetEscrow(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return s.fail(c, err)
	}
	return s.respondEscrow(c, http.StatusOK, id, "")
}

type fundRequest struct {
	PaymentMethodID string `json:"payment_method_id"`
	CustomerID      string `json:"customer_id"`
}

// FundEscrow handles POST /escrow/{id}/fund. The escrow is reported funded
// with 200 once the provider holds the money; a charge still processing
// answers 202 with the escrow still created.
func (s *Server) FundEscrow(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return s.fail(c, err)
	}
	var req fundRequest
	if err = bind(c, &req); err != nil {
		return s.fail(c, err)
	}
	cmd, err := commands.NewFundEscrowCommand(id, principal(c), req.PaymentMethodID, req.CustomerID)
	if err != nil {
		return s.fail(c, err)
	}
	if err = s.h.Escrow.Fund(c.Request().Context(), cmd); err != nil {
		return s.fail(c, err)
	}

	q, err := queries.NewGetEscrowQuery(id, principal(c))
	if err != nil {
		return s.fail(c, err)
	}
	view, err := s.h.GetEscrow.Handle(c.Request().Context(), q)
	if err != nil {
		return s.fail(c, err)
	}
	if view.Status == escrow.StatusCreated.String() {
		return c.JSON(http.StatusAccepted, escrowResponse{Message: "Payment processing", Escrow: view})
	}
	return c.JSON(http.StatusOK, escrowResponse{Message: "Escrow funded", Escrow: view})
}

// ReleaseEscrow handles POST /escrow/{id}/release.
func (s *Server) ReleaseEscrow(c echo.Context) error {
	return s.escrowAction(c, "Escrow released", func(ctx context.Context, id kernel.UUID, p kernel.Principal) error {
		cmd, err := commands.NewReleaseEscrowCommand(id, p)
		if err != nil {
			return err
		}
		return s.h.Escrow.Release(ctx, cmd)
	})
}

// DisputeEscrow handles POST /escrow/{id}/dispute.
func (s *Server) DisputeEscrow(c echo.Context) error {
	var req reasonRequest
	if err := bind(c, &req); err != nil {
		return s.fail(c, err)
	}
	return s.escrowAction(c, "Escrow disputed", func(ctx context.Context, id kernel.UUID, p kernel.Principal) error {
		cmd, err := commands.NewDisputeEscrowCommand(id, p, req.Reason)
		if err != nil {
			return err
		}
		return s.h.Escrow.Dispute(ctx, cmd)
	})
}

// RefundEscrow handles POST /escrow/{id}/refund. A single party's call
// records consent; the escrow reports refunded once both consented.
func (s *Server) RefundEscrow(c echo.Context) error {
	return s.escrowAction(c, "Refund requested", func(ctx context.Context, id kernel.UUID, p kernel.Principal) error {
		cmd, err := commands.NewRefundEscrowCommand(id, p)
		if err != nil {
			return err
		}
		return s.h.Escrow.Refund(ctx, cmd)
	})
}

// CancelEscrow handles POST /escrow/{id}/cancel.
func (s *Server) CancelEscrow(c echo.Context) error {
	return s.escrowAction(c, "Escrow cancelled", func(ctx context.Context, id kernel.UUID, p kernel.Principal) error {
		cmd, err := commands.NewCancelEscrowCommand(id, p)
		if err != nil {
			return err
		}
		return s.h.Escrow.Cancel(ctx, cmd)
	})
}

func (s *Server) escrowAction(
	c echo.Context,
	message string,
	run func(ctx context.Context, id kernel.UUID, p kernel.Principal) error,
) error {
	id, err := pathID(c, "id")
	if err != nil {
		return s.fail(c, err)
	}
	if err = run(c.Request().Context(), id, principal(c)); err != nil {
		return s.fail(c, err)
	}
	return s.respondEscrow(c, http.StatusOK, id, message)
}

func (s *Server) respondEscrow(c echo.Context, status int, id kernel.UUID, message string) error {
	q, err := queries.NewGetEscrowQuery(id, principal(c))
	if err != nil {
		return s.fail(c, err)
	}
	view, err := s.h.GetEscrow.Handle(c.Request().Context(), q)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(status, escrowResponse{Message: message, Escrow: view})
}
