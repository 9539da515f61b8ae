package http

import (
	"net/http"

	"freight/internal/core/application/usecases/commands"
	"freight/internal/core/application/usecases/queries"
	"freight/internal/core/domain/model/kernel"
	"freight/internal/core/domain/model/order"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type newOrderRequest struct {
	routeFields
	CarrierID  *uuid.UUID `json:"carrier_id"`
	TotalPrice string     `json:"total_price"`
	Currency   string     `json:"currency"`
}

type statusRequest struct {
	Status string `json:"status"`
}

type orderResponse struct {
	Message string            `json:"message,omitempty"`
	Order   queries.OrderView `json:"order"`
}

// CreateOrder handles POST /orders.
func (s *Server) CreateOrder(c echo.Context) error {
	var req newOrderRequest
	if err := bind(c, &req); err != nil {
		return s.fail(c, err)
	}
	route, cargo, err := req.toDomain()
	if err != nil {
		return s.fail(c, err)
	}
	carrierID, err := optionalID(req.CarrierID)
	if err != nil {
		return s.fail(c, err)
	}
	price, err := kernel.ParseMoney(req.TotalPrice, req.Currency)
	if err != nil {
		return s.fail(c, err)
	}

	orderID := kernel.NewUUID()
	cmd, err := commands.NewCreateOrderCommand(orderID, principal(c), carrierID, route, cargo, price)
	if err != nil {
		return s.fail(c, err)
	}
	if err = s.h.CreateOrder.Handle(c.Request().Context(), cmd); err != nil {
		return s.fail(c, err)
	}
	return s.respondOrder(c, http.StatusCreated, orderID, "Order created")
}

// GetOrder handles GET /orders/{id}.
func (s *Server) GetOrder(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return s.fail(c, err)
	}
	return s.respondOrder(c, http.StatusOK, id, "")
}

// AcceptOrder handles POST /orders/{id}/accept.
func (s *Server) AcceptOrder(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return s.fail(c, err)
	}
	cmd, err := commands.NewAcceptOrderCommand(id, principal(c))
	if err != nil {
		return s.fail(c, err)
	}
	if err = s.h.OrderTransitions.Accept(c.Request().Context(), cmd); err != nil {
		return s.fail(c, err)
	}
	return s.respondOrder(c, http.StatusOK, id, "Order accepted")
}

// RejectOrder handles POST /orders/{id}/reject.
func (s *Server) RejectOrder(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return s.fail(c, err)
	}
	cmd, err := commands.NewRejectOrderCommand(id, principal(c))
	if err != nil {
		return s.fail(c, err)
	}
	if err = s.h.OrderTransitions.Reject(c.Request().Context(), cmd); err != nil {
		return s.fail(c, err)
	}
	return s.respondOrder(c, http.StatusOK, id, "Order rejected")
}

// UpdateOrderStatus handles PUT /orders/{id}/status.
func (s *Server) UpdateOrderStatus(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return s.fail(c, err)
	}
	var req statusRequest
	if err = bind(c, &req); err != nil {
		return s.fail(c, err)
	}
	target, err := order.ParseStatus(req.Status)
	if err != nil {
		return s.fail(c, err)
	}
	cmd, err := commands.NewUpdateOrderStatusCommand(id, principal(c), target)
	if err != nil {
		return s.fail(c, err)
	}
	if err = s.h.OrderTransitions.UpdateStatus(c.Request().Context(), cmd); err != nil {
		return s.fail(c, err)
	}
	return s.respondOrder(c, http.StatusOK, id, "Order status updated")
}

// CancelOrder handles POST /orders/{id}/cancel.
func (s *Server) CancelOrder(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return s.fail(c, err)
	}
	var req reasonRequest
	if err = bind(c, &req); err != nil {
		return s.fail(c, err)
	}
	cmd, err := commands.NewCancelOrderCommand(id, principal(c), req.Reason)
	if err != nil {
		return s.fail(c, err)
	}
	if err = s.h.OrderTransitions.Cancel(c.Request().Context(), cmd); err != nil {
		return s.fail(c, err)
	}
	return s.respondOrder(c, http.StatusOK, id, "Order cancelled")
}

func (s *Server) readOrder(c echo.Context, id kernel.UUID) (queries.OrderView, error) {
	q, err := queries.NewGetOrderQuery(id, principal(c))
	if err != nil {
		return queries.OrderView{}, err
	}
	return s.h.GetOrder.Handle(c.Request().Context(), q)
}

func (s *Server) respondOrder(c echo.Context, status int, id kernel.UUID, message string) error {
	view, err := s.readOrder(c, id)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(status, orderResponse{Message: message, Order: view})
}
