package commands

import (
	"context"
	"time"

	"freight/internal/core/domain/model/order"

	"go.uber.org/zap"
)

// CreateOrderCommandHandler stores a new pending order.
type CreateOrderCommandHandler struct {
	uowFactory UoWFactory
	logger     *zap.Logger
}

func NewCreateOrderCommandHandler(uowFactory UoWFactory, logger *zap.Logger) CreateOrderCommandHandler {
	return CreateOrderCommandHandler{
		uowFactory: uowFactory,
		logger:     logger.With(zap.String("component", "create_order")),
	}
}

func (h *CreateOrderCommandHandler) Handle(ctx context.Context, cmd CreateOrderCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	o, err := order.NewOrder(order.Draft{
		ID:         cmd.OrderID(),
		Shipper:    cmd.Shipper(),
		CarrierID:  cmd.CarrierID(),
		Route:      cmd.Route(),
		Cargo:      cmd.Cargo(),
		TotalPrice: cmd.TotalPrice(),
	}, time.Now())
	if err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if err = uow.OrderRepository().Add(ctx, o); err != nil {
		return err
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	h.logger.Info("order created",
		zap.Stringer("order_id", o.ID()),
		zap.Stringer("shipper_id", o.ShipperID()),
		zap.Stringer("total_price", o.TotalPrice()))
	return nil
}
