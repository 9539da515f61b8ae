package commands

import (
	"context"
	"errors"
	"time"

	"freight/internal/core/domain/model/escrow"
	"freight/internal/core/domain/model/kernel"
	"freight/internal/core/domain/model/order"
	"freight/internal/pkg/errs"

	"go.uber.org/zap"
)

// OrderTransitionHandler applies order state machine operations. Each call
// reads the order, applies the transition and writes it back at the version
// it read, retrying the whole cycle on a version conflict.
//
// Reaching delivered marks the order's escrow deliverable; cancelling moves
// a funded escrow to disputed and cancels an unfunded one. Both happen in
// the same transaction as the order change.
type OrderTransitionHandler struct {
	uowFactory UoWFactory
	retries    int
	logger     *zap.Logger
}

func NewOrderTransitionHandler(uowFactory UoWFactory, retries int, logger *zap.Logger) OrderTransitionHandler {
	return OrderTransitionHandler{
		uowFactory: uowFactory,
		retries:    retries,
		logger:     logger.With(zap.String("component", "order_transition")),
	}
}

type orderTransition func(o *order.Order, now time.Time) (bool, error)

// applied adapts a transition that always changes the order on success.
func applied(err error) (bool, error) {
	return err == nil, err
}

func (h *OrderTransitionHandler) Accept(ctx context.Context, cmd AcceptOrderCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}
	return h.apply(ctx, "accept", cmd.OrderID(), func(o *order.Order, now time.Time) (bool, error) {
		return o.Accept(cmd.Actor(), now)
	})
}

func (h *OrderTransitionHandler) Reject(ctx context.Context, cmd RejectOrderCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}
	return h.apply(ctx, "reject", cmd.OrderID(), func(o *order.Order, now time.Time) (bool, error) {
		return applied(o.Reject(cmd.Actor(), now))
	})
}

func (h *OrderTransitionHandler) UpdateStatus(ctx context.Context, cmd UpdateOrderStatusCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}
	return h.apply(ctx, "update_status", cmd.OrderID(), func(o *order.Order, now time.Time) (bool, error) {
		return o.UpdateStatus(cmd.Actor(), cmd.Target(), now)
	})
}

func (h *OrderTransitionHandler) Cancel(ctx context.Context, cmd CancelOrderCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}
	return h.apply(ctx, "cancel", cmd.OrderID(), func(o *order.Order, now time.Time) (bool, error) {
		return applied(o.Cancel(cmd.Actor(), cmd.Reason(), now))
	})
}

func (h *OrderTransitionHandler) apply(ctx context.Context, op string, orderID kernel.UUID, transition orderTransition) error {
	var (
		changed bool
		status  order.Status
	)
	err := runInTx(ctx, h.uowFactory, h.retries, func(uow UoW) error {
		repo := uow.OrderRepository()
		o, err := repo.Get(ctx, orderID)
		if err != nil {
			return err
		}

		now := time.Now()
		changed, err = transition(o, now)
		if err != nil || !changed {
			return err
		}
		status = o.Status()

		if err = h.settleEscrow(ctx, uow, o, now); err != nil {
			return err
		}
		return repo.Update(ctx, o)
	})
	if err != nil {
		return err
	}

	if changed {
		h.logger.Info("order transitioned",
			zap.String("operation", op),
			zap.Stringer("order_id", orderID),
			zap.Stringer("status", status))
	}
	return nil
}

// settleEscrow applies the escrow side effects of the order's new status and
// mirrors the escrow state onto o. The caller stores o.
func (h *OrderTransitionHandler) settleEscrow(ctx context.Context, uow UoW, o *order.Order, now time.Time) error {
	var hook func(e *escrow.Escrow) bool
	switch o.Status() {
	case order.Delivered:
		hook = func(e *escrow.Escrow) bool { return e.MarkDeliverable(now) }
	case order.Cancelled:
		hook = func(e *escrow.Escrow) bool { return e.OnOrderCancelled(now) }
	default:
		return nil
	}

	escrows := uow.EscrowRepository()
	e, err := escrows.GetActiveByOrder(ctx, o.ID())
	if errors.Is(err, errs.ErrObjectNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if !hook(e) {
		return nil
	}
	if err = escrows.Update(ctx, e); err != nil {
		return err
	}

	_, err = mirrorPaymentStatus(o, e, now)
	return err
}
