package commands

import (
	"context"
	"time"

	"freight/internal/core/domain/model/escrow"
	"freight/internal/core/domain/model/order"
	"freight/internal/core/ports"
)

var paymentStatusByEscrow = map[escrow.Status]order.PaymentStatus{
	escrow.StatusCreated:   order.PaymentEscrowPending,
	escrow.StatusFunded:    order.PaymentEscrowed,
	escrow.StatusDisputed:  order.PaymentDisputed,
	escrow.StatusReleased:  order.PaymentPaid,
	escrow.StatusRefunded:  order.PaymentRefunded,
	escrow.StatusCancelled: order.PaymentUnpaid,
}

// mirrorPaymentStatus copies the escrow's state onto the order and stores it.
func mirrorPaymentStatus(o *order.Order, e *escrow.Escrow, now time.Time) (bool, error) {
	ps, ok := paymentStatusByEscrow[e.Status()]
	if !ok || o.PaymentStatus() == ps {
		return false, nil
	}
	return true, o.SetPaymentStatus(ps, now)
}

// syncOrderPayment loads the escrow's order, mirrors the payment status and
// updates the order when it changed.
func syncOrderPayment(ctx context.Context, repo ports.OrderRepository, e *escrow.Escrow, now time.Time) error {
	o, err := repo.Get(ctx, e.OrderID())
	if err != nil {
		return err
	}
	return saveMirrored(ctx, repo, o, e, now)
}

func saveMirrored(ctx context.Context, repo ports.OrderRepository, o *order.Order, e *escrow.Escrow, now time.Time) error {
	changed, err := mirrorPaymentStatus(o, e, now)
	if err != nil || !changed {
		return err
	}
	return repo.Update(ctx, o)
}
