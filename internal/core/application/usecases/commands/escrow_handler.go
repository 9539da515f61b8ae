package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"freight/internal/core/domain/model/escrow"
	"freight/internal/core/domain/model/kernel"
	"freight/internal/core/domain/model/order"
	"freight/internal/core/ports"
	"freight/internal/pkg/errs"
	"freight/internal/pkg/metrics"

	"go.uber.org/zap"
)

// DefaultPaymentTimeout bounds a single call to the payment provider.
const DefaultPaymentTimeout = 10 * time.Second

// EscrowSettings tunes the settlement engine.
type EscrowSettings struct {
	Policy         escrow.ResolutionPolicy
	PaymentTimeout time.Duration
	Retries        int
}

// EscrowHandler runs the escrow settlement operations. Ledger changes happen
// in units of work; calls to the payment provider happen between them, never
// while a transaction is open.
type EscrowHandler struct {
	uowFactory UoWFactory
	gateway    ports.PaymentGateway
	settings   EscrowSettings
	logger     *zap.Logger
	metrics    *metrics.Metrics
}

func NewEscrowHandler(
	uowFactory UoWFactory,
	gateway ports.PaymentGateway,
	settings EscrowSettings,
	logger *zap.Logger,
	m *metrics.Metrics,
) EscrowHandler {
	if settings.PaymentTimeout <= 0 {
		settings.PaymentTimeout = DefaultPaymentTimeout
	}
	if settings.Retries <= 0 {
		settings.Retries = DefaultConcurrencyRetries
	}
	return EscrowHandler{
		uowFactory: uowFactory,
		gateway:    gateway,
		settings:   settings,
		logger:     logger.With(zap.String("component", "escrow")),
		metrics:    m,
	}
}

// Create opens escrow for an order the actor ships. The amount is the
// order's total price at this moment and never changes afterwards.
func (h *EscrowHandler) Create(ctx context.Context, cmd CreateEscrowCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	err := runInTx(ctx, h.uowFactory, h.settings.Retries, func(uow UoW) error {
		orders := uow.OrderRepository()
		o, err := orders.Get(ctx, cmd.OrderID())
		if err != nil {
			return err
		}
		actor := cmd.Actor()
		if !actor.Represents(o.ShipperID()) {
			return errs.Unauthorized("company %s does not ship order %s", actor.CompanyID(), o.ID())
		}
		if !escrowable(o.Status()) {
			return fmt.Errorf("%w: escrow needs an accepted order, order %s is %s",
				errs.ErrInvalidTransition, o.ID(), o.Status())
		}

		escrows := uow.EscrowRepository()
		existing, err := escrows.GetActiveByOrder(ctx, o.ID())
		switch {
		case err == nil:
			return fmt.Errorf("%w: order %s already has escrow %s", errs.ErrStateConflict, o.ID(), existing.ID())
		case !errors.Is(err, errs.ErrObjectNotFound):
			return err
		}

		now := time.Now()
		e, err := escrow.NewEscrow(cmd.EscrowID(), o.ID(), o.ShipperID(), *o.CarrierID(),
			o.TotalPrice(), o.Status().GoodsDelivered(), now)
		if err != nil {
			return err
		}
		if err = escrows.Add(ctx, e); err != nil {
			return err
		}
		return saveMirrored(ctx, orders, o, e, now)
	})
	if err != nil {
		return err
	}

	h.logger.Info("escrow created", zap.Stringer("escrow_id", cmd.EscrowID()), zap.Stringer("order_id", cmd.OrderID()))
	return nil
}

func escrowable(s order.Status) bool {
	//nolint:exhaustive // only in-flight orders take escrow
	switch s {
	case order.Accepted, order.PickedUp, order.InTransit, order.Delivered:
		return true
	default:
		return false
	}
}

// Fund charges the shipper and marks the escrow funded once the provider
// holds the money. The charge carries an idempotency key derived from the
// escrow id, so a retried fund never charges twice. If the provider declines,
// fails or times out the escrow stays created. A charge the provider is
// still processing also leaves it created, and the provider's
// payment-succeeded notification funds it later.
func (h *EscrowHandler) Fund(ctx context.Context, cmd FundEscrowCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	var req ports.ChargeRequest
	err := runInTx(ctx, h.uowFactory, 1, func(uow UoW) error {
		e, err := uow.EscrowRepository().Get(ctx, cmd.EscrowID())
		if err != nil {
			return err
		}
		if err = e.CheckFundable(cmd.Actor()); err != nil {
			return err
		}
		o, err := uow.OrderRepository().Get(ctx, e.OrderID())
		if err != nil {
			return err
		}
		if o.Status() == order.Cancelled || o.Status() == order.Rejected {
			return fmt.Errorf("%w: order %s is %s", errs.ErrInvalidTransition, o.ID(), o.Status())
		}
		req = ports.ChargeRequest{
			EscrowID:       e.ID(),
			OrderID:        e.OrderID(),
			Amount:         e.Amount(),
			PaymentMethod:  cmd.PaymentMethod(),
			Customer:       cmd.Customer(),
			IdempotencyKey: "fund-" + e.ID().String(),
		}
		return nil
	})
	if err != nil {
		return err
	}

	res, err := h.charge(ctx, req)
	if err != nil {
		return err
	}
	if !res.Settled {
		h.logger.Info("charge pending provider confirmation",
			zap.Stringer("escrow_id", req.EscrowID), zap.String("reference", res.Reference))
		return nil
	}

	err = runInTx(ctx, h.uowFactory, h.settings.Retries, func(uow UoW) error {
		escrows := uow.EscrowRepository()
		e, err := escrows.Get(ctx, cmd.EscrowID())
		if err != nil {
			return err
		}
		now := time.Now()
		changed, err := e.ConfirmFunded(res.Reference, now)
		if err != nil || !changed {
			return err
		}
		if err = escrows.Update(ctx, e); err != nil {
			return err
		}
		return syncOrderPayment(ctx, uow.OrderRepository(), e, now)
	})
	if isBusinessRejection(err) {
		h.compensate(ctx, req, res.Reference, err)
		return err
	}
	if err != nil {
		h.logger.Error("charge succeeded but escrow was not updated, awaiting provider notification",
			zap.Stringer("escrow_id", req.EscrowID), zap.String("reference", res.Reference), zap.Error(err))
		return err
	}

	h.logger.Info("escrow funded", zap.Stringer("escrow_id", req.EscrowID), zap.String("reference", res.Reference))
	return nil
}

func (h *EscrowHandler) charge(ctx context.Context, req ports.ChargeRequest) (ports.ChargeResult, error) {
	callCtx, cancel := context.WithTimeout(ctx, h.settings.PaymentTimeout)
	defer cancel()

	res, err := h.gateway.Charge(callCtx, req)
	h.metrics.PaymentCalls.WithLabelValues("charge", metrics.Result(err)).Inc()
	if err != nil {
		return ports.ChargeResult{}, paymentError(err)
	}
	return res, nil
}

func (h *EscrowHandler) refund(ctx context.Context, req ports.RefundRequest) error {
	callCtx, cancel := context.WithTimeout(ctx, h.settings.PaymentTimeout)
	defer cancel()

	err := h.gateway.Refund(callCtx, req)
	h.metrics.PaymentCalls.WithLabelValues("refund", metrics.Result(err)).Inc()
	if err != nil {
		return paymentError(err)
	}
	return nil
}

func paymentError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, errs.ErrPaymentUnavailable) {
		return fmt.Errorf("%w: %w", errs.ErrPaymentUnavailable, err)
	}
	return err
}

// compensate returns a charge the escrow refused to record, for example
// because it was cancelled while the provider was charging. It runs detached
// from the caller's context so a disconnect cannot strand the money.
func (h *EscrowHandler) compensate(ctx context.Context, charged ports.ChargeRequest, reference string, cause error) {
	err := h.refund(context.WithoutCancel(ctx), ports.RefundRequest{
		EscrowID:       charged.EscrowID,
		Reference:      reference,
		Amount:         charged.Amount,
		IdempotencyKey: "fund-reversal-" + charged.EscrowID.String(),
	})
	if err != nil {
		h.logger.Error("compensating refund failed",
			zap.Stringer("escrow_id", charged.EscrowID),
			zap.String("reference", reference),
			zap.NamedError("cause", cause),
			zap.Error(err))
		return
	}
	h.logger.Warn("charge refunded after ledger failure",
		zap.Stringer("escrow_id", charged.EscrowID), zap.String("reference", reference), zap.Error(cause))
}

// Release pays the carrier. The linked order must be delivered or later.
func (h *EscrowHandler) Release(ctx context.Context, cmd ReleaseEscrowCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}
	return h.transition(ctx, "release", cmd.EscrowID(), func(e *escrow.Escrow, o *order.Order, now time.Time) error {
		return e.Release(cmd.Actor(), o.Status().GoodsDelivered(), h.settings.Policy, now)
	})
}

func (h *EscrowHandler) Dispute(ctx context.Context, cmd DisputeEscrowCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}
	return h.transition(ctx, "dispute", cmd.EscrowID(), func(e *escrow.Escrow, _ *order.Order, now time.Time) error {
		return e.Dispute(cmd.Actor(), cmd.Reason(), now)
	})
}

func (h *EscrowHandler) Cancel(ctx context.Context, cmd CancelEscrowCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}
	return h.transition(ctx, "cancel", cmd.EscrowID(), func(e *escrow.Escrow, _ *order.Order, now time.Time) error {
		return e.Cancel(cmd.Actor(), now)
	})
}

// Refund records the actor's refund request. A resolver, or the second of
// the two parties to consent, claims the refund: the claim is committed
// before the provider is asked to refund, so a concurrent release is refused
// while the money is on its way back. The escrow becomes refunded once the
// provider confirms. A provider refusal drops the claim; an unreachable
// provider leaves it pending and the request can be repeated.
func (h *EscrowHandler) Refund(ctx context.Context, cmd RefundEscrowCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	var (
		claimed bool
		req     ports.RefundRequest
	)
	err := runInTx(ctx, h.uowFactory, h.settings.Retries, func(uow UoW) error {
		escrows := uow.EscrowRepository()
		e, err := escrows.Get(ctx, cmd.EscrowID())
		if err != nil {
			return err
		}
		claimed, err = e.RequestRefund(cmd.Actor(), h.settings.Policy, time.Now())
		if err != nil {
			return err
		}
		req = ports.RefundRequest{
			EscrowID:       e.ID(),
			Reference:      e.PaymentReference(),
			Amount:         e.Amount(),
			IdempotencyKey: "refund-" + e.ID().String(),
		}
		return escrows.Update(ctx, e)
	})
	if err != nil {
		return err
	}
	if !claimed {
		h.logger.Info("refund consent recorded",
			zap.Stringer("escrow_id", cmd.EscrowID()), zap.Stringer("user_id", cmd.Actor().UserID()))
		return nil
	}
	return h.completeRefund(ctx, cmd, req)
}

func (h *EscrowHandler) completeRefund(ctx context.Context, cmd RefundEscrowCommand, req ports.RefundRequest) error {
	if err := h.refund(ctx, req); err != nil {
		if errors.Is(err, errs.ErrPaymentUnavailable) || errors.Is(err, context.Canceled) {
			h.logger.Warn("refund outcome unknown, escrow stays pending",
				zap.Stringer("escrow_id", req.EscrowID), zap.Error(err))
			return err
		}
		h.abandonRefund(ctx, req, err)
		return err
	}

	err := runInTx(ctx, h.uowFactory, h.settings.Retries, func(uow UoW) error {
		escrows := uow.EscrowRepository()
		e, err := escrows.Get(ctx, cmd.EscrowID())
		if err != nil {
			return err
		}
		now := time.Now()
		if err = e.CompleteRefund(cmd.Actor().UserID(), now); err != nil {
			return err
		}
		if err = escrows.Update(ctx, e); err != nil {
			return err
		}
		return syncOrderPayment(ctx, uow.OrderRepository(), e, now)
	})
	if err != nil {
		h.logger.Error("provider refunded, escrow refund still pending",
			zap.Stringer("escrow_id", req.EscrowID), zap.String("reference", req.Reference), zap.Error(err))
		return err
	}

	h.logger.Info("escrow refunded", zap.Stringer("escrow_id", req.EscrowID))
	return nil
}

// abandonRefund drops the refund claim after the provider refused the
// refund. It runs detached from the caller's context so the claim is not
// left blocking release.
func (h *EscrowHandler) abandonRefund(ctx context.Context, req ports.RefundRequest, cause error) {
	ctx = context.WithoutCancel(ctx)
	err := runInTx(ctx, h.uowFactory, h.settings.Retries, func(uow UoW) error {
		escrows := uow.EscrowRepository()
		e, err := escrows.Get(ctx, req.EscrowID)
		if err != nil {
			return err
		}
		if !e.AbandonRefund(time.Now()) {
			return nil
		}
		return escrows.Update(ctx, e)
	})
	if err != nil {
		h.logger.Error("dropping refused refund claim failed",
			zap.Stringer("escrow_id", req.EscrowID), zap.NamedError("cause", cause), zap.Error(err))
		return
	}
	h.logger.Warn("provider refused refund, claim dropped",
		zap.Stringer("escrow_id", req.EscrowID), zap.Error(cause))
}

func (h *EscrowHandler) transition(
	ctx context.Context,
	op string,
	escrowID kernel.UUID,
	fn func(e *escrow.Escrow, o *order.Order, now time.Time) error,
) error {
	var status escrow.Status
	err := runInTx(ctx, h.uowFactory, h.settings.Retries, func(uow UoW) error {
		escrows := uow.EscrowRepository()
		e, err := escrows.Get(ctx, escrowID)
		if err != nil {
			return err
		}
		orders := uow.OrderRepository()
		o, err := orders.Get(ctx, e.OrderID())
		if err != nil {
			return err
		}

		now := time.Now()
		if err = fn(e, o, now); err != nil {
			return err
		}
		if err = escrows.Update(ctx, e); err != nil {
			return err
		}
		status = e.Status()
		return saveMirrored(ctx, orders, o, e, now)
	})
	if err != nil {
		return err
	}

	h.logger.Info("escrow transitioned",
		zap.String("operation", op), zap.Stringer("escrow_id", escrowID), zap.Stringer("status", status))
	return nil
}

// ApplyNotification applies a verified provider webhook exactly once. The
// provider event id is stored in the same transaction as the change, so a
// redelivered webhook finds it and does nothing. Notifications the ledger
// refuses are acknowledged and logged; only infrastructure failures are
// returned so the provider retries.
func (h *EscrowHandler) ApplyNotification(ctx context.Context, cmd ApplyPaymentNotificationCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}
	n := cmd.Notification()
	log := h.logger.With(zap.String("provider_event_id", n.ProviderEventID), zap.String("type", n.Type))

	return runInTx(ctx, h.uowFactory, h.settings.Retries, func(uow UoW) error {
		fresh, err := uow.WebhookInbox().Record(ctx, cmd.Provider(), n.ProviderEventID, n.Type)
		if err != nil {
			return err
		}
		if !fresh {
			log.Info("duplicate payment notification ignored")
			return nil
		}
		if n.Kind == ports.PaymentIgnored {
			return nil
		}

		err = h.applyNotification(ctx, uow, n)
		if isBusinessRejection(err) {
			log.Warn("payment notification not applied", zap.Stringer("escrow_id", n.EscrowID), zap.Error(err))
			return nil
		}
		return err
	})
}

func (h *EscrowHandler) applyNotification(ctx context.Context, uow UoW, n ports.PaymentNotification) error {
	escrows := uow.EscrowRepository()
	e, err := escrows.Get(ctx, n.EscrowID)
	if err != nil {
		return err
	}

	now := time.Now()
	var changed bool
	switch n.Kind {
	case ports.PaymentSucceeded:
		changed, err = e.ConfirmFunded(n.Reference, now)
	case ports.PayoutPaid:
		changed, err = e.ConfirmReleased(now)
	default:
		return errs.NewValueIsInvalidError("notification kind " + string(n.Kind))
	}
	if err != nil || !changed {
		return err
	}
	if err = escrows.Update(ctx, e); err != nil {
		return err
	}
	h.logger.Info("escrow updated from payment notification",
		zap.Stringer("escrow_id", e.ID()), zap.Stringer("status", e.Status()))
	return syncOrderPayment(ctx, uow.OrderRepository(), e, now)
}

func isBusinessRejection(err error) bool {
	for _, target := range []error{
		errs.ErrInvalidTransition,
		errs.ErrPrematureRelease,
		errs.ErrObjectNotFound,
		errs.ErrValueIsInvalid,
		errs.ErrValueIsRequired,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
