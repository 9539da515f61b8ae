package escrow

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"freight/internal/core/domain/model/event"
	"freight/internal/core/domain/model/kernel"
	"freight/internal/pkg/errs"
)

var ErrEscrowIsNotConstructed = errors.New("Escrow must be created via NewEscrow or RestoreEscrow")

// Escrow holds platform custody of an order's price. The amount is fixed at
// creation. Funds only leave custody towards the carrier once the goods are
// delivered, or back to the shipper on refund.
type Escrow struct {
	event.Recorder

	id        kernel.UUID
	orderID   kernel.UUID
	shipperID kernel.UUID
	carrierID kernel.UUID
	amount    kernel.Money

	status           Status
	paymentReference string
	disputeReason    string
	shipperConsent   bool
	carrierConsent   bool

	fundedAt          *time.Time
	deliverableAt     *time.Time
	refundRequestedAt *time.Time
	releasedAt        *time.Time
	refundedAt        *time.Time
	cancelledAt       *time.Time

	createdAt time.Time
	updatedAt time.Time
	version   int

	isConstructed bool
}

// NewEscrow opens custody for an order. deliverable is true when the order's
// goods have already been delivered.
func NewEscrow(id, orderID, shipperID, carrierID kernel.UUID, amount kernel.Money, deliverable bool, now time.Time) (*Escrow, error) {
	if err := errors.Join(
		id.Validate(),
		orderID.Validate(),
		shipperID.Validate(),
		carrierID.Validate(),
		amount.Validate(),
	); err != nil {
		return nil, err
	}

	now = now.UTC()
	e := &Escrow{
		id:            id,
		orderID:       orderID,
		shipperID:     shipperID,
		carrierID:     carrierID,
		amount:        amount,
		status:        StatusCreated,
		createdAt:     now,
		updatedAt:     now,
		isConstructed: true,
	}
	if deliverable {
		e.deliverableAt = &now
	}
	e.Record(event.EscrowCreated{Meta: event.At(now), EscrowRef: e.ref()})
	return e, nil
}

// Snapshot is the persisted form of an Escrow.
type Snapshot struct {
	ID                kernel.UUID
	OrderID           kernel.UUID
	ShipperID         kernel.UUID
	CarrierID         kernel.UUID
	Amount            kernel.Money
	Status            Status
	PaymentReference  string
	DisputeReason     string
	ShipperConsent    bool
	CarrierConsent    bool
	FundedAt          *time.Time
	DeliverableAt     *time.Time
	RefundRequestedAt *time.Time
	ReleasedAt        *time.Time
	RefundedAt        *time.Time
	CancelledAt       *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
	Version           int
}

func RestoreEscrow(s Snapshot) (*Escrow, error) {
	if err := errors.Join(
		s.ID.Validate(),
		s.OrderID.Validate(),
		s.Amount.Validate(),
		s.Status.Validate(),
	); err != nil {
		return nil, err
	}
	return &Escrow{
		id:                s.ID,
		orderID:           s.OrderID,
		shipperID:         s.ShipperID,
		carrierID:         s.CarrierID,
		amount:            s.Amount,
		status:            s.Status,
		paymentReference:  s.PaymentReference,
		disputeReason:     s.DisputeReason,
		shipperConsent:    s.ShipperConsent,
		carrierConsent:    s.CarrierConsent,
		fundedAt:          s.FundedAt,
		deliverableAt:     s.DeliverableAt,
		refundRequestedAt: s.RefundRequestedAt,
		releasedAt:        s.ReleasedAt,
		refundedAt:        s.RefundedAt,
		cancelledAt:       s.CancelledAt,
		createdAt:         s.CreatedAt,
		updatedAt:         s.UpdatedAt,
		version:           s.Version,
		isConstructed:     true,
	}, nil
}

func (e *Escrow) Snapshot() Snapshot {
	return Snapshot{
		ID:                e.id,
		OrderID:           e.orderID,
		ShipperID:         e.shipperID,
		CarrierID:         e.carrierID,
		Amount:            e.amount,
		Status:            e.status,
		PaymentReference:  e.paymentReference,
		DisputeReason:     e.disputeReason,
		ShipperConsent:    e.shipperConsent,
		CarrierConsent:    e.carrierConsent,
		FundedAt:          e.fundedAt,
		DeliverableAt:     e.deliverableAt,
		RefundRequestedAt: e.refundRequestedAt,
		ReleasedAt:        e.releasedAt,
		RefundedAt:        e.refundedAt,
		CancelledAt:       e.cancelledAt,
		CreatedAt:         e.createdAt,
		UpdatedAt:         e.updatedAt,
		Version:           e.version,
	}
}

func (e *Escrow) Validate() error {
	if e == nil || !e.isConstructed {
		return ErrEscrowIsNotConstructed
	}
	return nil
}

func (e *Escrow) ID() kernel.UUID                         { return e.id }
func (e *Escrow) OrderID() kernel.UUID                    { return e.orderID }
func (e *Escrow) ShipperID() kernel.UUID                  { return e.shipperID }
func (e *Escrow) CarrierID() kernel.UUID                  { return e.carrierID }
func (e *Escrow) Amount() kernel.Money                    { return e.amount }
func (e *Escrow) Status() Status                          { return e.status }
func (e *Escrow) PaymentReference() string                { return e.paymentReference }
func (e *Escrow) DisputeReason() string                   { return e.disputeReason }
func (e *Escrow) FundedAt() *time.Time                    { return e.fundedAt }
func (e *Escrow) DeliverableAt() *time.Time               { return e.deliverableAt }
func (e *Escrow) ReleasedAt() *time.Time                  { return e.releasedAt }
func (e *Escrow) RefundedAt() *time.Time                  { return e.refundedAt }
func (e *Escrow) CancelledAt() *time.Time                 { return e.cancelledAt }
func (e *Escrow) CreatedAt() time.Time                    { return e.createdAt }
func (e *Escrow) UpdatedAt() time.Time                    { return e.updatedAt }
func (e *Escrow) Version() int                            { return e.version }
func (e *Escrow) BumpVersion()                            { e.version++ }
func (e *Escrow) RefundConsents() (shipper, carrier bool) { return e.shipperConsent, e.carrierConsent }
func (e *Escrow) RefundRequestedAt() *time.Time           { return e.refundRequestedAt }

// RefundPending reports whether a refund was claimed and the provider has not
// yet confirmed it. A pending refund blocks release and dispute.
func (e *Escrow) RefundPending() bool {
	return e.refundRequestedAt != nil && !e.status.IsTerminal()
}

// IsParty reports whether actor represents the shipper or the carrier.
func (e *Escrow) IsParty(actor kernel.Principal) bool {
	return actor.Represents(e.shipperID) || actor.Represents(e.carrierID)
}

func (e *Escrow) CanView(actor kernel.Principal) bool {
	return e.IsParty(actor) || actor.IsAdmin()
}

// CheckFundable validates a fund request before the payment provider is charged.
func (e *Escrow) CheckFundable(payer kernel.Principal) error {
	if !payer.Represents(e.shipperID) {
		return errs.Unauthorized("company %s is not the payer of escrow %s", payer.CompanyID(), e.id)
	}
	if e.status != StatusCreated {
		return errs.NewTransitionError("escrow", e.status, StatusFunded)
	}
	return nil
}

// MarkFunded records a successful charge identified by reference.
func (e *Escrow) MarkFunded(reference string, now time.Time) error {
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return errs.NewValueIsRequiredError("paymentReference")
	}
	next, err := e.status.transitionTo(StatusFunded)
	if err != nil {
		return err
	}
	at := now.UTC()
	e.status = next
	e.paymentReference = reference
	e.fundedAt = &at
	e.touch(now)
	e.Record(event.EscrowFunded{Meta: event.At(now), EscrowRef: e.ref(), PaymentReference: reference})
	return nil
}

// ConfirmFunded applies a provider notification that the charge succeeded.
// It reports false when the escrow already moved past created with the same
// reference.
func (e *Escrow) ConfirmFunded(reference string, now time.Time) (bool, error) {
	if e.status != StatusCreated && e.status != StatusCancelled && e.paymentReference == reference {
		return false, nil
	}
	if err := e.MarkFunded(reference, now); err != nil {
		return false, err
	}
	return true, nil
}

// Release pays the carrier. A funded escrow is released by the shipper or an
// admin; a disputed one only by a role the policy names. Either way the
// goods must have been delivered.
func (e *Escrow) Release(actor kernel.Principal, goodsDelivered bool, policy ResolutionPolicy, now time.Time) error {
	switch e.status {
	case StatusFunded:
		if !actor.Represents(e.shipperID) && !actor.IsAdmin() {
			return errs.Unauthorized("company %s may not release escrow %s", actor.CompanyID(), e.id)
		}
	case StatusDisputed:
		if !policy.CanResolveRelease(actor) {
			return errs.Unauthorized("role %s may not resolve disputed escrow %s", actor.Role(), e.id)
		}
	default:
		return errs.NewTransitionError("escrow", e.status, StatusReleased)
	}
	if err := e.checkNoPendingRefund(); err != nil {
		return err
	}
	if !goodsDelivered {
		return fmt.Errorf("%w: order %s has not been delivered", errs.ErrPrematureRelease, e.orderID)
	}

	releasedBy := actor.UserID()
	e.release(&releasedBy, now)
	return nil
}

// ConfirmReleased applies a provider notification that the payout reached
// the carrier.
func (e *Escrow) ConfirmReleased(now time.Time) (bool, error) {
	switch e.status {
	case StatusReleased:
		return false, nil
	case StatusFunded:
		if err := e.checkNoPendingRefund(); err != nil {
			return false, err
		}
		if e.deliverableAt == nil {
			return false, fmt.Errorf("%w: order %s has not been delivered", errs.ErrPrematureRelease, e.orderID)
		}
		e.release(nil, now)
		return true, nil
	default:
		return false, errs.NewTransitionError("escrow", e.status, StatusReleased)
	}
}

// Dispute freezes a funded escrow until a resolver releases or refunds it.
func (e *Escrow) Dispute(actor kernel.Principal, reason string, now time.Time) error {
	if !e.IsParty(actor) {
		return errs.Unauthorized("company %s is not a party to escrow %s", actor.CompanyID(), e.id)
	}
	by := actor.UserID()
	return e.dispute(&by, strings.TrimSpace(reason), now)
}

// OnOrderCancelled reacts to the order being cancelled. A funded escrow is
// disputed, never refunded automatically; an unfunded one is cancelled.
// Other states are left alone.
func (e *Escrow) OnOrderCancelled(now time.Time) bool {
	switch e.status {
	case StatusFunded:
		return e.dispute(nil, "order cancelled", now) == nil
	case StatusCreated:
		e.status = StatusCancelled
		e.cancel(nil, now)
		return true
	default:
		return false
	}
}

// RequestRefund records actor's part in a refund. A role the policy lets
// resolve refunds claims the refund at once; otherwise the call records the
// party's consent and the refund is claimed once both shipper and carrier
// have consented. It reports whether the refund is claimed.
//
// A claimed refund stays pending, and blocks release, until CompleteRefund
// or AbandonRefund. Asking again while it is pending reports true so the
// provider refund can be retried.
func (e *Escrow) RequestRefund(actor kernel.Principal, policy ResolutionPolicy, now time.Time) (bool, error) {
	if _, err := e.status.transitionTo(StatusRefunded); err != nil {
		return false, err
	}

	resolver := policy.CanResolveRefund(actor)
	switch {
	case resolver:
	case actor.Represents(e.shipperID):
		e.shipperConsent = true
	case actor.Represents(e.carrierID):
		e.carrierConsent = true
	default:
		return false, errs.Unauthorized("company %s may not refund escrow %s", actor.CompanyID(), e.id)
	}

	if e.refundRequestedAt != nil {
		return true, nil
	}
	e.touch(now)
	if !resolver && (!e.shipperConsent || !e.carrierConsent) {
		return false, nil
	}
	at := now.UTC()
	e.refundRequestedAt = &at
	return true, nil
}

// CompleteRefund records that the provider returned the funds of a claimed
// refund to the shipper.
func (e *Escrow) CompleteRefund(by kernel.UUID, now time.Time) error {
	next, err := e.status.transitionTo(StatusRefunded)
	if err != nil {
		return err
	}
	if e.refundRequestedAt == nil {
		return fmt.Errorf("%w: escrow %s has no claimed refund", errs.ErrStateConflict, e.id)
	}
	at := now.UTC()
	e.status = next
	e.refundedAt = &at
	e.touch(now)
	e.Record(event.EscrowRefunded{Meta: event.At(now), EscrowRef: e.ref(), RefundedBy: by})
	return nil
}

// AbandonRefund drops a pending refund claim after the provider refused the
// refund. Consents already given are kept.
func (e *Escrow) AbandonRefund(now time.Time) bool {
	if !e.RefundPending() {
		return false
	}
	e.refundRequestedAt = nil
	e.touch(now)
	return true
}

// Cancel closes an escrow that was never funded, as long as the goods have
// not been delivered.
func (e *Escrow) Cancel(actor kernel.Principal, now time.Time) error {
	if !actor.Represents(e.shipperID) && !actor.IsAdmin() {
		return errs.Unauthorized("company %s may not cancel escrow %s", actor.CompanyID(), e.id)
	}
	next, err := e.status.transitionTo(StatusCancelled)
	if err != nil {
		return err
	}
	if e.deliverableAt != nil {
		return fmt.Errorf("%w: goods were delivered", errs.NewTransitionError("escrow", e.status, StatusCancelled))
	}
	e.status = next
	by := actor.UserID()
	e.cancel(&by, now)
	return nil
}

// MarkDeliverable records that the order's goods were delivered.
func (e *Escrow) MarkDeliverable(now time.Time) bool {
	if e.deliverableAt != nil || e.status.IsTerminal() {
		return false
	}
	at := now.UTC()
	e.deliverableAt = &at
	e.touch(now)
	e.Record(event.EscrowReleasable{Meta: event.At(now), EscrowRef: e.ref()})
	return true
}

func (e *Escrow) release(by *kernel.UUID, now time.Time) {
	at := now.UTC()
	e.status = StatusReleased
	e.releasedAt = &at
	e.touch(now)
	e.Record(event.EscrowReleased{Meta: event.At(now), EscrowRef: e.ref(), ReleasedBy: by})
}

func (e *Escrow) cancel(by *kernel.UUID, now time.Time) {
	at := now.UTC()
	e.cancelledAt = &at
	e.touch(now)
	e.Record(event.EscrowCancelled{Meta: event.At(now), EscrowRef: e.ref(), CancelledBy: by})
}

func (e *Escrow) dispute(by *kernel.UUID, reason string, now time.Time) error {
	if e.status != StatusFunded {
		return errs.NewTransitionError("escrow", e.status, StatusDisputed)
	}
	if err := e.checkNoPendingRefund(); err != nil {
		return err
	}
	e.status = StatusDisputed
	e.disputeReason = reason
	e.touch(now)
	e.Record(event.EscrowDisputed{Meta: event.At(now), EscrowRef: e.ref(), DisputedBy: by, Reason: reason})
	return nil
}

func (e *Escrow) checkNoPendingRefund() error {
	if e.RefundPending() {
		return fmt.Errorf("%w: refund of escrow %s is in progress", errs.ErrStateConflict, e.id)
	}
	return nil
}

func (e *Escrow) ref() event.EscrowRef {
	return event.EscrowRef{
		EscrowID:  e.id,
		OrderID:   e.orderID,
		ShipperID: e.shipperID,
		CarrierID: e.carrierID,
		Amount:    e.amount.Amount().StringFixed(kernel.MoneyScale),
		Currency:  e.amount.Currency(),
	}
}

func (e *Escrow) touch(now time.Time) {
	e.updatedAt = now.UTC()
}
