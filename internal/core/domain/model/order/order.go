package order

import (
	"errors"
	"strings"
	"time"

	"freight/internal/core/domain/model/event"
	"freight/internal/core/domain/model/kernel"
	"freight/internal/pkg/errs"
)

var ErrOrderIsNotConstructed = errors.New("Order must be created via NewOrder or RestoreOrder")

// Order is the transport order aggregate. It is mutated only through the
// methods below; each successful transition records a domain event and
// leaves persistence to the repository, which checks Version.
type Order struct {
	event.Recorder

	id         kernel.UUID
	shipperID  kernel.UUID
	carrierID  *kernel.UUID
	createdBy  kernel.UUID
	tenderID   *kernel.UUID
	route      kernel.Route
	cargo      kernel.Cargo
	totalPrice kernel.Money

	status        Status
	paymentStatus PaymentStatus
	cancelReason  string
	cancelledAt   *time.Time

	createdAt time.Time
	updatedAt time.Time
	version   int

	isConstructed bool
}

// Draft holds what a shipper (or a tender award) supplies for a new order.
type Draft struct {
	ID         kernel.UUID
	Shipper    kernel.Principal
	CarrierID  *kernel.UUID
	TenderID   *kernel.UUID
	Route      kernel.Route
	Cargo      kernel.Cargo
	TotalPrice kernel.Money
}

// NewOrder creates a pending order owned by the draft's shipper company.
// A nil CarrierID leaves the order open to the first carrier that accepts it.
func NewOrder(d Draft, now time.Time) (*Order, error) {
	if err := errors.Join(
		d.ID.Validate(),
		d.Shipper.Validate(),
		d.Route.Validate(),
		d.Cargo.Validate(),
		d.TotalPrice.Validate(),
	); err != nil {
		return nil, err
	}
	if d.CarrierID != nil {
		if err := d.CarrierID.Validate(); err != nil {
			return nil, err
		}
		if d.Shipper.Represents(*d.CarrierID) {
			return nil, errs.NewValueIsInvalidError("carrierId must differ from the shipper company")
		}
	}

	now = now.UTC()
	o := &Order{
		id:            d.ID,
		shipperID:     d.Shipper.CompanyID(),
		carrierID:     d.CarrierID,
		createdBy:     d.Shipper.UserID(),
		tenderID:      d.TenderID,
		route:         d.Route,
		cargo:         d.Cargo,
		totalPrice:    d.TotalPrice,
		status:        Pending,
		paymentStatus: PaymentUnpaid,
		createdAt:     now,
		updatedAt:     now,
		isConstructed: true,
	}
	o.Record(event.OrderCreated{
		Meta:       event.At(now),
		OrderRef:   o.ref(),
		TenderID:   d.TenderID,
		TotalPrice: d.TotalPrice.Amount().StringFixed(kernel.MoneyScale),
		Currency:   d.TotalPrice.Currency(),
	})
	return o, nil
}

// Snapshot is the persisted form of an Order.
type Snapshot struct {
	ID            kernel.UUID
	ShipperID     kernel.UUID
	CarrierID     *kernel.UUID
	CreatedBy     kernel.UUID
	TenderID      *kernel.UUID
	Route         kernel.Route
	Cargo         kernel.Cargo
	TotalPrice    kernel.Money
	Status        Status
	PaymentStatus PaymentStatus
	CancelReason  string
	CancelledAt   *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
	Version       int
}

// RestoreOrder rebuilds an order loaded from storage. No events are recorded.
func RestoreOrder(s Snapshot) (*Order, error) {
	if err := errors.Join(
		s.ID.Validate(),
		s.ShipperID.Validate(),
		s.Status.Validate(),
		s.PaymentStatus.Validate(),
		s.TotalPrice.Validate(),
	); err != nil {
		return nil, err
	}
	if s.CarrierID == nil && s.Status != Pending && s.Status != Cancelled {
		return nil, errs.NewValueIsRequiredErrorWithCause("carrierId", errors.New(s.Status.String()+" order without carrier"))
	}

	return &Order{
		id:            s.ID,
		shipperID:     s.ShipperID,
		carrierID:     s.CarrierID,
		createdBy:     s.CreatedBy,
		tenderID:      s.TenderID,
		route:         s.Route,
		cargo:         s.Cargo,
		totalPrice:    s.TotalPrice,
		status:        s.Status,
		paymentStatus: s.PaymentStatus,
		cancelReason:  s.CancelReason,
		cancelledAt:   s.CancelledAt,
		createdAt:     s.CreatedAt,
		updatedAt:     s.UpdatedAt,
		version:       s.Version,
		isConstructed: true,
	}, nil
}

func (o *Order) Snapshot() Snapshot {
	return Snapshot{
		ID:            o.id,
		ShipperID:     o.shipperID,
		CarrierID:     o.carrierID,
		CreatedBy:     o.createdBy,
		TenderID:      o.tenderID,
		Route:         o.route,
		Cargo:         o.cargo,
		TotalPrice:    o.totalPrice,
		Status:        o.status,
		PaymentStatus: o.paymentStatus,
		CancelReason:  o.cancelReason,
		CancelledAt:   o.cancelledAt,
		CreatedAt:     o.createdAt,
		UpdatedAt:     o.updatedAt,
		Version:       o.version,
	}
}

func (o *Order) Validate() error {
	if o == nil || !o.isConstructed {
		return ErrOrderIsNotConstructed
	}
	return nil
}

func (o *Order) ID() kernel.UUID              { return o.id }
func (o *Order) ShipperID() kernel.UUID       { return o.shipperID }
func (o *Order) CarrierID() *kernel.UUID      { return o.carrierID }
func (o *Order) CreatedBy() kernel.UUID       { return o.createdBy }
func (o *Order) TenderID() *kernel.UUID       { return o.tenderID }
func (o *Order) Route() kernel.Route          { return o.route }
func (o *Order) Cargo() kernel.Cargo          { return o.cargo }
func (o *Order) TotalPrice() kernel.Money     { return o.totalPrice }
func (o *Order) Status() Status               { return o.status }
func (o *Order) PaymentStatus() PaymentStatus { return o.paymentStatus }
func (o *Order) CancelReason() string         { return o.cancelReason }
func (o *Order) CancelledAt() *time.Time      { return o.cancelledAt }
func (o *Order) CreatedAt() time.Time         { return o.createdAt }
func (o *Order) UpdatedAt() time.Time         { return o.updatedAt }
func (o *Order) Version() int                 { return o.version }
func (o *Order) IsEqual(other *Order) bool    { return other != nil && o.id.IsEqual(other.id) }
func (o *Order) IsCarrier(c kernel.UUID) bool { return o.carrierID != nil && o.carrierID.IsEqual(c) }
func (o *Order) IsShipper(c kernel.UUID) bool { return o.shipperID.IsEqual(c) }

// BumpVersion is called by the repository once an update has been stored.
func (o *Order) BumpVersion() {
	o.version++
}

// IsParty reports whether actor represents the shipper or the carrier.
func (o *Order) IsParty(actor kernel.Principal) bool {
	return actor.Represents(o.shipperID) || (o.carrierID != nil && actor.Represents(*o.carrierID))
}

// CanView reports whether actor may read the order.
func (o *Order) CanView(actor kernel.Principal) bool {
	return o.IsParty(actor) || actor.IsAdmin() || actor.UserID().IsEqual(o.createdBy)
}

// Accept moves a pending order to accepted. When no carrier was assigned the
// accepting company becomes the carrier. Accepting an already accepted order
// again as its carrier changes nothing and reports false.
func (o *Order) Accept(actor kernel.Principal, now time.Time) (bool, error) {
	if o.carrierID == nil {
		if actor.Represents(o.shipperID) {
			return false, errs.Unauthorized("company %s cannot accept its own order %s", actor.CompanyID(), o.id)
		}
	} else if !actor.Represents(*o.carrierID) {
		return false, errs.Unauthorized("company %s is not the carrier of order %s", actor.CompanyID(), o.id)
	}
	if o.status == Accepted {
		return false, nil
	}

	next, err := o.status.TransitionTo(Accepted)
	if err != nil {
		return false, err
	}
	if o.carrierID == nil {
		carrier := actor.CompanyID()
		o.carrierID = &carrier
	}
	o.status = next
	o.touch(now)
	o.Record(event.OrderAccepted{Meta: event.At(now), OrderRef: o.ref(), AcceptedBy: actor.UserID()})
	return true, nil
}

// Reject is the designated carrier declining a pending order. It is terminal.
func (o *Order) Reject(actor kernel.Principal, now time.Time) error {
	if o.carrierID == nil || !actor.Represents(*o.carrierID) {
		return errs.Unauthorized("company %s is not the carrier of order %s", actor.CompanyID(), o.id)
	}

	next, err := o.status.TransitionTo(Rejected)
	if err != nil {
		return err
	}
	o.status = next
	o.touch(now)
	o.Record(event.OrderRejected{Meta: event.At(now), OrderRef: o.ref(), RejectedBy: actor.UserID()})
	return nil
}

// Advance moves the order along the fulfilment edges
// (picked_up, in_transit, delivered, completed).
func (o *Order) Advance(actor kernel.Principal, target Status, now time.Time) error {
	if !o.IsParty(actor) {
		return errs.Unauthorized("company %s is not a party to order %s", actor.CompanyID(), o.id)
	}
	if target == Accepted || target == Rejected || target == Cancelled {
		return errs.NewTransitionError("order", o.status, target)
	}

	from := o.status
	next, err := o.status.TransitionTo(target)
	if err != nil {
		return err
	}
	o.status = next
	o.touch(now)
	o.Record(event.OrderStatusChanged{
		Meta:      event.At(now),
		OrderRef:  o.ref(),
		From:      from.String(),
		To:        next.String(),
		ChangedBy: actor.UserID(),
	})
	return nil
}

// Cancel is allowed to either party from pending, accepted or picked_up.
// The order row stays as a tombstone carrying reason and time.
func (o *Order) Cancel(actor kernel.Principal, reason string, now time.Time) error {
	if !o.IsParty(actor) {
		return errs.Unauthorized("company %s is not a party to order %s", actor.CompanyID(), o.id)
	}

	next, err := o.status.TransitionTo(Cancelled)
	if err != nil {
		return err
	}
	at := now.UTC()
	o.status = next
	o.cancelReason = strings.TrimSpace(reason)
	o.cancelledAt = &at
	o.touch(now)
	o.Record(event.OrderCancelled{
		Meta:        event.At(now),
		OrderRef:    o.ref(),
		Reason:      o.cancelReason,
		CancelledBy: actor.UserID(),
	})
	return nil
}

// UpdateStatus routes a generic status request to the matching transition.
// It reports false only for the idempotent repeat accept.
func (o *Order) UpdateStatus(actor kernel.Principal, target Status, now time.Time) (bool, error) {
	if err := target.Validate(); err != nil {
		return false, err
	}

	//nolint:exhaustive // remaining statuses are fulfilment edges
	switch target {
	case Accepted:
		return o.Accept(actor, now)
	case Rejected:
		return applied(o.Reject(actor, now))
	case Cancelled:
		return applied(o.Cancel(actor, "", now))
	default:
		return applied(o.Advance(actor, target, now))
	}
}

func applied(err error) (bool, error) {
	return err == nil, err
}

// SetPaymentStatus records the escrow state mirrored onto the order.
func (o *Order) SetPaymentStatus(ps PaymentStatus, now time.Time) error {
	if err := ps.Validate(); err != nil {
		return err
	}
	if o.paymentStatus == ps {
		return nil
	}
	o.paymentStatus = ps
	o.touch(now)
	return nil
}

func (o *Order) ref() event.OrderRef {
	return event.OrderRef{OrderID: o.id, ShipperID: o.shipperID, CarrierID: o.carrierID}
}

func (o *Order) touch(now time.Time) {
	o.updatedAt = now.UTC()
}
