package event

import (
	"encoding/json"
	"fmt"
	"time"

	"freight/internal/core/domain/model/kernel"
	"freight/internal/pkg/errs"
)

type Kind string

const (
	KindOrderCreated       Kind = "order.created"
	KindOrderAccepted      Kind = "order.accepted"
	KindOrderRejected      Kind = "order.rejected"
	KindOrderStatusChanged Kind = "order.status_changed"
	KindOrderCancelled     Kind = "order.cancelled"

	KindBidSubmitted Kind = "tender.bid_submitted"
	KindBidAwarded   Kind = "tender.bid_awarded"
	KindTenderClosed Kind = "tender.closed"

	KindEscrowCreated    Kind = "escrow.created"
	KindEscrowFunded     Kind = "escrow.funded"
	KindEscrowReleasable Kind = "escrow.releasable"
	KindEscrowReleased   Kind = "escrow.released"
	KindEscrowDisputed   Kind = "escrow.disputed"
	KindEscrowRefunded   Kind = "escrow.refunded"
	KindEscrowCancelled  Kind = "escrow.cancelled"
)

// Event is implemented by every concrete event struct in this package.
type Event interface {
	Kind() Kind
	AggregateID() kernel.UUID
	OccurredAt() time.Time
}

// Meta carries the fields shared by all events.
type Meta struct {
	At time.Time `json:"occurred_at"`
}

func (m Meta) OccurredAt() time.Time { return m.At }

// At builds Meta for an event raised at t.
func At(t time.Time) Meta { return Meta{At: t.UTC()} }

// OrderRef identifies an order and the parties entitled to hear about it.
type OrderRef struct {
	OrderID   kernel.UUID  `json:"order_id"`
	ShipperID kernel.UUID  `json:"shipper_id"`
	CarrierID *kernel.UUID `json:"carrier_id,omitempty"`
}

type OrderCreated struct {
	Meta
	OrderRef
	TenderID   *kernel.UUID `json:"tender_id,omitempty"`
	TotalPrice string       `json:"total_price"`
	Currency   string       `json:"currency"`
}

type OrderAccepted struct {
	Meta
	OrderRef
	AcceptedBy kernel.UUID `json:"accepted_by"`
}

type OrderRejected struct {
	Meta
	OrderRef
	RejectedBy kernel.UUID `json:"rejected_by"`
}

type OrderStatusChanged struct {
	Meta
	OrderRef
	From      string      `json:"from"`
	To        string      `json:"to"`
	ChangedBy kernel.UUID `json:"changed_by"`
}

type OrderCancelled struct {
	Meta
	OrderRef
	Reason      string      `json:"reason"`
	CancelledBy kernel.UUID `json:"cancelled_by"`
}

// TenderRef identifies a tender and its owner.
type TenderRef struct {
	TenderID kernel.UUID `json:"tender_id"`
	OwnerID  kernel.UUID `json:"owner_id"`
}

type BidSubmitted struct {
	Meta
	TenderRef
	BidID      kernel.UUID  `json:"bid_id"`
	BidderID   kernel.UUID  `json:"bidder_id"`
	Price      string       `json:"price"`
	Currency   string       `json:"currency"`
	Supersedes *kernel.UUID `json:"supersedes,omitempty"`
}

type BidAwarded struct {
	Meta
	TenderRef
	BidID           kernel.UUID   `json:"bid_id"`
	BidderID        kernel.UUID   `json:"bidder_id"`
	OrderID         kernel.UUID   `json:"order_id"`
	Price           string        `json:"price"`
	Currency        string        `json:"currency"`
	RejectedBidIDs  []kernel.UUID `json:"rejected_bid_ids"`
	RejectedBidders []kernel.UUID `json:"rejected_bidders"`
}

type TenderClosed struct {
	Meta
	TenderRef
}

// EscrowRef identifies an escrow, its order and both parties.
type EscrowRef struct {
	EscrowID  kernel.UUID `json:"escrow_id"`
	OrderID   kernel.UUID `json:"order_id"`
	ShipperID kernel.UUID `json:"shipper_id"`
	CarrierID kernel.UUID `json:"carrier_id"`
	Amount    string      `json:"amount"`
	Currency  string      `json:"currency"`
}

type EscrowCreated struct {
	Meta
	EscrowRef
}

type EscrowFunded struct {
	Meta
	EscrowRef
	PaymentReference string `json:"payment_reference"`
}

type EscrowReleasable struct {
	Meta
	EscrowRef
}

type EscrowReleased struct {
	Meta
	EscrowRef
	ReleasedBy *kernel.UUID `json:"released_by,omitempty"`
}

type EscrowDisputed struct {
	Meta
	EscrowRef
	DisputedBy *kernel.UUID `json:"disputed_by,omitempty"`
	Reason     string       `json:"reason"`
}

type EscrowRefunded struct {
	Meta
	EscrowRef
	RefundedBy kernel.UUID `json:"refunded_by"`
}

type EscrowCancelled struct {
	Meta
	EscrowRef
	CancelledBy *kernel.UUID `json:"cancelled_by,omitempty"`
}

func (OrderCreated) Kind() Kind       { return KindOrderCreated }
func (OrderAccepted) Kind() Kind      { return KindOrderAccepted }
func (OrderRejected) Kind() Kind      { return KindOrderRejected }
func (OrderStatusChanged) Kind() Kind { return KindOrderStatusChanged }
func (OrderCancelled) Kind() Kind     { return KindOrderCancelled }
func (BidSubmitted) Kind() Kind       { return KindBidSubmitted }
func (BidAwarded) Kind() Kind         { return KindBidAwarded }
func (TenderClosed) Kind() Kind       { return KindTenderClosed }
func (EscrowCreated) Kind() Kind      { return KindEscrowCreated }
func (EscrowFunded) Kind() Kind       { return KindEscrowFunded }
func (EscrowReleasable) Kind() Kind   { return KindEscrowReleasable }
func (EscrowReleased) Kind() Kind     { return KindEscrowReleased }
func (EscrowDisputed) Kind() Kind     { return KindEscrowDisputed }
func (EscrowRefunded) Kind() Kind     { return KindEscrowRefunded }
func (EscrowCancelled) Kind() Kind    { return KindEscrowCancelled }

func (r OrderRef) AggregateID() kernel.UUID  { return r.OrderID }
func (r TenderRef) AggregateID() kernel.UUID { return r.TenderID }
func (r EscrowRef) AggregateID() kernel.UUID { return r.EscrowID }

// Parties returns the shipper and, when assigned, the carrier.
func (r OrderRef) Parties() []kernel.UUID {
	if r.CarrierID == nil {
		return []kernel.UUID{r.ShipperID}
	}
	return []kernel.UUID{r.ShipperID, *r.CarrierID}
}

func (r EscrowRef) Parties() []kernel.UUID {
	return []kernel.UUID{r.ShipperID, r.CarrierID}
}

var decoders = map[Kind]func([]byte) (Event, error){
	KindOrderCreated:       decodeAs[OrderCreated],
	KindOrderAccepted:      decodeAs[OrderAccepted],
	KindOrderRejected:      decodeAs[OrderRejected],
	KindOrderStatusChanged: decodeAs[OrderStatusChanged],
	KindOrderCancelled:     decodeAs[OrderCancelled],
	KindBidSubmitted:       decodeAs[BidSubmitted],
	KindBidAwarded:         decodeAs[BidAwarded],
	KindTenderClosed:       decodeAs[TenderClosed],
	KindEscrowCreated:      decodeAs[EscrowCreated],
	KindEscrowFunded:       decodeAs[EscrowFunded],
	KindEscrowReleasable:   decodeAs[EscrowReleasable],
	KindEscrowReleased:     decodeAs[EscrowReleased],
	KindEscrowDisputed:     decodeAs[EscrowDisputed],
	KindEscrowRefunded:     decodeAs[EscrowRefunded],
	KindEscrowCancelled:    decodeAs[EscrowCancelled],
}

// Encode serializes e for storage or transport.
func Encode(e Event) ([]byte, error) {
	return json.Marshal(e)
}

// Decode restores the concrete event for kind from its JSON payload.
func Decode(kind Kind, payload []byte) (Event, error) {
	decode, ok := decoders[kind]
	if !ok {
		return nil, errs.NewValueIsInvalidErrorWithCause("kind", fmt.Errorf("%q is not a known event kind", string(kind)))
	}
	return decode(payload)
}

func decodeAs[T Event](payload []byte) (Event, error) {
	var e T
	if err := json.Unmarshal(payload, &e); err != nil {
		return nil, fmt.Errorf("decode event: %w", err)
	}
	return e, nil
}

// Recorder collects events raised by an aggregate until they are persisted.
// Aggregates embed it.
type Recorder struct {
	events []Event
}

func (r *Recorder) Record(e Event) {
	r.events = append(r.events, e)
}

// DomainEvents returns the events raised since the last ClearDomainEvents.
func (r *Recorder) DomainEvents() []Event {
	return r.events
}

func (r *Recorder) ClearDomainEvents() {
	r.events = nil
}
