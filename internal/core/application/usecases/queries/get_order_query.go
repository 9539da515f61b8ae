package queries

import (
	"errors"
	"time"

	"freight/internal/core/domain/model/kernel"
)

var ErrGetOrderQueryIsNotConstructed = errors.New(
	"GetOrderQuery must be created via NewGetOrderQuery constructor")

// GetOrderQuery reads one order. The viewer must be a party to it, its
// author or an admin; an open order (pending, no carrier yet) is visible to
// every principal so carriers can find and accept it.
type GetOrderQuery struct{ byIDQuery }

func NewGetOrderQuery(orderID kernel.UUID, viewer kernel.Principal) (GetOrderQuery, error) {
	base, err := newByIDQuery(orderID, viewer)
	return GetOrderQuery{base}, err
}

func (q GetOrderQuery) Validate() error      { return q.validate(ErrGetOrderQueryIsNotConstructed) }
func (q GetOrderQuery) OrderID() kernel.UUID { return q.id }

// OrderView is the read model of an order.
type OrderView struct {
	ID               kernel.UUID  `json:"id"`
	ShipperID        kernel.UUID  `json:"shipper_id"`
	CarrierID        *kernel.UUID `json:"carrier_id"`
	CreatedBy        kernel.UUID  `json:"created_by"`
	TenderID         *kernel.UUID `json:"tender_id"`
	PickupLocation   string       `json:"pickup_location"`
	DeliveryLocation string       `json:"delivery_location"`
	PickupDate       time.Time    `json:"pickup_date"`
	DeliveryDate     time.Time    `json:"delivery_date"`
	CargoDescription string       `json:"cargo_description"`
	WeightKg         string       `json:"weight_kg"`
	TotalPrice       string       `json:"total_price"`
	Currency         string       `json:"currency"`
	Status           string       `json:"status"`
	PaymentStatus    string       `json:"payment_status"`
	CancelReason     string       `json:"cancel_reason,omitempty"`
	CancelledAt      *time.Time   `json:"cancelled_at,omitempty"`
	CreatedAt        time.Time    `json:"created_at"`
	UpdatedAt        time.Time    `json:"updated_at"`
}

func (v OrderView) visibleTo(p kernel.Principal) bool {
	switch {
	case p.IsAdmin(), p.Represents(v.ShipperID), p.UserID().IsEqual(v.CreatedBy):
		return true
	case v.CarrierID != nil:
		return p.Represents(*v.CarrierID)
	default:
		return v.Status == "pending"
	}
}
