package queries

import (
	"errors"
	"time"

	"freight/internal/core/domain/model/kernel"
)

var ErrGetEscrowQueryIsNotConstructed = errors.New(
	"GetEscrowQuery must be created via NewGetEscrowQuery constructor")

// GetEscrowQuery reads one escrow. Only its shipper, its carrier and admins may see it.
type GetEscrowQuery struct{ byIDQuery }

func NewGetEscrowQuery(escrowID kernel.UUID, viewer kernel.Principal) (GetEscrowQuery, error) {
	base, err := newByIDQuery(escrowID, viewer)
	return GetEscrowQuery{base}, err
}

func (q GetEscrowQuery) Validate() error       { return q.validate(ErrGetEscrowQueryIsNotConstructed) }
func (q GetEscrowQuery) EscrowID() kernel.UUID { return q.id }

type EscrowView struct {
	ID               kernel.UUID `json:"id"`
	OrderID          kernel.UUID `json:"order_id"`
	ShipperID        kernel.UUID `json:"shipper_id"`
	CarrierID        kernel.UUID `json:"carrier_id"`
	Amount           string      `json:"amount"`
	Currency         string      `json:"currency"`
	Status           string      `json:"status"`
	PaymentReference string      `json:"payment_reference,omitempty"`
	DisputeReason    string      `json:"dispute_reason,omitempty"`
	ShipperConsent   bool        `json:"shipper_refund_consent"`
	CarrierConsent   bool        `json:"carrier_refund_consent"`
	FundedAt         *time.Time  `json:"funded_at,omitempty"`
	DeliverableAt    *time.Time  `json:"deliverable_at,omitempty"`
	ReleasedAt       *time.Time  `json:"released_at,omitempty"`
	RefundedAt       *time.Time  `json:"refunded_at,omitempty"`
	CancelledAt      *time.Time  `json:"cancelled_at,omitempty"`
	CreatedAt        time.Time   `json:"created_at"`
	UpdatedAt        time.Time   `json:"updated_at"`
}
