package queries

import (
	"errors"
	"time"

	"freight/internal/core/domain/model/kernel"
)

var ErrGetTenderQueryIsNotConstructed = errors.New(
	"GetTenderQuery must be created via NewGetTenderQuery constructor")

// GetTenderQuery reads a tender and the bids the viewer may see: all of them
// for the owner and admins, only their own for everyone else. Draft tenders
// are visible to the owner and admins only.
type GetTenderQuery struct{ byIDQuery }

func NewGetTenderQuery(tenderID kernel.UUID, viewer kernel.Principal) (GetTenderQuery, error) {
	base, err := newByIDQuery(tenderID, viewer)
	return GetTenderQuery{base}, err
}

func (q GetTenderQuery) Validate() error       { return q.validate(ErrGetTenderQueryIsNotConstructed) }
func (q GetTenderQuery) TenderID() kernel.UUID { return q.id }

type TenderView struct {
	ID                 kernel.UUID  `json:"id"`
	OwnerID            kernel.UUID  `json:"owner_id"`
	CreatedBy          kernel.UUID  `json:"created_by"`
	Title              string       `json:"title"`
	PickupLocation     string       `json:"pickup_location"`
	DeliveryLocation   string       `json:"delivery_location"`
	PickupDate         time.Time    `json:"pickup_date"`
	DeliveryDate       time.Time    `json:"delivery_date"`
	CargoDescription   string       `json:"cargo_description"`
	WeightKg           string       `json:"weight_kg"`
	BudgetAmount       *string      `json:"budget_amount"`
	BudgetCurrency     *string      `json:"budget_currency"`
	SubmissionDeadline time.Time    `json:"submission_deadline"`
	Status             string       `json:"status"`
	AwardedBidID       *kernel.UUID `json:"awarded_bid_id"`
	OrderID            *kernel.UUID `json:"order_id"`
	CreatedAt          time.Time    `json:"created_at"`
	UpdatedAt          time.Time    `json:"updated_at"`
	Bids               []BidView    `json:"bids"`
}

type BidView struct {
	ID            kernel.UUID `json:"id"`
	BidderID      kernel.UUID `json:"bidder_id"`
	SubmittedBy   kernel.UUID `json:"submitted_by"`
	ProposedPrice string      `json:"proposed_price"`
	Currency      string      `json:"currency"`
	Notes         string      `json:"notes,omitempty"`
	Status        string      `json:"status"`
	CreatedAt     time.Time   `json:"created_at"`
}
