package tender

import (
	"time"

	"freight/internal/core/domain/model/kernel"
	"freight/internal/pkg/errs"
)

// Bid is a carrier's priced response to a tender. Bids are owned by their
// Tender and change state only through it.
type Bid struct {
	id          kernel.UUID
	tenderID    kernel.UUID
	bidderID    kernel.UUID
	submittedBy kernel.UUID
	price       kernel.Money
	notes       string
	status      BidStatus
	createdAt   time.Time
	updatedAt   time.Time
}

// BidSnapshot is the persisted form of a Bid.
type BidSnapshot struct {
	ID          kernel.UUID
	TenderID    kernel.UUID
	BidderID    kernel.UUID
	SubmittedBy kernel.UUID
	Price       kernel.Money
	Notes       string
	Status      BidStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (b *Bid) ID() kernel.UUID          { return b.id }
func (b *Bid) TenderID() kernel.UUID    { return b.tenderID }
func (b *Bid) BidderID() kernel.UUID    { return b.bidderID }
func (b *Bid) SubmittedBy() kernel.UUID { return b.submittedBy }
func (b *Bid) Price() kernel.Money      { return b.price }
func (b *Bid) Notes() string            { return b.notes }
func (b *Bid) Status() BidStatus        { return b.status }
func (b *Bid) CreatedAt() time.Time     { return b.createdAt }
func (b *Bid) UpdatedAt() time.Time     { return b.updatedAt }

func (b *Bid) Snapshot() BidSnapshot {
	return BidSnapshot{
		ID:          b.id,
		TenderID:    b.tenderID,
		BidderID:    b.bidderID,
		SubmittedBy: b.submittedBy,
		Price:       b.price,
		Notes:       b.notes,
		Status:      b.status,
		CreatedAt:   b.createdAt,
		UpdatedAt:   b.updatedAt,
	}
}

func restoreBid(s BidSnapshot) (*Bid, error) {
	if err := s.Status.Validate(); err != nil {
		return nil, err
	}
	if err := s.ID.Validate(); err != nil {
		return nil, err
	}
	return &Bid{
		id:          s.ID,
		tenderID:    s.TenderID,
		bidderID:    s.BidderID,
		submittedBy: s.SubmittedBy,
		price:       s.Price,
		notes:       s.Notes,
		status:      s.Status,
		createdAt:   s.CreatedAt,
		updatedAt:   s.UpdatedAt,
	}, nil
}

func (b *Bid) moveTo(target BidStatus, now time.Time) error {
	if b.status != BidSubmitted {
		return errs.NewTransitionError("bid", b.status, target)
	}
	b.status = target
	b.updatedAt = now.UTC()
	return nil
}
