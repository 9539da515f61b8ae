package tender

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"freight/internal/core/domain/model/event"
	"freight/internal/core/domain/model/kernel"
	"freight/internal/pkg/errs"
)

var ErrTenderIsNotConstructed = errors.New("Tender must be created via NewTender or RestoreTender")

// Tender is a shipper's request for carrier bids. The tender is the aggregate
// root for its bids so that submitting, superseding and awarding bids are all
// serialized on the tender's version.
type Tender struct {
	event.Recorder

	id        kernel.UUID
	ownerID   kernel.UUID
	createdBy kernel.UUID
	title     string
	route     kernel.Route
	cargo     kernel.Cargo
	budget    *kernel.Money
	deadline  time.Time

	status       Status
	awardedBidID *kernel.UUID
	orderID      *kernel.UUID
	bids         []*Bid

	createdAt time.Time
	updatedAt time.Time
	version   int

	isConstructed bool
}

// Draft is what the owner supplies to publish a tender.
type Draft struct {
	ID                 kernel.UUID
	Owner              kernel.Principal
	Title              string
	Route              kernel.Route
	Cargo              kernel.Cargo
	Budget             *kernel.Money
	SubmissionDeadline time.Time
	Publish            bool
}

func NewTender(d Draft, now time.Time) (*Tender, error) {
	if err := errors.Join(
		d.ID.Validate(),
		d.Owner.Validate(),
		d.Route.Validate(),
		d.Cargo.Validate(),
	); err != nil {
		return nil, err
	}
	if d.Budget != nil {
		if err := d.Budget.Validate(); err != nil {
			return nil, err
		}
	}
	title := strings.TrimSpace(d.Title)
	if title == "" {
		return nil, errs.NewValueIsRequiredError("title")
	}
	if !d.SubmissionDeadline.After(now) {
		return nil, errs.NewValueIsInvalidErrorWithCause("submissionDeadline", errors.New("deadline must be in the future"))
	}

	now = now.UTC()
	t := &Tender{
		id:            d.ID,
		ownerID:       d.Owner.CompanyID(),
		createdBy:     d.Owner.UserID(),
		title:         title,
		route:         d.Route,
		cargo:         d.Cargo,
		budget:        d.Budget,
		deadline:      d.SubmissionDeadline.UTC(),
		status:        StatusDraft,
		createdAt:     now,
		updatedAt:     now,
		isConstructed: true,
	}
	if d.Publish {
		t.status = StatusOpen
	}
	return t, nil
}

// Snapshot is the persisted form of a Tender, bids included.
type Snapshot struct {
	ID                 kernel.UUID
	OwnerID            kernel.UUID
	CreatedBy          kernel.UUID
	Title              string
	Route              kernel.Route
	Cargo              kernel.Cargo
	Budget             *kernel.Money
	SubmissionDeadline time.Time
	Status             Status
	AwardedBidID       *kernel.UUID
	OrderID            *kernel.UUID
	Bids               []BidSnapshot
	CreatedAt          time.Time
	UpdatedAt          time.Time
	Version            int
}

func RestoreTender(s Snapshot) (*Tender, error) {
	if err := errors.Join(s.ID.Validate(), s.OwnerID.Validate(), s.Status.Validate()); err != nil {
		return nil, err
	}

	bids := make([]*Bid, 0, len(s.Bids))
	for _, bs := range s.Bids {
		b, err := restoreBid(bs)
		if err != nil {
			return nil, fmt.Errorf("bid %s: %w", bs.ID, err)
		}
		bids = append(bids, b)
	}

	return &Tender{
		id:            s.ID,
		ownerID:       s.OwnerID,
		createdBy:     s.CreatedBy,
		title:         s.Title,
		route:         s.Route,
		cargo:         s.Cargo,
		budget:        s.Budget,
		deadline:      s.SubmissionDeadline,
		status:        s.Status,
		awardedBidID:  s.AwardedBidID,
		orderID:       s.OrderID,
		bids:          bids,
		createdAt:     s.CreatedAt,
		updatedAt:     s.UpdatedAt,
		version:       s.Version,
		isConstructed: true,
	}, nil
}

func (t *Tender) Snapshot() Snapshot {
	bids := make([]BidSnapshot, 0, len(t.bids))
	for _, b := range t.bids {
		bids = append(bids, b.Snapshot())
	}
	return Snapshot{
		ID:                 t.id,
		OwnerID:            t.ownerID,
		CreatedBy:          t.createdBy,
		Title:              t.title,
		Route:              t.route,
		Cargo:              t.cargo,
		Budget:             t.budget,
		SubmissionDeadline: t.deadline,
		Status:             t.status,
		AwardedBidID:       t.awardedBidID,
		OrderID:            t.orderID,
		Bids:               bids,
		CreatedAt:          t.createdAt,
		UpdatedAt:          t.updatedAt,
		Version:            t.version,
	}
}

func (t *Tender) Validate() error {
	if t == nil || !t.isConstructed {
		return ErrTenderIsNotConstructed
	}
	return nil
}

func (t *Tender) ID() kernel.UUID                     { return t.id }
func (t *Tender) OwnerID() kernel.UUID                { return t.ownerID }
func (t *Tender) CreatedBy() kernel.UUID              { return t.createdBy }
func (t *Tender) Title() string                       { return t.title }
func (t *Tender) Route() kernel.Route                 { return t.route }
func (t *Tender) Cargo() kernel.Cargo                 { return t.cargo }
func (t *Tender) Budget() *kernel.Money               { return t.budget }
func (t *Tender) SubmissionDeadline() time.Time       { return t.deadline }
func (t *Tender) Status() Status                      { return t.status }
func (t *Tender) AwardedBidID() *kernel.UUID          { return t.awardedBidID }
func (t *Tender) OrderID() *kernel.UUID               { return t.orderID }
func (t *Tender) Bids() []*Bid                        { return t.bids }
func (t *Tender) CreatedAt() time.Time                { return t.createdAt }
func (t *Tender) UpdatedAt() time.Time                { return t.updatedAt }
func (t *Tender) Version() int                        { return t.version }
func (t *Tender) BumpVersion()                        { t.version++ }
func (t *Tender) IsOwner(actor kernel.Principal) bool { return actor.Represents(t.ownerID) }

// Bid looks up a bid of this tender.
func (t *Tender) Bid(id kernel.UUID) (*Bid, bool) {
	for _, b := range t.bids {
		if b.id.IsEqual(id) {
			return b, true
		}
	}
	return nil, false
}

// VisibleBids returns every bid to the owner or an admin, and only the
// actor's own bids to anyone else.
func (t *Tender) VisibleBids(actor kernel.Principal) []*Bid {
	if t.IsOwner(actor) || actor.IsAdmin() {
		return t.bids
	}
	own := make([]*Bid, 0, 1)
	for _, b := range t.bids {
		if actor.Represents(b.bidderID) {
			own = append(own, b)
		}
	}
	return own
}

// Open publishes a draft tender.
func (t *Tender) Open(actor kernel.Principal, now time.Time) error {
	if !t.IsOwner(actor) {
		return errs.Unauthorized("company %s does not own tender %s", actor.CompanyID(), t.id)
	}
	if t.status != StatusDraft {
		return errs.NewTransitionError("tender", t.status, StatusOpen)
	}
	if !t.deadline.After(now) {
		return fmt.Errorf("%w: submission deadline %s has passed", errs.ErrTenderClosed, t.deadline.Format(time.RFC3339))
	}
	t.status = StatusOpen
	t.touch(now)
	return nil
}

// SubmitBid adds a bid while the tender is open and before its deadline.
// A bidder's earlier submitted bid is withdrawn in favour of the new one.
func (t *Tender) SubmitBid(bidID kernel.UUID, bidder kernel.Principal, price kernel.Money, notes string, now time.Time) (*Bid, error) {
	if err := errors.Join(bidID.Validate(), bidder.Validate(), price.Validate()); err != nil {
		return nil, err
	}
	if t.IsOwner(bidder) {
		return nil, errs.Unauthorized("company %s cannot bid on its own tender %s", bidder.CompanyID(), t.id)
	}
	if t.status != StatusOpen {
		return nil, fmt.Errorf("%w: tender %s is %s", errs.ErrTenderClosed, t.id, t.status)
	}
	if !now.Before(t.deadline) {
		return nil, fmt.Errorf("%w: submission deadline %s has passed", errs.ErrTenderClosed, t.deadline.Format(time.RFC3339))
	}
	if t.budget != nil && t.budget.Currency() != price.Currency() {
		return nil, errs.NewValueIsInvalidErrorWithCause("currency",
			fmt.Errorf("bid in %s on a tender budgeted in %s", price.Currency(), t.budget.Currency()))
	}

	var supersedes *kernel.UUID
	for _, b := range t.bids {
		if b.status == BidSubmitted && bidder.Represents(b.bidderID) {
			if err := b.moveTo(BidWithdrawn, now); err != nil {
				return nil, err
			}
			id := b.id
			supersedes = &id
		}
	}

	now = now.UTC()
	bid := &Bid{
		id:          bidID,
		tenderID:    t.id,
		bidderID:    bidder.CompanyID(),
		submittedBy: bidder.UserID(),
		price:       price,
		notes:       strings.TrimSpace(notes),
		status:      BidSubmitted,
		createdAt:   now,
		updatedAt:   now,
	}
	t.bids = append(t.bids, bid)
	t.touch(now)
	t.Record(event.BidSubmitted{
		Meta:       event.At(now),
		TenderRef:  t.ref(),
		BidID:      bid.id,
		BidderID:   bid.bidderID,
		Price:      price.Amount().StringFixed(kernel.MoneyScale),
		Currency:   price.Currency(),
		Supersedes: supersedes,
	})
	return bid, nil
}

// Award accepts bidID, rejects every other active bid and marks the tender
// awarded, linking it to orderID. The caller creates that order in the same
// transaction.
func (t *Tender) Award(actor kernel.Principal, bidID, orderID kernel.UUID, now time.Time) (*Bid, error) {
	if !t.IsOwner(actor) {
		return nil, errs.Unauthorized("company %s does not own tender %s", actor.CompanyID(), t.id)
	}
	if t.status == StatusAwarded || t.hasAcceptedBid() {
		return nil, fmt.Errorf("%w: tender %s", errs.ErrAlreadyAwarded, t.id)
	}
	if !t.status.Awardable() {
		return nil, fmt.Errorf("%w: tender %s is %s", errs.ErrTenderClosed, t.id, t.status)
	}
	chosen, ok := t.Bid(bidID)
	if !ok {
		return nil, errs.NewObjectNotFoundError("bidId", bidID)
	}
	if err := chosen.moveTo(BidAccepted, now); err != nil {
		return nil, err
	}

	var rejectedIDs, rejectedBidders []kernel.UUID
	for _, b := range t.bids {
		if b == chosen || b.status != BidSubmitted {
			continue
		}
		if err := b.moveTo(BidRejected, now); err != nil {
			return nil, err
		}
		rejectedIDs = append(rejectedIDs, b.id)
		rejectedBidders = append(rejectedBidders, b.bidderID)
	}

	t.status = StatusAwarded
	awarded := chosen.id
	t.awardedBidID = &awarded
	t.orderID = &orderID
	t.touch(now)
	t.Record(event.BidAwarded{
		Meta:            event.At(now),
		TenderRef:       t.ref(),
		BidID:           chosen.id,
		BidderID:        chosen.bidderID,
		OrderID:         orderID,
		Price:           chosen.price.Amount().StringFixed(kernel.MoneyScale),
		Currency:        chosen.price.Currency(),
		RejectedBidIDs:  rejectedIDs,
		RejectedBidders: rejectedBidders,
	})
	return chosen, nil
}

// CloseIfExpired closes an open tender whose deadline passed without a
// submitted bid. A tender holding submitted bids stays open so the owner can
// still award it; the deadline alone already stops new bids.
func (t *Tender) CloseIfExpired(now time.Time) bool {
	if t.status != StatusOpen || now.Before(t.deadline) || t.hasSubmittedBid() {
		return false
	}
	t.status = StatusClosed
	t.touch(now)
	t.Record(event.TenderClosed{Meta: event.At(now), TenderRef: t.ref()})
	return true
}

// Cancel withdraws a tender that has not been awarded. Active bids are rejected.
func (t *Tender) Cancel(actor kernel.Principal, now time.Time) error {
	if !t.IsOwner(actor) {
		return errs.Unauthorized("company %s does not own tender %s", actor.CompanyID(), t.id)
	}
	if t.status == StatusAwarded || t.status == StatusCancelled {
		return errs.NewTransitionError("tender", t.status, StatusCancelled)
	}
	for _, b := range t.bids {
		if b.status == BidSubmitted {
			if err := b.moveTo(BidRejected, now); err != nil {
				return err
			}
		}
	}
	t.status = StatusCancelled
	t.touch(now)
	return nil
}

func (t *Tender) hasAcceptedBid() bool {
	return t.hasBidIn(BidAccepted)
}

func (t *Tender) hasSubmittedBid() bool {
	return t.hasBidIn(BidSubmitted)
}

func (t *Tender) hasBidIn(status BidStatus) bool {
	for _, b := range t.bids {
		if b.status == status {
			return true
		}
	}
	return false
}

func (t *Tender) ref() event.TenderRef {
	return event.TenderRef{TenderID: t.id, OwnerID: t.ownerID}
}

func (t *Tender) touch(now time.Time) {
	t.updatedAt = now.UTC()
}
