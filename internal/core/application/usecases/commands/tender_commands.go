package commands

import (
	"errors"
	"strings"
	"time"

	"freight/internal/core/domain/model/kernel"
	"freight/internal/pkg/errs"
	"freight/internal/pkg/guard"
)

var (
	ErrCreateTenderCommandIsNotConstructed = errors.New(
		"CreateTenderCommand must be created via NewCreateTenderCommand constructor")
	ErrOpenTenderCommandIsNotConstructed = errors.New(
		"OpenTenderCommand must be created via NewOpenTenderCommand constructor")
	ErrCancelTenderCommandIsNotConstructed = errors.New(
		"CancelTenderCommand must be created via NewCancelTenderCommand constructor")
	ErrSubmitBidCommandIsNotConstructed = errors.New(
		"SubmitBidCommand must be created via NewSubmitBidCommand constructor")
	ErrAwardBidCommandIsNotConstructed = errors.New(
		"AwardBidCommand must be created via NewAwardBidCommand constructor")
)

// CreateTenderCommand carries a new tender, either as a draft or published.
type CreateTenderCommand struct { //nolint:recvcheck //using for validation
	tenderID kernel.UUID
	owner    kernel.Principal
	title    string
	route    kernel.Route
	cargo    kernel.Cargo
	budget   *kernel.Money
	deadline time.Time
	publish  bool

	guard guard.ConstructorGuard
}

func NewCreateTenderCommand(
	tenderID kernel.UUID,
	owner kernel.Principal,
	title string,
	route kernel.Route,
	cargo kernel.Cargo,
	budget *kernel.Money,
	deadline time.Time,
	publish bool,
) (CreateTenderCommand, error) {
	errList := []error{
		tenderID.Validate(),
		owner.Validate(),
		route.Validate(),
		cargo.Validate(),
	}
	if budget != nil {
		errList = append(errList, budget.Validate())
	}
	title = strings.TrimSpace(title)
	if title == "" {
		errList = append(errList, errs.NewValueIsRequiredError("title"))
	}
	if deadline.IsZero() {
		errList = append(errList, errs.NewValueIsRequiredError("submissionDeadline"))
	}
	if err := errors.Join(errList...); err != nil {
		return CreateTenderCommand{}, err
	}

	return CreateTenderCommand{
		tenderID: tenderID,
		owner:    owner,
		title:    title,
		route:    route,
		cargo:    cargo,
		budget:   budget,
		deadline: deadline,
		publish:  publish,
		guard:    guard.NewConstructorGuard(),
	}, nil
}

func (c CreateTenderCommand) Validate() error {
	return c.guard.Validate(ErrCreateTenderCommandIsNotConstructed)
}

func (c CreateTenderCommand) TenderID() kernel.UUID         { return c.tenderID }
func (c CreateTenderCommand) Owner() kernel.Principal       { return c.owner }
func (c CreateTenderCommand) Title() string                 { return c.title }
func (c CreateTenderCommand) Route() kernel.Route           { return c.route }
func (c CreateTenderCommand) Cargo() kernel.Cargo           { return c.cargo }
func (c CreateTenderCommand) Budget() *kernel.Money         { return c.budget }
func (c CreateTenderCommand) SubmissionDeadline() time.Time { return c.deadline }
func (c CreateTenderCommand) Publish() bool                 { return c.publish }

// OpenTenderCommand publishes a draft tender.
type OpenTenderCommand struct{ targetCommand }

func NewOpenTenderCommand(tenderID kernel.UUID, actor kernel.Principal) (OpenTenderCommand, error) {
	base, err := newTargetCommand(tenderID, actor)
	return OpenTenderCommand{base}, err
}

func (c OpenTenderCommand) Validate() error       { return c.validate(ErrOpenTenderCommandIsNotConstructed) }
func (c OpenTenderCommand) TenderID() kernel.UUID { return c.id }

// CancelTenderCommand withdraws a tender that has not been awarded.
type CancelTenderCommand struct{ targetCommand }

func NewCancelTenderCommand(tenderID kernel.UUID, actor kernel.Principal) (CancelTenderCommand, error) {
	base, err := newTargetCommand(tenderID, actor)
	return CancelTenderCommand{base}, err
}

func (c CancelTenderCommand) Validate() error {
	return c.validate(ErrCancelTenderCommandIsNotConstructed)
}
func (c CancelTenderCommand) TenderID() kernel.UUID { return c.id }

// SubmitBidCommand is a carrier pricing an open tender.
type SubmitBidCommand struct {
	targetCommand
	bidID kernel.UUID
	price kernel.Money
	notes string
}

func NewSubmitBidCommand(
	tenderID, bidID kernel.UUID,
	bidder kernel.Principal,
	price kernel.Money,
	notes string,
) (SubmitBidCommand, error) {
	base, err := newTargetCommand(tenderID, bidder)
	if err = errors.Join(err, bidID.Validate(), price.Validate()); err != nil {
		return SubmitBidCommand{}, err
	}
	return SubmitBidCommand{
		targetCommand: base,
		bidID:         bidID,
		price:         price,
		notes:         strings.TrimSpace(notes),
	}, nil
}

func (c SubmitBidCommand) Validate() error       { return c.validate(ErrSubmitBidCommandIsNotConstructed) }
func (c SubmitBidCommand) TenderID() kernel.UUID { return c.id }
func (c SubmitBidCommand) BidID() kernel.UUID    { return c.bidID }
func (c SubmitBidCommand) Price() kernel.Money   { return c.price }
func (c SubmitBidCommand) Notes() string         { return c.notes }

// AwardBidCommand is the tender owner selecting a bid. orderID names the
// transport order the award creates.
type AwardBidCommand struct {
	targetCommand
	bidID   kernel.UUID
	orderID kernel.UUID
}

func NewAwardBidCommand(tenderID, bidID, orderID kernel.UUID, owner kernel.Principal) (AwardBidCommand, error) {
	base, err := newTargetCommand(tenderID, owner)
	if err = errors.Join(err, bidID.Validate(), orderID.Validate()); err != nil {
		return AwardBidCommand{}, err
	}
	return AwardBidCommand{targetCommand: base, bidID: bidID, orderID: orderID}, nil
}

func (c AwardBidCommand) Validate() error       { return c.validate(ErrAwardBidCommandIsNotConstructed) }
func (c AwardBidCommand) TenderID() kernel.UUID { return c.id }
func (c AwardBidCommand) BidID() kernel.UUID    { return c.bidID }
func (c AwardBidCommand) OrderID() kernel.UUID  { return c.orderID }
