package queries

import (
	"context"
	"database/sql"
	"errors"

	"freight/internal/core/domain/model/kernel"
	"freight/internal/pkg/errs"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type GetTenderQueryHandler struct {
	db *gorm.DB
}

func NewGetTenderQueryHandler(db *gorm.DB) GetTenderQueryHandler {
	return GetTenderQueryHandler{db: db}
}

func (h GetTenderQueryHandler) Handle(ctx context.Context, query GetTenderQuery) (TenderView, error) {
	if err := query.Validate(); err != nil {
		return TenderView{}, err
	}

	view, err := h.tender(ctx, query.TenderID())
	if err != nil {
		return TenderView{}, err
	}

	viewer := query.Viewer()
	seesAll := viewer.IsAdmin() || viewer.Represents(view.OwnerID)
	if view.Status == "draft" && !seesAll {
		return TenderView{}, errs.Unauthorized("tender %s is not published", view.ID)
	}

	// Non-owners only ever receive their own company's bids from the database.
	var bidder *kernel.UUID
	if !seesAll {
		company := viewer.CompanyID()
		bidder = &company
	}
	view.Bids, err = h.bids(ctx, view.ID, bidder)
	if err != nil {
		return TenderView{}, err
	}
	return view, nil
}

func (h GetTenderQueryHandler) tender(ctx context.Context, id kernel.UUID) (TenderView, error) {
	row := h.db.WithContext(ctx).Raw(`
		SELECT
			id, owner_id, created_by, title,
			pickup_location, delivery_location, pickup_date, delivery_date,
			cargo_description, weight_kg, budget_amount, budget_currency,
			submission_deadline, status, awarded_bid_id, order_id,
			created_at, updated_at
		FROM tenders
		WHERE id = ?
	`, id.Bytes()).Row()

	var (
		view             TenderView
		rawID, owner, by uuid.UUID
		awarded, orderID uuid.NullUUID
		weight           decimal.Decimal
		budget           decimal.NullDecimal
		budgetCurrency   sql.NullString
	)
	err := row.Scan(
		&rawID, &owner, &by, &view.Title,
		&view.PickupLocation, &view.DeliveryLocation, &view.PickupDate, &view.DeliveryDate,
		&view.CargoDescription, &weight, &budget, &budgetCurrency,
		&view.SubmissionDeadline, &view.Status, &awarded, &orderID,
		&view.CreatedAt, &view.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return TenderView{}, errs.NewObjectNotFoundError("tender", id.String())
		}
		return TenderView{}, err
	}

	var idErr, ownerErr, byErr, awardedErr, orderErr error
	view.ID, idErr = toID(rawID)
	view.OwnerID, ownerErr = toID(owner)
	view.CreatedBy, byErr = toID(by)
	view.AwardedBidID, awardedErr = toOptionalID(awarded)
	view.OrderID, orderErr = toOptionalID(orderID)
	if err = errors.Join(idErr, ownerErr, byErr, awardedErr, orderErr); err != nil {
		return TenderView{}, err
	}
	view.WeightKg = weight.String()
	if budget.Valid && budgetCurrency.Valid {
		amount := budget.Decimal.StringFixed(kernel.MoneyScale)
		view.BudgetAmount = &amount
		view.BudgetCurrency = &budgetCurrency.String
	}
	view.PickupDate = view.PickupDate.UTC()
	view.DeliveryDate = view.DeliveryDate.UTC()
	view.SubmissionDeadline = view.SubmissionDeadline.UTC()
	view.CreatedAt = view.CreatedAt.UTC()
	view.UpdatedAt = view.UpdatedAt.UTC()
	return view, nil
}

// bids lists the tender's bids in submission order, restricted to bidder
// when it is not nil.
func (h GetTenderQueryHandler) bids(ctx context.Context, tenderID kernel.UUID, bidder *kernel.UUID) ([]BidView, error) {
	db := h.db.WithContext(ctx)
	sqlText := `
		SELECT id, bidder_id, submitted_by, proposed_price, currency, notes, status, created_at
		FROM tender_bids
		WHERE tender_id = ?`
	args := []any{tenderID.Bytes()}
	if bidder != nil {
		sqlText += " AND bidder_id = ?"
		args = append(args, bidder.Bytes())
	}
	sqlText += " ORDER BY created_at, id"

	rows, err := db.Raw(sqlText, args...).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bids := make([]BidView, 0)
	for rows.Next() {
		var (
			bid                     BidView
			id, bidderID, submitter uuid.UUID
			price                   decimal.Decimal
		)
		if err = rows.Scan(&id, &bidderID, &submitter, &price, &bid.Currency, &bid.Notes, &bid.Status, &bid.CreatedAt); err != nil {
			return nil, err
		}

		var idErr, bidderErr, submitterErr error
		bid.ID, idErr = toID(id)
		bid.BidderID, bidderErr = toID(bidderID)
		bid.SubmittedBy, submitterErr = toID(submitter)
		if err = errors.Join(idErr, bidderErr, submitterErr); err != nil {
			return nil, err
		}
		bid.ProposedPrice = price.StringFixed(kernel.MoneyScale)
		bid.CreatedAt = bid.CreatedAt.UTC()
		bids = append(bids, bid)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}
	return bids, nil
}
