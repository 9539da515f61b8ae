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

type GetEscrowQueryHandler struct {
	db *gorm.DB
}

func NewGetEscrowQueryHandler(db *gorm.DB) GetEscrowQueryHandler {
	return GetEscrowQueryHandler{db: db}
}

func (h GetEscrowQueryHandler) Handle(ctx context.Context, query GetEscrowQuery) (EscrowView, error) {
	if err := query.Validate(); err != nil {
		return EscrowView{}, err
	}

	row := h.db.WithContext(ctx).Raw(`
		SELECT
			id, order_id, shipper_id, carrier_id, amount, currency, status,
			payment_reference, dispute_reason, shipper_consent, carrier_consent,
			funded_at, deliverable_at, released_at, refunded_at, cancelled_at,
			created_at, updated_at
		FROM escrows
		WHERE id = ?
	`, query.EscrowID().Bytes()).Row()

	var (
		view                          EscrowView
		id, orderID, shipper, carrier uuid.UUID
		amount                        decimal.Decimal
		funded, deliverable, released sql.NullTime
		refunded, cancelled           sql.NullTime
	)
	err := row.Scan(
		&id, &orderID, &shipper, &carrier, &amount, &view.Currency, &view.Status,
		&view.PaymentReference, &view.DisputeReason, &view.ShipperConsent, &view.CarrierConsent,
		&funded, &deliverable, &released, &refunded, &cancelled,
		&view.CreatedAt, &view.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return EscrowView{}, errs.NewObjectNotFoundError("escrow", query.EscrowID().String())
		}
		return EscrowView{}, err
	}

	var idErr, orderErr, shipperErr, carrierErr error
	view.ID, idErr = toID(id)
	view.OrderID, orderErr = toID(orderID)
	view.ShipperID, shipperErr = toID(shipper)
	view.CarrierID, carrierErr = toID(carrier)
	if err = errors.Join(idErr, orderErr, shipperErr, carrierErr); err != nil {
		return EscrowView{}, err
	}
	view.Amount = amount.StringFixed(kernel.MoneyScale)
	view.FundedAt = optionalTime(funded)
	view.DeliverableAt = optionalTime(deliverable)
	view.ReleasedAt = optionalTime(released)
	view.RefundedAt = optionalTime(refunded)
	view.CancelledAt = optionalTime(cancelled)
	view.CreatedAt = view.CreatedAt.UTC()
	view.UpdatedAt = view.UpdatedAt.UTC()

	viewer := query.Viewer()
	if !viewer.IsAdmin() && !viewer.Represents(view.ShipperID) && !viewer.Represents(view.CarrierID) {
		return EscrowView{}, errs.Unauthorized("company %s is not a party to escrow %s", viewer.CompanyID(), view.ID)
	}
	return view, nil
}
