package queries

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"freight/internal/core/domain/model/kernel"
	"freight/internal/pkg/errs"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type GetOrderQueryHandler struct {
	db *gorm.DB
}

func NewGetOrderQueryHandler(db *gorm.DB) GetOrderQueryHandler {
	return GetOrderQueryHandler{db: db}
}

// Handle returns errs.ErrObjectNotFound for an unknown order and
// errs.ErrUnauthorized when the viewer may not see it.
func (h GetOrderQueryHandler) Handle(ctx context.Context, query GetOrderQuery) (OrderView, error) {
	if err := query.Validate(); err != nil {
		return OrderView{}, err
	}

	row := h.db.WithContext(ctx).Raw(`
		SELECT
			id, shipper_id, carrier_id, created_by, tender_id,
			pickup_location, delivery_location, pickup_date, delivery_date,
			cargo_description, weight_kg,
			total_price, currency, status, payment_status,
			cancel_reason, cancelled_at, created_at, updated_at
		FROM orders
		WHERE id = ?
	`, query.OrderID().Bytes()).Row()

	var (
		view                   OrderView
		id, shipper, createdBy uuid.UUID
		carrier, tender        uuid.NullUUID
		weight, price          decimal.Decimal
		cancelledAt            sql.NullTime
	)
	err := row.Scan(
		&id, &shipper, &carrier, &createdBy, &tender,
		&view.PickupLocation, &view.DeliveryLocation, &view.PickupDate, &view.DeliveryDate,
		&view.CargoDescription, &weight,
		&price, &view.Currency, &view.Status, &view.PaymentStatus,
		&view.CancelReason, &cancelledAt, &view.CreatedAt, &view.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return OrderView{}, errs.NewObjectNotFoundError("order", query.OrderID().String())
		}
		return OrderView{}, err
	}

	var idErr, shipperErr, createdByErr, carrierErr, tenderErr error
	view.ID, idErr = toID(id)
	view.ShipperID, shipperErr = toID(shipper)
	view.CreatedBy, createdByErr = toID(createdBy)
	view.CarrierID, carrierErr = toOptionalID(carrier)
	view.TenderID, tenderErr = toOptionalID(tender)
	if err = errors.Join(idErr, shipperErr, createdByErr, carrierErr, tenderErr); err != nil {
		return OrderView{}, err
	}
	view.WeightKg = weight.String()
	view.TotalPrice = price.StringFixed(kernel.MoneyScale)
	view.CancelledAt = optionalTime(cancelledAt)
	view.PickupDate = view.PickupDate.UTC()
	view.DeliveryDate = view.DeliveryDate.UTC()
	view.CreatedAt = view.CreatedAt.UTC()
	view.UpdatedAt = view.UpdatedAt.UTC()

	if !view.visibleTo(query.Viewer()) {
		return OrderView{}, errs.Unauthorized("company %s may not view order %s", query.Viewer().CompanyID(), view.ID)
	}
	return view, nil
}

func optionalTime(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	at := t.Time.UTC()
	return &at
}
