// Package orderrepo persists the order aggregate in the orders table.
package orderrepo

import (
	"errors"
	"time"

	"freight/internal/adapters/out/postgres/columns"
	"freight/internal/core/domain/model/kernel"
	"freight/internal/core/domain/model/order"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderDTO is one row of the orders table.
type OrderDTO struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey"`
	ShipperID     uuid.UUID       `gorm:"type:uuid"`
	CarrierID     *uuid.UUID      `gorm:"type:uuid"`
	CreatedBy     uuid.UUID       `gorm:"type:uuid"`
	TenderID      *uuid.UUID      `gorm:"type:uuid"`
	Route         columns.Route   `gorm:"embedded"`
	Cargo         columns.Cargo   `gorm:"embedded"`
	TotalPrice    decimal.Decimal `gorm:"type:numeric(14,2)"`
	Currency      string          `gorm:"type:char(3)"`
	Status        string
	PaymentStatus string
	CancelReason  string
	CancelledAt   *time.Time
	CreatedAt     time.Time `gorm:"autoCreateTime:false"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime:false"`
	Version       int
}

func (OrderDTO) TableName() string {
	return "orders"
}

func fromDomain(o *order.Order) OrderDTO {
	return OrderDTO{
		ID:            o.ID().Bytes(),
		ShipperID:     o.ShipperID().Bytes(),
		CarrierID:     columns.OptionalRaw(o.CarrierID()),
		CreatedBy:     o.CreatedBy().Bytes(),
		TenderID:      columns.OptionalRaw(o.TenderID()),
		Route:         columns.RouteFromDomain(o.Route()),
		Cargo:         columns.CargoFromDomain(o.Cargo()),
		TotalPrice:    o.TotalPrice().Amount(),
		Currency:      o.TotalPrice().Currency(),
		Status:        o.Status().String(),
		PaymentStatus: o.PaymentStatus().String(),
		CancelReason:  o.CancelReason(),
		CancelledAt:   o.CancelledAt(),
		CreatedAt:     o.CreatedAt(),
		UpdatedAt:     o.UpdatedAt(),
		Version:       o.Version(),
	}
}

func toDomain(dto OrderDTO) (*order.Order, error) {
	id, idErr := columns.ID(dto.ID)
	shipperID, shipperErr := columns.ID(dto.ShipperID)
	createdBy, createdByErr := columns.ID(dto.CreatedBy)
	carrierID, carrierErr := columns.OptionalID(dto.CarrierID)
	tenderID, tenderErr := columns.OptionalID(dto.TenderID)
	status, statusErr := order.ParseStatus(dto.Status)
	route, routeErr := dto.Route.ToDomain()
	cargo, cargoErr := dto.Cargo.ToDomain()
	price, priceErr := kernel.NewMoney(dto.TotalPrice, dto.Currency)
	if err := errors.Join(idErr, shipperErr, createdByErr, carrierErr, tenderErr,
		statusErr, routeErr, cargoErr, priceErr); err != nil {
		return nil, err
	}

	return order.RestoreOrder(order.Snapshot{
		ID:            id,
		ShipperID:     shipperID,
		CarrierID:     carrierID,
		CreatedBy:     createdBy,
		TenderID:      tenderID,
		Route:         route,
		Cargo:         cargo,
		TotalPrice:    price,
		Status:        status,
		PaymentStatus: order.PaymentStatus(dto.PaymentStatus),
		CancelReason:  dto.CancelReason,
		CancelledAt:   dto.CancelledAt,
		CreatedAt:     dto.CreatedAt,
		UpdatedAt:     dto.UpdatedAt,
		Version:       dto.Version,
	})
}
