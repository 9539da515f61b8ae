// Package escrowrepo persists escrow aggregates.
package escrowrepo

import (
	"errors"
	"time"

	"freight/internal/adapters/out/postgres/columns"
	"freight/internal/core/domain/model/escrow"
	"freight/internal/core/domain/model/kernel"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type EscrowDTO struct {
	ID                uuid.UUID       `gorm:"type:uuid;primaryKey"`
	OrderID           uuid.UUID       `gorm:"type:uuid"`
	ShipperID         uuid.UUID       `gorm:"type:uuid"`
	CarrierID         uuid.UUID       `gorm:"type:uuid"`
	Amount            decimal.Decimal `gorm:"type:numeric(14,2)"`
	Currency          string          `gorm:"type:char(3)"`
	Status            string
	PaymentReference  string
	DisputeReason     string
	ShipperConsent    bool
	CarrierConsent    bool
	FundedAt          *time.Time
	DeliverableAt     *time.Time
	RefundRequestedAt *time.Time
	ReleasedAt        *time.Time
	RefundedAt        *time.Time
	CancelledAt       *time.Time
	CreatedAt         time.Time `gorm:"autoCreateTime:false"`
	UpdatedAt         time.Time `gorm:"autoUpdateTime:false"`
	Version           int
}

func (EscrowDTO) TableName() string {
	return "escrows"
}

func fromDomain(e *escrow.Escrow) EscrowDTO {
	shipperConsent, carrierConsent := e.RefundConsents()
	return EscrowDTO{
		ID:                e.ID().Bytes(),
		OrderID:           e.OrderID().Bytes(),
		ShipperID:         e.ShipperID().Bytes(),
		CarrierID:         e.CarrierID().Bytes(),
		Amount:            e.Amount().Amount(),
		Currency:          e.Amount().Currency(),
		Status:            e.Status().String(),
		PaymentReference:  e.PaymentReference(),
		DisputeReason:     e.DisputeReason(),
		ShipperConsent:    shipperConsent,
		CarrierConsent:    carrierConsent,
		FundedAt:          e.FundedAt(),
		DeliverableAt:     e.DeliverableAt(),
		RefundRequestedAt: e.RefundRequestedAt(),
		ReleasedAt:        e.ReleasedAt(),
		RefundedAt:        e.RefundedAt(),
		CancelledAt:       e.CancelledAt(),
		CreatedAt:         e.CreatedAt(),
		UpdatedAt:         e.UpdatedAt(),
		Version:           e.Version(),
	}
}

func toDomain(dto EscrowDTO) (*escrow.Escrow, error) {
	id, idErr := columns.ID(dto.ID)
	orderID, orderErr := columns.ID(dto.OrderID)
	shipperID, shipperErr := columns.ID(dto.ShipperID)
	carrierID, carrierErr := columns.ID(dto.CarrierID)
	status, statusErr := escrow.ParseStatus(dto.Status)
	amount, amountErr := kernel.NewMoney(dto.Amount, dto.Currency)
	if err := errors.Join(idErr, orderErr, shipperErr, carrierErr, statusErr, amountErr); err != nil {
		return nil, err
	}

	return escrow.RestoreEscrow(escrow.Snapshot{
		ID:                id,
		OrderID:           orderID,
		ShipperID:         shipperID,
		CarrierID:         carrierID,
		Amount:            amount,
		Status:            status,
		PaymentReference:  dto.PaymentReference,
		DisputeReason:     dto.DisputeReason,
		ShipperConsent:    dto.ShipperConsent,
		CarrierConsent:    dto.CarrierConsent,
		FundedAt:          dto.FundedAt,
		DeliverableAt:     dto.DeliverableAt,
		RefundRequestedAt: dto.RefundRequestedAt,
		ReleasedAt:        dto.ReleasedAt,
		RefundedAt:        dto.RefundedAt,
		CancelledAt:       dto.CancelledAt,
		CreatedAt:         dto.CreatedAt,
		UpdatedAt:         dto.UpdatedAt,
		Version:           dto.Version,
	})
}
