// Package tenderrepo persists tenders and their bids.
package tenderrepo

import (
	"errors"
	"fmt"
	"time"

	"freight/internal/adapters/out/postgres/columns"
	"freight/internal/core/domain/model/kernel"
	"freight/internal/core/domain/model/tender"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type TenderDTO struct {
	ID                 uuid.UUID     `gorm:"type:uuid;primaryKey"`
	OwnerID            uuid.UUID     `gorm:"type:uuid"`
	CreatedBy          uuid.UUID     `gorm:"type:uuid"`
	Title              string        `gorm:"type:text"`
	Route              columns.Route `gorm:"embedded"`
	Cargo              columns.Cargo `gorm:"embedded"`
	BudgetAmount       decimal.NullDecimal
	BudgetCurrency     *string
	SubmissionDeadline time.Time
	Status             string
	AwardedBidID       *uuid.UUID `gorm:"type:uuid"`
	OrderID            *uuid.UUID `gorm:"type:uuid"`
	CreatedAt          time.Time  `gorm:"autoCreateTime:false"`
	UpdatedAt          time.Time  `gorm:"autoUpdateTime:false"`
	Version            int

	Bids []BidDTO `gorm:"foreignKey:TenderID;references:ID"`
}

func (TenderDTO) TableName() string {
	return "tenders"
}

type BidDTO struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey"`
	TenderID      uuid.UUID       `gorm:"type:uuid"`
	BidderID      uuid.UUID       `gorm:"type:uuid"`
	SubmittedBy   uuid.UUID       `gorm:"type:uuid"`
	ProposedPrice decimal.Decimal `gorm:"type:numeric(14,2)"`
	Currency      string          `gorm:"type:char(3)"`
	Notes         string
	Status        string
	CreatedAt     time.Time `gorm:"autoCreateTime:false"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime:false"`
}

func (BidDTO) TableName() string {
	return "tender_bids"
}

func fromDomain(t *tender.Tender) TenderDTO {
	dto := TenderDTO{
		ID:                 t.ID().Bytes(),
		OwnerID:            t.OwnerID().Bytes(),
		CreatedBy:          t.CreatedBy().Bytes(),
		Title:              t.Title(),
		Route:              columns.RouteFromDomain(t.Route()),
		Cargo:              columns.CargoFromDomain(t.Cargo()),
		SubmissionDeadline: t.SubmissionDeadline(),
		Status:             t.Status().String(),
		AwardedBidID:       columns.OptionalRaw(t.AwardedBidID()),
		OrderID:            columns.OptionalRaw(t.OrderID()),
		CreatedAt:          t.CreatedAt(),
		UpdatedAt:          t.UpdatedAt(),
		Version:            t.Version(),
	}
	if budget := t.Budget(); budget != nil {
		currency := budget.Currency()
		dto.BudgetAmount = decimal.NewNullDecimal(budget.Amount())
		dto.BudgetCurrency = &currency
	}

	dto.Bids = make([]BidDTO, 0, len(t.Bids()))
	for _, b := range t.Bids() {
		dto.Bids = append(dto.Bids, bidFromDomain(b))
	}
	return dto
}

func bidFromDomain(b *tender.Bid) BidDTO {
	return BidDTO{
		ID:            b.ID().Bytes(),
		TenderID:      b.TenderID().Bytes(),
		BidderID:      b.BidderID().Bytes(),
		SubmittedBy:   b.SubmittedBy().Bytes(),
		ProposedPrice: b.Price().Amount(),
		Currency:      b.Price().Currency(),
		Notes:         b.Notes(),
		Status:        b.Status().String(),
		CreatedAt:     b.CreatedAt(),
		UpdatedAt:     b.UpdatedAt(),
	}
}

func toDomain(dto TenderDTO) (*tender.Tender, error) {
	id, idErr := columns.ID(dto.ID)
	ownerID, ownerErr := columns.ID(dto.OwnerID)
	createdBy, createdByErr := columns.ID(dto.CreatedBy)
	awardedBidID, awardedErr := columns.OptionalID(dto.AwardedBidID)
	orderID, orderErr := columns.OptionalID(dto.OrderID)
	status, statusErr := tender.ParseStatus(dto.Status)
	route, routeErr := dto.Route.ToDomain()
	cargo, cargoErr := dto.Cargo.ToDomain()
	budget, budgetErr := columns.OptionalMoney(dto.BudgetAmount, dto.BudgetCurrency)
	if err := errors.Join(idErr, ownerErr, createdByErr, awardedErr, orderErr,
		statusErr, routeErr, cargoErr, budgetErr); err != nil {
		return nil, err
	}

	bids := make([]tender.BidSnapshot, 0, len(dto.Bids))
	for _, b := range dto.Bids {
		bs, err := bidToSnapshot(b)
		if err != nil {
			return nil, fmt.Errorf("bid %s: %w", b.ID, err)
		}
		bids = append(bids, bs)
	}

	return tender.RestoreTender(tender.Snapshot{
		ID:                 id,
		OwnerID:            ownerID,
		CreatedBy:          createdBy,
		Title:              dto.Title,
		Route:              route,
		Cargo:              cargo,
		Budget:             budget,
		SubmissionDeadline: dto.SubmissionDeadline,
		Status:             status,
		AwardedBidID:       awardedBidID,
		OrderID:            orderID,
		Bids:               bids,
		CreatedAt:          dto.CreatedAt,
		UpdatedAt:          dto.UpdatedAt,
		Version:            dto.Version,
	})
}

func bidToSnapshot(dto BidDTO) (tender.BidSnapshot, error) {
	id, idErr := columns.ID(dto.ID)
	tenderID, tenderErr := columns.ID(dto.TenderID)
	bidderID, bidderErr := columns.ID(dto.BidderID)
	submittedBy, submittedErr := columns.ID(dto.SubmittedBy)
	status, statusErr := tender.ParseBidStatus(dto.Status)
	price, priceErr := kernel.NewMoney(dto.ProposedPrice, dto.Currency)
	if err := errors.Join(idErr, tenderErr, bidderErr, submittedErr, statusErr, priceErr); err != nil {
		return tender.BidSnapshot{}, err
	}

	return tender.BidSnapshot{
		ID:          id,
		TenderID:    tenderID,
		BidderID:    bidderID,
		SubmittedBy: submittedBy,
		Price:       price,
		Notes:       dto.Notes,
		Status:      status,
		CreatedAt:   dto.CreatedAt,
		UpdatedAt:   dto.UpdatedAt,
	}, nil
}
