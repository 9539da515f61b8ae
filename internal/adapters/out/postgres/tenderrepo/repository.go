package tenderrepo

import (
	"context"
	"errors"
	"time"

	"freight/internal/adapters/out/postgres/pgerr"
	"freight/internal/core/domain/model/kernel"
	"freight/internal/core/domain/model/tender"
	"freight/internal/core/ports"
	"freight/internal/pkg/errs"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate ports.Aggregate)
}

// GormTenderRepository stores a tender row and its bid rows together.
// The tender row carries the version; bids are written in the order the
// aggregate holds them so a superseded bid is withdrawn before its
// replacement is inserted.
type GormTenderRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

func NewGormTenderRepository(db *gorm.DB, tracker aggregateTracker) *GormTenderRepository {
	return &GormTenderRepository{db: db, tracker: tracker}
}

func (r *GormTenderRepository) Add(ctx context.Context, aggregate *tender.Tender) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	bids := dto.Bids
	dto.Bids = nil

	db := r.db.WithContext(ctx)
	if err := db.Omit(clause.Associations).Create(&dto).Error; err != nil {
		return pgerr.Map(err)
	}
	if err := saveBids(db, bids); err != nil {
		return err
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

func (r *GormTenderRepository) Update(ctx context.Context, aggregate *tender.Tender) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	bids := dto.Bids
	dto.Bids = nil
	dto.Version++

	db := r.db.WithContext(ctx)
	result := db.Model(&TenderDTO{}).
		Where("id = ? AND version = ?", dto.ID, aggregate.Version()).
		Select("*").Omit("id", "created_at", clause.Associations).
		Updates(&dto)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errs.NewVersionConflictError("tender", aggregate.ID().String(), aggregate.Version())
	}

	if err := saveBids(db, bids); err != nil {
		return err
	}

	aggregate.BumpVersion()
	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// saveBids upserts one bid per statement, so the partial unique indexes are
// checked after every step rather than against a half-applied batch.
func saveBids(db *gorm.DB, bids []BidDTO) error {
	for i := range bids {
		err := db.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"status", "notes", "proposed_price", "currency", "updated_at",
			}),
		}).Create(&bids[i]).Error
		if err != nil {
			return pgerr.Map(err)
		}
	}
	return nil
}

func (r *GormTenderRepository) Get(ctx context.Context, id kernel.UUID) (*tender.Tender, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto TenderDTO
	err := r.db.WithContext(ctx).
		Preload("Bids", func(db *gorm.DB) *gorm.DB { return db.Order("created_at, id") }).
		First(&dto, "id = ?", id.Bytes()).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("tender", id.String())
		}
		return nil, err
	}

	return toDomain(dto)
}

func (r *GormTenderRepository) ListExpiredOpen(ctx context.Context, now time.Time, limit int) ([]*tender.Tender, error) {
	var dtos []TenderDTO
	err := r.db.WithContext(ctx).
		Preload("Bids", func(db *gorm.DB) *gorm.DB { return db.Order("created_at, id") }).
		Where("status = ? AND submission_deadline <= ?", tender.StatusOpen.String(), now).
		Where("NOT EXISTS (SELECT 1 FROM tender_bids b WHERE b.tender_id = tenders.id AND b.status = ?)",
			tender.BidSubmitted.String()).
		Order("submission_deadline, id").
		Limit(limit).
		Find(&dtos).Error
	if err != nil {
		return nil, err
	}

	tenders := make([]*tender.Tender, 0, len(dtos))
	for _, dto := range dtos {
		t, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		tenders = append(tenders, t)
	}
	return tenders, nil
}
