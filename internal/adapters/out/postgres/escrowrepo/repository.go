package escrowrepo

import (
	"context"
	"errors"

	"freight/internal/adapters/out/postgres/pgerr"
	"freight/internal/core/domain/model/escrow"
	"freight/internal/core/domain/model/kernel"
	"freight/internal/core/ports"
	"freight/internal/pkg/errs"

	"gorm.io/gorm"
)

type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate ports.Aggregate)
}

type GormEscrowRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

func NewGormEscrowRepository(db *gorm.DB, tracker aggregateTracker) *GormEscrowRepository {
	return &GormEscrowRepository{db: db, tracker: tracker}
}

// Add inserts a new escrow. A second escrow for an order that still has an
// uncancelled one fails with errs.ErrConcurrencyConflict.
func (r *GormEscrowRepository) Add(ctx context.Context, aggregate *escrow.Escrow) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		return pgerr.Map(err)
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

func (r *GormEscrowRepository) Update(ctx context.Context, aggregate *escrow.Escrow) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	dto.Version++
	result := r.db.WithContext(ctx).Model(&EscrowDTO{}).
		Where("id = ? AND version = ?", dto.ID, aggregate.Version()).
		Select("*").Omit("id", "created_at").
		Updates(&dto)
	if result.Error != nil {
		return pgerr.Map(result.Error)
	}
	if result.RowsAffected == 0 {
		return errs.NewVersionConflictError("escrow", aggregate.ID().String(), aggregate.Version())
	}

	aggregate.BumpVersion()
	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

func (r *GormEscrowRepository) Get(ctx context.Context, id kernel.UUID) (*escrow.Escrow, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto EscrowDTO
	if err := r.db.WithContext(ctx).First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("escrow", id.String())
		}
		return nil, err
	}

	return toDomain(dto)
}

func (r *GormEscrowRepository) GetActiveByOrder(ctx context.Context, orderID kernel.UUID) (*escrow.Escrow, error) {
	if err := orderID.Validate(); err != nil {
		return nil, err
	}

	var dto EscrowDTO
	err := r.db.WithContext(ctx).
		Where("order_id = ? AND status <> ?", orderID.Bytes(), escrow.StatusCancelled.String()).
		First(&dto).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("escrow for order", orderID.String())
		}
		return nil, err
	}

	return toDomain(dto)
}
