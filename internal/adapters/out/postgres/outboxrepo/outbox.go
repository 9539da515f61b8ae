// Package outboxrepo writes domain events to the outbox_events table inside
// the ledger transaction and reads them back for publication.
package outboxrepo

import (
	"context"
	"fmt"
	"time"

	"freight/internal/adapters/out/postgres/columns"
	"freight/internal/core/domain/model/event"
	"freight/internal/core/domain/model/kernel"
	"freight/internal/core/ports"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type OutboxDTO struct {
	ID          int64     `gorm:"primaryKey;autoIncrement"`
	EventID     uuid.UUID `gorm:"type:uuid"`
	Kind        string
	AggregateID uuid.UUID `gorm:"type:uuid"`
	Payload     []byte    `gorm:"type:jsonb"`
	OccurredAt  time.Time
	CreatedAt   time.Time `gorm:"autoCreateTime"`
	PublishedAt *time.Time
}

func (OutboxDTO) TableName() string {
	return "outbox_events"
}

// Append encodes events and inserts them with db, which is expected to be
// the open ledger transaction. The returned records carry the assigned ids.
func Append(ctx context.Context, db *gorm.DB, events []event.Event) ([]ports.OutboxRecord, error) {
	if len(events) == 0 {
		return nil, nil
	}

	dtos := make([]OutboxDTO, 0, len(events))
	for _, e := range events {
		payload, err := event.Encode(e)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", e.Kind(), err)
		}
		dtos = append(dtos, OutboxDTO{
			EventID:     kernel.NewUUID().Bytes(),
			Kind:        string(e.Kind()),
			AggregateID: e.AggregateID().Bytes(),
			Payload:     payload,
			OccurredAt:  e.OccurredAt(),
		})
	}

	if err := db.WithContext(ctx).Create(&dtos).Error; err != nil {
		return nil, fmt.Errorf("append outbox: %w", err)
	}

	return toRecords(dtos)
}

// GormOutboxStore implements ports.OutboxStore.
type GormOutboxStore struct {
	db *gorm.DB
}

func NewGormOutboxStore(db *gorm.DB) *GormOutboxStore {
	return &GormOutboxStore{db: db}
}

func (s *GormOutboxStore) FetchUnpublished(ctx context.Context, olderThan time.Time, limit int) ([]ports.OutboxRecord, error) {
	var dtos []OutboxDTO
	err := s.db.WithContext(ctx).
		Where("published_at IS NULL AND created_at < ?", olderThan).
		Order("id").
		Limit(limit).
		Find(&dtos).Error
	if err != nil {
		return nil, err
	}
	return toRecords(dtos)
}

func (s *GormOutboxStore) FetchUnpublishedThrough(ctx context.Context, maxID int64, limit int) ([]ports.OutboxRecord, error) {
	var dtos []OutboxDTO
	err := s.db.WithContext(ctx).
		Where("published_at IS NULL AND id <= ?", maxID).
		Order("id").
		Limit(limit).
		Find(&dtos).Error
	if err != nil {
		return nil, err
	}
	return toRecords(dtos)
}

func (s *GormOutboxStore) MarkPublished(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Model(&OutboxDTO{}).
		Where("id IN ? AND published_at IS NULL", ids).
		Update("published_at", time.Now().UTC()).Error
}

func toRecords(dtos []OutboxDTO) ([]ports.OutboxRecord, error) {
	records := make([]ports.OutboxRecord, 0, len(dtos))
	for _, d := range dtos {
		eventID, err := columns.ID(d.EventID)
		if err != nil {
			return nil, err
		}
		aggregateID, err := columns.ID(d.AggregateID)
		if err != nil {
			return nil, err
		}
		records = append(records, ports.OutboxRecord{
			ID:          d.ID,
			EventID:     eventID,
			Kind:        event.Kind(d.Kind),
			AggregateID: aggregateID,
			Payload:     d.Payload,
			OccurredAt:  d.OccurredAt,
		})
	}
	return records, nil
}
