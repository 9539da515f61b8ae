// Package webhookrepo records processed payment provider callbacks.
package webhookrepo

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type WebhookEventDTO struct {
	Provider   string `gorm:"primaryKey"`
	EventID    string `gorm:"primaryKey"`
	EventType  string
	ReceivedAt time.Time
}

func (WebhookEventDTO) TableName() string {
	return "payment_webhook_events"
}

// GormWebhookInbox implements ports.WebhookInbox. Used inside the ledger
// transaction, a rolled back callback leaves no trace and is processed
// again on the provider's retry.
type GormWebhookInbox struct {
	db *gorm.DB
}

func NewGormWebhookInbox(db *gorm.DB) *GormWebhookInbox {
	return &GormWebhookInbox{db: db}
}

func (i *GormWebhookInbox) Record(ctx context.Context, provider, eventID, eventType string) (bool, error) {
	dto := WebhookEventDTO{
		Provider:   provider,
		EventID:    eventID,
		EventType:  eventType,
		ReceivedAt: time.Now().UTC(),
	}
	result := i.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&dto)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}
