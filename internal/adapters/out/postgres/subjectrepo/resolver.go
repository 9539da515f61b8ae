// Package subjectrepo answers the channel authorizer's questions about
// orders, conversations and shipments straight from the ledger tables.
package subjectrepo

import (
	"context"
	"errors"

	"freight/internal/adapters/out/postgres/columns"
	"freight/internal/core/domain/model/kernel"
	"freight/internal/core/domain/services"
	"freight/internal/pkg/errs"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

type GormSubjectResolver struct {
	db *gorm.DB
}

func NewGormSubjectResolver(db *gorm.DB) *GormSubjectResolver {
	return &GormSubjectResolver{db: db}
}

type orderPartiesRow struct {
	ShipperID uuid.UUID
	CarrierID *uuid.UUID
	CreatedBy uuid.UUID
}

func (r *GormSubjectResolver) OrderParties(ctx context.Context, orderID kernel.UUID) (services.OrderParties, error) {
	var row orderPartiesRow
	err := r.db.WithContext(ctx).
		Table("orders").
		Select("shipper_id, carrier_id, created_by").
		Where("id = ?", orderID.Bytes()).
		Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return services.OrderParties{}, errs.NewObjectNotFoundError("order", orderID.String())
		}
		return services.OrderParties{}, err
	}
	return row.toParties()
}

func (row orderPartiesRow) toParties() (services.OrderParties, error) {
	shipperID, shipperErr := columns.ID(row.ShipperID)
	createdBy, createdByErr := columns.ID(row.CreatedBy)
	carrierID, carrierErr := columns.OptionalID(row.CarrierID)
	if err := errors.Join(shipperErr, createdByErr, carrierErr); err != nil {
		return services.OrderParties{}, err
	}
	return services.OrderParties{ShipperID: shipperID, CarrierID: carrierID, CreatedBy: createdBy}, nil
}

type conversationRow struct {
	CompanyIDs pq.StringArray
}

func (r *GormSubjectResolver) ConversationParties(ctx context.Context, conversationID kernel.UUID) (services.ConversationParties, error) {
	db := r.db.WithContext(ctx)

	var conv conversationRow
	err := db.Table("conversations").
		Select("company_ids::text AS company_ids").
		Where("id = ?", conversationID.Bytes()).
		Take(&conv).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return services.ConversationParties{}, errs.NewObjectNotFoundError("conversation", conversationID.String())
		}
		return services.ConversationParties{}, err
	}

	var participants []string
	err = db.Table("conversation_participants").
		Where("conversation_id = ?", conversationID.Bytes()).
		Order("user_id").
		Pluck("user_id::text", &participants).Error
	if err != nil {
		return services.ConversationParties{}, err
	}

	companies, err := parseIDs(conv.CompanyIDs)
	if err != nil {
		return services.ConversationParties{}, err
	}
	users, err := parseIDs(participants)
	if err != nil {
		return services.ConversationParties{}, err
	}
	return services.ConversationParties{ParticipantIDs: users, CompanyIDs: companies}, nil
}

type shipmentRow struct {
	OrderID   *uuid.UUID
	ShipperID *uuid.UUID
	CarrierID *uuid.UUID
	CreatedBy *uuid.UUID
}

func (r *GormSubjectResolver) ShipmentLink(ctx context.Context, shipmentID kernel.UUID) (services.ShipmentLink, error) {
	var row shipmentRow
	err := r.db.WithContext(ctx).
		Table("shipments s").
		Select("s.order_id, o.shipper_id, o.carrier_id, o.created_by").
		Joins("LEFT JOIN orders o ON o.id = s.order_id").
		Where("s.id = ?", shipmentID.Bytes()).
		Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return services.ShipmentLink{}, errs.NewObjectNotFoundError("shipment", shipmentID.String())
		}
		return services.ShipmentLink{}, err
	}

	if row.OrderID == nil || row.ShipperID == nil || row.CreatedBy == nil {
		return services.ShipmentLink{}, nil
	}

	parties, err := orderPartiesRow{
		ShipperID: *row.ShipperID,
		CarrierID: row.CarrierID,
		CreatedBy: *row.CreatedBy,
	}.toParties()
	if err != nil {
		return services.ShipmentLink{}, err
	}
	return services.ShipmentLink{Order: &parties}, nil
}

func parseIDs(raw []string) ([]kernel.UUID, error) {
	ids := make([]kernel.UUID, 0, len(raw))
	for _, s := range raw {
		id, err := kernel.UUIDFromString(s)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
