package ports

import (
	"context"

	"freight/internal/core/domain/model/kernel"
	"freight/internal/core/domain/services"
)

// SubjectResolver loads the facts the channel authorizer needs. Each method
// returns errs.ErrObjectNotFound for unknown ids.
type SubjectResolver interface {
	OrderParties(ctx context.Context, orderID kernel.UUID) (services.OrderParties, error)
	ConversationParties(ctx context.Context, conversationID kernel.UUID) (services.ConversationParties, error)
	ShipmentLink(ctx context.Context, shipmentID kernel.UUID) (services.ShipmentLink, error)
}
