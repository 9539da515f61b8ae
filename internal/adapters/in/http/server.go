package http

import (
	"context"

	"freight/internal/core/application/usecases/commands"
	"freight/internal/core/application/usecases/queries"
	"freight/internal/core/domain/model/kernel"
	"freight/internal/core/domain/services"
	"freight/internal/core/ports"

	"go.uber.org/zap"
)

type OrderCreator interface {
	Handle(ctx context.Context, cmd commands.CreateOrderCommand) error
}

type OrderTransitions interface {
	Accept(ctx context.Context, cmd commands.AcceptOrderCommand) error
	Reject(ctx context.Context, cmd commands.RejectOrderCommand) error
	UpdateStatus(ctx context.Context, cmd commands.UpdateOrderStatusCommand) error
	Cancel(ctx context.Context, cmd commands.CancelOrderCommand) error
}

type TenderCommands interface {
	Create(ctx context.Context, cmd commands.CreateTenderCommand) error
	Open(ctx context.Context, cmd commands.OpenTenderCommand) error
	Cancel(ctx context.Context, cmd commands.CancelTenderCommand) error
	SubmitBid(ctx context.Context, cmd commands.SubmitBidCommand) error
	Award(ctx context.Context, cmd commands.AwardBidCommand) error
}

type EscrowCommands interface {
	Create(ctx context.Context, cmd commands.CreateEscrowCommand) error
	Fund(ctx context.Context, cmd commands.FundEscrowCommand) error
	Release(ctx context.Context, cmd commands.ReleaseEscrowCommand) error
	Dispute(ctx context.Context, cmd commands.DisputeEscrowCommand) error
	Refund(ctx context.Context, cmd commands.RefundEscrowCommand) error
	Cancel(ctx context.Context, cmd commands.CancelEscrowCommand) error
	ApplyNotification(ctx context.Context, cmd commands.ApplyPaymentNotificationCommand) error
}

type OrderReader interface {
	Handle(ctx context.Context, q queries.GetOrderQuery) (queries.OrderView, error)
}

type TenderReader interface {
	Handle(ctx context.Context, q queries.GetTenderQuery) (queries.TenderView, error)
}

type EscrowReader interface {
	Handle(ctx context.Context, q queries.GetEscrowQuery) (queries.EscrowView, error)
}

// ChannelSubscriptions authorizes and records broadcast subscriptions.
type ChannelSubscriptions interface {
	Subscribe(ctx context.Context, p kernel.Principal, channelName string) (services.Channel, error)
	Unsubscribe(ctx context.Context, p kernel.Principal, channelName string) error
}

// Handlers are the use cases the HTTP surface drives.
type Handlers struct {
	CreateOrder      OrderCreator
	OrderTransitions OrderTransitions
	Tenders          TenderCommands
	Escrow           EscrowCommands

	GetOrder  OrderReader
	GetTender TenderReader
	GetEscrow EscrowReader

	Channels        ChannelSubscriptions
	WebhookVerifier ports.WebhookVerifier
	WebhookProvider string
}

// Server maps HTTP requests onto commands and queries. Identifiers for new
// orders, tenders, bids and escrows are generated here.
type Server struct {
	h      Handlers
	logger *zap.Logger
}

func NewServer(h Handlers, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{h: h, logger: logger.With(zap.String("component", "http"))}
}
