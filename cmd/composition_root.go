package cmd

import (
	"errors"
	"fmt"

	httpin "freight/internal/adapters/in/http"
	"freight/internal/adapters/out/broadcast"
	"freight/internal/adapters/out/payment"
	"freight/internal/adapters/out/postgres"
	"freight/internal/adapters/out/postgres/outboxrepo"
	"freight/internal/adapters/out/postgres/subjectrepo"
	"freight/internal/core/application/dispatch"
	"freight/internal/core/application/usecases/commands"
	"freight/internal/core/application/usecases/queries"
	"freight/internal/core/ports"
	"freight/internal/jobs"
	"freight/internal/pkg/metrics"

	"github.com/go-redis/redis/v8"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type CompositionRoot struct {
	cfg      Config
	gormDB   *gorm.DB
	logger   *zap.Logger
	registry *prometheus.Registry
	metrics  *metrics.Metrics

	transport   ports.Transport
	redisClient *redis.Client
	dispatcher  *dispatch.Dispatcher
	uowFactory  *postgres.GormUnitOfWorkFactory
}

// NewCompositionRoot opens the broadcast transport, builds the dispatcher
// and hands it to the unit of work factory as the post-commit notifier.
func NewCompositionRoot(cfg Config, gormDB *gorm.DB, logger *zap.Logger) (*CompositionRoot, error) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(prometheus.NewGoCollector(), prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))

	c := &CompositionRoot{
		cfg:      cfg,
		gormDB:   gormDB,
		logger:   logger,
		registry: registry,
		metrics:  metrics.New(registry),
	}

	transport, err := broadcast.Open(cfg.BroadcastOptions(), logger)
	if err != nil {
		return nil, fmt.Errorf("open broadcast transport: %w", err)
	}
	c.transport = transport

	c.dispatcher, err = dispatch.NewDispatcher(
		transport,
		c.subscriberDirectory(),
		subjectrepo.NewGormSubjectResolver(gormDB),
		outboxrepo.NewGormOutboxStore(gormDB),
		logger,
		c.metrics,
	)
	if err != nil {
		_ = c.Close()
		return nil, err
	}

	c.uowFactory = postgres.NewGormUnitOfWorkFactory(gormDB, c.dispatcher, logger)
	return c, nil
}

// subscriberDirectory shares subscriptions through redis when it is
// configured and keeps them in process otherwise.
func (c *CompositionRoot) subscriberDirectory() ports.SubscriberDirectory {
	if c.cfg.RedisAddr == "" {
		c.logger.Warn("REDIS_ADDR not set, channel subscriptions are kept in memory")
		return broadcast.NewMemoryDirectory()
	}
	c.redisClient = broadcast.NewRedisClient(c.cfg.RedisAddr, c.cfg.RedisPassword)
	return broadcast.NewRedisDirectory(c.redisClient, c.cfg.ChannelPrefix, c.cfg.SubscriptionTTL)
}

func (c *CompositionRoot) uowFactoryFunc() commands.UoWFactory {
	return FuncUoWFactory(func() commands.UoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) tenderUoWFactoryFunc() commands.TenderUoWFactory {
	return FuncTenderUoWFactory(func() commands.TenderUoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) CreateCreateOrderCommandHandler() *commands.CreateOrderCommandHandler {
	h := commands.NewCreateOrderCommandHandler(c.uowFactoryFunc(), c.logger)
	return &h
}

func (c *CompositionRoot) CreateOrderTransitionHandler() *commands.OrderTransitionHandler {
	h := commands.NewOrderTransitionHandler(c.uowFactoryFunc(), c.cfg.ConcurrencyRetries, c.logger)
	return &h
}

func (c *CompositionRoot) CreateTenderHandler() *commands.TenderHandler {
	h := commands.NewTenderHandler(c.tenderUoWFactoryFunc(), c.uowFactoryFunc(), c.cfg.ConcurrencyRetries, c.logger)
	return &h
}

func (c *CompositionRoot) CreateEscrowHandler() *commands.EscrowHandler {
	h := commands.NewEscrowHandler(
		c.uowFactoryFunc(),
		payment.NewStripeGateway(c.cfg.StripeSecretKey),
		commands.EscrowSettings{
			Policy:         c.cfg.ResolutionPolicy(),
			PaymentTimeout: c.cfg.PaymentTimeout,
			Retries:        c.cfg.ConcurrencyRetries,
		},
		c.logger,
		c.metrics,
	)
	return &h
}

func (c *CompositionRoot) CreateGetOrderQueryHandler() queries.GetOrderQueryHandler {
	return queries.NewGetOrderQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetTenderQueryHandler() queries.GetTenderQueryHandler {
	return queries.NewGetTenderQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetEscrowQueryHandler() queries.GetEscrowQueryHandler {
	return queries.NewGetEscrowQueryHandler(c.gormDB)
}

func (c *CompositionRoot) Dispatcher() *dispatch.Dispatcher {
	return c.dispatcher
}

func (c *CompositionRoot) CreateJobManager() *jobs.JobManager {
	schedules := jobs.DefaultSchedules()
	if c.cfg.TenderSchedule != "" {
		schedules.TenderDeadline = c.cfg.TenderSchedule
	}
	if c.cfg.TenderBatchSize > 0 {
		schedules.TenderBatch = c.cfg.TenderBatchSize
	}
	if c.cfg.OutboxSchedule != "" {
		schedules.OutboxRedelivery = c.cfg.OutboxSchedule
	}
	if c.cfg.OutboxBatchSize > 0 {
		schedules.OutboxBatch = c.cfg.OutboxBatchSize
	}
	if c.cfg.OutboxGrace > 0 {
		schedules.OutboxGrace = c.cfg.OutboxGrace
	}
	return jobs.NewJobManager(c.CreateTenderHandler(), c.dispatcher, schedules, c.metrics, c.logger)
}

func (c *CompositionRoot) CreateRouter() (*echo.Echo, error) {
	server := httpin.NewServer(httpin.Handlers{
		CreateOrder:      c.CreateCreateOrderCommandHandler(),
		OrderTransitions: c.CreateOrderTransitionHandler(),
		Tenders:          c.CreateTenderHandler(),
		Escrow:           c.CreateEscrowHandler(),
		GetOrder:         c.CreateGetOrderQueryHandler(),
		GetTender:        c.CreateGetTenderQueryHandler(),
		GetEscrow:        c.CreateGetEscrowQueryHandler(),
		Channels:         c.dispatcher,
		WebhookVerifier:  payment.NewStripeWebhookVerifier(c.cfg.StripeWebhookSecret),
		WebhookProvider:  payment.Provider,
	}, c.logger)

	return httpin.NewRouter(httpin.RouterConfig{
		Server:        server,
		Authenticator: httpin.NewAuthenticator(c.cfg.JWTSecret),
		Gatherer:      c.registry,
		Metrics:       c.metrics,
		Logger:        c.logger,
		RateLimit:     c.cfg.RateLimitRPS,
		Burst:         c.cfg.RateLimitBurst,
	})
}

// Close releases the broadcast transport and the redis connection.
func (c *CompositionRoot) Close() error {
	var errList []error
	if c.transport != nil {
		errList = append(errList, c.transport.Close())
	}
	if c.redisClient != nil {
		errList = append(errList, c.redisClient.Close())
	}
	return errors.Join(errList...)
}

type FuncUoWFactory func() commands.UoW

func (f FuncUoWFactory) Create() commands.UoW {
	return f()
}

type FuncTenderUoWFactory func() commands.TenderUoW

func (f FuncTenderUoWFactory) Create() commands.TenderUoW {
	return f()
}
