package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"freight/internal/adapters/out/broadcast"
	"freight/internal/core/domain/model/escrow"
	"freight/internal/core/domain/model/kernel"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	HTTPPort   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string
	LogLevel   string
	JWTSecret  string

	BroadcastDriver  string
	ChannelPrefix    string
	RedisAddr        string
	RedisPassword    string
	SubscriptionTTL  time.Duration
	KafkaBrokers     []string
	KafkaTopic       string
	RabbitMQURL      string
	RabbitMQExchange string

	StripeSecretKey     string
	StripeWebhookSecret string
	PaymentTimeout      time.Duration
	ConcurrencyRetries  int
	DisputeReleaseRoles []kernel.Role
	DisputeRefundRoles  []kernel.Role

	RateLimitRPS   float64
	RateLimitBurst int

	OutboxBatchSize int
	OutboxGrace     time.Duration
	OutboxSchedule  string
	TenderBatchSize int
	TenderSchedule  string
	ShutdownTimeout time.Duration
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("HTTP_PORT", "8080")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "freight")
	v.SetDefault("DB_NAME", "freight")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("LOG_LEVEL", "info")

	v.SetDefault("BROADCAST_DRIVER", broadcast.DriverLog)
	v.SetDefault("BROADCAST_CHANNEL_PREFIX", "freight:")
	v.SetDefault("SUBSCRIPTION_TTL", "24h")
	v.SetDefault("KAFKA_TOPIC", "freight.broadcast")
	v.SetDefault("RABBITMQ_EXCHANGE", "freight.broadcast")

	v.SetDefault("PAYMENT_TIMEOUT", "10s")
	v.SetDefault("CONCURRENCY_RETRIES", 3)
	v.SetDefault("DISPUTE_RELEASE_ROLES", string(kernel.RoleAdmin))
	v.SetDefault("DISPUTE_REFUND_ROLES", string(kernel.RoleAdmin))

	v.SetDefault("RATE_LIMIT_RPS", 20)
	v.SetDefault("RATE_LIMIT_BURST", 40)

	v.SetDefault("OUTBOX_BATCH_SIZE", 100)
	v.SetDefault("OUTBOX_GRACE", "5s")
	v.SetDefault("OUTBOX_SCHEDULE", "*/10 * * * * *")
	v.SetDefault("TENDER_BATCH_SIZE", 100)
	v.SetDefault("TENDER_SCHEDULE", "0 * * * * *")
	v.SetDefault("SHUTDOWN_TIMEOUT", "15s")
}

// LoadConfig reads envFile into the environment when it exists and then
// builds the configuration from environment variables and defaults.
func LoadConfig(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)
	return configFrom(v)
}

func configFrom(v *viper.Viper) (Config, error) {
	cfg := Config{
		HTTPPort:   v.GetString("HTTP_PORT"),
		DBHost:     v.GetString("DB_HOST"),
		DBPort:     v.GetString("DB_PORT"),
		DBUser:     v.GetString("DB_USER"),
		DBPassword: v.GetString("DB_PASSWORD"),
		DBName:     v.GetString("DB_NAME"),
		DBSslMode:  v.GetString("DB_SSLMODE"),
		LogLevel:   v.GetString("LOG_LEVEL"),
		JWTSecret:  v.GetString("JWT_SECRET"),

		BroadcastDriver:  v.GetString("BROADCAST_DRIVER"),
		ChannelPrefix:    v.GetString("BROADCAST_CHANNEL_PREFIX"),
		RedisAddr:        v.GetString("REDIS_ADDR"),
		RedisPassword:    v.GetString("REDIS_PASSWORD"),
		SubscriptionTTL:  v.GetDuration("SUBSCRIPTION_TTL"),
		KafkaBrokers:     splitList(v.GetString("KAFKA_BROKERS")),
		KafkaTopic:       v.GetString("KAFKA_TOPIC"),
		RabbitMQURL:      v.GetString("RABBITMQ_URL"),
		RabbitMQExchange: v.GetString("RABBITMQ_EXCHANGE"),

		StripeSecretKey:     v.GetString("STRIPE_SECRET_KEY"),
		StripeWebhookSecret: v.GetString("STRIPE_WEBHOOK_SECRET"),
		PaymentTimeout:      v.GetDuration("PAYMENT_TIMEOUT"),
		ConcurrencyRetries:  v.GetInt("CONCURRENCY_RETRIES"),

		RateLimitRPS:   v.GetFloat64("RATE_LIMIT_RPS"),
		RateLimitBurst: v.GetInt("RATE_LIMIT_BURST"),

		OutboxBatchSize: v.GetInt("OUTBOX_BATCH_SIZE"),
		OutboxGrace:     v.GetDuration("OUTBOX_GRACE"),
		OutboxSchedule:  v.GetString("OUTBOX_SCHEDULE"),
		TenderBatchSize: v.GetInt("TENDER_BATCH_SIZE"),
		TenderSchedule:  v.GetString("TENDER_SCHEDULE"),
		ShutdownTimeout: v.GetDuration("SHUTDOWN_TIMEOUT"),
	}

	var err error
	if cfg.DisputeReleaseRoles, err = parseRoles(v.GetString("DISPUTE_RELEASE_ROLES")); err != nil {
		return Config{}, fmt.Errorf("DISPUTE_RELEASE_ROLES: %w", err)
	}
	if cfg.DisputeRefundRoles, err = parseRoles(v.GetString("DISPUTE_REFUND_ROLES")); err != nil {
		return Config{}, fmt.Errorf("DISPUTE_REFUND_ROLES: %w", err)
	}
	return cfg, cfg.Validate()
}

// Validate reports settings the service cannot start without.
func (c Config) Validate() error {
	var errList []error
	if c.JWTSecret == "" {
		errList = append(errList, errors.New("JWT_SECRET is required"))
	}
	if c.StripeSecretKey == "" {
		errList = append(errList, errors.New("STRIPE_SECRET_KEY is required"))
	}
	if c.StripeWebhookSecret == "" {
		errList = append(errList, errors.New("STRIPE_WEBHOOK_SECRET is required"))
	}
	switch strings.ToLower(c.BroadcastDriver) {
	case broadcast.DriverRedis:
		if c.RedisAddr == "" {
			errList = append(errList, errors.New("REDIS_ADDR is required for the redis driver"))
		}
	case broadcast.DriverKafka:
		if len(c.KafkaBrokers) == 0 {
			errList = append(errList, errors.New("KAFKA_BROKERS is required for the kafka driver"))
		}
	case broadcast.DriverRabbitMQ:
		if c.RabbitMQURL == "" {
			errList = append(errList, errors.New("RABBITMQ_URL is required for the rabbitmq driver"))
		}
	}
	if c.ConcurrencyRetries < 1 {
		errList = append(errList, errors.New("CONCURRENCY_RETRIES must be at least 1"))
	}
	return errors.Join(errList...)
}

// DSN is the lib/pq and pgx connection string.
func (c Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSslMode)
}

func (c Config) ResolutionPolicy() escrow.ResolutionPolicy {
	return escrow.ResolutionPolicy{ReleaseRoles: c.DisputeReleaseRoles, RefundRoles: c.DisputeRefundRoles}
}

func (c Config) BroadcastOptions() broadcast.Options {
	return broadcast.Options{
		Driver:           c.BroadcastDriver,
		RedisAddr:        c.RedisAddr,
		RedisPassword:    c.RedisPassword,
		ChannelPrefix:    c.ChannelPrefix,
		KafkaBrokers:     c.KafkaBrokers,
		KafkaTopic:       c.KafkaTopic,
		RabbitMQURL:      c.RabbitMQURL,
		RabbitMQExchange: c.RabbitMQExchange,
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// parseRoles reads a comma separated role list. An empty list is allowed and
// means nobody may resolve that side of a dispute.
func parseRoles(s string) ([]kernel.Role, error) {
	parts := splitList(s)
	roles := make([]kernel.Role, 0, len(parts))
	for _, p := range parts {
		r := kernel.Role(strings.ToLower(p))
		if err := r.Validate(); err != nil {
			return nil, err
		}
		roles = append(roles, r)
	}
	return roles, nil
}
