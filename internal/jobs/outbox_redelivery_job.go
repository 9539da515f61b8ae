package jobs

import (
	"context"
	"time"

	"freight/internal/pkg/metrics"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const outboxRedeliveryJobName = "outbox_redelivery"

// Redeliverer publishes outbox records that are still unpublished after the
// post-commit notification.
type Redeliverer interface {
	Redeliver(ctx context.Context, olderThan time.Time, limit int) (int, error)
}

// OutboxRedeliveryJob picks up events whose immediate publication failed or
// never happened because the process stopped between commit and publish.
type OutboxRedeliveryJob struct {
	redeliverer Redeliverer
	schedule    string
	grace       time.Duration
	limit       int
	cron        *cron.Cron
	metrics     *metrics.Metrics
	logger      *zap.Logger
	now         func() time.Time
}

// NewOutboxRedeliveryJob creates the job. Records younger than grace are left
// to the post-commit path.
func NewOutboxRedeliveryJob(
	redeliverer Redeliverer,
	schedule string,
	grace time.Duration,
	limit int,
	m *metrics.Metrics,
	logger *zap.Logger,
) *OutboxRedeliveryJob {
	return &OutboxRedeliveryJob{
		redeliverer: redeliverer,
		schedule:    schedule,
		grace:       grace,
		limit:       limit,
		cron:        cron.New(cron.WithSeconds()),
		metrics:     m,
		logger:      logger.With(zap.String("component", "outbox_redelivery_job")),
		now:         time.Now,
	}
}

func (j *OutboxRedeliveryJob) Run(ctx context.Context) (int, error) {
	published, err := j.redeliverer.Redeliver(ctx, j.now().Add(-j.grace), j.limit)
	j.metrics.JobRuns.WithLabelValues(outboxRedeliveryJobName, metrics.Result(err)).Inc()
	if published > 0 {
		j.metrics.OutboxRedelivered.Add(float64(published))
		j.logger.Info("outbox events redelivered", zap.Int("count", published))
	}
	if err != nil {
		j.logger.Warn("outbox redelivery incomplete", zap.Int("published", published), zap.Error(err))
		return published, err
	}
	return published, nil
}

func (j *OutboxRedeliveryJob) Start() error {
	_, err := j.cron.AddFunc(j.schedule, func() {
		_, _ = j.Run(context.Background())
	})
	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.Info("outbox redelivery job started", zap.String("schedule", j.schedule))
	return nil
}

func (j *OutboxRedeliveryJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.Info("outbox redelivery job stopped")
}
