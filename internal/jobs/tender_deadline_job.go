package jobs

import (
	"context"
	"time"

	"freight/internal/pkg/metrics"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const tenderDeadlineJobName = "tender_deadline"

// TenderCloser closes open tenders whose submission deadline passed without
// a submitted bid.
type TenderCloser interface {
	CloseExpired(ctx context.Context, now time.Time, limit int) (int, error)
}

// TenderDeadlineJob moves lapsed open tenders, past their deadline with
// nothing to award, to closed even when nobody touches them.
type TenderDeadlineJob struct {
	closer   TenderCloser
	schedule string
	limit    int
	cron     *cron.Cron
	metrics  *metrics.Metrics
	logger   *zap.Logger
	now      func() time.Time
}

func NewTenderDeadlineJob(
	closer TenderCloser,
	schedule string,
	limit int,
	m *metrics.Metrics,
	logger *zap.Logger,
) *TenderDeadlineJob {
	return &TenderDeadlineJob{
		closer:   closer,
		schedule: schedule,
		limit:    limit,
		cron:     cron.New(cron.WithSeconds()),
		metrics:  m,
		logger:   logger.With(zap.String("component", "tender_deadline_job")),
		now:      time.Now,
	}
}

// Run performs one pass and returns how many tenders it closed.
func (j *TenderDeadlineJob) Run(ctx context.Context) (int, error) {
	closed, err := j.closer.CloseExpired(ctx, j.now(), j.limit)
	j.metrics.JobRuns.WithLabelValues(tenderDeadlineJobName, metrics.Result(err)).Inc()
	if err != nil {
		j.logger.Error("tender deadline job failed", zap.Error(err))
		return 0, err
	}
	if closed > 0 {
		j.logger.Info("expired tenders closed", zap.Int("count", closed))
	}
	return closed, nil
}

func (j *TenderDeadlineJob) Start() error {
	_, err := j.cron.AddFunc(j.schedule, func() {
		_, _ = j.Run(context.Background())
	})
	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.Info("tender deadline job started", zap.String("schedule", j.schedule))
	return nil
}

// Stop waits for a running pass to finish.
func (j *TenderDeadlineJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.Info("tender deadline job stopped")
}
