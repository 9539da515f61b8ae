package jobs

import (
	"fmt"
	"time"

	"freight/internal/pkg/metrics"

	"go.uber.org/zap"
)

// Schedules holds cron expressions (with seconds) and batch sizes for the jobs.
type Schedules struct {
	TenderDeadline   string
	TenderBatch      int
	OutboxRedelivery string
	OutboxGrace      time.Duration
	OutboxBatch      int
}

// DefaultSchedules checks deadlines every minute and the outbox every ten seconds.
func DefaultSchedules() Schedules {
	return Schedules{
		TenderDeadline:   "0 * * * * *",
		TenderBatch:      100,
		OutboxRedelivery: "*/10 * * * * *",
		OutboxGrace:      5 * time.Second,
		OutboxBatch:      100,
	}
}

// JobManager coordinates all scheduled jobs in the application.
type JobManager struct {
	tenderDeadlineJob   *TenderDeadlineJob
	outboxRedeliveryJob *OutboxRedeliveryJob
}

func NewJobManager(
	closer TenderCloser,
	redeliverer Redeliverer,
	schedules Schedules,
	m *metrics.Metrics,
	logger *zap.Logger,
) *JobManager {
	return &JobManager{
		tenderDeadlineJob: NewTenderDeadlineJob(
			closer, schedules.TenderDeadline, schedules.TenderBatch, m, logger),
		outboxRedeliveryJob: NewOutboxRedeliveryJob(
			redeliverer, schedules.OutboxRedelivery, schedules.OutboxGrace, schedules.OutboxBatch, m, logger),
	}
}

// StartAll starts all scheduled jobs.
func (jm *JobManager) StartAll() error {
	if err := jm.outboxRedeliveryJob.Start(); err != nil {
		return fmt.Errorf("failed to start outbox redelivery job: %w", err)
	}

	if err := jm.tenderDeadlineJob.Start(); err != nil {
		// Stop already started jobs if this one fails
		jm.outboxRedeliveryJob.Stop()
		return fmt.Errorf("failed to start tender deadline job: %w", err)
	}

	return nil
}

// StopAll stops all scheduled jobs gracefully.
func (jm *JobManager) StopAll() {
	jm.tenderDeadlineJob.Stop()
	jm.outboxRedeliveryJob.Stop()
}
