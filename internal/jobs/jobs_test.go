package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"freight/internal/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockTenderCloser struct{ mock.Mock }

func (m *MockTenderCloser) CloseExpired(ctx context.Context, now time.Time, limit int) (int, error) {
	args := m.Called(ctx, now, limit)
	return args.Int(0), args.Error(1)
}

type MockRedeliverer struct{ mock.Mock }

func (m *MockRedeliverer) Redeliver(ctx context.Context, olderThan time.Time, limit int) (int, error) {
	args := m.Called(ctx, olderThan, limit)
	return args.Int(0), args.Error(1)
}

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func TestTenderDeadlineJobRun(t *testing.T) {
	m := metrics.NewUnregistered()
	closer := &MockTenderCloser{}
	closer.On("CloseExpired", mock.Anything, fixedNow, 50).Return(3, nil).Once()

	job := NewTenderDeadlineJob(closer, "0 * * * * *", 50, m, zap.NewNop())
	job.now = func() time.Time { return fixedNow }

	closed, err := job.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 3, closed)
	assert.InDelta(t, 1, testutil.ToFloat64(m.JobRuns.WithLabelValues(tenderDeadlineJobName, "ok")), 0)
	closer.AssertExpectations(t)
}

func TestTenderDeadlineJobRunFailure(t *testing.T) {
	m := metrics.NewUnregistered()
	closer := &MockTenderCloser{}
	closer.On("CloseExpired", mock.Anything, mock.Anything, mock.Anything).Return(0, errors.New("db down")).Once()

	job := NewTenderDeadlineJob(closer, "0 * * * * *", 50, m, zap.NewNop())

	_, err := job.Run(context.Background())

	require.Error(t, err)
	assert.InDelta(t, 1, testutil.ToFloat64(m.JobRuns.WithLabelValues(tenderDeadlineJobName, "error")), 0)
}

func TestOutboxRedeliveryJobRunUsesGrace(t *testing.T) {
	m := metrics.NewUnregistered()
	redeliverer := &MockRedeliverer{}
	redeliverer.On("Redeliver", mock.Anything, fixedNow.Add(-5*time.Second), 20).Return(4, nil).Once()

	job := NewOutboxRedeliveryJob(redeliverer, "*/10 * * * * *", 5*time.Second, 20, m, zap.NewNop())
	job.now = func() time.Time { return fixedNow }

	published, err := job.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 4, published)
	assert.InDelta(t, 4, testutil.ToFloat64(m.OutboxRedelivered), 0)
	redeliverer.AssertExpectations(t)
}

func TestOutboxRedeliveryJobCountsPartialProgress(t *testing.T) {
	m := metrics.NewUnregistered()
	redeliverer := &MockRedeliverer{}
	redeliverer.On("Redeliver", mock.Anything, mock.Anything, mock.Anything).
		Return(2, errors.New("broker unavailable")).Once()

	job := NewOutboxRedeliveryJob(redeliverer, "*/10 * * * * *", time.Second, 20, m, zap.NewNop())

	published, err := job.Run(context.Background())

	require.Error(t, err)
	assert.Equal(t, 2, published)
	assert.InDelta(t, 2, testutil.ToFloat64(m.OutboxRedelivered), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.JobRuns.WithLabelValues(outboxRedeliveryJobName, "error")), 0)
}

func TestJobManagerRejectsBadSchedule(t *testing.T) {
	schedules := DefaultSchedules()
	schedules.TenderDeadline = "not a schedule"

	jm := NewJobManager(&MockTenderCloser{}, &MockRedeliverer{}, schedules, metrics.NewUnregistered(), zap.NewNop())

	err := jm.StartAll()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tender deadline")
}

func TestJobManagerStartStop(t *testing.T) {
	schedules := DefaultSchedules()
	schedules.TenderDeadline = "0 0 0 1 1 *"
	schedules.OutboxRedelivery = "0 0 0 1 1 *"

	jm := NewJobManager(&MockTenderCloser{}, &MockRedeliverer{}, schedules, metrics.NewUnregistered(), zap.NewNop())

	require.NoError(t, jm.StartAll())
	jm.StopAll()
}
