package metrics_test

import (
	"errors"
	"testing"

	"freight/internal/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_RegistersCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	m.EventsPublished.WithLabelValues("order.accepted").Inc()
	m.JobRuns.WithLabelValues("close_expired_tenders", "ok").Add(2)

	assert.InDelta(t, 1, testutil.ToFloat64(m.EventsPublished.WithLabelValues("order.accepted")), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(m.JobRuns.WithLabelValues("close_expired_tenders", "ok")), 0)

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}

func TestNew_DoubleRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics.New(reg)
	assert.Panics(t, func() { metrics.New(reg) })
}

func TestResult(t *testing.T) {
	assert.Equal(t, "ok", metrics.Result(nil))
	assert.Equal(t, "error", metrics.Result(errors.New("boom")))
}
