// Package metrics holds the prometheus collectors exported on /metrics.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics groups the service's collectors so they can be registered once and
// handed to the components that update them.
type Metrics struct {
	EventsPublished   *prometheus.CounterVec
	PublishFailures   *prometheus.CounterVec
	DeliveriesDropped prometheus.Counter
	OutboxRedelivered prometheus.Counter
	JobRuns           *prometheus.CounterVec
	RateLimitExceeded prometheus.Counter
	PaymentCalls      *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		EventsPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "freight_events_published_total",
			Help: "Broadcast messages handed to the transport, by event kind",
		}, []string{"kind"}),
		PublishFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "freight_event_publish_failures_total",
			Help: "Broadcast messages the transport refused, by event kind",
		}, []string{"kind"}),
		DeliveriesDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "freight_event_recipients_filtered_total",
			Help: "Subscribers removed from a broadcast by the channel authorizer",
		}),
		OutboxRedelivered: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "freight_outbox_redelivered_total",
			Help: "Outbox records published by the redelivery job",
		}),
		JobRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "freight_job_runs_total",
			Help: "Scheduled job executions, by job and result",
		}, []string{"job", "result"}),
		RateLimitExceeded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rate_limit_exceeded_total",
			Help: "Total number of rejected HTTP requests due to rate limiting",
		}),
		PaymentCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "freight_payment_calls_total",
			Help: "Calls to the payment provider, by operation and result",
		}, []string{"operation", "result"}),
	}

	reg.MustRegister(
		m.EventsPublished,
		m.PublishFailures,
		m.DeliveriesDropped,
		m.OutboxRedelivered,
		m.JobRuns,
		m.RateLimitExceeded,
		m.PaymentCalls,
	)
	return m
}

// NewUnregistered is New against a throwaway registry, for tests.
func NewUnregistered() *Metrics {
	return New(prometheus.NewRegistry())
}

// Result labels a call outcome.
func Result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
