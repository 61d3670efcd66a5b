package observability

import (
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
)

// MetricsCollector provides hooks for metrics collection
type MetricsCollector interface {
	IncDecoded()
	IncDecodeFailed()
	IncSent()
	IncSendFailed()
	IncReceived()
	IncProcessed()
	IncFailed()
	IncRetried()
	IncSentToDLQ()
	IncDuplicate()
	IncReconnected()
}

// ============================================================================
// In-memory
// ============================================================================

// InMemoryMetrics is a simple in-memory implementation for testing/demo
type InMemoryMetrics struct {
	Decoded      atomic.Int64
	DecodeFailed atomic.Int64
	Sent         atomic.Int64
	SendFailed   atomic.Int64
	Received     atomic.Int64
	Processed    atomic.Int64
	Failed       atomic.Int64
	Retried      atomic.Int64
	SentToDLQ    atomic.Int64
	Duplicate    atomic.Int64
	Reconnected  atomic.Int64
}

func NewInMemoryMetrics() *InMemoryMetrics {
	return &InMemoryMetrics{}
}

func (m *InMemoryMetrics) IncDecoded()      { m.Decoded.Add(1) }
func (m *InMemoryMetrics) IncDecodeFailed() { m.DecodeFailed.Add(1) }
func (m *InMemoryMetrics) IncSent()         { m.Sent.Add(1) }
func (m *InMemoryMetrics) IncSendFailed()   { m.SendFailed.Add(1) }
func (m *InMemoryMetrics) IncReceived()     { m.Received.Add(1) }
func (m *InMemoryMetrics) IncProcessed()    { m.Processed.Add(1) }
func (m *InMemoryMetrics) IncFailed()       { m.Failed.Add(1) }
func (m *InMemoryMetrics) IncRetried()      { m.Retried.Add(1) }
func (m *InMemoryMetrics) IncSentToDLQ()    { m.SentToDLQ.Add(1) }
func (m *InMemoryMetrics) IncDuplicate()    { m.Duplicate.Add(1) }
func (m *InMemoryMetrics) IncReconnected()  { m.Reconnected.Add(1) }

func (m *InMemoryMetrics) GetDecoded() int64      { return m.Decoded.Load() }
func (m *InMemoryMetrics) GetDecodeFailed() int64 { return m.DecodeFailed.Load() }
func (m *InMemoryMetrics) GetSent() int64         { return m.Sent.Load() }
func (m *InMemoryMetrics) GetSendFailed() int64   { return m.SendFailed.Load() }
func (m *InMemoryMetrics) GetReceived() int64     { return m.Received.Load() }
func (m *InMemoryMetrics) GetProcessed() int64    { return m.Processed.Load() }
func (m *InMemoryMetrics) GetFailed() int64       { return m.Failed.Load() }
func (m *InMemoryMetrics) GetRetried() int64      { return m.Retried.Load() }
func (m *InMemoryMetrics) GetSentToDLQ() int64    { return m.SentToDLQ.Load() }
func (m *InMemoryMetrics) GetDuplicate() int64    { return m.Duplicate.Load() }
func (m *InMemoryMetrics) GetReconnected() int64  { return m.Reconnected.Load() }

// ============================================================================
// Prometheus
// ============================================================================

// PrometheusMetrics exposes the exchange counters as a single counter vector
// labelled by event.
type PrometheusMetrics struct {
	events *prometheus.CounterVec
}

// Event label values.
const (
	EventDecoded      = "decoded"
	EventDecodeFailed = "decode_failed"
	EventSent         = "sent"
	EventSendFailed   = "send_failed"
	EventReceived     = "received"
	EventProcessed    = "processed"
	EventFailed       = "failed"
	EventRetried      = "retried"
	EventSentToDLQ    = "sent_to_dlq"
	EventDuplicate    = "duplicate"
	EventReconnected  = "reconnected"
)

// NewPrometheusMetrics registers the collector on reg. Pass
// prometheus.DefaultRegisterer to expose it on the default handler.
func NewPrometheusMetrics(namespace string, reg prometheus.Registerer) (*PrometheusMetrics, error) {
	events := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "exchange_events_total",
			Help:      "Total exchange lifecycle events by type",
		},
		[]string{"event"},
	)
	if err := reg.Register(events); err != nil {
		return nil, err
	}
	return &PrometheusMetrics{events: events}, nil
}

func (m *PrometheusMetrics) inc(event string) {
	m.events.WithLabelValues(event).Inc()
}

func (m *PrometheusMetrics) IncDecoded()      { m.inc(EventDecoded) }
func (m *PrometheusMetrics) IncDecodeFailed() { m.inc(EventDecodeFailed) }
func (m *PrometheusMetrics) IncSent()         { m.inc(EventSent) }
func (m *PrometheusMetrics) IncSendFailed()   { m.inc(EventSendFailed) }
func (m *PrometheusMetrics) IncReceived()     { m.inc(EventReceived) }
func (m *PrometheusMetrics) IncProcessed()    { m.inc(EventProcessed) }
func (m *PrometheusMetrics) IncFailed()       { m.inc(EventFailed) }
func (m *PrometheusMetrics) IncRetried()      { m.inc(EventRetried) }
func (m *PrometheusMetrics) IncSentToDLQ()    { m.inc(EventSentToDLQ) }
func (m *PrometheusMetrics) IncDuplicate()    { m.inc(EventDuplicate) }
func (m *PrometheusMetrics) IncReconnected()  { m.inc(EventReconnected) }

// Counter returns the counter behind an event label.
func (m *PrometheusMetrics) Counter(event string) prometheus.Counter {
	return m.events.WithLabelValues(event)
}
