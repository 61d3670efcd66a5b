package observability

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryMetrics(t *testing.T) {
	m := NewInMemoryMetrics()

	m.IncDecoded()
	m.IncDecoded()
	m.IncDecodeFailed()
	m.IncSent()
	m.IncSendFailed()
	m.IncReceived()
	m.IncProcessed()
	m.IncFailed()
	m.IncRetried()
	m.IncSentToDLQ()
	m.IncDuplicate()
	m.IncReconnected()

	assert.Equal(t, int64(2), m.GetDecoded())
	assert.Equal(t, int64(1), m.GetDecodeFailed())
	assert.Equal(t, int64(1), m.GetSent())
	assert.Equal(t, int64(1), m.GetSendFailed())
	assert.Equal(t, int64(1), m.GetReceived())
	assert.Equal(t, int64(1), m.GetProcessed())
	assert.Equal(t, int64(1), m.GetFailed())
	assert.Equal(t, int64(1), m.GetRetried())
	assert.Equal(t, int64(1), m.GetSentToDLQ())
	assert.Equal(t, int64(1), m.GetDuplicate())
	assert.Equal(t, int64(1), m.GetReconnected())
}

func TestPrometheusMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewPrometheusMetrics("test", reg)
	require.NoError(t, err)

	var _ MetricsCollector = m

	m.IncSent()
	m.IncSent()
	m.IncSentToDLQ()
	m.IncReconnected()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Counter(EventSent)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Counter(EventSentToDLQ)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Counter(EventReconnected)))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.Counter(EventFailed)))
	assert.Equal(t, 4, testutil.CollectAndCount(m.events, "test_exchange_events_total"))
}

func TestPrometheusMetrics_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewPrometheusMetrics("test", reg)
	require.NoError(t, err)

	_, err = NewPrometheusMetrics("test", reg)
	assert.Error(t, err)
}
