package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestLayoutWriteOutcomes(t *testing.T) {
	m := NewWithRegistry(prometheus.NewRegistry(), nil)

	m.ObserveLayoutWrite(LayoutWriteWritten)
	m.ObserveLayoutWrite(LayoutWriteWritten)
	m.ObserveLayoutWrite(LayoutWriteFailed)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.LayoutWritesTotal.WithLabelValues(LayoutWriteWritten)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LayoutWritesTotal.WithLabelValues(LayoutWriteFailed)))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.LayoutWritesTotal.WithLabelValues(LayoutWriteUnchanged)))
}

func TestRecordHTTPRequest(t *testing.T) {
	m := NewWithRegistry(prometheus.NewRegistry(), nil)

	m.RecordHTTPRequest("GET", "/api/layouts/:dashboard", 200, 15*time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/api/layouts/:dashboard", "200")))
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveLayoutWrite(LayoutWriteWritten)
		m.SetLayoutSessions(3)
		m.RecordMentionsSynthesized(2)
		m.RecordWebhookEvent("invoice.paid", "handled")
	})
}

func TestShouldSkipEndpoint(t *testing.T) {
	assert.True(t, ShouldSkipEndpoint("/metrics"))
	assert.True(t, ShouldSkipEndpoint("/health"))
	assert.False(t, ShouldSkipEndpoint("/api/tasks"))
}
