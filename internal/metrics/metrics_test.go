package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics(t *testing.T) {
	m, err := New(prometheus.NewRegistry())
	require.NoError(t, err)

	m.ObserveRequest("/api/orders", "POST", "201", 0.02)
	m.ObserveRequest("/api/orders", "POST", "201", 0.03)
	m.DomainEvent("order_created")
	m.AuditDropped()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requests.WithLabelValues("/api/orders", "POST", "201")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.domainEvents.WithLabelValues("order_created")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.auditDropped))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveRequest("/", "GET", "200", 0)
		m.DomainEvent("x")
		m.AuditDropped()
	})
}

func TestNew_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := New(reg)
	require.NoError(t, err)

	_, err = New(reg)
	assert.Error(t, err)
}
