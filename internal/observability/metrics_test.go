package observability

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestObserveMainConflict(t *testing.T) {
	m := NewMetrics()

	require.Zero(t, testutil.ToFloat64(m.mainConflicts))
	m.ObserveMainConflict()
	m.ObserveMainConflict()
	require.Equal(t, 2.0, testutil.ToFloat64(m.mainConflicts))
}

func TestObserveAssemblyByOutcome(t *testing.T) {
	m := NewMetrics()

	m.ObserveAssembly("ready")
	m.ObserveAssembly("ready")
	m.ObserveAssembly("degraded")
	m.ObserveAssembly("not_found")

	require.Equal(t, 2.0, testutil.ToFloat64(m.assemblyTotal.WithLabelValues("ready")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.assemblyTotal.WithLabelValues("degraded")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.assemblyTotal.WithLabelValues("not_found")))
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics

	m.ObserveMainConflict()
	m.ObserveAssembly("ready")
	require.NotNil(t, m.Handler())
}
