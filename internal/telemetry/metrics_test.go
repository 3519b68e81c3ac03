package telemetry

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_SearchAttemptOutcomes(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.SearchAttempt("html", OutcomeEmpty, 0.1)
	m.SearchAttempt("html", OutcomeEmpty, 0.1)
	m.SearchAttempt("html", OutcomeError, 0.2)
	m.SearchAttempt("json", OutcomeOK, 0.3)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.searchAttempts.WithLabelValues("html", OutcomeEmpty)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.searchAttempts.WithLabelValues("html", OutcomeError)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.searchAttempts.WithLabelValues("json", OutcomeOK)))

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.SearchAttempt("html", OutcomeOK, 1)
		m.SearchResolved("private")
		m.StreamEvent("response")
	})
}
