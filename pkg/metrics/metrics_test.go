package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_RegistersAndCounts(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ExportsTotal.WithLabelValues("ok").Inc()
	m.ExportsTotal.WithLabelValues("failed").Inc()
	m.ExportsTotal.WithLabelValues("ok").Inc()
	m.RowsParsed.Add(5)
	m.ResolutionMisses.Inc()

	assert.Equal(t, float64(2), testutil.ToFloat64(m.ExportsTotal.WithLabelValues("ok")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.ExportsTotal.WithLabelValues("failed")))
	assert.Equal(t, float64(5), testutil.ToFloat64(m.RowsParsed))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.ResolutionMisses))
}

func TestNew_DuplicateRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg)

	// promauto panics on duplicate collectors; a second New on the same
	// registry is a programming error.
	require.Panics(t, func() { New(reg) })
}
