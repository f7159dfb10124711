package observability

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewMetrics(registry)

	require.NotNil(t, m)

	m.ExtensionLoadsTotal.WithLabelValues("loaded", "ok").Inc()
	m.ExtensionLoadsTotal.WithLabelValues("failed", "conflict").Add(2)
	m.ExtensionsLoaded.Set(3)
	m.EntryPointsRegistered.WithLabelValues("loader").Set(5)
	m.ResolutionCacheHits.Inc()
	m.ResolutionCacheMisses.Inc()

	assert.Equal(t, float64(1), testutil.ToFloat64(m.ExtensionLoadsTotal.WithLabelValues("loaded", "ok")))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.ExtensionLoadsTotal.WithLabelValues("failed", "conflict")))
	assert.Equal(t, float64(3), testutil.ToFloat64(m.ExtensionsLoaded))
	assert.Equal(t, float64(5), testutil.ToFloat64(m.EntryPointsRegistered.WithLabelValues("loader")))
}

func TestNewMetrics_DuplicateRegistrationPanics(t *testing.T) {
	registry := prometheus.NewRegistry()
	NewMetrics(registry)

	assert.Panics(t, func() {
		NewMetrics(registry)
	})
}

func TestSetupLogger(t *testing.T) {
	logger := SetupLogger("debug")
	assert.Equal(t, "debug", logger.GetLevel().String())

	// Unparseable levels fall back to info.
	logger = SetupLogger("chatty")
	assert.Equal(t, "info", logger.GetLevel().String())
}
