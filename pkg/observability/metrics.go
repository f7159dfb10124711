package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Extension load metrics
	ExtensionLoadsTotal *prometheus.CounterVec
	ExtensionsLoaded    prometheus.Gauge
	ScanDuration        prometheus.Histogram

	// Registry metrics
	EntryPointsRegistered *prometheus.GaugeVec

	// Resolution cache metrics
	ResolutionCacheHits   prometheus.Counter
	ResolutionCacheMisses prometheus.Counter

	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

// NewMetrics creates and registers all Prometheus metrics
func NewMetrics(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		ExtensionLoadsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hubcap_extension_loads_total",
				Help: "Total number of extension load attempts by outcome",
			},
			[]string{"status", "reason"},
		),
		ExtensionsLoaded: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "hubcap_extensions_loaded",
				Help: "Number of currently loaded extensions",
			},
		),
		ScanDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "hubcap_scan_duration_seconds",
				Help:    "Extension directory scan duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),
		EntryPointsRegistered: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "hubcap_entry_points_registered",
				Help: "Number of registered entry points per group",
			},
			[]string{"group"},
		),
		ResolutionCacheHits: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "hubcap_resolution_cache_hits_total",
				Help: "Total dependency-resolution cache hits",
			},
		),
		ResolutionCacheMisses: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "hubcap_resolution_cache_misses_total",
				Help: "Total dependency-resolution cache misses",
			},
		),
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hubcap_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "hubcap_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
	}

	registry.MustRegister(
		m.ExtensionLoadsTotal,
		m.ExtensionsLoaded,
		m.ScanDuration,
		m.EntryPointsRegistered,
		m.ResolutionCacheHits,
		m.ResolutionCacheMisses,
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
	)

	return m
}
