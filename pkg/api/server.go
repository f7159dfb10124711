package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/platinummonkey/hubcap/pkg/catalog"
	"github.com/platinummonkey/hubcap/pkg/host"
	"github.com/platinummonkey/hubcap/pkg/httputil"
	"github.com/platinummonkey/hubcap/pkg/observability"
)

// Server represents the host API server
type Server struct {
	host     *host.Host
	catalog  *catalog.Catalog
	metrics  *observability.Metrics
	gatherer prometheus.Gatherer
	log      *logrus.Logger
	router   *mux.Router
	handler  http.Handler
	started  time.Time
}

// Options configures optional server collaborators. Catalog, metrics, and
// gatherer may be nil; the corresponding routes are then absent or degraded.
type Options struct {
	Catalog  *catalog.Catalog
	Metrics  *observability.Metrics
	Gatherer prometheus.Gatherer
	Logger   *logrus.Logger
}

// NewServer creates the API server over a host.
func NewServer(h *host.Host, opts Options) *Server {
	log := opts.Logger
	if log == nil {
		log = logrus.New()
	}

	s := &Server{
		host:     h,
		catalog:  opts.Catalog,
		metrics:  opts.Metrics,
		gatherer: opts.Gatherer,
		log:      log,
		router:   mux.NewRouter(),
		started:  time.Now(),
	}
	// Route-aware middleware goes on the router so the mux path template is
	// available; the rest wraps from the outside.
	s.router.Use(s.metricsMiddleware)
	s.setupRoutes()

	chain := httputil.Chain(
		httputil.RecoveryMiddleware(log),
		httputil.LoggingMiddleware(log),
	)
	s.handler = otelhttp.NewHandler(chain(s.router), "hubcap.api")
	return s
}

// setupRoutes configures all the API routes
func (s *Server) setupRoutes() {
	s.router.HandleFunc("/healthz", s.health).Methods("GET")

	// Extension routes
	s.router.HandleFunc("/extensions", s.listExtensions).Methods("GET")
	s.router.HandleFunc("/extensions/{name}", s.getExtension).Methods("GET")
	s.router.HandleFunc("/extensions/{name}/environment", s.getEnvironment).Methods("GET")
	s.router.HandleFunc("/extensions/{name}/history", s.getExtensionHistory).Methods("GET")

	// Registry routes
	s.router.HandleFunc("/registry", s.getRegistry).Methods("GET")
	s.router.HandleFunc("/registry/groups", s.listGroups).Methods("GET")
	s.router.HandleFunc("/registry/groups/{group}", s.listGroupEntries).Methods("GET")

	// Load history
	s.router.HandleFunc("/history", s.getHistory).Methods("GET")

	// Reload trigger
	s.router.HandleFunc("/reload", s.reload).Methods("POST")

	if s.gatherer != nil {
		s.router.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})).Methods("GET")
	}
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// metricsMiddleware records per-route request counts and latencies using the
// mux route template so label cardinality stays bounded.
func (s *Server) metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.metrics == nil {
			next.ServeHTTP(w, r)
			return
		}

		start := time.Now()
		rw := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rw, r)

		path := r.URL.Path
		if route := mux.CurrentRoute(r); route != nil {
			if template, err := route.GetPathTemplate(); err == nil {
				path = template
			}
		}

		s.metrics.HTTPRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(rw.status)).Inc()
		s.metrics.HTTPRequestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}
