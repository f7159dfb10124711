package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/platinummonkey/hubcap/pkg/api"
	"github.com/platinummonkey/hubcap/pkg/catalog"
	"github.com/platinummonkey/hubcap/pkg/config"
	"github.com/platinummonkey/hubcap/pkg/host"
	"github.com/platinummonkey/hubcap/pkg/observability"
)

// hubcapd scans extension bundles, maintains the entry-point registry, and
// serves the host API.
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		os.Stderr.WriteString("invalid configuration: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger := observability.SetupLogger(cfg.Observability.LogLevel)
	logger.Info("Starting hubcap extension host")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Tracing
	providers, err := observability.InitOTel(ctx, observability.OTelConfig{
		Enabled:        cfg.Observability.OTelEnabled,
		Endpoint:       cfg.Observability.OTelEndpoint,
		ServiceName:    cfg.Observability.OTelServiceName,
		ServiceVersion: cfg.Observability.OTelServiceVersion,
		Insecure:       cfg.Observability.OTelInsecure,
	}, logger)
	if err != nil {
		logger.Fatalf("Failed to initialize OpenTelemetry: %v", err)
	}
	defer func() {
		if err := providers.Shutdown(context.Background()); err != nil {
			logger.Warnf("Failed to shut down OpenTelemetry: %v", err)
		}
	}()

	// Metrics
	var metrics *observability.Metrics
	var gatherer prometheus.Gatherer
	if cfg.Observability.MetricsEnabled {
		promRegistry := prometheus.NewRegistry()
		metrics = observability.NewMetrics(promRegistry)
		gatherer = promRegistry
	}

	// Load catalog
	var cat *catalog.Catalog
	if cfg.Catalog.Enabled {
		cat, err = catalog.Open(cfg.Catalog.Path)
		if err != nil {
			logger.Fatalf("Failed to open load catalog: %v", err)
		}
		defer cat.Close()
		logger.Infof("Load catalog at %s", cfg.Catalog.Path)
	}

	h := host.New(cfg.Host.ExtensionDirs, host.Options{
		Logger:    logger,
		Catalog:   cat,
		Metrics:   metrics,
		CacheSize: cfg.Host.ResolutionCacheSize,
	})

	logger.Infof("Scanning extension roots: %v", cfg.Host.ExtensionDirs)
	if err := h.Scan(ctx); err != nil {
		logger.Fatalf("Initial extension scan failed: %v", err)
	}

	// Filesystem watching and scheduled rescans
	var watcher *host.Watcher
	if cfg.Host.WatchEnabled || cfg.Host.RescanSchedule != "" {
		watcher, err = host.NewWatcher(h, cfg.Host.WatchDebounce, logger)
		if err != nil {
			logger.Fatalf("Failed to create watcher: %v", err)
		}
		if cfg.Host.WatchEnabled {
			if err := watcher.Start(ctx); err != nil {
				logger.Fatalf("Failed to start watcher: %v", err)
			}
		}
		if cfg.Host.RescanSchedule != "" {
			if err := watcher.Schedule(cfg.Host.RescanSchedule); err != nil {
				logger.Fatalf("Failed to schedule rescans: %v", err)
			}
			logger.Infof("Rescan schedule: %s", cfg.Host.RescanSchedule)
		}
	}

	server := api.NewServer(h, api.Options{
		Catalog:  cat,
		Metrics:  metrics,
		Gatherer: gatherer,
		Logger:   logger,
	})

	httpServer := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      server,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Infof("API listening on %s", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("HTTP server failed: %v", err)
		}
	}()

	// Graceful shutdown on SIGINT/SIGTERM
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan
	logger.Info("Received shutdown signal, stopping")
	cancel()

	if watcher != nil {
		watcher.Stop()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warnf("HTTP server shutdown failed: %v", err)
	}

	logger.Info("Shutdown complete")
}
