package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Server ServerConfig

	// Host (extension loading) configuration
	Host HostConfig

	// Catalog configuration
	Catalog CatalogConfig

	// Observability configuration
	Observability ObservabilityConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// HostConfig holds extension-loading configuration
type HostConfig struct {
	// ExtensionDirs are the roots scanned for extension bundles.
	ExtensionDirs []string
	// WatchEnabled turns on filesystem watching of the extension roots.
	WatchEnabled bool
	// WatchDebounce coalesces bursts of filesystem events into one reload.
	WatchDebounce time.Duration
	// RescanSchedule is an optional cron expression for periodic rescans.
	RescanSchedule string
	// ResolutionCacheSize bounds the dependency-resolution LRU.
	ResolutionCacheSize int
}

// CatalogConfig holds load-history catalog configuration
type CatalogConfig struct {
	Enabled bool
	Path    string
}

// ObservabilityConfig holds observability settings
type ObservabilityConfig struct {
	// Logging
	LogLevel string

	// Metrics
	MetricsEnabled bool

	// OpenTelemetry
	OTelEnabled        bool
	OTelEndpoint       string
	OTelServiceName    string
	OTelServiceVersion string
	OTelInsecure       bool // Use insecure gRPC connection
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Server:        loadServerConfig(),
		Host:          loadHostConfig(),
		Catalog:       loadCatalogConfig(),
		Observability: loadObservabilityConfig(),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// loadServerConfig loads server configuration from environment
func loadServerConfig() ServerConfig {
	return ServerConfig{
		Host:            getEnv("HUBCAP_HOST", "0.0.0.0"),
		Port:            getEnv("HUBCAP_PORT", "8080"),
		ReadTimeout:     getEnvDuration("HUBCAP_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:    getEnvDuration("HUBCAP_WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:     getEnvDuration("HUBCAP_IDLE_TIMEOUT", 60*time.Second),
		ShutdownTimeout: getEnvDuration("HUBCAP_SHUTDOWN_TIMEOUT", 30*time.Second),
	}
}

// loadHostConfig loads extension-loading configuration from environment
func loadHostConfig() HostConfig {
	return HostConfig{
		ExtensionDirs:       getEnvList("HUBCAP_EXTENSION_DIRS", []string{"/etc/hubcap/extensions"}),
		WatchEnabled:        getEnvBool("HUBCAP_WATCH_ENABLED", false),
		WatchDebounce:       getEnvDuration("HUBCAP_WATCH_DEBOUNCE", 2*time.Second),
		RescanSchedule:      getEnv("HUBCAP_RESCAN_SCHEDULE", ""),
		ResolutionCacheSize: getEnvInt("HUBCAP_RESOLUTION_CACHE_SIZE", 128),
	}
}

// loadCatalogConfig loads catalog configuration from environment
func loadCatalogConfig() CatalogConfig {
	return CatalogConfig{
		Enabled: getEnvBool("HUBCAP_CATALOG_ENABLED", true),
		Path:    getEnv("HUBCAP_CATALOG_PATH", "/var/lib/hubcap/catalog.db"),
	}
}

// loadObservabilityConfig loads observability configuration from environment
func loadObservabilityConfig() ObservabilityConfig {
	return ObservabilityConfig{
		LogLevel:           getEnv("HUBCAP_LOG_LEVEL", "info"),
		MetricsEnabled:     getEnvBool("HUBCAP_METRICS_ENABLED", true),
		OTelEnabled:        getEnvBool("HUBCAP_OTEL_ENABLED", false),
		OTelEndpoint:       getEnv("HUBCAP_OTEL_ENDPOINT", "localhost:4317"),
		OTelServiceName:    getEnv("HUBCAP_OTEL_SERVICE_NAME", "hubcap"),
		OTelServiceVersion: getEnv("HUBCAP_OTEL_SERVICE_VERSION", "1.0.0"),
		OTelInsecure:       getEnvBool("HUBCAP_OTEL_INSECURE", true),
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}

	if len(c.Host.ExtensionDirs) == 0 {
		return fmt.Errorf("at least one extension directory is required")
	}
	if c.Host.WatchEnabled && c.Host.WatchDebounce <= 0 {
		return fmt.Errorf("watch debounce must be positive when watching is enabled")
	}
	if c.Host.ResolutionCacheSize < 1 {
		return fmt.Errorf("resolution cache size must be at least 1")
	}

	if c.Catalog.Enabled && c.Catalog.Path == "" {
		return fmt.Errorf("catalog path is required when the catalog is enabled")
	}

	if c.Observability.OTelEnabled {
		if c.Observability.OTelEndpoint == "" {
			return fmt.Errorf("OpenTelemetry endpoint is required when OTel is enabled")
		}
		if c.Observability.OTelServiceName == "" {
			return fmt.Errorf("OpenTelemetry service name is required when OTel is enabled")
		}
	}

	return nil
}

// getEnv returns an environment variable value or a default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool returns a boolean environment variable or a default
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return strings.ToLower(value) == "true" || value == "1"
	}
	return defaultValue
}

// getEnvInt returns an integer environment variable or a default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvDuration returns a duration environment variable or a default
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getEnvList returns a comma-separated environment variable as a list
func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	var result []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	if len(result) == 0 {
		return defaultValue
	}
	return result
}
