// Package config provides application configuration management from environment variables.
//
// # Overview
//
// This package loads and validates configuration from environment variables with
// sensible defaults: HTTP server settings, extension-loading behavior (scan
// roots, watch mode, rescan schedule), the load-history catalog, and
// observability toggles. All variables are prefixed HUBCAP_.
package config
