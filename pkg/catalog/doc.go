// Package catalog persists the host's extension load history to a local
// sqlite database: one event per load attempt with outcome, reason, and
// entry-point count. The HTTP API serves this history for operators
// debugging why an extension was skipped.
package catalog
