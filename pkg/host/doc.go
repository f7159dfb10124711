// Package host implements the host side of the extension contract: scanning
// extension roots, evaluating each bundle's descriptor, and populating the
// entry-point registry.
//
// # Load pipeline
//
// Each extension bundle is loaded all-or-nothing: descriptor load and
// validation, package discovery, mandatory dependency resolution, then
// entry-point registration. Any failure rolls back entries already
// registered for that extension, is logged and recorded to the catalog, and
// the host continues with the remaining extensions. A failing extension
// never affects previously loaded ones.
//
// # Reload
//
// Reload clears the registry and re-runs the scan. The Watcher triggers
// debounced reloads from filesystem events on the extension roots and can
// additionally run rescans on a cron schedule.
package host
