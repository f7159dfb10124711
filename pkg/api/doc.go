// Package api exposes the host's state over HTTP: loaded extensions with
// their discovered packages and resolved environments, the entry-point
// registry, the load-event history, and a reload trigger. The surface is
// read-only except for POST /reload.
package api
