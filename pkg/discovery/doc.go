// Package discovery resolves an extension's source layout to the set of
// importable packages it provides.
//
// Discovery is an explicit, deterministic directory walk: it never imports
// or executes extension code, so results are testable from fixtures alone.
// The returned package list is sorted and excludes every declared subtree.
package discovery
