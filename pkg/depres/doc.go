// Package depres resolves an extension's declared dependency sets into a
// single deterministic environment.
//
// # Overview
//
// Resolution merges the mandatory set with zero or more requested extras,
// deduplicates by package name, and intersects version constraints when the
// same package appears in multiple sets. Conflicting constraints surface as
// UnsatisfiableConstraintError before any module of the extension is
// registered.
//
// Resolution is a pure function of its inputs: identical inputs always yield
// an identical environment, which makes results safe to cache. The Resolver
// keeps an LRU of recent resolutions keyed by a canonical fingerprint of the
// request.
package depres
