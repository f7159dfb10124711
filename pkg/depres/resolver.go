package depres

import (
	"fmt"
	"sort"
	"strings"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/platinummonkey/hubcap/pkg/versions"
)

// MandatorySource labels requirements coming from the mandatory set in a
// requirement's source list; extras appear as "extras:<name>".
const MandatorySource = "requires"

const defaultCacheSize = 128

// Requirement is one package in a resolved environment with its merged
// constraint range.
type Requirement struct {
	Package string   `json:"package"`
	Spec    string   `json:"spec"`
	Sources []string `json:"sources"`

	Range versions.Range `json:"-"`
}

// Environment is the deterministic result of resolving a dependency request.
// Requirements are sorted by package name; cached environments are shared,
// so callers must treat them as read-only.
type Environment struct {
	Requirements []Requirement `json:"requirements"`
	Extras       []string      `json:"extras,omitempty"`
}

// Packages returns the sorted package names in the environment.
func (e *Environment) Packages() []string {
	names := make([]string, 0, len(e.Requirements))
	for _, req := range e.Requirements {
		names = append(names, req.Package)
	}
	return names
}

// Lookup returns the requirement for one package.
func (e *Environment) Lookup(pkg string) (Requirement, bool) {
	for _, req := range e.Requirements {
		if req.Package == pkg {
			return req, true
		}
	}
	return Requirement{}, false
}

// UnsatisfiableConstraintError reports that two constraints on the same
// package cannot be intersected into a non-empty range.
type UnsatisfiableConstraintError struct {
	Package string
	Err     error
}

func (e *UnsatisfiableConstraintError) Error() string {
	return fmt.Sprintf("unsatisfiable constraints for package %s: %v", e.Package, e.Err)
}

func (e *UnsatisfiableConstraintError) Unwrap() error {
	return e.Err
}

// UnknownExtraError reports a requested extra the descriptor never declared.
type UnknownExtraError struct {
	Extra string
	Known []string
}

func (e *UnknownExtraError) Error() string {
	return fmt.Sprintf("unknown extra %q (declared extras: %s)", e.Extra, strings.Join(e.Known, ", "))
}

// Resolver resolves dependency requests with an LRU cache of prior results.
// Safe for concurrent use.
type Resolver struct {
	cache  *lru.Cache[string, *Environment]
	hits   atomic.Uint64
	misses atomic.Uint64
}

// NewResolver creates a resolver with the given cache size; sizes below one
// fall back to the default.
func NewResolver(cacheSize int) *Resolver {
	if cacheSize < 1 {
		cacheSize = defaultCacheSize
	}
	// Only errors on a non-positive size, which is guarded above.
	cache, _ := lru.New[string, *Environment](cacheSize)
	return &Resolver{cache: cache}
}

// Resolve merges the mandatory set with the requested extras. With no
// requested extras the result is exactly the mandatory set.
func (r *Resolver) Resolve(requires []string, extras map[string][]string, requested []string) (*Environment, error) {
	key := fingerprint(requires, extras, requested)
	if env, ok := r.cache.Get(key); ok {
		r.hits.Add(1)
		return env, nil
	}
	r.misses.Add(1)

	env, err := resolve(requires, extras, requested)
	if err != nil {
		return nil, err
	}

	r.cache.Add(key, env)
	return env, nil
}

// CacheStats returns cumulative cache hit and miss counts.
func (r *Resolver) CacheStats() (hits, misses uint64) {
	return r.hits.Load(), r.misses.Load()
}

// resolve is the pure resolution function behind the cache.
func resolve(requires []string, extras map[string][]string, requested []string) (*Environment, error) {
	requestedExtras, err := normalizeRequested(extras, requested)
	if err != nil {
		return nil, err
	}

	merged := make(map[string]*Requirement)
	order := make([]string, 0)

	addSet := func(source string, specs []string) error {
		for _, spec := range specs {
			pkg, constraints, err := versions.ParseSpec(spec)
			if err != nil {
				return err
			}
			rng, err := versions.FromConstraints(constraints)
			if err != nil {
				return &UnsatisfiableConstraintError{Package: pkg, Err: err}
			}

			existing, ok := merged[pkg]
			if !ok {
				merged[pkg] = &Requirement{
					Package: pkg,
					Sources: []string{source},
					Range:   rng,
				}
				order = append(order, pkg)
				continue
			}

			intersection, err := versions.Intersect(existing.Range, rng)
			if err != nil {
				return &UnsatisfiableConstraintError{Package: pkg, Err: err}
			}
			existing.Range = intersection
			if existing.Sources[len(existing.Sources)-1] != source {
				existing.Sources = append(existing.Sources, source)
			}
		}
		return nil
	}

	if err := addSet(MandatorySource, requires); err != nil {
		return nil, err
	}
	for _, extra := range requestedExtras {
		if err := addSet("extras:"+extra, extras[extra]); err != nil {
			return nil, err
		}
	}

	sort.Strings(order)
	env := &Environment{Extras: requestedExtras}
	for _, pkg := range order {
		req := merged[pkg]
		req.Spec = req.Range.String()
		env.Requirements = append(env.Requirements, *req)
	}
	return env, nil
}

// normalizeRequested deduplicates and sorts the requested extras and rejects
// any the descriptor does not declare.
func normalizeRequested(extras map[string][]string, requested []string) ([]string, error) {
	if len(requested) == 0 {
		return nil, nil
	}

	known := make([]string, 0, len(extras))
	for name := range extras {
		known = append(known, name)
	}
	sort.Strings(known)

	seen := make(map[string]bool)
	result := make([]string, 0, len(requested))
	for _, extra := range requested {
		if seen[extra] {
			continue
		}
		seen[extra] = true
		if _, ok := extras[extra]; !ok {
			return nil, &UnknownExtraError{Extra: extra, Known: known}
		}
		result = append(result, extra)
	}
	sort.Strings(result)
	return result, nil
}

// fingerprint builds the canonical cache key for a resolution request.
// Requested extras are order-insensitive; declared sets are not reordered
// because their contents, not their order, define the result. Every element
// is length-prefixed so no two distinct requests share a key.
func fingerprint(requires []string, extras map[string][]string, requested []string) string {
	var b strings.Builder

	b.WriteString("requires:")
	writeElems(&b, requires)

	names := make([]string, 0, len(extras))
	for name := range extras {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		b.WriteString(";extra:")
		writeElems(&b, []string{name})
		b.WriteString("=")
		writeElems(&b, extras[name])
	}

	sorted := append([]string(nil), requested...)
	sort.Strings(sorted)
	b.WriteString(";requested:")
	writeElems(&b, sorted)

	return b.String()
}

func writeElems(b *strings.Builder, elems []string) {
	for _, e := range elems {
		fmt.Fprintf(b, "%d:%s,", len(e), e)
	}
}
