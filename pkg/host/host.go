package host

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/platinummonkey/hubcap/pkg/catalog"
	"github.com/platinummonkey/hubcap/pkg/depres"
	"github.com/platinummonkey/hubcap/pkg/descriptor"
	"github.com/platinummonkey/hubcap/pkg/discovery"
	"github.com/platinummonkey/hubcap/pkg/observability"
	"github.com/platinummonkey/hubcap/pkg/registry"
)

// Failure reasons recorded in metrics and the load catalog.
const (
	ReasonDescriptor   = "descriptor"
	ReasonValidation   = "validation"
	ReasonDiscovery    = "discovery"
	ReasonNamespace    = "namespace"
	ReasonDependencies = "dependencies"
	ReasonConflict     = "conflict"

	reasonOK = "ok"
)

// Extension is a successfully loaded extension bundle.
type Extension struct {
	Descriptor  *descriptor.Descriptor `json:"descriptor"`
	Dir         string                 `json:"dir"`
	Packages    []discovery.Package    `json:"packages"`
	Environment *depres.Environment    `json:"environment"`
	LoadedAt    time.Time              `json:"loaded_at"`
}

// Options configures optional host collaborators. The catalog and metrics
// are nil-safe: a host without them simply skips recording.
type Options struct {
	Logger    *logrus.Logger
	Catalog   *catalog.Catalog
	Metrics   *observability.Metrics
	CacheSize int
}

// Host scans extension roots and maintains the entry-point registry.
type Host struct {
	roots    []string
	registry *registry.Registry
	resolver *depres.Resolver
	catalog  *catalog.Catalog
	metrics  *observability.Metrics
	log      *logrus.Logger
	tracer   trace.Tracer

	mu         sync.Mutex
	extensions map[string]*Extension
	lastHits   uint64
	lastMisses uint64
}

// New creates a host over the given extension roots.
func New(roots []string, opts Options) *Host {
	log := opts.Logger
	if log == nil {
		log = logrus.New()
	}

	return &Host{
		roots:      append([]string(nil), roots...),
		registry:   registry.New(),
		resolver:   depres.NewResolver(opts.CacheSize),
		catalog:    opts.Catalog,
		metrics:    opts.Metrics,
		log:        log,
		tracer:     otel.Tracer("github.com/platinummonkey/hubcap/pkg/host"),
		extensions: make(map[string]*Extension),
	}
}

// Roots returns the configured extension roots.
func (h *Host) Roots() []string {
	return append([]string(nil), h.roots...)
}

// Registry returns the host's entry-point registry.
func (h *Host) Registry() *registry.Registry {
	return h.registry
}

// Resolver returns the host's dependency resolver.
func (h *Host) Resolver() *depres.Resolver {
	return h.resolver
}

// Extensions returns the loaded extensions sorted by name.
func (h *Host) Extensions() []*Extension {
	h.mu.Lock()
	defer h.mu.Unlock()

	result := make([]*Extension, 0, len(h.extensions))
	for _, ext := range h.extensions {
		result = append(result, ext)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Descriptor.Name < result[j].Descriptor.Name
	})
	return result
}

// Get returns one loaded extension by name.
func (h *Host) Get(name string) (*Extension, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ext, ok := h.extensions[name]
	return ext, ok
}

// Environment resolves the dependency environment of a loaded extension with
// the requested extras enabled.
func (h *Host) Environment(name string, extras []string) (*depres.Environment, error) {
	ext, ok := h.Get(name)
	if !ok {
		return nil, fmt.Errorf("extension %s is not loaded", name)
	}
	return h.resolver.Resolve(ext.Descriptor.Requires, ext.Descriptor.Extras, extras)
}

// Scan walks every configured root and loads each extension bundle found.
// Individual extension failures are logged, counted, and recorded; they do
// not fail the scan.
func (h *Host) Scan(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.scanLocked(ctx)
}

// Reload clears the registry and rescans all roots from scratch.
func (h *Host) Reload(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.log.Info("Reloading extensions")
	h.registry.Clear()
	h.extensions = make(map[string]*Extension)
	return h.scanLocked(ctx)
}

func (h *Host) scanLocked(ctx context.Context) error {
	ctx, span := h.tracer.Start(ctx, "host.Scan")
	defer span.End()
	start := time.Now()

	candidates, err := h.listCandidates(ctx)
	if err != nil {
		return err
	}
	span.SetAttributes(attribute.Int("hubcap.candidates", len(candidates)))

	for _, dir := range candidates {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		h.loadAndRecord(ctx, dir)
	}

	h.syncMetricsLocked(time.Since(start))
	h.log.WithFields(logrus.Fields{
		"extensions":   len(h.extensions),
		"entry_points": h.registry.Count(),
		"duration":     time.Since(start),
	}).Info("Extension scan complete")
	return nil
}

// listCandidates collects bundle directories (those carrying a descriptor
// file) from every root concurrently. Missing roots are skipped.
func (h *Host) listCandidates(ctx context.Context) ([]string, error) {
	var mu sync.Mutex
	var candidates []string

	g, ctx := errgroup.WithContext(ctx)
	for _, root := range h.roots {
		root := root
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			entries, err := os.ReadDir(root)
			if err != nil {
				if os.IsNotExist(err) {
					h.log.WithField("root", root).Debug("Extension root does not exist, skipping")
					return nil
				}
				return fmt.Errorf("failed to read extension root %s: %w", root, err)
			}

			var found []string
			for _, entry := range entries {
				if !entry.IsDir() {
					continue
				}
				dir := filepath.Join(root, entry.Name())
				if _, err := os.Stat(filepath.Join(dir, descriptor.Filename)); err == nil {
					found = append(found, dir)
				}
			}

			mu.Lock()
			candidates = append(candidates, found...)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Strings(candidates)
	return candidates, nil
}

type loadFailure struct {
	extension string
	version   string
	reason    string
	err       error
}

// loadAndRecord runs the load pipeline for one bundle and records the
// outcome in metrics and the catalog.
func (h *Host) loadAndRecord(ctx context.Context, dir string) {
	ext, failure := h.loadExtension(ctx, dir)
	switch {
	case failure != nil:
		h.log.WithFields(logrus.Fields{
			"extension": failure.extension,
			"dir":       dir,
			"reason":    failure.reason,
		}).WithError(failure.err).Warn("Skipping extension")

		if h.metrics != nil {
			h.metrics.ExtensionLoadsTotal.WithLabelValues(catalog.StatusFailed, failure.reason).Inc()
		}
		h.record(ctx, catalog.Event{
			Extension: failure.extension,
			Version:   failure.version,
			Status:    catalog.StatusFailed,
			Reason:    failure.reason,
			Error:     failure.err.Error(),
		})

	case ext != nil:
		h.log.WithFields(logrus.Fields{
			"extension":    ext.Descriptor.Name,
			"version":      ext.Descriptor.Version,
			"packages":     len(ext.Packages),
			"entry_points": ext.Descriptor.EntryPointCount(),
		}).Info("Loaded extension")

		if h.metrics != nil {
			h.metrics.ExtensionLoadsTotal.WithLabelValues(catalog.StatusLoaded, reasonOK).Inc()
		}
		h.record(ctx, catalog.Event{
			Extension:   ext.Descriptor.Name,
			Version:     ext.Descriptor.Version,
			Status:      catalog.StatusLoaded,
			EntryPoints: ext.Descriptor.EntryPointCount(),
		})
	}
	// Both nil: bundle is already loaded and unchanged.
}

// loadExtension runs the all-or-nothing pipeline for one bundle directory.
// It returns (nil, nil) when the bundle is already loaded and unchanged.
func (h *Host) loadExtension(ctx context.Context, dir string) (*Extension, *loadFailure) {
	_, span := h.tracer.Start(ctx, "host.loadExtension",
		trace.WithAttributes(attribute.String("hubcap.dir", dir)))
	defer span.End()

	fallbackName := filepath.Base(dir)

	d, err := descriptor.LoadFromDir(dir)
	if err != nil {
		return nil, &loadFailure{extension: fallbackName, reason: ReasonDescriptor, err: err}
	}
	name := d.Name
	if name == "" {
		name = fallbackName
	}

	if errs := descriptor.Validate(d); len(errs) > 0 {
		msgs := make([]string, 0, len(errs))
		for _, e := range errs {
			msgs = append(msgs, e.Error())
		}
		return nil, &loadFailure{
			extension: name,
			version:   d.Version,
			reason:    ReasonValidation,
			err:       fmt.Errorf("invalid descriptor: %s", strings.Join(msgs, "; ")),
		}
	}

	if existing, ok := h.extensions[d.Name]; ok {
		if existing.Dir == dir && existing.Descriptor.Version == d.Version {
			h.log.WithField("extension", d.Name).Debug("Extension already loaded, unchanged")
			return nil, nil
		}
		return nil, &loadFailure{
			extension: d.Name,
			version:   d.Version,
			reason:    ReasonConflict,
			err:       fmt.Errorf("extension %s already loaded from %s", d.Name, existing.Dir),
		}
	}

	packages, err := discovery.ResolvePackages(filepath.Join(dir, d.Source.Root), d.Source.Namespace, d.Source.Exclude)
	if err != nil {
		return nil, &loadFailure{extension: d.Name, version: d.Version, reason: ReasonDiscovery, err: err}
	}

	// The importable root must match the declared name so registry entries
	// map back to import paths.
	if !providesPackage(packages, d.Name) {
		return nil, &loadFailure{
			extension: d.Name,
			version:   d.Version,
			reason:    ReasonNamespace,
			err:       fmt.Errorf("discovered packages do not include %s", d.Name),
		}
	}

	if err := targetsCovered(d, packages); err != nil {
		return nil, &loadFailure{extension: d.Name, version: d.Version, reason: ReasonNamespace, err: err}
	}

	// The mandatory set must resolve before anything is registered.
	env, err := h.resolver.Resolve(d.Requires, d.Extras, nil)
	if err != nil {
		return nil, &loadFailure{extension: d.Name, version: d.Version, reason: ReasonDependencies, err: err}
	}

	for _, group := range sortedKeys(d.EntryPoints) {
		entries := d.EntryPoints[group]
		for _, epName := range sortedKeys(entries) {
			if err := h.registry.Register(group, epName, entries[epName], d.Name); err != nil {
				h.registry.RemoveSource(d.Name)
				return nil, &loadFailure{extension: d.Name, version: d.Version, reason: ReasonConflict, err: err}
			}
		}
	}

	ext := &Extension{
		Descriptor:  d,
		Dir:         dir,
		Packages:    packages,
		Environment: env,
		LoadedAt:    time.Now().UTC(),
	}
	h.extensions[d.Name] = ext
	return ext, nil
}

func (h *Host) record(ctx context.Context, event catalog.Event) {
	if h.catalog == nil {
		return
	}
	if _, err := h.catalog.Record(ctx, event); err != nil {
		h.log.WithError(err).Warn("Failed to record load event")
	}
}

// syncMetricsLocked republishes gauge state and folds resolver cache deltas
// into the cumulative counters.
func (h *Host) syncMetricsLocked(scanDuration time.Duration) {
	if h.metrics == nil {
		return
	}

	h.metrics.ScanDuration.Observe(scanDuration.Seconds())
	h.metrics.ExtensionsLoaded.Set(float64(len(h.extensions)))

	h.metrics.EntryPointsRegistered.Reset()
	for group, entries := range h.registry.Snapshot() {
		h.metrics.EntryPointsRegistered.WithLabelValues(group).Set(float64(len(entries)))
	}

	hits, misses := h.resolver.CacheStats()
	h.metrics.ResolutionCacheHits.Add(float64(hits - h.lastHits))
	h.metrics.ResolutionCacheMisses.Add(float64(misses - h.lastMisses))
	h.lastHits, h.lastMisses = hits, misses
}

// providesPackage reports whether the discovered set contains the dotted
// package name.
func providesPackage(packages []discovery.Package, name string) bool {
	for _, pkg := range packages {
		if pkg.Name == name {
			return true
		}
	}
	return false
}

// targetsCovered checks that every entry-point target lives inside one of
// the discovered packages.
func targetsCovered(d *descriptor.Descriptor, packages []discovery.Package) error {
	for group, entries := range d.EntryPoints {
		for name, target := range entries {
			covered := false
			for _, pkg := range packages {
				if target == pkg.Name || strings.HasPrefix(target, pkg.Name+".") {
					covered = true
					break
				}
			}
			if !covered {
				return fmt.Errorf("entry point %s.%s targets %s, which is not provided by any discovered package", group, name, target)
			}
		}
	}
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
