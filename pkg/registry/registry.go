package registry

import (
	"fmt"
	"sort"
	"sync"
)

// Entry is one registered entry point.
type Entry struct {
	// Group is the host's plugin-discovery category, e.g. "loader".
	Group string `json:"group"`
	// Name is the entry-point name, unique within its group.
	Name string `json:"name"`
	// Target is the dotted module the entry resolves to.
	Target string `json:"target"`
	// Source is the extension that contributed the entry.
	Source string `json:"source"`
}

// RegistrationConflict reports a duplicate entry-point name within a group.
// The earlier registration stays active; the conflict is fatal only for the
// extension attempting the later one.
type RegistrationConflict struct {
	Group    string
	Name     string
	Existing Entry
	Attempt  Entry
}

func (e *RegistrationConflict) Error() string {
	return fmt.Sprintf("entry point %q already registered in group %q by %s (target %s), refused for %s (target %s)",
		e.Name, e.Group, e.Existing.Source, e.Existing.Target, e.Attempt.Source, e.Attempt.Target)
}

// Registry is the in-memory entry-point table.
type Registry struct {
	mu     sync.RWMutex
	groups map[string]map[string]Entry
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		groups: make(map[string]map[string]Entry),
	}
}

// Register binds (group, name) to a target module on behalf of source.
// Registering an identical entry again is idempotent; a different target or
// source for an existing name returns a *RegistrationConflict.
func (r *Registry) Register(group, name, target, source string) error {
	if group == "" || name == "" || target == "" {
		return fmt.Errorf("group, name, and target are all required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	entries, ok := r.groups[group]
	if !ok {
		entries = make(map[string]Entry)
		r.groups[group] = entries
	}

	attempt := Entry{Group: group, Name: name, Target: target, Source: source}
	if existing, ok := entries[name]; ok {
		if existing == attempt {
			return nil
		}
		return &RegistrationConflict{Group: group, Name: name, Existing: existing, Attempt: attempt}
	}

	entries[name] = attempt
	return nil
}

// Lookup returns the entry bound to (group, name).
func (r *Registry) Lookup(group, name string) (Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.groups[group][name]
	return entry, ok
}

// Groups returns the sorted list of groups with at least one entry.
func (r *Registry) Groups() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	groups := make([]string, 0, len(r.groups))
	for group, entries := range r.groups {
		if len(entries) > 0 {
			groups = append(groups, group)
		}
	}
	sort.Strings(groups)
	return groups
}

// Entries returns the entries of one group, sorted by name.
func (r *Registry) Entries(group string) []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return sortedEntries(r.groups[group])
}

// Snapshot returns the full table, sorted, safe for the caller to keep.
func (r *Registry) Snapshot() map[string][]Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	snapshot := make(map[string][]Entry, len(r.groups))
	for group, entries := range r.groups {
		if len(entries) > 0 {
			snapshot[group] = sortedEntries(entries)
		}
	}
	return snapshot
}

// RemoveSource drops every entry contributed by one extension and returns
// how many were removed. Used to roll back a partially registered extension.
func (r *Registry) RemoveSource(source string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for group, entries := range r.groups {
		for name, entry := range entries {
			if entry.Source == source {
				delete(entries, name)
				removed++
			}
		}
		if len(entries) == 0 {
			delete(r.groups, group)
		}
	}
	return removed
}

// Count returns the total number of registered entries.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for _, entries := range r.groups {
		n += len(entries)
	}
	return n
}

// Clear removes all entries.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.groups = make(map[string]map[string]Entry)
}

func sortedEntries(entries map[string]Entry) []Entry {
	result := make([]Entry, 0, len(entries))
	for _, entry := range entries {
		result = append(result, entry)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})
	return result
}
