package registry

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_Register(t *testing.T) {
	r := New()

	err := r.Register("loader", "saltext.sap_nwabap", "saltext.sap_nwabap", "saltext.sap_nwabap")
	require.NoError(t, err)
	assert.Equal(t, 1, r.Count())

	entry, ok := r.Lookup("loader", "saltext.sap_nwabap")
	require.True(t, ok)
	assert.Equal(t, "saltext.sap_nwabap", entry.Target)
	assert.Equal(t, "saltext.sap_nwabap", entry.Source)
}

func TestRegistry_Register_MissingFields(t *testing.T) {
	r := New()

	assert.Error(t, r.Register("", "name", "target", "src"))
	assert.Error(t, r.Register("loader", "", "target", "src"))
	assert.Error(t, r.Register("loader", "name", "", "src"))
	assert.Equal(t, 0, r.Count())
}

func TestRegistry_Register_Idempotent(t *testing.T) {
	r := New()

	require.NoError(t, r.Register("loader", "saltext.sap", "saltext.sap", "saltext.sap"))
	// Identical re-registration (e.g. a rescan) is a no-op, not an error.
	require.NoError(t, r.Register("loader", "saltext.sap", "saltext.sap", "saltext.sap"))
	assert.Equal(t, 1, r.Count())
}

func TestRegistry_Register_Conflict(t *testing.T) {
	r := New()

	require.NoError(t, r.Register("loader", "saltext.sap", "saltext.sap", "ext-one"))

	// Same name, different target module: the second registration fails and
	// the first stays active.
	err := r.Register("loader", "saltext.sap", "saltext.sap_other", "ext-two")
	var conflict *RegistrationConflict
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "loader", conflict.Group)
	assert.Equal(t, "saltext.sap", conflict.Name)
	assert.Equal(t, "ext-one", conflict.Existing.Source)
	assert.Equal(t, "ext-two", conflict.Attempt.Source)

	entry, ok := r.Lookup("loader", "saltext.sap")
	require.True(t, ok)
	assert.Equal(t, "saltext.sap", entry.Target)
	assert.Equal(t, "ext-one", entry.Source)
}

func TestRegistry_Register_SameTargetDifferentSource(t *testing.T) {
	r := New()

	require.NoError(t, r.Register("loader", "saltext.sap", "saltext.sap", "ext-one"))

	// Entries are attributed to their source for rollback, so even an
	// identical target from another extension conflicts.
	err := r.Register("loader", "saltext.sap", "saltext.sap", "ext-two")
	var conflict *RegistrationConflict
	require.ErrorAs(t, err, &conflict)
}

func TestRegistry_SameNameDifferentGroups(t *testing.T) {
	r := New()

	require.NoError(t, r.Register("loader", "saltext.sap", "saltext.sap", "ext"))
	require.NoError(t, r.Register("states", "saltext.sap", "saltext.sap.states", "ext"))

	assert.Equal(t, 2, r.Count())
	assert.Equal(t, []string{"loader", "states"}, r.Groups())
}

func TestRegistry_Entries_Sorted(t *testing.T) {
	r := New()

	require.NoError(t, r.Register("loader", "zeta", "ns.zeta", "ns.zeta"))
	require.NoError(t, r.Register("loader", "alpha", "ns.alpha", "ns.alpha"))
	require.NoError(t, r.Register("loader", "mid", "ns.mid", "ns.mid"))

	entries := r.Entries("loader")
	require.Len(t, entries, 3)
	assert.Equal(t, "alpha", entries[0].Name)
	assert.Equal(t, "mid", entries[1].Name)
	assert.Equal(t, "zeta", entries[2].Name)

	assert.Empty(t, r.Entries("unknown-group"))
}

func TestRegistry_RemoveSource(t *testing.T) {
	r := New()

	require.NoError(t, r.Register("loader", "a", "ext1.a", "ext1"))
	require.NoError(t, r.Register("states", "a", "ext1.states", "ext1"))
	require.NoError(t, r.Register("loader", "b", "ext2.b", "ext2"))

	removed := r.RemoveSource("ext1")
	assert.Equal(t, 2, removed)
	assert.Equal(t, 1, r.Count())

	_, ok := r.Lookup("loader", "a")
	assert.False(t, ok)
	_, ok = r.Lookup("loader", "b")
	assert.True(t, ok)

	// Emptied groups disappear from the group list.
	assert.Equal(t, []string{"loader"}, r.Groups())

	assert.Equal(t, 0, r.RemoveSource("ext1"))
}

func TestRegistry_Snapshot(t *testing.T) {
	r := New()

	require.NoError(t, r.Register("loader", "a", "ext.a", "ext"))
	require.NoError(t, r.Register("loader", "b", "ext.b", "ext"))

	snapshot := r.Snapshot()
	require.Len(t, snapshot["loader"], 2)

	// Mutating the snapshot must not affect the registry.
	snapshot["loader"][0].Target = "tampered"
	entry, ok := r.Lookup("loader", "a")
	require.True(t, ok)
	assert.Equal(t, "ext.a", entry.Target)
}

func TestRegistry_Clear(t *testing.T) {
	r := New()

	require.NoError(t, r.Register("loader", "a", "ext.a", "ext"))
	require.NoError(t, r.Register("loader", "b", "ext.b", "ext"))
	assert.Equal(t, 2, r.Count())

	r.Clear()
	assert.Equal(t, 0, r.Count())
	assert.Empty(t, r.Groups())
}

func TestRegistry_ConcurrentAccess(t *testing.T) {
	r := New()
	var wg sync.WaitGroup

	numGoroutines := 10
	numOperations := 100

	wg.Add(numGoroutines)
	for i := 0; i < numGoroutines; i++ {
		go func(id int) {
			defer wg.Done()
			for j := 0; j < numOperations; j++ {
				name := fmt.Sprintf("entry-%d-%d", id, j)
				_ = r.Register("loader", name, "ns."+name, fmt.Sprintf("ext-%d", id))
			}
		}(i)
	}

	wg.Add(numGoroutines)
	for i := 0; i < numGoroutines; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < numOperations; j++ {
				_ = r.Count()
				_ = r.Groups()
				_, _ = r.Lookup("loader", "entry-0-0")
			}
		}()
	}

	wg.Wait()

	assert.Equal(t, numGoroutines*numOperations, r.Count())
}

func TestRegistry_ConcurrentRegisterAndRemove(t *testing.T) {
	r := New()

	for i := 0; i < 50; i++ {
		require.NoError(t, r.Register("loader", fmt.Sprintf("entry-%d", i), "ns.mod", fmt.Sprintf("ext-%d", i%5)))
	}

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		for i := 0; i < 5; i++ {
			_ = r.RemoveSource(fmt.Sprintf("ext-%d", i))
		}
	}()

	go func() {
		defer wg.Done()
		for i := 50; i < 100; i++ {
			_ = r.Register("loader", fmt.Sprintf("entry-%d", i), "ns.mod", "ext-new")
		}
	}()

	wg.Wait()

	// Registry stays internally consistent after concurrent mutation.
	total := 0
	for _, group := range r.Groups() {
		total += len(r.Entries(group))
	}
	assert.Equal(t, r.Count(), total)
}
