// Package registry holds the host's entry-point table: the process-wide
// mapping from (group, name) to a target module, attributed to the extension
// that registered it.
//
// The table is populated once at host startup and only ever mutated through
// Register, RemoveSource, and Clear. Re-registering an identical entry is a
// no-op; binding an existing (group, name) to a different target or source
// is a RegistrationConflict, fatal for the registering extension only.
package registry
