// Package descriptor defines the extension descriptor: the static
// declaration an extension bundle ships as extension.yaml.
//
// # Overview
//
// A descriptor declares package identity (name, version, author, license),
// the source layout (root directory, namespace prefix, excluded subtrees),
// entry-point registrations (group, name, target module), mandatory
// dependencies plus named optional extras, and packaging-only build flags.
//
// The descriptor is read-only configuration: the host evaluates it once at
// startup (or on explicit reload) and never mutates it.
//
// # Usage Example
//
//	d, err := descriptor.LoadFromDir("/srv/extensions/sap-nwabap")
//	if err != nil {
//		log.Fatal(err)
//	}
//	if errs := descriptor.Validate(d); len(errs) > 0 {
//		log.Fatalf("invalid descriptor: %v", errs)
//	}
//
// # Related Packages
//
//   - pkg/discovery: resolves the declared source layout to packages
//   - pkg/registry: holds the declared entry points at runtime
//   - pkg/depres: resolves the declared dependency sets
package descriptor
