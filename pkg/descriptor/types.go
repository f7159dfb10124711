package descriptor

import "fmt"

// Descriptor is the parsed extension.yaml of one extension bundle.
type Descriptor struct {
	// Identity. Name is the dotted namespace of the extension's top-level
	// package and must be unique across the host's registry.
	Name        string `yaml:"name" json:"name"`
	Version     string `yaml:"version" json:"version"`
	Author      string `yaml:"author,omitempty" json:"author,omitempty"`
	License     string `yaml:"license,omitempty" json:"license,omitempty"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`

	Source SourceLayout `yaml:"source" json:"source"`

	// EntryPoints maps registry group -> entry-point name -> target module.
	EntryPoints map[string]map[string]string `yaml:"entry_points" json:"entry_points"`

	// Requires is the mandatory dependency set, one constraint string per
	// entry ("package[op]version").
	Requires []string `yaml:"requires,omitempty" json:"requires,omitempty"`

	// Extras are named optional dependency sets installable on demand.
	Extras map[string][]string `yaml:"extras,omitempty" json:"extras,omitempty"`

	Build BuildFlags `yaml:"build,omitempty" json:"build,omitempty"`
}

// SourceLayout declares where the extension's packages live.
type SourceLayout struct {
	// Root is the source root directory, relative to the bundle directory.
	Root string `yaml:"root" json:"root"`
	// Namespace is the shared dotted prefix all packages live under.
	Namespace string `yaml:"namespace" json:"namespace"`
	// Exclude lists subtrees (relative to Root) that never contribute
	// packages, e.g. "tests".
	Exclude []string `yaml:"exclude,omitempty" json:"exclude,omitempty"`
}

// BuildFlags are packaging-only attributes with no runtime effect.
type BuildFlags struct {
	// Universal marks a pure, architecture-independent build.
	Universal bool `yaml:"universal,omitempty" json:"universal,omitempty"`
	// Owner and Group set archive file ownership for source distributions.
	Owner string `yaml:"owner,omitempty" json:"owner,omitempty"`
	Group string `yaml:"group,omitempty" json:"group,omitempty"`
}

// ValidationError describes a single invalid descriptor field.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// EntryPointCount returns the total number of declared entry points across
// all groups.
func (d *Descriptor) EntryPointCount() int {
	n := 0
	for _, entries := range d.EntryPoints {
		n += len(entries)
	}
	return n
}
