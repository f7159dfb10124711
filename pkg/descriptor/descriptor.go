package descriptor

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/platinummonkey/hubcap/pkg/versions"
)

// Filename is the descriptor file looked up inside an extension bundle.
const Filename = "extension.yaml"

var (
	nameRegex    = regexp.MustCompile(`^[a-z][a-z0-9_]*(\.[a-z][a-z0-9_]*)*$`)
	versionRegex = regexp.MustCompile(`^v?\d+(\.\d+)*$`)
)

// Load loads and parses an extension descriptor from a file.
func Load(path string) (*Descriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read descriptor: %w", err)
	}

	var d Descriptor
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("failed to parse descriptor: %w", err)
	}

	return &d, nil
}

// LoadFromDir loads a descriptor from an extension bundle directory.
func LoadFromDir(dir string) (*Descriptor, error) {
	return Load(filepath.Join(dir, Filename))
}

// Save writes a descriptor to a file.
func Save(d *Descriptor, path string) error {
	data, err := yaml.Marshal(d)
	if err != nil {
		return fmt.Errorf("failed to marshal descriptor: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write descriptor: %w", err)
	}

	return nil
}

// Validate performs field-level validation on a descriptor. It returns every
// problem found rather than stopping at the first.
func Validate(d *Descriptor) []ValidationError {
	var errors []ValidationError

	if d.Name == "" {
		errors = append(errors, ValidationError{
			Field:   "name",
			Message: "extension name is required",
		})
	} else if !nameRegex.MatchString(d.Name) {
		errors = append(errors, ValidationError{
			Field:   "name",
			Message: fmt.Sprintf("invalid extension name: %s (must be a dotted lowercase identifier)", d.Name),
		})
	}

	if d.Version == "" {
		errors = append(errors, ValidationError{
			Field:   "version",
			Message: "version is required",
		})
	} else if !versionRegex.MatchString(d.Version) {
		errors = append(errors, ValidationError{
			Field:   "version",
			Message: fmt.Sprintf("invalid version format: %s", d.Version),
		})
	}

	if d.Source.Root == "" {
		errors = append(errors, ValidationError{
			Field:   "source.root",
			Message: "source root is required",
		})
	}

	if d.Source.Namespace == "" {
		errors = append(errors, ValidationError{
			Field:   "source.namespace",
			Message: "source namespace is required",
		})
	} else if d.Name != "" && !underNamespace(d.Name, d.Source.Namespace) {
		// The importable root must match the declared package name, so the
		// host can map registry entries to import paths.
		errors = append(errors, ValidationError{
			Field:   "source.namespace",
			Message: fmt.Sprintf("extension name %s is not under namespace %s", d.Name, d.Source.Namespace),
		})
	}

	if len(d.EntryPoints) == 0 {
		errors = append(errors, ValidationError{
			Field:   "entry_points",
			Message: "at least one entry point is required",
		})
	}
	for group, entries := range d.EntryPoints {
		if group == "" {
			errors = append(errors, ValidationError{
				Field:   "entry_points",
				Message: "entry-point group name must not be empty",
			})
		}
		for name, target := range entries {
			if name == "" {
				errors = append(errors, ValidationError{
					Field:   fmt.Sprintf("entry_points.%s", group),
					Message: "entry-point name must not be empty",
				})
				continue
			}
			if target == "" {
				errors = append(errors, ValidationError{
					Field:   fmt.Sprintf("entry_points.%s.%s", group, name),
					Message: "entry-point target module must not be empty",
				})
				continue
			}
			if d.Source.Namespace != "" && !underNamespace(target, d.Source.Namespace) {
				errors = append(errors, ValidationError{
					Field:   fmt.Sprintf("entry_points.%s.%s", group, name),
					Message: fmt.Sprintf("target %s is outside namespace %s", target, d.Source.Namespace),
				})
			}
		}
	}

	errors = append(errors, validateSpecs("requires", d.Requires)...)
	for extra, specs := range d.Extras {
		if extra == "" {
			errors = append(errors, ValidationError{
				Field:   "extras",
				Message: "extra name must not be empty",
			})
			continue
		}
		errors = append(errors, validateSpecs(fmt.Sprintf("extras.%s", extra), specs)...)
	}

	return errors
}

func validateSpecs(field string, specs []string) []ValidationError {
	var errors []ValidationError
	for _, spec := range specs {
		if _, _, err := versions.ParseSpec(spec); err != nil {
			errors = append(errors, ValidationError{
				Field:   field,
				Message: err.Error(),
			})
		}
	}
	return errors
}

// underNamespace reports whether the dotted module name equals the namespace
// or lives beneath it.
func underNamespace(module, namespace string) bool {
	return module == namespace || strings.HasPrefix(module, namespace+".")
}
