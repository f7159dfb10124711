package discovery

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Package is one importable package found under a source root.
type Package struct {
	// Name is the dotted package name, e.g. "saltext.sap_nwabap".
	Name string `json:"name"`
	// Dir is the package directory on disk.
	Dir string `json:"dir"`
}

// DiscoveryError reports a failed package discovery. It is fatal for the
// extension being discovered only; the host continues with others.
type DiscoveryError struct {
	Root      string
	Namespace string
	Reason    string
	Err       error
}

func (e *DiscoveryError) Error() string {
	msg := fmt.Sprintf("package discovery failed for namespace %s under %s: %s", e.Namespace, e.Root, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *DiscoveryError) Unwrap() error {
	return e.Err
}

// ResolvePackages walks the source root and returns every importable package
// under the namespace prefix, excluding any path that falls under an
// excluded subtree. An excluded entry matches either a path relative to the
// root ("tests", "saltext/sap_nwabap/internal") or any single path segment.
//
// A directory counts as a package when it lies strictly below the namespace
// directory and directly contains at least one module file. The namespace
// directory itself is a namespace package shared across extensions and is
// never returned.
//
// The result is sorted by package name and stable across runs.
func ResolvePackages(root, namespace string, excluded []string) ([]Package, error) {
	if namespace == "" {
		return nil, &DiscoveryError{Root: root, Namespace: namespace, Reason: "namespace prefix is empty"}
	}

	info, err := os.Stat(root)
	if err != nil {
		return nil, &DiscoveryError{Root: root, Namespace: namespace, Reason: "source root does not exist", Err: err}
	}
	if !info.IsDir() {
		return nil, &DiscoveryError{Root: root, Namespace: namespace, Reason: "source root is not a directory"}
	}

	nsDir := filepath.Join(root, filepath.FromSlash(strings.ReplaceAll(namespace, ".", "/")))

	var packages []Package
	walkErr := filepath.WalkDir(nsDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == nsDir && os.IsNotExist(err) {
				// Missing namespace dir reads as "no packages", reported below.
				return filepath.SkipAll
			}
			return err
		}
		if !d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		if isExcluded(rel, excluded) {
			return filepath.SkipDir
		}
		if path == nsDir {
			return nil
		}

		ok, err := hasModuleFiles(path)
		if err != nil {
			return err
		}
		if ok {
			packages = append(packages, Package{
				Name: strings.ReplaceAll(rel, "/", "."),
				Dir:  path,
			})
		}
		return nil
	})
	if walkErr != nil {
		return nil, &DiscoveryError{Root: root, Namespace: namespace, Reason: "walk failed", Err: walkErr}
	}

	if len(packages) == 0 {
		return nil, &DiscoveryError{Root: root, Namespace: namespace, Reason: "no packages found under namespace"}
	}

	sort.Slice(packages, func(i, j int) bool {
		return packages[i].Name < packages[j].Name
	})
	return packages, nil
}

// hasModuleFiles reports whether dir directly contains at least one regular,
// non-hidden file.
func hasModuleFiles(dir string) (bool, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false, err
	}
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		return true, nil
	}
	return false, nil
}

func isExcluded(rel string, excluded []string) bool {
	segments := strings.Split(rel, "/")
	for _, raw := range excluded {
		e := strings.Trim(filepath.ToSlash(filepath.Clean(raw)), "/")
		if e == "" || e == "." {
			continue
		}
		if rel == e || strings.HasPrefix(rel, e+"/") {
			return true
		}
		if !strings.Contains(e, "/") {
			for _, seg := range segments {
				if seg == e {
					return true
				}
			}
		}
	}
	return false
}
