package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/platinummonkey/hubcap/pkg/depres"
	"github.com/platinummonkey/hubcap/pkg/descriptor"
	"github.com/platinummonkey/hubcap/pkg/discovery"
)

// hubcap-verify validates a single extension bundle the way the host would
// load it: descriptor validation, package discovery, and dependency
// resolution. It exits non-zero when the bundle would be skipped.
func main() {
	dir := flag.String("dir", ".", "Extension bundle directory to verify")
	extras := flag.String("extras", "", "Comma-separated extras to resolve in addition to the mandatory set")
	jsonOut := flag.Bool("json", false, "Print the verification report as JSON")
	flag.Parse()

	report, err := verify(*dir, splitExtras(*extras))
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	printReport(report)
}

type report struct {
	Extension   string              `json:"extension"`
	Version     string              `json:"version"`
	EntryPoints int                 `json:"entry_points"`
	Packages    []discovery.Package `json:"packages"`
	Environment *depres.Environment `json:"environment"`
}

func verify(dir string, extras []string) (*report, error) {
	d, err := descriptor.LoadFromDir(dir)
	if err != nil {
		return nil, err
	}

	if errs := descriptor.Validate(d); len(errs) > 0 {
		msgs := make([]string, 0, len(errs))
		for _, e := range errs {
			msgs = append(msgs, "  "+e.Error())
		}
		return nil, fmt.Errorf("invalid descriptor:\n%s", strings.Join(msgs, "\n"))
	}

	packages, err := discovery.ResolvePackages(filepath.Join(dir, d.Source.Root), d.Source.Namespace, d.Source.Exclude)
	if err != nil {
		return nil, err
	}

	env, err := depres.NewResolver(0).Resolve(d.Requires, d.Extras, extras)
	if err != nil {
		return nil, err
	}

	return &report{
		Extension:   d.Name,
		Version:     d.Version,
		EntryPoints: d.EntryPointCount(),
		Packages:    packages,
		Environment: env,
	}, nil
}

func printReport(r *report) {
	fmt.Printf("%s v%s: OK (%d entry points)\n", r.Extension, r.Version, r.EntryPoints)

	fmt.Println("\nPackages:")
	for _, pkg := range r.Packages {
		fmt.Printf("  %s\t%s\n", pkg.Name, pkg.Dir)
	}

	fmt.Println("\nEnvironment:")
	if len(r.Environment.Extras) > 0 {
		fmt.Printf("  (extras: %s)\n", strings.Join(r.Environment.Extras, ", "))
	}
	for _, req := range r.Environment.Requirements {
		spec := req.Spec
		if spec == "*" {
			spec = "any"
		}
		fmt.Printf("  %s %s\t(from %s)\n", req.Package, spec, strings.Join(req.Sources, ", "))
	}
}

func splitExtras(raw string) []string {
	if raw == "" {
		return nil
	}
	var result []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
