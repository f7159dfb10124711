package descriptor

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validDescriptor() *Descriptor {
	return &Descriptor{
		Name:        "saltext.sap_nwabap",
		Version:     "1.0.0",
		Author:      "SAP UCC Magdeburg",
		License:     "Apache-2.0",
		Description: "NetWeaver ABAP modules",
		Source: SourceLayout{
			Root:      "src",
			Namespace: "saltext",
			Exclude:   []string{"tests"},
		},
		EntryPoints: map[string]map[string]string{
			"loader": {
				"saltext.sap_nwabap": "saltext.sap_nwabap",
			},
		},
		Requires: []string{"requests>=2.0"},
		Extras: map[string][]string{
			"tests": {"pytest==6.2.4", "pytest-salt-factories==0.906.0"},
		},
		Build: BuildFlags{Universal: true, Owner: "root", Group: "root"},
	}
}

func TestLoadFromDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Save(validDescriptor(), filepath.Join(dir, Filename)))

	d, err := LoadFromDir(dir)
	require.NoError(t, err)

	assert.Equal(t, "saltext.sap_nwabap", d.Name)
	assert.Equal(t, "1.0.0", d.Version)
	assert.Equal(t, "src", d.Source.Root)
	assert.Equal(t, []string{"tests"}, d.Source.Exclude)
	assert.Equal(t, "saltext.sap_nwabap", d.EntryPoints["loader"]["saltext.sap_nwabap"])
	assert.Equal(t, []string{"pytest==6.2.4", "pytest-salt-factories==0.906.0"}, d.Extras["tests"])
	assert.True(t, d.Build.Universal)
	assert.Empty(t, Validate(d))
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := LoadFromDir(t.TempDir())
	assert.Error(t, err)
}

func TestLoad_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, Filename)
	require.NoError(t, os.WriteFile(path, []byte("name: [unclosed"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse descriptor")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Descriptor)
		wantField string
	}{
		{
			name:      "missing name",
			mutate:    func(d *Descriptor) { d.Name = "" },
			wantField: "name",
		},
		{
			name:      "uppercase name",
			mutate:    func(d *Descriptor) { d.Name = "Saltext.SAP" },
			wantField: "name",
		},
		{
			name:      "missing version",
			mutate:    func(d *Descriptor) { d.Version = "" },
			wantField: "version",
		},
		{
			name:      "bad version",
			mutate:    func(d *Descriptor) { d.Version = "one.two" },
			wantField: "version",
		},
		{
			name:      "missing source root",
			mutate:    func(d *Descriptor) { d.Source.Root = "" },
			wantField: "source.root",
		},
		{
			name:      "missing namespace",
			mutate:    func(d *Descriptor) { d.Source.Namespace = "" },
			wantField: "source.namespace",
		},
		{
			name:      "name outside namespace",
			mutate:    func(d *Descriptor) { d.Source.Namespace = "otherns" },
			wantField: "source.namespace",
		},
		{
			name:      "no entry points",
			mutate:    func(d *Descriptor) { d.EntryPoints = nil },
			wantField: "entry_points",
		},
		{
			name: "empty entry-point target",
			mutate: func(d *Descriptor) {
				d.EntryPoints["loader"]["saltext.sap_nwabap"] = ""
			},
			wantField: "entry_points.loader.saltext.sap_nwabap",
		},
		{
			name: "target outside namespace",
			mutate: func(d *Descriptor) {
				d.EntryPoints["loader"]["saltext.sap_nwabap"] = "other.module"
			},
			wantField: "entry_points.loader.saltext.sap_nwabap",
		},
		{
			name:      "unparseable requirement",
			mutate:    func(d *Descriptor) { d.Requires = []string{"requests>="} },
			wantField: "requires",
		},
		{
			name: "unparseable extra",
			mutate: func(d *Descriptor) {
				d.Extras["tests"] = []string{"==1.0"}
			},
			wantField: "extras.tests",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := validDescriptor()
			tt.mutate(d)

			errs := Validate(d)
			require.NotEmpty(t, errs)

			fields := make([]string, 0, len(errs))
			for _, e := range errs {
				fields = append(fields, e.Field)
			}
			assert.Contains(t, fields, tt.wantField)
		})
	}
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	d := validDescriptor()
	d.Name = ""
	d.Version = ""
	d.Source.Root = ""

	errs := Validate(d)
	assert.GreaterOrEqual(t, len(errs), 3)
}

func TestDescriptor_EntryPointCount(t *testing.T) {
	d := validDescriptor()
	assert.Equal(t, 1, d.EntryPointCount())

	d.EntryPoints["states"] = map[string]string{
		"saltext.sap_nwabap.states": "saltext.sap_nwabap.states",
	}
	assert.Equal(t, 2, d.EntryPointCount())
}
