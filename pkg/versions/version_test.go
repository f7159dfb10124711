package versions

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseVersion(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "simple", input: "1.2.3", want: "1.2.3"},
		{name: "leading v", input: "v2.0.1", want: "v2.0.1"},
		{name: "two segments", input: "2.0", want: "2.0"},
		{name: "single segment", input: "5", want: "5"},
		{name: "long pin", input: "0.906.0", want: "0.906.0"},
		{name: "surrounding whitespace", input: "  1.0  ", want: "1.0"},
		{name: "empty", input: "", wantErr: true},
		{name: "non-numeric", input: "abc", wantErr: true},
		{name: "trailing dot", input: "1.2.", wantErr: true},
		{name: "pre-release suffix", input: "1.0.0-rc1", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := ParseVersion(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, v.String())
		})
	}
}

func TestVersion_Compare(t *testing.T) {
	tests := []struct {
		a    string
		b    string
		want int
	}{
		{"1.0.0", "1.0.0", 0},
		{"1.0", "1.0.0", 0},
		{"v1.2", "1.2", 0},
		{"1.0.1", "1.0.0", 1},
		{"1.0.0", "1.0.1", -1},
		{"2.0", "1.99.99", 1},
		{"0.906.0", "0.9.0", 1},
		{"1.10", "1.9", 1},
	}

	for _, tt := range tests {
		t.Run(tt.a+" vs "+tt.b, func(t *testing.T) {
			a := MustParseVersion(tt.a)
			b := MustParseVersion(tt.b)
			assert.Equal(t, tt.want, a.Compare(b))
			assert.Equal(t, -tt.want, b.Compare(a))
		})
	}
}

func TestVersion_IsZero(t *testing.T) {
	var zero Version
	assert.True(t, zero.IsZero())
	assert.False(t, MustParseVersion("0").IsZero())
}
