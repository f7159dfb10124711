package versions

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustRange(t *testing.T, spec string) Range {
	t.Helper()
	_, constraints, err := ParseSpec("pkg" + spec)
	require.NoError(t, err)
	r, err := FromConstraints(constraints)
	require.NoError(t, err)
	return r
}

func TestIntersect(t *testing.T) {
	tests := []struct {
		name    string
		a       string
		b       string
		want    string
		wantErr bool
	}{
		{
			name: "overlapping bounds",
			a:    ">=1.0",
			b:    "<2.0",
			want: ">=1.0,<2.0",
		},
		{
			name: "tighter lower wins",
			a:    ">=1.0",
			b:    ">=1.5",
			want: ">=1.5",
		},
		{
			name: "tighter upper wins",
			a:    "<=3.0",
			b:    "<2.5",
			want: "<2.5",
		},
		{
			name: "pin inside range",
			a:    ">=1.0,<2.0",
			b:    "==1.5",
			want: "==1.5",
		},
		{
			name: "identical pins",
			a:    "==6.2.4",
			b:    "==6.2.4",
			want: "==6.2.4",
		},
		{
			name: "exclusive beats inclusive at same version",
			a:    ">1.0",
			b:    ">=1.0",
			want: ">1.0",
		},
		{
			name: "exclusions carried through",
			a:    ">=1.0,!=1.5",
			b:    "<2.0",
			want: ">=1.0,<2.0,!=1.5",
		},
		{
			name: "exclusion outside bounds dropped",
			a:    "!=5.0",
			b:    "<2.0",
			want: "<2.0",
		},
		{
			name:    "disjoint pins",
			a:       "==1.0",
			b:       "==2.0",
			wantErr: true,
		},
		{
			name:    "disjoint bounds",
			a:       ">=2.0",
			b:       "<1.0",
			wantErr: true,
		},
		{
			name:    "touching exclusive bounds",
			a:       ">1.0",
			b:       "<=1.0",
			wantErr: true,
		},
		{
			name:    "pin equals exclusion",
			a:       "==1.5",
			b:       "!=1.5",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Intersect(mustRange(t, tt.a), mustRange(t, tt.b))
			if tt.wantErr {
				require.Error(t, err)
				var empty *EmptyRangeError
				assert.ErrorAs(t, err, &empty)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestIntersect_Commutative(t *testing.T) {
	a := mustRange(t, ">=1.0,!=1.2")
	b := mustRange(t, "<2.0")

	ab, err := Intersect(a, b)
	require.NoError(t, err)
	ba, err := Intersect(b, a)
	require.NoError(t, err)

	assert.Equal(t, ab.String(), ba.String())
}

func TestRange_Contains(t *testing.T) {
	r := mustRange(t, ">=1.0,<2.0,!=1.5")

	assert.True(t, r.Contains(MustParseVersion("1.0")))
	assert.True(t, r.Contains(MustParseVersion("1.9.9")))
	assert.False(t, r.Contains(MustParseVersion("2.0")))
	assert.False(t, r.Contains(MustParseVersion("0.9")))
	assert.False(t, r.Contains(MustParseVersion("1.5")))
}

func TestRange_Pinned(t *testing.T) {
	pin, ok := mustRange(t, "==6.2.4").Pinned()
	require.True(t, ok)
	assert.Equal(t, "6.2.4", pin.String())

	_, ok = mustRange(t, ">=6.2.4").Pinned()
	assert.False(t, ok)
}

func TestAnyRange(t *testing.T) {
	r := AnyRange()
	assert.Equal(t, "*", r.String())
	assert.True(t, r.Contains(MustParseVersion("0.0.1")))
	assert.True(t, r.Contains(MustParseVersion("999")))
}
