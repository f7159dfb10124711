package versions

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var versionRegex = regexp.MustCompile(`^v?\d+(\.\d+)*$`)

// Version is a parsed dotted numeric version.
type Version struct {
	segments []int
	raw      string
}

// ParseVersion parses a dotted numeric version string. A leading "v" is
// tolerated, as are uneven segment counts ("1.2" compares equal to "1.2.0").
func ParseVersion(s string) (Version, error) {
	trimmed := strings.TrimSpace(s)
	if !versionRegex.MatchString(trimmed) {
		return Version{}, fmt.Errorf("invalid version %q", s)
	}

	parts := strings.Split(strings.TrimPrefix(trimmed, "v"), ".")
	segments := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return Version{}, fmt.Errorf("invalid version %q: %w", s, err)
		}
		segments[i] = n
	}

	return Version{segments: segments, raw: trimmed}, nil
}

// MustParseVersion parses a version and panics on failure. For tests and
// compile-time constants only.
func MustParseVersion(s string) Version {
	v, err := ParseVersion(s)
	if err != nil {
		panic(err)
	}
	return v
}

// Compare returns -1, 0, or 1 comparing v against o. Missing trailing
// segments are treated as zero.
func (v Version) Compare(o Version) int {
	maxLen := len(v.segments)
	if len(o.segments) > maxLen {
		maxLen = len(o.segments)
	}

	for i := 0; i < maxLen; i++ {
		a, b := 0, 0
		if i < len(v.segments) {
			a = v.segments[i]
		}
		if i < len(o.segments) {
			b = o.segments[i]
		}
		if a < b {
			return -1
		}
		if a > b {
			return 1
		}
	}
	return 0
}

// Equal reports whether v and o denote the same version.
func (v Version) Equal(o Version) bool {
	return v.Compare(o) == 0
}

// IsZero reports whether v is the zero Version (unparsed).
func (v Version) IsZero() bool {
	return v.segments == nil
}

func (v Version) String() string {
	return v.raw
}
