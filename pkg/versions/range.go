package versions

import (
	"fmt"
	"sort"
	"strings"
)

// EmptyRangeError reports that two constraints intersect to an empty range.
type EmptyRangeError struct {
	A string
	B string
}

func (e *EmptyRangeError) Error() string {
	return fmt.Sprintf("constraints %s and %s have an empty intersection", e.A, e.B)
}

// Bound is one end of a version range.
type Bound struct {
	Version   Version
	Inclusive bool
}

// Range is an explicit version range: optional lower and upper bounds with
// inclusivity flags, plus individual excluded versions (from "!=").
type Range struct {
	Lower    *Bound
	Upper    *Bound
	Excluded []Version
}

// AnyRange returns the unbounded range matching every version.
func AnyRange() Range {
	return Range{}
}

// FromConstraint converts a single constraint into a range.
func FromConstraint(c Constraint) Range {
	switch c.Op {
	case OpEqual:
		return Range{
			Lower: &Bound{Version: c.Version, Inclusive: true},
			Upper: &Bound{Version: c.Version, Inclusive: true},
		}
	case OpNotEqual:
		return Range{Excluded: []Version{c.Version}}
	case OpGreaterEqual:
		return Range{Lower: &Bound{Version: c.Version, Inclusive: true}}
	case OpGreater:
		return Range{Lower: &Bound{Version: c.Version}}
	case OpLessEqual:
		return Range{Upper: &Bound{Version: c.Version, Inclusive: true}}
	case OpLess:
		return Range{Upper: &Bound{Version: c.Version}}
	}
	return Range{}
}

// FromConstraints folds a constraint list into a single range, rejecting an
// empty result.
func FromConstraints(constraints []Constraint) (Range, error) {
	result := AnyRange()
	for _, c := range constraints {
		merged, err := Intersect(result, FromConstraint(c))
		if err != nil {
			return Range{}, err
		}
		result = merged
	}
	return result, nil
}

// Intersect merges two ranges into their intersection. An empty result is an
// *EmptyRangeError naming both inputs.
func Intersect(a, b Range) (Range, error) {
	result := Range{
		Lower: tighterLower(a.Lower, b.Lower),
		Upper: tighterUpper(a.Upper, b.Upper),
	}

	// Merge exclusions, keeping only points inside the merged bounds.
	seen := make(map[string]bool)
	for _, v := range append(append([]Version{}, a.Excluded...), b.Excluded...) {
		if seen[v.String()] || !withinBounds(result, v) {
			continue
		}
		seen[v.String()] = true
		result.Excluded = append(result.Excluded, v)
	}
	sort.Slice(result.Excluded, func(i, j int) bool {
		return result.Excluded[i].Compare(result.Excluded[j]) < 0
	})

	if result.isEmpty() {
		return Range{}, &EmptyRangeError{A: a.String(), B: b.String()}
	}
	return result, nil
}

// Contains reports whether v falls inside the range.
func (r Range) Contains(v Version) bool {
	if !withinBounds(r, v) {
		return false
	}
	for _, ex := range r.Excluded {
		if ex.Equal(v) {
			return false
		}
	}
	return true
}

// Pinned returns the exact version when the range collapses to a single
// point, e.g. from "==6.2.4".
func (r Range) Pinned() (Version, bool) {
	if r.Lower == nil || r.Upper == nil {
		return Version{}, false
	}
	if !r.Lower.Inclusive || !r.Upper.Inclusive {
		return Version{}, false
	}
	if !r.Lower.Version.Equal(r.Upper.Version) {
		return Version{}, false
	}
	return r.Lower.Version, true
}

func (r Range) String() string {
	var parts []string
	if pin, ok := r.Pinned(); ok {
		parts = append(parts, "=="+pin.String())
	} else {
		if r.Lower != nil {
			op := ">"
			if r.Lower.Inclusive {
				op = ">="
			}
			parts = append(parts, op+r.Lower.Version.String())
		}
		if r.Upper != nil {
			op := "<"
			if r.Upper.Inclusive {
				op = "<="
			}
			parts = append(parts, op+r.Upper.Version.String())
		}
	}
	for _, ex := range r.Excluded {
		parts = append(parts, "!="+ex.String())
	}
	if len(parts) == 0 {
		return "*"
	}
	return strings.Join(parts, ",")
}

func (r Range) isEmpty() bool {
	if r.Lower != nil && r.Upper != nil {
		cmp := r.Lower.Version.Compare(r.Upper.Version)
		if cmp > 0 {
			return true
		}
		if cmp == 0 {
			if !r.Lower.Inclusive || !r.Upper.Inclusive {
				return true
			}
			// Single point, empty only if that point is excluded.
			for _, ex := range r.Excluded {
				if ex.Equal(r.Lower.Version) {
					return true
				}
			}
		}
	}
	return false
}

func withinBounds(r Range, v Version) bool {
	if r.Lower != nil {
		cmp := v.Compare(r.Lower.Version)
		if cmp < 0 || (cmp == 0 && !r.Lower.Inclusive) {
			return false
		}
	}
	if r.Upper != nil {
		cmp := v.Compare(r.Upper.Version)
		if cmp > 0 || (cmp == 0 && !r.Upper.Inclusive) {
			return false
		}
	}
	return true
}

// tighterLower picks the more restrictive of two lower bounds.
func tighterLower(a, b *Bound) *Bound {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	cmp := a.Version.Compare(b.Version)
	if cmp > 0 {
		return a
	}
	if cmp < 0 {
		return b
	}
	if !a.Inclusive {
		return a
	}
	return b
}

// tighterUpper picks the more restrictive of two upper bounds.
func tighterUpper(a, b *Bound) *Bound {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	cmp := a.Version.Compare(b.Version)
	if cmp < 0 {
		return a
	}
	if cmp > 0 {
		return b
	}
	if !a.Inclusive {
		return a
	}
	return b
}
