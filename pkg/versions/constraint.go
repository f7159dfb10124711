package versions

import (
	"fmt"
	"regexp"
	"strings"
)

// Operator is a version comparison operator in a constraint.
type Operator string

const (
	OpEqual        Operator = "=="
	OpNotEqual     Operator = "!="
	OpGreaterEqual Operator = ">="
	OpLessEqual    Operator = "<="
	OpGreater      Operator = ">"
	OpLess         Operator = "<"
)

// operator parse order matters: two-character operators must be tried before
// their one-character prefixes.
var operators = []Operator{OpEqual, OpNotEqual, OpGreaterEqual, OpLessEqual, OpGreater, OpLess}

var packageNameRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// Constraint is a single (operator, version) pair.
type Constraint struct {
	Op      Operator
	Version Version
}

func (c Constraint) String() string {
	return string(c.Op) + c.Version.String()
}

// ParseConstraint parses a bare constraint such as ">=2.0". A missing
// operator defaults to ">=".
func ParseConstraint(s string) (Constraint, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Constraint{}, fmt.Errorf("empty constraint")
	}

	op := OpGreaterEqual
	rest := s
	for _, candidate := range operators {
		if strings.HasPrefix(s, string(candidate)) {
			op = candidate
			rest = strings.TrimSpace(s[len(candidate):])
			break
		}
	}

	v, err := ParseVersion(rest)
	if err != nil {
		return Constraint{}, fmt.Errorf("constraint %q: %w", s, err)
	}

	return Constraint{Op: op, Version: v}, nil
}

// ParseSpec parses a dependency specification string of the form
// "package[op]version" with optional comma-separated additional constraints,
// e.g. "requests>=2.0,<3.0". A bare package name yields no constraints.
func ParseSpec(s string) (string, []Constraint, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", nil, fmt.Errorf("empty dependency specification")
	}

	// The package name ends at the first operator character.
	split := strings.IndexAny(s, "=!<>")
	if split == -1 {
		if !packageNameRegex.MatchString(s) {
			return "", nil, fmt.Errorf("invalid package name %q", s)
		}
		return s, nil, nil
	}

	name := strings.TrimSpace(s[:split])
	if !packageNameRegex.MatchString(name) {
		return "", nil, fmt.Errorf("invalid package name %q in %q", name, s)
	}

	var constraints []Constraint
	for _, part := range strings.Split(s[split:], ",") {
		c, err := ParseConstraint(part)
		if err != nil {
			return "", nil, fmt.Errorf("dependency %q: %w", s, err)
		}
		constraints = append(constraints, c)
	}

	return name, constraints, nil
}

// Satisfies reports whether version v meets constraint c.
func (c Constraint) Satisfies(v Version) bool {
	cmp := v.Compare(c.Version)
	switch c.Op {
	case OpEqual:
		return cmp == 0
	case OpNotEqual:
		return cmp != 0
	case OpGreaterEqual:
		return cmp >= 0
	case OpGreater:
		return cmp > 0
	case OpLessEqual:
		return cmp <= 0
	case OpLess:
		return cmp < 0
	}
	return false
}
