// Package versions implements version parsing, comparison, and constraint
// range algebra for extension dependency declarations.
//
// # Overview
//
// Dependency declarations arrive as constraint strings such as
// "requests>=2.0" or "pytest==6.2.4". This package parses them into explicit
// types and merges constraints on the same package by range intersection:
//
// Version: tolerant dotted numeric version with a total order
// Constraint: a single (operator, version) pair
// Range: lower/upper bound with inclusivity flags plus excluded points
//
// Intersection is a pure function over two ranges. An empty intersection is
// an explicit error rather than a silent falsy value, so callers can report
// exactly which pair of constraints conflicts.
package versions
