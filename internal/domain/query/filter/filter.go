package filter

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/kailas-cloud/shelfquery/internal/domain/record"
)

var (
	integerRe = regexp.MustCompile(`^\d+$`)
	decimalRe = regexp.MustCompile(`^\d+\.\d+$`)
)

// Clause is a single (field, expected value) filter.
// String expectations match case-insensitive substrings of string fields;
// every other combination requires strict equality.
type Clause struct {
	field    string
	expected record.Value
}

// NewClause validates and creates a Clause. An empty field is allowed; it
// resolves to nothing, so the clause never matches.
func NewClause(field string, expected record.Value) (Clause, error) {
	switch expected.Kind() {
	case record.String, record.Number, record.Bool:
	default:
		return Clause{}, fmt.Errorf("filter %q must have a scalar value", field)
	}
	return Clause{field: field, expected: expected}, nil
}

// Field returns the dotted field path.
func (c Clause) Field() string { return c.field }

// Expected returns the expected value.
func (c Clause) Expected() record.Value { return c.expected }

// Matches reports whether a resolved field value satisfies the clause.
// Missing values never match.
func (c Clause) Matches(v record.Value) bool {
	if want, ok := c.expected.AsString(); ok {
		if got, isStr := v.AsString(); isStr {
			return strings.Contains(strings.ToLower(got), strings.ToLower(want))
		}
	}
	return c.expected.Equal(v)
}

// Set is an AND-combined group of clauses kept in ascending field order,
// so evaluation order never depends on how the caller built it.
type Set struct {
	clauses []Clause
}

// NewSet creates a Set. A later clause on the same field replaces an earlier
// one. There is no limit on the number of clauses.
func NewSet(clauses ...Clause) (Set, error) {
	byField := make(map[string]Clause, len(clauses))
	for _, c := range clauses {
		if c.expected.Kind() == record.Absent {
			return Set{}, fmt.Errorf("filter %q has no value", c.field)
		}
		byField[c.field] = c
	}
	out := make([]Clause, 0, len(byField))
	for _, c := range byField {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].field < out[j].field })
	return Set{clauses: out}, nil
}

// Clauses returns the clauses in evaluation order.
func (s Set) Clauses() []Clause { return s.clauses }

// Len returns the number of clauses.
func (s Set) Len() int { return len(s.clauses) }

// IsEmpty reports whether the set has no clauses.
func (s Set) IsEmpty() bool { return len(s.clauses) == 0 }

// Get returns the clause for field.
func (s Set) Get(field string) (Clause, bool) {
	for _, c := range s.clauses {
		if c.field == field {
			return c, true
		}
	}
	return Clause{}, false
}

// Without returns a copy of the set minus the named fields.
func (s Set) Without(fields ...string) Set {
	drop := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		drop[f] = struct{}{}
	}
	out := make([]Clause, 0, len(s.clauses))
	for _, c := range s.clauses {
		if _, ok := drop[c.field]; !ok {
			out = append(out, c)
		}
	}
	return Set{clauses: out}
}

// Match reports whether every clause matches the values produced by resolve.
func (s Set) Match(resolve func(path string) record.Value) bool {
	for _, c := range s.clauses {
		if !c.Matches(resolve(c.field)) {
			return false
		}
	}
	return true
}

// Coerce converts a raw query-string value into a filter value.
// "12" becomes an integer, "1.5" a float, anything else stays a string.
// Empty input reports false.
func Coerce(raw string) (record.Value, bool) {
	if raw == "" {
		return record.Value{}, false
	}
	if integerRe.MatchString(raw) {
		if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
			return record.Int(n), true
		}
		// too large for int64; keep the magnitude as a float
		if f, err := strconv.ParseFloat(raw, 64); err == nil {
			return record.Num(f), true
		}
	}
	if decimalRe.MatchString(raw) {
		if f, err := strconv.ParseFloat(raw, 64); err == nil {
			return record.Num(f), true
		}
	}
	return record.Str(raw), true
}
