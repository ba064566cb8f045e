package types

import (
	"fmt"
	"strings"
)

// Predicate names a runtime check (spec §3/§4.3): `sorted`, `positive`,
// `non_empty`, `unique`, `greater_than(n)`, ... Args are literal argument
// expressions' synthesized values, kept generically as `any` here because
// the concrete runtime representation lives in package eval — types only
// needs Predicate to label a RefinedType's refinements.
type Predicate struct {
	Name string
	Args []any
}

func (p Predicate) String() string {
	if len(p.Args) == 0 {
		return p.Name
	}
	parts := make([]string, len(p.Args))
	for i, a := range p.Args {
		parts[i] = fmt.Sprintf("%v", a)
	}
	return fmt.Sprintf("%s(%s)", p.Name, strings.Join(parts, ", "))
}

// RefinedType pairs a static Type with zero or more Predicates attached by
// the invariant synthesizer after a loop (spec §3).
type RefinedType struct {
	Static      Type
	Refinements []Predicate
}

// NewRefinedType wraps a bare Type with no refinements yet.
func NewRefinedType(t Type) RefinedType {
	return RefinedType{Static: t}
}

// WithRefinement returns a copy of r with pred appended, skipping exact
// duplicates so repeated synthesis passes don't pile up identical entries.
func (r RefinedType) WithRefinement(pred Predicate) RefinedType {
	for _, existing := range r.Refinements {
		if existing.Name == pred.Name && fmt.Sprint(existing.Args) == fmt.Sprint(pred.Args) {
			return r
		}
	}
	next := make([]Predicate, len(r.Refinements), len(r.Refinements)+1)
	copy(next, r.Refinements)
	next = append(next, pred)
	return RefinedType{Static: r.Static, Refinements: next}
}

func (r RefinedType) String() string {
	if len(r.Refinements) == 0 {
		return r.Static.String()
	}
	parts := make([]string, len(r.Refinements))
	for i, p := range r.Refinements {
		parts[i] = p.String()
	}
	return fmt.Sprintf("%s {%s}", r.Static.String(), strings.Join(parts, ", "))
}
