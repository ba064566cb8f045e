// Package types implements the SchemA static type system: the tagged Type
// lattice (spec §3), subtype-like equality over unions/intersections,
// member/call synthesis for built-in containers, expression-type synthesis,
// the three-pass inference walk, and the weak-placeholder refinement
// fixpoint (spec §4.1).
package types

import (
	"fmt"
	"strings"
)

// Type is a closed tagged variant. Every arm implements String() for
// diagnostics; structural comparison goes through Equals (equality.go)
// rather than Go's == or a method on the interface, because equality here
// is a subtype-like relation, not identity.
type Type interface {
	String() string
	Kind() string
}

// ---------------------------------------------------------------------------
// Primitive and sentinel arms
// ---------------------------------------------------------------------------

// TCon is a primitive nullary type constructor: int, float, string, boolean,
// void.
type TCon struct{ Name string }

func (t *TCon) String() string { return t.Name }
func (t *TCon) Kind() string   { return t.Name }

var (
	Int     Type = &TCon{Name: "int"}
	Float   Type = &TCon{Name: "float"}
	String_ Type = &TCon{Name: "string"}
	Boolean Type = &TCon{Name: "boolean"}
	Void    Type = &TCon{Name: "void"}
)

// TRangeType is the type of an open-ended lazy range value (spec §3/§6).
// Bounded ranges desugar to array(int)/array(string) at synthesis time, so
// this arm only ever denotes the lazy, possibly-infinite case.
type TRangeType struct{}

func (*TRangeType) String() string { return "range" }
func (*TRangeType) Kind() string   { return "range" }

var Range Type = &TRangeType{}

// TPredicateType is the type of a first-class predicate value (a curried
// predicate construction like `@sorted`).
type TPredicateType struct{}

func (*TPredicateType) String() string { return "predicate" }
func (*TPredicateType) Kind() string   { return "predicate" }

var PredicateType Type = &TPredicateType{}

// TWeak is an inferable placeholder eligible for refinement (spec §3/§4.1).
// It is a mutable box: many type positions may share the same *TWeak
// pointer (e.g. a parameter's type and every use-site inference that reads
// it), so resolving it in place is how refinement's propagator works
// without threading a substitution map through the whole AST.
type TWeak struct {
	id       int
	Resolved Type // nil until refined
}

var weakCounter int

// NewWeak creates a fresh, unresolved weak placeholder.
func NewWeak() *TWeak {
	weakCounter++
	return &TWeak{id: weakCounter}
}

func (t *TWeak) String() string {
	if t.Resolved != nil {
		return t.Resolved.String()
	}
	return fmt.Sprintf("weak#%d", t.id)
}
func (t *TWeak) Kind() string { return "weak" }

// Deref follows a resolved weak to its concrete type (or itself, if still
// unresolved). Chains of weak->weak can occur (inference may resolve a
// function's return placeholder to another, still unresolved weak), so
// Deref follows the chain recursively.
func Deref(t Type) Type {
	if w, ok := t.(*TWeak); ok && w.Resolved != nil {
		return Deref(w.Resolved)
	}
	return t
}

// IsWeak reports whether t is an unresolved weak placeholder.
func IsWeak(t Type) bool {
	w, ok := t.(*TWeak)
	return ok && w.Resolved == nil
}

// TPoly is the type named by a `poly` annotation: a wildcard that Equals
// matches against anything. Unlike TWeak it is never mutated. Empty
// literals do not use it: they are synthesized with a fresh TWeak element,
// also when they initialize an annotated variable (which then takes the
// annotation's type).
type TPoly struct{}

func (*TPoly) String() string { return "poly" }
func (*TPoly) Kind() string   { return "poly" }

var Poly Type = &TPoly{}

// TDynamic is the statically unresolvable type. It is inert: Equals treats
// it as a wildcard (the checker defers to runtime), but the refinement pass
// (spec §4.1 step 1) must never replace it and must never use it as the
// source of refining another slot.
type TDynamic struct{}

func (*TDynamic) String() string { return "dynamic" }
func (*TDynamic) Kind() string   { return "dynamic" }

var Dynamic Type = &TDynamic{}

// ---------------------------------------------------------------------------
// Container arms
// ---------------------------------------------------------------------------

type TArray struct{ Elem Type }

func (t *TArray) String() string { return fmt.Sprintf("Array<%s>", t.Elem.String()) }
func (t *TArray) Kind() string   { return "array" }

type TMap struct{ Key, Value Type }

func (t *TMap) String() string { return fmt.Sprintf("Map<%s, %s>", t.Key.String(), t.Value.String()) }
func (t *TMap) Kind() string   { return "map" }

type TSet struct{ Elem Type }

func (t *TSet) String() string { return fmt.Sprintf("Set<%s>", t.Elem.String()) }
func (t *TSet) Kind() string   { return "set" }

// THeap models both MinHeap and MaxHeap (spec §6); Min distinguishes them.
type THeap struct {
	Elem Type
	Min  bool
}

func (t *THeap) String() string {
	if t.Min {
		return fmt.Sprintf("MinHeap<%s>", t.Elem.String())
	}
	return fmt.Sprintf("MaxHeap<%s>", t.Elem.String())
}
func (t *THeap) Kind() string { return "heap" }

// THeapMap models both MinHeapMap and MaxHeapMap.
type THeapMap struct {
	Key, Value Type
	Min        bool
}

func (t *THeapMap) String() string {
	name := "MaxHeapMap"
	if t.Min {
		name = "MinHeapMap"
	}
	return fmt.Sprintf("%s<%s, %s>", name, t.Key.String(), t.Value.String())
}
func (t *THeapMap) Kind() string { return "heapmap" }

type TBinaryTree struct{ Elem Type }

func (t *TBinaryTree) String() string { return fmt.Sprintf("BinaryTree<%s>", t.Elem.String()) }
func (t *TBinaryTree) Kind() string   { return "binarytree" }

type TAVLTree struct{ Elem Type }

func (t *TAVLTree) String() string { return fmt.Sprintf("AVLTree<%s>", t.Elem.String()) }
func (t *TAVLTree) Kind() string   { return "avltree" }

type TGraph struct{ Node Type }

func (t *TGraph) String() string { return fmt.Sprintf("Graph<%s>", t.Node.String()) }
func (t *TGraph) Kind() string   { return "graph" }

// ---------------------------------------------------------------------------
// Structural arms
// ---------------------------------------------------------------------------

type TTuple struct{ Elems []Type }

func (t *TTuple) String() string {
	parts := make([]string, len(t.Elems))
	for i, e := range t.Elems {
		parts[i] = e.String()
	}
	return fmt.Sprintf("(%s)", strings.Join(parts, ", "))
}
func (t *TTuple) Kind() string { return "tuple" }

// RecordField is one named slot of a record type. Spec §3 writes record
// fields as `(Type,Type)[]` pairs; we realize the first element as the
// field's name carried alongside its value type rather than as a type-level
// string-literal singleton (see DESIGN.md for the tradeoff).
type RecordField struct {
	Name string
	Type Type
}

type TRecord struct{ Fields []RecordField }

func (t *TRecord) String() string {
	parts := make([]string, len(t.Fields))
	for i, f := range t.Fields {
		parts[i] = fmt.Sprintf("%s: %s", f.Name, f.Type.String())
	}
	return fmt.Sprintf("{%s}", strings.Join(parts, ", "))
}
func (t *TRecord) Kind() string { return "record" }

// Lookup returns the type of a named field, or nil if absent.
func (t *TRecord) Lookup(name string) Type {
	for _, f := range t.Fields {
		if f.Name == name {
			return f.Type
		}
	}
	return nil
}

type TUnion struct{ Types []Type }

func (t *TUnion) String() string {
	parts := make([]string, len(t.Types))
	for i, e := range t.Types {
		parts[i] = e.String()
	}
	return strings.Join(parts, " | ")
}
func (t *TUnion) Kind() string { return "union" }

type TIntersection struct{ Types []Type }

func (t *TIntersection) String() string {
	parts := make([]string, len(t.Types))
	for i, e := range t.Types {
		parts[i] = e.String()
	}
	return strings.Join(parts, " & ")
}
func (t *TIntersection) Kind() string { return "intersection" }

type TFunction struct {
	Params   []Type
	Return   Type
	Variadic bool
}

func (t *TFunction) String() string {
	parts := make([]string, len(t.Params))
	for i, p := range t.Params {
		parts[i] = p.String()
	}
	variadic := ""
	if t.Variadic {
		variadic = "..."
	}
	return fmt.Sprintf("(%s%s) -> %s", strings.Join(parts, ", "), variadic, t.Return.String())
}
func (t *TFunction) Kind() string { return "function" }

// Inf is the pre-bound value type required by spec §6: intersection(int,
// float), so `inf` satisfies both integer and floating-point contexts.
func Inf() Type {
	return &TIntersection{Types: []Type{Int, Float}}
}
