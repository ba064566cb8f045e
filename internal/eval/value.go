// Package eval implements the CEK-style abstract machine that executes a
// type-checked SchemA program (spec §4.2): a Focus/Environment/Kontinuation
// loop over an explicit continuation stack at the top level, function calls
// and loop bodies evaluated through a direct recursive evaluator beneath
// it. See Machine for the authority boundary between the two.
package eval

import (
	"fmt"
	"strings"

	"github.com/dingf3ng/schema/internal/ast"
	"github.com/dingf3ng/schema/internal/containers"
)

// Value is any runtime value the machine can hold, bind, or print.
type Value interface {
	valueNode()
	String() string
}

type IntValue struct{ V int64 }
type FloatValue struct{ V float64 }
type StringValue struct{ V string }
type BoolValue struct{ V bool }
type VoidValue struct{}

func (IntValue) valueNode()    {}
func (FloatValue) valueNode()  {}
func (StringValue) valueNode() {}
func (BoolValue) valueNode()   {}
func (VoidValue) valueNode()   {}

func (v IntValue) String() string    { return fmt.Sprintf("%d", v.V) }
func (v FloatValue) String() string  { return fmt.Sprintf("%g", v.V) }
func (v StringValue) String() string { return v.V }
func (v BoolValue) String() string {
	if v.V {
		return "true"
	}
	return "false"
}
func (VoidValue) String() string { return "void" }

type ArrayValue struct{ Arr *containers.Array[Value] }
type MapValue struct{ M *containers.Map[Value, Value] }
type SetValue struct{ S *containers.Set[Value] }
type HeapValue struct {
	H   *containers.Heap[Value]
	Min bool
}
type HeapMapValue struct {
	HM  *containers.HeapMap[Value, Value]
	Min bool
}
type BinaryTreeValue struct{ T *containers.BinaryTree[Value] }
type AVLTreeValue struct{ T *containers.AVLTree[Value] }
type GraphValue struct{ G *containers.Graph[Value] }
type RangeValue struct{ R *containers.LazyRange }
type TupleValue struct{ Elems []Value }
type RecordValue struct {
	Fields map[string]Value
	Order  []string
}
type FunctionValue struct {
	Decl    *ast.FunctionDeclaration
	Closure *Environment
}
type BuiltinValue struct {
	Name string
	Fn   func(m *Machine, args []Value) (Value, error)
}
type PredicateValue struct {
	Name string
	Args []Value
}

func (ArrayValue) valueNode()      {}
func (MapValue) valueNode()        {}
func (SetValue) valueNode()        {}
func (HeapValue) valueNode()       {}
func (HeapMapValue) valueNode()    {}
func (BinaryTreeValue) valueNode() {}
func (AVLTreeValue) valueNode()    {}
func (GraphValue) valueNode()      {}
func (RangeValue) valueNode()      {}
func (TupleValue) valueNode()      {}
func (RecordValue) valueNode()     {}
func (FunctionValue) valueNode()   {}
func (BuiltinValue) valueNode()    {}
func (PredicateValue) valueNode()  {}

func (v ArrayValue) String() string {
	parts := make([]string, 0, v.Arr.Length())
	for _, e := range v.Arr.Values() {
		parts = append(parts, e.String())
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func (v MapValue) String() string {
	parts := make([]string, 0, v.M.Size())
	for _, e := range v.M.Entries() {
		parts = append(parts, fmt.Sprintf("%s: %s", e.Key.String(), e.Value.String()))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func (v SetValue) String() string {
	parts := make([]string, 0, v.S.Size())
	for _, e := range v.S.Values() {
		parts = append(parts, e.String())
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func (HeapValue) String() string    { return "<heap>" }
func (HeapMapValue) String() string { return "<heapmap>" }

func (v BinaryTreeValue) String() string {
	parts := make([]string, 0)
	for _, e := range v.T.InOrder() {
		parts = append(parts, e.String())
	}
	return "<tree " + strings.Join(parts, ", ") + ">"
}

func (v AVLTreeValue) String() string {
	parts := make([]string, 0)
	for _, e := range v.T.InOrder() {
		parts = append(parts, e.String())
	}
	return "<avltree " + strings.Join(parts, ", ") + ">"
}

func (GraphValue) String() string { return "<graph>" }
func (RangeValue) String() string { return "<range>" }

func (v TupleValue) String() string {
	parts := make([]string, len(v.Elems))
	for i, e := range v.Elems {
		parts[i] = e.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func (v RecordValue) String() string {
	parts := make([]string, len(v.Order))
	for i, name := range v.Order {
		parts[i] = fmt.Sprintf("%s: %s", name, v.Fields[name].String())
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func (v FunctionValue) String() string { return fmt.Sprintf("<function %s>", v.Decl.Name) }
func (v BuiltinValue) String() string  { return fmt.Sprintf("<builtin %s>", v.Name) }
func (v PredicateValue) String() string {
	if len(v.Args) == 0 {
		return "@" + v.Name
	}
	parts := make([]string, len(v.Args))
	for i, a := range v.Args {
		parts[i] = a.String()
	}
	return "@" + v.Name + "(" + strings.Join(parts, ", ") + ")"
}

// ToNative converts a Value into the plain Go representation the
// internal/invariant predicate library and loop-invariant tracker operate
// over (spec §4.3). Containers convert to []any via their natural
// iteration order.
func ToNative(v Value) any {
	switch val := v.(type) {
	case IntValue:
		return val.V
	case FloatValue:
		return val.V
	case StringValue:
		return val.V
	case BoolValue:
		return val.V
	case VoidValue:
		return nil
	case ArrayValue:
		elems := val.Arr.Values()
		out := make([]any, len(elems))
		for i, e := range elems {
			out[i] = ToNative(e)
		}
		return out
	case SetValue:
		elems := val.S.Values()
		out := make([]any, len(elems))
		for i, e := range elems {
			out[i] = ToNative(e)
		}
		return out
	case TupleValue:
		out := make([]any, len(val.Elems))
		for i, e := range val.Elems {
			out[i] = ToNative(e)
		}
		return out
	case MapValue:
		out := make(map[string]any, val.M.Size())
		for _, e := range val.M.Entries() {
			out[e.Key.String()] = ToNative(e.Value)
		}
		return out
	default:
		return v.String()
	}
}
