package eval

import (
	"fmt"
	"math"
	"strings"

	"github.com/dingf3ng/schema/internal/containers"
)

// installBuiltins binds the built-in function interface (spec §6) into the
// machine's global environment: `print`, which appends a line to the
// output buffer, and `inf`, a pre-bound value of type intersection(int,
// float) realized at runtime as a FloatValue holding positive infinity —
// the unbounded sentinel idiom (`let dist = inf`) needs an actual
// unbounded value, not a zero placeholder.
func installBuiltins(m *Machine) {
	m.Global.Define("print", BuiltinValue{Name: "print", Fn: func(m *Machine, args []Value) (Value, error) {
		parts := make([]string, len(args))
		for i, a := range args {
			parts[i] = a.String()
		}
		m.output = append(m.output, strings.Join(parts, " "))
		return VoidValue{}, nil
	}})
	m.Global.Define("inf", FloatValue{V: math.Inf(1)})

	for _, name := range []string{"Map", "Set", "MinHeap", "MaxHeap", "MinHeapMap", "MaxHeapMap", "Graph", "BinaryTree", "AVLTree"} {
		ctorName := name
		m.Global.Define(ctorName, BuiltinValue{Name: ctorName, Fn: func(m *Machine, args []Value) (Value, error) {
			return constructBuiltin(ctorName, args)
		}})
	}
}

func lessValue(a, b Value) bool {
	switch av := a.(type) {
	case IntValue:
		if bv, ok := b.(IntValue); ok {
			return av.V < bv.V
		}
	case FloatValue:
		if bv, ok := b.(FloatValue); ok {
			return av.V < bv.V
		}
	case StringValue:
		if bv, ok := b.(StringValue); ok {
			return av.V < bv.V
		}
	}
	return a.String() < b.String()
}

func constructBuiltin(name string, args []Value) (Value, error) {
	switch name {
	case "Map":
		return MapValue{M: containers.NewMap[Value, Value]()}, nil
	case "Set":
		return SetValue{S: containers.NewSet[Value]()}, nil
	case "MinHeap":
		return HeapValue{H: containers.NewHeap(lessValue), Min: true}, nil
	case "MaxHeap":
		return HeapValue{H: containers.NewHeap(func(a, b Value) bool { return lessValue(b, a) }), Min: false}, nil
	case "MinHeapMap":
		return HeapMapValue{HM: containers.NewHeapMap[Value, Value](lessValue), Min: true}, nil
	case "MaxHeapMap":
		return HeapMapValue{HM: containers.NewHeapMap[Value, Value](func(a, b Value) bool { return lessValue(b, a) }), Min: false}, nil
	case "Graph":
		directed := true
		if len(args) > 0 {
			if b, ok := args[0].(BoolValue); ok {
				directed = b.V
			}
		}
		return GraphValue{G: containers.NewGraph[Value](directed)}, nil
	case "BinaryTree":
		return BinaryTreeValue{T: containers.NewBinaryTree(lessValue)}, nil
	case "AVLTree":
		return AVLTreeValue{T: containers.NewAVLTree(lessValue)}, nil
	default:
		return nil, fmt.Errorf("unknown builtin constructor %q", name)
	}
}
