package eval

import (
	"fmt"

	"github.com/dingf3ng/schema/internal/ast"
	"github.com/dingf3ng/schema/internal/containers"
	"github.com/dingf3ng/schema/internal/errors"
)

func (m *Machine) evalCall(n *ast.CallExpression, env *Environment) (Value, *errors.Report) {
	args := make([]Value, len(n.Args))
	for i, a := range n.Args {
		v, rep := m.evalExpr(a, env)
		if rep != nil {
			return nil, rep
		}
		args[i] = v
	}

	if mem, ok := n.Callee.(*ast.MemberExpression); ok {
		obj, rep := m.evalExpr(mem.Object, env)
		if rep != nil {
			return nil, rep
		}
		return m.callMethod(obj, mem.Property, args, n.Pos)
	}

	callee, rep := m.evalExpr(n.Callee, env)
	if rep != nil {
		return nil, rep
	}
	return m.apply(callee, args, n.Pos)
}

func (m *Machine) apply(callee Value, args []Value, pos ast.Pos) (Value, *errors.Report) {
	switch fn := callee.(type) {
	case FunctionValue:
		return m.callFunction(fn, args, pos)
	case BuiltinValue:
		v, err := fn.Fn(m, args)
		if err != nil {
			return nil, errors.NewRuntimeTypeError(errors.RTT001, pos, err.Error())
		}
		return v, nil
	default:
		return nil, errors.NewRuntimeTypeError(errors.RTT001, pos, "value is not callable")
	}
}

// callFunction binds args into a fresh child of the function's closure
// environment (the global scope, since SchemA functions are top-level only)
// and runs its body, unwrapping the ReturnStatement signal it terminates
// with.
func (m *Machine) callFunction(fn FunctionValue, args []Value, pos ast.Pos) (Value, *errors.Report) {
	if len(args) != len(fn.Decl.Params) {
		return nil, errors.NewTypeError(errors.TYP004, pos, fmt.Sprintf("function %q expects %d argument(s), got %d", fn.Decl.Name, len(fn.Decl.Params), len(args)))
	}
	call := fn.Closure.Child()
	for i, p := range fn.Decl.Params {
		call.Define(p.Name, args[i])
	}
	res, rep := m.execBlock(fn.Decl.Body.Body, call)
	if rep != nil {
		return nil, rep
	}
	if res.Returned {
		return res.Value, nil
	}
	return VoidValue{}, nil
}

func asFloat(v Value) (float64, bool) {
	switch val := v.(type) {
	case IntValue:
		return float64(val.V), true
	case FloatValue:
		return val.V, true
	default:
		return 0, false
	}
}

func wantArgs(name string, args []Value, n int, pos ast.Pos) *errors.Report {
	if len(args) != n {
		return errors.NewTypeError(errors.TYP004, pos, fmt.Sprintf("%s expects %d argument(s), got %d", name, n, len(args)))
	}
	return nil
}

// callMethod is the runtime's container method table (spec §5): dispatch is
// purely by the receiver's concrete kind, since the type checker has
// already ensured property/arity/arg-type agreement before this ever runs.
func (m *Machine) callMethod(obj Value, property string, args []Value, pos ast.Pos) (Value, *errors.Report) {
	switch v := obj.(type) {
	case ArrayValue:
		return m.callArrayMethod(v, property, args, pos)
	case MapValue:
		return m.callMapMethod(v, property, args, pos)
	case SetValue:
		return m.callSetMethod(v, property, args, pos)
	case HeapValue:
		return m.callHeapMethod(v, property, args, pos)
	case HeapMapValue:
		return m.callHeapMapMethod(v, property, args, pos)
	case BinaryTreeValue:
		return m.callTreeMethod(v.T, property, args, pos)
	case AVLTreeValue:
		return m.callAVLMethod(v.T, property, args, pos)
	case GraphValue:
		return m.callGraphMethod(v, property, args, pos)
	default:
		return nil, errors.NewRuntimeTypeError(errors.RTT001, pos, fmt.Sprintf("%s has no member %q", v.String(), property))
	}
}

func (m *Machine) callArrayMethod(v ArrayValue, property string, args []Value, pos ast.Pos) (Value, *errors.Report) {
	switch property {
	case "length":
		return IntValue{V: int64(v.Arr.Length())}, nil
	case "push":
		if rep := wantArgs("push", args, 1, pos); rep != nil {
			return nil, rep
		}
		v.Arr.Push(args[0])
		return VoidValue{}, nil
	case "pop":
		val, ok := v.Arr.Pop()
		if !ok {
			return nil, errors.NewIndexError(errors.IDX001, pos, "pop on an empty array")
		}
		return val, nil
	case "get":
		if rep := wantArgs("get", args, 1, pos); rep != nil {
			return nil, rep
		}
		idx, ok := args[0].(IntValue)
		if !ok {
			return nil, errors.NewRuntimeTypeError(errors.RTT001, pos, "get requires an int index")
		}
		val, ok := v.Arr.Get(int(idx.V))
		if !ok {
			return nil, errors.NewIndexError(errors.IDX001, pos, "array index out of range")
		}
		return val, nil
	case "set":
		if rep := wantArgs("set", args, 2, pos); rep != nil {
			return nil, rep
		}
		idx, ok := args[0].(IntValue)
		if !ok {
			return nil, errors.NewRuntimeTypeError(errors.RTT001, pos, "set requires an int index")
		}
		if !v.Arr.Set(int(idx.V), args[1]) {
			return nil, errors.NewIndexError(errors.IDX001, pos, "array index out of range")
		}
		return VoidValue{}, nil
	case "slice":
		if rep := wantArgs("slice", args, 2, pos); rep != nil {
			return nil, rep
		}
		lo, ok1 := args[0].(IntValue)
		hi, ok2 := args[1].(IntValue)
		if !ok1 || !ok2 {
			return nil, errors.NewRuntimeTypeError(errors.RTT001, pos, "slice bounds must be int")
		}
		elems, ok := v.Arr.Slice(int(lo.V), int(hi.V))
		if !ok {
			return nil, errors.NewIndexError(errors.IDX001, pos, "slice bounds out of range")
		}
		return ArrayValue{Arr: containers.NewArray(elems...)}, nil
	default:
		return nil, errors.NewRuntimeTypeError(errors.RTT001, pos, fmt.Sprintf("Array has no member %q", property))
	}
}

func (m *Machine) callMapMethod(v MapValue, property string, args []Value, pos ast.Pos) (Value, *errors.Report) {
	switch property {
	case "size":
		return IntValue{V: int64(v.M.Size())}, nil
	case "get":
		if rep := wantArgs("get", args, 1, pos); rep != nil {
			return nil, rep
		}
		val, ok := v.M.Get(args[0])
		if !ok {
			return nil, errors.NewIndexError(errors.IDX003, pos, fmt.Sprintf("map has no key %s", args[0].String()))
		}
		return val, nil
	case "set":
		if rep := wantArgs("set", args, 2, pos); rep != nil {
			return nil, rep
		}
		v.M.Set(args[0], args[1])
		return VoidValue{}, nil
	case "has":
		if rep := wantArgs("has", args, 1, pos); rep != nil {
			return nil, rep
		}
		return BoolValue{V: v.M.Has(args[0])}, nil
	case "delete", "deleteWithKey":
		if rep := wantArgs(property, args, 1, pos); rep != nil {
			return nil, rep
		}
		return BoolValue{V: v.M.Delete(args[0])}, nil
	case "keys":
		return ArrayValue{Arr: containers.NewArray(v.M.Keys()...)}, nil
	case "values":
		return ArrayValue{Arr: containers.NewArray(v.M.Values()...)}, nil
	case "entries":
		entries := v.M.Entries()
		out := make([]Value, len(entries))
		for i, e := range entries {
			out[i] = TupleValue{Elems: []Value{e.Key, e.Value}}
		}
		return ArrayValue{Arr: containers.NewArray(out...)}, nil
	default:
		return nil, errors.NewRuntimeTypeError(errors.RTT001, pos, fmt.Sprintf("Map has no member %q", property))
	}
}

func (m *Machine) callSetMethod(v SetValue, property string, args []Value, pos ast.Pos) (Value, *errors.Report) {
	switch property {
	case "size":
		return IntValue{V: int64(v.S.Size())}, nil
	case "add":
		if rep := wantArgs("add", args, 1, pos); rep != nil {
			return nil, rep
		}
		v.S.Add(args[0])
		return VoidValue{}, nil
	case "has":
		if rep := wantArgs("has", args, 1, pos); rep != nil {
			return nil, rep
		}
		return BoolValue{V: v.S.Has(args[0])}, nil
	case "delete":
		if rep := wantArgs("delete", args, 1, pos); rep != nil {
			return nil, rep
		}
		return BoolValue{V: v.S.Delete(args[0])}, nil
	case "values":
		return ArrayValue{Arr: containers.NewArray(v.S.Values()...)}, nil
	default:
		return nil, errors.NewRuntimeTypeError(errors.RTT001, pos, fmt.Sprintf("Set has no member %q", property))
	}
}

func (m *Machine) callHeapMethod(v HeapValue, property string, args []Value, pos ast.Pos) (Value, *errors.Report) {
	switch property {
	case "size":
		return IntValue{V: int64(v.H.Size())}, nil
	case "push":
		if rep := wantArgs("push", args, 1, pos); rep != nil {
			return nil, rep
		}
		v.H.Push(args[0])
		return VoidValue{}, nil
	case "pop":
		val, ok := v.H.Pop()
		if !ok {
			return nil, errors.NewIndexError(errors.IDX001, pos, "pop on an empty heap")
		}
		return val, nil
	case "peek":
		val, ok := v.H.Peek()
		if !ok {
			return nil, errors.NewIndexError(errors.IDX001, pos, "peek on an empty heap")
		}
		return val, nil
	default:
		heapKind := "MinHeap"
		if !v.Min {
			heapKind = "MaxHeap"
		}
		return nil, errors.NewRuntimeTypeError(errors.RTT001, pos, fmt.Sprintf("%s has no member %q", heapKind, property))
	}
}

func (m *Machine) callHeapMapMethod(v HeapMapValue, property string, args []Value, pos ast.Pos) (Value, *errors.Report) {
	switch property {
	case "size":
		return IntValue{V: int64(v.HM.Size())}, nil
	case "push":
		if rep := wantArgs("push", args, 2, pos); rep != nil {
			return nil, rep
		}
		v.HM.Push(args[0], args[1])
		return VoidValue{}, nil
	case "pop":
		key, ok := v.HM.Pop()
		if !ok {
			return nil, errors.NewIndexError(errors.IDX001, pos, "pop on an empty heap map")
		}
		return key, nil
	case "peek":
		key, ok := v.HM.Peek()
		if !ok {
			return nil, errors.NewIndexError(errors.IDX001, pos, "peek on an empty heap map")
		}
		return key, nil
	default:
		heapKind := "MinHeapMap"
		if !v.Min {
			heapKind = "MaxHeapMap"
		}
		return nil, errors.NewRuntimeTypeError(errors.RTT001, pos, fmt.Sprintf("%s has no member %q", heapKind, property))
	}
}

func (m *Machine) callTreeMethod(t *containers.BinaryTree[Value], property string, args []Value, pos ast.Pos) (Value, *errors.Report) {
	switch property {
	case "insert":
		if rep := wantArgs("insert", args, 1, pos); rep != nil {
			return nil, rep
		}
		t.Insert(args[0])
		return VoidValue{}, nil
	case "search":
		if rep := wantArgs("search", args, 1, pos); rep != nil {
			return nil, rep
		}
		return BoolValue{V: t.Search(args[0])}, nil
	case "getHeight":
		return IntValue{V: int64(t.GetHeight())}, nil
	case "preOrderTraversal":
		return ArrayValue{Arr: containers.NewArray(t.PreOrder()...)}, nil
	case "inOrderTraversal":
		return ArrayValue{Arr: containers.NewArray(t.InOrder()...)}, nil
	case "postOrderTraversal":
		return ArrayValue{Arr: containers.NewArray(t.PostOrder()...)}, nil
	default:
		return nil, errors.NewRuntimeTypeError(errors.RTT001, pos, fmt.Sprintf("BinaryTree has no member %q", property))
	}
}

func (m *Machine) callAVLMethod(t *containers.AVLTree[Value], property string, args []Value, pos ast.Pos) (Value, *errors.Report) {
	switch property {
	case "insert":
		if rep := wantArgs("insert", args, 1, pos); rep != nil {
			return nil, rep
		}
		t.Insert(args[0])
		return VoidValue{}, nil
	case "search":
		if rep := wantArgs("search", args, 1, pos); rep != nil {
			return nil, rep
		}
		return BoolValue{V: t.Search(args[0])}, nil
	case "getHeight":
		return IntValue{V: int64(t.GetHeight())}, nil
	case "preOrderTraversal":
		return ArrayValue{Arr: containers.NewArray(t.PreOrder()...)}, nil
	case "inOrderTraversal":
		return ArrayValue{Arr: containers.NewArray(t.InOrder()...)}, nil
	case "postOrderTraversal":
		return ArrayValue{Arr: containers.NewArray(t.PostOrder()...)}, nil
	default:
		return nil, errors.NewRuntimeTypeError(errors.RTT001, pos, fmt.Sprintf("AVLTree has no member %q", property))
	}
}

func (m *Machine) callGraphMethod(v GraphValue, property string, args []Value, pos ast.Pos) (Value, *errors.Report) {
	switch property {
	case "addVertex":
		if rep := wantArgs("addVertex", args, 1, pos); rep != nil {
			return nil, rep
		}
		v.G.AddVertex(args[0])
		return VoidValue{}, nil
	case "addEdge":
		if len(args) != 2 && len(args) != 3 {
			return nil, errors.NewTypeError(errors.TYP004, pos, "addEdge expects 2 or 3 arguments")
		}
		weight := 1.0
		if len(args) == 3 {
			w, ok := asFloat(args[2])
			if !ok {
				return nil, errors.NewRuntimeTypeError(errors.RTT001, pos, "addEdge weight must be numeric")
			}
			weight = w
		}
		v.G.AddEdge(args[0], args[1], weight)
		return VoidValue{}, nil
	case "hasVertex":
		if rep := wantArgs("hasVertex", args, 1, pos); rep != nil {
			return nil, rep
		}
		return BoolValue{V: v.G.HasVertex(args[0])}, nil
	case "hasEdge":
		if rep := wantArgs("hasEdge", args, 2, pos); rep != nil {
			return nil, rep
		}
		return BoolValue{V: v.G.HasEdge(args[0], args[1])}, nil
	case "getVertices":
		return ArrayValue{Arr: containers.NewArray(v.G.GetVertices()...)}, nil
	case "getEdges":
		edges := v.G.GetEdges()
		out := make([]Value, len(edges))
		for i, e := range edges {
			out[i] = RecordValue{
				Order:  []string{"from", "to", "weight"},
				Fields: map[string]Value{"from": e.From, "to": e.To, "weight": FloatValue{V: e.Weight}},
			}
		}
		return ArrayValue{Arr: containers.NewArray(out...)}, nil
	case "getNeighbors":
		if rep := wantArgs("getNeighbors", args, 1, pos); rep != nil {
			return nil, rep
		}
		neighbors := v.G.GetNeighbors(args[0])
		out := make([]Value, len(neighbors))
		for i, nb := range neighbors {
			out[i] = RecordValue{
				Order:  []string{"to", "weight"},
				Fields: map[string]Value{"to": nb.To, "weight": FloatValue{V: nb.Weight}},
			}
		}
		return ArrayValue{Arr: containers.NewArray(out...)}, nil
	case "isDirected":
		return BoolValue{V: v.G.IsDirected()}, nil
	case "size":
		return IntValue{V: int64(v.G.Size())}, nil
	default:
		return nil, errors.NewRuntimeTypeError(errors.RTT001, pos, fmt.Sprintf("Graph has no member %q", property))
	}
}
