package eval

import (
	"fmt"

	"github.com/dingf3ng/schema/internal/ast"
	"github.com/dingf3ng/schema/internal/containers"
	"github.com/dingf3ng/schema/internal/errors"
	"github.com/dingf3ng/schema/internal/invariant"
)

// evalExpr evaluates a single expression to a Value. Every sub-expression
// here is resolved through a direct recursive call rather than a pushed
// continuation frame; see Machine's doc comment for the stepping-authority
// tradeoff this implies.
func (m *Machine) evalExpr(e ast.Expression, env *Environment) (Value, *errors.Report) {
	switch n := e.(type) {
	case *ast.IntLiteral:
		return IntValue{V: n.Value}, nil
	case *ast.FloatLiteral:
		return FloatValue{V: n.Value}, nil
	case *ast.StringLiteral:
		return StringValue{V: n.Value}, nil
	case *ast.BoolLiteral:
		return BoolValue{V: n.Value}, nil

	case *ast.Identifier:
		if n.Name == "_" {
			return nil, errors.NewNameError(errors.NAM002, n.Pos, "`_` cannot be read as a value")
		}
		if v, ok := env.Lookup(n.Name); ok {
			return v, nil
		}
		if fd, ok := m.Funcs[n.Name]; ok {
			return FunctionValue{Decl: fd, Closure: m.Global}, nil
		}
		return nil, errors.NewNameError(errors.NAM001, n.Pos, fmt.Sprintf("undefined identifier %q", n.Name))

	case *ast.MetaIdentifier:
		return PredicateValue{Name: n.Name}, nil

	case *ast.ArrayLiteral:
		elems := make([]Value, len(n.Elements))
		for i, el := range n.Elements {
			v, rep := m.evalExpr(el, env)
			if rep != nil {
				return nil, rep
			}
			elems[i] = v
		}
		return ArrayValue{Arr: containers.NewArray(elems...)}, nil

	case *ast.MapLiteral:
		mp := containers.NewMap[Value, Value]()
		for _, entry := range n.Entries {
			k, rep := m.evalExpr(entry.Key, env)
			if rep != nil {
				return nil, rep
			}
			v, rep := m.evalExpr(entry.Value, env)
			if rep != nil {
				return nil, rep
			}
			mp.Set(k, v)
		}
		return MapValue{M: mp}, nil

	case *ast.SetLiteral:
		s := containers.NewSet[Value]()
		for _, el := range n.Elements {
			v, rep := m.evalExpr(el, env)
			if rep != nil {
				return nil, rep
			}
			s.Add(v)
		}
		return SetValue{S: s}, nil

	case *ast.BinaryExpression:
		return m.evalBinary(n, env)

	case *ast.UnaryExpression:
		return m.evalUnary(n, env)

	case *ast.AndExpression:
		l, rep := m.evalExpr(n.Left, env)
		if rep != nil {
			return nil, rep
		}
		if !asBool(l) {
			return BoolValue{V: false}, nil
		}
		r, rep := m.evalExpr(n.Right, env)
		if rep != nil {
			return nil, rep
		}
		return BoolValue{V: asBool(r)}, nil

	case *ast.OrExpression:
		l, rep := m.evalExpr(n.Left, env)
		if rep != nil {
			return nil, rep
		}
		if asBool(l) {
			return BoolValue{V: true}, nil
		}
		r, rep := m.evalExpr(n.Right, env)
		if rep != nil {
			return nil, rep
		}
		return BoolValue{V: asBool(r)}, nil

	case *ast.CallExpression:
		return m.evalCall(n, env)

	case *ast.MemberExpression:
		obj, rep := m.evalExpr(n.Object, env)
		if rep != nil {
			return nil, rep
		}
		return m.evalMember(obj, n.Property, n.Pos)

	case *ast.IndexExpression:
		obj, rep := m.evalExpr(n.Object, env)
		if rep != nil {
			return nil, rep
		}
		idx, rep := m.evalExpr(n.Index, env)
		if rep != nil {
			return nil, rep
		}
		return m.evalIndex(obj, idx, n.Pos)

	case *ast.RangeExpression:
		return m.evalRange(n, env)

	case *ast.TypeOfExpression:
		v, rep := m.evalExpr(n.Operand, env)
		if rep != nil {
			return nil, rep
		}
		return StringValue{V: runtimeTypeName(v)}, nil

	case *ast.PredicateCheckExpression:
		return m.evalPredicateCheck(n, env)

	default:
		return nil, errors.NewInternalError(errors.INT001, e.Position(), fmt.Sprintf("unhandled expression kind %T", e))
	}
}

func (m *Machine) evalRange(n *ast.RangeExpression, env *Environment) (Value, *errors.Report) {
	var start int
	if n.Start != nil {
		v, rep := m.evalExpr(n.Start, env)
		if rep != nil {
			return nil, rep
		}
		iv, ok := v.(IntValue)
		if !ok {
			return nil, errors.NewRuntimeTypeError(errors.RTT001, n.Pos, "range bounds must be int")
		}
		start = int(iv.V)
	}
	var end *int
	if n.End != nil {
		v, rep := m.evalExpr(n.End, env)
		if rep != nil {
			return nil, rep
		}
		iv, ok := v.(IntValue)
		if !ok {
			return nil, errors.NewRuntimeTypeError(errors.RTT001, n.Pos, "range bounds must be int")
		}
		e := int(iv.V)
		end = &e
	}
	return RangeValue{R: containers.NewLazyRange(start, end, n.Inclusive)}, nil
}

func (m *Machine) evalPredicateCheck(n *ast.PredicateCheckExpression, env *Environment) (Value, *errors.Report) {
	args := make([]any, len(n.Args))
	for i, a := range n.Args {
		v, rep := m.evalExpr(a, env)
		if rep != nil {
			return nil, rep
		}
		args[i] = ToNative(v)
	}
	subj, rep := m.evalExpr(n.Subject, env)
	if rep != nil {
		return nil, rep
	}
	ok, err := invariant.Eval(n.PredicateName, ToNative(subj), args)
	if err != nil {
		return nil, errors.NewVerificationFailure(errors.VER004, n.Pos, err.Error(), "")
	}
	return BoolValue{V: ok}, nil
}

func runtimeTypeName(v Value) string {
	switch v.(type) {
	case IntValue:
		return "int"
	case FloatValue:
		return "float"
	case StringValue:
		return "string"
	case BoolValue:
		return "bool"
	case VoidValue:
		return "void"
	case ArrayValue:
		return "Array"
	case MapValue:
		return "Map"
	case SetValue:
		return "Set"
	case HeapValue:
		return "Heap"
	case HeapMapValue:
		return "HeapMap"
	case BinaryTreeValue:
		return "BinaryTree"
	case AVLTreeValue:
		return "AVLTree"
	case GraphValue:
		return "Graph"
	case RangeValue:
		return "Range"
	case TupleValue:
		return "tuple"
	case RecordValue:
		return "record"
	case FunctionValue, BuiltinValue:
		return "function"
	default:
		return "unknown"
	}
}

func (m *Machine) evalUnary(n *ast.UnaryExpression, env *Environment) (Value, *errors.Report) {
	v, rep := m.evalExpr(n.Operand, env)
	if rep != nil {
		return nil, rep
	}
	switch n.Op {
	case "-":
		switch val := v.(type) {
		case IntValue:
			return IntValue{V: -val.V}, nil
		case FloatValue:
			return FloatValue{V: -val.V}, nil
		}
		return nil, errors.NewRuntimeTypeError(errors.RTT002, n.Pos, "unary - requires a numeric operand")
	case "!":
		return BoolValue{V: !asBool(v)}, nil
	default:
		return nil, errors.NewInternalError(errors.INT001, n.Pos, fmt.Sprintf("unknown unary operator %q", n.Op))
	}
}

func numericPair(a, b Value) (af, bf float64, isFloat, ok bool) {
	switch av := a.(type) {
	case IntValue:
		switch bv := b.(type) {
		case IntValue:
			return float64(av.V), float64(bv.V), false, true
		case FloatValue:
			return float64(av.V), bv.V, true, true
		}
	case FloatValue:
		switch bv := b.(type) {
		case IntValue:
			return av.V, float64(bv.V), true, true
		case FloatValue:
			return av.V, bv.V, true, true
		}
	}
	return 0, 0, false, false
}

func (m *Machine) evalBinary(n *ast.BinaryExpression, env *Environment) (Value, *errors.Report) {
	l, rep := m.evalExpr(n.Left, env)
	if rep != nil {
		return nil, rep
	}
	r, rep := m.evalExpr(n.Right, env)
	if rep != nil {
		return nil, rep
	}

	switch n.Op {
	case "==":
		return BoolValue{V: valuesEqual(l, r)}, nil
	case "!=":
		return BoolValue{V: !valuesEqual(l, r)}, nil
	case "+":
		if ls, ok := l.(StringValue); ok {
			if rs, ok := r.(StringValue); ok {
				return StringValue{V: ls.V + rs.V}, nil
			}
		}
	}

	switch n.Op {
	case "+", "-", "*", "/", "%", "<", "<=", ">", ">=":
		af, bf, isFloat, ok := numericPair(l, r)
		if !ok {
			return nil, errors.NewRuntimeTypeError(errors.RTT002, n.Pos, fmt.Sprintf("operator %q requires numeric operands", n.Op))
		}
		switch n.Op {
		case "<":
			return BoolValue{V: af < bf}, nil
		case "<=":
			return BoolValue{V: af <= bf}, nil
		case ">":
			return BoolValue{V: af > bf}, nil
		case ">=":
			return BoolValue{V: af >= bf}, nil
		}
		if n.Op == "/" && bf == 0 {
			return nil, errors.NewRuntimeTypeError(errors.RTT003, n.Pos, "division by zero")
		}
		if n.Op == "%" && bf == 0 {
			return nil, errors.NewRuntimeTypeError(errors.RTT003, n.Pos, "modulo by zero")
		}
		if !isFloat {
			li := l.(IntValue).V
			ri := r.(IntValue).V
			switch n.Op {
			case "+":
				return IntValue{V: li + ri}, nil
			case "-":
				return IntValue{V: li - ri}, nil
			case "*":
				return IntValue{V: li * ri}, nil
			case "/":
				return IntValue{V: li / ri}, nil
			case "%":
				return IntValue{V: li % ri}, nil
			}
		}
		switch n.Op {
		case "+":
			return FloatValue{V: af + bf}, nil
		case "-":
			return FloatValue{V: af - bf}, nil
		case "*":
			return FloatValue{V: af * bf}, nil
		case "/":
			return FloatValue{V: af / bf}, nil
		case "%":
			return nil, errors.NewRuntimeTypeError(errors.RTT002, n.Pos, "%% requires int operands")
		}
	}
	return nil, errors.NewInternalError(errors.INT001, n.Pos, fmt.Sprintf("unknown binary operator %q", n.Op))
}

func valuesEqual(a, b Value) bool {
	if af, bf, _, ok := numericPair(a, b); ok {
		return af == bf
	}
	switch av := a.(type) {
	case StringValue:
		bv, ok := b.(StringValue)
		return ok && av.V == bv.V
	case BoolValue:
		bv, ok := b.(BoolValue)
		return ok && av.V == bv.V
	case VoidValue:
		_, ok := b.(VoidValue)
		return ok
	}
	return a.String() == b.String() && fmt.Sprintf("%T", a) == fmt.Sprintf("%T", b)
}

func (m *Machine) evalMember(obj Value, property string, pos ast.Pos) (Value, *errors.Report) {
	if rv, ok := obj.(RecordValue); ok {
		if v, ok := rv.Fields[property]; ok {
			return v, nil
		}
		return nil, errors.NewIndexError(errors.IDX002, pos, fmt.Sprintf("record has no field %q", property))
	}
	return m.callMethod(obj, property, nil, pos)
}

func (m *Machine) evalIndex(obj, idx Value, pos ast.Pos) (Value, *errors.Report) {
	switch v := obj.(type) {
	case ArrayValue:
		if i, ok := idx.(IntValue); ok {
			val, ok := v.Arr.Get(int(i.V))
			if !ok {
				return nil, errors.NewIndexError(errors.IDX001, pos, "array index out of range")
			}
			return val, nil
		}
		if rv, ok := idx.(RangeValue); ok {
			bounds, ok := rv.R.ToArray()
			if !ok {
				return nil, errors.NewRuntimeTypeError(errors.RTT001, pos, "cannot slice with an unbounded range")
			}
			out := make([]Value, 0, len(bounds))
			for _, i := range bounds {
				val, ok := v.Arr.Get(i)
				if !ok {
					return nil, errors.NewIndexError(errors.IDX001, pos, "array index out of range")
				}
				out = append(out, val)
			}
			return ArrayValue{Arr: containers.NewArray(out...)}, nil
		}
		if idxArr, ok := idx.(ArrayValue); ok {
			out := make([]Value, 0, idxArr.Arr.Length())
			for _, iv := range idxArr.Arr.Values() {
				i, ok := iv.(IntValue)
				if !ok {
					return nil, errors.NewRuntimeTypeError(errors.RTT001, pos, "array fancy-index elements must be int")
				}
				val, ok := v.Arr.Get(int(i.V))
				if !ok {
					return nil, errors.NewIndexError(errors.IDX001, pos, "array index out of range")
				}
				out = append(out, val)
			}
			return ArrayValue{Arr: containers.NewArray(out...)}, nil
		}
		return nil, errors.NewRuntimeTypeError(errors.RTT001, pos, "array index must be an int, array(int), or range")
	case RecordValue:
		s, ok := idx.(StringValue)
		if !ok {
			return nil, errors.NewRuntimeTypeError(errors.RTT001, pos, "record index must be a string")
		}
		val, ok := v.Fields[s.V]
		if !ok {
			return nil, errors.NewIndexError(errors.IDX002, pos, fmt.Sprintf("record has no field %q", s.V))
		}
		return val, nil
	case TupleValue:
		i, ok := idx.(IntValue)
		if !ok || int(i.V) < 0 || int(i.V) >= len(v.Elems) {
			return nil, errors.NewIndexError(errors.IDX001, pos, "tuple index out of range")
		}
		return v.Elems[int(i.V)], nil
	case MapValue:
		val, ok := v.M.Get(idx)
		if !ok {
			return nil, errors.NewIndexError(errors.IDX003, pos, fmt.Sprintf("map has no key %s", idx.String()))
		}
		return val, nil
	case StringValue:
		i, ok := idx.(IntValue)
		if !ok || int(i.V) < 0 || int(i.V) >= len(v.V) {
			return nil, errors.NewIndexError(errors.IDX001, pos, "string index out of range")
		}
		return StringValue{V: string(v.V[i.V])}, nil
	default:
		return nil, errors.NewRuntimeTypeError(errors.RTT001, pos, "value does not support indexing")
	}
}
