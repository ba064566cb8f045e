package types

import (
	"fmt"

	"github.com/dingf3ng/schema/internal/ast"
	"github.com/dingf3ng/schema/internal/errors"
)

// Context is what the expression synthesizer needs from its caller: a way
// to look up a variable's current RefinedType, a way to look up a
// function's signature, and a shared equality-memoization cache for the
// current inference/refinement pass (spec §4.1).
type Context interface {
	LookupVar(name string) (RefinedType, bool)
	LookupFunc(name string) (*FuncInfo, bool)
	Cache() *EqualityCache
}

// builtinConstructors maps a built-in container constructor's identifier
// name to the Type it produces, parameterized by fresh weak placeholders
// (spec §4.1, CallExpression / Identifier callee rule).
func builtinConstructor(name string) (Type, bool) {
	switch name {
	case "Map":
		return &TMap{Key: NewWeak(), Value: NewWeak()}, true
	case "Set":
		return &TSet{Elem: NewWeak()}, true
	case "MinHeap":
		return &THeap{Elem: NewWeak(), Min: true}, true
	case "MaxHeap":
		return &THeap{Elem: NewWeak(), Min: false}, true
	case "MinHeapMap":
		return &THeapMap{Key: NewWeak(), Value: NewWeak(), Min: true}, true
	case "MaxHeapMap":
		return &THeapMap{Key: NewWeak(), Value: NewWeak(), Min: false}, true
	case "Graph":
		return &TGraph{Node: NewWeak()}, true
	case "BinaryTree":
		return &TBinaryTree{Elem: NewWeak()}, true
	case "AVLTree":
		return &TAVLTree{Elem: NewWeak()}, true
	default:
		return nil, false
	}
}

// SynthExpr produces a Type for any expression given a lookup context
// (spec §4.1 "Expression synthesis"). On error it returns a *errors.Report
// describing the offending construct and its source position.
func SynthExpr(ctx Context, e ast.Expression) (Type, *errors.Report) {
	switch n := e.(type) {
	case *ast.IntLiteral:
		return Int, nil
	case *ast.FloatLiteral:
		return Float, nil
	case *ast.StringLiteral:
		return String_, nil
	case *ast.BoolLiteral:
		return Boolean, nil

	case *ast.Identifier:
		if n.Name == "_" {
			return nil, errors.NewNameError(errors.NAM002, n.Pos, "`_` cannot be read as a value")
		}
		if rt, ok := ctx.LookupVar(n.Name); ok {
			return rt.Static, nil
		}
		if fi, ok := ctx.LookupFunc(n.Name); ok {
			return &TFunction{Params: fi.Params, Return: fi.Return, Variadic: fi.Variadic}, nil
		}
		return nil, errors.NewNameError(errors.NAM001, n.Pos, fmt.Sprintf("undefined identifier %q", n.Name))

	case *ast.MetaIdentifier:
		// Bare meta-identifiers denote either a string (textual use) or a
		// first-class predicate (curried construction); callers that know
		// which context they're in (call callee vs. plain value) decide,
		// so here we default to predicate, the more specific of the two.
		return PredicateType, nil

	case *ast.ArrayLiteral:
		return synthArrayLiteral(ctx, n)
	case *ast.MapLiteral:
		return synthMapLiteral(ctx, n)
	case *ast.SetLiteral:
		return synthSetLiteral(ctx, n)

	case *ast.BinaryExpression:
		return synthBinary(ctx, n)
	case *ast.AndExpression:
		return synthBoolBoth(ctx, n.Left, n.Right, n.Pos)
	case *ast.OrExpression:
		return synthBoolBoth(ctx, n.Left, n.Right, n.Pos)
	case *ast.UnaryExpression:
		return synthUnary(ctx, n)

	case *ast.TypeOfExpression:
		if _, rep := SynthExpr(ctx, n.Operand); rep != nil {
			return nil, rep
		}
		return String_, nil

	case *ast.PredicateCheckExpression:
		for _, a := range n.Args {
			if _, rep := SynthExpr(ctx, a); rep != nil {
				return nil, rep
			}
		}
		if _, rep := SynthExpr(ctx, n.Subject); rep != nil {
			return nil, rep
		}
		return Boolean, nil

	case *ast.RangeExpression:
		return synthRange(ctx, n)

	case *ast.CallExpression:
		return synthCall(ctx, n)

	case *ast.MemberExpression:
		objTy, rep := SynthExpr(ctx, n.Object)
		if rep != nil {
			return nil, rep
		}
		memberTy, ok := MemberType(objTy, n.Property)
		if !ok {
			return nil, errors.NewTypeError(errors.TYP003, n.Pos,
				fmt.Sprintf("unknown member %q on %s", n.Property, objTy.String()))
		}
		return memberTy, nil

	case *ast.IndexExpression:
		return synthIndex(ctx, n)

	default:
		return nil, errors.NewTypeError(errors.TYP008, e.Position(),
			fmt.Sprintf("cannot synthesize a type for %s", ast.Describe(e)))
	}
}

func synthArrayLiteral(ctx Context, n *ast.ArrayLiteral) (Type, *errors.Report) {
	if len(n.Elements) == 0 {
		return &TArray{Elem: NewWeak()}, nil
	}
	first, rep := SynthExpr(ctx, n.Elements[0])
	if rep != nil {
		return nil, rep
	}
	for _, el := range n.Elements[1:] {
		ty, rep := SynthExpr(ctx, el)
		if rep != nil {
			return nil, rep
		}
		if !EqualsMemo(first, ty, ctx.Cache()) {
			return nil, errors.NewTypeError(errors.TYP001, n.Pos,
				fmt.Sprintf("array literal mixes %s and %s", first.String(), ty.String()))
		}
	}
	return &TArray{Elem: first}, nil
}

func synthMapLiteral(ctx Context, n *ast.MapLiteral) (Type, *errors.Report) {
	if len(n.Entries) == 0 {
		return &TMap{Key: NewWeak(), Value: NewWeak()}, nil
	}
	kTy, rep := SynthExpr(ctx, n.Entries[0].Key)
	if rep != nil {
		return nil, rep
	}
	vTy, rep := SynthExpr(ctx, n.Entries[0].Value)
	if rep != nil {
		return nil, rep
	}
	for _, entry := range n.Entries[1:] {
		k, rep := SynthExpr(ctx, entry.Key)
		if rep != nil {
			return nil, rep
		}
		v, rep := SynthExpr(ctx, entry.Value)
		if rep != nil {
			return nil, rep
		}
		if !EqualsMemo(kTy, k, ctx.Cache()) || !EqualsMemo(vTy, v, ctx.Cache()) {
			return nil, errors.NewTypeError(errors.TYP001, n.Pos, "map literal entries have inconsistent key/value types")
		}
	}
	return &TMap{Key: kTy, Value: vTy}, nil
}

func synthSetLiteral(ctx Context, n *ast.SetLiteral) (Type, *errors.Report) {
	if len(n.Elements) == 0 {
		return &TSet{Elem: NewWeak()}, nil
	}
	first, rep := SynthExpr(ctx, n.Elements[0])
	if rep != nil {
		return nil, rep
	}
	for _, el := range n.Elements[1:] {
		ty, rep := SynthExpr(ctx, el)
		if rep != nil {
			return nil, rep
		}
		if !EqualsMemo(first, ty, ctx.Cache()) {
			return nil, errors.NewTypeError(errors.TYP001, n.Pos, "set literal has inconsistent element types")
		}
	}
	return &TSet{Elem: first}, nil
}

func isNumeric(t Type) bool {
	d := Deref(t)
	if IsWeak(d) || d.Kind() == "dynamic" || d.Kind() == "poly" {
		return true
	}
	if d == Int || d == Float {
		return true
	}
	if c, ok := d.(*TCon); ok {
		return c.Name == "int" || c.Name == "float"
	}
	if d.Kind() == "intersection" {
		return EqualsMemo(d, Int, nil) || EqualsMemo(d, Float, nil)
	}
	return false
}

func isInt(t Type) bool {
	d := Deref(t)
	if IsWeak(d) || d.Kind() == "dynamic" {
		return true
	}
	c, ok := d.(*TCon)
	return ok && c.Name == "int"
}

func isFloatOnly(t Type) bool {
	d := Deref(t)
	c, ok := d.(*TCon)
	return ok && c.Name == "float"
}

func isBoolean(t Type) bool {
	d := Deref(t)
	if IsWeak(d) || d.Kind() == "dynamic" {
		return true
	}
	return EqualsMemo(d, Boolean, nil)
}

func isString(t Type) bool {
	d := Deref(t)
	if IsWeak(d) || d.Kind() == "dynamic" {
		return true
	}
	return EqualsMemo(d, String_, nil)
}

func synthBinary(ctx Context, n *ast.BinaryExpression) (Type, *errors.Report) {
	l, rep := SynthExpr(ctx, n.Left)
	if rep != nil {
		return nil, rep
	}
	r, rep := SynthExpr(ctx, n.Right)
	if rep != nil {
		return nil, rep
	}

	if l.Kind() == "dynamic" || r.Kind() == "dynamic" {
		return Dynamic, nil
	}

	switch n.Op {
	case "+":
		if isString(l) && isString(r) && !IsWeak(l) && !IsWeak(r) {
			return String_, nil
		}
		return numericBinop(l, r, n)
	case "-", "*", "%":
		return numericBinop(l, r, n)
	case "/":
		if IsWeak(l) || IsWeak(r) {
			return NewWeak(), nil
		}
		if isInt(l) && isInt(r) {
			return Int, nil
		}
		return nil, errors.NewTypeError(errors.TYP002, n.Pos, "integer division `/` requires int operands")
	case "/.":
		if !isNumeric(l) || !isNumeric(r) {
			return nil, errors.NewTypeError(errors.TYP002, n.Pos, "`/.` requires numeric operands")
		}
		return Float, nil
	case "<<", ">>":
		if IsWeak(l) || IsWeak(r) {
			return NewWeak(), nil
		}
		if isInt(l) && isInt(r) {
			return Int, nil
		}
		return nil, errors.NewTypeError(errors.TYP002, n.Pos, fmt.Sprintf("`%s` requires int operands", n.Op))
	case "<", "<=", ">", ">=":
		if !isNumeric(l) || !isNumeric(r) {
			return nil, errors.NewTypeError(errors.TYP002, n.Pos, fmt.Sprintf("`%s` requires numeric operands", n.Op))
		}
		return Boolean, nil
	case "==", "!=":
		return Boolean, nil
	default:
		return nil, errors.NewTypeError(errors.TYP002, n.Pos, fmt.Sprintf("unknown operator %q", n.Op))
	}
}

func numericBinop(l, r Type, n *ast.BinaryExpression) (Type, *errors.Report) {
	if IsWeak(l) || IsWeak(r) {
		return NewWeak(), nil
	}
	if !isNumeric(l) || !isNumeric(r) {
		return nil, errors.NewTypeError(errors.TYP002, n.Pos,
			fmt.Sprintf("`%s` requires numeric operands, got %s and %s", n.Op, l.String(), r.String()))
	}
	if isInt(l) && isInt(r) {
		return Int, nil
	}
	return Float, nil
}

func synthBoolBoth(ctx Context, left, right ast.Expression, pos ast.Pos) (Type, *errors.Report) {
	l, rep := SynthExpr(ctx, left)
	if rep != nil {
		return nil, rep
	}
	r, rep := SynthExpr(ctx, right)
	if rep != nil {
		return nil, rep
	}
	if !isBoolean(l) || !isBoolean(r) {
		return nil, errors.NewTypeError(errors.TYP006, pos, "`&&`/`||` require boolean operands")
	}
	return Boolean, nil
}

func synthUnary(ctx Context, n *ast.UnaryExpression) (Type, *errors.Report) {
	operand, rep := SynthExpr(ctx, n.Operand)
	if rep != nil {
		return nil, rep
	}
	if operand.Kind() == "dynamic" {
		return Dynamic, nil
	}
	switch n.Op {
	case "-":
		if IsWeak(operand) {
			return NewWeak(), nil
		}
		if !isNumeric(operand) {
			return nil, errors.NewTypeError(errors.TYP002, n.Pos, "unary `-` requires a numeric operand")
		}
		if isFloatOnly(operand) {
			return Float, nil
		}
		return Int, nil
	case "!":
		if !isBoolean(operand) {
			return nil, errors.NewTypeError(errors.TYP006, n.Pos, "unary `!` requires a boolean operand")
		}
		return Boolean, nil
	default:
		return nil, errors.NewTypeError(errors.TYP002, n.Pos, fmt.Sprintf("unknown unary operator %q", n.Op))
	}
}

func synthRange(ctx Context, n *ast.RangeExpression) (Type, *errors.Report) {
	var startTy, endTy Type
	var rep *errors.Report
	if n.Start != nil {
		startTy, rep = SynthExpr(ctx, n.Start)
		if rep != nil {
			return nil, rep
		}
	}
	if n.End != nil {
		endTy, rep = SynthExpr(ctx, n.End)
		if rep != nil {
			return nil, rep
		}
	}

	finite := n.End != nil
	if finite {
		if isString(startTy) && isString(endTy) {
			return &TArray{Elem: String_}, nil
		}
		if (startTy == nil || isInt(startTy)) && isInt(endTy) {
			return &TArray{Elem: Int}, nil
		}
	}
	return Range, nil
}

func synthCall(ctx Context, n *ast.CallExpression) (Type, *errors.Report) {
	switch callee := n.Callee.(type) {
	case *ast.MetaIdentifier:
		for _, a := range n.Args {
			if _, rep := SynthExpr(ctx, a); rep != nil {
				return nil, rep
			}
		}
		return PredicateType, nil

	case *ast.Identifier:
		if ctorTy, ok := builtinConstructor(callee.Name); ok {
			return ctorTy, nil
		}
		fi, ok := ctx.LookupFunc(callee.Name)
		if !ok {
			return nil, errors.NewNameError(errors.NAM001, n.Pos, fmt.Sprintf("undefined function %q", callee.Name))
		}
		if rep := checkArgs(ctx, fi.Params, fi.Variadic, n.Args, n.Pos); rep != nil {
			return nil, rep
		}
		return fi.Return, nil

	case *ast.MemberExpression:
		methodTy, rep := SynthExpr(ctx, callee)
		if rep != nil {
			return nil, rep
		}
		fnTy, ok := Deref(methodTy).(*TFunction)
		if !ok {
			if IsWeak(methodTy) || methodTy.Kind() == "dynamic" {
				for _, a := range n.Args {
					if _, rep := SynthExpr(ctx, a); rep != nil {
						return nil, rep
					}
				}
				return methodTy, nil
			}
			return nil, errors.NewTypeError(errors.TYP008, n.Pos, "callee is not callable")
		}
		if rep := checkArgs(ctx, fnTy.Params, fnTy.Variadic, n.Args, n.Pos); rep != nil {
			return nil, rep
		}
		return fnTy.Return, nil

	default:
		calleeTy, rep := SynthExpr(ctx, n.Callee)
		if rep != nil {
			return nil, rep
		}
		fnTy, ok := Deref(calleeTy).(*TFunction)
		if !ok {
			return nil, errors.NewTypeError(errors.TYP008, n.Pos, "callee is not callable")
		}
		if rep := checkArgs(ctx, fnTy.Params, fnTy.Variadic, n.Args, n.Pos); rep != nil {
			return nil, rep
		}
		return fnTy.Return, nil
	}
}

func checkArgs(ctx Context, params []Type, variadic bool, args []ast.Expression, pos ast.Pos) *errors.Report {
	if !variadic && len(args) != len(params) {
		return errors.NewTypeError(errors.TYP004, pos,
			fmt.Sprintf("expected %d argument(s), got %d", len(params), len(args)))
	}
	for i, a := range args {
		argTy, rep := SynthExpr(ctx, a)
		if rep != nil {
			return rep
		}
		if variadic {
			continue
		}
		if i < len(params) && !EqualsMemo(argTy, params[i], ctx.Cache()) {
			return errors.NewTypeError(errors.TYP005, a.Position(),
				fmt.Sprintf("argument %d: expected %s, got %s", i+1, params[i].String(), argTy.String()))
		}
	}
	return nil
}

func synthIndex(ctx Context, n *ast.IndexExpression) (Type, *errors.Report) {
	objTy, rep := SynthExpr(ctx, n.Object)
	if rep != nil {
		return nil, rep
	}
	idxTy, rep := SynthExpr(ctx, n.Index)
	if rep != nil {
		return nil, rep
	}

	if IsWeak(objTy) {
		return NewWeak(), nil
	}
	if objTy.Kind() == "dynamic" {
		return Dynamic, nil
	}

	switch o := Deref(objTy).(type) {
	case *TArray:
		if isInt(idxTy) {
			return o.Elem, nil
		}
		if arr, ok := Deref(idxTy).(*TArray); ok && isInt(arr.Elem) {
			return o, nil
		}
		if idxTy.Kind() == "range" {
			return o, nil
		}
		return nil, errors.NewTypeError(errors.TYP008, n.Pos, "array index must be int, array(int), or range")
	case *TMap:
		if !EqualsMemo(idxTy, o.Key, ctx.Cache()) {
			return nil, errors.NewTypeError(errors.TYP008, n.Pos, "map index type does not match key type")
		}
		return o.Value, nil
	case *TTuple:
		lit, ok := n.Index.(*ast.IntLiteral)
		if !ok {
			return nil, errors.NewTypeError(errors.TYP008, n.Pos, "tuple index must be an integer literal")
		}
		idx := int(lit.Value)
		if idx < 0 || idx >= len(o.Elems) {
			return nil, errors.NewIndexError(errors.IDX001, n.Pos, "tuple index out of range")
		}
		return o.Elems[idx], nil
	case *TRecord:
		lit, ok := n.Index.(*ast.StringLiteral)
		if !ok {
			return nil, errors.NewTypeError(errors.TYP008, n.Pos, "record index must be a string literal")
		}
		field := o.Lookup(lit.Value)
		if field == nil {
			return nil, errors.NewIndexError(errors.IDX002, n.Pos, fmt.Sprintf("record has no field %q", lit.Value))
		}
		return field, nil
	default:
		return nil, errors.NewTypeError(errors.TYP008, n.Pos, fmt.Sprintf("%s is not indexable", objTy.String()))
	}
}
