package types

import (
	"fmt"

	"github.com/dingf3ng/schema/internal/ast"
	"github.com/dingf3ng/schema/internal/errors"
)

// Inferer drives the three-pass static inference over a whole program
// (spec §4.1): function registration, then per-function local inference,
// then inference of the implicit top-level statement sequence. A single
// Inferer owns the program's global FuncEnv and a shared EqualityCache.
type Inferer struct {
	Funcs *FuncEnv
	Cache *EqualityCache
}

// NewInferer creates an Inferer with a fresh function environment.
func NewInferer() *Inferer {
	return &Inferer{Funcs: NewFuncEnv(), Cache: NewEqualityCache()}
}

// funcContext adapts a TypeEnv/FuncEnv/EqualityCache triple to the Context
// interface that SynthExpr needs.
type funcContext struct {
	vars  *TypeEnv
	funcs *FuncEnv
	cache *EqualityCache
}

func (c *funcContext) LookupVar(name string) (RefinedType, bool) { return c.vars.Lookup(name) }
func (c *funcContext) LookupFunc(name string) (*FuncInfo, bool) {
	fi := c.funcs.Lookup(name)
	return fi, fi != nil
}
func (c *funcContext) Cache() *EqualityCache { return c.cache }

// InferProgram runs all three passes over prog. Pass 1 registers every
// top-level function's signature (weak placeholders for anything
// unannotated, so mutually recursive functions can reference each other).
// Pass 2 infers each function body, refining its own return type in place.
// Pass 3 infers the implicit top-level statement sequence under a fresh
// root scope that shares the same FuncEnv.
func (inf *Inferer) InferProgram(prog *ast.Program) *errors.Report {
	for _, stmt := range prog.Body {
		if fd, ok := stmt.(*ast.FunctionDeclaration); ok {
			if rep := inf.registerFunction(fd); rep != nil {
				return rep
			}
		}
	}

	for _, stmt := range prog.Body {
		if fd, ok := stmt.(*ast.FunctionDeclaration); ok {
			if rep := inf.inferFunction(fd); rep != nil {
				return rep
			}
		}
	}

	root := NewTypeEnv()
	ctx := &funcContext{vars: root, funcs: inf.Funcs, cache: inf.Cache}
	for _, stmt := range prog.Body {
		if _, ok := stmt.(*ast.FunctionDeclaration); ok {
			continue
		}
		if rep := inf.inferStatement(ctx, stmt, nil); rep != nil {
			return rep
		}
	}
	return nil
}

func (inf *Inferer) registerFunction(fd *ast.FunctionDeclaration) *errors.Report {
	params := make([]Type, len(fd.Params))
	for i, p := range fd.Params {
		ty, rep := resolveAnnotation(p.Type)
		if rep != nil {
			return rep
		}
		params[i] = ty
	}
	ret, rep := resolveAnnotation(fd.ReturnType)
	if rep != nil {
		return rep
	}
	inf.Funcs.Register(&FuncInfo{Name: fd.Name, Params: params, Return: ret})
	return nil
}

func (inf *Inferer) inferFunction(fd *ast.FunctionDeclaration) *errors.Report {
	fi := inf.Funcs.Lookup(fd.Name)
	scope := NewTypeEnv()
	for i, p := range fd.Params {
		scope.Define(p.Name, NewRefinedType(fi.Params[i]))
	}
	ctx := &funcContext{vars: scope, funcs: inf.Funcs, cache: inf.Cache}

	var returns []Type
	for _, s := range fd.Body.Body {
		if rep := inf.inferStatement(ctx, s, &returns); rep != nil {
			return rep
		}
	}

	collapsed, rep := collapseReturns(returns, fd.Pos)
	if rep != nil {
		return rep
	}
	if w, ok := fi.Return.(*TWeak); ok && w.Resolved == nil {
		w.Resolved = collapsed
	} else if !EqualsMemo(collapsed, fi.Return, inf.Cache) {
		return errors.NewTypeError(errors.TYP007, fd.Pos,
			fmt.Sprintf("function %q: body returns %s, declared %s", fd.Name, collapsed.String(), fi.Return.String()))
	}
	return nil
}

func collapseReturns(returns []Type, pos ast.Pos) (Type, *errors.Report) {
	if len(returns) == 0 {
		return Void, nil
	}
	first := returns[0]
	for _, t := range returns[1:] {
		if !EqualsMemo(first, t, nil) {
			return nil, errors.NewTypeError(errors.TYP007, pos,
				fmt.Sprintf("incompatible return types: %s and %s", first.String(), t.String()))
		}
	}
	return first, nil
}

// inferStatement type-checks stmt under ctx. returns, when non-nil,
// accumulates this function's ReturnStatement candidate types.
func (inf *Inferer) inferStatement(ctx *funcContext, stmt ast.Statement, returns *[]Type) *errors.Report {
	switch s := stmt.(type) {
	case *ast.VariableDeclaration:
		for _, d := range s.Declarators {
			if rep := inf.inferDeclarator(ctx, d); rep != nil {
				return rep
			}
		}
		return nil

	case *ast.AssignmentStatement:
		valTy, rep := SynthExpr(ctx, s.Value)
		if rep != nil {
			return rep
		}
		if id, ok := s.Target.(*ast.Identifier); ok {
			if !ctx.vars.Set(id.Name, NewRefinedType(valTy)) {
				return errors.NewNameError(errors.NAM003, s.Pos, fmt.Sprintf("assignment to undeclared name %q", id.Name))
			}
			return nil
		}
		_, rep = SynthExpr(ctx, s.Target)
		return rep

	case *ast.IfStatement:
		condTy, rep := SynthExpr(ctx, s.Cond)
		if rep != nil {
			return rep
		}
		if !isBoolean(condTy) {
			return errors.NewTypeError(errors.TYP006, s.Cond.Position(), "if condition must be boolean")
		}
		if rep := inf.inferBlockIn(ctx, s.Then, returns); rep != nil {
			return rep
		}
		if s.Else != nil {
			return inf.inferStatement(ctx, s.Else, returns)
		}
		return nil

	case *ast.WhileStatement:
		condTy, rep := SynthExpr(ctx, s.Cond)
		if rep != nil {
			return rep
		}
		if !isBoolean(condTy) {
			return errors.NewTypeError(errors.TYP006, s.Cond.Position(), "while condition must be boolean")
		}
		return inf.inferBlockIn(ctx, s.Body, returns)

	case *ast.UntilStatement:
		condTy, rep := SynthExpr(ctx, s.Cond)
		if rep != nil {
			return rep
		}
		if !isBoolean(condTy) {
			return errors.NewTypeError(errors.TYP006, s.Cond.Position(), "until condition must be boolean")
		}
		return inf.inferBlockIn(ctx, s.Body, returns)

	case *ast.ForStatement:
		iterTy, rep := SynthExpr(ctx, s.Iterable)
		if rep != nil {
			return rep
		}
		elemTy, rep := forElementType(iterTy, s.Pos)
		if rep != nil {
			return rep
		}
		child := &funcContext{vars: ctx.vars.Child(), funcs: ctx.funcs, cache: ctx.cache}
		child.vars.Define(s.VarName, NewRefinedType(elemTy))
		for _, st := range s.Body.Body {
			if rep := inf.inferStatement(child, st, returns); rep != nil {
				return rep
			}
		}
		return nil

	case *ast.ReturnStatement:
		if s.Value == nil {
			if returns != nil {
				*returns = append(*returns, Void)
			}
			return nil
		}
		ty, rep := SynthExpr(ctx, s.Value)
		if rep != nil {
			return rep
		}
		if returns != nil {
			*returns = append(*returns, ty)
		}
		return nil

	case *ast.BlockStatement:
		return inf.inferBlockIn(ctx, s, returns)

	case *ast.ExpressionStatement:
		_, rep := SynthExpr(ctx, s.Expr)
		return rep

	case *ast.InvariantStatement:
		return inf.inferCheckStatement(ctx, s.Cond, s.Message, s.Pos)

	case *ast.AssertStatement:
		return inf.inferCheckStatement(ctx, s.Cond, s.Message, s.Pos)

	default:
		return errors.NewInternalError(errors.INT001, stmt.Position(), "unhandled statement kind during inference")
	}
}

func (inf *Inferer) inferCheckStatement(ctx *funcContext, cond, message ast.Expression, pos ast.Pos) *errors.Report {
	condTy, rep := SynthExpr(ctx, cond)
	if rep != nil {
		return rep
	}
	if !isBoolean(condTy) {
		return errors.NewTypeError(errors.TYP006, pos, "condition must be boolean")
	}
	if message != nil {
		msgTy, rep := SynthExpr(ctx, message)
		if rep != nil {
			return rep
		}
		if !isString(msgTy) {
			return errors.NewTypeError(errors.TYP002, message.Position(), "message must be a string")
		}
	}
	return nil
}

// inferBlockIn infers block's statements in a fresh child scope, per
// spec §4.1's save/restore-on-block-exit rule.
func (inf *Inferer) inferBlockIn(ctx *funcContext, block *ast.BlockStatement, returns *[]Type) *errors.Report {
	child := &funcContext{vars: ctx.vars.Child(), funcs: ctx.funcs, cache: ctx.cache}
	for _, st := range block.Body {
		if rep := inf.inferStatement(child, st, returns); rep != nil {
			return rep
		}
	}
	return nil
}

func (inf *Inferer) inferDeclarator(ctx *funcContext, d *ast.Declarator) *errors.Report {
	var annotTy Type
	if d.Type != nil {
		ty, rep := resolveAnnotation(d.Type)
		if rep != nil {
			return rep
		}
		annotTy = ty
	}

	var initTy Type
	if d.Init != nil {
		ty, rep := SynthExpr(ctx, d.Init)
		if rep != nil {
			return rep
		}
		initTy = ty
	}

	switch {
	case annotTy != nil && initTy != nil:
		if !EqualsMemo(initTy, annotTy, ctx.cache) {
			return errors.NewTypeError(errors.TYP005, d.Pos,
				fmt.Sprintf("%q: initializer type %s does not match declared type %s", d.Name, initTy.String(), annotTy.String()))
		}
		ctx.vars.Define(d.Name, NewRefinedType(annotTy))
	case annotTy != nil:
		ctx.vars.Define(d.Name, NewRefinedType(annotTy))
	case initTy != nil:
		ctx.vars.Define(d.Name, NewRefinedType(initTy))
	default:
		ctx.vars.Define(d.Name, NewRefinedType(NewWeak()))
	}
	return nil
}

// forElementType derives the per-iteration element type for `for x in it`.
func forElementType(iterTy Type, pos ast.Pos) (Type, *errors.Report) {
	if IsWeak(iterTy) {
		return NewWeak(), nil
	}
	switch t := Deref(iterTy).(type) {
	case *TArray:
		return t.Elem, nil
	case *TSet:
		return t.Elem, nil
	case *TMap:
		return &TTuple{Elems: []Type{t.Key, t.Value}}, nil
	case *TRangeType:
		return Int, nil
	default:
		return nil, errors.NewTypeError(errors.TYP008, pos, fmt.Sprintf("%s is not iterable", iterTy.String()))
	}
}

// resolveAnnotation converts a parsed TypeAnnotation into a Type. A nil
// annotation (omitted) yields a fresh weak placeholder.
func resolveAnnotation(ta ast.TypeAnnotation) (Type, *errors.Report) {
	if ta == nil {
		return NewWeak(), nil
	}
	switch t := ta.(type) {
	case *ast.SimpleTypeAnnotation:
		switch t.Name {
		case "int":
			return Int, nil
		case "float":
			return Float, nil
		case "string":
			return String_, nil
		case "bool", "boolean":
			return Boolean, nil
		case "void":
			return Void, nil
		case "weak":
			return NewWeak(), nil
		case "poly":
			return Poly, nil
		case "dynamic":
			return Dynamic, nil
		case "Range", "range":
			return Range, nil
		default:
			return nil, errors.NewTypeError(errors.TYP008, t.Pos, fmt.Sprintf("unknown type name %q", t.Name))
		}

	case *ast.GenericTypeAnnotation:
		return resolveGeneric(t)

	case *ast.UnionTypeAnnotation:
		types, rep := resolveAnnotationList(t.Types)
		if rep != nil {
			return nil, rep
		}
		return &TUnion{Types: types}, nil

	case *ast.IntersectionTypeAnnotation:
		types, rep := resolveAnnotationList(t.Types)
		if rep != nil {
			return nil, rep
		}
		return &TIntersection{Types: types}, nil

	case *ast.FunctionTypeAnnotation:
		params, rep := resolveAnnotationList(t.Params)
		if rep != nil {
			return nil, rep
		}
		ret, rep := resolveAnnotation(t.Return)
		if rep != nil {
			return nil, rep
		}
		return &TFunction{Params: params, Return: ret, Variadic: t.Variadic}, nil

	case *ast.TupleTypeAnnotation:
		elems, rep := resolveAnnotationList(t.Elements)
		if rep != nil {
			return nil, rep
		}
		return &TTuple{Elems: elems}, nil

	case *ast.RecordTypeAnnotation:
		fields := make([]RecordField, len(t.Fields))
		for i, f := range t.Fields {
			ty, rep := resolveAnnotation(f.Type)
			if rep != nil {
				return nil, rep
			}
			fields[i] = RecordField{Name: f.Name, Type: ty}
		}
		return &TRecord{Fields: fields}, nil

	default:
		return nil, errors.NewTypeError(errors.TYP008, ta.Position(), "unrecognized type annotation")
	}
}

func resolveAnnotationList(list []ast.TypeAnnotation) ([]Type, *errors.Report) {
	out := make([]Type, len(list))
	for i, ta := range list {
		ty, rep := resolveAnnotation(ta)
		if rep != nil {
			return nil, rep
		}
		out[i] = ty
	}
	return out, nil
}

func resolveGeneric(t *ast.GenericTypeAnnotation) (Type, *errors.Report) {
	arg := func(i int) (Type, *errors.Report) {
		if i >= len(t.Args) {
			return nil, errors.NewTypeError(errors.TYP008, t.Pos, fmt.Sprintf("%q requires a type argument", t.Name))
		}
		return resolveAnnotation(t.Args[i])
	}

	switch t.Name {
	case "Array":
		elem, rep := arg(0)
		if rep != nil {
			return nil, rep
		}
		return &TArray{Elem: elem}, nil
	case "Map":
		k, rep := arg(0)
		if rep != nil {
			return nil, rep
		}
		v, rep := arg(1)
		if rep != nil {
			return nil, rep
		}
		return &TMap{Key: k, Value: v}, nil
	case "Set":
		elem, rep := arg(0)
		if rep != nil {
			return nil, rep
		}
		return &TSet{Elem: elem}, nil
	case "MinHeap", "MaxHeap":
		elem, rep := arg(0)
		if rep != nil {
			return nil, rep
		}
		return &THeap{Elem: elem, Min: t.Name == "MinHeap"}, nil
	case "MinHeapMap", "MaxHeapMap":
		k, rep := arg(0)
		if rep != nil {
			return nil, rep
		}
		v, rep := arg(1)
		if rep != nil {
			return nil, rep
		}
		return &THeapMap{Key: k, Value: v, Min: t.Name == "MinHeapMap"}, nil
	case "Graph":
		node, rep := arg(0)
		if rep != nil {
			return nil, rep
		}
		return &TGraph{Node: node}, nil
	case "BinaryTree":
		elem, rep := arg(0)
		if rep != nil {
			return nil, rep
		}
		return &TBinaryTree{Elem: elem}, nil
	case "AVLTree":
		elem, rep := arg(0)
		if rep != nil {
			return nil, rep
		}
		return &TAVLTree{Elem: elem}, nil
	default:
		return nil, errors.NewTypeError(errors.TYP008, t.Pos, fmt.Sprintf("unknown generic type %q", t.Name))
	}
}
