package types

import (
	"github.com/dingf3ng/schema/internal/ast"
	"github.com/dingf3ng/schema/internal/errors"
)

// MaxRefinementPasses bounds the fixed-point refinement loop (spec §4.1/§9:
// "at most ten passes"). The loop can also exit earlier once a pass makes
// no change.
const MaxRefinementPasses = 10

// RefineProgram runs the bounded fixed-point refinement algorithm over
// every function body in prog, propagating concrete types into weak
// placeholders left behind by inference. Only weak slots are ever mutated;
// poly and dynamic are inert at this layer. Each pass clears the shared
// equality cache first, since a cached "not equal" from before a weak was
// resolved would otherwise linger and report a stale mismatch.
func (inf *Inferer) RefineProgram(prog *ast.Program) *errors.Report {
	for pass := 0; pass < MaxRefinementPasses; pass++ {
		inf.Cache.Clear()
		changed := false
		for _, stmt := range prog.Body {
			fd, ok := stmt.(*ast.FunctionDeclaration)
			if !ok {
				continue
			}
			if rep := inf.refineFunction(fd, &changed); rep != nil {
				return rep
			}
		}
		if !changed {
			break
		}
	}
	return nil
}

func (inf *Inferer) refineFunction(fd *ast.FunctionDeclaration, changed *bool) *errors.Report {
	fi := inf.Funcs.Lookup(fd.Name)
	scope := NewTypeEnv()
	for i, p := range fd.Params {
		scope.Define(p.Name, NewRefinedType(fi.Params[i]))
	}
	ctx := &funcContext{vars: scope, funcs: inf.Funcs, cache: inf.Cache}
	for _, s := range fd.Body.Body {
		if rep := inf.refineStatement(ctx, s, changed); rep != nil {
			return rep
		}
	}
	return nil
}

func (inf *Inferer) refineStatement(ctx *funcContext, stmt ast.Statement, changed *bool) *errors.Report {
	switch s := stmt.(type) {
	case *ast.VariableDeclaration:
		for _, d := range s.Declarators {
			var declTy Type
			if rt, ok := ctx.vars.Lookup(d.Name); ok {
				declTy = rt.Static
			}
			if d.Init != nil {
				initTy, rep := refineExpr(ctx, d.Init, changed)
				if rep != nil {
					return rep
				}
				if declTy != nil {
					unify(declTy, initTy, changed)
				}
			}
		}
		return nil

	case *ast.AssignmentStatement:
		valTy, rep := refineExpr(ctx, s.Value, changed)
		if rep != nil {
			return rep
		}
		if id, ok := s.Target.(*ast.Identifier); ok {
			if rt, ok := ctx.vars.Lookup(id.Name); ok {
				unify(rt.Static, valTy, changed)
			}
			return nil
		}
		_, rep = refineExpr(ctx, s.Target, changed)
		return rep

	case *ast.IfStatement:
		if _, rep := refineExpr(ctx, s.Cond, changed); rep != nil {
			return rep
		}
		if rep := inf.refineBlockIn(ctx, s.Then, changed); rep != nil {
			return rep
		}
		if s.Else != nil {
			return inf.refineStatement(ctx, s.Else, changed)
		}
		return nil

	case *ast.WhileStatement:
		if _, rep := refineExpr(ctx, s.Cond, changed); rep != nil {
			return rep
		}
		return inf.refineBlockIn(ctx, s.Body, changed)

	case *ast.UntilStatement:
		if _, rep := refineExpr(ctx, s.Cond, changed); rep != nil {
			return rep
		}
		return inf.refineBlockIn(ctx, s.Body, changed)

	case *ast.ForStatement:
		iterTy, rep := refineExpr(ctx, s.Iterable, changed)
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
			if rep := inf.refineStatement(child, st, changed); rep != nil {
				return rep
			}
		}
		return nil

	case *ast.ReturnStatement:
		if s.Value == nil {
			return nil
		}
		_, rep := refineExpr(ctx, s.Value, changed)
		return rep

	case *ast.BlockStatement:
		return inf.refineBlockIn(ctx, s, changed)

	case *ast.ExpressionStatement:
		_, rep := refineExpr(ctx, s.Expr, changed)
		return rep

	case *ast.InvariantStatement:
		return inf.refineCheck(ctx, s.Cond, s.Message, changed)

	case *ast.AssertStatement:
		return inf.refineCheck(ctx, s.Cond, s.Message, changed)

	default:
		return nil
	}
}

func (inf *Inferer) refineCheck(ctx *funcContext, cond, message ast.Expression, changed *bool) *errors.Report {
	if _, rep := refineExpr(ctx, cond, changed); rep != nil {
		return rep
	}
	if message != nil {
		if _, rep := refineExpr(ctx, message, changed); rep != nil {
			return rep
		}
	}
	return nil
}

func (inf *Inferer) refineBlockIn(ctx *funcContext, block *ast.BlockStatement, changed *bool) *errors.Report {
	child := &funcContext{vars: ctx.vars.Child(), funcs: ctx.funcs, cache: ctx.cache}
	for _, st := range block.Body {
		if rep := inf.refineStatement(child, st, changed); rep != nil {
			return rep
		}
	}
	return nil
}

// refineExpr synthesizes e's type like SynthExpr, but additionally applies
// unify at every point where a constraint between two types is implied
// (binary operands, call argument vs. parameter, the receiver of a
// container method whose name is unique to one container kind). It returns
// the same type SynthExpr would once any possible weak slots are resolved.
func refineExpr(ctx Context, e ast.Expression, changed *bool) (Type, *errors.Report) {
	switch n := e.(type) {
	case *ast.ArrayLiteral:
		for _, el := range n.Elements {
			if _, rep := refineExpr(ctx, el, changed); rep != nil {
				return nil, rep
			}
		}
	case *ast.MapLiteral:
		for _, entry := range n.Entries {
			if _, rep := refineExpr(ctx, entry.Key, changed); rep != nil {
				return nil, rep
			}
			if _, rep := refineExpr(ctx, entry.Value, changed); rep != nil {
				return nil, rep
			}
		}
	case *ast.SetLiteral:
		for _, el := range n.Elements {
			if _, rep := refineExpr(ctx, el, changed); rep != nil {
				return nil, rep
			}
		}
	case *ast.BinaryExpression:
		l, rep := refineExpr(ctx, n.Left, changed)
		if rep != nil {
			return nil, rep
		}
		r, rep := refineExpr(ctx, n.Right, changed)
		if rep != nil {
			return nil, rep
		}
		if n.Op != "==" && n.Op != "!=" {
			unify(l, r, changed)
		}
	case *ast.AndExpression:
		if _, rep := refineExpr(ctx, n.Left, changed); rep != nil {
			return nil, rep
		}
		if _, rep := refineExpr(ctx, n.Right, changed); rep != nil {
			return nil, rep
		}
	case *ast.OrExpression:
		if _, rep := refineExpr(ctx, n.Left, changed); rep != nil {
			return nil, rep
		}
		if _, rep := refineExpr(ctx, n.Right, changed); rep != nil {
			return nil, rep
		}
	case *ast.UnaryExpression:
		if _, rep := refineExpr(ctx, n.Operand, changed); rep != nil {
			return nil, rep
		}
	case *ast.TypeOfExpression:
		if _, rep := refineExpr(ctx, n.Operand, changed); rep != nil {
			return nil, rep
		}
	case *ast.PredicateCheckExpression:
		if _, rep := refineExpr(ctx, n.Subject, changed); rep != nil {
			return nil, rep
		}
		for _, a := range n.Args {
			if _, rep := refineExpr(ctx, a, changed); rep != nil {
				return nil, rep
			}
		}
	case *ast.RangeExpression:
		if n.Start != nil {
			if _, rep := refineExpr(ctx, n.Start, changed); rep != nil {
				return nil, rep
			}
		}
		if n.End != nil {
			if _, rep := refineExpr(ctx, n.End, changed); rep != nil {
				return nil, rep
			}
		}
	case *ast.CallExpression:
		return refineCall(ctx, n, changed)
	case *ast.MemberExpression:
		return refineMember(ctx, n, changed)
	case *ast.IndexExpression:
		if _, rep := refineExpr(ctx, n.Object, changed); rep != nil {
			return nil, rep
		}
		if _, rep := refineExpr(ctx, n.Index, changed); rep != nil {
			return nil, rep
		}
	}
	return SynthExpr(ctx, e)
}

func refineCall(ctx Context, n *ast.CallExpression, changed *bool) (Type, *errors.Report) {
	if id, ok := n.Callee.(*ast.Identifier); ok {
		if _, isBuiltin := builtinConstructor(id.Name); !isBuiltin {
			if fi, ok := ctx.LookupFunc(id.Name); ok {
				for i, a := range n.Args {
					argTy, rep := refineExpr(ctx, a, changed)
					if rep != nil {
						return nil, rep
					}
					if i < len(fi.Params) && !fi.Variadic {
						unify(fi.Params[i], argTy, changed)
					}
				}
				return SynthExpr(ctx, n)
			}
		}
	}
	if mem, ok := n.Callee.(*ast.MemberExpression); ok {
		objTy, rep := refineExpr(ctx, mem.Object, changed)
		if rep != nil {
			return nil, rep
		}
		if IsWeak(objTy) {
			if skeleton := containerMethodKind(mem.Property); skeleton != nil {
				unify(objTy, skeleton, changed)
			}
		}
		memberTy, ok := MemberType(objTy, mem.Property)
		if ok {
			if fnTy, ok := Deref(memberTy).(*TFunction); ok && !fnTy.Variadic {
				for i, a := range n.Args {
					argTy, rep := refineExpr(ctx, a, changed)
					if rep != nil {
						return nil, rep
					}
					if i < len(fnTy.Params) {
						unify(fnTy.Params[i], argTy, changed)
					}
				}
				return SynthExpr(ctx, n)
			}
		}
	}
	for _, a := range n.Args {
		if _, rep := refineExpr(ctx, a, changed); rep != nil {
			return nil, rep
		}
	}
	return SynthExpr(ctx, n)
}

// containerMethodKind maps a method name that only one container kind
// defines to a skeleton of that kind (weak leaves), letting refinement
// resolve `x.set(k, v)` into `x: Map(weak, weak)` even before x's first
// assignment is seen. Methods every container-ish type shares (`size`) or
// that more than one container defines ambiguously (`push`/`pop`, which
// arrays, heaps, and heap-maps all define) are deliberately absent here and
// require an explicit annotation or literal initializer instead.
func containerMethodKind(name string) Type {
	switch name {
	case "set", "get", "keys", "values", "entries", "deleteWithKey":
		return &TMap{Key: NewWeak(), Value: NewWeak()}
	case "add":
		return &TSet{Elem: NewWeak()}
	case "length":
		return &TArray{Elem: NewWeak()}
	case "addVertex", "addEdge", "hasVertex", "hasEdge", "getVertices", "getEdges", "getNeighbors", "isDirected":
		return &TGraph{Node: NewWeak()}
	case "insert", "search", "getHeight", "preOrderTraversal", "inOrderTraversal", "postOrderTraversal":
		return &TBinaryTree{Elem: NewWeak()}
	default:
		return nil
	}
}

func refineMember(ctx Context, n *ast.MemberExpression, changed *bool) (Type, *errors.Report) {
	objTy, rep := refineExpr(ctx, n.Object, changed)
	if rep != nil {
		return nil, rep
	}
	if IsWeak(objTy) {
		if skeleton := containerMethodKind(n.Property); skeleton != nil {
			unify(objTy, skeleton, changed)
		}
	}
	memberTy, ok := MemberType(objTy, n.Property)
	if !ok {
		return SynthExpr(ctx, n)
	}
	return memberTy, nil
}

// unify propagates type information bidirectionally between a and b,
// resolving any unresolved weak slot it finds to the other side (unless
// that side is dynamic, which never refines another slot), and
// recursing into matching structural positions (array element, map
// key/value, tuple slots, function params/return) so that a constraint
// learned anywhere in a nested weak container reaches every occurrence of
// that container's placeholder. It reports whether it made any change via
// changed, which callers use as the pass's convergence signal.
func unify(a, b Type, changed *bool) {
	a = Deref(a)
	b = Deref(b)

	if wa, ok := a.(*TWeak); ok && wa.Resolved == nil {
		if !IsWeak(b) && b.Kind() != "dynamic" {
			wa.Resolved = b
			*changed = true
		}
		return
	}
	if wb, ok := b.(*TWeak); ok && wb.Resolved == nil {
		if !IsWeak(a) && a.Kind() != "dynamic" {
			wb.Resolved = a
			*changed = true
		}
		return
	}

	switch av := a.(type) {
	case *TArray:
		if bv, ok := b.(*TArray); ok {
			unify(av.Elem, bv.Elem, changed)
		}
	case *TMap:
		if bv, ok := b.(*TMap); ok {
			unify(av.Key, bv.Key, changed)
			unify(av.Value, bv.Value, changed)
		}
	case *TSet:
		if bv, ok := b.(*TSet); ok {
			unify(av.Elem, bv.Elem, changed)
		}
	case *THeap:
		if bv, ok := b.(*THeap); ok {
			unify(av.Elem, bv.Elem, changed)
		}
	case *THeapMap:
		if bv, ok := b.(*THeapMap); ok {
			unify(av.Key, bv.Key, changed)
			unify(av.Value, bv.Value, changed)
		}
	case *TBinaryTree:
		if bv, ok := b.(*TBinaryTree); ok {
			unify(av.Elem, bv.Elem, changed)
		}
	case *TAVLTree:
		if bv, ok := b.(*TAVLTree); ok {
			unify(av.Elem, bv.Elem, changed)
		}
	case *TGraph:
		if bv, ok := b.(*TGraph); ok {
			unify(av.Node, bv.Node, changed)
		}
	case *TTuple:
		if bv, ok := b.(*TTuple); ok && len(av.Elems) == len(bv.Elems) {
			for i := range av.Elems {
				unify(av.Elems[i], bv.Elems[i], changed)
			}
		}
	case *TFunction:
		if bv, ok := b.(*TFunction); ok && len(av.Params) == len(bv.Params) {
			for i := range av.Params {
				unify(av.Params[i], bv.Params[i], changed)
			}
			unify(av.Return, bv.Return, changed)
		}
	}
}
