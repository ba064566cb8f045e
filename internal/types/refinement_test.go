package types

import (
	"testing"

	"github.com/dingf3ng/schema/internal/ast"
)

func TestRefineResolvesWeakParamFromArithmetic(t *testing.T) {
	// do scale(n) -> weak { return n * 2 }
	fd := buildFunc("scale",
		[]*ast.Param{{Name: "n", Pos: pos()}},
		nil,
		[]ast.Statement{
			&ast.ReturnStatement{Value: &ast.BinaryExpression{
				Op: "*", Left: &ast.Identifier{Name: "n", Pos: pos()}, Right: &ast.IntLiteral{Value: 2, Pos: pos()}, Pos: pos(),
			}, Pos: pos()},
		},
	)
	prog := &ast.Program{Body: []ast.Statement{fd}, Pos: pos()}

	inf := NewInferer()
	if rep := inf.InferProgram(prog); rep != nil {
		t.Fatalf("infer failed: %v", rep)
	}
	if rep := inf.RefineProgram(prog); rep != nil {
		t.Fatalf("refine failed: %v", rep)
	}

	fi := inf.Funcs.Lookup("scale")
	if !isInt(fi.Params[0]) {
		t.Errorf("expected n to refine to int, got %s", fi.Params[0])
	}
}

func TestRefineResolvesWeakContainerFromMapMethodCall(t *testing.T) {
	// do useMap(m) { m.set(1, "a") }
	fd := buildFunc("useMap",
		[]*ast.Param{{Name: "m", Pos: pos()}},
		nil,
		[]ast.Statement{
			&ast.ExpressionStatement{Expr: &ast.CallExpression{
				Callee: &ast.MemberExpression{Object: &ast.Identifier{Name: "m", Pos: pos()}, Property: "set", Pos: pos()},
				Args:   []ast.Expression{&ast.IntLiteral{Value: 1, Pos: pos()}, &ast.StringLiteral{Value: "a", Pos: pos()}},
				Pos:    pos(),
			}, Pos: pos()},
		},
	)
	prog := &ast.Program{Body: []ast.Statement{fd}, Pos: pos()}

	inf := NewInferer()
	if rep := inf.InferProgram(prog); rep != nil {
		t.Fatalf("infer failed: %v", rep)
	}
	if rep := inf.RefineProgram(prog); rep != nil {
		t.Fatalf("refine failed: %v", rep)
	}

	fi := inf.Funcs.Lookup("useMap")
	m, ok := Deref(fi.Params[0]).(*TMap)
	if !ok {
		t.Fatalf("expected m to refine to a map, got %s", fi.Params[0])
	}
	if !isInt(m.Key) {
		t.Errorf("expected map key to refine to int, got %s", m.Key)
	}
	if !isString(m.Value) {
		t.Errorf("expected map value to refine to string, got %s", m.Value)
	}
}

func TestRefineConvergesWithinPassBound(t *testing.T) {
	fd := buildFunc("noop", nil, nil, []ast.Statement{
		&ast.ReturnStatement{Pos: pos()},
	})
	prog := &ast.Program{Body: []ast.Statement{fd}, Pos: pos()}

	inf := NewInferer()
	if rep := inf.InferProgram(prog); rep != nil {
		t.Fatalf("infer failed: %v", rep)
	}
	if rep := inf.RefineProgram(prog); rep != nil {
		t.Fatalf("refine failed: %v", rep)
	}
}
