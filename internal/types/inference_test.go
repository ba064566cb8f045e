package types

import (
	"testing"

	"github.com/dingf3ng/schema/internal/ast"
)

// buildFunc constructs: do name(params...) [-> ret] { body... }
func buildFunc(name string, params []*ast.Param, ret ast.TypeAnnotation, body []ast.Statement) *ast.FunctionDeclaration {
	return &ast.FunctionDeclaration{
		Name:       name,
		Params:     params,
		ReturnType: ret,
		Body:       &ast.BlockStatement{Body: body, Pos: pos()},
		Pos:        pos(),
	}
}

func TestInferSimpleFunctionReturnsDeclaredType(t *testing.T) {
	// do addOne(n: int) -> int { return n + 1 }
	fd := buildFunc("addOne",
		[]*ast.Param{{Name: "n", Type: &ast.SimpleTypeAnnotation{Name: "int", Pos: pos()}, Pos: pos()}},
		&ast.SimpleTypeAnnotation{Name: "int", Pos: pos()},
		[]ast.Statement{
			&ast.ReturnStatement{Value: &ast.BinaryExpression{
				Op: "+", Left: &ast.Identifier{Name: "n", Pos: pos()}, Right: &ast.IntLiteral{Value: 1, Pos: pos()}, Pos: pos(),
			}, Pos: pos()},
		},
	)
	prog := &ast.Program{Body: []ast.Statement{fd}, Pos: pos()}

	inf := NewInferer()
	if rep := inf.InferProgram(prog); rep != nil {
		t.Fatalf("unexpected error: %v", rep)
	}
	fi := inf.Funcs.Lookup("addOne")
	if !Equals(fi.Return, Int) {
		t.Errorf("expected addOne to return int, got %s", fi.Return)
	}
}

func TestInferUnannotatedReturnInfersFromBody(t *testing.T) {
	// do identity(n: int) { return n }  -- no declared return type
	fd := buildFunc("identity",
		[]*ast.Param{{Name: "n", Type: &ast.SimpleTypeAnnotation{Name: "int", Pos: pos()}, Pos: pos()}},
		nil,
		[]ast.Statement{
			&ast.ReturnStatement{Value: &ast.Identifier{Name: "n", Pos: pos()}, Pos: pos()},
		},
	)
	prog := &ast.Program{Body: []ast.Statement{fd}, Pos: pos()}

	inf := NewInferer()
	if rep := inf.InferProgram(prog); rep != nil {
		t.Fatalf("unexpected error: %v", rep)
	}
	fi := inf.Funcs.Lookup("identity")
	if !Equals(fi.Return, Int) {
		t.Errorf("expected inferred return type int, got %s", fi.Return)
	}
}

func TestInferIncompatibleReturnTypesFail(t *testing.T) {
	// do bad() { if true { return 1 } else { return "x" } }
	fd := buildFunc("bad", nil, nil, []ast.Statement{
		&ast.IfStatement{
			Cond: &ast.BoolLiteral{Value: true, Pos: pos()},
			Then: &ast.BlockStatement{Body: []ast.Statement{
				&ast.ReturnStatement{Value: &ast.IntLiteral{Value: 1, Pos: pos()}, Pos: pos()},
			}, Pos: pos()},
			Else: &ast.BlockStatement{Body: []ast.Statement{
				&ast.ReturnStatement{Value: &ast.StringLiteral{Value: "x", Pos: pos()}, Pos: pos()},
			}, Pos: pos()},
			Pos: pos(),
		},
	})
	prog := &ast.Program{Body: []ast.Statement{fd}, Pos: pos()}

	inf := NewInferer()
	if rep := inf.InferProgram(prog); rep == nil {
		t.Errorf("expected incompatible return types to fail")
	}
}

func TestInferMutualRecursionViaGlobalFuncEnv(t *testing.T) {
	// do isEven(n: int) -> bool { return isOdd(n) }
	// do isOdd(n: int) -> bool { return isEven(n) }
	isEven := buildFunc("isEven",
		[]*ast.Param{{Name: "n", Type: &ast.SimpleTypeAnnotation{Name: "int", Pos: pos()}, Pos: pos()}},
		&ast.SimpleTypeAnnotation{Name: "bool", Pos: pos()},
		[]ast.Statement{
			&ast.ReturnStatement{Value: &ast.CallExpression{
				Callee: &ast.Identifier{Name: "isOdd", Pos: pos()},
				Args:   []ast.Expression{&ast.Identifier{Name: "n", Pos: pos()}},
				Pos:    pos(),
			}, Pos: pos()},
		},
	)
	isOdd := buildFunc("isOdd",
		[]*ast.Param{{Name: "n", Type: &ast.SimpleTypeAnnotation{Name: "int", Pos: pos()}, Pos: pos()}},
		&ast.SimpleTypeAnnotation{Name: "bool", Pos: pos()},
		[]ast.Statement{
			&ast.ReturnStatement{Value: &ast.CallExpression{
				Callee: &ast.Identifier{Name: "isEven", Pos: pos()},
				Args:   []ast.Expression{&ast.Identifier{Name: "n", Pos: pos()}},
				Pos:    pos(),
			}, Pos: pos()},
		},
	)
	prog := &ast.Program{Body: []ast.Statement{isEven, isOdd}, Pos: pos()}

	inf := NewInferer()
	if rep := inf.InferProgram(prog); rep != nil {
		t.Fatalf("unexpected error: %v", rep)
	}
}

func TestInferVariableDeclarationMismatchFails(t *testing.T) {
	// let x: int = "hi"
	decl := &ast.VariableDeclaration{Declarators: []*ast.Declarator{
		{Name: "x", Type: &ast.SimpleTypeAnnotation{Name: "int", Pos: pos()}, Init: &ast.StringLiteral{Value: "hi", Pos: pos()}, Pos: pos()},
	}, Pos: pos()}
	prog := &ast.Program{Body: []ast.Statement{decl}, Pos: pos()}

	inf := NewInferer()
	if rep := inf.InferProgram(prog); rep == nil {
		t.Errorf("expected declared/initializer type mismatch to fail")
	}
}
