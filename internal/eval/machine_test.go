package eval

import (
	"testing"

	"github.com/dingf3ng/schema/internal/ast"
)

func pos() ast.Pos { return ast.Pos{Line: 1, Column: 1} }

func ident(name string) *ast.Identifier { return &ast.Identifier{Name: name, Pos: pos()} }
func intLit(v int64) *ast.IntLiteral    { return &ast.IntLiteral{Value: v, Pos: pos()} }

// runProgram builds a Machine over body, runs it to completion, and fails
// the test on any unhandled error report.
func runProgram(t *testing.T, body []ast.Statement) *Machine {
	t.Helper()
	prog := &ast.Program{Body: body, Pos: pos()}
	m := Initialize(prog)
	if rep := m.Run(); rep != nil {
		t.Fatalf("unexpected error running program: %v", rep)
	}
	return m
}

func TestArrayIndexRoundTrip(t *testing.T) {
	// let a: Array<int> = [1, 3, 5]; print(a[1])
	body := []ast.Statement{
		&ast.VariableDeclaration{Declarators: []*ast.Declarator{{
			Name: "a",
			Init: &ast.ArrayLiteral{Elements: []ast.Expression{intLit(1), intLit(3), intLit(5)}, Pos: pos()},
			Pos:  pos(),
		}}, Pos: pos()},
		&ast.ExpressionStatement{Expr: &ast.CallExpression{
			Callee: ident("print"),
			Args:   []ast.Expression{&ast.IndexExpression{Object: ident("a"), Index: intLit(1), Pos: pos()}},
			Pos:    pos(),
		}, Pos: pos()},
	}
	m := runProgram(t, body)
	out := m.GetOutput()
	if len(out) != 1 || out[0] != "3" {
		t.Fatalf("expected output [\"3\"], got %v", out)
	}
}

func TestFibonacciRoundTrip(t *testing.T) {
	// do f(n) { if n <= 1 { return n } return f(n-1) + f(n-2) }
	// print(f(10))
	fn := &ast.FunctionDeclaration{
		Name:   "f",
		Params: []*ast.Param{{Name: "n", Pos: pos()}},
		Body: &ast.BlockStatement{Pos: pos(), Body: []ast.Statement{
			&ast.IfStatement{
				Cond: &ast.BinaryExpression{Op: "<=", Left: ident("n"), Right: intLit(1), Pos: pos()},
				Then: &ast.BlockStatement{Pos: pos(), Body: []ast.Statement{
					&ast.ReturnStatement{Value: ident("n"), Pos: pos()},
				}},
				Pos: pos(),
			},
			&ast.ReturnStatement{Value: &ast.BinaryExpression{
				Op: "+",
				Left: &ast.CallExpression{Callee: ident("f"), Args: []ast.Expression{
					&ast.BinaryExpression{Op: "-", Left: ident("n"), Right: intLit(1), Pos: pos()},
				}, Pos: pos()},
				Right: &ast.CallExpression{Callee: ident("f"), Args: []ast.Expression{
					&ast.BinaryExpression{Op: "-", Left: ident("n"), Right: intLit(2), Pos: pos()},
				}, Pos: pos()},
				Pos: pos(),
			}, Pos: pos()},
		}},
		Pos: pos(),
	}
	call := &ast.ExpressionStatement{Expr: &ast.CallExpression{
		Callee: ident("print"),
		Args:   []ast.Expression{&ast.CallExpression{Callee: ident("f"), Args: []ast.Expression{intLit(10)}, Pos: pos()}},
		Pos:    pos(),
	}, Pos: pos()}

	m := runProgram(t, []ast.Statement{fn, call})
	out := m.GetOutput()
	if len(out) != 1 || out[0] != "55" {
		t.Fatalf("expected output [\"55\"], got %v", out)
	}
}

func TestAssertSortedFailureCarriesSnapshot(t *testing.T) {
	// let arr = [1, 3, 2]; @assert(arr |- @sorted, "must be sorted")
	body := []ast.Statement{
		&ast.VariableDeclaration{Declarators: []*ast.Declarator{{
			Name: "arr",
			Init: &ast.ArrayLiteral{Elements: []ast.Expression{intLit(1), intLit(3), intLit(2)}, Pos: pos()},
			Pos:  pos(),
		}}, Pos: pos()},
		&ast.AssertStatement{
			Cond: &ast.PredicateCheckExpression{
				Subject:       ident("arr"),
				PredicateName: "sorted",
				Pos:           pos(),
			},
			Message: &ast.StringLiteral{Value: "must be sorted", Pos: pos()},
			Pos:     pos(),
		},
	}
	prog := &ast.Program{Body: body, Pos: pos()}
	m := Initialize(prog)
	rep := m.Run()
	if rep == nil {
		t.Fatalf("expected a verification failure, got none")
	}
	if rep.Code != "VER001" {
		t.Fatalf("expected VER001, got %s", rep.Code)
	}
	if rep.Message != "must be sorted" {
		t.Fatalf("expected message %q, got %q", "must be sorted", rep.Message)
	}
	// The pre-bound global `inf` is a non-function binding too, so it is
	// part of the snapshot alongside arr.
	wantSnapshot := "arr = [1, 3, 2]\ninf = +Inf"
	if rep.Snapshot != wantSnapshot {
		t.Fatalf("expected snapshot %q, got %q", wantSnapshot, rep.Snapshot)
	}
}

func TestWhileLoopSynthesizesNonNegativeInvariant(t *testing.T) {
	// let i = 0; while i < 3 { i = i + 1 }
	body := []ast.Statement{
		&ast.VariableDeclaration{Declarators: []*ast.Declarator{{Name: "i", Init: intLit(0), Pos: pos()}}, Pos: pos()},
		&ast.WhileStatement{
			Cond: &ast.BinaryExpression{Op: "<", Left: ident("i"), Right: intLit(3), Pos: pos()},
			Body: &ast.BlockStatement{Pos: pos(), Body: []ast.Statement{
				&ast.AssignmentStatement{
					Target: ident("i"),
					Value:  &ast.BinaryExpression{Op: "+", Left: ident("i"), Right: intLit(1), Pos: pos()},
					Pos:    pos(),
				},
			}},
			Pos: pos(),
		},
	}
	m := runProgram(t, body)
	v, ok := m.Global.Lookup("i")
	if !ok {
		t.Fatalf("expected i to be bound after the loop")
	}
	if iv, ok := v.(IntValue); !ok || iv.V != 3 {
		t.Fatalf("expected i == 3, got %v", v)
	}

	var found bool
	for _, c := range m.Synthesized {
		if c.Var == "i" && c.Name == "non_negative" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a synthesized non_negative candidate for i, got %v", m.Synthesized)
	}
}
