package eval

import (
	"testing"

	"github.com/dingf3ng/schema/internal/ast"
	"github.com/dingf3ng/schema/internal/containers"
)

func newMachine() *Machine {
	return Initialize(&ast.Program{Pos: pos()})
}

func TestArrayMethodDispatch(t *testing.T) {
	m := newMachine()
	arr := ArrayValue{Arr: containers.NewArray[Value](IntValue{V: 1}, IntValue{V: 2}, IntValue{V: 3})}

	if v, rep := m.callMethod(arr, "length", nil, pos()); rep != nil || v.(IntValue).V != 3 {
		t.Fatalf("expected length 3, got %v, %v", v, rep)
	}
	if _, rep := m.callMethod(arr, "push", []Value{IntValue{V: 4}}, pos()); rep != nil {
		t.Fatalf("push failed: %v", rep)
	}
	if v, rep := m.callMethod(arr, "get", []Value{IntValue{V: 3}}, pos()); rep != nil || v.(IntValue).V != 4 {
		t.Fatalf("expected get(3)==4, got %v, %v", v, rep)
	}
	if _, rep := m.callMethod(arr, "set", []Value{IntValue{V: 0}, IntValue{V: 99}}, pos()); rep != nil {
		t.Fatalf("set failed: %v", rep)
	}
	if v, rep := m.callMethod(arr, "get", []Value{IntValue{V: 0}}, pos()); rep != nil || v.(IntValue).V != 99 {
		t.Fatalf("expected get(0)==99 after set, got %v, %v", v, rep)
	}
	if _, rep := m.callMethod(arr, "get", []Value{IntValue{V: 99}}, pos()); rep == nil {
		t.Fatalf("expected an out-of-range index error")
	}
}

// Binary search, expressed directly as SchemA-equivalent AST (spec §8's
// sorted-array scenario): searches [1,3,5,7,9,11,13,15] for 7 and prints the
// index it was found at.
func TestBinarySearchRoundTrip(t *testing.T) {
	vals := []int64{1, 3, 5, 7, 9, 11, 13, 15}
	elems := make([]ast.Expression, len(vals))
	for i, v := range vals {
		elems[i] = intLit(v)
	}

	search := &ast.FunctionDeclaration{
		Name:   "search",
		Params: []*ast.Param{{Name: "xs", Pos: pos()}, {Name: "target", Pos: pos()}},
		Body: &ast.BlockStatement{Pos: pos(), Body: []ast.Statement{
			declare("lo", intLit(0)),
			declare("hi", &ast.BinaryExpression{Op: "-", Left: &ast.CallExpression{
				Callee: &ast.MemberExpression{Object: ident("xs"), Property: "length", Pos: pos()}, Pos: pos(),
			}, Right: intLit(1), Pos: pos()}),
			&ast.WhileStatement{
				Cond: &ast.BinaryExpression{Op: "<=", Left: ident("lo"), Right: ident("hi"), Pos: pos()},
				Body: &ast.BlockStatement{Pos: pos(), Body: []ast.Statement{
					declare("mid", &ast.BinaryExpression{Op: "/", Left: &ast.BinaryExpression{
						Op: "+", Left: ident("lo"), Right: ident("hi"), Pos: pos(),
					}, Right: intLit(2), Pos: pos()}),
					&ast.IfStatement{
						Cond: &ast.BinaryExpression{Op: "==", Left: &ast.IndexExpression{Object: ident("xs"), Index: ident("mid"), Pos: pos()}, Right: ident("target"), Pos: pos()},
						Then: &ast.BlockStatement{Pos: pos(), Body: []ast.Statement{
							&ast.ReturnStatement{Value: ident("mid"), Pos: pos()},
						}},
						Else: &ast.IfStatement{
							Cond: &ast.BinaryExpression{Op: "<", Left: &ast.IndexExpression{Object: ident("xs"), Index: ident("mid"), Pos: pos()}, Right: ident("target"), Pos: pos()},
							Then: &ast.BlockStatement{Pos: pos(), Body: []ast.Statement{
								&ast.AssignmentStatement{Target: ident("lo"), Value: &ast.BinaryExpression{Op: "+", Left: ident("mid"), Right: intLit(1), Pos: pos()}, Pos: pos()},
							}},
							Else: &ast.BlockStatement{Pos: pos(), Body: []ast.Statement{
								&ast.AssignmentStatement{Target: ident("hi"), Value: &ast.BinaryExpression{Op: "-", Left: ident("mid"), Right: intLit(1), Pos: pos()}, Pos: pos()},
							}},
							Pos: pos(),
						},
						Pos: pos(),
					},
				}},
				Pos: pos(),
			},
			&ast.ReturnStatement{Value: &ast.UnaryExpression{Op: "-", Operand: intLit(1), Pos: pos()}, Pos: pos()},
		}},
		Pos: pos(),
	}

	call := &ast.ExpressionStatement{Expr: &ast.CallExpression{
		Callee: ident("print"),
		Args: []ast.Expression{&ast.CallExpression{Callee: ident("search"), Args: []ast.Expression{
			&ast.ArrayLiteral{Elements: elems, Pos: pos()}, intLit(7),
		}, Pos: pos()}},
		Pos: pos(),
	}, Pos: pos()}

	m := runProgram(t, []ast.Statement{search, call})
	out := m.GetOutput()
	if len(out) != 1 || out[0] != "3" {
		t.Fatalf("expected output [\"3\"], got %v", out)
	}
}

func declare(name string, init ast.Expression) *ast.VariableDeclaration {
	return &ast.VariableDeclaration{Declarators: []*ast.Declarator{{Name: name, Init: init, Pos: pos()}}, Pos: pos()}
}

func TestGraphAndHeapMapDispatchSupportDijkstra(t *testing.T) {
	m := newMachine()
	g, err := constructBuiltin("Graph", []Value{BoolValue{V: true}})
	if err != nil {
		t.Fatal(err)
	}
	type edge struct {
		from, to int64
		w        float64
	}
	edges := []edge{
		{0, 1, 2}, {0, 2, 9}, {0, 3, 5},
		{0, 4, 3}, {3, 1, 1}, {4, 2, 7}, {1, 5, 1}, {5, 6, 3}, {4, 6, 6},
	}
	for _, e := range edges {
		if _, rep := m.callMethod(g, "addEdge", []Value{IntValue{V: e.from}, IntValue{V: e.to}, FloatValue{V: e.w}}, pos()); rep != nil {
			t.Fatalf("addEdge failed: %v", rep)
		}
	}

	dist := map[int64]float64{0: 0}
	hm, err := constructBuiltin("MinHeapMap", nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, rep := m.callMethod(hm, "push", []Value{IntValue{V: 0}, FloatValue{V: 0}}, pos()); rep != nil {
		t.Fatalf("push failed: %v", rep)
	}

	visited := map[int64]bool{}
	for {
		sizeV, _ := m.callMethod(hm, "size", nil, pos())
		if sizeV.(IntValue).V == 0 {
			break
		}
		nodeV, rep := m.callMethod(hm, "pop", nil, pos())
		if rep != nil {
			t.Fatalf("pop failed: %v", rep)
		}
		node := nodeV.(IntValue).V
		if visited[node] {
			continue
		}
		visited[node] = true

		neighborsV, rep := m.callMethod(g, "getNeighbors", []Value{IntValue{V: node}}, pos())
		if rep != nil {
			t.Fatalf("getNeighbors failed: %v", rep)
		}
		for _, nb := range neighborsV.(ArrayValue).Arr.Values() {
			rec := nb.(RecordValue)
			to := rec.Fields["to"].(IntValue).V
			w := rec.Fields["weight"].(FloatValue).V
			cand := dist[node] + w
			if d, ok := dist[to]; !ok || cand < d {
				dist[to] = cand
				if _, rep := m.callMethod(hm, "push", []Value{IntValue{V: to}, FloatValue{V: cand}}, pos()); rep != nil {
					t.Fatalf("push failed: %v", rep)
				}
			}
		}
	}

	want := map[int64]float64{0: 0, 1: 2, 2: 9, 3: 5, 4: 3, 5: 3, 6: 6}
	for node, wantDist := range want {
		if got := dist[node]; got != wantDist {
			t.Errorf("distance to %d: expected %v, got %v", node, wantDist, got)
		}
	}
}
