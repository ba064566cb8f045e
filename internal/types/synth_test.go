package types

import (
	"testing"

	"github.com/dingf3ng/schema/internal/ast"
)

type testContext struct {
	vars  map[string]RefinedType
	funcs map[string]*FuncInfo
	cache *EqualityCache
}

func newTestContext() *testContext {
	return &testContext{
		vars:  make(map[string]RefinedType),
		funcs: make(map[string]*FuncInfo),
		cache: NewEqualityCache(),
	}
}

func (c *testContext) LookupVar(name string) (RefinedType, bool) {
	rt, ok := c.vars[name]
	return rt, ok
}
func (c *testContext) LookupFunc(name string) (*FuncInfo, bool) {
	fi, ok := c.funcs[name]
	return fi, ok
}
func (c *testContext) Cache() *EqualityCache { return c.cache }

func pos() ast.Pos { return ast.Pos{Line: 1, Column: 1} }

func TestSynthLiterals(t *testing.T) {
	ctx := newTestContext()
	cases := []struct {
		name string
		expr ast.Expression
		want Type
	}{
		{"int", &ast.IntLiteral{Value: 1, Pos: pos()}, Int},
		{"float", &ast.FloatLiteral{Value: 1.5, Pos: pos()}, Float},
		{"string", &ast.StringLiteral{Value: "hi", Pos: pos()}, String_},
		{"bool", &ast.BoolLiteral{Value: true, Pos: pos()}, Boolean},
	}
	for _, c := range cases {
		got, rep := SynthExpr(ctx, c.expr)
		if rep != nil {
			t.Fatalf("%s: unexpected error %v", c.name, rep)
		}
		if !Equals(got, c.want) {
			t.Errorf("%s: got %s, want %s", c.name, got, c.want)
		}
	}
}

func TestSynthArrayLiteralHomogeneity(t *testing.T) {
	ctx := newTestContext()
	arr := &ast.ArrayLiteral{Elements: []ast.Expression{
		&ast.IntLiteral{Value: 1, Pos: pos()},
		&ast.IntLiteral{Value: 2, Pos: pos()},
	}, Pos: pos()}
	ty, rep := SynthExpr(ctx, arr)
	if rep != nil {
		t.Fatalf("unexpected error: %v", rep)
	}
	at := ty.(*TArray)
	if !Equals(at.Elem, Int) {
		t.Errorf("expected array(int), got %s", ty)
	}

	mixed := &ast.ArrayLiteral{Elements: []ast.Expression{
		&ast.IntLiteral{Value: 1, Pos: pos()},
		&ast.StringLiteral{Value: "x", Pos: pos()},
	}, Pos: pos()}
	if _, rep := SynthExpr(ctx, mixed); rep == nil {
		t.Errorf("expected heterogeneous array literal to fail")
	}
}

func TestSynthEmptyArrayLiteralIsWeak(t *testing.T) {
	ctx := newTestContext()
	ty, rep := SynthExpr(ctx, &ast.ArrayLiteral{Pos: pos()})
	if rep != nil {
		t.Fatalf("unexpected error: %v", rep)
	}
	at := ty.(*TArray)
	if !IsWeak(at.Elem) {
		t.Errorf("expected empty array literal element type to be weak, got %s", at.Elem)
	}
}

func TestSynthBinaryNumericPromotion(t *testing.T) {
	ctx := newTestContext()
	intPlusInt := &ast.BinaryExpression{
		Op: "+", Left: &ast.IntLiteral{Value: 1, Pos: pos()}, Right: &ast.IntLiteral{Value: 2, Pos: pos()}, Pos: pos(),
	}
	ty, rep := SynthExpr(ctx, intPlusInt)
	if rep != nil || !Equals(ty, Int) {
		t.Errorf("int+int should be int, got %v (%v)", ty, rep)
	}

	intPlusFloat := &ast.BinaryExpression{
		Op: "+", Left: &ast.IntLiteral{Value: 1, Pos: pos()}, Right: &ast.FloatLiteral{Value: 2.0, Pos: pos()}, Pos: pos(),
	}
	ty, rep = SynthExpr(ctx, intPlusFloat)
	if rep != nil || !Equals(ty, Float) {
		t.Errorf("int+float should be float, got %v (%v)", ty, rep)
	}

	strPlusStr := &ast.BinaryExpression{
		Op: "+", Left: &ast.StringLiteral{Value: "a", Pos: pos()}, Right: &ast.StringLiteral{Value: "b", Pos: pos()}, Pos: pos(),
	}
	ty, rep = SynthExpr(ctx, strPlusStr)
	if rep != nil || !Equals(ty, String_) {
		t.Errorf("string+string should be string, got %v (%v)", ty, rep)
	}
}

func TestSynthIntDivisionRejectsFloat(t *testing.T) {
	ctx := newTestContext()
	expr := &ast.BinaryExpression{
		Op: "/", Left: &ast.IntLiteral{Value: 1, Pos: pos()}, Right: &ast.FloatLiteral{Value: 2.0, Pos: pos()}, Pos: pos(),
	}
	if _, rep := SynthExpr(ctx, expr); rep == nil {
		t.Errorf("expected `/` with a float operand to fail")
	}
}

func TestSynthComparisonYieldsBoolean(t *testing.T) {
	ctx := newTestContext()
	expr := &ast.BinaryExpression{
		Op: "<", Left: &ast.IntLiteral{Value: 1, Pos: pos()}, Right: &ast.IntLiteral{Value: 2, Pos: pos()}, Pos: pos(),
	}
	ty, rep := SynthExpr(ctx, expr)
	if rep != nil || !Equals(ty, Boolean) {
		t.Errorf("comparison should be boolean, got %v (%v)", ty, rep)
	}
}

func TestSynthCallArityAndArgTypeChecking(t *testing.T) {
	ctx := newTestContext()
	ctx.funcs["add"] = &FuncInfo{Name: "add", Params: []Type{Int, Int}, Return: Int}

	ok := &ast.CallExpression{
		Callee: &ast.Identifier{Name: "add", Pos: pos()},
		Args:   []ast.Expression{&ast.IntLiteral{Value: 1, Pos: pos()}, &ast.IntLiteral{Value: 2, Pos: pos()}},
		Pos:    pos(),
	}
	ty, rep := SynthExpr(ctx, ok)
	if rep != nil || !Equals(ty, Int) {
		t.Errorf("expected call to succeed with int, got %v (%v)", ty, rep)
	}

	badArity := &ast.CallExpression{
		Callee: &ast.Identifier{Name: "add", Pos: pos()},
		Args:   []ast.Expression{&ast.IntLiteral{Value: 1, Pos: pos()}},
		Pos:    pos(),
	}
	if _, rep := SynthExpr(ctx, badArity); rep == nil {
		t.Errorf("expected arity mismatch to fail")
	}

	badArgType := &ast.CallExpression{
		Callee: &ast.Identifier{Name: "add", Pos: pos()},
		Args:   []ast.Expression{&ast.IntLiteral{Value: 1, Pos: pos()}, &ast.StringLiteral{Value: "x", Pos: pos()}},
		Pos:    pos(),
	}
	if _, rep := SynthExpr(ctx, badArgType); rep == nil {
		t.Errorf("expected argument type mismatch to fail")
	}
}

func TestSynthBuiltinConstructors(t *testing.T) {
	ctx := newTestContext()
	call := &ast.CallExpression{Callee: &ast.Identifier{Name: "Map", Pos: pos()}, Pos: pos()}
	ty, rep := SynthExpr(ctx, call)
	if rep != nil {
		t.Fatalf("unexpected error: %v", rep)
	}
	m, ok := ty.(*TMap)
	if !ok {
		t.Fatalf("expected Map() to synthesize a TMap, got %T", ty)
	}
	if !IsWeak(m.Key) || !IsWeak(m.Value) {
		t.Errorf("expected fresh Map() to have weak key/value, got %s", ty)
	}
}

func TestSynthIndexExpressions(t *testing.T) {
	ctx := newTestContext()
	ctx.vars["xs"] = NewRefinedType(&TArray{Elem: Int})

	idx := &ast.IndexExpression{
		Object: &ast.Identifier{Name: "xs", Pos: pos()},
		Index:  &ast.IntLiteral{Value: 0, Pos: pos()},
		Pos:    pos(),
	}
	ty, rep := SynthExpr(ctx, idx)
	if rep != nil || !Equals(ty, Int) {
		t.Errorf("xs[0] should be int, got %v (%v)", ty, rep)
	}
}

func TestSynthUndefinedIdentifier(t *testing.T) {
	ctx := newTestContext()
	if _, rep := SynthExpr(ctx, &ast.Identifier{Name: "nope", Pos: pos()}); rep == nil {
		t.Errorf("expected undefined identifier to fail")
	}
}
