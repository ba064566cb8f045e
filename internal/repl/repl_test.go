package repl

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dingf3ng/schema/internal/ast"
)

func writeProgram(t *testing.T, prog *ast.Program) string {
	t.Helper()
	data, err := ast.Encode(prog)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	path := filepath.Join(t.TempDir(), "prog.json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestLoadStepRun(t *testing.T) {
	prog := &ast.Program{Body: []ast.Statement{
		&ast.VariableDeclaration{Declarators: []*ast.Declarator{{
			Name: "x", Init: &ast.IntLiteral{Value: 41},
		}}},
		&ast.AssignmentStatement{
			Target: &ast.Identifier{Name: "x"},
			Value:  &ast.BinaryExpression{Op: "+", Left: &ast.Identifier{Name: "x"}, Right: &ast.IntLiteral{Value: 1}},
		},
	}}
	path := writeProgram(t, prog)

	r := New()
	var out bytes.Buffer
	r.HandleCommand(":load "+path, &out)
	if !strings.Contains(out.String(), "Loaded") {
		t.Fatalf("expected load confirmation, got %q", out.String())
	}

	out.Reset()
	r.HandleCommand(":step", &out)
	r.HandleCommand(":env", &out)
	if !strings.Contains(out.String(), "x = 41") {
		t.Fatalf("expected x = 41 after one step, got %q", out.String())
	}

	out.Reset()
	r.HandleCommand(":run", &out)
	out.Reset()
	r.HandleCommand(":env", &out)
	if !strings.Contains(out.String(), "x = 42") {
		t.Fatalf("expected x = 42 after run, got %q", out.String())
	}
}

func TestEnvWithoutLoadReportsError(t *testing.T) {
	r := New()
	var out bytes.Buffer
	r.HandleCommand(":env", &out)
	if !strings.Contains(out.String(), "no program loaded") {
		t.Fatalf("expected a no-program-loaded error, got %q", out.String())
	}
}

func TestUnknownCommand(t *testing.T) {
	r := New()
	var out bytes.Buffer
	r.HandleCommand(":bogus", &out)
	if !strings.Contains(out.String(), "Unknown command") {
		t.Fatalf("expected unknown command message, got %q", out.String())
	}
}
