package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dingf3ng/schema/internal/ast"
)

func writeProgramFor(t *testing.T, prog *ast.Program) string {
	t.Helper()
	data, err := ast.Encode(prog)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "prog.json")
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

func TestRunCheckAcceptsWellTypedProgram(t *testing.T) {
	prog := &ast.Program{Body: []ast.Statement{
		&ast.VariableDeclaration{Declarators: []*ast.Declarator{{
			Name: "x", Init: &ast.IntLiteral{Value: 1},
		}}},
		&ast.AssignmentStatement{
			Target: &ast.Identifier{Name: "x"},
			Value:  &ast.BinaryExpression{Op: "+", Left: &ast.Identifier{Name: "x"}, Right: &ast.IntLiteral{Value: 1}},
		},
	}}
	path := writeProgramFor(t, prog)
	assert.NoError(t, runCheck(nil, []string{path}))
}

func TestRunCheckRejectsNonBooleanCondition(t *testing.T) {
	prog := &ast.Program{Body: []ast.Statement{
		&ast.IfStatement{
			Cond: &ast.IntLiteral{Value: 1},
			Then: &ast.BlockStatement{},
		},
	}}
	path := writeProgramFor(t, prog)
	assert.Error(t, runCheck(nil, []string{path}))
}

func TestRunCheckBatchesOverWorkerPool(t *testing.T) {
	good := &ast.Program{Body: []ast.Statement{
		&ast.VariableDeclaration{Declarators: []*ast.Declarator{{
			Name: "x", Init: &ast.IntLiteral{Value: 1},
		}}},
	}}
	bad := &ast.Program{Body: []ast.Statement{
		&ast.IfStatement{Cond: &ast.IntLiteral{Value: 1}, Then: &ast.BlockStatement{}},
	}}

	paths := []string{
		writeProgramFor(t, good),
		writeProgramFor(t, good),
		writeProgramFor(t, bad),
	}
	assert.Error(t, runCheck(nil, paths))

	onlyGood := []string{paths[0], paths[1]}
	assert.NoError(t, runCheck(nil, onlyGood))
}
