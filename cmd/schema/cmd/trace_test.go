package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dingf3ng/schema/internal/ast"
)

func TestRunTraceRunsToCompletion(t *testing.T) {
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

	traceManifestPath = ""
	assert.NoError(t, runTrace(nil, []string{path}))
}

func TestRunTraceUsesManifestVerbosity(t *testing.T) {
	prog := &ast.Program{Body: []ast.Statement{
		&ast.VariableDeclaration{Declarators: []*ast.Declarator{{
			Name: "x", Init: &ast.IntLiteral{Value: 1},
		}}},
	}}
	path := writeProgramFor(t, prog)

	manifestPath := filepath.Join(t.TempDir(), "schema.yaml")
	require.NoError(t, os.WriteFile(manifestPath, []byte("trace_verbosity: verbose\nmax_refinement_passes: 3\n"), 0644))

	traceManifestPath = manifestPath
	defer func() { traceManifestPath = "" }()
	assert.NoError(t, runTrace(nil, []string{path}))
}
