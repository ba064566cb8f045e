package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dingf3ng/schema/internal/ast"
)

func writeTestProgram(t *testing.T) string {
	t.Helper()
	prog := &ast.Program{Body: []ast.Statement{
		&ast.VariableDeclaration{Declarators: []*ast.Declarator{{
			Name: "x", Init: &ast.IntLiteral{Value: 1},
		}}},
	}}
	data, err := ast.Encode(prog)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "prog.json")
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

func TestRunFmtRewritesInPlace(t *testing.T) {
	path := writeTestProgram(t)

	before, err := os.ReadFile(path)
	require.NoError(t, err)

	fmtWrite = true
	defer func() { fmtWrite = false }()
	require.NoError(t, runFmt(nil, []string{path}))

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotEqual(t, string(before), string(after))
	assert.Contains(t, string(after), "VariableDeclaration")

	prog, err := ast.Decode(after)
	require.NoError(t, err)
	assert.Len(t, prog.Body, 1)
}

func TestRunFmtRejectsUnknownKind(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"body":[{"kind":"NotReal"}]}`), 0644))

	fmtWrite = false
	assert.Error(t, runFmt(nil, []string{path}))
}
