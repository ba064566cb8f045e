package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	prog := &Program{
		Pos: Pos{Line: 1, Column: 1},
		Body: []Statement{
			&VariableDeclaration{
				Declarators: []*Declarator{{
					Name: "arr",
					Init: &ArrayLiteral{Elements: []Expression{
						&IntLiteral{Value: 1}, &IntLiteral{Value: 3}, &IntLiteral{Value: 2},
					}},
				}},
			},
			&AssertStatement{
				Cond: &PredicateCheckExpression{
					Subject:       &Identifier{Name: "arr"},
					PredicateName: "sorted",
				},
				Message: &StringLiteral{Value: "must be sorted"},
			},
			&WhileStatement{
				Cond: &BinaryExpression{Op: "<", Left: &Identifier{Name: "i"}, Right: &IntLiteral{Value: 3}},
				Body: &BlockStatement{Body: []Statement{
					&AssignmentStatement{
						Target: &Identifier{Name: "i"},
						Value:  &BinaryExpression{Op: "+", Left: &Identifier{Name: "i"}, Right: &IntLiteral{Value: 1}},
					},
				}},
			},
			&FunctionDeclaration{
				Name:   "f",
				Params: []*Param{{Name: "n"}},
				Body: &BlockStatement{Body: []Statement{
					&ReturnStatement{Value: &Identifier{Name: "n"}},
				}},
			},
		},
	}

	data, err := Encode(prog)
	require.NoError(t, err)

	got, err := Decode(data)
	require.NoError(t, err)
	require.Len(t, got.Body, 4)

	decl, ok := got.Body[0].(*VariableDeclaration)
	require.True(t, ok)
	assert.Equal(t, "arr", decl.Declarators[0].Name)
	arrLit, ok := decl.Declarators[0].Init.(*ArrayLiteral)
	require.True(t, ok)
	assert.Len(t, arrLit.Elements, 3)

	assertStmt, ok := got.Body[1].(*AssertStatement)
	require.True(t, ok)
	pc, ok := assertStmt.Cond.(*PredicateCheckExpression)
	require.True(t, ok)
	assert.Equal(t, "sorted", pc.PredicateName)

	whileStmt, ok := got.Body[2].(*WhileStatement)
	require.True(t, ok)
	assert.Len(t, whileStmt.Body.Body, 1)

	fn, ok := got.Body[3].(*FunctionDeclaration)
	require.True(t, ok)
	assert.Equal(t, "f", fn.Name)
	_, ok = fn.Body.Body[0].(*ReturnStatement)
	assert.True(t, ok)
}

func TestDecodeRejectsUnknownKind(t *testing.T) {
	_, err := Decode([]byte(`{"body":[{"kind":"NotARealStatement"}]}`))
	assert.Error(t, err)
}
