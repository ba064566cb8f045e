package ast_test

import (
	"strings"
	"testing"

	"github.com/dingf3ng/schema/internal/ast"
	"github.com/dingf3ng/schema/testutil"
)

func TestDescribeGolden(t *testing.T) {
	nodes := []ast.Node{
		&ast.Identifier{Name: "x"},
		&ast.BinaryExpression{Op: "+"},
		&ast.WhileStatement{},
		&ast.FunctionDeclaration{Name: "fib"},
		&ast.PredicateCheckExpression{PredicateName: "sorted"},
	}

	var lines []string
	for _, n := range nodes {
		lines = append(lines, ast.Describe(n))
	}

	testutil.GoldenCompare(t, "ast/describe", strings.Join(lines, "\n")+"\n")
}
