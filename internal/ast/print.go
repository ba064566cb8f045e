package ast

import "fmt"

// Describe renders a short, human-readable label for a node, used in
// diagnostics so an error can name "the offending construct" without a full
// pretty-printer (out of scope: this module never reconstructs source text).
func Describe(n Node) string {
	switch v := n.(type) {
	case *Identifier:
		return fmt.Sprintf("identifier %q", v.Name)
	case *MetaIdentifier:
		return fmt.Sprintf("meta-identifier %q", v.Name)
	case *MemberExpression:
		return fmt.Sprintf("member .%s", v.Property)
	case *IndexExpression:
		return "index expression"
	case *CallExpression:
		return "call expression"
	case *BinaryExpression:
		return fmt.Sprintf("binary expression %q", v.Op)
	case *UnaryExpression:
		return fmt.Sprintf("unary expression %q", v.Op)
	case *RangeExpression:
		return "range expression"
	case *ArrayLiteral:
		return "array literal"
	case *MapLiteral:
		return "map literal"
	case *SetLiteral:
		return "set literal"
	case *IfStatement:
		return "if statement"
	case *WhileStatement:
		return "while statement"
	case *UntilStatement:
		return "until statement"
	case *ForStatement:
		return "for statement"
	case *ReturnStatement:
		return "return statement"
	case *VariableDeclaration:
		return "variable declaration"
	case *FunctionDeclaration:
		return fmt.Sprintf("function %q", v.Name)
	case *AssertStatement:
		return "assert statement"
	case *InvariantStatement:
		return "invariant statement"
	case *PredicateCheckExpression:
		return fmt.Sprintf("predicate check |- @%s", v.PredicateName)
	default:
		return fmt.Sprintf("%T", n)
	}
}
