// Package ast defines the external AST surface consumed by the SchemA
// interpreter. Programs are built by an external parser (out of scope for
// this module) and handed to the inference/refinement/machine pipeline as
// a fully formed *Program.
package ast

import "fmt"

// Pos identifies a source location. Every node carries one.
type Pos struct {
	Line   int
	Column int
}

func (p Pos) String() string { return fmt.Sprintf("%d:%d", p.Line, p.Column) }

// Node is the base interface implemented by every AST node.
type Node interface {
	Position() Pos
}

// Program is the root of a SchemA compilation unit.
type Program struct {
	Body []Statement
	Pos  Pos
}

func (p *Program) Position() Pos { return p.Pos }

// ---------------------------------------------------------------------------
// Statements
// ---------------------------------------------------------------------------

// Statement is implemented by every statement-level node.
type Statement interface {
	Node
	stmtNode()
}

// Declarator is one `name [: type] [= init]` clause of a VariableDeclaration.
type Declarator struct {
	Name    string
	Type    TypeAnnotation // nil if omitted
	Init    Expression     // nil if omitted
	Pos     Pos
}

// VariableDeclaration introduces one or more bindings with `let`.
type VariableDeclaration struct {
	Declarators []*Declarator
	Pos         Pos
}

func (*VariableDeclaration) stmtNode()        {}
func (v *VariableDeclaration) Position() Pos  { return v.Pos }

// FunctionDeclaration introduces a named function with `do`.
type FunctionDeclaration struct {
	Name       string
	Params     []*Param
	ReturnType TypeAnnotation // nil if not annotated
	Body       *BlockStatement
	Pos        Pos
}

func (*FunctionDeclaration) stmtNode()       {}
func (f *FunctionDeclaration) Position() Pos { return f.Pos }

// Param is a single function parameter.
type Param struct {
	Name string
	Type TypeAnnotation // nil if not annotated -> defaults to weak
	Pos  Pos
}

// AssignmentStatement covers `target = value`, where target is an
// Identifier, MemberExpression, or IndexExpression.
type AssignmentStatement struct {
	Target Expression
	Value  Expression
	Pos    Pos
}

func (*AssignmentStatement) stmtNode()       {}
func (a *AssignmentStatement) Position() Pos { return a.Pos }

// IfStatement is `if cond {then} [else {else}]`. Else may itself be another
// IfStatement (else-if chaining) or a *BlockStatement.
type IfStatement struct {
	Cond Expression
	Then *BlockStatement
	Else Statement // *BlockStatement or *IfStatement, nil if absent
	Pos  Pos
}

func (*IfStatement) stmtNode()       {}
func (i *IfStatement) Position() Pos { return i.Pos }

// WhileStatement is `while cond {body}`.
type WhileStatement struct {
	Cond Expression
	Body *BlockStatement
	Pos  Pos
}

func (*WhileStatement) stmtNode()       {}
func (w *WhileStatement) Position() Pos { return w.Pos }

// UntilStatement is `until cond {body}` — the negated dual of while.
type UntilStatement struct {
	Cond Expression
	Body *BlockStatement
	Pos  Pos
}

func (*UntilStatement) stmtNode()       {}
func (u *UntilStatement) Position() Pos { return u.Pos }

// ForStatement is `for var in iterable {body}`.
type ForStatement struct {
	VarName  string
	Iterable Expression
	Body     *BlockStatement
	Pos      Pos
}

func (*ForStatement) stmtNode()       {}
func (f *ForStatement) Position() Pos { return f.Pos }

// ReturnStatement is `return [expr]`.
type ReturnStatement struct {
	Value Expression // nil for bare `return`
	Pos   Pos
}

func (*ReturnStatement) stmtNode()       {}
func (r *ReturnStatement) Position() Pos { return r.Pos }

// BlockStatement is a `{ ... }` sequence introducing its own scope.
type BlockStatement struct {
	Body []Statement
	Pos  Pos
}

func (*BlockStatement) stmtNode()       {}
func (b *BlockStatement) Position() Pos { return b.Pos }

// ExpressionStatement wraps an expression evaluated for effect.
type ExpressionStatement struct {
	Expr Expression
	Pos  Pos
}

func (*ExpressionStatement) stmtNode()       {}
func (e *ExpressionStatement) Position() Pos { return e.Pos }

// InvariantStatement is `@invariant(cond, msg?)`.
type InvariantStatement struct {
	Cond    Expression
	Message Expression // nil if absent; must be string-typed
	Pos     Pos
}

func (*InvariantStatement) stmtNode()       {}
func (i *InvariantStatement) Position() Pos { return i.Pos }

// AssertStatement is `@assert(cond, msg?)`.
type AssertStatement struct {
	Cond    Expression
	Message Expression // nil if absent
	Pos     Pos
}

func (*AssertStatement) stmtNode()       {}
func (a *AssertStatement) Position() Pos { return a.Pos }

// ---------------------------------------------------------------------------
// Expressions
// ---------------------------------------------------------------------------

// Expression is implemented by every expression-level node.
type Expression interface {
	Node
	exprNode()
}

// IntLiteral is an integer literal.
type IntLiteral struct {
	Value int64
	Pos   Pos
}

func (*IntLiteral) exprNode()       {}
func (n *IntLiteral) Position() Pos { return n.Pos }

// FloatLiteral is a floating point literal.
type FloatLiteral struct {
	Value float64
	Pos   Pos
}

func (*FloatLiteral) exprNode()       {}
func (n *FloatLiteral) Position() Pos { return n.Pos }

// StringLiteral is a string literal.
type StringLiteral struct {
	Value string
	Pos   Pos
}

func (*StringLiteral) exprNode()       {}
func (n *StringLiteral) Position() Pos { return n.Pos }

// BoolLiteral is `true`/`false`.
type BoolLiteral struct {
	Value bool
	Pos   Pos
}

func (*BoolLiteral) exprNode()       {}
func (n *BoolLiteral) Position() Pos { return n.Pos }

// Identifier is a bare name reference, including the unbindable `_`.
type Identifier struct {
	Name string
	Pos  Pos
}

func (*Identifier) exprNode()       {}
func (n *Identifier) Position() Pos { return n.Pos }

// MetaIdentifier is a `@name`-form reference used for predicate names in
// predicate-construction contexts (`@sorted`) as well as bare strings where
// the surrounding context calls for one.
type MetaIdentifier struct {
	Name string
	Pos  Pos
}

func (*MetaIdentifier) exprNode()       {}
func (n *MetaIdentifier) Position() Pos { return n.Pos }

// ArrayLiteral is `[e1, e2, ...]`.
type ArrayLiteral struct {
	Elements []Expression
	Pos      Pos
}

func (*ArrayLiteral) exprNode()       {}
func (n *ArrayLiteral) Position() Pos { return n.Pos }

// MapEntry is one `key: value` pair of a MapLiteral.
type MapEntry struct {
	Key   Expression
	Value Expression
}

// MapLiteral is `{k1: v1, k2: v2, ...}`.
type MapLiteral struct {
	Entries []MapEntry
	Pos     Pos
}

func (*MapLiteral) exprNode()       {}
func (n *MapLiteral) Position() Pos { return n.Pos }

// SetLiteral is `{e1, e2, ...}`.
type SetLiteral struct {
	Elements []Expression
	Pos      Pos
}

func (*SetLiteral) exprNode()       {}
func (n *SetLiteral) Position() Pos { return n.Pos }

// BinaryExpression is `left op right`.
type BinaryExpression struct {
	Op    string
	Left  Expression
	Right Expression
	Pos   Pos
}

func (*BinaryExpression) exprNode()       {}
func (n *BinaryExpression) Position() Pos { return n.Pos }

// UnaryExpression is `op operand` (`-` or `!`).
type UnaryExpression struct {
	Op      string
	Operand Expression
	Pos     Pos
}

func (*UnaryExpression) exprNode()       {}
func (n *UnaryExpression) Position() Pos { return n.Pos }

// CallExpression is `callee(args...)`.
type CallExpression struct {
	Callee Expression
	Args   []Expression
	Pos    Pos
}

func (*CallExpression) exprNode()       {}
func (n *CallExpression) Position() Pos { return n.Pos }

// MemberExpression is `object.property`.
type MemberExpression struct {
	Object   Expression
	Property string
	Pos      Pos
}

func (*MemberExpression) exprNode()       {}
func (n *MemberExpression) Position() Pos { return n.Pos }

// IndexExpression is `object[index]`.
type IndexExpression struct {
	Object Expression
	Index  Expression
	Pos    Pos
}

func (*IndexExpression) exprNode()       {}
func (n *IndexExpression) Position() Pos { return n.Pos }

// RangeExpression is `start..end`, `start..=end`, or `..end` (open start).
// Start and End may be nil to model an unbounded endpoint.
type RangeExpression struct {
	Start     Expression
	End       Expression
	Inclusive bool
	Pos       Pos
}

func (*RangeExpression) exprNode()       {}
func (n *RangeExpression) Position() Pos { return n.Pos }

// TypeOfExpression is `typeof(expr)`.
type TypeOfExpression struct {
	Operand Expression
	Pos     Pos
}

func (*TypeOfExpression) exprNode()       {}
func (n *TypeOfExpression) Position() Pos { return n.Pos }

// PredicateCheckExpression is `subject |- @predicate(args...)`.
type PredicateCheckExpression struct {
	Subject       Expression
	PredicateName string
	Args          []Expression
	Pos           Pos
}

func (*PredicateCheckExpression) exprNode()       {}
func (n *PredicateCheckExpression) Position() Pos { return n.Pos }

// AndExpression is `left && right` (short-circuit).
type AndExpression struct {
	Left  Expression
	Right Expression
	Pos   Pos
}

func (*AndExpression) exprNode()       {}
func (n *AndExpression) Position() Pos { return n.Pos }

// OrExpression is `left || right` (short-circuit).
type OrExpression struct {
	Left  Expression
	Right Expression
	Pos   Pos
}

func (*OrExpression) exprNode()       {}
func (n *OrExpression) Position() Pos { return n.Pos }

// ---------------------------------------------------------------------------
// Type annotations
// ---------------------------------------------------------------------------

// TypeAnnotation is the surface syntax for a type written by the user.
type TypeAnnotation interface {
	Node
	typeAnnotationNode()
}

// SimpleTypeAnnotation names a primitive or placeholder type:
// int, float, string, bool/boolean, void, weak, poly, Range.
type SimpleTypeAnnotation struct {
	Name string
	Pos  Pos
}

func (*SimpleTypeAnnotation) typeAnnotationNode() {}
func (n *SimpleTypeAnnotation) Position() Pos     { return n.Pos }

// GenericTypeAnnotation names a parameterized container type:
// Array, Map, Set, MinHeap, MaxHeap, MinHeapMap, MaxHeapMap, Graph,
// BinaryTree, AVLTree.
type GenericTypeAnnotation struct {
	Name string
	Args []TypeAnnotation
	Pos  Pos
}

func (*GenericTypeAnnotation) typeAnnotationNode() {}
func (n *GenericTypeAnnotation) Position() Pos     { return n.Pos }

// UnionTypeAnnotation is `A | B | ...`.
type UnionTypeAnnotation struct {
	Types []TypeAnnotation
	Pos   Pos
}

func (*UnionTypeAnnotation) typeAnnotationNode() {}
func (n *UnionTypeAnnotation) Position() Pos     { return n.Pos }

// IntersectionTypeAnnotation is `A & B & ...`.
type IntersectionTypeAnnotation struct {
	Types []TypeAnnotation
	Pos   Pos
}

func (*IntersectionTypeAnnotation) typeAnnotationNode() {}
func (n *IntersectionTypeAnnotation) Position() Pos     { return n.Pos }

// FunctionTypeAnnotation is `(A, B) -> C`.
type FunctionTypeAnnotation struct {
	Params   []TypeAnnotation
	Return   TypeAnnotation
	Variadic bool
	Pos      Pos
}

func (*FunctionTypeAnnotation) typeAnnotationNode() {}
func (n *FunctionTypeAnnotation) Position() Pos     { return n.Pos }

// TupleTypeAnnotation is `(A, B, C)`.
type TupleTypeAnnotation struct {
	Elements []TypeAnnotation
	Pos      Pos
}

func (*TupleTypeAnnotation) typeAnnotationNode() {}
func (n *TupleTypeAnnotation) Position() Pos     { return n.Pos }

// RecordFieldAnnotation is one `name: Type` field of a RecordTypeAnnotation.
type RecordFieldAnnotation struct {
	Name string
	Type TypeAnnotation
}

// RecordTypeAnnotation is `{ name: Type, ... }`.
type RecordTypeAnnotation struct {
	Fields []RecordFieldAnnotation
	Pos    Pos
}

func (*RecordTypeAnnotation) typeAnnotationNode() {}
func (n *RecordTypeAnnotation) Position() Pos     { return n.Pos }
