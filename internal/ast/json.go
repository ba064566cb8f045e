package ast

import (
	"encoding/json"
	"fmt"
)

// Encode and Decode bridge the external AST ingestion contract (package doc)
// to JSON, so a host that has no in-process parser — the stepping REPL's
// `:load`, or the `schema check`/`schema trace` CLI commands — can read a
// program built elsewhere. Every node is tagged with its Go type name under
// "kind" and pattern-matched back on decode, the same closed-sum-type
// discipline the rest of the package uses for in-memory dispatch.
//
// Type annotations are not part of the wire format: the machine executes
// untyped, and the inference/refinement passes that consume annotations run
// over an AST built directly by their own caller, not over a JSON-decoded
// one. Declarator.Type and Param.Type always decode to nil.

// Encode renders prog as JSON.
func Encode(prog *Program) ([]byte, error) {
	return json.Marshal(encodeProgram(prog))
}

// Decode parses data into a Program.
func Decode(data []byte) (*Program, error) {
	var raw struct {
		Body []json.RawMessage `json:"body"`
		Pos  Pos               `json:"pos"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode program: %w", err)
	}
	body, err := decodeStatements(raw.Body)
	if err != nil {
		return nil, err
	}
	return &Program{Body: body, Pos: raw.Pos}, nil
}

func encodeProgram(p *Program) map[string]any {
	return map[string]any{
		"body": encodeStatements(p.Body),
		"pos":  p.Pos,
	}
}

func encodeStatements(stmts []Statement) []map[string]any {
	out := make([]map[string]any, len(stmts))
	for i, s := range stmts {
		out[i] = encodeStatement(s)
	}
	return out
}

func encodeExpressions(exprs []Expression) []map[string]any {
	out := make([]map[string]any, len(exprs))
	for i, e := range exprs {
		out[i] = encodeExpression(e)
	}
	return out
}

func encodeBlock(b *BlockStatement) map[string]any {
	if b == nil {
		return nil
	}
	return encodeStatement(b)
}

func encodeExprOpt(e Expression) any {
	if e == nil {
		return nil
	}
	return encodeExpression(e)
}

func encodeStatement(s Statement) map[string]any {
	switch n := s.(type) {
	case *VariableDeclaration:
		decls := make([]map[string]any, len(n.Declarators))
		for i, d := range n.Declarators {
			decls[i] = map[string]any{
				"name": d.Name,
				"init": encodeExprOpt(d.Init),
				"pos":  d.Pos,
			}
		}
		return map[string]any{"kind": "VariableDeclaration", "declarators": decls, "pos": n.Pos}

	case *FunctionDeclaration:
		params := make([]map[string]any, len(n.Params))
		for i, p := range n.Params {
			params[i] = map[string]any{"name": p.Name, "pos": p.Pos}
		}
		return map[string]any{
			"kind": "FunctionDeclaration", "name": n.Name, "params": params,
			"body": encodeBlock(n.Body), "pos": n.Pos,
		}

	case *AssignmentStatement:
		return map[string]any{
			"kind": "AssignmentStatement", "target": encodeExpression(n.Target),
			"value": encodeExpression(n.Value), "pos": n.Pos,
		}

	case *IfStatement:
		m := map[string]any{
			"kind": "IfStatement", "cond": encodeExpression(n.Cond),
			"then": encodeBlock(n.Then), "pos": n.Pos,
		}
		if n.Else != nil {
			m["else"] = encodeStatement(n.Else)
		}
		return m

	case *WhileStatement:
		return map[string]any{"kind": "WhileStatement", "cond": encodeExpression(n.Cond), "body": encodeBlock(n.Body), "pos": n.Pos}

	case *UntilStatement:
		return map[string]any{"kind": "UntilStatement", "cond": encodeExpression(n.Cond), "body": encodeBlock(n.Body), "pos": n.Pos}

	case *ForStatement:
		return map[string]any{
			"kind": "ForStatement", "varName": n.VarName,
			"iterable": encodeExpression(n.Iterable), "body": encodeBlock(n.Body), "pos": n.Pos,
		}

	case *ReturnStatement:
		return map[string]any{"kind": "ReturnStatement", "value": encodeExprOpt(n.Value), "pos": n.Pos}

	case *BlockStatement:
		return map[string]any{"kind": "BlockStatement", "body": encodeStatements(n.Body), "pos": n.Pos}

	case *ExpressionStatement:
		return map[string]any{"kind": "ExpressionStatement", "expr": encodeExpression(n.Expr), "pos": n.Pos}

	case *InvariantStatement:
		return map[string]any{
			"kind": "InvariantStatement", "cond": encodeExpression(n.Cond),
			"message": encodeExprOpt(n.Message), "pos": n.Pos,
		}

	case *AssertStatement:
		return map[string]any{
			"kind": "AssertStatement", "cond": encodeExpression(n.Cond),
			"message": encodeExprOpt(n.Message), "pos": n.Pos,
		}

	default:
		panic(fmt.Sprintf("ast: unencodable statement %T", s))
	}
}

func encodeExpression(e Expression) map[string]any {
	switch n := e.(type) {
	case *IntLiteral:
		return map[string]any{"kind": "IntLiteral", "value": n.Value, "pos": n.Pos}
	case *FloatLiteral:
		return map[string]any{"kind": "FloatLiteral", "value": n.Value, "pos": n.Pos}
	case *StringLiteral:
		return map[string]any{"kind": "StringLiteral", "value": n.Value, "pos": n.Pos}
	case *BoolLiteral:
		return map[string]any{"kind": "BoolLiteral", "value": n.Value, "pos": n.Pos}
	case *Identifier:
		return map[string]any{"kind": "Identifier", "name": n.Name, "pos": n.Pos}
	case *MetaIdentifier:
		return map[string]any{"kind": "MetaIdentifier", "name": n.Name, "pos": n.Pos}
	case *ArrayLiteral:
		return map[string]any{"kind": "ArrayLiteral", "elements": encodeExpressions(n.Elements), "pos": n.Pos}
	case *MapLiteral:
		entries := make([]map[string]any, len(n.Entries))
		for i, ent := range n.Entries {
			entries[i] = map[string]any{"key": encodeExpression(ent.Key), "value": encodeExpression(ent.Value)}
		}
		return map[string]any{"kind": "MapLiteral", "entries": entries, "pos": n.Pos}
	case *SetLiteral:
		return map[string]any{"kind": "SetLiteral", "elements": encodeExpressions(n.Elements), "pos": n.Pos}
	case *BinaryExpression:
		return map[string]any{"kind": "BinaryExpression", "op": n.Op, "left": encodeExpression(n.Left), "right": encodeExpression(n.Right), "pos": n.Pos}
	case *UnaryExpression:
		return map[string]any{"kind": "UnaryExpression", "op": n.Op, "operand": encodeExpression(n.Operand), "pos": n.Pos}
	case *CallExpression:
		return map[string]any{"kind": "CallExpression", "callee": encodeExpression(n.Callee), "args": encodeExpressions(n.Args), "pos": n.Pos}
	case *MemberExpression:
		return map[string]any{"kind": "MemberExpression", "object": encodeExpression(n.Object), "property": n.Property, "pos": n.Pos}
	case *IndexExpression:
		return map[string]any{"kind": "IndexExpression", "object": encodeExpression(n.Object), "index": encodeExpression(n.Index), "pos": n.Pos}
	case *RangeExpression:
		return map[string]any{
			"kind": "RangeExpression", "start": encodeExprOpt(n.Start), "end": encodeExprOpt(n.End),
			"inclusive": n.Inclusive, "pos": n.Pos,
		}
	case *TypeOfExpression:
		return map[string]any{"kind": "TypeOfExpression", "operand": encodeExpression(n.Operand), "pos": n.Pos}
	case *PredicateCheckExpression:
		return map[string]any{
			"kind": "PredicateCheckExpression", "subject": encodeExpression(n.Subject),
			"predicateName": n.PredicateName, "args": encodeExpressions(n.Args), "pos": n.Pos,
		}
	case *AndExpression:
		return map[string]any{"kind": "AndExpression", "left": encodeExpression(n.Left), "right": encodeExpression(n.Right), "pos": n.Pos}
	case *OrExpression:
		return map[string]any{"kind": "OrExpression", "left": encodeExpression(n.Left), "right": encodeExpression(n.Right), "pos": n.Pos}
	default:
		panic(fmt.Sprintf("ast: unencodable expression %T", e))
	}
}

type kindTag struct {
	Kind string `json:"kind"`
}

func decodeStatements(raws []json.RawMessage) ([]Statement, error) {
	out := make([]Statement, len(raws))
	for i, r := range raws {
		s, err := decodeStatement(r)
		if err != nil {
			return nil, err
		}
		out[i] = s
	}
	return out, nil
}

func decodeExpressions(raws []json.RawMessage) ([]Expression, error) {
	out := make([]Expression, len(raws))
	for i, r := range raws {
		e, err := decodeExpression(r)
		if err != nil {
			return nil, err
		}
		out[i] = e
	}
	return out, nil
}

func decodeExprOpt(raw json.RawMessage) (Expression, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	return decodeExpression(raw)
}

func decodeBlock(raw json.RawMessage) (*BlockStatement, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	s, err := decodeStatement(raw)
	if err != nil {
		return nil, err
	}
	b, ok := s.(*BlockStatement)
	if !ok {
		return nil, fmt.Errorf("ast: expected BlockStatement, got %T", s)
	}
	return b, nil
}

func decodeStatement(raw json.RawMessage) (Statement, error) {
	var tag kindTag
	if err := json.Unmarshal(raw, &tag); err != nil {
		return nil, fmt.Errorf("decode statement: %w", err)
	}
	switch tag.Kind {
	case "VariableDeclaration":
		var body struct {
			Declarators []struct {
				Name string          `json:"name"`
				Init json.RawMessage `json:"init"`
				Pos  Pos             `json:"pos"`
			} `json:"declarators"`
			Pos Pos `json:"pos"`
		}
		if err := json.Unmarshal(raw, &body); err != nil {
			return nil, err
		}
		decls := make([]*Declarator, len(body.Declarators))
		for i, d := range body.Declarators {
			init, err := decodeExprOpt(d.Init)
			if err != nil {
				return nil, err
			}
			decls[i] = &Declarator{Name: d.Name, Init: init, Pos: d.Pos}
		}
		return &VariableDeclaration{Declarators: decls, Pos: body.Pos}, nil

	case "FunctionDeclaration":
		var body struct {
			Name   string `json:"name"`
			Params []struct {
				Name string `json:"name"`
				Pos  Pos    `json:"pos"`
			} `json:"params"`
			Body json.RawMessage `json:"body"`
			Pos  Pos             `json:"pos"`
		}
		if err := json.Unmarshal(raw, &body); err != nil {
			return nil, err
		}
		params := make([]*Param, len(body.Params))
		for i, p := range body.Params {
			params[i] = &Param{Name: p.Name, Pos: p.Pos}
		}
		blk, err := decodeBlock(body.Body)
		if err != nil {
			return nil, err
		}
		return &FunctionDeclaration{Name: body.Name, Params: params, Body: blk, Pos: body.Pos}, nil

	case "AssignmentStatement":
		var body struct {
			Target json.RawMessage `json:"target"`
			Value  json.RawMessage `json:"value"`
			Pos    Pos             `json:"pos"`
		}
		if err := json.Unmarshal(raw, &body); err != nil {
			return nil, err
		}
		target, err := decodeExpression(body.Target)
		if err != nil {
			return nil, err
		}
		value, err := decodeExpression(body.Value)
		if err != nil {
			return nil, err
		}
		return &AssignmentStatement{Target: target, Value: value, Pos: body.Pos}, nil

	case "IfStatement":
		var body struct {
			Cond json.RawMessage `json:"cond"`
			Then json.RawMessage `json:"then"`
			Else json.RawMessage `json:"else"`
			Pos  Pos             `json:"pos"`
		}
		if err := json.Unmarshal(raw, &body); err != nil {
			return nil, err
		}
		cond, err := decodeExpression(body.Cond)
		if err != nil {
			return nil, err
		}
		then, err := decodeBlock(body.Then)
		if err != nil {
			return nil, err
		}
		var elseStmt Statement
		if len(body.Else) > 0 && string(body.Else) != "null" {
			elseStmt, err = decodeStatement(body.Else)
			if err != nil {
				return nil, err
			}
		}
		return &IfStatement{Cond: cond, Then: then, Else: elseStmt, Pos: body.Pos}, nil

	case "WhileStatement", "UntilStatement":
		var body struct {
			Cond json.RawMessage `json:"cond"`
			Body json.RawMessage `json:"body"`
			Pos  Pos             `json:"pos"`
		}
		if err := json.Unmarshal(raw, &body); err != nil {
			return nil, err
		}
		cond, err := decodeExpression(body.Cond)
		if err != nil {
			return nil, err
		}
		blk, err := decodeBlock(body.Body)
		if err != nil {
			return nil, err
		}
		if tag.Kind == "WhileStatement" {
			return &WhileStatement{Cond: cond, Body: blk, Pos: body.Pos}, nil
		}
		return &UntilStatement{Cond: cond, Body: blk, Pos: body.Pos}, nil

	case "ForStatement":
		var body struct {
			VarName  string          `json:"varName"`
			Iterable json.RawMessage `json:"iterable"`
			Body     json.RawMessage `json:"body"`
			Pos      Pos             `json:"pos"`
		}
		if err := json.Unmarshal(raw, &body); err != nil {
			return nil, err
		}
		iterable, err := decodeExpression(body.Iterable)
		if err != nil {
			return nil, err
		}
		blk, err := decodeBlock(body.Body)
		if err != nil {
			return nil, err
		}
		return &ForStatement{VarName: body.VarName, Iterable: iterable, Body: blk, Pos: body.Pos}, nil

	case "ReturnStatement":
		var body struct {
			Value json.RawMessage `json:"value"`
			Pos   Pos             `json:"pos"`
		}
		if err := json.Unmarshal(raw, &body); err != nil {
			return nil, err
		}
		value, err := decodeExprOpt(body.Value)
		if err != nil {
			return nil, err
		}
		return &ReturnStatement{Value: value, Pos: body.Pos}, nil

	case "BlockStatement":
		var body struct {
			Body []json.RawMessage `json:"body"`
			Pos  Pos               `json:"pos"`
		}
		if err := json.Unmarshal(raw, &body); err != nil {
			return nil, err
		}
		stmts, err := decodeStatements(body.Body)
		if err != nil {
			return nil, err
		}
		return &BlockStatement{Body: stmts, Pos: body.Pos}, nil

	case "ExpressionStatement":
		var body struct {
			Expr json.RawMessage `json:"expr"`
			Pos  Pos             `json:"pos"`
		}
		if err := json.Unmarshal(raw, &body); err != nil {
			return nil, err
		}
		expr, err := decodeExpression(body.Expr)
		if err != nil {
			return nil, err
		}
		return &ExpressionStatement{Expr: expr, Pos: body.Pos}, nil

	case "InvariantStatement", "AssertStatement":
		var body struct {
			Cond    json.RawMessage `json:"cond"`
			Message json.RawMessage `json:"message"`
			Pos     Pos             `json:"pos"`
		}
		if err := json.Unmarshal(raw, &body); err != nil {
			return nil, err
		}
		cond, err := decodeExpression(body.Cond)
		if err != nil {
			return nil, err
		}
		message, err := decodeExprOpt(body.Message)
		if err != nil {
			return nil, err
		}
		if tag.Kind == "InvariantStatement" {
			return &InvariantStatement{Cond: cond, Message: message, Pos: body.Pos}, nil
		}
		return &AssertStatement{Cond: cond, Message: message, Pos: body.Pos}, nil

	default:
		return nil, fmt.Errorf("ast: unknown statement kind %q", tag.Kind)
	}
}

func decodeExpression(raw json.RawMessage) (Expression, error) {
	var tag kindTag
	if err := json.Unmarshal(raw, &tag); err != nil {
		return nil, fmt.Errorf("decode expression: %w", err)
	}
	switch tag.Kind {
	case "IntLiteral":
		var body struct {
			Value int64 `json:"value"`
			Pos   Pos   `json:"pos"`
		}
		if err := json.Unmarshal(raw, &body); err != nil {
			return nil, err
		}
		return &IntLiteral{Value: body.Value, Pos: body.Pos}, nil

	case "FloatLiteral":
		var body struct {
			Value float64 `json:"value"`
			Pos   Pos     `json:"pos"`
		}
		if err := json.Unmarshal(raw, &body); err != nil {
			return nil, err
		}
		return &FloatLiteral{Value: body.Value, Pos: body.Pos}, nil

	case "StringLiteral":
		var body struct {
			Value string `json:"value"`
			Pos   Pos    `json:"pos"`
		}
		if err := json.Unmarshal(raw, &body); err != nil {
			return nil, err
		}
		return &StringLiteral{Value: body.Value, Pos: body.Pos}, nil

	case "BoolLiteral":
		var body struct {
			Value bool `json:"value"`
			Pos   Pos  `json:"pos"`
		}
		if err := json.Unmarshal(raw, &body); err != nil {
			return nil, err
		}
		return &BoolLiteral{Value: body.Value, Pos: body.Pos}, nil

	case "Identifier":
		var body struct {
			Name string `json:"name"`
			Pos  Pos    `json:"pos"`
		}
		if err := json.Unmarshal(raw, &body); err != nil {
			return nil, err
		}
		return &Identifier{Name: body.Name, Pos: body.Pos}, nil

	case "MetaIdentifier":
		var body struct {
			Name string `json:"name"`
			Pos  Pos    `json:"pos"`
		}
		if err := json.Unmarshal(raw, &body); err != nil {
			return nil, err
		}
		return &MetaIdentifier{Name: body.Name, Pos: body.Pos}, nil

	case "ArrayLiteral":
		var body struct {
			Elements []json.RawMessage `json:"elements"`
			Pos      Pos               `json:"pos"`
		}
		if err := json.Unmarshal(raw, &body); err != nil {
			return nil, err
		}
		elems, err := decodeExpressions(body.Elements)
		if err != nil {
			return nil, err
		}
		return &ArrayLiteral{Elements: elems, Pos: body.Pos}, nil

	case "MapLiteral":
		var body struct {
			Entries []struct {
				Key   json.RawMessage `json:"key"`
				Value json.RawMessage `json:"value"`
			} `json:"entries"`
			Pos Pos `json:"pos"`
		}
		if err := json.Unmarshal(raw, &body); err != nil {
			return nil, err
		}
		entries := make([]MapEntry, len(body.Entries))
		for i, ent := range body.Entries {
			k, err := decodeExpression(ent.Key)
			if err != nil {
				return nil, err
			}
			v, err := decodeExpression(ent.Value)
			if err != nil {
				return nil, err
			}
			entries[i] = MapEntry{Key: k, Value: v}
		}
		return &MapLiteral{Entries: entries, Pos: body.Pos}, nil

	case "SetLiteral":
		var body struct {
			Elements []json.RawMessage `json:"elements"`
			Pos      Pos               `json:"pos"`
		}
		if err := json.Unmarshal(raw, &body); err != nil {
			return nil, err
		}
		elems, err := decodeExpressions(body.Elements)
		if err != nil {
			return nil, err
		}
		return &SetLiteral{Elements: elems, Pos: body.Pos}, nil

	case "BinaryExpression":
		var body struct {
			Op    string          `json:"op"`
			Left  json.RawMessage `json:"left"`
			Right json.RawMessage `json:"right"`
			Pos   Pos             `json:"pos"`
		}
		if err := json.Unmarshal(raw, &body); err != nil {
			return nil, err
		}
		left, err := decodeExpression(body.Left)
		if err != nil {
			return nil, err
		}
		right, err := decodeExpression(body.Right)
		if err != nil {
			return nil, err
		}
		return &BinaryExpression{Op: body.Op, Left: left, Right: right, Pos: body.Pos}, nil

	case "UnaryExpression":
		var body struct {
			Op      string          `json:"op"`
			Operand json.RawMessage `json:"operand"`
			Pos     Pos             `json:"pos"`
		}
		if err := json.Unmarshal(raw, &body); err != nil {
			return nil, err
		}
		operand, err := decodeExpression(body.Operand)
		if err != nil {
			return nil, err
		}
		return &UnaryExpression{Op: body.Op, Operand: operand, Pos: body.Pos}, nil

	case "CallExpression":
		var body struct {
			Callee json.RawMessage   `json:"callee"`
			Args   []json.RawMessage `json:"args"`
			Pos    Pos               `json:"pos"`
		}
		if err := json.Unmarshal(raw, &body); err != nil {
			return nil, err
		}
		callee, err := decodeExpression(body.Callee)
		if err != nil {
			return nil, err
		}
		args, err := decodeExpressions(body.Args)
		if err != nil {
			return nil, err
		}
		return &CallExpression{Callee: callee, Args: args, Pos: body.Pos}, nil

	case "MemberExpression":
		var body struct {
			Object   json.RawMessage `json:"object"`
			Property string          `json:"property"`
			Pos      Pos             `json:"pos"`
		}
		if err := json.Unmarshal(raw, &body); err != nil {
			return nil, err
		}
		object, err := decodeExpression(body.Object)
		if err != nil {
			return nil, err
		}
		return &MemberExpression{Object: object, Property: body.Property, Pos: body.Pos}, nil

	case "IndexExpression":
		var body struct {
			Object json.RawMessage `json:"object"`
			Index  json.RawMessage `json:"index"`
			Pos    Pos             `json:"pos"`
		}
		if err := json.Unmarshal(raw, &body); err != nil {
			return nil, err
		}
		object, err := decodeExpression(body.Object)
		if err != nil {
			return nil, err
		}
		index, err := decodeExpression(body.Index)
		if err != nil {
			return nil, err
		}
		return &IndexExpression{Object: object, Index: index, Pos: body.Pos}, nil

	case "RangeExpression":
		var body struct {
			Start     json.RawMessage `json:"start"`
			End       json.RawMessage `json:"end"`
			Inclusive bool            `json:"inclusive"`
			Pos       Pos             `json:"pos"`
		}
		if err := json.Unmarshal(raw, &body); err != nil {
			return nil, err
		}
		start, err := decodeExprOpt(body.Start)
		if err != nil {
			return nil, err
		}
		end, err := decodeExprOpt(body.End)
		if err != nil {
			return nil, err
		}
		return &RangeExpression{Start: start, End: end, Inclusive: body.Inclusive, Pos: body.Pos}, nil

	case "TypeOfExpression":
		var body struct {
			Operand json.RawMessage `json:"operand"`
			Pos     Pos             `json:"pos"`
		}
		if err := json.Unmarshal(raw, &body); err != nil {
			return nil, err
		}
		operand, err := decodeExpression(body.Operand)
		if err != nil {
			return nil, err
		}
		return &TypeOfExpression{Operand: operand, Pos: body.Pos}, nil

	case "PredicateCheckExpression":
		var body struct {
			Subject       json.RawMessage   `json:"subject"`
			PredicateName string            `json:"predicateName"`
			Args          []json.RawMessage `json:"args"`
			Pos           Pos               `json:"pos"`
		}
		if err := json.Unmarshal(raw, &body); err != nil {
			return nil, err
		}
		subject, err := decodeExpression(body.Subject)
		if err != nil {
			return nil, err
		}
		args, err := decodeExpressions(body.Args)
		if err != nil {
			return nil, err
		}
		return &PredicateCheckExpression{Subject: subject, PredicateName: body.PredicateName, Args: args, Pos: body.Pos}, nil

	case "AndExpression", "OrExpression":
		var body struct {
			Left  json.RawMessage `json:"left"`
			Right json.RawMessage `json:"right"`
			Pos   Pos             `json:"pos"`
		}
		if err := json.Unmarshal(raw, &body); err != nil {
			return nil, err
		}
		left, err := decodeExpression(body.Left)
		if err != nil {
			return nil, err
		}
		right, err := decodeExpression(body.Right)
		if err != nil {
			return nil, err
		}
		if tag.Kind == "AndExpression" {
			return &AndExpression{Left: left, Right: right, Pos: body.Pos}, nil
		}
		return &OrExpression{Left: left, Right: right, Pos: body.Pos}, nil

	default:
		return nil, fmt.Errorf("ast: unknown expression kind %q", tag.Kind)
	}
}
