package eval

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dingf3ng/schema/internal/ast"
	"github.com/dingf3ng/schema/internal/errors"
	"github.com/dingf3ng/schema/internal/invariant"
)

// frame is one entry of the machine's top-level continuation stack: "run
// the remaining statements of this sequence, in this environment."
// Control structures and function calls nested beneath the top level run
// through the direct recursive evaluator (execStatement/execBlock/evalExpr)
// rather than pushing their own frames; see the package doc for why.
type frame struct {
	stmts []ast.Statement
	idx   int
	env   *Environment
}

// Machine is SchemA's abstract evaluator (spec §4.2). Initialize builds one
// from a checked program; Step advances by one top-level statement, and Run
// drives it to completion. Func lookups are global, matching the type
// checker's global FuncEnv.
//
// Only the top-level statement sequence lives on the explicit frame stack.
// Loops, blocks, function calls and expressions beneath it are evaluated by
// direct recursion (execStatement/execBlock/evalExpr), so one Step runs a
// whole top-level statement, including every loop iteration and call inside
// it, and Snapshot never observes a state partway through one.
type Machine struct {
	Funcs    map[string]*ast.FunctionDeclaration
	Global   *Environment
	stack    []*frame
	output   []string
	finished bool
	tracker  *invariant.Tracker
	lastErr  *errors.Report

	// Synthesized accumulates every loop-invariant candidate synthesized
	// across the run (spec §4.3); advisory only, consumed by the stepping
	// REPL to enrich its displayed types.
	Synthesized []invariant.Candidate
}

// Initialize builds a Machine from prog: every top-level FunctionDeclaration
// is registered by name, and every other top-level statement becomes the
// implicit main sequence.
func Initialize(prog *ast.Program) *Machine {
	m := &Machine{
		Funcs:  make(map[string]*ast.FunctionDeclaration),
		Global: NewEnvironment(),
	}
	installBuiltins(m)

	var top []ast.Statement
	for _, s := range prog.Body {
		if fd, ok := s.(*ast.FunctionDeclaration); ok {
			m.Funcs[fd.Name] = fd
			continue
		}
		top = append(top, s)
	}
	m.stack = []*frame{{stmts: top, env: m.Global}}
	return m
}

func (m *Machine) IsFinished() bool { return m.finished }
func (m *Machine) GetOutput() []string {
	out := make([]string, len(m.output))
	copy(out, m.output)
	return out
}
func (m *Machine) GetEnvironment() *Environment { return m.Global }
func (m *Machine) LastError() *errors.Report     { return m.lastErr }

// EnvBindings returns the visible non-function bindings of the global
// environment, for hosts (the REPL's `:env`) that want to display them
// without depending on Environment's internal field layout.
func (m *Machine) EnvBindings() map[string]Value {
	return m.snapshotValues(m.Global)
}

// Step executes exactly one top-level statement and advances the frame
// stack, or marks the machine finished if the stack is exhausted.
func (m *Machine) Step() *errors.Report {
	if m.finished {
		return nil
	}
	if len(m.stack) == 0 {
		m.finished = true
		return nil
	}
	top := m.stack[len(m.stack)-1]
	if top.idx >= len(top.stmts) {
		m.stack = m.stack[:len(m.stack)-1]
		if len(m.stack) == 0 {
			m.finished = true
		}
		return nil
	}
	stmt := top.stmts[top.idx]
	top.idx++

	if _, rep := m.execStatement(stmt, top.env); rep != nil {
		m.lastErr = rep
		m.finished = true
		return rep
	}
	return nil
}

// Run drives the machine to completion (or the first error).
func (m *Machine) Run() *errors.Report {
	for !m.IsFinished() {
		if rep := m.Step(); rep != nil {
			return rep
		}
	}
	return nil
}

// execResult threads function-call return unwinding through execStatement
// and execBlock (spec §4.2/§9): a ReturnStatement sets Returned, and every
// enclosing block/loop propagates it upward without running further
// statements, until callFunction catches it.
type execResult struct {
	Returned bool
	Value    Value
}

func (m *Machine) execBlock(stmts []ast.Statement, env *Environment) (execResult, *errors.Report) {
	for _, s := range stmts {
		res, rep := m.execStatement(s, env)
		if rep != nil {
			return execResult{}, rep
		}
		if res.Returned {
			return res, nil
		}
	}
	return execResult{}, nil
}

func (m *Machine) execStatement(stmt ast.Statement, env *Environment) (execResult, *errors.Report) {
	switch s := stmt.(type) {
	case *ast.VariableDeclaration:
		for _, d := range s.Declarators {
			var val Value = VoidValue{}
			if d.Init != nil {
				v, rep := m.evalExpr(d.Init, env)
				if rep != nil {
					return execResult{}, rep
				}
				val = v
			}
			env.Define(d.Name, val)
		}
		return execResult{}, nil

	case *ast.AssignmentStatement:
		val, rep := m.evalExpr(s.Value, env)
		if rep != nil {
			return execResult{}, rep
		}
		return execResult{}, m.execAssign(s.Target, val, env)

	case *ast.IfStatement:
		cond, rep := m.evalExpr(s.Cond, env)
		if rep != nil {
			return execResult{}, rep
		}
		if asBool(cond) {
			return m.execBlock(s.Then.Body, env.Child())
		}
		if s.Else != nil {
			return m.execStatement(s.Else, env)
		}
		return execResult{}, nil

	case *ast.WhileStatement:
		return m.execLoop(env, func(e *Environment) (bool, *errors.Report) {
			cond, rep := m.evalExpr(s.Cond, e)
			if rep != nil {
				return false, rep
			}
			return asBool(cond), nil
		}, s.Body)

	case *ast.UntilStatement:
		return m.execLoop(env, func(e *Environment) (bool, *errors.Report) {
			cond, rep := m.evalExpr(s.Cond, e)
			if rep != nil {
				return false, rep
			}
			return !asBool(cond), nil
		}, s.Body)

	case *ast.ForStatement:
		return m.execFor(s, env)

	case *ast.ReturnStatement:
		if s.Value == nil {
			return execResult{Returned: true, Value: VoidValue{}}, nil
		}
		v, rep := m.evalExpr(s.Value, env)
		if rep != nil {
			return execResult{}, rep
		}
		return execResult{Returned: true, Value: v}, nil

	case *ast.BlockStatement:
		return m.execBlock(s.Body, env.Child())

	case *ast.ExpressionStatement:
		_, rep := m.evalExpr(s.Expr, env)
		return execResult{}, rep

	case *ast.InvariantStatement:
		return execResult{}, m.execCheck(s.Cond, s.Message, errors.VER002, "invariant", s.Pos, env)

	case *ast.AssertStatement:
		return execResult{}, m.execCheck(s.Cond, s.Message, errors.VER001, "assert", s.Pos, env)

	default:
		return execResult{}, errors.NewInternalError(errors.INT001, stmt.Position(), "unhandled statement kind during evaluation")
	}
}

func (m *Machine) execAssign(target ast.Expression, val Value, env *Environment) *errors.Report {
	switch t := target.(type) {
	case *ast.Identifier:
		env.Set(t.Name, val)
		return nil
	case *ast.IndexExpression:
		objVal, rep := m.evalExpr(t.Object, env)
		if rep != nil {
			return rep
		}
		idxVal, rep := m.evalExpr(t.Index, env)
		if rep != nil {
			return rep
		}
		return m.assignIndex(objVal, idxVal, val, t.Pos)
	default:
		return errors.NewInternalError(errors.INT001, target.Position(), "unsupported assignment target")
	}
}

func (m *Machine) assignIndex(objVal, idxVal, val Value, pos ast.Pos) *errors.Report {
	switch obj := objVal.(type) {
	case ArrayValue:
		idx, ok := idxVal.(IntValue)
		if !ok {
			return errors.NewRuntimeTypeError(errors.RTT001, pos, "array index must be an int")
		}
		if !obj.Arr.Set(int(idx.V), val) {
			return errors.NewIndexError(errors.IDX001, pos, "array index out of range")
		}
		return nil
	case MapValue:
		obj.M.Set(idxVal, val)
		return nil
	default:
		return errors.NewRuntimeTypeError(errors.RTT001, pos, "value is not indexable for assignment")
	}
}

func asBool(v Value) bool {
	b, ok := v.(BoolValue)
	return ok && b.V
}

// recordLoopState snapshots every visible non-function binding of env into
// the active tracker (spec §4.3's recordState), called once at loop entry
// and again after every iteration.
func (m *Machine) recordLoopState(env *Environment) {
	if m.tracker == nil {
		return
	}
	for k, v := range m.snapshot(env) {
		m.tracker.RecordState(k, v)
	}
}

// blockInvariants returns the InvariantStatements declared directly in a
// loop body, so they can be re-checked at the iteration boundaries spec
// §4.3 requires rather than only wherever they happen to sit textually.
func blockInvariants(body *ast.BlockStatement) []*ast.InvariantStatement {
	var invs []*ast.InvariantStatement
	for _, s := range body.Body {
		if inv, ok := s.(*ast.InvariantStatement); ok {
			invs = append(invs, inv)
		}
	}
	return invs
}

// checkInvariants re-evaluates each of a loop's invariants against env,
// returning the first failure. Called before a loop body runs and again
// after it completes, including when the body unwinds via an early
// return, so a violation introduced only at the tail of the body can't
// escape undetected by the time control returns to the statement's own
// textual position.
func (m *Machine) checkInvariants(invs []*ast.InvariantStatement, env *Environment) *errors.Report {
	for _, inv := range invs {
		if rep := m.execCheck(inv.Cond, inv.Message, errors.VER002, "invariant", inv.Pos, env); rep != nil {
			return rep
		}
	}
	return nil
}

func (m *Machine) execLoop(env *Environment, cond func(*Environment) (bool, *errors.Report), body *ast.BlockStatement) (execResult, *errors.Report) {
	parent := m.tracker
	loopTracker := invariant.NewTracker(parent)
	m.tracker = loopTracker
	defer func() { m.tracker = parent }()

	invs := blockInvariants(body)

	m.recordLoopState(env)
	for {
		ok, rep := cond(env)
		if rep != nil {
			return execResult{}, rep
		}
		if !ok {
			break
		}
		child := env.Child()
		if rep := m.checkInvariants(invs, child); rep != nil {
			return execResult{}, rep
		}
		res, rep := m.execBlock(body.Body, child)
		if rep != nil {
			return execResult{}, rep
		}
		if rep := m.checkInvariants(invs, child); rep != nil {
			return execResult{}, rep
		}
		m.recordLoopState(env)
		if res.Returned {
			m.Synthesized = append(m.Synthesized, loopTracker.Synthesize()...)
			return res, nil
		}
	}
	m.Synthesized = append(m.Synthesized, loopTracker.Synthesize()...)
	return execResult{}, nil
}

func (m *Machine) execFor(s *ast.ForStatement, env *Environment) (execResult, *errors.Report) {
	iterVal, rep := m.evalExpr(s.Iterable, env)
	if rep != nil {
		return execResult{}, rep
	}

	parent := m.tracker
	loopTracker := invariant.NewTracker(parent)
	m.tracker = loopTracker
	defer func() { m.tracker = parent }()
	m.recordLoopState(env)

	invs := blockInvariants(s.Body)

	// Lazy ranges are driven through their pull-based generator rather than
	// materialized into a slice first, so an unbounded range (`start..`) can
	// still be consumed by a loop (spec §4.2's iteration contract) as long
	// as the body itself breaks out via an early return.
	if rv, ok := iterVal.(RangeValue); ok {
		next := rv.R.Generate()
		for {
			n, ok := next()
			if !ok {
				break
			}
			child := env.Child()
			child.Define(s.VarName, IntValue{V: int64(n)})
			if rep := m.checkInvariants(invs, child); rep != nil {
				return execResult{}, rep
			}
			res, rep := m.execBlock(s.Body.Body, child)
			if rep != nil {
				return execResult{}, rep
			}
			if rep := m.checkInvariants(invs, child); rep != nil {
				return execResult{}, rep
			}
			m.recordLoopState(child)
			if res.Returned {
				m.Synthesized = append(m.Synthesized, loopTracker.Synthesize()...)
				return res, nil
			}
		}
		m.Synthesized = append(m.Synthesized, loopTracker.Synthesize()...)
		return execResult{}, nil
	}

	items, rep := m.iterate(iterVal, s.Pos)
	if rep != nil {
		return execResult{}, rep
	}
	for _, item := range items {
		child := env.Child()
		child.Define(s.VarName, item)
		if rep := m.checkInvariants(invs, child); rep != nil {
			return execResult{}, rep
		}
		res, rep := m.execBlock(s.Body.Body, child)
		if rep != nil {
			return execResult{}, rep
		}
		if rep := m.checkInvariants(invs, child); rep != nil {
			return execResult{}, rep
		}
		m.recordLoopState(child)
		if res.Returned {
			m.Synthesized = append(m.Synthesized, loopTracker.Synthesize()...)
			return res, nil
		}
	}
	m.Synthesized = append(m.Synthesized, loopTracker.Synthesize()...)
	return execResult{}, nil
}

func (m *Machine) iterate(v Value, pos ast.Pos) ([]Value, *errors.Report) {
	switch val := v.(type) {
	case ArrayValue:
		return val.Arr.Values(), nil
	case SetValue:
		return val.S.Values(), nil
	case MapValue:
		entries := val.M.Entries()
		out := make([]Value, len(entries))
		for i, e := range entries {
			out[i] = TupleValue{Elems: []Value{e.Key, e.Value}}
		}
		return out, nil
	default:
		return nil, errors.NewRuntimeTypeError(errors.RTT001, pos, fmt.Sprintf("%s is not iterable", v.String()))
	}
}

func (m *Machine) execCheck(cond, message ast.Expression, code, label string, pos ast.Pos, env *Environment) *errors.Report {
	condVal, rep := m.evalExpr(cond, env)
	if rep != nil {
		return rep
	}
	if pc, ok := cond.(*ast.PredicateCheckExpression); ok && m.tracker != nil {
		if subjVal, rep := m.evalExpr(pc.Subject, env); rep == nil {
			m.tracker.RecordState(ast.Describe(pc.Subject), ToNative(subjVal))
		}
	}
	if asBool(condVal) {
		return nil
	}

	msg := fmt.Sprintf("%s failed", label)
	if message != nil {
		msgVal, rep := m.evalExpr(message, env)
		if rep != nil {
			return rep
		}
		if s, ok := msgVal.(StringValue); ok {
			msg = s.V
		}
	}
	return errors.NewVerificationFailure(code, pos, msg, m.renderSnapshot(env))
}

// renderSnapshot formats every visible non-function binding as one
// "name = value" line, sorted by name for determinism (spec §4.3/§7): the
// stable value printer is Value.String, the same one `print` uses.
func (m *Machine) renderSnapshot(env *Environment) string {
	bindings := m.snapshotValues(env)
	names := make([]string, 0, len(bindings))
	for name := range bindings {
		names = append(names, name)
	}
	sort.Strings(names)
	lines := make([]string, len(names))
	for i, name := range names {
		lines[i] = fmt.Sprintf("%s = %s", name, bindings[name].String())
	}
	return strings.Join(lines, "\n")
}

// snapshotValues is renderSnapshot's Value-typed counterpart to snapshot
// (which renders the native-Go form for JSON/predicate consumption).
func (m *Machine) snapshotValues(env *Environment) map[string]Value {
	out := make(map[string]Value)
	for e := env; e != nil; e = e.parent {
		for k, v := range e.vars {
			if _, exists := out[k]; exists {
				continue
			}
			switch v.(type) {
			case FunctionValue, BuiltinValue:
				continue
			}
			out[k] = v
		}
	}
	return out
}

// snapshot renders the visible non-function bindings of env (and its
// parents) as a JSON-friendly map, attached to a VerificationFailure's
// Snapshot field and fed to the loop-invariant tracker.
func (m *Machine) snapshot(env *Environment) map[string]any {
	out := make(map[string]any)
	for e := env; e != nil; e = e.parent {
		for k, v := range e.vars {
			if _, exists := out[k]; exists {
				continue
			}
			switch v.(type) {
			case FunctionValue, BuiltinValue:
				continue
			}
			out[k] = ToNative(v)
		}
	}
	return out
}
