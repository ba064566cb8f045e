package eval

import (
	"github.com/dingf3ng/schema/internal/ast"
	"github.com/dingf3ng/schema/internal/schema"
)

// Snapshot is the JSON-serializable view of machine state a stepping host
// (the REPL's `:step`, the CLI's `schema trace`) renders after each Step.
// It approximates spec §4.2's {focus, env, kont, output, finished, line,
// column} tuple at the granularity the Machine actually tracks: the
// top-level frame stack is the authoritative continuation here (see the
// package doc on the machine's scope reduction), so Kont reports frame
// depth rather than a full per-sub-expression continuation trace.
type Snapshot struct {
	Schema   string         `json:"schema"`
	Focus    string         `json:"focus"`
	Env      map[string]any `json:"env"`
	Kont     int            `json:"kont"`
	Output   []string       `json:"output"`
	Finished bool           `json:"finished"`
	Line     int            `json:"line"`
	Column   int            `json:"column"`
}

// Snapshot renders the machine's current state. Call it before or after a
// Step to observe the transition.
func (m *Machine) Snapshot() Snapshot {
	var focus string
	var pos ast.Pos
	if !m.finished && len(m.stack) > 0 {
		top := m.stack[len(m.stack)-1]
		if top.idx < len(top.stmts) {
			stmt := top.stmts[top.idx]
			focus = ast.Describe(stmt)
			pos = stmt.Position()
		} else {
			focus = "<frame exhausted>"
		}
	} else {
		focus = "<done>"
	}

	return Snapshot{
		Schema:   schema.StepV1,
		Focus:    focus,
		Env:      m.snapshot(m.Global),
		Kont:     len(m.stack),
		Output:   m.GetOutput(),
		Finished: m.finished,
		Line:     pos.Line,
		Column:   pos.Column,
	}
}
