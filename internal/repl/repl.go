// Package repl implements the interactive stepping debugger: load a
// pre-built program (spec §6's external AST ingestion contract, bridged to
// JSON by package ast) and drive its Machine one statement at a time.
package repl

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/peterh/liner"

	"github.com/dingf3ng/schema/internal/ast"
	"github.com/dingf3ng/schema/internal/eval"
)

var (
	green  = color.New(color.FgGreen).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
	dim    = color.New(color.Faint).SprintFunc()
)

// REPL holds one stepping-debugger session. There is no free-form
// expression evaluation: SchemA ships no lexer/parser, so the only way a
// program enters the session is `:load <file.json>`, decoding the JSON AST
// bridge (package ast) into a fresh Machine.
type REPL struct {
	machine  *eval.Machine
	loadedAs string
	history  []string
	trace    bool
}

// New creates an empty REPL session with nothing loaded.
func New() *REPL {
	return &REPL{}
}

func (r *REPL) prompt() string {
	if r.machine == nil {
		return "schema> "
	}
	if r.machine.IsFinished() {
		return "schema[done]> "
	}
	return fmt.Sprintf("schema[%s]> ", filepath.Base(r.loadedAs))
}

// Start runs the read-command-execute loop against in/out, with line
// editing and history via liner (spec §2 ambient stack).
func (r *REPL) Start(in io.Reader, out io.Writer) {
	line := liner.NewLiner()
	defer line.Close()

	historyFile := filepath.Join(os.TempDir(), ".schema_history")
	if f, err := os.Open(historyFile); err == nil {
		_, _ = line.ReadHistory(f)
		f.Close()
	}
	line.SetMultiLineMode(false)

	fmt.Fprintf(out, "%s\n", bold("SchemA stepping debugger"))
	fmt.Fprintln(out, dim("Type :help for help, :quit to exit"))
	fmt.Fprintln(out)

	line.SetCompleter(func(ln string) (c []string) {
		if !strings.HasPrefix(ln, ":") {
			return nil
		}
		for _, cmd := range commandNames {
			if strings.HasPrefix(cmd, ln) {
				c = append(c, cmd)
			}
		}
		return
	})

	for {
		input, err := line.Prompt(r.prompt())
		if err == io.EOF {
			fmt.Fprintln(out, green("\nGoodbye!"))
			break
		}
		if err != nil {
			fmt.Fprintf(out, "%s: %v\n", red("Error"), err)
			continue
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		line.AppendHistory(input)
		r.history = append(r.history, input)

		if !strings.HasPrefix(input, ":") {
			fmt.Fprintf(out, "%s: SchemA has no REPL-level parser; use %s to load a program\n", yellow("Note"), cyan(":load <file.json>"))
			continue
		}
		if input == ":quit" || input == ":q" || input == ":exit" {
			fmt.Fprintln(out, green("Goodbye!"))
			break
		}
		r.HandleCommand(input, out)
	}

	if f, err := os.Create(historyFile); err == nil {
		_, _ = line.WriteHistory(f)
		f.Close()
	}
}

var commandNames = []string{
	":help", ":load", ":step", ":run", ":env", ":snapshot", ":synth",
	":history", ":clear", ":reset", ":quit",
}

// HandleCommand dispatches one `:`-prefixed command.
func (r *REPL) HandleCommand(cmd string, out io.Writer) {
	parts := strings.Fields(cmd)
	if len(parts) == 0 {
		return
	}

	switch parts[0] {
	case ":help", ":h":
		r.printHelp(out)

	case ":load":
		if len(parts) < 2 {
			fmt.Fprintln(out, "Usage: :load <file.json>")
			return
		}
		r.load(parts[1], out)

	case ":step":
		r.step(out)

	case ":run":
		r.run(out)

	case ":env":
		r.showEnv(out)

	case ":snapshot":
		r.showSnapshot(out)

	case ":synth":
		r.showSynthesized(out)

	case ":history":
		for i, h := range r.history {
			fmt.Fprintf(out, "%3d  %s\n", i+1, h)
		}

	case ":clear":
		fmt.Fprint(out, "\033[H\033[2J")

	case ":reset":
		r.machine = nil
		r.loadedAs = ""
		fmt.Fprintln(out, green("Session reset"))

	case ":trace":
		r.trace = !r.trace
		status := "disabled"
		if r.trace {
			status = "enabled"
		}
		fmt.Fprintf(out, "Per-step snapshot tracing %s\n", yellow(status))

	default:
		fmt.Fprintf(out, "Unknown command: %s\n", cmd)
		fmt.Fprintln(out, "Type :help for help")
	}
}

func (r *REPL) printHelp(out io.Writer) {
	fmt.Fprintln(out, bold("Commands:"))
	fmt.Fprintln(out, "  :load <file.json>   Decode a JSON-encoded program and initialize a fresh Machine")
	fmt.Fprintln(out, "  :step               Advance exactly one top-level statement")
	fmt.Fprintln(out, "  :run                Step to completion or the first error")
	fmt.Fprintln(out, "  :env                Print the current global bindings")
	fmt.Fprintln(out, "  :snapshot           Print the machine's current focus, frame depth, and finished flag")
	fmt.Fprintln(out, "  :synth              Print invariants synthesized so far")
	fmt.Fprintln(out, "  :trace              Toggle automatic snapshot printing after every :step")
	fmt.Fprintln(out, "  :history            Show command history")
	fmt.Fprintln(out, "  :clear              Clear the screen")
	fmt.Fprintln(out, "  :reset              Discard the loaded program")
	fmt.Fprintln(out, "  :quit               Exit")
}

func (r *REPL) load(path string, out io.Writer) {
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(out, "%s: %v\n", red("Error"), err)
		return
	}
	prog, err := ast.Decode(data)
	if err != nil {
		fmt.Fprintf(out, "%s: %v\n", red("Error"), err)
		return
	}
	r.machine = eval.Initialize(prog)
	r.loadedAs = path
	fmt.Fprintf(out, "%s Loaded %s\n", green("✓"), path)
}

func (r *REPL) requireMachine(out io.Writer) bool {
	if r.machine == nil {
		fmt.Fprintf(out, "%s: no program loaded, use %s\n", red("Error"), cyan(":load <file.json>"))
		return false
	}
	return true
}

func (r *REPL) step(out io.Writer) {
	if !r.requireMachine(out) {
		return
	}
	if r.machine.IsFinished() {
		fmt.Fprintln(out, yellow("machine already finished"))
		return
	}
	if rep := r.machine.Step(); rep != nil {
		fmt.Fprintf(out, "%s %s\n", red(rep.Code), rep.Message)
		if rep.Snapshot != "" {
			fmt.Fprintln(out, dim(rep.Snapshot))
		}
	}
	if r.trace {
		r.showSnapshot(out)
	}
}

func (r *REPL) run(out io.Writer) {
	if !r.requireMachine(out) {
		return
	}
	if rep := r.machine.Run(); rep != nil {
		fmt.Fprintf(out, "%s %s\n", red(rep.Code), rep.Message)
		if rep.Snapshot != "" {
			fmt.Fprintln(out, dim(rep.Snapshot))
		}
		return
	}
	for _, line := range r.machine.GetOutput() {
		fmt.Fprintln(out, line)
	}
	fmt.Fprintln(out, green("✓ finished"))
}

func (r *REPL) showEnv(out io.Writer) {
	if !r.requireMachine(out) {
		return
	}
	bindings := r.machine.EnvBindings()
	names := make([]string, 0, len(bindings))
	for name := range bindings {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(out, "%s = %s\n", cyan(name), bindings[name].String())
	}
}

func (r *REPL) showSnapshot(out io.Writer) {
	if !r.requireMachine(out) {
		return
	}
	snap := r.machine.Snapshot()
	fmt.Fprintf(out, "focus: %s  kont: %d  finished: %v\n", snap.Focus, snap.Kont, snap.Finished)
}

func (r *REPL) showSynthesized(out io.Writer) {
	if !r.requireMachine(out) {
		return
	}
	if len(r.machine.Synthesized) == 0 {
		fmt.Fprintln(out, dim("no invariants synthesized yet"))
		return
	}
	for _, c := range r.machine.Synthesized {
		fmt.Fprintf(out, "%s: %s %s\n", cyan(c.Var), c.Name, dim(fmt.Sprint(c.Args)))
	}
}
