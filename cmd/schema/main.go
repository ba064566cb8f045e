// Command schema is the SchemA CLI. It loads JSON-bridged programs (package
// ast's encoding of the external AST ingestion contract, spec §1) and runs,
// checks, or steps them.
//
// `run` and `repl` are handled directly via flag, mirroring the teacher's
// cmd/ailang dispatcher. `fmt`, `check`, and `trace` are cobra subcommands
// (cmd/schema/cmd) for the richer flag sets those need.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/fatih/color"

	"github.com/dingf3ng/schema/cmd/schema/cmd"
	"github.com/dingf3ng/schema/internal/ast"
	"github.com/dingf3ng/schema/internal/eval"
	"github.com/dingf3ng/schema/internal/repl"
)

var (
	Version = "dev"

	green = color.New(color.FgGreen).SprintFunc()
	red   = color.New(color.FgRed).SprintFunc()
	cyan  = color.New(color.FgCyan).SprintFunc()
	bold  = color.New(color.Bold).SprintFunc()
)

func main() {
	var (
		versionFlag = flag.Bool("version", false, "Print version information")
		helpFlag    = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *versionFlag {
		printVersion()
		return
	}
	if *helpFlag || flag.NArg() == 0 {
		printHelp()
		return
	}

	switch flag.Arg(0) {
	case "run":
		if flag.NArg() < 2 {
			fmt.Fprintf(os.Stderr, "%s: missing file argument\n", red("Error"))
			fmt.Println("Usage: schema run <file.json>")
			os.Exit(1)
		}
		runFile(flag.Arg(1))

	case "repl":
		repl.New().Start(os.Stdin, os.Stdout)

	case "fmt", "check", "trace":
		// Delegate everything past the subcommand name to cobra, which owns
		// its own flag sets for these three.
		cmd.Execute(flag.Args())

	default:
		fmt.Fprintf(os.Stderr, "%s: unknown command '%s'\n", red("Error"), flag.Arg(0))
		printHelp()
		os.Exit(1)
	}
}

func printVersion() {
	fmt.Printf("SchemA %s\n", bold(Version))
}

func printHelp() {
	fmt.Println(bold("SchemA - a small pedagogical language interpreter"))
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  schema <command> [arguments]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Printf("  %s <file.json>    Run a JSON-encoded program to completion\n", cyan("run"))
	fmt.Printf("  %s               Start the interactive stepping debugger\n", cyan("repl"))
	fmt.Printf("  %s <file.json...>  Type-check one or more programs without running them\n", cyan("check"))
	fmt.Printf("  %s <file.json>    Pretty-print a program's JSON AST\n", cyan("fmt"))
	fmt.Printf("  %s <file.json>  Run a program, emitting one snapshot per step\n", cyan("trace"))
	fmt.Println()
	fmt.Println("Flags:")
	fmt.Println("  --version   Print version information")
	fmt.Println("  --help      Show this help message")
}

func runFile(path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: cannot read file '%s': %v\n", red("Error"), path, err)
		os.Exit(1)
	}

	prog, err := ast.Decode(data)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", red("Error"), err)
		os.Exit(1)
	}

	m := eval.Initialize(prog)
	if rep := m.Run(); rep != nil {
		fmt.Fprintf(os.Stderr, "%s %s: %s\n", red(rep.Code), rep.Kind, rep.Message)
		if rep.Snapshot != "" {
			fmt.Fprintln(os.Stderr, rep.Snapshot)
		}
		os.Exit(1)
	}

	for _, line := range m.GetOutput() {
		fmt.Println(line)
	}
	fmt.Fprintf(os.Stderr, "%s\n", green("✓ finished"))
}
