package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dingf3ng/schema/internal/ast"
	"github.com/dingf3ng/schema/internal/eval"
	"github.com/dingf3ng/schema/internal/manifest"
	"github.com/dingf3ng/schema/internal/schema"
)

var (
	traceManifestPath string
)

var traceCmd = &cobra.Command{
	Use:   "trace <file.json>",
	Short: "Run a program, printing one step snapshot per line",
	Long: `trace steps the Machine to completion and then prints the program's
output. Verbosity is controlled by the project manifest's trace_verbosity:
"quiet" prints only final output, "normal" prints each step's focus,
"verbose" prints each step's full snapshot as one line of JSON
(schema.step/v1).`,
	Args: cobra.ExactArgs(1),
	RunE: runTrace,
}

func init() {
	rootCmd.AddCommand(traceCmd)
	traceCmd.Flags().StringVar(&traceManifestPath, "manifest", "", "path to schema.yaml (defaults to built-in settings)")
}

func runTrace(_ *cobra.Command, args []string) error {
	path := args[0]
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	prog, err := ast.Decode(data)
	if err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}

	mf := manifest.Default()
	if traceManifestPath != "" {
		mf, err = manifest.Load(traceManifestPath)
		if err != nil {
			return fmt.Errorf("load manifest: %w", err)
		}
	}

	m := eval.Initialize(prog)

	for !m.IsFinished() {
		rep := m.Step()
		switch mf.TraceVerbosity {
		case "verbose":
			encoded, err := schema.MarshalDeterministic(m.Snapshot())
			if err != nil {
				return fmt.Errorf("encode snapshot: %w", err)
			}
			fmt.Println(string(encoded))
		case "quiet":
			// fall through to final output below
		default: // "normal"
			snap := m.Snapshot()
			fmt.Printf("%s\n", snap.Focus)
		}
		if rep != nil {
			fmt.Fprintf(os.Stderr, "%s %s: %s\n", rep.Pos, rep.Code, rep.Message)
			if rep.Snapshot != "" {
				fmt.Fprintln(os.Stderr, rep.Snapshot)
			}
			return fmt.Errorf("execution failed")
		}
	}

	for _, line := range m.GetOutput() {
		fmt.Println(line)
	}
	return nil
}
