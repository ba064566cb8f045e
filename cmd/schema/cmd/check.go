package cmd

import (
	"fmt"
	"os"
	"sync"

	"github.com/spf13/cobra"

	"github.com/dingf3ng/schema/internal/ast"
	"github.com/dingf3ng/schema/internal/types"
)

var checkCmd = &cobra.Command{
	Use:   "check <file.json> [file.json...]",
	Short: "Type-check one or more programs without running them",
	Long: `check decodes each program and runs inference (spec §4.1) over it,
reporting the first type error found. Programs loaded through the JSON
bridge carry no type annotations, so every declaration and parameter is
inferred from its initializer or call sites. Multiple files are checked
concurrently over a bounded worker pool, since each file's inference is
independent (spec §5's single suspension point is per-Machine, not
per-process).`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

const checkWorkers = 4

func runCheck(_ *cobra.Command, args []string) error {
	workers := checkWorkers
	if len(args) < workers {
		workers = len(args)
	}

	type job struct {
		idx  int
		path string
	}
	jobs := make(chan job)
	results := make([]error, len(args))

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				results[j.idx] = checkFile(j.path)
			}
		}()
	}
	for i, path := range args {
		jobs <- job{idx: i, path: path}
	}
	close(jobs)
	wg.Wait()

	failed := false
	for i, path := range args {
		if results[i] != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", path, results[i])
			failed = true
			continue
		}
		if len(args) > 1 {
			fmt.Printf("%s: OK\n", path)
		}
	}
	if failed {
		return fmt.Errorf("type checking failed")
	}
	if len(args) == 1 {
		fmt.Println("OK")
	}
	return nil
}

func checkFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read: %w", err)
	}

	prog, err := ast.Decode(data)
	if err != nil {
		return fmt.Errorf("decode: %w", err)
	}

	inf := types.NewInferer()
	if rep := inf.InferProgram(prog); rep != nil {
		return fmt.Errorf("%s %s: %s", rep.Pos, rep.Code, rep.Message)
	}
	return nil
}
