package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dingf3ng/schema/internal/ast"
)

var (
	fmtWrite bool
)

var fmtCmd = &cobra.Command{
	Use:   "fmt <file.json>",
	Short: "Normalize a JSON-encoded program's formatting",
	Long: `fmt decodes a program through the AST bridge and re-encodes it,
canonicalizing field order and indentation. Decoding also validates the
file: an unknown statement or expression kind is reported as an error.`,
	Args: cobra.ExactArgs(1),
	RunE: runFmt,
}

func init() {
	rootCmd.AddCommand(fmtCmd)
	fmtCmd.Flags().BoolVarP(&fmtWrite, "write", "w", false, "write result back to the file instead of stdout")
}

func runFmt(_ *cobra.Command, args []string) error {
	path := args[0]
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	prog, err := ast.Decode(data)
	if err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}

	encoded, err := ast.Encode(prog)
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}

	var buf bytes.Buffer
	if err := json.Indent(&buf, encoded, "", "  "); err != nil {
		return fmt.Errorf("indent %s: %w", path, err)
	}
	buf.WriteByte('\n')

	if fmtWrite {
		return os.WriteFile(path, buf.Bytes(), 0644)
	}
	_, err = os.Stdout.Write(buf.Bytes())
	return err
}
