// Package manifest loads schema.yaml, the per-project interpreter config
// (spec §6's domain-stack supplement): refinement bounds, predicate
// synthesis, and trace verbosity, parsed with gopkg.in/yaml.v3.
package manifest

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/dingf3ng/schema/internal/types"
)

// SchemaVersion is the manifest schema identifier stamped into every file.
const SchemaVersion = "schema.manifest/v1"

// Manifest is the decoded form of schema.yaml.
type Manifest struct {
	Schema string `yaml:"schema"`

	// MaxRefinementPasses records the project's refinement pass bound.
	// Default fills it from types.MaxRefinementPasses and Validate rejects
	// values below 1. The refinement fixpoint does not read this field; it
	// always uses types.MaxRefinementPasses.
	MaxRefinementPasses int `yaml:"max_refinement_passes"`

	// SynthesizeInvariants records whether loop-invariant synthesis (spec
	// §4.3) is enabled. The Machine does not read this field: it records
	// loop state and synthesizes candidates for every loop regardless.
	SynthesizeInvariants bool `yaml:"synthesize_invariants"`

	// TraceVerbosity controls how much the CLI's `schema trace` subcommand
	// prints per step: "quiet" (nothing), "normal" (the step's focus),
	// "verbose" (full snapshot JSON per step). The program's output is
	// printed after the last step in every mode.
	TraceVerbosity string `yaml:"trace_verbosity"`
}

// Default returns a Manifest with the interpreter's built-in defaults.
func Default() *Manifest {
	return &Manifest{
		Schema:               SchemaVersion,
		MaxRefinementPasses:  types.MaxRefinementPasses,
		SynthesizeInvariants: true,
		TraceVerbosity:       "normal",
	}
}

// Load reads and validates a manifest from path.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	m := Default()
	if err := yaml.Unmarshal(data, m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("invalid manifest: %w", err)
	}
	return m, nil
}

// Validate checks the manifest for internally-consistent settings.
func (m *Manifest) Validate() error {
	if m.MaxRefinementPasses <= 0 {
		return fmt.Errorf("max_refinement_passes must be positive, got %d", m.MaxRefinementPasses)
	}
	switch m.TraceVerbosity {
	case "quiet", "normal", "verbose":
	default:
		return fmt.Errorf("trace_verbosity must be one of quiet|normal|verbose, got %q", m.TraceVerbosity)
	}
	return nil
}

// Save writes the manifest to path as YAML.
func (m *Manifest) Save(path string) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}
