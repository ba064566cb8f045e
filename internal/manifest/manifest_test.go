package manifest

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	assert.NoError(t, Default().Validate())
}

func TestLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schema.yaml")
	original := Default()
	original.MaxRefinementPasses = 5
	original.TraceVerbosity = "verbose"
	require.NoError(t, original.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 5, loaded.MaxRefinementPasses)
	assert.Equal(t, "verbose", loaded.TraceVerbosity)
}

func TestValidateRejectsBadVerbosity(t *testing.T) {
	m := Default()
	m.TraceVerbosity = "loud"
	assert.Error(t, m.Validate())
}

func TestValidateRejectsNonPositivePasses(t *testing.T) {
	m := Default()
	m.MaxRefinementPasses = 0
	assert.Error(t, m.Validate())
}

func TestLoadRejectsMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	assert.Error(t, err)
}
