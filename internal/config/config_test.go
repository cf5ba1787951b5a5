package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte(`
source_root: ./services
output_root: ./schemas
excludes:
  - "**/generated/**"
  - "legacy/**"
`))
	require.NoError(t, err)

	assert.Equal(t, "./services", cfg.SourceRoot)
	assert.Equal(t, "./schemas", cfg.OutputRoot)
	assert.Equal(t, []string{"**/generated/**", "legacy/**"}, cfg.Excludes)
}

func TestParseDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`output_root: out`))
	require.NoError(t, err)

	assert.Equal(t, ".", cfg.SourceRoot)
	assert.Equal(t, "out", cfg.OutputRoot)
	assert.Empty(t, cfg.Excludes)
}

func TestParseInvalidYAML(t *testing.T) {
	_, err := Parse([]byte("source_root: [unclosed"))
	require.Error(t, err)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gts.yaml")
	require.NoError(t, os.WriteFile(path, []byte("source_root: src\n"), 0o644))

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "src", cfg.SourceRoot)
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}
