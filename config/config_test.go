package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "parley.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_OverlaysDefaults(t *testing.T) {
	path := writeConfig(t, `
backend: anthropic
temperature: 0.2
include_time_context: true
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "anthropic", cfg.Backend)
	assert.Equal(t, 0.2, cfg.Temperature)
	assert.True(t, cfg.IncludeTimeContext)
	// Omitted values keep their defaults.
	assert.Equal(t, DefaultMaxToolIterations, cfg.MaxToolIterations)
	assert.Equal(t, DefaultTimezone, cfg.Timezone)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "backend: [unclosed")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	assert.NoError(t, cfg.Validate())

	cfg = Default()
	cfg.Backend = "cohere"
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Temperature = 2.5
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.MaxToolIterations = 0
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.MaxHistoryMessages = -1
	assert.Error(t, cfg.Validate())
}
