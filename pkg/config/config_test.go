package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/statname/pkg/config"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "statname.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, "")

	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 1_000_000, cfg.Corpus.MaxNames)
	assert.Equal(t, 4096, cfg.Corpus.MaxNameLength)
	assert.Equal(t, config.FormatTable, cfg.Report.Format)
	assert.Equal(t, 25, cfg.Report.TopTokens)
	assert.Equal(t, "Token frequency", cfg.Chart.Title)
	assert.Empty(t, cfg.Observability.OTLPEndpoint)
	assert.Equal(t, "info", cfg.Observability.LogLevel)
}

func TestLoadConfig_FileOverrides(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
corpus:
  max_names: 500
report:
  format: json
  top_tokens: 5
observability:
  otlp_endpoint: localhost:4317
  otlp_insecure: true
  sample_ratio: 0.5
`)

	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 500, cfg.Corpus.MaxNames)
	assert.Equal(t, config.FormatJSON, cfg.Report.Format)
	assert.Equal(t, 5, cfg.Report.TopTokens)
	assert.Equal(t, "localhost:4317", cfg.Observability.OTLPEndpoint)
	assert.True(t, cfg.Observability.OTLPInsecure)
	assert.InDelta(t, 0.5, cfg.Observability.SampleRatio, 1e-9)
}

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	t.Parallel()

	// No explicit path and no statname.yaml in the search path: defaults.
	cfg, err := config.LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, config.FormatTable, cfg.Report.Format)
}

func TestLoadConfig_InvalidFormat(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
report:
  format: xml
`)

	_, err := config.LoadConfig(path)
	require.Error(t, err)
}

func TestLoadConfig_UnknownSectionRejected(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
reprot:
  format: json
`)

	_, err := config.LoadConfig(path)
	assert.Error(t, err, "schema validation should reject a misspelled section")
}

func TestLoadConfig_InvalidSampleRatio(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
observability:
  sample_ratio: 1.5
`)

	_, err := config.LoadConfig(path)
	require.ErrorIs(t, err, config.ErrInvalidSampleRatio)
}

func TestLoadConfig_NonPositiveLimits(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
corpus:
  max_names: 0
`)

	_, err := config.LoadConfig(path)
	require.ErrorIs(t, err, config.ErrInvalidMaxNames)
}
