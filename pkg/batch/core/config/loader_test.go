package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tigerroll/daioe-scb/pkg/batch/support/util/exception"
)

const embeddedYAML = `
surfin:
  system:
    logging:
      level: DEBUG
  pipeline:
    scb_source: ${DAIOE_TEST_DATA_DIR}/scb.parquet
    min_year: 2015
    extend_years: false
  adapter:
    gcs:
      type: gcs
      credentials_file: /secrets/key.json
`

// TestLoadConfig_Defaults verifies NewConfig defaults survive an empty embedded file.
func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)

	p := cfg.Surfin.Pipeline
	assert.Equal(t, "ssyk2012_4", p.CodeColumn)
	assert.Equal(t, "daioe_", p.DaioePrefix)
	assert.Equal(t, 2014, p.MinYear)
	assert.Equal(t, 100, p.PctScale)
	assert.Equal(t, "inner", p.JoinType)
	assert.Equal(t, "reject", p.DuplicatePolicy)
	assert.True(t, p.DropMilitary)
	assert.True(t, p.AddPercentiles)
	assert.True(t, p.ExtendYears)
	assert.Equal(t, "inmemory", cfg.Surfin.Infrastructure.JobRepository.Type)
}

// TestLoadConfig_YAMLAndEnvOverrides verifies the layering: defaults, YAML, then environment.
func TestLoadConfig_YAMLAndEnvOverrides(t *testing.T) {
	// 1. Placeholders in YAML are expanded and env vars override YAML.
	t.Setenv("DAIOE_TEST_DATA_DIR", "/data")
	t.Setenv("SURFIN_PIPELINE_PCT_SCALE", "1")
	t.Setenv("SURFIN_PIPELINE_JOIN_TYPE", "left")

	cfg, err := LoadConfig("", EmbeddedConfig(embeddedYAML))
	require.NoError(t, err)

	// 2. YAML values.
	assert.Equal(t, "DEBUG", cfg.Surfin.System.Logging.Level)
	assert.Equal(t, "/data/scb.parquet", cfg.Surfin.Pipeline.ScbSource)
	assert.Equal(t, 2015, cfg.Surfin.Pipeline.MinYear)
	assert.False(t, cfg.Surfin.Pipeline.ExtendYears, "explicit false overrides a true default")
	assert.Contains(t, cfg.Surfin.AdapterConfigs, "gcs")

	// 3. Environment values.
	assert.Equal(t, 1, cfg.Surfin.Pipeline.PctScale)
	assert.Equal(t, "left", cfg.Surfin.Pipeline.JoinType)

	// 4. Untouched defaults.
	assert.Equal(t, "count", cfg.Surfin.Pipeline.CountColumn)
}

// TestLoadConfig_OverrideFile verifies an external YAML file is layered over the embedded one.
func TestLoadConfig_OverrideFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "override.yaml")
	require.NoError(t, os.WriteFile(path, []byte("surfin:\n  pipeline:\n    output_path: out/final.parquet\n"), 0o600))

	cfg, err := LoadConfig("", nil, path)
	require.NoError(t, err)
	assert.Equal(t, "out/final.parquet", cfg.Surfin.Pipeline.OutputPath)

	_, err = LoadConfig("", nil, filepath.Join(t.TempDir(), "missing.yaml"))
	assert.True(t, errors.Is(err, exception.ErrConfig))
}

// TestLoadConfig_EnvFile verifies variables from the .env file are applied.
func TestLoadConfig_EnvFile(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("SURFIN_PIPELINE_WORKERS=3\n"), 0o600))
	t.Cleanup(func() { _ = os.Unsetenv("SURFIN_PIPELINE_WORKERS") })

	cfg, err := LoadConfig(envFile, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Surfin.Pipeline.Workers)
}

// TestValidate verifies invalid values are reported together as a configuration error.
func TestValidate(t *testing.T) {
	cfg := NewConfig()
	cfg.Surfin.Pipeline.PctScale = 10
	cfg.Surfin.Pipeline.JoinType = "outer"
	cfg.Surfin.Pipeline.DaioeSource = ""

	err := Validate(cfg)
	require.Error(t, err)
	assert.True(t, errors.Is(err, exception.ErrConfig))
	assert.Contains(t, err.Error(), "PctScale")
	assert.Contains(t, err.Error(), "JoinType")
	assert.Contains(t, err.Error(), "DaioeSource")

	cfg = NewConfig()
	cfg.Surfin.Infrastructure.Tracing.Enabled = true
	assert.Error(t, Validate(cfg), "tracing needs an endpoint")
}

// TestSetField_StringSlice verifies comma separated env values fill string slices.
func TestSetField_StringSlice(t *testing.T) {
	t.Setenv("SURFIN_SECURITY_MASKED_PARAMETER_KEYS", "token, password")
	cfg := NewConfig()
	require.NoError(t, loadStructFromEnv(reflect.ValueOf(cfg).Elem(), ""))
	assert.Equal(t, []string{"token", "password"}, cfg.Surfin.Security.MaskedParameterKeys)
}
