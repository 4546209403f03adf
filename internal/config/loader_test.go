package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tigerroll/standlake/internal/config"
)

const sampleYAML = `
standlake:
  system:
    logging:
      level: DEBUG
  fetch:
    league: 39
    season: 2023
  pipeline:
    storage_ref: lake
    bucket: football-lake
  storage:
    lake:
      type: local
      base_dir: /tmp/lake
`

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := config.LoadConfig("", config.EmbeddedConfig(sampleYAML))
	require.NoError(t, err)

	// Explicit YAML values.
	assert.Equal(t, "DEBUG", cfg.Standlake.System.Logging.Level)
	assert.Equal(t, "football-lake", cfg.Standlake.Pipeline.Bucket)

	// Defaults fill everything the YAML omits.
	assert.Equal(t, "UTC", cfg.Standlake.System.Timezone)
	assert.Equal(t, "https://v3.football.api-sports.io/standings", cfg.Standlake.Fetch.Endpoint)
	assert.Equal(t, "raw", cfg.Standlake.Pipeline.RawPrefix)
	assert.Equal(t, "parquet", cfg.Standlake.Pipeline.ColumnarPrefix)
	assert.Equal(t, "final", cfg.Standlake.Pipeline.FinalPrefix)
	assert.Equal(t, "plstandings", cfg.Standlake.Pipeline.Basename)
	assert.Equal(t, "plstandings_final", cfg.Standlake.Pipeline.FinalBasename)
	assert.Equal(t, "SNAPPY", cfg.Standlake.Pipeline.Compression)
	assert.Equal(t, "manifest", cfg.Standlake.Pipeline.ManifestDBRef)
	assert.Equal(t, 10, cfg.Standlake.Fetch.TimeoutSeconds)
	assert.False(t, cfg.Standlake.Telemetry.Enabled)

	// Named adapter configs are kept raw for provider-side decoding.
	require.Contains(t, cfg.Standlake.StorageConfigs, "lake")
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("STANDLAKE_SYSTEM_LOGGING_LEVEL", "WARN")
	t.Setenv("STANDLAKE_FETCH_SEASON", "2024")
	t.Setenv("STANDLAKE_TELEMETRY_ENABLED", "true")

	cfg, err := config.LoadConfig("", config.EmbeddedConfig(sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, "WARN", cfg.Standlake.System.Logging.Level)
	assert.Equal(t, 2024, cfg.Standlake.Fetch.Season)
	assert.True(t, cfg.Standlake.Telemetry.Enabled)
}

func TestLoadConfigAPIKeyFromEnv(t *testing.T) {
	t.Setenv("FOOTBALL_API_KEY", "secret-key")

	cfg, err := config.LoadConfig("", config.EmbeddedConfig(sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, "secret-key", cfg.Standlake.Fetch.APIKey)
}
