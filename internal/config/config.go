// Package config provides structures and utilities for the pipeline
// configuration. Each stage binary embeds an application.yaml whose values
// can be overridden through environment variables.
package config

// EmbeddedConfig holds the content of the configuration file, typically
// passed from main.go via go:embed.
type EmbeddedConfig []byte

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	// Level is the logging level (e.g., "INFO", "DEBUG").
	Level string `yaml:"level" default:"INFO"`
}

// SystemConfig holds system-wide settings.
type SystemConfig struct {
	// Timezone is the application timezone used for snapshot timestamps.
	Timezone string `yaml:"timezone" default:"UTC"`
	// Logging is the logging configuration.
	Logging LoggingConfig `yaml:"logging"`
}

// FetchConfig holds the standings endpoint settings used by the fetcher.
type FetchConfig struct {
	// Endpoint is the standings endpoint URL.
	Endpoint string `yaml:"endpoint" default:"https://v3.football.api-sports.io/standings" validate:"required,url"`
	// Host is the value sent in the x-rapidapi-host header.
	Host string `yaml:"host" default:"v3.football.api-sports.io"`
	// APIKey is the API key sent in the x-rapidapi-key header.
	// When empty it is read from the FOOTBALL_API_KEY environment variable.
	APIKey string `yaml:"api_key"`
	// League identifies the competition (39 = Premier League).
	League int `yaml:"league" default:"39" validate:"required"`
	// Season is the season start year.
	Season int `yaml:"season" default:"2023" validate:"required"`
	// Schedule is the cron expression the external trigger fires on.
	// It is recorded for operators; the fetcher itself never validates it.
	Schedule string `yaml:"schedule" default:"0 9 * * *"`
	// TimeoutSeconds is the HTTP client timeout for the standings call.
	TimeoutSeconds int `yaml:"timeout_seconds" default:"10"`
}

// PipelineConfig holds the snapshot layout shared by all three stages.
type PipelineConfig struct {
	// StorageRef is the name of the storage connection holding the lake.
	StorageRef string `yaml:"storage_ref" default:"lake" validate:"required"`
	// Bucket is the bucket (or base directory entry) snapshots live in.
	// Empty means the storage connection's configured default bucket.
	Bucket string `yaml:"bucket"`
	// RawPrefix is the landing location for raw JSON snapshots.
	RawPrefix string `yaml:"raw_prefix" default:"raw"`
	// ColumnarPrefix is the location for Parquet snapshots.
	ColumnarPrefix string `yaml:"columnar_prefix" default:"parquet"`
	// FinalPrefix is the location for the final analytical snapshots.
	FinalPrefix string `yaml:"final_prefix" default:"final"`
	// Basename is the filename prefix for raw and columnar snapshots.
	Basename string `yaml:"basename" default:"plstandings"`
	// FinalBasename is the distinct filename prefix for final snapshots.
	FinalBasename string `yaml:"final_basename" default:"plstandings_final"`
	// Compression is the Parquet compression codec ("SNAPPY", "GZIP", "NONE").
	Compression string `yaml:"compression" default:"SNAPPY"`
	// ManifestDBRef is the name of the database connection backing the
	// snapshot manifest index. A "dummy" typed connection disables it.
	ManifestDBRef string `yaml:"manifest_db_ref" default:"manifest"`
}

// TelemetryConfig holds OpenTelemetry exporter settings.
type TelemetryConfig struct {
	// Enabled toggles OTLP export; when false, spans and measurements are
	// created against no-op providers.
	Enabled bool `yaml:"enabled"`
	// Endpoint is the OTLP collector endpoint (host:port).
	Endpoint string `yaml:"endpoint" default:"localhost:4317"`
	// Protocol selects the OTLP transport: "grpc" or "http".
	Protocol string `yaml:"protocol" default:"grpc" validate:"omitempty,oneof=grpc http"`
}

// MetricsConfig holds Prometheus recorder settings.
type MetricsConfig struct {
	// Enabled toggles the Prometheus recorder; when false a no-op recorder
	// is used.
	Enabled bool `yaml:"enabled"`
}

// StandlakeConfig holds all configuration under the "standlake" key.
type StandlakeConfig struct {
	// System contains system-wide configurations.
	System SystemConfig `yaml:"system"`
	// Fetch contains the standings endpoint configuration.
	Fetch FetchConfig `yaml:"fetch"`
	// Pipeline contains the snapshot layout configuration.
	Pipeline PipelineConfig `yaml:"pipeline"`
	// Telemetry contains OpenTelemetry exporter configuration.
	Telemetry TelemetryConfig `yaml:"telemetry"`
	// Metrics contains the Prometheus recorder configuration.
	Metrics MetricsConfig `yaml:"metrics"`
	// DatabaseConfigs holds named database connection configurations,
	// decoded per provider with mapstructure.
	DatabaseConfigs map[string]interface{} `yaml:"database"`
	// StorageConfigs holds named storage connection configurations,
	// decoded per provider with mapstructure.
	StorageConfigs map[string]interface{} `yaml:"storage"`
}

// Config is the root structure for the entire application configuration.
type Config struct {
	// Standlake contains the top-level configuration for the pipeline.
	Standlake StandlakeConfig `yaml:"standlake"`
}
