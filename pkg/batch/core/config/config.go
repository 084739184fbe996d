// Package config holds the application configuration and its loader.
package config

import (
	"runtime"

	dbconfig "github.com/tigerroll/daioe-scb/pkg/batch/adapter/database/config"
)

// EmbeddedConfig holds the content of the configuration file, typically passed from main.go.
type EmbeddedConfig []byte

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	// Level is the logging level (e.g., "INFO", "DEBUG").
	Level string `yaml:"level" validate:"oneof=DEBUG INFO WARN ERROR FATAL debug info warn error fatal"`
	// Format is "console" or "json".
	Format string `yaml:"format" validate:"oneof=console json"`
}

// SystemConfig holds system-wide settings.
type SystemConfig struct {
	// Timezone is the application timezone (e.g., "UTC", "Europe/Stockholm").
	Timezone string        `yaml:"timezone"`
	Logging  LoggingConfig `yaml:"logging"`
}

// BatchConfig holds settings of the batch engine.
type BatchConfig struct {
	// JobName is the name recorded on every execution.
	JobName string `yaml:"job_name" validate:"required"`
}

// PipelineConfig configures the DAIOE × SCB aggregation.
type PipelineConfig struct {
	// DaioeSource is the location of the DAIOE indicator CSV (path, file://, http(s):// or gs://).
	DaioeSource string `yaml:"daioe_source" validate:"required"`
	// ScbSource is the location of the SCB employment Parquet file.
	ScbSource string `yaml:"scb_source" validate:"required"`
	// OutputPath is the location the final Parquet file is published to.
	OutputPath string `yaml:"output_path" validate:"required"`

	// CodeColumn and YearColumn name the key columns of the DAIOE file.
	CodeColumn string `yaml:"code_column" validate:"required"`
	YearColumn string `yaml:"year_column" validate:"required"`
	// DaioePrefix selects the indicator columns of the DAIOE file.
	DaioePrefix string `yaml:"daioe_prefix" validate:"required"`

	// ScbCodeColumn, ScbYearColumn and CountColumn name the columns of the SCB file.
	ScbCodeColumn string `yaml:"scb_code_column" validate:"required"`
	ScbYearColumn string `yaml:"scb_year_column" validate:"required"`
	CountColumn   string `yaml:"count_column" validate:"required"`

	// MinYear drops DAIOE rows before this year.
	MinYear int `yaml:"min_year" validate:"gte=0"`
	// ExtendYears replicates the last DAIOE year forward to the last SCB year.
	ExtendYears bool `yaml:"extend_years"`
	// JoinType is "inner" or "left".
	JoinType string `yaml:"join_type" validate:"oneof=inner left"`
	// DuplicatePolicy is "reject" or "last" for repeated (code, year) indicator rows.
	DuplicatePolicy string `yaml:"duplicate_policy" validate:"oneof=reject last"`
	// DropMilitary removes codes whose first digit is "0".
	DropMilitary bool `yaml:"drop_military"`
	// AddPercentiles adds the pctl_ columns.
	AddPercentiles bool `yaml:"add_percentiles"`
	// PctScale is the upper bound of the percentile range: 1 or 100.
	PctScale int `yaml:"pct_scale" validate:"oneof=1 100"`
	// Descending ranks the largest value lowest.
	Descending bool `yaml:"descending"`
	// Workers bounds partition parallelism. Zero means GOMAXPROCS.
	Workers int `yaml:"workers" validate:"gte=0"`
	// Compression is the Parquet codec of the output.
	Compression string `yaml:"compression" validate:"oneof=SNAPPY GZIP ZSTD NONE"`
}

// MetricsConfig configures the Prometheus recorder.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
	// PushgatewayURL, when set, receives the collected metrics once the job ends.
	PushgatewayURL string `yaml:"pushgateway_url" validate:"omitempty,url"`
}

// TracingConfig configures the OpenTelemetry tracer.
type TracingConfig struct {
	Enabled bool `yaml:"enabled"`
	// Endpoint is the OTLP collector address (host:port).
	Endpoint string `yaml:"endpoint" validate:"required_if=Enabled true"`
	// Protocol is "http" or "grpc".
	Protocol    string `yaml:"protocol" validate:"oneof=http grpc"`
	Insecure    bool   `yaml:"insecure"`
	ServiceName string `yaml:"service_name"`
}

// InfrastructureConfig holds settings for the infrastructure components.
type InfrastructureConfig struct {
	// JobRepository selects the metadata store. Type "inmemory" keeps nothing after the run.
	JobRepository dbconfig.DatabaseConfig `yaml:"job_repository"`
	Metrics       MetricsConfig           `yaml:"metrics"`
	Tracing       TracingConfig           `yaml:"tracing"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// MaskedParameterKeys lists JobParameters keys whose values are masked in logs.
	MaskedParameterKeys []string `yaml:"masked_parameter_keys"`
}

// SurfinConfig holds all configuration under the "surfin" top-level key.
type SurfinConfig struct {
	Batch          BatchConfig          `yaml:"batch"`
	System         SystemConfig         `yaml:"system"`
	Pipeline       PipelineConfig       `yaml:"pipeline"`
	Infrastructure InfrastructureConfig `yaml:"infrastructure"`
	Security       SecurityConfig       `yaml:"security"`
	// AdapterConfigs holds raw storage adapter settings keyed by adapter name (e.g. "gcs").
	AdapterConfigs map[string]interface{} `yaml:"adapter" validate:"-"`
}

// Config is the root structure for the entire application configuration.
type Config struct {
	Surfin SurfinConfig `yaml:"surfin"`
}

// NewConfig returns a Config populated with defaults.
func NewConfig() *Config {
	return &Config{
		Surfin: SurfinConfig{
			Batch: BatchConfig{JobName: "daioeScbAggregationJob"},
			System: SystemConfig{
				Timezone: "UTC",
				Logging:  LoggingConfig{Level: "INFO", Format: "console"},
			},
			Pipeline: PipelineConfig{
				DaioeSource:     "https://raw.githubusercontent.com/joseph-data/07_translate_ssyk/main/03_translated_files/daioe_ssyk2012_translated.csv",
				ScbSource:       "data/processed/ssyk12_aggregated_ssyk4_to_ssyk1.parquet",
				OutputPath:      "data/daioe_scb_all_levels.parquet",
				CodeColumn:      "ssyk2012_4",
				YearColumn:      "year",
				DaioePrefix:     "daioe_",
				ScbCodeColumn:   "ssyk_code",
				ScbYearColumn:   "year",
				CountColumn:     "count",
				MinYear:         2014,
				ExtendYears:     true,
				JoinType:        "inner",
				DuplicatePolicy: "reject",
				DropMilitary:    true,
				AddPercentiles:  true,
				PctScale:        100,
				Workers:         runtime.GOMAXPROCS(0),
				Compression:     "SNAPPY",
			},
			Infrastructure: InfrastructureConfig{
				JobRepository: dbconfig.DatabaseConfig{Type: "inmemory"},
				Tracing:       TracingConfig{Protocol: "http", ServiceName: "daioe-scb"},
			},
			Security: SecurityConfig{
				MaskedParameterKeys: []string{"password", "api_key", "secret", "credentials_file"},
			},
			AdapterConfigs: map[string]interface{}{},
		},
	}
}
