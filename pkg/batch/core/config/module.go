package config

import "go.uber.org/fx"

// NewLoggingConfigProvider extracts *LoggingConfig from *Config.
func NewLoggingConfigProvider(cfg *Config) *LoggingConfig {
	return &cfg.Surfin.System.Logging
}

// NewPipelineConfigProvider extracts *PipelineConfig from *Config.
func NewPipelineConfigProvider(cfg *Config) *PipelineConfig {
	return &cfg.Surfin.Pipeline
}

// Module provides the configuration sections to Fx. *Config itself is supplied by the application.
var Module = fx.Options(
	fx.Provide(NewLoggingConfigProvider),
	fx.Provide(NewPipelineConfigProvider),
)
