// Package config provides configuration types and defaults for mlstudy.
package config

import (
	"fmt"
	"path/filepath"
	"time"
)

// DefaultDir is the project-local directory holding the database, artifacts
// and config.
const DefaultDir = ".mlstudy"

// Config holds all configuration options for mlstudy.
type Config struct {
	DBPath       string         `mapstructure:"db_path"`
	ArtifactRoot string         `mapstructure:"artifact_root"`
	Tracking     TrackingConfig `mapstructure:"tracking"`
	Registry     RegistryConfig `mapstructure:"registry"`
	API          APIConfig      `mapstructure:"api"`
	Tracing      TracingConfig  `mapstructure:"tracing"`
	Log          LogConfig      `mapstructure:"log"`
}

// TrackingConfig holds run tracking options.
type TrackingConfig struct {
	// DefaultExperiment is used when a command omits --experiment.
	DefaultExperiment string `mapstructure:"default_experiment"`

	// ExperimentCacheTTL bounds how long experiment-by-name lookups are cached.
	ExperimentCacheTTL time.Duration `mapstructure:"experiment_cache_ttl"`
}

// RegistryConfig holds defaults for registry workflows.
type RegistryConfig struct {
	// ArchiveExisting is the default for promotions that do not say.
	ArchiveExisting bool `mapstructure:"archive_existing"`

	// ParentRunName, ParentTags, Metric and Stage are trial:register defaults.
	// An empty Stage registers without promoting.
	ParentRunName string            `mapstructure:"parent_run_name"`
	ParentTags    map[string]string `mapstructure:"parent_tags"`
	Metric        string            `mapstructure:"metric"`
	Stage         string            `mapstructure:"stage"`
}

// APIConfig holds HTTP daemon options.
type APIConfig struct {
	Addr            string        `mapstructure:"addr"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`

	// RateLimitRequests per RateLimitWindow per client IP. 0 disables limiting.
	RateLimitRequests int           `mapstructure:"rate_limit_requests"`
	RateLimitWindow   time.Duration `mapstructure:"rate_limit_window"`
}

// TracingConfig selects where spans go. With Enabled false the tracer is a
// no-op and the other fields are ignored.
type TracingConfig struct {
	Enabled bool `mapstructure:"enabled"`

	// Exporter is one of none, file, stdout or otlp. "none" keeps trace ids
	// in logs without exporting spans.
	Exporter     string `mapstructure:"exporter"`
	FilePath     string `mapstructure:"file_path"`
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`

	// SampleRate is the fraction of root spans kept. 0 is treated as 1.
	SampleRate  float64 `mapstructure:"sample_rate"`
	ServiceName string  `mapstructure:"service_name"`
}

// LogConfig holds structured log options. Logging stays off unless --debug
// or MLSTUDY_DEBUG is set.
type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json or console
	Path   string `mapstructure:"path"`   // empty writes to stderr
}

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	return Config{
		DBPath:       filepath.Join(DefaultDir, "mlstudy.db"),
		ArtifactRoot: filepath.Join(DefaultDir, "mlruns"),
		Tracking: TrackingConfig{
			DefaultExperiment:  "iris-tutorial",
			ExperimentCacheTTL: 10 * time.Minute,
		},
		Registry: RegistryConfig{
			ArchiveExisting: true,
			ParentRunName:   "optuna_tuning",
			ParentTags:      map[string]string{"stage": "tuning"},
			Metric:          "val_f1_macro",
			Stage:           "Production",
		},
		API: APIConfig{
			Addr:            "127.0.0.1:5050",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,

			RateLimitRequests: 600,
			RateLimitWindow:   time.Minute,
		},
		Tracing: TracingConfig{
			Enabled:      false,
			Exporter:     "file",
			FilePath:     filepath.Join(DefaultDir, "traces.jsonl"),
			OTLPEndpoint: "localhost:4317",
			SampleRate:   1.0,
			ServiceName:  "mlstudy",
		},
		Log: LogConfig{
			Level:  "debug",
			Format: "json",
			Path:   filepath.Join(DefaultDir, "debug.log"),
		},
	}
}

// Validate checks the whole configuration.
func Validate(cfg Config) error {
	if cfg.DBPath == "" {
		return fmt.Errorf("db_path is required")
	}
	if cfg.ArtifactRoot == "" {
		return fmt.Errorf("artifact_root is required")
	}
	if cfg.Tracking.ExperimentCacheTTL < 0 {
		return fmt.Errorf("tracking.experiment_cache_ttl must not be negative, got %s", cfg.Tracking.ExperimentCacheTTL)
	}
	if err := ValidateAPI(cfg.API); err != nil {
		return err
	}
	if err := ValidateLog(cfg.Log); err != nil {
		return err
	}
	return ValidateTracing(cfg.Tracing)
}

// ValidateAPI checks HTTP daemon options.
func ValidateAPI(api APIConfig) error {
	if api.Addr == "" {
		return fmt.Errorf("api.addr is required")
	}
	if api.ReadTimeout < 0 || api.WriteTimeout < 0 || api.ShutdownTimeout < 0 {
		return fmt.Errorf("api timeouts must not be negative")
	}
	if api.RateLimitRequests < 0 {
		return fmt.Errorf("api.rate_limit_requests must not be negative, got %d", api.RateLimitRequests)
	}
	if api.RateLimitRequests > 0 && api.RateLimitWindow <= 0 {
		return fmt.Errorf("api.rate_limit_window must be positive when rate limiting is on")
	}
	return nil
}

// ValidateLog checks log options. Empty values use defaults.
func ValidateLog(l LogConfig) error {
	switch l.Format {
	case "", "json", "console":
	default:
		return fmt.Errorf("log.format must be \"json\" or \"console\", got %q", l.Format)
	}
	switch l.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be one of debug, info, warn, error, got %q", l.Level)
	}
	return nil
}

// ValidateTracing checks tracing configuration for errors.
// Returns nil if the configuration is valid (empty values use defaults).
func ValidateTracing(tr TracingConfig) error {
	if tr.SampleRate < 0.0 || tr.SampleRate > 1.0 {
		return fmt.Errorf("tracing.sample_rate must be between 0.0 and 1.0, got %v", tr.SampleRate)
	}

	if tr.Exporter != "" {
		switch tr.Exporter {
		case "none", "file", "stdout", "otlp":
		default:
			return fmt.Errorf("tracing.exporter must be \"none\", \"file\", \"stdout\", or \"otlp\", got %q", tr.Exporter)
		}
	}

	// Path requirements only matter when tracing is on.
	if tr.Enabled {
		if tr.Exporter == "file" && tr.FilePath == "" {
			return fmt.Errorf("tracing.file_path is required when exporter is \"file\"")
		}
		if tr.Exporter == "otlp" && tr.OTLPEndpoint == "" {
			return fmt.Errorf("tracing.otlp_endpoint is required when exporter is \"otlp\"")
		}
	}

	return nil
}
