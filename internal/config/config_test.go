package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	require.Equal(t, filepath.Join(".mlstudy", "mlstudy.db"), cfg.DBPath)
	require.Equal(t, filepath.Join(".mlstudy", "mlruns"), cfg.ArtifactRoot)
	require.Equal(t, "iris-tutorial", cfg.Tracking.DefaultExperiment)
	require.Equal(t, 10*time.Minute, cfg.Tracking.ExperimentCacheTTL)
	require.True(t, cfg.Registry.ArchiveExisting)
	require.Equal(t, "val_f1_macro", cfg.Registry.Metric)
	require.Equal(t, "optuna_tuning", cfg.Registry.ParentRunName)
	require.Equal(t, map[string]string{"stage": "tuning"}, cfg.Registry.ParentTags)
	require.Equal(t, "Production", cfg.Registry.Stage)
	require.False(t, cfg.Tracing.Enabled)
	require.NotEmpty(t, cfg.Tracing.FilePath)
	require.Equal(t, "file", cfg.Tracing.Exporter)
	require.Equal(t, "localhost:4317", cfg.Tracing.OTLPEndpoint)
	require.Equal(t, 1.0, cfg.Tracing.SampleRate)
	require.Equal(t, "mlstudy", cfg.Tracing.ServiceName)
	require.NoError(t, Validate(cfg))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"missing db path", func(c *Config) { c.DBPath = "" }, "db_path is required"},
		{"missing artifact root", func(c *Config) { c.ArtifactRoot = "" }, "artifact_root is required"},
		{"negative cache ttl", func(c *Config) { c.Tracking.ExperimentCacheTTL = -time.Second }, "experiment_cache_ttl"},
		{"missing api addr", func(c *Config) { c.API.Addr = "" }, "api.addr is required"},
		{"negative timeout", func(c *Config) { c.API.ReadTimeout = -time.Second }, "timeouts"},
		{"negative rate limit", func(c *Config) { c.API.RateLimitRequests = -1 }, "rate_limit_requests"},
		{"rate limit without window", func(c *Config) { c.API.RateLimitWindow = 0 }, "rate_limit_window"},
		{"bad log format", func(c *Config) { c.Log.Format = "xml" }, "log.format"},
		{"bad log level", func(c *Config) { c.Log.Level = "trace" }, "log.level"},
		{"bad sample rate", func(c *Config) { c.Tracing.SampleRate = 1.5 }, "sample_rate"},
		{"bad exporter", func(c *Config) { c.Tracing.Exporter = "zipkin" }, "tracing.exporter"},
		{"file exporter without path", func(c *Config) {
			c.Tracing.Enabled = true
			c.Tracing.FilePath = ""
		}, "file_path is required"},
		{"otlp without endpoint", func(c *Config) {
			c.Tracing.Enabled = true
			c.Tracing.Exporter = "otlp"
			c.Tracing.OTLPEndpoint = ""
		}, "otlp_endpoint is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(&cfg)
			require.ErrorContains(t, Validate(cfg), tt.wantErr)
		})
	}
}

func TestValidateTracing_DisabledSkipsPathChecks(t *testing.T) {
	require.NoError(t, ValidateTracing(TracingConfig{Enabled: false, Exporter: "file"}))
}

func TestWriteDefaultConfig_RoundTripsThroughViper(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "nested", "config.yaml")
	require.NoError(t, WriteDefaultConfig(configPath))

	data, err := os.ReadFile(configPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "# mlstudy configuration")
	assert.Contains(t, string(data), "experiment_cache_ttl: 10m0s")
	assert.Contains(t, string(data), "archive_existing: true")

	v := viper.New()
	v.SetConfigFile(configPath)
	require.NoError(t, v.ReadInConfig())

	var got Config
	require.NoError(t, v.Unmarshal(&got))
	require.Equal(t, Defaults(), got)
}

func TestSetValue_PreservesOtherConfig(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	initial := `# keep me
db_path: custom.db
tracking:
  # experiment used by default
  default_experiment: iris-tutorial
`
	require.NoError(t, os.WriteFile(configPath, []byte(initial), 0o644))

	require.NoError(t, SetValue(configPath, "tracking.default_experiment", "wine-quality"))
	require.NoError(t, SetValue(configPath, "api.addr", "0.0.0.0:8080"))

	data, err := os.ReadFile(configPath)
	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, content, "# keep me")
	assert.Contains(t, content, "# experiment used by default")
	assert.Contains(t, content, "db_path: custom.db")
	assert.Contains(t, content, "default_experiment: wine-quality")
	assert.Contains(t, content, "0.0.0.0:8080")
	assert.NotContains(t, content, "iris-tutorial")
}

func TestSetValue_CreatesFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "sub", "config.yaml")
	require.NoError(t, SetValue(configPath, "registry.archive_existing", "false"))

	v := viper.New()
	v.SetConfigFile(configPath)
	require.NoError(t, v.ReadInConfig())
	require.False(t, v.GetBool("registry.archive_existing"))
	require.Equal(t, false, v.Get("registry.archive_existing"), "booleans are written untagged")
}

func TestSetValue_Errors(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("db_path: x.db\n"), 0o644))

	require.ErrorContains(t, SetValue(configPath, "", "v"), "key is required")
	require.ErrorContains(t, SetValue(configPath, "db_path.nested", "v"), "not a mapping")

	require.NoError(t, os.WriteFile(configPath, []byte("tracking:\n  x: 1\n"), 0o644))
	require.ErrorContains(t, SetValue(configPath, "tracking", "v"), "not a scalar")

	require.NoError(t, os.WriteFile(configPath, []byte("- a\n- b\n"), 0o644))
	require.ErrorContains(t, SetValue(configPath, "k", "v"), "root must be a mapping")
}

func TestSetValue_LeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, SetValue(configPath, "db_path", "a.db"))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "config.yaml", entries[0].Name())
}

func TestSetValue_TypesScalars(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	settings := map[string]string{
		"api.rate_limit_requests": "0",
		"tracing.sample_rate":     "1",
		"a.ratio":                 "0.25",
		"a.flag":                  "true",
		"a.inf":                   "inf",
		"a.word":                  "yes",
		"a.hex":                   "0x1p-2",
	}
	for k, v := range settings {
		require.NoError(t, SetValue(configPath, k, v))
	}

	data, err := os.ReadFile(configPath)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "!!bool")

	v := viper.New()
	v.SetConfigFile(configPath)
	require.NoError(t, v.ReadInConfig())
	assert.Equal(t, 0, v.Get("api.rate_limit_requests"))
	assert.Equal(t, 1, v.Get("tracing.sample_rate"))
	assert.Equal(t, 0.25, v.Get("a.ratio"))
	assert.Equal(t, true, v.Get("a.flag"))
	assert.Equal(t, "inf", v.Get("a.inf"))
	assert.Equal(t, "yes", v.Get("a.word"))
	assert.Equal(t, "0x1p-2", v.Get("a.hex"))
}

func TestWriteDefaultConfig_WritesNumbersUntagged(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, WriteDefaultConfig(configPath))

	data, err := os.ReadFile(configPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "sample_rate: 1\n")
	assert.NotContains(t, string(data), "!!")
}
