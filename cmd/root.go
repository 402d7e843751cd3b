package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/fkid009/MLflow-study/internal/config"
	"github.com/fkid009/MLflow-study/internal/log"
)

var (
	version   = "dev"
	cfgFile   string
	debugFlag bool
	cfg       config.Config

	// configPath is the file the active config was read from, or where
	// config:set writes when none was found.
	configPath string

	logCleanup func()
)

var rootCmd = &cobra.Command{
	Use:   "mlstudy",
	Short: "Experiment tracking and model registry for local ML studies",
	Long: `mlstudy records experiments, runs, params, metrics and artifacts in a local
SQLite database and manages a model registry on top of them: versioned
models, lifecycle stages and aliases.

Data lives under .mlstudy/ in the current directory unless --db and
--artifact-root say otherwise.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: false,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Validate(cfg); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}
		return initLogging()
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logCleanup != nil {
			logCleanup()
			logCleanup = nil
		}
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: .mlstudy/config.yaml, then ~/.config/mlstudy/config.yaml)")
	rootCmd.PersistentFlags().String("db", "", "path to the SQLite database (overrides db_path)")
	rootCmd.PersistentFlags().String("artifact-root", "", "local artifact store root (overrides artifact_root)")
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "write structured debug logs (also MLSTUDY_DEBUG=1)")
}

// setDefaults registers every config key so env overrides and Unmarshal see them.
func setDefaults(v *viper.Viper) {
	d := config.Defaults()
	v.SetDefault("db_path", d.DBPath)
	v.SetDefault("artifact_root", d.ArtifactRoot)
	v.SetDefault("tracking.default_experiment", d.Tracking.DefaultExperiment)
	v.SetDefault("tracking.experiment_cache_ttl", d.Tracking.ExperimentCacheTTL)
	v.SetDefault("registry.archive_existing", d.Registry.ArchiveExisting)
	v.SetDefault("registry.parent_run_name", d.Registry.ParentRunName)
	v.SetDefault("registry.parent_tags", d.Registry.ParentTags)
	v.SetDefault("registry.metric", d.Registry.Metric)
	v.SetDefault("registry.stage", d.Registry.Stage)
	v.SetDefault("api.addr", d.API.Addr)
	v.SetDefault("api.read_timeout", d.API.ReadTimeout)
	v.SetDefault("api.write_timeout", d.API.WriteTimeout)
	v.SetDefault("api.shutdown_timeout", d.API.ShutdownTimeout)
	v.SetDefault("api.rate_limit_requests", d.API.RateLimitRequests)
	v.SetDefault("api.rate_limit_window", d.API.RateLimitWindow)
	v.SetDefault("tracing.enabled", d.Tracing.Enabled)
	v.SetDefault("tracing.exporter", d.Tracing.Exporter)
	v.SetDefault("tracing.file_path", d.Tracing.FilePath)
	v.SetDefault("tracing.otlp_endpoint", d.Tracing.OTLPEndpoint)
	v.SetDefault("tracing.sample_rate", d.Tracing.SampleRate)
	v.SetDefault("tracing.service_name", d.Tracing.ServiceName)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("log.path", d.Log.Path)
}

func initConfig() {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("MLSTUDY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	_ = v.BindPFlag("db_path", rootCmd.PersistentFlags().Lookup("db"))
	_ = v.BindPFlag("artifact_root", rootCmd.PersistentFlags().Lookup("artifact-root"))

	localPath := filepath.Join(config.DefaultDir, "config.yaml")
	configPath = cfgFile
	if configPath == "" {
		// Config lookup order:
		// 1. .mlstudy/config.yaml (current directory)
		// 2. ~/.config/mlstudy/config.yaml (user config)
		configPath = localPath
		if _, err := os.Stat(localPath); err != nil {
			if home, herr := os.UserHomeDir(); herr == nil {
				userPath := filepath.Join(home, ".config", "mlstudy", "config.yaml")
				if _, err := os.Stat(userPath); err == nil {
					configPath = userPath
				}
			}
		}
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		// No config file found anywhere - create the default one
		if writeErr := config.WriteDefaultConfig(configPath); writeErr != nil {
			fmt.Fprintf(os.Stderr, "warning: could not write default config: %v\n", writeErr)
		}
	}

	v.SetConfigFile(configPath)
	if err := v.ReadInConfig(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "warning: could not read config %s: %v\n", configPath, err)
	}

	cfg = config.Config{}
	if err := v.Unmarshal(&cfg); err != nil {
		fmt.Fprintf(os.Stderr, "warning: could not decode config: %v\n", err)
		cfg = config.Defaults()
	}
}

func initLogging() error {
	if !debugFlag && os.Getenv("MLSTUDY_DEBUG") == "" {
		return nil
	}
	cleanup, err := log.Init(log.Config{Path: cfg.Log.Path, Level: cfg.Log.Level, Format: cfg.Log.Format})
	if err != nil {
		return fmt.Errorf("initializing logging: %w", err)
	}
	logCleanup = cleanup
	log.Info(log.CatConfig, "mlstudy starting", "version", version, "config", configPath, "db", cfg.DBPath)
	return nil
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version string (called from main with ldflags)
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}
