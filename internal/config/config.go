// Package config loads process configuration for the cmd/ binaries only;
// the core (pkg/, internal/strategy, internal/backtest, internal/walkforward)
// never reads it, per the core's "no environment variables" contract.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds the cmd/ binaries' process configuration.
type Config struct {
	Database  DatabaseConfig  `mapstructure:"database"`
	Backtest  BacktestConfig  `mapstructure:"backtest"`
	Optimize  OptimizeConfig  `mapstructure:"optimize"`
	PaperRun  PaperRunConfig  `mapstructure:"paper_run"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// DatabaseConfig holds the Postgres connection settings for the paper
// runner's reference Storage adapter.
type DatabaseConfig struct {
	Host        string        `mapstructure:"host"`
	Port        int           `mapstructure:"port"`
	User        string        `mapstructure:"user"`
	Password    string        `mapstructure:"password"`
	Database    string        `mapstructure:"database"`
	MaxConns    int           `mapstructure:"max_conns"`
	MinConns    int           `mapstructure:"min_conns"`
	MaxConnLife time.Duration `mapstructure:"max_conn_life"`
}

// BacktestConfig holds cmd/backtest's defaults and output location.
type BacktestConfig struct {
	OutputDir      string  `mapstructure:"output_dir"`
	InitialCapital float64 `mapstructure:"initial_capital"`
}

// OptimizeConfig holds cmd/optimize's worker count and trial budget.
type OptimizeConfig struct {
	OutputDir string `mapstructure:"output_dir"`
	Workers   int    `mapstructure:"workers"`
	NTrials   int    `mapstructure:"n_trials"`
}

// PaperRunConfig holds cmd/paperrun's loop cadence and position cap.
type PaperRunConfig struct {
	ScanIntervalSeconds int `mapstructure:"scan_interval_seconds"`
	MaxPositions        int `mapstructure:"max_positions"`
	Lookback            int `mapstructure:"lookback"`
}

// LoggingConfig holds zerolog setup knobs.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // "json" or "console"
}

// Load reads configuration from configPath, a YAML file, layering in
// defaults and PI5_-prefixed environment variable overrides.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	v.SetEnvPrefix("PI5")
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if v.IsSet("DB_HOST") {
		cfg.Database.Host = v.GetString("DB_HOST")
	}
	if v.IsSet("DB_PORT") {
		cfg.Database.Port = v.GetInt("DB_PORT")
	}
	if v.IsSet("DB_USER") {
		cfg.Database.User = v.GetString("DB_USER")
	}
	if v.IsSet("DB_PASSWORD") {
		cfg.Database.Password = v.GetString("DB_PASSWORD")
	}
	if v.IsSet("DB_NAME") {
		cfg.Database.Database = v.GetString("DB_NAME")
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "quant")
	v.SetDefault("database.database", "quant_research")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 2)
	v.SetDefault("database.max_conn_life", 5*time.Minute)

	v.SetDefault("backtest.output_dir", "./reports")
	v.SetDefault("backtest.initial_capital", 100000.0)

	v.SetDefault("optimize.output_dir", "./reports")
	v.SetDefault("optimize.workers", 4)
	v.SetDefault("optimize.n_trials", 50)

	v.SetDefault("paper_run.scan_interval_seconds", 60)
	v.SetDefault("paper_run.max_positions", 5)
	v.SetDefault("paper_run.lookback", 200)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
}

// ConnectionString returns a PostgreSQL connection string suitable for
// pgxpool.New.
func (c DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.User, c.Password, c.Host, c.Port, c.Database,
	)
}
