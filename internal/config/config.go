// Package config provides configuration management for the Asset Horizon application.
package config

import (
	"fmt"
	"time"
)

// Config represents the complete application configuration
type Config struct {
	App        AppConfig        `mapstructure:"app" validate:"required"`
	Database   DatabaseConfig   `mapstructure:"database" validate:"required"`
	DataSource DataSourceConfig `mapstructure:"datasource" validate:"required"`
	Engine     EngineConfig     `mapstructure:"engine" validate:"required"`
	Jobs       JobsConfig       `mapstructure:"jobs" validate:"required"`
	Writer     WriterConfig     `mapstructure:"writer" validate:"required"`
	Metrics    MetricsConfig    `mapstructure:"metrics" validate:"required"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// DatabaseConfig represents database connection configuration
type DatabaseConfig struct {
	Host               string `mapstructure:"host" validate:"required"`
	Port               int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Name               string `mapstructure:"name" validate:"required"`
	User               string `mapstructure:"user" validate:"required"`
	Password           string `mapstructure:"password" validate:"required"`
	SSLMode            string `mapstructure:"ssl_mode" validate:"required,oneof=disable require verify-full"`
	MaxConnections     int    `mapstructure:"max_connections" validate:"required,gt=0"`
	MaxIdleConnections int    `mapstructure:"max_idle_connections" validate:"required,gt=0"`
}

// DataSourceConfig represents the market data provider configuration
type DataSourceConfig struct {
	BaseURL           string `mapstructure:"base_url" validate:"required,url"`
	APIKey            string `mapstructure:"api_key"`
	TimeoutSeconds    int    `mapstructure:"timeout_seconds" validate:"required,gt=0"`
	RetryAttempts     int    `mapstructure:"retry_attempts" validate:"required,gte=0"`
	RequestsPerSecond int    `mapstructure:"requests_per_second" validate:"required,gt=0"`
	BurstSize         int    `mapstructure:"burst_size" validate:"required,gt=0"`
}

// EngineConfig represents performance computation parameters
type EngineConfig struct {
	HoldingPeriodsYears []int    `mapstructure:"holding_periods_years" validate:"required,min=1,holdingperiods"`
	RiskFreeRate        float64  `mapstructure:"risk_free_rate" validate:"gte=0,lte=1"`
	MinCompleteness     float64  `mapstructure:"min_completeness" validate:"required,gt=0,lte=1"`
	ContributionAmount  float64  `mapstructure:"contribution_amount" validate:"required,gt=0"`
	DCAFrequencies      []string `mapstructure:"dca_frequencies" validate:"required,min=1,dcafrequencies"`
	Workers             int      `mapstructure:"workers" validate:"required,gt=0"`
}

// JobsConfig represents scheduled job configuration
type JobsConfig struct {
	DailyFetchCron       string `mapstructure:"daily_fetch_cron" validate:"required"`
	DailyNormalizeCron   string `mapstructure:"daily_normalize_cron" validate:"required"`
	MonthlyRecomputeCron string `mapstructure:"monthly_recompute_cron" validate:"required"`
	MonthlyLookbackDays  int    `mapstructure:"monthly_lookback_days" validate:"required,gt=0"`
}

// WriterConfig represents persistence batching configuration
type WriterConfig struct {
	BatchSize     int `mapstructure:"batch_size" validate:"required,gt=0"`
	RetryAttempts int `mapstructure:"retry_attempts" validate:"required,gte=0"`
	RetryDelayMs  int `mapstructure:"retry_delay_ms" validate:"required,gt=0"`
}

// MetricsConfig represents metrics and monitoring configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Path    string `mapstructure:"path" validate:"required"`
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// GetDatabaseDSN returns a PostgreSQL DSN string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// RequestTimeout returns the data source request timeout as a duration
func (d *DataSourceConfig) RequestTimeout() time.Duration {
	return time.Duration(d.TimeoutSeconds) * time.Second
}

// RetryDelay returns the writer retry delay as a duration
func (w *WriterConfig) RetryDelay() time.Duration {
	return time.Duration(w.RetryDelayMs) * time.Millisecond
}
