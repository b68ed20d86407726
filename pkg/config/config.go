// Package config loads the service configuration from a TOML file with
// environment-variable override and post-load validation.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config is the root configuration of the caseops service.
type Config struct {
	ServiceName string `mapstructure:"service_name"`
	Version     string `mapstructure:"version"`
	// Environment: dev, staging, prod
	Environment string         `mapstructure:"environment"`
	HTTP        HTTPConfig     `mapstructure:"http"`
	Database    DatabaseConfig `mapstructure:"database"`
	Kafka       KafkaConfig    `mapstructure:"kafka"`
	Logger      LoggerConfig   `mapstructure:"logger"`
	Metrics     MetricsConfig  `mapstructure:"metrics"`
	SLA         SLAConfig      `mapstructure:"sla"`
	Documents   DocumentConfig `mapstructure:"documents"`
	Requirement ReqConfig      `mapstructure:"requirement"`
}

// HTTPConfig configures the gin HTTP server.
type HTTPConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	ReadTimeout  int    `mapstructure:"read_timeout"`
	WriteTimeout int    `mapstructure:"write_timeout"`
}

// DatabaseConfig configures the MySQL connection pool.
type DatabaseConfig struct {
	DSN                string `mapstructure:"dsn"`
	MaxOpenConns       int    `mapstructure:"max_open_conns"`
	MaxIdleConns       int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime    int    `mapstructure:"conn_max_lifetime"`
	LogEnabled         bool   `mapstructure:"log_enabled"`
	SlowQueryThreshold int    `mapstructure:"slow_query_threshold"`
}

// KafkaConfig configures the event/alert producer.
type KafkaConfig struct {
	Brokers      []string `mapstructure:"brokers"`
	MaxRetries   int      `mapstructure:"max_retries"`
	RetryBackoff int      `mapstructure:"retry_backoff"`
}

// LoggerConfig configures structured logging.
type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	Output     string `mapstructure:"output"`
	FilePath   string `mapstructure:"file_path"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
	Compress   bool   `mapstructure:"compress"`
	WithCaller bool   `mapstructure:"with_caller"`
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port"`
	Path    string `mapstructure:"path"`
}

// SLAConfig holds every deadline threshold the monitor evaluates against.
// Thresholds are configuration, never constants in code.
type SLAConfig struct {
	// SweepInterval is the monitor's polling interval in seconds.
	SweepInterval int `mapstructure:"sweep_interval"`
	// FirstContactHours alerts when a new case has no recorded first contact.
	FirstContactHours int `mapstructure:"first_contact_hours"`
	// Payment overdue ladder.
	PaymentTier1Hours int `mapstructure:"payment_tier1_hours"`
	PaymentTier2Hours int `mapstructure:"payment_tier2_hours"`
	PaymentTier3Days  int `mapstructure:"payment_tier3_days"`
	// Contract signature ladder, measured from the moment the contract is sent.
	SignatureTier1Days   int `mapstructure:"signature_tier1_days"`
	SignatureTier2Days   int `mapstructure:"signature_tier2_days"`
	SignatureTier3Days   int `mapstructure:"signature_tier3_days"`
	SignatureCancelDays  int `mapstructure:"signature_cancel_days"`
	RequirementReplyDays int `mapstructure:"requirement_reply_days"`
}

// DocumentConfig maps each service type to its required document checklist.
// Keys are lowercase service type names (visa, work, reunification, renewal,
// nationality, other); values are document type codes released when a case
// enters document collection.
type DocumentConfig struct {
	Required map[string][]string `mapstructure:"required"`
}

// ReqConfig holds requirement-tracker settings.
type ReqConfig struct {
	// InternalBufferDays is subtracted from the official deadline to derive
	// the internal one.
	InternalBufferDays int `mapstructure:"internal_buffer_days"`
}

// Load reads the TOML file at configPath, applies APP_-prefixed environment
// overrides, and validates the result.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("toml")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	v.SetEnvPrefix("APP")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// Validate checks the loaded configuration for values the service cannot
// start without.
func (c *Config) Validate() error {
	if c.ServiceName == "" {
		return fmt.Errorf("service_name is required")
	}
	if c.Environment == "" {
		c.Environment = "dev"
	}
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTP.Port)
	}
	if c.Database.DSN == "" {
		return fmt.Errorf("database DSN is required")
	}
	if c.SLA.SweepInterval <= 0 {
		return fmt.Errorf("sla.sweep_interval must be positive")
	}
	if c.SLA.PaymentTier1Hours >= c.SLA.PaymentTier2Hours {
		return fmt.Errorf("payment overdue tiers must be strictly increasing")
	}
	if c.SLA.PaymentTier2Hours >= c.SLA.PaymentTier3Days*24 {
		return fmt.Errorf("payment overdue tiers must be strictly increasing")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("http.host", "0.0.0.0")
	v.SetDefault("http.port", 8080)
	v.SetDefault("http.read_timeout", 30)
	v.SetDefault("http.write_timeout", 30)

	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 300)
	v.SetDefault("database.log_enabled", false)
	v.SetDefault("database.slow_query_threshold", 1000)

	v.SetDefault("kafka.max_retries", 3)
	v.SetDefault("kafka.retry_backoff", 100)

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "json")
	v.SetDefault("logger.output", "stdout")
	v.SetDefault("logger.file_path", "logs/caseops.log")
	v.SetDefault("logger.max_size", 100)
	v.SetDefault("logger.max_backups", 10)
	v.SetDefault("logger.max_age", 30)
	v.SetDefault("logger.compress", true)
	v.SetDefault("logger.with_caller", false)

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.port", 9090)
	v.SetDefault("metrics.path", "/metrics")

	v.SetDefault("sla.sweep_interval", 300)
	v.SetDefault("sla.first_contact_hours", 24)
	v.SetDefault("sla.payment_tier1_hours", 24)
	v.SetDefault("sla.payment_tier2_hours", 72)
	v.SetDefault("sla.payment_tier3_days", 7)
	v.SetDefault("sla.signature_tier1_days", 1)
	v.SetDefault("sla.signature_tier2_days", 3)
	v.SetDefault("sla.signature_tier3_days", 5)
	v.SetDefault("sla.signature_cancel_days", 8)
	v.SetDefault("sla.requirement_reply_days", 5)

	v.SetDefault("requirement.internal_buffer_days", 5)
}
