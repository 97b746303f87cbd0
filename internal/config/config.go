package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"skyrent-backend/internal/utils"
)

// Config represents the application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Email     EmailConfig     `yaml:"email"`
	Fees      FeesConfig      `yaml:"fees"`
	Log       LogConfig       `yaml:"log"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host                string `yaml:"host"`
	Port                int    `yaml:"port"`
	ReadTimeoutSeconds  int    `yaml:"read_timeout_seconds"`
	WriteTimeoutSeconds int    `yaml:"write_timeout_seconds"`
}

// DatabaseConfig contains PostgreSQL connection settings.
// Driver "memory" runs without a database.
type DatabaseConfig struct {
	Driver   string `yaml:"driver"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"ssl_mode"`
	Migrate  bool   `yaml:"migrate"`
}

// EmailConfig contains SendGrid settings. An empty API key disables delivery.
type EmailConfig struct {
	SendGridAPIKey string `yaml:"sendgrid_api_key"`
	FromAddress    string `yaml:"from_address"`
	FromName       string `yaml:"from_name"`
	OpsAddress     string `yaml:"ops_address"`
}

// FeesConfig holds the fee policy rates as decimal strings, e.g. "0.0825"
type FeesConfig struct {
	SalesTaxRate          string `yaml:"sales_tax_rate"`
	RenterPlatformFeeRate string `yaml:"renter_platform_fee_rate"`
	OwnerPlatformFeeRate  string `yaml:"owner_platform_fee_rate"`
	ProcessingFeeRate     string `yaml:"processing_fee_rate"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "text"
}

// SchedulerConfig contains cron schedule settings (with seconds field)
type SchedulerConfig struct {
	ExpireStaleRequests  string `yaml:"expire_stale_requests"`
	ReportPendingPayouts string `yaml:"report_pending_payouts"`
}

// MetricsConfig contains prometheus settings
type MetricsConfig struct {
	Namespace string `yaml:"namespace"`
	// PushGatewayURL is where the cronjob pushes its metrics. Empty disables pushing.
	PushGatewayURL string `yaml:"push_gateway_url"`
	PushJob        string `yaml:"push_job"`
}

// Load reads configuration from a YAML file. A .env file in the working
// directory, if present, is loaded into the environment first.
func Load(configPath string) (*Config, error) {
	_ = godotenv.Load()

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return Parse(data)
}

// Parse builds a Config from YAML bytes, applying env overrides and defaults
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.overrideWithEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// overrideWithEnv overrides config values with environment variables
func (c *Config) overrideWithEnv() {
	// Database
	if val := os.Getenv("DB_DRIVER"); val != "" {
		c.Database.Driver = val
	}
	if val := os.Getenv("DB_HOST"); val != "" {
		c.Database.Host = val
	}
	if val := os.Getenv("DB_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Database.Port)
	}
	if val := os.Getenv("DB_USER"); val != "" {
		c.Database.User = val
	}
	if val := os.Getenv("DB_PASSWORD"); val != "" {
		c.Database.Password = val
	}
	if val := os.Getenv("DB_NAME"); val != "" {
		c.Database.Database = val
	}
	if val := os.Getenv("DB_SSL_MODE"); val != "" {
		c.Database.SSLMode = val
	}

	// Email
	if val := os.Getenv("SENDGRID_API_KEY"); val != "" {
		c.Email.SendGridAPIKey = val
	}
	if val := os.Getenv("EMAIL_OPS_ADDRESS"); val != "" {
		c.Email.OpsAddress = val
	}

	// Fees
	if val := os.Getenv("FEE_SALES_TAX_RATE"); val != "" {
		c.Fees.SalesTaxRate = val
	}
	if val := os.Getenv("FEE_RENTER_PLATFORM_RATE"); val != "" {
		c.Fees.RenterPlatformFeeRate = val
	}
	if val := os.Getenv("FEE_OWNER_PLATFORM_RATE"); val != "" {
		c.Fees.OwnerPlatformFeeRate = val
	}
	if val := os.Getenv("FEE_PROCESSING_RATE"); val != "" {
		c.Fees.ProcessingFeeRate = val
	}

	// Server
	if val := os.Getenv("SERVER_HOST"); val != "" {
		c.Server.Host = val
	}
	if val := os.Getenv("SERVER_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Server.Port)
	}

	// Log
	if val := os.Getenv("LOG_LEVEL"); val != "" {
		c.Log.Level = val
	}
	if val := os.Getenv("LOG_FORMAT"); val != "" {
		c.Log.Format = val
	}

	// Metrics
	if val := os.Getenv("METRICS_PUSHGATEWAY_URL"); val != "" {
		c.Metrics.PushGatewayURL = val
	}
}

// Validate checks the configuration and fills defaults
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.ReadTimeoutSeconds == 0 {
		c.Server.ReadTimeoutSeconds = 15
	}
	if c.Server.WriteTimeoutSeconds == 0 {
		c.Server.WriteTimeoutSeconds = 15
	}

	c.Database.Driver = strings.ToLower(c.Database.Driver)
	switch c.Database.Driver {
	case "", "postgres":
		c.Database.Driver = "postgres"
		if c.Database.Host == "" {
			return fmt.Errorf("database host is required")
		}
		if c.Database.User == "" {
			return fmt.Errorf("database user is required")
		}
		if c.Database.Database == "" {
			return fmt.Errorf("database name is required")
		}
		if c.Database.Port == 0 {
			c.Database.Port = 5432
		}
		if c.Database.SSLMode == "" {
			c.Database.SSLMode = "disable"
		}
	case "memory":
	default:
		return fmt.Errorf("unsupported database driver: %s", c.Database.Driver)
	}

	if c.Email.SendGridAPIKey != "" {
		if c.Email.FromAddress == "" {
			return fmt.Errorf("email from address is required when SendGrid is enabled")
		}
		if c.Email.OpsAddress == "" {
			return fmt.Errorf("email ops address is required when SendGrid is enabled")
		}
	}
	if c.Email.FromName == "" {
		c.Email.FromName = "SkyRent"
	}

	// Fee defaults match utils.DefaultFeePolicy
	if c.Fees.SalesTaxRate == "" {
		c.Fees.SalesTaxRate = "0.0825"
	}
	if c.Fees.RenterPlatformFeeRate == "" {
		c.Fees.RenterPlatformFeeRate = "0.075"
	}
	if c.Fees.OwnerPlatformFeeRate == "" {
		c.Fees.OwnerPlatformFeeRate = "0.075"
	}
	if c.Fees.ProcessingFeeRate == "" {
		c.Fees.ProcessingFeeRate = "0.03"
	}
	if _, err := c.FeePolicy(); err != nil {
		return err
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}

	if c.Scheduler.ExpireStaleRequests == "" {
		c.Scheduler.ExpireStaleRequests = "0 15 0 * * *" // 00:15 UTC
	}
	if c.Scheduler.ReportPendingPayouts == "" {
		c.Scheduler.ReportPendingPayouts = "0 0 8 * * *" // 8 AM UTC
	}

	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = "skyrent"
	}
	if c.Metrics.PushJob == "" {
		c.Metrics.PushJob = "skyrent_cronjob"
	}

	return nil
}

// FeePolicy parses the configured rates
func (c *Config) FeePolicy() (utils.FeePolicy, error) {
	parse := func(name, val string) (decimal.Decimal, error) {
		d, err := decimal.NewFromString(strings.TrimSpace(val))
		if err != nil {
			return decimal.Zero, fmt.Errorf("invalid %s %q: %w", name, val, err)
		}
		return d, nil
	}

	var policy utils.FeePolicy
	var err error
	if policy.SalesTaxRate, err = parse("sales tax rate", c.Fees.SalesTaxRate); err != nil {
		return utils.FeePolicy{}, err
	}
	if policy.RenterPlatformFeeRate, err = parse("renter platform fee rate", c.Fees.RenterPlatformFeeRate); err != nil {
		return utils.FeePolicy{}, err
	}
	if policy.OwnerPlatformFeeRate, err = parse("owner platform fee rate", c.Fees.OwnerPlatformFeeRate); err != nil {
		return utils.FeePolicy{}, err
	}
	if policy.ProcessingFeeRate, err = parse("processing fee rate", c.Fees.ProcessingFeeRate); err != nil {
		return utils.FeePolicy{}, err
	}
	if err := policy.Validate(); err != nil {
		return utils.FeePolicy{}, err
	}
	return policy, nil
}

// GetDatabaseConnectionString returns a PostgreSQL connection string
func (c *Config) GetDatabaseConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Database,
		c.Database.SSLMode,
	)
}

// GetServerAddress returns the HTTP listen address
func (c *Config) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
