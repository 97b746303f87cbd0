package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalYAML = `
server:
  port: 8080
database:
  host: localhost
  user: skyrent
  database: skyrent_test
`

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse([]byte(minimalYAML))
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "disable", cfg.Database.SSLMode)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, "0 15 0 * * *", cfg.Scheduler.ExpireStaleRequests)
	assert.Equal(t, "skyrent", cfg.Metrics.Namespace)
	assert.Empty(t, cfg.Metrics.PushGatewayURL)
	assert.Equal(t, "skyrent_cronjob", cfg.Metrics.PushJob)
	assert.Equal(t, 15, cfg.Server.ReadTimeoutSeconds)

	policy, err := cfg.FeePolicy()
	require.NoError(t, err)
	assert.Equal(t, "0.0825", policy.SalesTaxRate.String())
	assert.Equal(t, "0.075", policy.RenterPlatformFeeRate.String())
	assert.Equal(t, "0.075", policy.OwnerPlatformFeeRate.String())
	assert.Equal(t, "0.03", policy.ProcessingFeeRate.String())
	assert.Equal(t, "postgres://skyrent:@localhost:5432/skyrent_test?sslmode=disable", cfg.GetDatabaseConnectionString())
}

func TestParse_EnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("FEE_OWNER_PLATFORM_RATE", "0.10")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("METRICS_PUSHGATEWAY_URL", "http://pushgateway:9091")

	cfg, err := Parse([]byte(minimalYAML))
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "http://pushgateway:9091", cfg.Metrics.PushGatewayURL)
	policy, err := cfg.FeePolicy()
	require.NoError(t, err)
	assert.Equal(t, "0.1", policy.OwnerPlatformFeeRate.String())
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		message string
	}{
		{"Missing port", "database:\n  driver: memory\n", "invalid server port"},
		{"Missing database host", "server:\n  port: 8080\ndatabase:\n  user: a\n  database: b\n", "database host is required"},
		{"Unknown driver", "server:\n  port: 8080\ndatabase:\n  driver: mysql\n", "unsupported database driver"},
		{"Negative fee", "server:\n  port: 8080\ndatabase:\n  driver: memory\nfees:\n  processing_fee_rate: \"-0.01\"\n", "must not be negative"},
		{"Garbage fee", "server:\n  port: 8080\ndatabase:\n  driver: memory\nfees:\n  sales_tax_rate: \"abc\"\n", "invalid sales tax rate"},
		{"SendGrid without ops mailbox", "server:\n  port: 8080\ndatabase:\n  driver: memory\nemail:\n  sendgrid_api_key: k\n  from_address: a@b.c\n", "ops address is required"},
		{"Bad YAML", "server: [", "failed to parse config file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 8081\ndatabase:\n  driver: memory\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "memory", cfg.Database.Driver)
	assert.Equal(t, ":8081", cfg.GetServerAddress())

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}
