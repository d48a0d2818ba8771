package config_test

import (
	"strings"
	"testing"

	"github.com/pseudomuto/deploykeeper/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	yamlData := `
database:
  driver: postgres
  dsn: postgres://localhost:5432/app?sslmode=disable
ledger:
  dsn: postgres://localhost:5432/audit?sslmode=disable
  table: deployments_audit
  fail_closed: true
webhook_url: https://hooks.example.com/sql-deployments
max_age_months: 6
suppress_duplicate_alerts: true
`

	cfg, err := config.LoadConfig(strings.NewReader(yamlData))
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "postgres://localhost:5432/app?sslmode=disable", cfg.Database.DSN)
	assert.Equal(t, "postgres://localhost:5432/audit?sslmode=disable", cfg.Ledger.DSN)
	assert.Equal(t, "deployments_audit", cfg.Ledger.Table)
	assert.True(t, cfg.Ledger.FailClosed)
	assert.Equal(t, "https://hooks.example.com/sql-deployments", cfg.WebhookURL)
	assert.Equal(t, 6, cfg.MaxAgeMonths)
	assert.True(t, cfg.SuppressDuplicateAlerts)
}

func TestLoadConfigDefaults(t *testing.T) {
	yamlData := `
database:
  dsn: postgres://localhost:5432/app?sslmode=disable
`

	cfg, err := config.LoadConfig(strings.NewReader(yamlData))
	require.NoError(t, err)

	assert.Equal(t, config.DefaultDriver, cfg.Database.Driver)
	assert.Equal(t, config.DefaultMaxAgeMonths, cfg.MaxAgeMonths)
	assert.Equal(t, config.DefaultLedgerTable, cfg.Ledger.Table)
	assert.False(t, cfg.Ledger.FailClosed)
	assert.False(t, cfg.SuppressDuplicateAlerts)

	// The ledger shares the database connection settings when omitted.
	assert.Equal(t, cfg.Database.Driver, cfg.Ledger.Driver)
	assert.Equal(t, cfg.Database.DSN, cfg.Ledger.DSN)
}

func TestLoadConfigInvalidYAML(t *testing.T) {
	_, err := config.LoadConfig(strings.NewReader("database: ["))
	assert.Error(t, err)
}

func TestLoadConfigFileMissing(t *testing.T) {
	_, err := config.LoadConfigFile("does/not/exist.yaml")
	assert.Error(t, err)
}
