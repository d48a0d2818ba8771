// Package config loads the deploykeeper project configuration from YAML.
package config

import (
	"io"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Configuration defaults. The max age in months matches the legacy
// MAX_SQL_AGE_MONTHS default.
const (
	DefaultFile         = "deploykeeper.yaml"
	DefaultMaxAgeMonths = 12
	DefaultLedgerTable  = "sql_deployments"
	DefaultDriver       = "postgres"
)

type (
	// Database identifies the target database deployment scripts run
	// against.
	Database struct {
		// Driver is the database/sql driver name (postgres, mysql, or
		// sqlite3).
		Driver string `yaml:"driver,omitempty"`

		// DSN is the driver connection string. Credentials belong in the
		// DSN or the environment, not in this file.
		DSN string `yaml:"dsn"`
	}

	// Ledger configures the durable audit store. When driver or dsn are
	// omitted, the ledger shares the target database connection settings.
	Ledger struct {
		Driver string `yaml:"driver,omitempty"`
		DSN    string `yaml:"dsn,omitempty"`

		// Table is the audit table name.
		Table string `yaml:"table,omitempty"`

		// FailClosed flips the lookup read-error policy from the default
		// fail-open (proceed as not found) to recording IGNORED instead of
		// executing.
		FailClosed bool `yaml:"fail_closed,omitempty"`
	}

	// Config represents the project configuration for SQL deployment
	// processing.
	Config struct {
		// Database is the execution target for deployment scripts.
		Database Database `yaml:"database"`

		// Ledger is the durable audit store configuration.
		Ledger Ledger `yaml:"ledger"`

		// WebhookURL receives deployment alerts. Alerts are logged only
		// when empty.
		WebhookURL string `yaml:"webhook_url,omitempty"`

		// MaxAgeMonths is the retention window for script dates, counted
		// in 30-day months.
		MaxAgeMonths int `yaml:"max_age_months,omitempty"`

		// SuppressDuplicateAlerts disables the routine notification for
		// already-executed scripts. The audit record is still written.
		SuppressDuplicateAlerts bool `yaml:"suppress_duplicate_alerts,omitempty"`
	}
)

// LoadConfig parses a project configuration from the provided io.Reader
// and applies defaults for omitted values.
//
// Example:
//
//	yamlData := `
//	database:
//	  driver: postgres
//	  dsn: postgres://localhost:5432/app?sslmode=disable
//	webhook_url: https://hooks.example.com/sql-deployments
//	`
//
//	cfg, err := config.LoadConfig(strings.NewReader(yamlData))
//	if err != nil {
//		panic(err)
//	}
func LoadConfig(r io.Reader) (*Config, error) {
	var cfg Config
	if err := yaml.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}

	if cfg.Database.Driver == "" {
		cfg.Database.Driver = DefaultDriver
	}
	if cfg.Ledger.Driver == "" {
		cfg.Ledger.Driver = cfg.Database.Driver
	}
	if cfg.Ledger.DSN == "" {
		cfg.Ledger.DSN = cfg.Database.DSN
	}
	if cfg.Ledger.Table == "" {
		cfg.Ledger.Table = DefaultLedgerTable
	}
	if cfg.MaxAgeMonths == 0 {
		cfg.MaxAgeMonths = DefaultMaxAgeMonths
	}

	return &cfg, nil
}

// LoadConfigFile loads a project configuration from the specified file
// path. This is a convenience function that opens the file and calls
// LoadConfig.
func LoadConfigFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open file: %s", path)
	}
	defer func() { _ = f.Close() }()

	return LoadConfig(f)
}
