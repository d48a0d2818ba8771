// Package postgres provides a PostgreSQL-backed ledger implementation
// over database/sql.
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pkg/errors"
	"github.com/pseudomuto/deploykeeper/pkg/ledger"
)

// DefaultTable is the audit table used when none is configured.
const DefaultTable = "sql_deployments"

// Store is a PostgreSQL implementation of ledger.Ledger. It persists one
// row per (deployment_id, script_name) key, upserting on conflict.
type Store struct {
	db    *sql.DB
	table string
}

// New creates a new PostgreSQL store writing to the default table.
func New(db *sql.DB) *Store {
	return NewWithTable(db, DefaultTable)
}

// NewWithTable creates a new PostgreSQL store writing to a custom table.
func NewWithTable(db *sql.DB, table string) *Store {
	if table == "" {
		table = DefaultTable
	}

	return &Store{db: db, table: table}
}

// EnsureSchema creates the audit table if it does not exist. Safe to call
// on every start.
func (s *Store) EnsureSchema(ctx context.Context) error {
	ddl := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			deployment_id  TEXT NOT NULL,
			script_name    TEXT NOT NULL,
			script_path    TEXT NOT NULL,
			deployed_at    TIMESTAMPTZ NOT NULL,
			status         TEXT NOT NULL,
			failure_reason TEXT,
			PRIMARY KEY (deployment_id, script_name)
		)
	`, s.table)

	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return errors.Wrapf(err, "failed to create ledger table %s", s.table)
	}

	return nil
}

// Lookup reports whether the key has a terminal record.
func (s *Store) Lookup(ctx context.Context, deploymentID, scriptName string) (bool, error) {
	query := fmt.Sprintf(`
		SELECT 1 FROM %s
		WHERE deployment_id = $1
		  AND script_name = $2
		  AND (status = $3 OR (status = $4 AND failure_reason = $5))
	`, s.table)

	var one int
	err := s.db.QueryRowContext(ctx, query,
		deploymentID,
		scriptName,
		ledger.StatusSuccess,
		ledger.StatusIgnored,
		ledger.ReasonAlreadyExecuted,
	).Scan(&one)

	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, errors.Wrap(err, "failed to look up execution record")
	}

	return true, nil
}

// Put upserts the record for its key.
func (s *Store) Put(ctx context.Context, rec ledger.Record) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (deployment_id, script_name, script_path, deployed_at, status, failure_reason)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (deployment_id, script_name) DO UPDATE SET
			script_path = EXCLUDED.script_path,
			deployed_at = EXCLUDED.deployed_at,
			status = EXCLUDED.status,
			failure_reason = EXCLUDED.failure_reason
	`, s.table)

	var reason *string
	if rec.FailureReason != "" {
		reason = &rec.FailureReason
	}

	if _, err := s.db.ExecContext(ctx, query,
		rec.DeploymentID,
		rec.ScriptName,
		rec.ScriptPath,
		rec.DeployedAt,
		rec.Status,
		reason,
	); err != nil {
		return errors.Wrap(err, "failed to write execution record")
	}

	return nil
}

// Records returns the records for a deployment id ordered by script name,
// or every record ordered by key when the id is empty.
func (s *Store) Records(ctx context.Context, deploymentID string) ([]ledger.Record, error) {
	query := fmt.Sprintf(`
		SELECT deployment_id, script_name, script_path, deployed_at, status, failure_reason
		FROM %s
		WHERE ($1 = '' OR deployment_id = $1)
		ORDER BY deployment_id, script_name
	`, s.table)

	rows, err := s.db.QueryContext(ctx, query, deploymentID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query execution records")
	}
	defer func() { _ = rows.Close() }()

	var out []ledger.Record
	for rows.Next() {
		var (
			rec    ledger.Record
			reason sql.NullString
		)

		if err := rows.Scan(
			&rec.DeploymentID,
			&rec.ScriptName,
			&rec.ScriptPath,
			&rec.DeployedAt,
			&rec.Status,
			&reason,
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan execution record")
		}

		rec.FailureReason = reason.String
		out = append(out, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate execution records")
	}

	return out, nil
}
