// Package sqlexec executes deployment script content against a SQL
// database through database/sql.
//
// The orchestration core treats script content as opaque; this package is
// the boundary that turns it into statements. Drivers are registered by
// the caller (the CLI wires postgres, mysql, and sqlite3).
package sqlexec

import (
	"context"
	"database/sql"
	"strings"

	"github.com/pkg/errors"
)

// Executor runs script content statement by statement against a database.
// A statement failure stops execution and surfaces the driver error;
// statements already applied stay applied (no DDL transaction semantics
// are assumed).
type Executor struct {
	db *sql.DB
}

// New creates an Executor over an open database handle.
func New(db *sql.DB) *Executor {
	return &Executor{db: db}
}

// Open opens a database handle for the given driver and DSN and verifies
// connectivity, returning an Executor over it.
//
// Example usage:
//
//	exec, err := sqlexec.Open(ctx, "postgres", cfg.Database.DSN)
//	if err != nil {
//		return err
//	}
//	defer exec.Close()
func Open(ctx context.Context, driver, dsn string) (*Executor, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %s database", driver)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, errors.Wrapf(err, "failed to connect to %s database", driver)
	}

	return &Executor{db: db}, nil
}

// Close releases the underlying database handle.
func (e *Executor) Close() error {
	return e.db.Close()
}

// Execute runs the script content. Each statement is executed in order;
// the first error aborts the remainder and is returned with the failing
// statement's position.
func (e *Executor) Execute(ctx context.Context, content string) error {
	stmts := splitStatements(content)
	if len(stmts) == 0 {
		return errors.New("script contains no executable statements")
	}

	for i, stmt := range stmts {
		if _, err := e.db.ExecContext(ctx, stmt); err != nil {
			return errors.Wrapf(err, "failed to execute statement %d", i+1)
		}
	}

	return nil
}

// splitStatements splits script content on semicolon terminators,
// dropping empty chunks and comment-only chunks. This intentionally does
// not understand SQL string literals; scripts with semicolons inside
// literals should place one statement per script file.
func splitStatements(content string) []string {
	var out []string

	for _, chunk := range strings.Split(content, ";") {
		stmt := strings.TrimSpace(chunk)
		if stmt == "" || commentOnly(stmt) {
			continue
		}
		out = append(out, stmt)
	}

	return out
}

func commentOnly(stmt string) bool {
	for _, line := range strings.Split(stmt, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "--") {
			continue
		}
		return false
	}

	return true
}
