package cmd

import (
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"os"
	"path"

	"github.com/pkg/errors"
	"github.com/pseudomuto/deploykeeper/pkg/config"
	"github.com/pseudomuto/deploykeeper/pkg/deploy"
	"github.com/pseudomuto/deploykeeper/pkg/ledger/postgres"

	// Database drivers selectable via the driver config key.
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

type (
	// payload is the webhook request body: an ordered list of changed
	// files. No other fields are consumed.
	payload struct {
		Files []payloadFile `json:"files"`
	}

	payloadFile struct {
		Filename string `json:"filename"`
		Content  string `json:"content"`
	}
)

// readPayload reads a JSON payload from the given path ("-" for stdin)
// and converts it to a deploy request.
func readPayload(path string) (deploy.Request, error) {
	var r io.Reader = os.Stdin

	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return deploy.Request{}, errors.Wrapf(err, "failed to open payload file: %s", path)
		}
		defer func() { _ = f.Close() }()
		r = f
	}

	return parsePayload(r)
}

// parsePayload decodes the webhook JSON body.
func parsePayload(r io.Reader) (deploy.Request, error) {
	var p payload
	if err := json.NewDecoder(r).Decode(&p); err != nil {
		return deploy.Request{}, errors.Wrap(err, "failed to decode payload")
	}

	files := make([]deploy.ScriptFile, 0, len(p.Files))
	for _, f := range p.Files {
		files = append(files, deploy.ScriptFile{Path: f.Filename, Content: f.Content})
	}

	return deploy.Request{Files: files}, nil
}

// pathBase returns the final slash-delimited segment of a structural
// path. Paths are always slash-delimited regardless of host OS.
func pathBase(p string) string {
	return path.Base(p)
}

// openLedger connects to the configured ledger store and ensures its
// schema exists.
func openLedger(ctx context.Context, cfg *config.Config) (*postgres.Store, *sql.DB, error) {
	if cfg.Ledger.Driver != "postgres" {
		return nil, nil, errors.Errorf("unsupported ledger driver: %s (the ledger store requires postgres)", cfg.Ledger.Driver)
	}

	db, err := sql.Open(cfg.Ledger.Driver, cfg.Ledger.DSN)
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to open ledger database")
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, nil, errors.Wrap(err, "failed to connect to ledger database")
	}

	store := postgres.NewWithTable(db, cfg.Ledger.Table)
	if err := store.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, nil, err
	}

	return store, db, nil
}
