// Package memory provides an in-memory ledger implementation for tests
// and local development.
package memory

import (
	"context"
	"sync"

	"github.com/pseudomuto/deploykeeper/pkg/ledger"
)

type key struct {
	deploymentID string
	scriptName   string
}

// Store is a thread-safe in-memory implementation of ledger.Ledger.
type Store struct {
	mu      sync.RWMutex
	records map[key]ledger.Record
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{records: make(map[key]ledger.Record)}
}

// Lookup reports whether the key has a terminal record.
func (s *Store) Lookup(ctx context.Context, deploymentID, scriptName string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[key{deploymentID, scriptName}]
	if !ok {
		return false, nil
	}

	return ledger.Terminal(rec), nil
}

// Put upserts the record for its key.
func (s *Store) Put(ctx context.Context, rec ledger.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[key{rec.DeploymentID, rec.ScriptName}] = rec

	return nil
}

// Records returns all records for a deployment id, or every record when
// the id is empty. The result order is unspecified.
func (s *Store) Records(ctx context.Context, deploymentID string) ([]ledger.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]ledger.Record, 0, len(s.records))
	for k, rec := range s.records {
		if deploymentID != "" && k.deploymentID != deploymentID {
			continue
		}
		out = append(out, rec)
	}

	return out, nil
}
