// Package ledger defines the durable audit store for script execution
// records, keyed by (deployment id, script name).
//
// The ledger is the system's only cross-invocation state. One record
// exists per key; repeated writes for the same key overwrite the prior
// record. Records are never deleted by this system — retention is the
// store's concern.
package ledger

import (
	"context"
	"time"
)

// Statuses recorded in the ledger.
const (
	StatusSuccess = "SUCCESS"
	StatusFailed  = "FAILED"
	StatusIgnored = "IGNORED"
)

// ReasonAlreadyExecuted is the reason recorded when a script is skipped
// because a prior execution is on record. Records carrying this reason
// keep the key terminal: a later Lookup still reports the key as
// executed even though the overwrite replaced the original SUCCESS row.
const ReasonAlreadyExecuted = "already executed"

type (
	// Record is the durable audit unit for one per-script decision. The
	// (DeploymentID, ScriptName) pair is the idempotency key.
	Record struct {
		DeploymentID string
		ScriptName   string
		ScriptPath   string
		DeployedAt   time.Time
		Status       string

		// FailureReason is present iff Status is not SUCCESS.
		FailureReason string
	}

	// Ledger provides read/write access to the durable record store.
	// Implementations must be safe for concurrent use.
	Ledger interface {
		// Lookup reports whether the key has a terminal record: a SUCCESS
		// record, or an IGNORED record whose reason is
		// ReasonAlreadyExecuted. FAILED and other IGNORED records do not
		// block future attempts.
		Lookup(ctx context.Context, deploymentID, scriptName string) (bool, error)

		// Put upserts the record for its key, overwriting any prior record.
		// The caller never reads before overwriting once it has decided to
		// write, so repeated non-success writes for a key are acceptable.
		Put(ctx context.Context, rec Record) error
	}
)

// Terminal reports whether a record marks its key as executed for the
// purposes of the idempotency check. Shared by ledger implementations.
func Terminal(rec Record) bool {
	if rec.Status == StatusSuccess {
		return true
	}
	return rec.Status == StatusIgnored && rec.FailureReason == ReasonAlreadyExecuted
}
