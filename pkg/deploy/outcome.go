package deploy

import "github.com/pseudomuto/deploykeeper/pkg/ledger"

type (
	// Status is the terminal classification assigned to a script after
	// processing.
	Status string

	// Outcome is the transient per-script result consumed by the
	// orchestrator to decide whether to continue or halt the current
	// deployment.
	Outcome struct {
		// Status is the tri-state classification (PENDING only in dry runs).
		Status Status

		// Reason is a human-readable explanation, present iff Status is not
		// SUCCESS.
		Reason string
	}

	// Notification is the structured alert sent for every non-success
	// outcome.
	Notification struct {
		RunID        string
		DeploymentID string
		ScriptName   string
		ScriptPath   string
		Status       Status
		Reason       string
	}
)

const (
	// StatusSuccess indicates the script executed and committed.
	StatusSuccess Status = Status(ledger.StatusSuccess)

	// StatusFailed indicates the executor reported an error; the rest of
	// the deployment is halted.
	StatusFailed Status = Status(ledger.StatusFailed)

	// StatusIgnored indicates the script was skipped (malformed name, out
	// of window, or already executed); processing continues.
	StatusIgnored Status = Status(ledger.StatusIgnored)

	// StatusPending indicates the script was not attempted. Scripts after
	// a failure and all scripts in a dry run end in this state.
	StatusPending Status = "PENDING"
)

// Reasons attached to IGNORED outcomes beyond filename validation errors.
const (
	reasonTooOld          = "older than allowed threshold"
	reasonAlreadyExecuted = ledger.ReasonAlreadyExecuted
)
