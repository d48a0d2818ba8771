// Package deploy implements the deployment orchestration core for batches
// of SQL scripts delivered as changed-file lists (e.g. from a version
// control webhook payload).
//
// The package partitions incoming files into deployment groups, validates
// and orders the scripts within each group, executes every script exactly
// once, and records an audit entry for every decision it makes. Each
// invocation is stateless: all durable state lives in the ledger.
//
// Processing pipeline per script:
//   - Validate the filename (embedded date and version tokens)
//   - Check the script date against the retention window
//   - Check the ledger for a prior successful execution
//   - Execute the script and record the outcome
//
// The SQL execution engine, the durable ledger store, and the notification
// channel are external collaborators injected through narrow interfaces so
// the orchestrator can be tested without live infrastructure.
package deploy
