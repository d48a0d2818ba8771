package deploy

import (
	"context"
	"log/slog"
	"path"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/pseudomuto/deploykeeper/pkg/ledger"
)

type (
	// Executor invokes the opaque SQL execution engine for one script. Any
	// error it returns is converted to a FAILED outcome carrying the error
	// text as the failure reason.
	Executor interface {
		Execute(ctx context.Context, content string) error
	}

	// Notifier sends a best-effort alert for a non-success outcome.
	// Failures to notify are logged and swallowed; they never abort the
	// pipeline or alter a recorded outcome.
	Notifier interface {
		Notify(ctx context.Context, n Notification) error
	}

	// Processor drives the per-deployment, per-script pipeline: validate,
	// check age, check the ledger, execute, record. Deployments are
	// processed in ascending id order, one script at a time; a failed
	// script halts the remainder of its own deployment only.
	Processor struct {
		ledger   ledger.Ledger
		executor Executor
		notifier Notifier
		age      AgePolicy
		cfg      Config
		now      func() time.Time
	}

	// Config contains configuration options for creating a new Processor.
	Config struct {
		// Ledger is the durable record store (required).
		Ledger ledger.Ledger

		// Executor runs scripts (required unless DryRun).
		Executor Executor

		// Notifier receives non-success alerts. Optional; when nil, alerts
		// are logged only.
		Notifier Notifier

		// MaxAgeMonths is the retention window in 30-day months.
		MaxAgeMonths int

		// FailClosed flips the ledger read-error policy. The default
		// (fail-open) logs the error and proceeds as if the key were not
		// found, accepting a duplicate-execution risk during a store
		// outage. Fail-closed records IGNORED with the lookup error
		// instead of executing.
		FailClosed bool

		// QuietAlreadyExecuted suppresses the routine notification for
		// already-executed scripts. The record is still written.
		QuietAlreadyExecuted bool

		// DryRun classifies every script without executing, recording, or
		// notifying. Ledger lookups still run so the report reflects real
		// idempotency state.
		DryRun bool

		// Now returns the current time. Defaults to time.Now.
		Now func() time.Time
	}

	// Request is the single input object: the ordered list of changed
	// files. No other fields are consumed.
	Request struct {
		Files []ScriptFile
	}

	// RunStatus is the overall handler status returned to the caller.
	RunStatus string

	// Result is the outcome of one invocation. Per-script outcomes are
	// reported for observability; the external contract is Status alone,
	// with all per-script results going to the ledger and notifier side
	// channels.
	Result struct {
		Status      RunStatus
		RunID       string
		Deployments []DeploymentResult
	}

	// DeploymentResult reports the processing of one deployment group.
	DeploymentResult struct {
		DeploymentID string

		// Halted is true when a script failure stopped the remaining
		// scripts of this deployment.
		Halted bool

		Scripts []ScriptResult
	}

	// ScriptResult pairs one script with its outcome.
	ScriptResult struct {
		Name    string
		Path    string
		Outcome Outcome
	}
)

const (
	// RunNoFiles is returned when the input yields no deployment groups.
	// The ledger and notifier are never touched.
	RunNoFiles RunStatus = "NO_FILES"

	// RunCompleted is returned in every other case. Per-script problems
	// are absorbed into per-script outcomes; there is no fatal error path.
	RunCompleted RunStatus = "COMPLETED"
)

// New creates a new Processor with the provided configuration.
//
// Example usage:
//
//	proc := deploy.New(deploy.Config{
//		Ledger:       store,
//		Executor:     sqlexec.New(db),
//		Notifier:     notify.NewWebhook(cfg.WebhookURL),
//		MaxAgeMonths: 12,
//	})
//
//	result, err := proc.Run(ctx, deploy.Request{Files: files})
func New(cfg Config) *Processor {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &Processor{
		ledger:   cfg.Ledger,
		executor: cfg.Executor,
		notifier: cfg.Notifier,
		age:      AgePolicy{MaxMonths: cfg.MaxAgeMonths, Now: now},
		cfg:      cfg,
		now:      now,
	}
}

// Run processes one batch of changed files.
//
// Files are partitioned into deployment groups; groups are processed in
// ascending deployment-id order, independently — one deployment's failure
// never blocks another's. Within a group, scripts run in version order
// and a FAILED outcome halts the group's remaining scripts.
//
// Run returns RunNoFiles without side effects when the input is empty or
// contains no recognized deployment scripts. The only returned error is
// context cancellation; every per-script problem becomes a recorded
// outcome instead.
func (p *Processor) Run(ctx context.Context, req Request) (*Result, error) {
	groups := GroupScripts(req.Files)
	if len(groups) == 0 {
		return &Result{Status: RunNoFiles}, nil
	}

	result := &Result{
		Status: RunCompleted,
		RunID:  uuid.NewString(),
	}

	ids := make([]string, 0, len(groups))
	for id := range groups {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		result.Deployments = append(result.Deployments, p.runDeployment(ctx, result.RunID, id, groups[id]))
	}

	return result, nil
}

// runDeployment processes the scripts of one deployment group in order,
// halting on the first FAILED outcome.
func (p *Processor) runDeployment(ctx context.Context, runID, deploymentID string, files []ScriptFile) DeploymentResult {
	ordered := OrderScripts(files)

	dep := DeploymentResult{
		DeploymentID: deploymentID,
		Scripts:      make([]ScriptResult, 0, len(ordered)),
	}

	halted := false
	for _, script := range ordered {
		name := path.Base(script.Path)

		if halted {
			dep.Scripts = append(dep.Scripts, ScriptResult{
				Name:    name,
				Path:    script.Path,
				Outcome: Outcome{Status: StatusPending},
			})
			continue
		}

		outcome := p.processScript(ctx, runID, deploymentID, name, script)
		dep.Scripts = append(dep.Scripts, ScriptResult{Name: name, Path: script.Path, Outcome: outcome})

		if outcome.Status == StatusFailed {
			halted = true
			dep.Halted = true
		}
	}

	return dep
}

// processScript runs the validate → age → ledger → execute pipeline for a
// single script and returns its terminal outcome.
func (p *Processor) processScript(ctx context.Context, runID, deploymentID, name string, script ScriptFile) Outcome {
	sn, err := ParseScriptName(name)
	if err != nil {
		return p.recordAndNotify(ctx, runID, deploymentID, name, script.Path, Outcome{
			Status: StatusIgnored,
			Reason: err.Error(),
		})
	}

	if p.age.TooOld(sn.Date) {
		return p.recordAndNotify(ctx, runID, deploymentID, name, script.Path, Outcome{
			Status: StatusIgnored,
			Reason: reasonTooOld,
		})
	}

	found, err := p.ledger.Lookup(ctx, deploymentID, name)
	if err != nil {
		if p.cfg.FailClosed {
			return p.recordAndNotify(ctx, runID, deploymentID, name, script.Path, Outcome{
				Status: StatusIgnored,
				Reason: "ledger lookup failed: " + err.Error(),
			})
		}

		// Fail-open: a store outage must not block deployments, at the
		// documented risk of a duplicate execution.
		slog.Warn("ledger lookup failed, proceeding as not found",
			"deployment_id", deploymentID,
			"script_name", name,
			"error", err,
		)
		found = false
	}

	if found {
		outcome := Outcome{Status: StatusIgnored, Reason: reasonAlreadyExecuted}
		if p.cfg.QuietAlreadyExecuted {
			return p.record(ctx, deploymentID, name, script.Path, outcome)
		}
		return p.recordAndNotify(ctx, runID, deploymentID, name, script.Path, outcome)
	}

	if p.cfg.DryRun {
		return Outcome{Status: StatusPending}
	}

	if err := p.executor.Execute(ctx, script.Content); err != nil {
		return p.recordAndNotify(ctx, runID, deploymentID, name, script.Path, Outcome{
			Status: StatusFailed,
			Reason: err.Error(),
		})
	}

	return p.record(ctx, deploymentID, name, script.Path, Outcome{Status: StatusSuccess})
}

// record writes the outcome to the ledger. Write failures are logged and
// swallowed: the decision stands even when the audit write is lost.
func (p *Processor) record(ctx context.Context, deploymentID, name, scriptPath string, outcome Outcome) Outcome {
	if p.cfg.DryRun {
		return outcome
	}

	rec := ledger.Record{
		DeploymentID:  deploymentID,
		ScriptName:    name,
		ScriptPath:    scriptPath,
		DeployedAt:    p.now().UTC(),
		Status:        string(outcome.Status),
		FailureReason: outcome.Reason,
	}

	if err := p.ledger.Put(ctx, rec); err != nil {
		slog.Warn("failed to write execution record",
			"deployment_id", deploymentID,
			"script_name", name,
			"status", outcome.Status,
			"error", err,
		)
	}

	return outcome
}

// recordAndNotify writes the outcome and sends the best-effort alert.
func (p *Processor) recordAndNotify(ctx context.Context, runID, deploymentID, name, scriptPath string, outcome Outcome) Outcome {
	p.record(ctx, deploymentID, name, scriptPath, outcome)

	if p.cfg.DryRun {
		return outcome
	}

	n := Notification{
		RunID:        runID,
		DeploymentID: deploymentID,
		ScriptName:   name,
		ScriptPath:   scriptPath,
		Status:       outcome.Status,
		Reason:       outcome.Reason,
	}

	if p.notifier == nil {
		slog.Info("notification (no notifier configured)",
			"deployment_id", deploymentID,
			"script_name", name,
			"status", outcome.Status,
			"reason", outcome.Reason,
		)
		return outcome
	}

	if err := p.notifier.Notify(ctx, n); err != nil {
		slog.Warn("failed to send notification",
			"deployment_id", deploymentID,
			"script_name", name,
			"status", outcome.Status,
			"error", err,
		)
	}

	return outcome
}
