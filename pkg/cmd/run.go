package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pseudomuto/deploykeeper/pkg/config"
	"github.com/pseudomuto/deploykeeper/pkg/deploy"
	"github.com/pseudomuto/deploykeeper/pkg/notify"
	"github.com/pseudomuto/deploykeeper/pkg/sqlexec"
	"github.com/urfave/cli/v3"
	"go.uber.org/fx"
)

type runParams struct {
	fx.In

	Config *config.Config
}

// run creates the run command for processing a deployment payload.
//
// The run command reads a webhook payload of changed files, partitions
// them into deployment groups, and executes each group's scripts in
// version order — recording every outcome in the ledger and alerting on
// non-success outcomes.
//
// Command flags:
//   - --payload, -p: Payload file (JSON), "-" for stdin (required)
//   - --dry-run: Classify scripts without executing or recording
//   - --max-age: Override the retention window in months
//
// Example usage:
//
//	# Process a payload file
//	deploykeeper run --payload changes.json
//
//	# Classify without executing
//	deploykeeper run --payload changes.json --dry-run
//
//	# Pipe the payload from a webhook relay
//	curl -s $PAYLOAD_URL | deploykeeper run --payload -
func run(p runParams) *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "Process a batch of changed SQL deployment scripts",
		Description: `Process the deployment scripts in a webhook payload.

Files outside recognized deployment paths are dropped. Within a deployment,
scripts execute in version order; the first failure halts that deployment's
remaining scripts while other deployments proceed independently. Scripts
with malformed names, out-of-window dates, or a prior successful execution
are ignored, recorded, and alerted — never treated as failures.`,
		Before: requireConfig(p.Config),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "payload",
				Aliases:  []string{"p"},
				Usage:    `payload file containing the changed-file list ("-" for stdin)`,
				Required: true,
				Config: cli.StringConfig{
					TrimSpace: true,
				},
			},
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "Show how each script would be classified without executing",
				Value: false,
			},
			&cli.IntFlag{
				Name:    "max-age",
				Usage:   "Maximum script age in months",
				Sources: cli.EnvVars("MAX_SQL_AGE_MONTHS"),
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return runRun(ctx, cmd, p)
		},
	}
}

func runRun(ctx context.Context, cmd *cli.Command, p runParams) error {
	dryRun := cmd.Bool("dry-run")

	maxAge := p.Config.MaxAgeMonths
	if cmd.Int("max-age") > 0 {
		maxAge = int(cmd.Int("max-age"))
	}

	req, err := readPayload(cmd.String("payload"))
	if err != nil {
		return err
	}

	slog.Info("Processing deployment payload",
		"files", len(req.Files),
		"dry_run", dryRun,
		"max_age_months", maxAge,
	)

	store, ledgerDB, err := openLedger(ctx, p.Config)
	if err != nil {
		return err
	}
	defer func() { _ = ledgerDB.Close() }()

	cfg := deploy.Config{
		Ledger:               store,
		MaxAgeMonths:         maxAge,
		FailClosed:           p.Config.Ledger.FailClosed,
		QuietAlreadyExecuted: p.Config.SuppressDuplicateAlerts,
		DryRun:               dryRun,
	}

	if !dryRun {
		exec, err := sqlexec.Open(ctx, p.Config.Database.Driver, p.Config.Database.DSN)
		if err != nil {
			return err
		}
		defer func() { _ = exec.Close() }()
		cfg.Executor = exec

		if p.Config.WebhookURL != "" {
			cfg.Notifier = notify.NewWebhook(p.Config.WebhookURL)
		}
	}

	result, err := deploy.New(cfg).Run(ctx, req)
	if err != nil {
		return err
	}

	reportResult(result, dryRun)

	// Per-script failures are absorbed into recorded outcomes; only
	// infrastructure errors exit non-zero.
	return nil
}

func reportResult(result *deploy.Result, dryRun bool) {
	if result.Status == deploy.RunNoFiles {
		fmt.Println("No deployment scripts in payload.")
		return
	}

	fmt.Println()
	if dryRun {
		fmt.Println("Dry run: showing how each script would be classified")
	} else {
		fmt.Println("Deployment results:")
	}
	fmt.Println()

	var success, failed, ignored, pending int

	for _, dep := range result.Deployments {
		fmt.Printf("%s:\n", dep.DeploymentID)

		for _, script := range dep.Scripts {
			switch script.Outcome.Status {
			case deploy.StatusSuccess:
				fmt.Printf("  ✅ %s\n", script.Name)
				success++
			case deploy.StatusFailed:
				fmt.Printf("  ❌ %s\n", script.Name)
				fmt.Printf("     Error: %s\n", script.Outcome.Reason)
				failed++
			case deploy.StatusIgnored:
				fmt.Printf("  ⏭  %s (%s)\n", script.Name, script.Outcome.Reason)
				ignored++
			case deploy.StatusPending:
				if dryRun {
					fmt.Printf("  ▶  %s (would execute)\n", script.Name)
				} else {
					fmt.Printf("  ⏸  %s (not attempted)\n", script.Name)
				}
				pending++
			}
		}

		if dep.Halted {
			fmt.Printf("  Deployment halted after first failure.\n")
		}
	}

	fmt.Println()
	if dryRun {
		fmt.Printf("Summary: %d would execute, %d ignored\n", pending, ignored)
		return
	}

	fmt.Printf("Summary: %d successful, %d failed, %d ignored, %d not attempted\n",
		success, failed, ignored, pending)
}
