package cmd

import (
	"context"
	"fmt"

	"github.com/pseudomuto/deploykeeper/pkg/config"
	"github.com/pseudomuto/deploykeeper/pkg/ledger"
	"github.com/urfave/cli/v3"
	"go.uber.org/fx"
)

type statusParams struct {
	fx.In

	Config *config.Config
}

// status creates the status command for inspecting the audit ledger.
//
// The status command lists execution records, optionally filtered by
// deployment id. It is useful for auditing what ran, when, and why a
// script was ignored or failed.
//
// Command flags:
//   - --deployment: Limit output to one deployment id
//
// Example usage:
//
//	# Show every recorded execution
//	deploykeeper status
//
//	# Show one deployment's history
//	deploykeeper status --deployment SCT-1
func status(p statusParams) *cli.Command {
	return &cli.Command{
		Name:  "status",
		Usage: "Show recorded script executions from the ledger",
		Description: `Display the audit trail of script executions.

Each entry shows the deployment id, script name, recorded status, the time
of the decision, and the failure or ignore reason when present.`,
		Before: requireConfig(p.Config),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "deployment",
				Usage: "limit output to one deployment id",
				Config: cli.StringConfig{
					TrimSpace: true,
				},
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return runStatus(ctx, cmd, p)
		},
	}
}

func runStatus(ctx context.Context, cmd *cli.Command, p statusParams) error {
	store, ledgerDB, err := openLedger(ctx, p.Config)
	if err != nil {
		return err
	}
	defer func() { _ = ledgerDB.Close() }()

	records, err := store.Records(ctx, cmd.String("deployment"))
	if err != nil {
		return err
	}

	if len(records) == 0 {
		fmt.Println("No execution records found.")
		return nil
	}

	var success, failed, ignored int

	for _, rec := range records {
		glyph := "⏭"
		switch rec.Status {
		case ledger.StatusSuccess:
			glyph = "✅"
			success++
		case ledger.StatusFailed:
			glyph = "❌"
			failed++
		default:
			ignored++
		}

		fmt.Printf("  %s %s/%s at %s\n", glyph, rec.DeploymentID, rec.ScriptName,
			rec.DeployedAt.Format("2006-01-02 15:04:05 UTC"))

		if rec.FailureReason != "" {
			fmt.Printf("     Reason: %s\n", rec.FailureReason)
		}
	}

	fmt.Println()
	fmt.Printf("Summary: %d successful, %d failed, %d ignored\n", success, failed, ignored)

	return nil
}
