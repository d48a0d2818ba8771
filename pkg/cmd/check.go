package cmd

import (
	"context"
	"fmt"

	"github.com/pseudomuto/deploykeeper/pkg/config"
	"github.com/pseudomuto/deploykeeper/pkg/deploy"
	"github.com/urfave/cli/v3"
)

// check creates the check command for validating a payload offline.
//
// The check command classifies every file in a payload without touching
// the ledger, the target database, or the notifier: it reports which files
// belong to recognized deployment paths and whether their names carry
// valid date and version tokens within the retention window.
//
// Command flags:
//   - --payload, -p: Payload file (JSON), "-" for stdin (required)
//   - --max-age: Override the retention window in months
//
// Example usage:
//
//	deploykeeper check --payload changes.json
func check() *cli.Command {
	return &cli.Command{
		Name:  "check",
		Usage: "Validate a payload's scripts without executing anything",
		Description: `Classify every file in a payload offline.

Useful as a pre-merge gate: it flags filenames missing date or version
tokens, non-calendar dates, and scripts outside the retention window before
they reach a live run.`,
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
			&cli.IntFlag{
				Name:    "max-age",
				Usage:   "Maximum script age in months",
				Value:   config.DefaultMaxAgeMonths,
				Sources: cli.EnvVars("MAX_SQL_AGE_MONTHS"),
			},
		},
		Action: runCheck,
	}
}

func runCheck(ctx context.Context, cmd *cli.Command) error {
	req, err := readPayload(cmd.String("payload"))
	if err != nil {
		return err
	}

	if len(req.Files) == 0 {
		fmt.Println("Payload contains no files.")
		return nil
	}

	policy := deploy.AgePolicy{MaxMonths: int(cmd.Int("max-age"))}
	problems := 0

	for _, f := range req.Files {
		groups := deploy.GroupScripts([]deploy.ScriptFile{f})
		if len(groups) == 0 {
			fmt.Printf("  -  %s (not a deployment script)\n", f.Path)
			continue
		}

		var deploymentID string
		for id := range groups {
			deploymentID = id
		}

		sn, err := deploy.ParseScriptName(pathBase(f.Path))
		if err != nil {
			fmt.Printf("  ⏭  %s (%s)\n", f.Path, err)
			problems++
			continue
		}

		if policy.TooOld(sn.Date) {
			fmt.Printf("  ⏭  %s (older than allowed threshold)\n", f.Path)
			problems++
			continue
		}

		fmt.Printf("  ✅ %s (deployment %s, version %d)\n", f.Path, deploymentID, sn.Version)
	}

	fmt.Println()
	if problems > 0 {
		fmt.Printf("%d file(s) would be ignored by a live run.\n", problems)
	} else {
		fmt.Println("All deployment scripts are well-formed.")
	}

	return nil
}
