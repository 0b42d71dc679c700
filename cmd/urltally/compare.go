package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/urltally/internal/config"
	"github.com/nao1215/urltally/internal/database"
	"github.com/nao1215/urltally/internal/model"
	"github.com/spf13/cobra"
)

// NewCompareCmd creates the compare command.
// This command compares runs stored in the history database.
func NewCompareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Compare the latest run with an earlier one",
		Long: `Compare shows how the domains of the latest recorded run differ from an
earlier run:
- New domains that did not occur before
- Vanished domains that no longer occur
- Domains whose count changed

By default the latest run is compared with the one before it. Every
'urltally scan' records a run unless --no-history is given.

Examples:
  # Compare the latest two runs
  urltally compare

  # List recorded runs
  urltally compare --list

  # Compare the latest run with a specific run
  urltally compare --with-run-id 0d5c7a8e-4f5b-4b8e-9a57-2f6b9e1f3c11

  # Keep the five largest changes per section, as Markdown
  urltally compare -n 5 --markdown`,
		Args: cobra.NoArgs,
		RunE: runCompareCmd,
	}

	cmd.Flags().BoolP("list", "l", false,
		"List recorded runs, newest first")
	cmd.Flags().StringP("with-run-id", "i", "",
		"Compare with a specific run (use --list to see run IDs)")
	cmd.Flags().IntP("top", "n", 0,
		"Number of entries per section, or of runs with --list (0 lists all)")

	cmd.Flags().BoolP("json", "j", false,
		"Output comparison result in JSON format")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output comparison result in Markdown format")

	cmd.Flags().String("history-dir", "",
		"Directory of the history database (default: XDG data directory)")

	return cmd
}

// runCompareCmd executes the compare command.
func runCompareCmd(cmd *cobra.Command, _ []string) error {
	flags := cmd.Flags()

	listRuns, err := flags.GetBool("list")
	if err != nil {
		return err
	}
	withRunID, err := flags.GetString("with-run-id")
	if err != nil {
		return err
	}
	top, err := flags.GetInt("top")
	if err != nil {
		return err
	}
	jsonOutput, err := flags.GetBool("json")
	if err != nil {
		return err
	}
	markdownOutput, err := flags.GetBool("markdown")
	if err != nil {
		return err
	}
	dbDir, err := flags.GetString("history-dir")
	if err != nil {
		return err
	}

	// Validate flags before opening the database.
	if top < 0 {
		return config.ErrInvalidTop
	}
	if jsonOutput && markdownOutput {
		return config.ErrConflictingReportFormats
	}
	if dbDir == "" {
		dbDir = config.XDGDataDir()
	}

	opts := database.DefaultOptions()
	opts.CreateIfNotExists = false
	db, err := database.Open(dbDir, opts)
	if err != nil {
		return fmt.Errorf("no run history found (run 'urltally scan' first): %w", err)
	}
	defer db.Close()

	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	if listRuns {
		return listRunHistory(ctx, out, db, top)
	}

	comparison, err := compareRuns(ctx, db, withRunID, top)
	if err != nil {
		return err
	}

	if _, err := newWriter(out, jsonOutput, markdownOutput).WriteComparison(comparison); err != nil {
		return fmt.Errorf("failed to write comparison: %w", err)
	}
	return nil
}

// listRunHistory prints up to limit recorded runs, newest first.
func listRunHistory(ctx context.Context, out io.Writer, db *database.HistoryDB, limit int) error {
	runs, err := db.ListRuns(ctx, limit)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	if len(runs) == 0 {
		fmt.Fprintln(out, "No runs recorded.")
		fmt.Fprintln(out, "\nUse 'urltally scan <file>' to record a run.")
		return nil
	}

	total, err := db.CountRuns(ctx)
	if err != nil {
		return fmt.Errorf("failed to count runs: %w", err)
	}

	fmt.Fprintf(out, "Run history (%d of %d runs):\n\n", len(runs), total)
	fmt.Fprintf(out, "  %-36s  %-19s  %8s  %7s  %7s  %s\n",
		"Run ID", "Date", "URLs", "Domains", "Paths", "Sources")
	fmt.Fprintln(out, "  "+strings.Repeat("-", 100))

	for _, run := range runs {
		fmt.Fprintf(out, "  %-36s  %-19s  %8d  %7d  %7d  %s\n",
			run.RunID,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Total,
			run.DistinctDomains,
			run.DistinctPaths,
			strings.Join(run.Sources, ", "),
		)
	}

	fmt.Fprintln(out, "\nUse 'urltally compare --with-run-id <id>' to compare the latest run with a specific run.")
	return nil
}

// compareRuns compares the latest run with withRunID, or with the run
// before it when withRunID is empty.
func compareRuns(ctx context.Context, db *database.HistoryDB, withRunID string, limit int) (*model.Comparison, error) {
	runs, err := db.GetLatestRuns(ctx, 2)
	if err != nil {
		return nil, fmt.Errorf("failed to get run history: %w", err)
	}
	if len(runs) == 0 {
		return nil, errors.New("no run history found (run 'urltally scan' first)")
	}

	target := runs[0]

	var base *model.ScanReport
	if withRunID != "" {
		base, err = db.GetRunByID(ctx, withRunID)
		if err != nil {
			return nil, fmt.Errorf("failed to get run %s: %w", withRunID, err)
		}
		if base == nil {
			return nil, fmt.Errorf("run %s not found", withRunID)
		}
		if base.ID == target.ID {
			return nil, fmt.Errorf("run %s is the latest run; choose an earlier run", withRunID)
		}
	} else {
		if len(runs) < 2 {
			return nil, fmt.Errorf("at least 2 runs are required for comparison (found %d)", len(runs))
		}
		base = runs[1]
	}

	return model.Compare(base, target, limit), nil
}
