package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/nao1215/urltally/internal/config"
	"github.com/nao1215/urltally/internal/database"
	"github.com/nao1215/urltally/internal/log"
	"github.com/nao1215/urltally/internal/model"
	"github.com/nao1215/urltally/internal/pipeline"
	"github.com/nao1215/urltally/internal/report"
	"github.com/spf13/cobra"
)

// NewScanCmd creates the scan command.
func NewScanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan [file|-]...",
		Short: "Count the URLs found in files or standard input",
		Long: `Scan reads every source byte by byte and counts each http:// or https://
URL it finds, by domain and by path. "-" reads standard input.

Sources are scanned concurrently and their counts are summed into one
report. A source that cannot be read is reported and skipped.

Examples:
  # Count URLs in a log file
  urltally scan access.log

  # Read from a pipe and keep the ten most frequent entries
  curl -s https://example.com | urltally scan -n 10 -

  # Add a section grouping domains by registrable domain
  urltally scan --sites *.html

  # Write a Markdown report to a file
  urltally scan -m -o reports/today.md access.log

Configuration file (.urltally) example:
  top: 20
  format: markdown
  sites: true
  batch: 8`,
		Args: cobra.ArbitraryArgs,
		RunE: runScanCmd,
	}

	cmd.Flags().IntP("top", "n", config.DefaultTop,
		"Number of entries per section (0 lists all)")
	cmd.Flags().BoolP("sites", "s", false,
		"Add a section ranking registrable domains (eTLD+1)")

	// Batch scanning flags
	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize,
		"Number of sources scanned concurrently")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .urltally in current or home directory)")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")

	// History flags
	cmd.Flags().Bool("no-history", false,
		"Do not record this run in the history database")
	cmd.Flags().String("history-dir", "",
		"Directory of the history database (default: XDG data directory)")

	return cmd
}

// runScanCmd executes the scan command.
func runScanCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := newLogger(cmd, cfg.Verbose)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runScan(ctx, cmd, cfg, logger)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// newLogger builds the command logger on the command's error stream.
func newLogger(cmd *cobra.Command, verbose bool) *slog.Logger {
	jsonLogs, err := cmd.Flags().GetBool("log-json")
	if err != nil {
		jsonLogs, _ = cmd.Root().PersistentFlags().GetBool("log-json") //nolint:errcheck // flag is optional
	}
	if jsonLogs {
		return log.NewJSONLogger(cmd.ErrOrStderr(), verbose)
	}
	return log.NewLogger(cmd.ErrOrStderr(), verbose)
}

// buildConfig creates a Config from cobra command flags and the
// configuration file. Flags set on the command line win over the file.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	flags := cmd.Flags()

	var err error

	cfg.Top, err = flags.GetInt("top")
	if err != nil {
		return nil, err
	}

	cfg.Sites, err = flags.GetBool("sites")
	if err != nil {
		return nil, err
	}

	cfg.BatchSize, err = flags.GetInt("batch")
	if err != nil {
		return nil, err
	}

	cfg.JSONReport, err = flags.GetBool("json")
	if err != nil {
		return nil, err
	}

	cfg.MarkdownReport, err = flags.GetBool("markdown")
	if err != nil {
		return nil, err
	}

	cfg.ReportFile, err = flags.GetString("output")
	if err != nil {
		return nil, err
	}

	noHistory, err := flags.GetBool("no-history")
	if err != nil {
		return nil, err
	}
	cfg.SaveToDB = !noHistory

	cfg.ConfigFilePath, err = flags.GetString("config")
	if err != nil {
		return nil, err
	}

	// An explicitly named configuration file must exist; the default
	// locations are optional.
	configPath := config.FindConfigFile(cfg.ConfigFilePath)
	switch {
	case configPath != "":
		file, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		cfg.ApplyFile(file, flags.Changed)
	case cfg.ConfigFilePath != "":
		return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, cfg.ConfigFilePath)
	}

	if flags.Changed("history-dir") {
		cfg.DBDir, err = flags.GetString("history-dir")
		if err != nil {
			return nil, err
		}
	}

	cfg.Verbose = getVerboseFlag(cmd)
	cfg.Sources = args

	return cfg, nil
}

// runScan scans every source, merges the results and writes the report.
func runScan(ctx context.Context, cmd *cobra.Command, cfg *config.Config, logger *slog.Logger) error {
	logger.Info("starting scan",
		"sources", cfg.Sources,
		"batchSize", cfg.BatchSize,
		"sites", cfg.Sites,
		"saveToDB", cfg.SaveToDB,
	)

	start := time.Now()

	bp := pipeline.NewBatchProcessor(
		func() *pipeline.Pipeline {
			return createPipeline(cmd.InOrStdin(), logger, cfg)
		},
		pipeline.WithConcurrency(cfg.BatchSize),
		pipeline.WithBatchLogger(logger),
	)

	reports, err := bp.ProcessBatch(ctx, cfg.Sources)
	if err != nil {
		return fmt.Errorf("scan interrupted: %w", err)
	}

	merged := model.MergeReports(reports)
	merged.Duration = time.Since(start)

	for _, r := range reports {
		if r.Failed() {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: skipped %s: %s\n", r.Sources[0], r.ErrorMessage)
		}
	}
	if len(merged.FailedSources) == len(cfg.Sources) {
		if merged.Error != nil {
			return fmt.Errorf("no source could be scanned: %w", merged.Error)
		}
		return errors.New("no source could be scanned")
	}

	logger.Info("scan complete",
		"total", merged.Tally.Total,
		"bytes", merged.BytesScanned,
		"peakLive", merged.PeakLive,
		"elapsed", merged.Duration,
	)

	if cfg.SaveToDB {
		// The report is still useful without history.
		if err := saveRun(ctx, cfg.DBDir, merged, logger); err != nil {
			logger.Warn("failed to record run", "error", err)
		}
	}

	return outputReport(cmd.OutOrStdout(), cfg, model.NewSummary(merged, cfg.Top))
}

// createPipeline creates the scan pipeline for one source. Standard input
// is read from in.
func createPipeline(in io.Reader, logger *slog.Logger, cfg *config.Config) *pipeline.Pipeline {
	pipelineOpts := []pipeline.Option{
		pipeline.WithLogger(logger),
		pipeline.WithContinueOnError(true),
	}

	open := func(source string) (io.ReadCloser, error) {
		if source == pipeline.StdinSource {
			return io.NopCloser(in), nil
		}
		return pipeline.OpenSource(source)
	}

	return pipeline.DefaultPipeline(pipelineOpts,
		pipeline.WithPipelineBufferSize(cfg.BufferSize),
		pipeline.WithPipelineSites(cfg.Sites),
		pipeline.WithPipelineOpener(open),
	)
}

// saveRun records the merged report in the history database.
func saveRun(ctx context.Context, dbDir string, scanReport *model.ScanReport, logger *slog.Logger) error {
	db, err := database.Open(dbDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	id, err := db.SaveRun(ctx, scanReport)
	if err != nil {
		return err
	}

	logger.Info("run recorded", "id", id, "runID", scanReport.ID, "db", db.Path())
	return nil
}

// outputReport writes the summary in the requested format to the report
// file, or to stdout when no file was given.
func outputReport(stdout io.Writer, cfg *config.Config, summary *model.Summary) error {
	output := stdout
	if cfg.ReportFile != "" {
		f, err := createReportFile(cfg.ReportFile)
		if err != nil {
			return err
		}
		defer f.Close()
		output = f
	}

	if _, err := newWriter(output, cfg.JSONReport, cfg.MarkdownReport).Write(summary); err != nil {
		if isBrokenPipe(err) {
			// The reader went away, e.g. "urltally scan x | head".
			return nil
		}
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// isBrokenPipe reports whether err means the consumer closed the output.
func isBrokenPipe(err error) bool {
	return errors.Is(err, syscall.EPIPE) || errors.Is(err, io.ErrClosedPipe)
}

// createReportFile creates or truncates path with owner-only permissions,
// creating parent directories as needed.
func createReportFile(path string) (*os.File, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	f, err := os.OpenFile(filepath.Clean(path), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, nil
}

// newWriter selects the report writer for the output format.
func newWriter(output io.Writer, jsonOutput, markdownOutput bool) report.Writer {
	switch {
	case jsonOutput:
		return report.NewFullJSONWriter(output, getVersion(), report.WithPrettyPrint())
	case markdownOutput:
		return report.NewMarkdownWriter(output)
	default:
		return report.NewTextWriter(output)
	}
}
