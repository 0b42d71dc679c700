package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/nao1215/urltally/internal/model"
	"github.com/nao1215/urltally/internal/scanner"
	"github.com/nao1215/urltally/internal/sites"
)

// StdinSource is the source name that denotes standard input.
const StdinSource = "-"

// Opener opens a source for reading.
type Opener func(source string) (io.ReadCloser, error)

// OpenSource opens a file by path, or standard input for StdinSource.
// Standard input is never closed by the returned ReadCloser.
func OpenSource(source string) (io.ReadCloser, error) {
	if source == StdinSource {
		return io.NopCloser(os.Stdin), nil
	}
	return os.Open(filepath.Clean(source))
}

// ScanStep feeds every source of a report through a stream scanner.
//
// Each source is scanned into a private Tally that is merged into the
// report only once the source has been read to the end. A source that
// fails halfway contributes nothing, so the totals never depend on how far
// a broken read got.
type ScanStep struct {
	open       Opener
	bufferSize int
	logger     *slog.Logger
}

// ScanStepOption configures a ScanStep.
type ScanStepOption func(*ScanStep)

// WithScanOpener replaces OpenSource, mostly for tests.
func WithScanOpener(open Opener) ScanStepOption {
	return func(s *ScanStep) {
		if open != nil {
			s.open = open
		}
	}
}

// WithScanBufferSize sets the read buffer size of the scanner.
func WithScanBufferSize(n int) ScanStepOption {
	return func(s *ScanStep) {
		if n > 0 {
			s.bufferSize = n
		}
	}
}

// WithScanLogger sets a custom logger for the scan step.
func WithScanLogger(logger *slog.Logger) ScanStepOption {
	return func(s *ScanStep) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewScanStep creates a scan step.
func NewScanStep(opts ...ScanStepOption) *ScanStep {
	s := &ScanStep{
		open:       OpenSource,
		bufferSize: scanner.DefaultBufferSize,
		logger:     slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *ScanStep) Name() string {
	return "scan"
}

// Do scans every source of report in order and stops at the first failure.
func (s *ScanStep) Do(ctx context.Context, report *model.ScanReport) error {
	for _, source := range report.Sources {
		if err := s.scanSource(ctx, report, source); err != nil {
			return err
		}
	}
	return nil
}

func (s *ScanStep) scanSource(ctx context.Context, report *model.ScanReport, source string) error {
	start := time.Now()

	r, err := s.open(source)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", source, err)
	}
	defer func() {
		if cerr := r.Close(); cerr != nil {
			s.logger.Debug("failed to close source", "source", source, "error", cerr)
		}
	}()

	sc := scanner.New(scanner.WithBufferSize(s.bufferSize))
	n, err := sc.ScanReader(ctx, r)

	report.BytesScanned += n
	report.Duration += time.Since(start)
	report.PeakLive = max(report.PeakLive, sc.PeakLive())

	if err != nil {
		return fmt.Errorf("failed to read %s: %w", source, err)
	}

	report.Tally.Merge(sc.Tally())

	s.logger.Debug("source scanned",
		"source", source,
		"bytes", n,
		"urls", sc.Tally().Total,
		"peak_live", sc.PeakLive(),
	)

	return nil
}

// SitesStep groups the report's domains by registrable domain.
type SitesStep struct{}

// NewSitesStep creates a site grouping step.
func NewSitesStep() *SitesStep {
	return &SitesStep{}
}

// Name returns the step name.
func (s *SitesStep) Name() string {
	return "sites"
}

// Do fills report.Sites from report.Tally.
func (s *SitesStep) Do(_ context.Context, report *model.ScanReport) error {
	report.Sites = sites.Group(report.Tally.Domains)
	return nil
}

// DefaultPipelineConfig holds configuration for the default pipeline.
type DefaultPipelineConfig struct {
	// BufferSize is the scanner read buffer size.
	BufferSize int

	// Sites enables grouping domains by registrable domain.
	Sites bool

	// Opener opens sources. Nil selects OpenSource.
	Opener Opener
}

// DefaultPipelineOption configures a DefaultPipelineConfig.
type DefaultPipelineOption func(*DefaultPipelineConfig)

// WithPipelineBufferSize sets the scanner read buffer size.
func WithPipelineBufferSize(n int) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.BufferSize = n
	}
}

// WithPipelineSites enables or disables site grouping.
func WithPipelineSites(enabled bool) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.Sites = enabled
	}
}

// WithPipelineOpener sets how sources are opened.
func WithPipelineOpener(open Opener) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.Opener = open
	}
}

// DefaultPipeline creates the standard pipeline: scan, then optionally
// group by site.
//
// The first parameter accepts pipeline options (WithLogger, etc).
// The variadic parameter accepts pipeline config options.
func DefaultPipeline(pipelineOpts []Option, configOpts ...DefaultPipelineOption) *Pipeline {
	p := New(pipelineOpts...)

	cfg := &DefaultPipelineConfig{
		BufferSize: scanner.DefaultBufferSize,
	}
	for _, opt := range configOpts {
		opt(cfg)
	}

	p.AddStep(NewScanStep(
		WithScanBufferSize(cfg.BufferSize),
		WithScanOpener(cfg.Opener),
		WithScanLogger(p.logger),
	))

	if cfg.Sites {
		p.AddStep(NewSitesStep())
	}

	return p
}
