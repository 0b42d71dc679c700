package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/nao1215/urltally/internal/model"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency is the number of sources scanned at once when
// WithConcurrency is not given.
const DefaultConcurrency = 4

// BatchProcessor scans many sources concurrently, one pipeline and one
// report per source.
type BatchProcessor struct {
	// pipelineFactory creates a fresh pipeline for each source so that no
	// step state is shared between goroutines.
	pipelineFactory func() *Pipeline

	concurrency int

	logger *slog.Logger
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets the logger. A nil logger selects slog.Default().
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency sets the maximum number of sources scanned at once.
// Non-positive values are ignored.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewBatchProcessor creates a BatchProcessor that calls pipelineFactory
// once per source.
func NewBatchProcessor(pipelineFactory func() *Pipeline, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		pipelineFactory: pipelineFactory,
		concurrency:     DefaultConcurrency,
	}

	for _, opt := range opts {
		opt(bp)
	}

	if bp.logger == nil {
		bp.logger = slog.Default()
	}

	return bp
}

// ProcessBatch scans sources concurrently and returns one report per
// source, in the order of sources.
//
// A failing source does not stop the others: its error is recorded on its
// report. The returned error is non-nil only when ctx was cancelled, in
// which case sources that never started have a nil report.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, sources []string) ([]*model.ScanReport, error) {
	bp.logger.Info("starting batch",
		"sources", len(sources),
		"concurrency", bp.concurrency,
	)

	start := time.Now()

	// Each goroutine writes only its own index.
	results := make([]*model.ScanReport, len(sources))

	err := bp.run(ctx, sources, func(report *model.ScanReport, index int) {
		results[index] = report
	})

	bp.logger.Info("batch complete",
		"sources", len(sources),
		"elapsed", time.Since(start),
	)

	return results, err
}

// ProcessBatchWithCallback scans sources concurrently and calls callback
// with each report as soon as its source is done, together with the index
// of the source. The callback runs on the scanning goroutine and must be
// safe for concurrent use.
func (bp *BatchProcessor) ProcessBatchWithCallback(
	ctx context.Context,
	sources []string,
	callback func(report *model.ScanReport, index int),
) error {
	return bp.run(ctx, sources, callback)
}

func (bp *BatchProcessor) run(
	ctx context.Context,
	sources []string,
	done func(report *model.ScanReport, index int),
) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, source := range sources {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			bp.logger.Debug("scanning source",
				"source", source,
				"index", i+1,
				"total", len(sources),
			)

			report := model.NewScanReport(source)
			if err := bp.pipelineFactory().Execute(gctx, report); err != nil {
				// Recorded on the report; the other sources keep going.
				bp.logger.Warn("source failed",
					"source", source,
					"error", err,
				)
			}

			done(report, i)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}
