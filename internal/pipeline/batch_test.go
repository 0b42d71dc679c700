package pipeline

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nao1215/urltally/internal/model"
)

// memOpener serves sources from an in-memory map.
func memOpener(files map[string]string) Opener {
	return func(source string) (io.ReadCloser, error) {
		content, ok := files[source]
		if !ok {
			return nil, errors.New("no such source")
		}
		return io.NopCloser(strings.NewReader(content)), nil
	}
}

// TestBatchProcessorNew tests the BatchProcessor constructor.
func TestBatchProcessorNew(t *testing.T) {
	t.Parallel()

	t.Run("creates processor with defaults", func(t *testing.T) {
		t.Parallel()

		bp := NewBatchProcessor(func() *Pipeline { return New() })

		if bp.concurrency != DefaultConcurrency {
			t.Errorf("expected default concurrency %d, got %d", DefaultConcurrency, bp.concurrency)
		}
		if bp.logger == nil {
			t.Error("expected non-nil logger")
		}
	})

	t.Run("applies WithConcurrency option", func(t *testing.T) {
		t.Parallel()

		bp := NewBatchProcessor(func() *Pipeline { return New() }, WithConcurrency(8))

		if bp.concurrency != 8 {
			t.Errorf("expected concurrency 8, got %d", bp.concurrency)
		}
	})

	t.Run("ignores non-positive concurrency", func(t *testing.T) {
		t.Parallel()

		bp := NewBatchProcessor(func() *Pipeline { return New() }, WithConcurrency(0), WithBatchLogger(nil))

		if bp.concurrency != DefaultConcurrency {
			t.Errorf("expected concurrency %d, got %d", DefaultConcurrency, bp.concurrency)
		}
		if bp.logger == nil {
			t.Error("expected non-nil logger")
		}
	})
}

// TestBatchProcessorProcessBatch tests batch processing.
func TestBatchProcessorProcessBatch(t *testing.T) {
	t.Parallel()

	t.Run("returns reports in source order", func(t *testing.T) {
		t.Parallel()

		files := map[string]string{
			"a.log": "http://a.com/1 http://a.com/2",
			"b.log": "https://b.org",
			"c.log": "nothing here",
		}
		factory := func() *Pipeline {
			return DefaultPipeline(nil, WithPipelineOpener(memOpener(files)))
		}

		sources := []string{"a.log", "b.log", "c.log"}
		reports, err := NewBatchProcessor(factory, WithConcurrency(2)).ProcessBatch(context.Background(), sources)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(reports) != 3 {
			t.Fatalf("expected 3 reports, got %d", len(reports))
		}

		wantTotals := []uint64{2, 1, 0}
		for i, r := range reports {
			if r.Sources[0] != sources[i] {
				t.Errorf("report %d: expected source %q, got %q", i, sources[i], r.Sources[0])
			}
			if r.Tally.Total != wantTotals[i] {
				t.Errorf("report %d: expected total %d, got %d", i, wantTotals[i], r.Tally.Total)
			}
		}
	})

	t.Run("batch equals the merge of sequential scans", func(t *testing.T) {
		t.Parallel()

		files := map[string]string{}
		sources := make([]string, 0, 20)
		for i := range 20 {
			name := string(rune('a'+i)) + ".log"
			files[name] = strings.Repeat("x http://"+name+"/p y https://shared.example.com\n", i+1)
			sources = append(sources, name)
		}
		factory := func() *Pipeline {
			return DefaultPipeline(nil, WithPipelineOpener(memOpener(files)), WithPipelineSites(true))
		}

		reports, err := NewBatchProcessor(factory, WithConcurrency(5)).ProcessBatch(context.Background(), sources)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		merged := model.MergeReports(reports)

		sequential := model.NewScanReport(sources...)
		if err := factory().Execute(context.Background(), sequential); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !merged.Tally.Equal(sequential.Tally) {
			t.Errorf("batch tally %+v differs from sequential tally %+v", merged.Tally, sequential.Tally)
		}
		if merged.Sites["example.com"] != sequential.Sites["example.com"] {
			t.Errorf("expected site counts to agree, got %d and %d",
				merged.Sites["example.com"], sequential.Sites["example.com"])
		}
	})

	t.Run("failed source does not stop the batch", func(t *testing.T) {
		t.Parallel()

		files := map[string]string{"ok.log": "http://ok.com"}
		factory := func() *Pipeline {
			return DefaultPipeline(nil, WithPipelineOpener(memOpener(files)))
		}

		reports, err := NewBatchProcessor(factory).ProcessBatch(context.Background(), []string{"missing.log", "ok.log"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !reports[0].Failed() {
			t.Error("expected missing source to fail")
		}
		if reports[1].Failed() || reports[1].Tally.Total != 1 {
			t.Errorf("expected ok source to succeed with 1 url, got %+v", reports[1])
		}
	})

	t.Run("respects concurrency limit", func(t *testing.T) {
		t.Parallel()

		var current, peak atomic.Int32
		factory := func() *Pipeline {
			p := New()
			p.AddStep(&mockStep{
				name: "slow",
				doFunc: func(_ context.Context, _ *model.ScanReport) error {
					n := current.Add(1)
					for {
						old := peak.Load()
						if n <= old || peak.CompareAndSwap(old, n) {
							break
						}
					}
					time.Sleep(10 * time.Millisecond)
					current.Add(-1)
					return nil
				},
			})
			return p
		}

		sources := make([]string, 12)
		for i := range sources {
			sources[i] = "src"
		}
		if _, err := NewBatchProcessor(factory, WithConcurrency(3)).ProcessBatch(context.Background(), sources); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if peak.Load() > 3 {
			t.Errorf("expected at most 3 concurrent scans, got %d", peak.Load())
		}
	})

	t.Run("returns error when cancelled", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := NewBatchProcessor(func() *Pipeline { return New() }).ProcessBatch(ctx, []string{"a", "b"})
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})

	t.Run("empty batch", func(t *testing.T) {
		t.Parallel()

		reports, err := NewBatchProcessor(func() *Pipeline { return New() }).ProcessBatch(context.Background(), nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(reports) != 0 {
			t.Errorf("expected no reports, got %d", len(reports))
		}
	})
}

// TestBatchProcessorProcessBatchWithCallback tests streaming results.
func TestBatchProcessorProcessBatchWithCallback(t *testing.T) {
	t.Parallel()

	files := map[string]string{"a": "http://a.com", "b": "http://b.com http://b.com"}
	factory := func() *Pipeline {
		return DefaultPipeline(nil, WithPipelineOpener(memOpener(files)))
	}

	var mu sync.Mutex
	seen := make(map[int]uint64)

	err := NewBatchProcessor(factory).ProcessBatchWithCallback(context.Background(), []string{"a", "b"},
		func(report *model.ScanReport, index int) {
			mu.Lock()
			defer mu.Unlock()
			seen[index] = report.Tally.Total
		},
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(seen) != 2 || seen[0] != 1 || seen[1] != 2 {
		t.Errorf("unexpected callback results: %v", seen)
	}
}
