package report

import (
	"io"

	"github.com/nao1215/urltally/internal/model"
)

// Writer defines the interface for report output.
type Writer interface {
	// Write outputs a scan summary.
	// Returns the number of bytes written and any error encountered.
	Write(summary *model.Summary) (int, error)

	// WriteComparison outputs the differences between two runs.
	WriteComparison(comparison *model.Comparison) (int, error)
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}
