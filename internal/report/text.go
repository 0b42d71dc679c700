package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/nao1215/urltally/internal/model"
)

// TextWriter outputs the plain text layout:
//
//	total urls 2, domains 1, paths 2
//
//	top domains
//	2 foo.com
//
//	top paths
//	1 /bar
//	1 /baz
//
// A "top sites" section follows when site grouping was requested.
type TextWriter struct {
	baseWriter
}

// NewTextWriter creates a TextWriter that outputs to the given writer.
func NewTextWriter(output io.Writer) *TextWriter {
	return &TextWriter{baseWriter: newBaseWriter(output)}
}

// Write outputs the summary.
func (w *TextWriter) Write(summary *model.Summary) (int, error) {
	var sb strings.Builder

	fmt.Fprintf(&sb, "total urls %d, domains %d, paths %d\n",
		summary.Total, summary.DistinctDomains, summary.DistinctPaths)

	writeEntries(&sb, "top domains", summary.TopDomains)
	writeEntries(&sb, "top paths", summary.TopPaths)
	if summary.TopSites != nil {
		writeEntries(&sb, "top sites", summary.TopSites)
	}

	return io.WriteString(w.output, sb.String())
}

// WriteComparison outputs the differences between two runs.
func (w *TextWriter) WriteComparison(c *model.Comparison) (int, error) {
	var sb strings.Builder

	fmt.Fprintf(&sb, "comparing %s (%s) with %s (%s)\n",
		c.Base.ID, c.Base.DateScanned.Format(time.DateTime),
		c.Target.ID, c.Target.DateScanned.Format(time.DateTime))
	fmt.Fprintf(&sb, "total urls %d -> %d (%s)\n",
		c.Base.Total, c.Target.Total, signed(int64(c.Target.Total)-int64(c.Base.Total))) //nolint:gosec // counts never approach 2^63

	writeEntries(&sb, "new domains", c.NewDomains)
	writeEntries(&sb, "vanished domains", c.VanishedDomains)

	sb.WriteString("\nchanged domains\n")
	for _, d := range c.ChangedDomains {
		fmt.Fprintf(&sb, "%s %s (%d -> %d)\n", signed(d.Change()), d.Key, d.Before, d.After)
	}

	return io.WriteString(w.output, sb.String())
}

// writeEntries writes a blank line, the section header and one
// "count key" line per entry.
func writeEntries(sb *strings.Builder, header string, entries []model.Entry) {
	sb.WriteString("\n")
	sb.WriteString(header)
	sb.WriteString("\n")
	for _, e := range entries {
		sb.WriteString(strconv.FormatUint(e.Count, 10))
		sb.WriteString(" ")
		sb.WriteString(e.Key)
		sb.WriteString("\n")
	}
}

// signed formats v with an explicit sign.
func signed(v int64) string {
	if v > 0 {
		return "+" + strconv.FormatInt(v, 10)
	}
	return strconv.FormatInt(v, 10)
}
