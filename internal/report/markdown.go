package report

import (
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/nao1215/urltally/internal/model"
)

// maxPieSlices is the number of domains drawn in the pie chart. The rest
// of the ranking is still listed in the tables.
const maxPieSlices = 10

// MarkdownWriter outputs reports in GitHub Flavored Markdown.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the summary.
func (w *MarkdownWriter) Write(summary *model.Summary) (int, error) {
	md := markdown.NewMarkdown(w.output)
	title := cases.Title(language.English)

	md.H1("URL Tally Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Run ID", "`" + summary.ID + "`"},
			{"Sources", codeList(summary.Sources)},
			{"Scan Date", summary.DateScanned.Format("2006-01-02 15:04:05 MST")},
			{"Total URLs", strconv.FormatUint(summary.Total, 10)},
			{"Distinct Domains", strconv.Itoa(summary.DistinctDomains)},
			{"Distinct Paths", strconv.Itoa(summary.DistinctPaths)},
			{"Entries Per Section", limitText(summary.Limit)},
		},
	})
	md.PlainText("")

	if len(summary.FailedSources) > 0 {
		md.Warningf("%d source(s) could not be scanned: %s",
			len(summary.FailedSources), strings.Join(summary.FailedSources, ", "))
		md.PlainText("")
	}

	if !summary.HasMatches() {
		md.Tip("No URLs found.")
		md.PlainText("")
	} else {
		w.writePieChart(md, summary.TopDomains)
	}

	w.writeEntries(md, title.String("top domains"), "Domain", summary.TopDomains)
	w.writeEntries(md, title.String("top paths"), "Path", summary.TopPaths)
	if summary.TopSites != nil {
		w.writeEntries(md, title.String("top sites"), "Site", summary.TopSites)
	}

	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// WriteComparison outputs the differences between two runs.
func (w *MarkdownWriter) WriteComparison(c *model.Comparison) (int, error) {
	md := markdown.NewMarkdown(w.output)
	title := cases.Title(language.English)

	md.H1("URL Tally Comparison")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"", "Base", "Target"},
		Rows: [][]string{
			{"Run ID", "`" + c.Base.ID + "`", "`" + c.Target.ID + "`"},
			{"Sources", codeList(c.Base.Sources), codeList(c.Target.Sources)},
			{"Scan Date", c.Base.DateScanned.Format(time.DateTime), c.Target.DateScanned.Format(time.DateTime)},
			{"Total URLs", strconv.FormatUint(c.Base.Total, 10), strconv.FormatUint(c.Target.Total, 10)},
		},
	})
	md.PlainText("")

	if !c.HasChanges() {
		md.Note("No domain changed between the two runs.")
		md.PlainText("")
	} else if len(c.NewDomains) > 0 {
		md.Importantf("%d new domain(s) appeared since the base run.", len(c.NewDomains))
		md.PlainText("")
	}

	w.writeEntries(md, title.String("new domains"), "Domain", c.NewDomains)
	w.writeEntries(md, title.String("vanished domains"), "Domain", c.VanishedDomains)

	md.H2(title.String("changed domains"))
	md.PlainText("")
	if len(c.ChangedDomains) == 0 {
		md.PlainText("None.")
		md.PlainText("")
	} else {
		rows := make([][]string, len(c.ChangedDomains))
		for i, d := range c.ChangedDomains {
			rows[i] = []string{
				"`" + d.Key + "`",
				strconv.FormatUint(d.Before, 10),
				strconv.FormatUint(d.After, 10),
				signed(d.Change()),
			}
		}
		md.Table(markdown.TableSet{
			Header: []string{"Domain", "Before", "After", "Change"},
			Rows:   rows,
		})
		md.PlainText("")
	}

	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writePieChart writes a mermaid pie chart of the leading domains.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, entries []model.Entry) {
	if len(entries) == 0 {
		return
	}

	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Domain Distribution"),
		piechart.WithShowData(true),
	)

	for i, e := range entries {
		if i == maxPieSlices {
			break
		}
		chart.LabelAndIntValue(e.Key, e.Count)
	}

	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeEntries writes a ranked section as a table.
func (w *MarkdownWriter) writeEntries(md *markdown.Markdown, header, keyName string, entries []model.Entry) {
	md.H2(header)
	md.PlainText("")

	if len(entries) == 0 {
		md.PlainText("None.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(entries))
	for i, e := range entries {
		rows[i] = []string{
			strconv.Itoa(i + 1),
			strconv.FormatUint(e.Count, 10),
			"`" + e.Key + "`",
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"Rank", "Count", keyName},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [urltally](https://github.com/nao1215/urltally)*")
}

// codeList renders items as comma separated inline code.
func codeList(items []string) string {
	if len(items) == 0 {
		return "-"
	}
	quoted := make([]string, len(items))
	for i, s := range items {
		quoted[i] = "`" + s + "`"
	}
	return strings.Join(quoted, ", ")
}

// limitText describes a section limit.
func limitText(limit int) string {
	if limit <= 0 {
		return "all"
	}
	return strconv.Itoa(limit)
}
