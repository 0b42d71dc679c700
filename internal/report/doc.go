// Package report renders scan summaries and run comparisons.
//
// This package contains writers for different output formats:
//   - TextWriter: the plain "total urls" layout, one "count key" line per entry
//   - MarkdownWriter: GitHub Flavored Markdown with tables and a pie chart
//   - JSONWriter and FullJSONWriter: structured output for other tools
//
// Writers only format. Ranking and limits are already applied in the
// model.Summary or model.Comparison they receive.
package report
