package report

import (
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/nao1215/markdown"
	"github.com/pagemine/pagemine/internal/model"
)

// MarkdownWriter outputs reports in Markdown format.
// This format is designed for documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write renders the report in Markdown format.
func (w *MarkdownWriter) Write(report *model.CrawlReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	w.writeRecords(md, report)
	w.writeErrors(md, report)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the crawl summary table.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.CrawlReport) {
	md.H1("Crawl Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Seed URL", "`" + report.SeedURL + "`"},
			{"Started", report.StartedAt.Format("2006-01-02 15:04:05 MST")},
			{"Elapsed", report.Elapsed.Round(time.Millisecond).String()},
			{"Pages Attempted", strconv.Itoa(report.PagesAttempted)},
			{"Pages Succeeded", strconv.Itoa(report.PagesSucceeded)},
			{"Pages Failed", strconv.Itoa(report.PagesFailed)},
			{"Status", w.getStatusText(report)},
		},
	})
	md.PlainText("")

	switch {
	case report.Status == model.StatusFailed:
		md.Cautionf("Crawl failed: %s", report.Error)
		md.PlainText("")
	case report.Status == model.StatusCancelled:
		md.Warning("Crawl was cancelled before completion; results below are partial.")
		md.PlainText("")
	case report.PagesFailed > 0:
		md.Warningf("%d page(s) could not be processed; see the errors section.", report.PagesFailed)
		md.PlainText("")
	}
}

// getStatusText returns the status text based on report state.
func (w *MarkdownWriter) getStatusText(report *model.CrawlReport) string {
	switch report.Status {
	case model.StatusCancelled:
		return "⚠️ Cancelled (partial results)"
	case model.StatusFailed:
		return "❌ Failed"
	default:
		return "✅ Complete"
	}
}

// writeRecords writes one table with all extracted field values.
func (w *MarkdownWriter) writeRecords(md *markdown.Markdown, report *model.CrawlReport) {
	md.H2("Extracted Data")
	md.PlainText("")

	if len(report.Records) == 0 {
		md.PlainText("No pages extracted.")
		md.PlainText("")
		return
	}

	headers := append([]string{"URL", "Depth"}, report.FieldNames...)

	rows := make([][]string, len(report.Records))
	for i, rec := range report.Records {
		row := []string{rec.URL, strconv.Itoa(rec.Depth)}
		for _, name := range report.FieldNames {
			cell := strings.Join(rec.Value(name), multiValueSeparator)
			if cell == "" {
				cell = "-"
			}
			row = append(row, truncateString(cell, 60))
		}
		rows[i] = row
	}

	md.Table(markdown.TableSet{
		Header: headers,
		Rows:   rows,
	})
	md.PlainText("")
}

// writeErrors writes the per-page failure table.
func (w *MarkdownWriter) writeErrors(md *markdown.Markdown, report *model.CrawlReport) {
	if len(report.Errors) == 0 {
		return
	}

	md.H2("Errors")
	md.PlainText("")

	rows := make([][]string, len(report.Errors))
	for i, e := range report.Errors {
		rows[i] = []string{
			e.URL,
			strconv.Itoa(e.Depth),
			string(e.Kind),
			truncateString(e.Detail, 60),
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"URL", "Depth", "Kind", "Detail"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [PageMine](https://github.com/pagemine/pagemine)*")
}

// truncateString truncates a string to maxLen characters with ellipsis.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
