package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/pagemine/pagemine/internal/model"
)

// SimpleWriter outputs human-readable text reports for terminal display.
//
// Design decision: We use plain text with ASCII formatting rather than
// ANSI colors by default because:
// 1. It works in all terminals without compatibility issues
// 2. It's easier to pipe to files or other tools
// 3. Color can be added as an option later if needed
type SimpleWriter struct {
	baseWriter

	// verbose enables per-error detail in the output.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose enables verbose output with per-error details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write renders the report in human-readable format.
func (w *SimpleWriter) Write(report *model.CrawlReport) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, report)
	w.writeRecords(&sb, report)
	w.writeErrors(&sb, report)

	return io.WriteString(w.output, sb.String())
}

// writeHeader writes the crawl summary block.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, report *model.CrawlReport) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                         PAGEMINE CRAWL REPORT\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("Seed URL:      %s\n", report.SeedURL))
	sb.WriteString(fmt.Sprintf("Started:       %s\n", report.StartedAt.Format("2006-01-02 15:04:05 MST")))
	sb.WriteString(fmt.Sprintf("Elapsed:       %s\n", report.Elapsed.Round(time.Millisecond)))
	sb.WriteString(fmt.Sprintf("Pages:         %d attempted, %d succeeded, %d failed\n",
		report.PagesAttempted, report.PagesSucceeded, report.PagesFailed))

	switch report.Status {
	case model.StatusCancelled:
		sb.WriteString("Status:        CANCELLED (partial results)\n")
	case model.StatusFailed:
		sb.WriteString(fmt.Sprintf("Status:        FAILED - %s\n", report.Error))
	default:
		sb.WriteString("Status:        Complete\n")
	}

	sb.WriteString("\n")
}

// writeRecords writes one block per crawled page with its field values.
func (w *SimpleWriter) writeRecords(sb *strings.Builder, report *model.CrawlReport) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("EXTRACTED DATA\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	if len(report.Records) == 0 {
		sb.WriteString("  No pages extracted\n\n")
		return
	}

	for _, rec := range report.Records {
		sb.WriteString(fmt.Sprintf("  [depth %d] %s\n", rec.Depth, rec.URL))
		for _, fv := range rec.Fields {
			if len(fv.Values) == 0 {
				sb.WriteString(fmt.Sprintf("    %s: (no match)\n", fv.Name))
				continue
			}
			sb.WriteString(fmt.Sprintf("    %s: %s\n", fv.Name, strings.Join(fv.Values, "; ")))
		}
		sb.WriteString("\n")
	}
}

// writeErrors writes the per-page failure section.
func (w *SimpleWriter) writeErrors(sb *strings.Builder, report *model.CrawlReport) {
	if len(report.Errors) == 0 {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("ERRORS\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	for _, e := range report.Errors {
		sb.WriteString(fmt.Sprintf("  [%s] %s\n", e.Kind, e.URL))
		if w.verbose && e.Detail != "" {
			sb.WriteString(fmt.Sprintf("    %s\n", e.Detail))
		}
	}
	sb.WriteString("\n")
}
