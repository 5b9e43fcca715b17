package report

import (
	"bytes"
	"encoding/csv"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/pagemine/pagemine/internal/model"
)

// multiValueSeparator joins multiple matches of one field into a single
// CSV cell.
const multiValueSeparator = "; "

// CSVWriter outputs reports as CSV for spreadsheet import.
//
// The header row is "url", "depth", "extracted_at", one column per
// configured field, and a trailing "error" column. Extraction records
// leave the error column empty; failed pages appear as rows with only
// url, depth, and the error column filled, so a single file carries the
// complete crawl outcome.
type CSVWriter struct {
	baseWriter
}

// NewCSVWriter creates a CSVWriter that outputs to the given writer.
func NewCSVWriter(output io.Writer) *CSVWriter {
	return &CSVWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write renders the report as CSV.
func (w *CSVWriter) Write(report *model.CrawlReport) (int, error) {
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)

	header := append([]string{"url", "depth", "extracted_at"}, report.FieldNames...)
	header = append(header, "error")
	if err := cw.Write(header); err != nil {
		return 0, err
	}

	for _, rec := range report.Records {
		row := []string{
			rec.URL,
			strconv.Itoa(rec.Depth),
			rec.ExtractedAt.Format(time.RFC3339),
		}
		for _, name := range report.FieldNames {
			row = append(row, strings.Join(rec.Value(name), multiValueSeparator))
		}
		row = append(row, "")
		if err := cw.Write(row); err != nil {
			return 0, err
		}
	}

	for _, e := range report.Errors {
		row := []string{e.URL, strconv.Itoa(e.Depth), ""}
		for range report.FieldNames {
			row = append(row, "")
		}
		row = append(row, string(e.Kind)+": "+e.Detail)
		if err := cw.Write(row); err != nil {
			return 0, err
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return 0, err
	}

	return w.output.Write(buf.Bytes())
}
