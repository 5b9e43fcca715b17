package model

import (
	"sort"
	"time"
)

// CrawlStatus is the terminal state of a crawl.
type CrawlStatus string

const (
	// StatusCompleted means the frontier drained or a page/depth limit
	// triggered. Per-page failures do not prevent this status.
	StatusCompleted CrawlStatus = "completed"

	// StatusCancelled means an external cancellation signal or the time
	// budget ended the crawl early. The report holds everything recorded
	// before the cutoff.
	StatusCancelled CrawlStatus = "cancelled"

	// StatusFailed means a configuration error was detected before any
	// worker started (invalid seed, invalid selector, zero max pages).
	StatusFailed CrawlStatus = "failed"
)

// CrawlReport is the terminal artifact of one crawl: every extraction
// record, every per-page error, and the summary counters. It is produced
// once at crawl completion and handed to the export layer.
type CrawlReport struct {
	// SeedURL is the crawl's starting URL.
	SeedURL string `json:"seed_url"`

	// Status is the terminal state of the crawl.
	Status CrawlStatus `json:"status"`

	// Error describes the configuration problem when Status is failed.
	Error string `json:"error,omitempty"`

	// FieldNames are the export columns, in request order.
	FieldNames []string `json:"field_names"`

	// Records are the successful extractions.
	Records []ExtractionRecord `json:"records"`

	// Errors are the per-page failures.
	Errors []CrawlError `json:"errors"`

	// PagesAttempted is the number of pages handed to workers.
	PagesAttempted int `json:"pages_attempted"`

	// PagesSucceeded is the number of pages that produced a record.
	PagesSucceeded int `json:"pages_succeeded"`

	// PagesFailed is the number of pages that produced an error.
	PagesFailed int `json:"pages_failed"`

	// StartedAt is when the crawl began.
	StartedAt time.Time `json:"started_at"`

	// Elapsed is the total crawl runtime.
	Elapsed time.Duration `json:"elapsed"`
}

// NewFailedReport builds a Failed-status report for a request that never
// started. Invalid input yields this well-formed report rather than a crash.
func NewFailedReport(seedURL string, err error) *CrawlReport {
	return &CrawlReport{
		SeedURL:   seedURL,
		Status:    StatusFailed,
		Error:     err.Error(),
		Records:   []ExtractionRecord{},
		Errors:    []CrawlError{},
		StartedAt: time.Now(),
	}
}

// SortCanonical orders records and errors by depth, then URL.
//
// Concurrent workers complete out of order, so insertion order is not
// deterministic. Sorting by (depth, URL) makes two crawls of the same
// static content byte-identical after export.
func (r *CrawlReport) SortCanonical() {
	sort.Slice(r.Records, func(i, j int) bool {
		if r.Records[i].Depth != r.Records[j].Depth {
			return r.Records[i].Depth < r.Records[j].Depth
		}
		return r.Records[i].URL < r.Records[j].URL
	})
	sort.Slice(r.Errors, func(i, j int) bool {
		if r.Errors[i].Depth != r.Errors[j].Depth {
			return r.Errors[i].Depth < r.Errors[j].Depth
		}
		return r.Errors[i].URL < r.Errors[j].URL
	})
}
