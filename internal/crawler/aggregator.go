package crawler

import (
	"sync"
	"time"

	"github.com/pagemine/pagemine/internal/model"
)

// aggregator collects extraction records and per-page errors from
// concurrent workers. Append order is arbitrary under concurrency; the
// final report is sorted canonically so output is deterministic.
type aggregator struct {
	mu      sync.Mutex
	records []model.ExtractionRecord
	errors  []model.CrawlError
}

func newAggregator() *aggregator {
	return &aggregator{}
}

func (a *aggregator) addRecord(r *model.ExtractionRecord) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.records = append(a.records, *r)
}

func (a *aggregator) addError(e *model.CrawlError) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.errors = append(a.errors, *e)
}

// finalize assembles the crawl report. It must be called after all
// workers have stopped.
func (a *aggregator) finalize(req *model.CrawlRequest, status model.CrawlStatus, startedAt time.Time) *model.CrawlReport {
	a.mu.Lock()
	defer a.mu.Unlock()

	report := &model.CrawlReport{
		SeedURL:        req.SeedURL,
		Status:         status,
		FieldNames:     req.FieldNames(),
		Records:        a.records,
		Errors:         a.errors,
		PagesAttempted: len(a.records) + len(a.errors),
		PagesSucceeded: len(a.records),
		PagesFailed:    len(a.errors),
		StartedAt:      startedAt,
		Elapsed:        time.Since(startedAt),
	}
	report.SortCanonical()
	return report
}
