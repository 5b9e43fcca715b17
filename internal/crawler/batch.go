package crawler

import (
	"context"
	"log/slog"
	"time"

	"github.com/pagemine/pagemine/internal/model"
	"golang.org/x/sync/errgroup"
)

// Batch runs several crawl requests concurrently, each with its own
// crawler instance.
//
// Design decision: We use a factory rather than pre-built crawlers
// because:
//  1. Each request gets a fresh crawler, so frontier and robots state
//     never leaks between crawls
//  2. The factory lets the caller inject shared options (logger, HTTP
//     client, rate) in one place
//  3. Construction failures become failed reports in position, keeping
//     the output aligned with the input
type Batch struct {
	// factory builds a crawler for one request.
	factory func(model.CrawlRequest) (*Crawler, error)

	// concurrency caps how many crawls run at once.
	concurrency int

	// logger is used for batch-level logging.
	logger *slog.Logger
}

// BatchOption configures a Batch.
type BatchOption func(*Batch)

// WithBatchConcurrency sets how many crawls run simultaneously.
// Default is 3.
func WithBatchConcurrency(n int) BatchOption {
	return func(b *Batch) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// WithBatchLogger sets a custom logger for batch-level events.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *Batch) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// NewBatch creates a batch runner around a crawler factory.
func NewBatch(factory func(model.CrawlRequest) (*Crawler, error), opts ...BatchOption) *Batch {
	b := &Batch{
		factory:     factory,
		concurrency: 3,
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.logger == nil {
		b.logger = slog.Default()
	}
	return b
}

// Run crawls every request and returns one report per request, in input
// order. A request whose crawler cannot be constructed yields a failed
// report in its position; other crawls are unaffected. The error return
// is non-nil only when the batch context was cancelled.
func (b *Batch) Run(ctx context.Context, reqs []model.CrawlRequest) ([]*model.CrawlReport, error) {
	b.logger.Info("starting batch crawl",
		"total_seeds", len(reqs),
		"concurrency", b.concurrency,
	)
	startTime := time.Now()

	reports := make([]*model.CrawlReport, len(reqs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.concurrency)

	for i, req := range reqs {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}

			b.logger.Info("crawling seed",
				"seed", req.SeedURL,
				"index", i+1,
				"total", len(reqs),
			)

			c, err := b.factory(req)
			if err != nil {
				b.logger.Warn("crawler setup failed",
					"seed", req.SeedURL,
					"error", err,
				)
				reports[i] = model.NewFailedReport(req.SeedURL, err)
				return nil
			}

			// Each goroutine writes only its own slot, so no mutex is
			// needed around the reports slice.
			reports[i] = c.Run(gctx)
			return nil
		})
	}

	err := g.Wait()

	b.logger.Info("batch crawl complete",
		"total_seeds", len(reqs),
		"elapsed", time.Since(startTime),
	)
	return reports, err
}
