package crawler

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/pagemine/pagemine/internal/fetcher"
	"github.com/pagemine/pagemine/internal/frontier"
	"github.com/pagemine/pagemine/internal/model"
	"github.com/pagemine/pagemine/internal/processor"
	"github.com/pagemine/pagemine/internal/robots"
	"github.com/pagemine/pagemine/internal/selector"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// Crawler executes one crawl request with a pool of workers.
type Crawler struct {
	req    model.CrawlRequest
	fetch  *fetcher.Fetcher
	proc   *processor.Processor
	agent  *robots.Agent
	logger *slog.Logger

	// limiter paces requests across all workers. Nil means unlimited.
	limiter *rate.Limiter

	// httpClient overrides the transport for the fetcher and robots
	// agent. Used by tests; nil means the default clients.
	httpClient *http.Client

	respectRobots bool
	userAgent     string
}

// Option is a functional option for configuring a Crawler.
type Option func(*Crawler)

// WithLogger sets a custom logger. Defaults to slog.Default.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Crawler) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithHTTPClient sets the HTTP client used for page and robots.txt
// fetches.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Crawler) {
		c.httpClient = client
	}
}

// WithRatePerSecond caps the request rate across all workers. Zero or
// negative leaves the rate unlimited.
func WithRatePerSecond(rps float64) Option {
	return func(c *Crawler) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		}
	}
}

// WithRespectRobots toggles robots.txt evaluation. Enabled by default.
func WithRespectRobots(respect bool) Option {
	return func(c *Crawler) {
		c.respectRobots = respect
	}
}

// WithUserAgent sets the User-Agent for page fetches and robots.txt
// matching.
func WithUserAgent(userAgent string) Option {
	return func(c *Crawler) {
		c.userAgent = userAgent
	}
}

// New creates a crawler for one request. It validates the request and
// compiles all selectors, so a crawler that constructs successfully will
// not fail on configuration once running.
func New(req model.CrawlRequest, opts ...Option) (*Crawler, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	fields, err := selector.CompileFields(req.Fields)
	if err != nil {
		return nil, err
	}

	c := &Crawler{
		req:           req,
		respectRobots: true,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}

	c.proc, err = processor.New(fields, req)
	if err != nil {
		return nil, err
	}

	fetchOpts := []fetcher.Option{
		fetcher.WithRetries(req.Retries),
		fetcher.WithHeaders(req.Headers),
	}
	if req.Timeout > 0 {
		fetchOpts = append(fetchOpts, fetcher.WithTimeout(req.Timeout))
	}
	if c.userAgent != "" {
		fetchOpts = append(fetchOpts, fetcher.WithUserAgent(c.userAgent))
	}
	if c.httpClient != nil {
		fetchOpts = append(fetchOpts, fetcher.WithHTTPClient(c.httpClient))
	}
	c.fetch = fetcher.New(fetchOpts...)

	robotsOpts := []robots.Option{
		robots.WithRespect(c.respectRobots),
		robots.WithUserAgent(c.userAgent),
	}
	if c.httpClient != nil {
		robotsOpts = append(robotsOpts, robots.WithHTTPClient(c.httpClient))
	}
	c.agent = robots.NewAgent(robotsOpts...)

	return c, nil
}

// Run executes the crawl and always returns a report. The context bounds
// the whole crawl; the request's time budget, when set, is layered on top
// of it. Per-page failures are recorded in the report, never returned.
func (c *Crawler) Run(ctx context.Context) *model.CrawlReport {
	startedAt := time.Now()

	if c.req.TimeBudget > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.req.TimeBudget)
		defer cancel()
	}

	c.logger.Info("starting crawl",
		"seed", c.req.SeedURL,
		"max_pages", c.req.MaxPages,
		"max_depth", c.req.MaxDepth,
		"workers", c.req.Workers,
	)

	front := frontier.New(c.req.MaxPages, c.req.MaxDepth)
	agg := newAggregator()

	if front.Enqueue([]frontier.Candidate{{URL: c.req.SeedURL, Depth: 0}}) != 1 {
		return model.NewFailedReport(c.req.SeedURL, model.ErrInvalidSeedURL)
	}

	g, gctx := errgroup.WithContext(ctx)
	for range c.req.Workers {
		g.Go(func() error {
			for {
				entry, ok := front.Next(gctx)
				if !ok {
					return nil
				}
				c.crawlPage(gctx, entry, front, agg)
				front.Done()
			}
		})
	}
	_ = g.Wait() //nolint:errcheck // workers never return errors
	front.Close()

	status := model.StatusCompleted
	if ctx.Err() != nil {
		status = model.StatusCancelled
	}

	report := agg.finalize(&c.req, status, startedAt)
	c.logger.Info("crawl finished",
		"seed", c.req.SeedURL,
		"status", report.Status,
		"pages_succeeded", report.PagesSucceeded,
		"pages_failed", report.PagesFailed,
		"elapsed", report.Elapsed,
	)
	return report
}

// crawlPage handles one frontier entry end to end: robots gate, rate
// limit, fetch, process, record, and enqueue of discovered links.
func (c *Crawler) crawlPage(ctx context.Context, entry frontier.Entry, front *frontier.Frontier, agg *aggregator) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			// Cancelled while waiting for a rate slot; the page stays
			// unattempted and is not counted as a failure.
			return
		}
	}

	if target, err := url.Parse(entry.URL); err == nil && !c.agent.Allowed(ctx, target) {
		c.logger.Debug("page disallowed by robots.txt", "url", entry.URL)
		agg.addError(&model.CrawlError{
			URL:    entry.URL,
			Depth:  entry.Depth,
			Kind:   model.KindRobots,
			Detail: "disallowed by robots.txt",
		})
		return
	}

	res, err := c.fetch.Fetch(ctx, entry.URL)
	if err != nil {
		if ctx.Err() != nil {
			// The crawl was cancelled mid-fetch. The page never completed
			// and the abort is not a failure of the target, so it stays
			// unattempted, like the limiter-wait path above.
			return
		}
		c.logger.Warn("fetch failed", "url", entry.URL, "error", err)
		agg.addError(&model.CrawlError{
			URL:    entry.URL,
			Depth:  entry.Depth,
			Kind:   fetcher.Classify(err),
			Detail: err.Error(),
		})
		return
	}

	record, candidates, crawlErr := c.proc.Process(res, entry.Depth)
	if crawlErr != nil {
		c.logger.Warn("page failed",
			"url", entry.URL,
			"kind", crawlErr.Kind,
			"detail", crawlErr.Detail,
		)
		agg.addError(crawlErr)
		return
	}

	agg.addRecord(record)
	admitted := front.Enqueue(candidates)
	c.logger.Debug("page processed",
		"url", entry.URL,
		"depth", entry.Depth,
		"discovered", len(candidates),
		"admitted", admitted,
	)
}
