package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Default fetcher settings. These match the defaults in internal/config;
// they are duplicated here so the fetcher is usable standalone.
const (
	// defaultMaxBodySize limits response bodies to 5MB. Larger responses
	// are truncated rather than failing the fetch.
	defaultMaxBodySize = 5 * 1024 * 1024

	// defaultBackoffBase is the first retry delay; it doubles per attempt.
	defaultBackoffBase = 500 * time.Millisecond

	// defaultUserAgent identifies pagemine in HTTP requests. A descriptive
	// User-Agent lets operators identify crawler traffic in their logs.
	defaultUserAgent = "PageMine/1.0 (+https://github.com/pagemine/pagemine)"

	// maxRedirects caps redirect following per request.
	maxRedirects = 5
)

// Result holds the outcome of one completed HTTP exchange. It is
// transient: the page processor consumes it immediately and it is not
// retained after processing.
type Result struct {
	// URL is the requested URL (before any redirects).
	URL string

	// StatusCode is the final HTTP status code.
	StatusCode int

	// ContentType is the response Content-Type header value.
	ContentType string

	// Body is the response body, truncated to the configured size limit.
	Body []byte

	// Elapsed is the total time spent on this URL, including retries.
	Elapsed time.Duration

	// Attempts is how many HTTP requests were made (1 + retries used).
	Attempts int
}

// Fetcher performs bounded GET requests. It is safe for concurrent use by
// multiple workers; all fields are fixed after construction.
type Fetcher struct {
	// client is the HTTP client used for all requests.
	client *http.Client

	// timeout applies per attempt, not per Fetch call.
	timeout time.Duration

	// retries is the number of additional attempts on transient failure.
	retries int

	// backoffBase is the delay before the first retry; doubles per attempt.
	backoffBase time.Duration

	// userAgent is sent with every request.
	userAgent string

	// headers are static headers sent with every request.
	headers map[string]string

	// maxBodySize limits how much of a response body is read.
	maxBodySize int64
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithHTTPClient sets the HTTP client. Useful for tests and for callers
// that need a preconfigured transport. The redirect cap is applied to the
// provided client's behavior only if the client has no CheckRedirect.
func WithHTTPClient(client *http.Client) Option {
	return func(f *Fetcher) {
		f.client = client
	}
}

// WithTimeout sets the per-attempt request timeout.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithRetries sets the number of retry attempts on transient failure.
func WithRetries(n int) Option {
	return func(f *Fetcher) {
		if n >= 0 {
			f.retries = n
		}
	}
}

// WithBackoffBase sets the initial retry delay. The delay doubles with
// each subsequent attempt.
func WithBackoffBase(d time.Duration) Option {
	return func(f *Fetcher) {
		f.backoffBase = d
	}
}

// WithUserAgent sets a custom User-Agent header.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// WithHeaders sets static headers sent with every request. A "User-Agent"
// entry here overrides the configured user agent.
func WithHeaders(headers map[string]string) Option {
	return func(f *Fetcher) {
		f.headers = headers
	}
}

// WithMaxBodySize sets the maximum response body size to read.
func WithMaxBodySize(size int64) Option {
	return func(f *Fetcher) {
		if size > 0 {
			f.maxBodySize = size
		}
	}
}

// New creates a Fetcher with the given options.
func New(opts ...Option) *Fetcher {
	f := &Fetcher{
		timeout:     30 * time.Second,
		retries:     0,
		backoffBase: defaultBackoffBase,
		userAgent:   defaultUserAgent,
		maxBodySize: defaultMaxBodySize,
	}

	for _, opt := range opts {
		opt(f)
	}

	if f.client == nil {
		f.client = &http.Client{}
	}
	if f.client.CheckRedirect == nil {
		f.client.CheckRedirect = func(_ *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return fmt.Errorf("stopped after %d redirects", maxRedirects)
			}
			return nil
		}
	}

	return f
}

// Fetch performs a GET with the configured retry policy.
//
// A completed exchange returns a Result regardless of status code. An
// error return means no usable response was obtained: malformed URL,
// exhausted retries on transport failure, or context cancellation.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*Result, error) {
	if _, err := url.ParseRequestURI(rawURL); err != nil {
		// Malformed URLs are terminal, never retried.
		return nil, fmt.Errorf("malformed URL %q: %w", rawURL, err)
	}

	start := time.Now()
	var lastErr error

	for attempt := 0; attempt <= f.retries; attempt++ {
		if attempt > 0 {
			if err := f.backoff(ctx, attempt); err != nil {
				return nil, err
			}
		}

		res, retryable, err := f.attempt(ctx, rawURL)
		if err == nil {
			res.URL = rawURL
			res.Attempts = attempt + 1
			res.Elapsed = time.Since(start)

			// 5xx responses are transient: retry if budget remains,
			// otherwise hand the final status to the caller.
			if res.StatusCode >= 500 && attempt < f.retries {
				continue
			}
			return res, nil
		}

		lastErr = err
		if !retryable {
			return nil, err
		}
	}

	return nil, fmt.Errorf("fetch %s failed after %d attempts: %w", rawURL, f.retries+1, lastErr)
}

// attempt performs a single request. The second return value reports
// whether the failure is worth retrying.
func (f *Fetcher) attempt(ctx context.Context, rawURL string) (*Result, bool, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, false, err
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	for k, v := range f.headers {
		req.Header.Set(k, v)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		// Transport failures (refused, reset, timeout) are transient.
		// Do not retry if the caller's context is already gone.
		return nil, ctx.Err() == nil, err
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodySize))
	if err != nil {
		return nil, ctx.Err() == nil, err
	}

	return &Result{
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
	}, false, nil
}

// backoff sleeps for backoffBase * 2^(attempt-1), or returns early if the
// context is cancelled.
func (f *Fetcher) backoff(ctx context.Context, attempt int) error {
	delay := f.backoffBase << (attempt - 1)
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(delay):
		return nil
	}
}
