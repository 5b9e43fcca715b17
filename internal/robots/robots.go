package robots

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/temoto/robotstxt"
)

const defaultTimeout = 10 * time.Second

// Agent evaluates robots.txt rules with per-host caching. It is safe for
// concurrent use by the crawl workers.
type Agent struct {
	client    *http.Client
	userAgent string
	respect   bool

	mu    sync.RWMutex
	cache map[string]*robotstxt.RobotsData
}

// Option is a functional option for configuring an Agent.
type Option func(*Agent)

// WithHTTPClient sets the HTTP client used to fetch robots.txt files.
func WithHTTPClient(client *http.Client) Option {
	return func(a *Agent) {
		if client != nil {
			a.client = client
		}
	}
}

// WithUserAgent sets the product token matched against robots.txt groups
// and sent as the User-Agent header when fetching the file itself.
func WithUserAgent(userAgent string) Option {
	return func(a *Agent) {
		if userAgent != "" {
			a.userAgent = userAgent
		}
	}
}

// WithRespect toggles rule evaluation. When false, Allowed always
// reports true without any network traffic.
func WithRespect(respect bool) Option {
	return func(a *Agent) {
		a.respect = respect
	}
}

// NewAgent creates a robots agent. By default rules are respected and
// fetched with a dedicated 10 second timeout client.
func NewAgent(opts ...Option) *Agent {
	a := &Agent{
		client:  &http.Client{Timeout: defaultTimeout},
		respect: true,
		cache:   make(map[string]*robotstxt.RobotsData),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Allowed reports whether the target URL may be fetched. Robots problems
// fail open: only an explicit disallow rule blocks a URL.
func (a *Agent) Allowed(ctx context.Context, target *url.URL) bool {
	if target == nil || !target.IsAbs() {
		return false
	}
	if !a.respect {
		return true
	}

	rules, err := a.rules(ctx, target)
	if err != nil || rules == nil {
		return true
	}

	group := rules.FindGroup(a.userAgent)
	if group == nil {
		group = rules.FindGroup("*")
		if group == nil {
			return true
		}
	}

	path := target.Path
	if path == "" {
		path = "/"
	}
	return group.Test(path)
}

// rules returns the cached robots data for the target's host, fetching it
// on first use. A nil result with nil error means the host has no
// robots.txt (treated as allow-all and cached so the 404 is not repeated).
func (a *Agent) rules(ctx context.Context, target *url.URL) (*robotstxt.RobotsData, error) {
	host := strings.ToLower(target.Host)

	a.mu.RLock()
	rules, ok := a.cache[host]
	a.mu.RUnlock()
	if ok {
		return rules, nil
	}

	robotsURL := target.Scheme + "://" + target.Host + "/robots.txt"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build robots request: %w", err)
	}
	if a.userAgent != "" {
		req.Header.Set("User-Agent", a.userAgent)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch robots.txt: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		a.store(host, nil)
		return nil, nil
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("robots.txt returned status %d", resp.StatusCode)
	}

	data, err := robotstxt.FromResponse(resp)
	if err != nil {
		return nil, fmt.Errorf("parse robots.txt: %w", err)
	}

	a.store(host, data)
	return data, nil
}

func (a *Agent) store(host string, rules *robotstxt.RobotsData) {
	a.mu.Lock()
	a.cache[host] = rules
	a.mu.Unlock()
}
