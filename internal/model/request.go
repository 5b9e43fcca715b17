package model

import (
	"errors"
	"fmt"
	"net/url"
	"time"
)

// SelectorKind identifies the selector language of a field expression.
//
// Design decision: We represent the CSS/XPath choice as a tagged variant
// dispatched through one matcher interface (see internal/selector) rather
// than inspecting the expression at runtime. The kind is always explicit.
type SelectorKind string

const (
	// SelectorCSS is a CSS selector expression (e.g. "div.content > h1").
	SelectorCSS SelectorKind = "css"

	// SelectorXPath is an XPath 1.0 expression (e.g. `//div[@class="content"]`).
	SelectorXPath SelectorKind = "xpath"
)

// ParseSelectorKind converts a string into a SelectorKind.
// It accepts "css" and "xpath" (case-sensitive); anything else is an error.
func ParseSelectorKind(s string) (SelectorKind, error) {
	switch SelectorKind(s) {
	case SelectorCSS, SelectorXPath:
		return SelectorKind(s), nil
	default:
		return "", fmt.Errorf("unknown selector kind %q: must be %q or %q", s, SelectorCSS, SelectorXPath)
	}
}

// Field describes one named extraction target: a selector expression plus
// the language it is written in. Fields are ordered; the order is preserved
// in ExtractionRecord values and in tabular export columns.
type Field struct {
	// Name is the user-facing column name for this field.
	Name string `json:"name" yaml:"name"`

	// Expression is the CSS or XPath selector text.
	Expression string `json:"expression" yaml:"selector"`

	// Kind is the selector language of Expression.
	Kind SelectorKind `json:"kind" yaml:"kind"`
}

// CrawlRequest describes one crawl. It is immutable once a crawl starts:
// the coordinator copies what it needs at construction time, so mutating a
// request after Run has begun has no effect on that crawl.
type CrawlRequest struct {
	// SeedURL is the starting URL of the crawl.
	SeedURL string `json:"seed_url"`

	// Fields are the named selectors applied to every fetched page,
	// in export-column order.
	Fields []Field `json:"fields"`

	// FollowLinks enables link discovery. When false, only the seed page
	// is fetched.
	FollowLinks bool `json:"follow_links"`

	// SameDomainOnly restricts discovered links to the seed's registrable
	// domain. Only meaningful when FollowLinks is true.
	SameDomainOnly bool `json:"same_domain_only"`

	// MaxPages bounds the total number of pages handed to workers
	// (succeeded + failed). Must be positive.
	MaxPages int `json:"max_pages"`

	// MaxDepth bounds link-following distance from the seed.
	// 0 means only the seed page.
	MaxDepth int `json:"max_depth"`

	// Workers is the size of the fixed worker pool.
	Workers int `json:"workers"`

	// Timeout applies to each individual HTTP request.
	Timeout time.Duration `json:"timeout"`

	// Retries is the number of additional attempts after a transient
	// fetch failure. 0 disables retries.
	Retries int `json:"retries"`

	// Headers are static HTTP headers sent with every request.
	// Values may contain credentials; the log layer masks them.
	Headers map[string]string `json:"-"`

	// TimeBudget is a wall-clock cutoff for the whole crawl.
	// 0 means no budget.
	TimeBudget time.Duration `json:"time_budget,omitempty"`
}

// Request validation errors. These are configuration errors: they are
// detected before any worker starts and make the whole crawl Failed.
var (
	// ErrInvalidSeedURL is returned when the seed URL cannot be parsed
	// or is not an absolute http(s) URL.
	ErrInvalidSeedURL = errors.New("invalid seed URL: must be an absolute http or https URL")

	// ErrNoFields is returned when the request defines no extraction fields.
	ErrNoFields = errors.New("no extraction fields defined")

	// ErrInvalidMaxPages is returned when MaxPages is zero or negative.
	ErrInvalidMaxPages = errors.New("invalid max pages: must be positive")

	// ErrInvalidMaxDepth is returned when MaxDepth is negative.
	ErrInvalidMaxDepth = errors.New("invalid max depth: must be non-negative")

	// ErrInvalidWorkers is returned when Workers is zero or negative.
	ErrInvalidWorkers = errors.New("invalid worker count: must be positive")

	// ErrInvalidTimeout is returned when the request timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidRetries is returned when the retry count is negative.
	ErrInvalidRetries = errors.New("invalid retries: must be non-negative")
)

// Validate checks the request and returns the first problem found.
//
// Design decision: We validate the whole request up front rather than at
// each point of use so that a bad request fails fast with a clear message
// before any network traffic happens. Selector expressions are compiled
// (and therefore validated) separately by the coordinator, because this
// package must not depend on the selector engine.
func (r *CrawlRequest) Validate() error {
	u, err := url.Parse(r.SeedURL)
	if err != nil || !u.IsAbs() || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ErrInvalidSeedURL
	}
	if len(r.Fields) == 0 {
		return ErrNoFields
	}
	for _, f := range r.Fields {
		if f.Name == "" || f.Expression == "" {
			return fmt.Errorf("field %q: name and selector are required", f.Name)
		}
		if _, err := ParseSelectorKind(string(f.Kind)); err != nil {
			return fmt.Errorf("field %q: %w", f.Name, err)
		}
	}
	if r.MaxPages <= 0 {
		return ErrInvalidMaxPages
	}
	if r.MaxDepth < 0 {
		return ErrInvalidMaxDepth
	}
	if r.Workers <= 0 {
		return ErrInvalidWorkers
	}
	if r.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if r.Retries < 0 {
		return ErrInvalidRetries
	}
	return nil
}

// FieldNames returns the field names in export-column order.
func (r *CrawlRequest) FieldNames() []string {
	names := make([]string, len(r.Fields))
	for i, f := range r.Fields {
		names[i] = f.Name
	}
	return names
}
