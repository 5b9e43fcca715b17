package model

import "time"

// FieldValues holds the extracted values for one named field on one page.
// A field may yield zero, one, or many values; zero matches is an empty
// slice, never an error.
type FieldValues struct {
	// Name is the field name from the CrawlRequest.
	Name string `json:"name"`

	// Values are the extracted strings in document order.
	Values []string `json:"values"`
}

// ExtractionRecord is the structured result of applying the request's
// selectors to one successfully fetched and parsed page. Once emitted to
// the aggregator it is immutable.
type ExtractionRecord struct {
	// URL is the normalized URL of the source page.
	URL string `json:"url"`

	// Depth is the link distance from the seed (0 for the seed itself).
	Depth int `json:"depth"`

	// Fields holds the per-field values in request order.
	//
	// Design decision: We use an ordered slice rather than a map because
	// export columns must appear in the order the user defined them, and
	// Go maps do not preserve insertion order.
	Fields []FieldValues `json:"fields"`

	// ExtractedAt is the timestamp of extraction.
	ExtractedAt time.Time `json:"extracted_at"`
}

// Value returns the values for the named field, or nil if the record has
// no such field.
func (r *ExtractionRecord) Value(name string) []string {
	for _, f := range r.Fields {
		if f.Name == name {
			return f.Values
		}
	}
	return nil
}

// ErrorKind classifies a per-page crawl failure.
type ErrorKind string

const (
	// KindNetwork covers connection failures (refused, reset, DNS).
	KindNetwork ErrorKind = "network"

	// KindTimeout covers request deadline and context timeout failures.
	KindTimeout ErrorKind = "timeout"

	// KindParse covers malformed documents and unsupported content types.
	KindParse ErrorKind = "parse"

	// KindSelector covers selector evaluation failures at runtime.
	// Syntax errors are caught earlier, at compile time.
	KindSelector ErrorKind = "selector"

	// KindHTTPStatus covers non-2xx final responses.
	KindHTTPStatus ErrorKind = "http_status"

	// KindRobots marks URLs that robots.txt disallowed. They are never
	// fetched.
	KindRobots ErrorKind = "robots"
)

// CrawlError records a per-page failure. Per-page failures never abort
// the crawl; they are collected alongside extraction records.
type CrawlError struct {
	// URL is the normalized URL that failed.
	URL string `json:"url"`

	// Depth is the link distance from the seed.
	Depth int `json:"depth"`

	// Kind classifies the failure.
	Kind ErrorKind `json:"kind"`

	// Detail is a human-readable description of what went wrong.
	Detail string `json:"detail"`
}
