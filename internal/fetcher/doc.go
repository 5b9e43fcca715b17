// Package fetcher performs bounded HTTP GET requests with timeout, retry,
// and header policy.
//
// # Behavior
//
// Each Fetch is one outbound GET plus up to the configured number of retry
// attempts on transient failure (connection errors, timeouts, 5xx status).
// Retries back off exponentially from a fixed base delay. 4xx responses
// and malformed URLs are terminal for that URL: they are never retried.
//
// A completed HTTP exchange always produces a Result, even for non-2xx
// status codes; the caller decides what a bad status means. Only
// transport-level failures return an error.
//
// # Politeness
//
// The fetcher always sends a descriptive User-Agent so site operators can
// identify the tool in their logs. Response bodies are read through a size
// limit to prevent memory exhaustion, and redirects are capped at a small
// hop count.
package fetcher
