// Package crawler coordinates a bounded crawl: it owns the worker pool,
// wires the fetcher, processor, frontier, and robots agent together, and
// assembles the final report.
//
// # Lifecycle
//
// A Crawler is built for exactly one request and run exactly once. All
// configuration problems (invalid limits, selector syntax errors) surface
// from New, before any network traffic. Run then always returns a report:
// per-page failures are recorded inside it and never abort the crawl.
//
// # Termination
//
// An empty queue is not completion - a worker mid-page may still discover
// new links. The frontier therefore counts queued plus in-flight entries:
// each admission increments the count before the entry becomes dequeuable,
// and each worker releases its entry with Done after the page is fully
// handled. The frontier closes itself when the count reaches zero, waking
// every blocked worker at once (see frontier.Done for the full rationale).
//
// Cancellation (caller context or time budget) short-circuits workers via
// the context; the partial report is returned with a cancelled status.
// Pages aborted mid-fetch by the cancellation are not recorded as
// failures: the report holds only pages that completed before the cutoff.
package crawler
