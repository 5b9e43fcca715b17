// Package processor turns fetch results into extraction records and link
// discovery candidates.
//
// The processor parses response bytes into an html.Node tree (decoding
// non-UTF-8 pages via their declared charset), applies the crawl's
// compiled selector fields, and, when link following is enabled, resolves
// anchor targets to absolute URLs and filters them to the seed's
// registrable domain.
//
// Per-page problems (bad status, non-HTML content, malformed markup)
// become CrawlError values rather than Go errors: a single page's failure
// never unwinds the crawl.
package processor
