// Package model defines the core data structures used throughout pagemine.
//
// This package contains the following main types:
//   - CrawlRequest: The immutable description of one crawl
//   - ExtractionRecord: The structured result of applying selectors to one page
//   - CrawlError: A per-page failure, classified by kind
//   - CrawlReport: The terminal artifact handed to the export layer
//
// Design decision: We separate models into their own package to avoid circular
// dependencies. Multiple packages (crawler, processor, report, database) need
// these types, so centralizing them prevents import cycles.
//
// The models are designed to be serializable to JSON for report output and
// database storage.
package model
