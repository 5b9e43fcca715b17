// Package report renders finished crawl reports in the supported output
// formats: human-readable text, CSV, JSON, and Markdown.
//
// All writers implement the Writer interface and receive a report whose
// records are already in canonical order, so a given crawl always renders
// byte-identically regardless of worker scheduling.
package report
