// Package database provides the SQLite archive of finished crawl reports.
//
// Every completed crawl can be saved with its full report serialized as
// JSON plus a few indexed summary columns, so past crawls of a site can
// be listed and reloaded without re-fetching anything. The archive is an
// append-only history: saving never overwrites an earlier report for the
// same seed.
package database
