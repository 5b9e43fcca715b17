// Package robots answers "may we fetch this URL?" per the target host's
// robots.txt.
//
// The agent fetches and parses each host's robots.txt at most once per
// crawl and caches the parsed rules. Lookups fail open: an unreachable or
// malformed robots.txt permits the fetch, matching common crawler
// practice. A missing robots.txt (HTTP 404) also permits everything.
//
// Respect can be switched off entirely, which is the right setting for
// crawling servers you operate yourself.
package robots
