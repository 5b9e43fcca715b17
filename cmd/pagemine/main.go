// Package main provides the entry point for the pagemine CLI.
//
// pagemine is a bounded, polite web crawler that extracts structured data
// from pages using CSS selectors and XPath expressions.
//
// Usage:
//
//	pagemine crawl --field title=h1 https://example.com
//	pagemine crawl --field price=xpath://span[@class='price'] https://example.com
//
// See --help for all available options.
package main

// main is the entry point for pagemine.
func main() {
	Execute()
}
