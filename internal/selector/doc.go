// Package selector compiles user-supplied CSS and XPath expressions into
// reusable matchers and applies them to parsed HTML documents.
//
// # Architecture
//
// CSS and XPath are two variants of one polymorphic capability: both
// compile into a Compiled matcher that selects nodes from an html.Node
// tree and extracts their text values. The kind is a tagged variant
// (model.SelectorKind) chosen by the user, never inferred from the
// expression.
//
// Design decision: We compile selectors once per crawl rather than per
// page because:
//  1. Compilation validates syntax up front, so a bad expression fails
//     the crawl before any network traffic (SelectorSyntaxError)
//  2. Compiled matchers are reused across every page a worker processes
//  3. Both cascadia and antchfx/xpath expose compile-then-match APIs
//
// # XPath support
//
// The XPath dialect is XPath 1.0 as implemented by antchfx/xpath,
// including attribute access (//a/@href), text(), and predicates.
// Expressions the library rejects at compile time fail with
// ErrSelectorSyntax; nothing outside the dialect is silently
// mis-evaluated.
package selector
