package selector

import (
	"fmt"
	"strings"

	"github.com/antchfx/htmlquery"
	"github.com/antchfx/xpath"
	"github.com/pagemine/pagemine/internal/model"
	"golang.org/x/net/html"
)

// xpathMatcher wraps a compiled XPath 1.0 node-set expression.
//
// The supported dialect is whatever antchfx/xpath compiles: node tests,
// predicates, attribute access (//a/@href), text(), axes, and the core
// function library. Anything it rejects fails here with ErrSelectorSyntax
// rather than being silently mis-evaluated at match time. Expressions
// that compile but produce a value instead of a node set - count(//a),
// string(//title), boolean tests - are rejected here too: matching is
// node-based, and such an expression would otherwise select nothing on
// every page without ever reporting why.
type xpathMatcher struct {
	expr     string
	compiled *xpath.Expr
}

// typeCheckDoc is an empty document used to classify a compiled
// expression's result type. html.Parse on an in-memory reader cannot fail.
var typeCheckDoc, _ = html.Parse(strings.NewReader("<html></html>"))

// compileXPath compiles an XPath expression and verifies it selects nodes.
func compileXPath(expression string) (Compiled, error) {
	compiled, err := xpath.Compile(expression)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrSelectorSyntax, err)
	}

	result := compiled.Evaluate(htmlquery.CreateXPathNavigator(typeCheckDoc))
	if _, ok := result.(*xpath.NodeIterator); !ok {
		return nil, fmt.Errorf("%w: %q evaluates to a value, not a node set", ErrSelectorSyntax, expression)
	}

	return &xpathMatcher{expr: expression, compiled: compiled}, nil
}

// Kind returns model.SelectorXPath.
func (m *xpathMatcher) Kind() model.SelectorKind { return model.SelectorXPath }

// Expression returns the original XPath expression.
func (m *xpathMatcher) Expression() string { return m.expr }

// Select returns all nodes matching the expression in document order.
// Attribute selections yield synthetic attribute nodes.
func (m *xpathMatcher) Select(root *html.Node) []*html.Node {
	return htmlquery.QuerySelectorAll(root, m.compiled)
}

// Extract returns the normalized text of each match. For attribute nodes
// the text is the attribute value.
func (m *xpathMatcher) Extract(root *html.Node) []string {
	nodes := htmlquery.QuerySelectorAll(root, m.compiled)
	values := make([]string, 0, len(nodes))
	for _, n := range nodes {
		values = append(values, normalizeText(htmlquery.InnerText(n)))
	}
	return values
}
