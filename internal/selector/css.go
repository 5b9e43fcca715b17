package selector

import (
	"fmt"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/pagemine/pagemine/internal/model"
	"golang.org/x/net/html"
)

// cssMatcher wraps a compiled cascadia selector.
//
// Design decision: We compile with cascadia directly rather than going
// through goquery's string-based Find because cascadia.Compile reports
// syntax errors at compile time, which we need for pre-run validation.
// goquery is still used for text extraction, where its Selection.Text
// handles nested elements correctly.
type cssMatcher struct {
	expr string
	sel  cascadia.Selector
}

// compileCSS compiles a CSS selector expression.
func compileCSS(expression string) (Compiled, error) {
	sel, err := cascadia.Compile(expression)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrSelectorSyntax, err)
	}
	return &cssMatcher{expr: expression, sel: sel}, nil
}

// Kind returns model.SelectorCSS.
func (m *cssMatcher) Kind() model.SelectorKind { return model.SelectorCSS }

// Expression returns the original CSS expression.
func (m *cssMatcher) Expression() string { return m.expr }

// Select returns all nodes matching the CSS selector in document order.
func (m *cssMatcher) Select(root *html.Node) []*html.Node {
	return m.sel.MatchAll(root)
}

// Extract returns the normalized text content of each matching element.
func (m *cssMatcher) Extract(root *html.Node) []string {
	nodes := m.sel.MatchAll(root)
	values := make([]string, 0, len(nodes))
	for _, n := range nodes {
		values = append(values, normalizeText(goquery.NewDocumentFromNode(n).Text()))
	}
	return values
}
