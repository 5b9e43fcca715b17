package selector

import (
	"errors"
	"fmt"
	"strings"

	"github.com/pagemine/pagemine/internal/model"
	"golang.org/x/net/html"
)

// ErrSelectorSyntax is returned (wrapped) when an expression fails to
// compile. It is a configuration error: the coordinator detects it before
// any worker starts.
var ErrSelectorSyntax = errors.New("selector syntax error")

// Compiled is a reusable matcher produced by Compile. Implementations are
// safe for concurrent use by multiple workers: matching does not mutate
// the matcher.
type Compiled interface {
	// Kind returns the selector language this matcher was compiled from.
	Kind() model.SelectorKind

	// Expression returns the original expression text.
	Expression() string

	// Select returns the nodes matching the expression, in document order.
	Select(root *html.Node) []*html.Node

	// Extract returns the whitespace-normalized text value of each match.
	// XPath attribute selections yield the attribute value.
	// Zero matches yields an empty slice, never an error.
	Extract(root *html.Node) []string
}

// Compile turns an expression into a reusable matcher.
// A syntax error wraps ErrSelectorSyntax.
func Compile(expression string, kind model.SelectorKind) (Compiled, error) {
	if strings.TrimSpace(expression) == "" {
		return nil, fmt.Errorf("%w: empty expression", ErrSelectorSyntax)
	}

	switch kind {
	case model.SelectorCSS:
		return compileCSS(expression)
	case model.SelectorXPath:
		return compileXPath(expression)
	default:
		return nil, fmt.Errorf("%w: unknown kind %q", ErrSelectorSyntax, kind)
	}
}

// Field pairs a field name with its compiled matcher.
type Field struct {
	// Name is the user-facing field name.
	Name string

	// Matcher is the compiled selector for this field.
	Matcher Compiled
}

// CompileFields compiles every field of a request, preserving order.
// The first syntax error aborts compilation; its message names the field.
func CompileFields(fields []model.Field) ([]Field, error) {
	compiled := make([]Field, 0, len(fields))
	for _, f := range fields {
		m, err := Compile(f.Expression, f.Kind)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", f.Name, err)
		}
		compiled = append(compiled, Field{Name: f.Name, Matcher: m})
	}
	return compiled, nil
}

// ExtractFields applies every compiled field to one document and zips the
// results by field name, preserving field order. A field with zero matches
// contributes an empty value slice.
func ExtractFields(root *html.Node, fields []Field) []model.FieldValues {
	values := make([]model.FieldValues, 0, len(fields))
	for _, f := range fields {
		values = append(values, model.FieldValues{
			Name:   f.Name,
			Values: f.Matcher.Extract(root),
		})
	}
	return values
}

// normalizeText collapses whitespace runs to single spaces and trims the
// result. Raw HTML text tends to carry indentation and newlines that are
// noise in tabular output.
func normalizeText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
