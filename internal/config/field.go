package config

import (
	"fmt"
	"strings"

	"github.com/pagemine/pagemine/internal/model"
)

// xpathPrefix marks a field expression as XPath instead of the default
// CSS selector syntax.
const xpathPrefix = "xpath:"

// ParseFieldSpec parses one --field flag value of the form
// "name=selector" or "name=xpath:expression" into a field definition.
//
// The expression is not compiled here; syntax errors surface when the
// crawler compiles all fields before the first fetch.
func ParseFieldSpec(spec string) (model.Field, error) {
	name, expr, ok := strings.Cut(spec, "=")
	if !ok {
		return model.Field{}, fmt.Errorf("%w: %q", ErrInvalidFieldSpec, spec)
	}

	name = strings.TrimSpace(name)
	expr = strings.TrimSpace(expr)
	if name == "" || expr == "" {
		return model.Field{}, fmt.Errorf("%w: %q", ErrInvalidFieldSpec, spec)
	}

	kind := model.SelectorCSS
	if rest, found := strings.CutPrefix(expr, xpathPrefix); found {
		kind = model.SelectorXPath
		expr = strings.TrimSpace(rest)
		if expr == "" {
			return model.Field{}, fmt.Errorf("%w: %q", ErrInvalidFieldSpec, spec)
		}
	}

	return model.Field{Name: name, Expression: expr, Kind: kind}, nil
}

// ParseFieldSpecs parses a list of --field flag values, preserving order.
func ParseFieldSpecs(specs []string) ([]model.Field, error) {
	fields := make([]model.Field, 0, len(specs))
	for _, spec := range specs {
		f, err := ParseFieldSpec(spec)
		if err != nil {
			return nil, err
		}
		fields = append(fields, f)
	}
	return fields, nil
}
