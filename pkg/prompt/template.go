// Package prompt provides immutable single-placeholder prompt templates and
// a registry of named presets for hypothetical answer generation.
package prompt

import (
	"strings"

	"github.com/blueberrycongee/hyde/pkg/errors"
)

// Placeholder is the query slot every template must contain exactly once.
const Placeholder = "{question}"

// Template is an immutable prompt template with a single query placeholder.
// Rendering is pure and cannot fail once the template is constructed.
type Template struct {
	text string
}

// New creates a Template, validating placeholder arity.
// A template with zero or more than one placeholder fails with a template error.
func New(text string) (*Template, error) {
	switch n := strings.Count(text, Placeholder); {
	case n == 0:
		return nil, errors.NewTemplateError("template is missing the " + Placeholder + " placeholder")
	case n > 1:
		return nil, errors.NewTemplateError("template must contain exactly one " + Placeholder + " placeholder")
	}
	return &Template{text: text}, nil
}

// MustNew is like New but panics on a malformed template.
// Intended for package-level preset declarations.
func MustNew(text string) *Template {
	t, err := New(text)
	if err != nil {
		panic(err)
	}
	return t
}

// Render substitutes the query into the placeholder and returns the prompt text.
func (t *Template) Render(query string) string {
	return strings.Replace(t.text, Placeholder, query, 1)
}

// Text returns the raw template text.
func (t *Template) Text() string {
	return t.text
}
