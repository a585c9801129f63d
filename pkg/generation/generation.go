// Package generation defines the capability contract for producing
// hypothetical answer texts, and the pipeline binding a prompt template to
// a generator.
package generation

import (
	"context"

	"github.com/blueberrycongee/hyde/pkg/errors"
	"github.com/blueberrycongee/hyde/pkg/prompt"
)

// Generator defines the interface for text generation backends.
// How many completions a call returns is the generator's own configuration
// (e.g. an OpenAI `n` parameter), not a property of the caller.
type Generator interface {
	// Generate produces one or more completions for the prompt, in order.
	Generate(ctx context.Context, promptText string) ([]string, error)

	// Model returns the name of the generation model being used.
	Model() string
}

// Pipeline binds a prompt template to a generator. It is immutable and safe
// for concurrent use.
type Pipeline struct {
	tmpl *prompt.Template
	gen  Generator
}

// NewPipeline creates a pipeline from a template and a generator.
func NewPipeline(tmpl *prompt.Template, gen Generator) *Pipeline {
	return &Pipeline{tmpl: tmpl, gen: gen}
}

// Run renders the query into the template and invokes the generator.
// A generator failure, or a generator returning zero texts, surfaces as a
// generation error; aggregation over zero hypothetical answers is undefined.
func (p *Pipeline) Run(ctx context.Context, query string) ([]string, error) {
	texts, err := p.gen.Generate(ctx, p.tmpl.Render(query))
	if err != nil {
		if errors.IsGeneration(err) {
			return nil, err
		}
		return nil, errors.NewGenerationError("", p.gen.Model(), "generation failed", err)
	}
	if len(texts) == 0 {
		return nil, errors.NewGenerationError("", p.gen.Model(), "generator returned no texts", nil)
	}
	return texts, nil
}

// Template returns the bound prompt template.
func (p *Pipeline) Template() *prompt.Template {
	return p.tmpl
}

// Generator returns the bound generation capability.
func (p *Pipeline) Generator() Generator {
	return p.gen
}
