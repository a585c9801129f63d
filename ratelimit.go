package hyde

import (
	"context"

	"golang.org/x/time/rate"

	"github.com/blueberrycongee/hyde/pkg/embedding"
	"github.com/blueberrycongee/hyde/pkg/generation"
)

// LimitedEmbedder wraps an embedding capability with a client-side rate
// limiter. Batch calls count one token per text. Context cancellation during
// the wait surfaces unchanged.
type LimitedEmbedder struct {
	inner   embedding.Embedder
	limiter *rate.Limiter
}

// NewLimitedEmbedder wraps emb so calls wait on the limiter before hitting
// the backend.
func NewLimitedEmbedder(inner embedding.Embedder, limiter *rate.Limiter) *LimitedEmbedder {
	return &LimitedEmbedder{inner: inner, limiter: limiter}
}

func (e *LimitedEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	if err := e.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return e.inner.Embed(ctx, text)
}

func (e *LimitedEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float64, error) {
	if len(texts) > 0 {
		if err := e.limiter.WaitN(ctx, len(texts)); err != nil {
			return nil, err
		}
	}
	return e.inner.EmbedBatch(ctx, texts)
}

func (e *LimitedEmbedder) Model() string { return e.inner.Model() }

func (e *LimitedEmbedder) Dimension() int { return e.inner.Dimension() }

// LimitedGenerator wraps a generation capability with a client-side rate
// limiter.
type LimitedGenerator struct {
	inner   generation.Generator
	limiter *rate.Limiter
}

// NewLimitedGenerator wraps gen so calls wait on the limiter before hitting
// the backend.
func NewLimitedGenerator(inner generation.Generator, limiter *rate.Limiter) *LimitedGenerator {
	return &LimitedGenerator{inner: inner, limiter: limiter}
}

func (g *LimitedGenerator) Generate(ctx context.Context, promptText string) ([]string, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return g.inner.Generate(ctx, promptText)
}

func (g *LimitedGenerator) Model() string { return g.inner.Model() }
