package hyde

import (
	"context"
	stderrors "errors"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/blueberrycongee/hyde/internal/metrics"
	"github.com/blueberrycongee/hyde/pkg/aggregate"
	"github.com/blueberrycongee/hyde/pkg/embedding"
	"github.com/blueberrycongee/hyde/pkg/errors"
	"github.com/blueberrycongee/hyde/pkg/generation"
	"github.com/blueberrycongee/hyde/pkg/prompt"
)

// Embedder is a hypothetical document embedder. It wraps a generation
// capability and a base embedding capability: queries are embedded by
// generating hypothetical answers, embedding each, and aggregating the
// vectors; documents are embedded directly by the base capability.
//
// Embedder implements embedding.Embedder, so it is a drop-in substitute for
// a plain embedder wherever one is expected by a downstream similarity index.
//
// Embedder holds no mutable per-call state and is safe for concurrent use
// provided the underlying capabilities are.
type Embedder struct {
	pipeline *generation.Pipeline
	embedder embedding.Embedder
	agg      aggregate.Strategy

	logger      *slog.Logger
	tracer      trace.Tracer
	recorder    *metrics.Recorder
	concurrency int
}

// New creates an Embedder from a named preset. The preset key is looked up
// in the built-in prompt registry and fails with an unknown-preset error if
// absent.
func New(gen generation.Generator, emb embedding.Embedder, preset string, opts ...Option) (*Embedder, error) {
	tmpl, err := prompt.Lookup(preset)
	if err != nil {
		return nil, err
	}
	return NewFromPipeline(generation.NewPipeline(tmpl, gen), emb, opts...)
}

// NewFromPipeline creates an Embedder from a caller-constructed generation
// pipeline, allowing fully custom prompts.
func NewFromPipeline(p *generation.Pipeline, emb embedding.Embedder, opts ...Option) (*Embedder, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	e := &Embedder{
		pipeline:    p,
		embedder:    emb,
		agg:         cfg.aggregator,
		logger:      cfg.logger,
		tracer:      cfg.tracer,
		concurrency: cfg.concurrency,
	}
	if cfg.registerer != nil {
		e.recorder = metrics.NewRecorder(cfg.registerer)
	}

	e.logger.Info("hyde embedder initialized",
		"generation_model", p.Generator().Model(),
		"embedding_model", emb.Model(),
		"aggregation", e.agg.Name(),
	)
	return e, nil
}

// EmbedQuery embeds a query by generating hypothetical answers and
// aggregating their embeddings. The call is atomic: it returns one fully
// aggregated vector or fails entirely, never a partial aggregation.
func (e *Embedder) EmbedQuery(ctx context.Context, text string) ([]float64, error) {
	ctx, span := e.tracer.Start(ctx, "hyde.EmbedQuery")
	defer span.End()

	start := time.Now()
	texts, err := e.pipeline.Run(ctx, text)
	if err != nil {
		e.observeError(err)
		return nil, err
	}
	e.recorder.ObservePhase(metrics.PhaseGenerate, time.Since(start))
	span.SetAttributes(attribute.Int("hyde.hypotheses", len(texts)))

	start = time.Now()
	vectors, err := e.embedAll(ctx, texts)
	if err != nil {
		e.observeError(err)
		return nil, err
	}
	e.recorder.ObservePhase(metrics.PhaseEmbed, time.Since(start))

	start = time.Now()
	out, err := e.agg.Aggregate(vectors)
	if err != nil {
		// Ragged dimensions across hypothetical texts are an embedding
		// capability defect, not a generation one.
		aggErr := errors.NewEmbeddingError("", e.embedder.Model(), err.Error(), err)
		e.observeError(aggErr)
		return nil, aggErr
	}
	e.recorder.ObservePhase(metrics.PhaseAggregate, time.Since(start))
	e.recorder.ObserveQuery(len(texts))

	e.logger.Debug("query embedded",
		"hypotheses", len(texts),
		"dimension", len(out),
		"aggregation", e.agg.Name(),
	)
	return out, nil
}

// EmbedDocuments embeds corpus documents directly via the base embedding
// capability, one vector per input text, in order. Hypothetical answer
// generation is a query-side technique and is never invoked here.
func (e *Embedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float64, error) {
	vectors, err := e.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		if errors.IsEmbedding(err) {
			e.observeError(err)
			return nil, err
		}
		embErr := errors.NewEmbeddingError("", e.embedder.Model(), "batch embedding failed", err)
		e.observeError(embErr)
		return nil, embErr
	}
	e.recorder.ObserveDocuments(len(texts))
	return vectors, nil
}

// Embed implements embedding.Embedder by treating the text as a query.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float64, error) {
	return e.EmbedQuery(ctx, text)
}

// EmbedBatch implements embedding.Embedder by treating the texts as documents.
func (e *Embedder) EmbedBatch(ctx context.Context, texts []string) ([][]float64, error) {
	return e.EmbedDocuments(ctx, texts)
}

// Model returns the base embedding model name.
func (e *Embedder) Model() string {
	return e.embedder.Model()
}

// Dimension returns the base embedding dimensionality.
func (e *Embedder) Dimension() int {
	return e.embedder.Dimension()
}

// Pipeline returns the bound generation pipeline.
func (e *Embedder) Pipeline() *generation.Pipeline {
	return e.pipeline
}

// embedAll embeds each hypothetical text, preserving order. Embedding calls
// run sequentially unless a concurrency limit above one was configured; any
// failure aborts the whole call.
func (e *Embedder) embedAll(ctx context.Context, texts []string) ([][]float64, error) {
	if e.concurrency <= 1 || len(texts) == 1 {
		vectors := make([][]float64, 0, len(texts))
		for _, t := range texts {
			v, err := e.embedOne(ctx, t)
			if err != nil {
				return nil, err
			}
			vectors = append(vectors, v)
		}
		return vectors, nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	vectors := make([][]float64, len(texts))
	errs := make([]error, len(texts))
	sem := make(chan struct{}, e.concurrency)

	var wg sync.WaitGroup
	for i, t := range texts {
		wg.Add(1)
		go func(i int, t string) {
			defer wg.Done()
			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				errs[i] = ctx.Err()
				return
			}
			v, err := e.embedOne(ctx, t)
			if err != nil {
				errs[i] = err
				cancel()
				return
			}
			vectors[i] = v
		}(i, t)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			if errors.IsEmbedding(err) {
				return nil, err
			}
			return nil, errors.NewEmbeddingError("", e.embedder.Model(), "embedding failed", err)
		}
	}
	return vectors, nil
}

func (e *Embedder) embedOne(ctx context.Context, text string) ([]float64, error) {
	v, err := e.embedder.Embed(ctx, text)
	if err != nil {
		if errors.IsEmbedding(err) {
			return nil, err
		}
		return nil, errors.NewEmbeddingError("", e.embedder.Model(), "embedding failed", err)
	}
	return v, nil
}

func (e *Embedder) observeError(err error) {
	var he *errors.HyDEError
	if stderrors.As(err, &he) {
		e.recorder.ObserveError(he.Type)
	}
}
