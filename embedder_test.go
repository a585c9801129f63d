package hyde

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/blueberrycongee/hyde/pkg/aggregate"
	"github.com/blueberrycongee/hyde/pkg/errors"
)

// stubGenerator returns canned hypothetical answers.
type stubGenerator struct {
	texts []string
	err   error
	calls int
	mu    sync.Mutex
}

func (g *stubGenerator) Generate(_ context.Context, _ string) ([]string, error) {
	g.mu.Lock()
	g.calls++
	g.mu.Unlock()
	if g.err != nil {
		return nil, g.err
	}
	return g.texts, nil
}

func (g *stubGenerator) Model() string { return "stub-gen" }

// hashEmbedder produces a deterministic vector per input text so tests can
// reason about exact aggregation results.
type hashEmbedder struct {
	dim     int
	vectors map[string][]float64
	err     error
	mu      sync.Mutex
	seen    []string
}

func newHashEmbedder(dim int) *hashEmbedder {
	return &hashEmbedder{dim: dim, vectors: make(map[string][]float64)}
}

func (h *hashEmbedder) set(text string, vec []float64) {
	h.vectors[text] = vec
}

func (h *hashEmbedder) Embed(_ context.Context, text string) ([]float64, error) {
	h.mu.Lock()
	h.seen = append(h.seen, text)
	h.mu.Unlock()
	if h.err != nil {
		return nil, h.err
	}
	if v, ok := h.vectors[text]; ok {
		return v, nil
	}
	// Deterministic fallback: a constant vector derived from text length.
	v := make([]float64, h.dim)
	for i := range v {
		v[i] = float64(len(text)%7) + float64(i)
	}
	return v, nil
}

func (h *hashEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float64, error) {
	out := make([][]float64, len(texts))
	for i, t := range texts {
		v, err := h.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (h *hashEmbedder) Model() string  { return "stub-emb" }
func (h *hashEmbedder) Dimension() int { return h.dim }

type mockGenerator struct {
	mock.Mock
}

func (m *mockGenerator) Generate(ctx context.Context, promptText string) ([]string, error) {
	args := m.Called(ctx, promptText)
	if v := args.Get(0); v != nil {
		return v.([]string), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockGenerator) Model() string { return "mock-gen" }

func TestNewUnknownPreset(t *testing.T) {
	gen := &stubGenerator{texts: []string{"a"}}
	emb := newHashEmbedder(4)

	_, err := New(gen, emb, "no_such_preset")
	require.Error(t, err)
	assert.True(t, errors.IsUnknownPreset(err))

	var he *HyDEError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, TypeUnknownPreset, he.Type)
}

func TestEmbedQueryDimension(t *testing.T) {
	gen := &stubGenerator{texts: []string{"one", "two", "three"}}
	emb := newHashEmbedder(8)

	e, err := New(gen, emb, PresetWebSearch)
	require.NoError(t, err)

	vec, err := e.EmbedQuery(context.Background(), "what is a glacier?")
	require.NoError(t, err)
	assert.Len(t, vec, 8)
	assert.Equal(t, 8, e.Dimension())
}

func TestEmbedQueryMeanOfHypotheses(t *testing.T) {
	// Four generated answers whose mean is known exactly.
	gen := &stubGenerator{texts: []string{"h1", "h2", "h3", "h4"}}
	emb := newHashEmbedder(2)
	emb.set("h1", []float64{1, 0})
	emb.set("h2", []float64{0, 1})
	emb.set("h3", []float64{1, 1})
	emb.set("h4", []float64{2, 2})

	e, err := New(gen, emb, PresetWebSearch)
	require.NoError(t, err)

	vec, err := e.EmbedQuery(context.Background(), "where is the Taj Mahal?")
	require.NoError(t, err)
	assert.InDelta(t, 1.0, vec[0], 1e-12)
	assert.InDelta(t, 1.0, vec[1], 1e-12)
}

func TestEmbedQuerySingleHypothesisIdentity(t *testing.T) {
	gen := &stubGenerator{texts: []string{"only"}}
	emb := newHashEmbedder(3)
	emb.set("only", []float64{0.5, -1.5, 2})

	e, err := New(gen, emb, PresetSciFact)
	require.NoError(t, err)

	vec, err := e.EmbedQuery(context.Background(), "q")
	require.NoError(t, err)
	assert.Equal(t, []float64{0.5, -1.5, 2}, vec)
}

func TestEmbedQueryIdenticalHypotheses(t *testing.T) {
	gen := &stubGenerator{texts: []string{"same", "same", "same"}}
	emb := newHashEmbedder(2)
	emb.set("same", []float64{3, 4})

	e, err := New(gen, emb, PresetWebSearch)
	require.NoError(t, err)

	vec, err := e.EmbedQuery(context.Background(), "q")
	require.NoError(t, err)
	assert.InDelta(t, 3.0, vec[0], 1e-12)
	assert.InDelta(t, 4.0, vec[1], 1e-12)
}

func TestEmbedQueryPermutationInvariant(t *testing.T) {
	vecs := map[string][]float64{
		"a": {1, 2},
		"b": {3, 5},
		"c": {-2, 0},
	}

	run := func(order []string) []float64 {
		gen := &stubGenerator{texts: order}
		emb := newHashEmbedder(2)
		for k, v := range vecs {
			emb.set(k, v)
		}
		e, err := New(gen, emb, PresetWebSearch)
		require.NoError(t, err)
		out, err := e.EmbedQuery(context.Background(), "q")
		require.NoError(t, err)
		return out
	}

	first := run([]string{"a", "b", "c"})
	second := run([]string{"c", "a", "b"})
	require.Len(t, second, 2)
	assert.InDelta(t, first[0], second[0], 1e-12)
	assert.InDelta(t, first[1], second[1], 1e-12)
}

func TestEmbedQueryGenerationFailure(t *testing.T) {
	gen := &stubGenerator{err: fmt.Errorf("model overloaded")}
	emb := newHashEmbedder(2)

	e, err := New(gen, emb, PresetWebSearch)
	require.NoError(t, err)

	_, err = e.EmbedQuery(context.Background(), "q")
	require.Error(t, err)
	assert.True(t, errors.IsGeneration(err))
	assert.Empty(t, emb.seen, "no embedding calls after generation failure")
}

func TestEmbedQueryEmptyGeneration(t *testing.T) {
	gen := &stubGenerator{texts: nil}
	emb := newHashEmbedder(2)

	e, err := New(gen, emb, PresetWebSearch)
	require.NoError(t, err)

	_, err = e.EmbedQuery(context.Background(), "q")
	require.Error(t, err)
	assert.True(t, errors.IsGeneration(err))
}

func TestEmbedQueryEmbeddingFailureIsAtomic(t *testing.T) {
	gen := &stubGenerator{texts: []string{"a", "b"}}
	emb := newHashEmbedder(2)
	emb.err = fmt.Errorf("quota exceeded")

	e, err := New(gen, emb, PresetWebSearch)
	require.NoError(t, err)

	vec, err := e.EmbedQuery(context.Background(), "q")
	require.Error(t, err)
	assert.Nil(t, vec)
	assert.True(t, errors.IsEmbedding(err))
}

func TestEmbedQueryDimensionMismatch(t *testing.T) {
	gen := &stubGenerator{texts: []string{"a", "b"}}
	emb := newHashEmbedder(2)
	emb.set("a", []float64{1, 2})
	emb.set("b", []float64{1, 2, 3})

	e, err := New(gen, emb, PresetWebSearch)
	require.NoError(t, err)

	_, err = e.EmbedQuery(context.Background(), "q")
	require.Error(t, err)
	assert.True(t, errors.IsEmbedding(err))
	assert.Contains(t, err.Error(), "dimension mismatch")
}

func TestEmbedQueryConcurrentPreservesResult(t *testing.T) {
	gen := &stubGenerator{texts: []string{"h1", "h2", "h3", "h4"}}
	emb := newHashEmbedder(2)
	emb.set("h1", []float64{1, 0})
	emb.set("h2", []float64{0, 1})
	emb.set("h3", []float64{1, 1})
	emb.set("h4", []float64{2, 2})

	e, err := New(gen, emb, PresetWebSearch, WithConcurrency(4))
	require.NoError(t, err)

	vec, err := e.EmbedQuery(context.Background(), "q")
	require.NoError(t, err)
	assert.InDelta(t, 1.0, vec[0], 1e-12)
	assert.InDelta(t, 1.0, vec[1], 1e-12)
}

func TestEmbedQueryConcurrentFailureAborts(t *testing.T) {
	gen := &stubGenerator{texts: []string{"a", "b", "c", "d"}}
	emb := newHashEmbedder(2)
	emb.err = fmt.Errorf("backend down")

	e, err := New(gen, emb, PresetWebSearch, WithConcurrency(2))
	require.NoError(t, err)

	vec, err := e.EmbedQuery(context.Background(), "q")
	require.Error(t, err)
	assert.Nil(t, vec)
	assert.True(t, errors.IsEmbedding(err))
}

func TestEmbedDocumentsNeverGenerates(t *testing.T) {
	gen := new(mockGenerator) // no expectations: any Generate call fails the test
	emb := newHashEmbedder(4)

	e, err := New(gen, emb, PresetWebSearch)
	require.NoError(t, err)

	docs := []string{"doc one", "doc two", "doc three"}
	vecs, err := e.EmbedDocuments(context.Background(), docs)
	require.NoError(t, err)
	require.Len(t, vecs, 3)
	for _, v := range vecs {
		assert.Len(t, v, 4)
	}
	gen.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
}

func TestEmbedDocumentsOrderMatchesInput(t *testing.T) {
	gen := &stubGenerator{}
	emb := newHashEmbedder(2)
	emb.set("x", []float64{1, 1})
	emb.set("y", []float64{2, 2})

	e, err := New(gen, emb, PresetWebSearch)
	require.NoError(t, err)

	vecs, err := e.EmbedDocuments(context.Background(), []string{"x", "y"})
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 1}, vecs[0])
	assert.Equal(t, []float64{2, 2}, vecs[1])
}

func TestEmbedDocumentsFailure(t *testing.T) {
	gen := &stubGenerator{}
	emb := newHashEmbedder(2)
	emb.err = fmt.Errorf("auth failed")

	e, err := New(gen, emb, PresetWebSearch)
	require.NoError(t, err)

	_, err = e.EmbedDocuments(context.Background(), []string{"doc"})
	require.Error(t, err)
	assert.True(t, errors.IsEmbedding(err))
}

func TestEmbedderImplementsEmbeddingInterface(t *testing.T) {
	gen := &stubGenerator{texts: []string{"h"}}
	emb := newHashEmbedder(2)
	emb.set("h", []float64{1, 2})

	e, err := New(gen, emb, PresetWebSearch)
	require.NoError(t, err)

	// Embed routes through the query path.
	vec, err := e.Embed(context.Background(), "q")
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2}, vec)
	assert.Equal(t, "stub-emb", e.Model())

	// EmbedBatch routes through the document path.
	vecs, err := e.EmbedBatch(context.Background(), []string{"plain text"})
	require.NoError(t, err)
	require.Len(t, vecs, 1)
}

func TestWithAggregatorMax(t *testing.T) {
	gen := &stubGenerator{texts: []string{"a", "b"}}
	emb := newHashEmbedder(2)
	emb.set("a", []float64{1, 5})
	emb.set("b", []float64{3, 2})

	e, err := New(gen, emb, PresetWebSearch, WithAggregator(aggregate.Max()))
	require.NoError(t, err)

	vec, err := e.EmbedQuery(context.Background(), "q")
	require.NoError(t, err)
	assert.Equal(t, []float64{3, 5}, vec)
}

func TestWithMetricsRecords(t *testing.T) {
	gen := &stubGenerator{texts: []string{"h"}}
	emb := newHashEmbedder(2)

	reg := prometheus.NewRegistry()
	e, err := New(gen, emb, PresetWebSearch, WithMetrics(reg))
	require.NoError(t, err)

	_, err = e.EmbedQuery(context.Background(), "q")
	require.NoError(t, err)

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}

func TestGeneratorReceivesRenderedPrompt(t *testing.T) {
	gen := new(mockGenerator)
	gen.On("Generate", mock.Anything, mock.MatchedBy(func(p string) bool {
		return strings.Contains(p, "where is the Eiffel Tower?")
	})).Return([]string{"in Paris"}, nil).Once()

	emb := newHashEmbedder(2)
	e, err := New(gen, emb, PresetWebSearch)
	require.NoError(t, err)

	_, err = e.EmbedQuery(context.Background(), "where is the Eiffel Tower?")
	require.NoError(t, err)
	gen.AssertExpectations(t)
}
