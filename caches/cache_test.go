package caches

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/blueberrycongee/hyde/caches/local"
)

type mockEmbedder struct {
	mock.Mock
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	args := m.Called(ctx, text)
	if v := args.Get(0); v != nil {
		return v.([]float64), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float64, error) {
	args := m.Called(ctx, texts)
	if v := args.Get(0); v != nil {
		return v.([][]float64), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockEmbedder) Model() string  { return "mock-model" }
func (m *mockEmbedder) Dimension() int { return 3 }

func TestEmbedCachesSecondCall(t *testing.T) {
	inner := new(mockEmbedder)
	inner.On("Embed", mock.Anything, "hello").Return([]float64{1, 2, 3}, nil).Once()

	cached := NewCachedEmbedder(inner, local.New(local.Config{}))

	ctx := context.Background()
	v1, err := cached.Embed(ctx, "hello")
	require.NoError(t, err)
	v2, err := cached.Embed(ctx, "hello")
	require.NoError(t, err)

	assert.Equal(t, v1, v2)
	inner.AssertExpectations(t)
}

func TestEmbedBatchFetchesOnlyMisses(t *testing.T) {
	inner := new(mockEmbedder)
	inner.On("Embed", mock.Anything, "a").Return([]float64{1, 0, 0}, nil).Once()
	inner.On("EmbedBatch", mock.Anything, []string{"b", "c"}).
		Return([][]float64{{0, 1, 0}, {0, 0, 1}}, nil).Once()

	cached := NewCachedEmbedder(inner, local.New(local.Config{}), WithTTL(time.Minute))

	ctx := context.Background()
	_, err := cached.Embed(ctx, "a")
	require.NoError(t, err)

	vecs, err := cached.EmbedBatch(ctx, []string{"a", "b", "c"})
	require.NoError(t, err)
	require.Len(t, vecs, 3)
	assert.Equal(t, []float64{1, 0, 0}, vecs[0])
	assert.Equal(t, []float64{0, 1, 0}, vecs[1])
	assert.Equal(t, []float64{0, 0, 1}, vecs[2])
	inner.AssertExpectations(t)
}

func TestEmbedBatchEmptyInput(t *testing.T) {
	inner := new(mockEmbedder)
	cached := NewCachedEmbedder(inner, local.New(local.Config{}))

	vecs, err := cached.EmbedBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, vecs)
	inner.AssertExpectations(t)
}

func TestDelegatesModelAndDimension(t *testing.T) {
	inner := new(mockEmbedder)
	cached := NewCachedEmbedder(inner, local.New(local.Config{}))

	assert.Equal(t, "mock-model", cached.Model())
	assert.Equal(t, 3, cached.Dimension())
}

func TestKeyIncludesModel(t *testing.T) {
	inner := new(mockEmbedder)
	cached := NewCachedEmbedder(inner, local.New(local.Config{}))

	k1 := cached.key("hello")
	k2 := cached.key("world")
	assert.NotEqual(t, k1, k2)
	assert.Contains(t, k1, "hyde:emb:")
}
