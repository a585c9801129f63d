package aggregate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMean(t *testing.T) {
	out, err := Mean().Aggregate([][]float64{
		{1, 2, 3},
		{3, 4, 5},
	})
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 3, 4}, out)
}

func TestMean_SingleVectorIsIdentity(t *testing.T) {
	in := []float64{0.25, -0.5, 1.75}
	out, err := Mean().Aggregate([][]float64{in})
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestMean_OrderIndependent(t *testing.T) {
	a := []float64{1, 0, 2}
	b := []float64{0, 1, 4}
	c := []float64{2, 2, 0}

	out1, err := Mean().Aggregate([][]float64{a, b, c})
	require.NoError(t, err)
	out2, err := Mean().Aggregate([][]float64{c, a, b})
	require.NoError(t, err)

	assert.InDeltaSlice(t, out1, out2, 1e-12)
}

func TestMax(t *testing.T) {
	out, err := Max().Aggregate([][]float64{
		{1, 5, -3},
		{2, 4, -1},
	})
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 5, -1}, out)
}

func TestFirst(t *testing.T) {
	first := []float64{9, 8}
	out, err := First().Aggregate([][]float64{first, {1, 2}})
	require.NoError(t, err)
	assert.Equal(t, first, out)

	// Returned vector is a copy, not an alias.
	out[0] = 0
	assert.Equal(t, float64(9), first[0])
}

func TestWeighted(t *testing.T) {
	s, err := Weighted([]float64{3, 1})
	require.NoError(t, err)

	out, err := s.Aggregate([][]float64{
		{4, 0},
		{0, 4},
	})
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{3, 1}, out, 1e-12)
}

func TestWeighted_Invalid(t *testing.T) {
	_, err := Weighted(nil)
	assert.Error(t, err)

	_, err = Weighted([]float64{1, -1})
	assert.Error(t, err)

	s, err := Weighted([]float64{1, 1})
	require.NoError(t, err)
	_, err = s.Aggregate([][]float64{{1, 2}})
	assert.Error(t, err)
}

func TestAggregate_EmptyInput(t *testing.T) {
	for _, s := range []Strategy{Mean(), Max(), First()} {
		_, err := s.Aggregate(nil)
		assert.Error(t, err, s.Name())
	}
}

func TestAggregate_DimensionMismatch(t *testing.T) {
	for _, s := range []Strategy{Mean(), Max(), First()} {
		_, err := s.Aggregate([][]float64{{1, 2}, {1, 2, 3}})
		assert.ErrorContains(t, err, "dimension mismatch", s.Name())
	}
}

func TestFromName(t *testing.T) {
	for name, want := range map[string]string{"": "mean", "mean": "mean", "max": "max", "first": "first"} {
		s, err := FromName(name)
		require.NoError(t, err)
		assert.Equal(t, want, s.Name())
	}

	_, err := FromName("median")
	assert.Error(t, err)
}
