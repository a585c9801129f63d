// Package aggregate provides strategies for combining multiple embedding
// vectors into a single query embedding.
package aggregate

import "fmt"

// Strategy combines N embedding vectors (one per hypothetical answer) into one.
// Implementations must reject empty input and ragged dimensionality.
type Strategy interface {
	// Name returns the strategy identifier (e.g., "mean").
	Name() string

	// Aggregate combines the vectors into a single vector of the same dimensionality.
	Aggregate(vectors [][]float64) ([]float64, error)
}

// Mean returns the default strategy: element-wise arithmetic mean.
func Mean() Strategy { return meanStrategy{} }

// Max returns a strategy taking the element-wise maximum.
func Max() Strategy { return maxStrategy{} }

// First returns a strategy selecting the first vector as the representative.
func First() Strategy { return firstStrategy{} }

// Weighted returns a strategy computing a weighted mean with the given
// weights. The weights are normalized; their count must match the number of
// vectors at aggregation time, and their sum must be nonzero.
func Weighted(weights []float64) (Strategy, error) {
	if len(weights) == 0 {
		return nil, fmt.Errorf("weighted aggregation requires at least one weight")
	}
	var sum float64
	for _, w := range weights {
		sum += w
	}
	if sum == 0 {
		return nil, fmt.Errorf("weights must not sum to zero")
	}
	normalized := make([]float64, len(weights))
	for i, w := range weights {
		normalized[i] = w / sum
	}
	return weightedStrategy{weights: normalized}, nil
}

// checkShape validates that there is at least one vector and that all
// vectors share the same dimensionality.
func checkShape(vectors [][]float64) (int, error) {
	if len(vectors) == 0 {
		return 0, fmt.Errorf("cannot aggregate zero vectors")
	}
	dim := len(vectors[0])
	for i, v := range vectors {
		if len(v) != dim {
			return 0, fmt.Errorf("dimension mismatch: vector 0 has %d dimensions, vector %d has %d", dim, i, len(v))
		}
	}
	return dim, nil
}

type meanStrategy struct{}

func (meanStrategy) Name() string { return "mean" }

func (meanStrategy) Aggregate(vectors [][]float64) ([]float64, error) {
	dim, err := checkShape(vectors)
	if err != nil {
		return nil, err
	}
	out := make([]float64, dim)
	for _, v := range vectors {
		for i, x := range v {
			out[i] += x
		}
	}
	n := float64(len(vectors))
	for i := range out {
		out[i] /= n
	}
	return out, nil
}

type maxStrategy struct{}

func (maxStrategy) Name() string { return "max" }

func (maxStrategy) Aggregate(vectors [][]float64) ([]float64, error) {
	dim, err := checkShape(vectors)
	if err != nil {
		return nil, err
	}
	out := make([]float64, dim)
	copy(out, vectors[0])
	for _, v := range vectors[1:] {
		for i, x := range v {
			if x > out[i] {
				out[i] = x
			}
		}
	}
	return out, nil
}

type firstStrategy struct{}

func (firstStrategy) Name() string { return "first" }

func (firstStrategy) Aggregate(vectors [][]float64) ([]float64, error) {
	if _, err := checkShape(vectors); err != nil {
		return nil, err
	}
	out := make([]float64, len(vectors[0]))
	copy(out, vectors[0])
	return out, nil
}

type weightedStrategy struct {
	weights []float64
}

func (weightedStrategy) Name() string { return "weighted" }

func (s weightedStrategy) Aggregate(vectors [][]float64) ([]float64, error) {
	dim, err := checkShape(vectors)
	if err != nil {
		return nil, err
	}
	if len(vectors) != len(s.weights) {
		return nil, fmt.Errorf("weight count %d does not match vector count %d", len(s.weights), len(vectors))
	}
	out := make([]float64, dim)
	for j, v := range vectors {
		w := s.weights[j]
		for i, x := range v {
			out[i] += w * x
		}
	}
	return out, nil
}

// FromName returns the built-in strategy with the given name.
// Weighted aggregation has no nullary form and must be constructed directly.
func FromName(name string) (Strategy, error) {
	switch name {
	case "", "mean":
		return Mean(), nil
	case "max":
		return Max(), nil
	case "first":
		return First(), nil
	default:
		return nil, fmt.Errorf("unknown aggregation strategy %q", name)
	}
}
