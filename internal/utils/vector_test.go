package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCosineSimilarityIdentity(t *testing.T) {
	v := []float32{0.3, -1.2, 4.5, 0.7}
	assert.InDelta(t, 1.0, CosineSimilarity(v, v), 1e-6)
}

func TestCosineSimilaritySymmetry(t *testing.T) {
	a := []float32{1, 2, 3}
	b := []float32{-2, 0.5, 1}
	assert.Equal(t, CosineSimilarity(a, b), CosineSimilarity(b, a))
}

func TestCosineSimilarityOrthogonal(t *testing.T) {
	a := []float32{1, 0}
	b := []float32{0, 1}
	assert.InDelta(t, 0.0, CosineSimilarity(a, b), 1e-6)
}

func TestCosineSimilarityOpposite(t *testing.T) {
	a := []float32{2, -1}
	b := []float32{-2, 1}
	assert.InDelta(t, -1.0, CosineSimilarity(a, b), 1e-6)
}

func TestCosineSimilarityDegenerateInputs(t *testing.T) {
	nonzero := []float32{1, 2, 3}

	assert.Zero(t, CosineSimilarity(nil, nonzero))
	assert.Zero(t, CosineSimilarity(nonzero, nil))
	assert.Zero(t, CosineSimilarity([]float32{1, 2}, nonzero)) // length mismatch
	assert.Zero(t, CosineSimilarity([]float32{0, 0, 0}, nonzero))
	assert.Zero(t, CosineSimilarity(nonzero, []float32{0, 0, 0}))
}
