package utils

import "math"

// CosineSimilarity calculates the cosine similarity between two vectors.
// It returns 0 for empty, length-mismatched or zero-norm input rather than
// reporting an error, so a bad vector simply ranks last.
func CosineSimilarity(vec1, vec2 []float32) float32 {
	if len(vec1) == 0 || len(vec1) != len(vec2) {
		return 0
	}

	var dot, norm1, norm2 float64
	for i := range vec1 {
		dot += float64(vec1[i]) * float64(vec2[i])
		norm1 += float64(vec1[i]) * float64(vec1[i])
		norm2 += float64(vec2[i]) * float64(vec2[i])
	}

	if norm1 == 0 || norm2 == 0 {
		return 0
	}

	return float32(dot / (math.Sqrt(norm1) * math.Sqrt(norm2)))
}
