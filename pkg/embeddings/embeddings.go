// Package embeddings provides similarity math for embedding vectors.
package embeddings

import (
	"math"
	"sort"
)

// Cosine returns the cosine similarity of two vectors, in [-1, 1]. Vectors
// of different lengths are compared over the shorter length. A zero-
// magnitude vector yields 0.
func Cosine(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}

	var dot, magA, magB float64
	for i := range n {
		dot += a[i] * b[i]
	}
	for _, v := range a {
		magA += v * v
	}
	for _, v := range b {
		magB += v * v
	}

	if magA == 0 || magB == 0 {
		return 0
	}

	return dot / (math.Sqrt(magA) * math.Sqrt(magB))
}

// Rank returns candidate indices ordered by descending cosine similarity
// to the query. Ties keep their original relative order.
func Rank(query []float64, candidates ...[]float64) []int {
	indices := make([]int, len(candidates))
	scores := make([]float64, len(candidates))
	for i, c := range candidates {
		indices[i] = i
		scores[i] = Cosine(query, c)
	}

	sort.SliceStable(indices, func(i, j int) bool {
		return scores[indices[i]] > scores[indices[j]]
	})

	return indices
}
