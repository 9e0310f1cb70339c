// ABOUTME: Cosine similarity scoring and top-k ranking over stored chunks
// ABOUTME: Linear scan with stable descending sort, optional source filtering
package rag

import (
	"math"
	"sort"

	"studyrag/internal/models"
)

// CosineSimilarity returns the cosine of the angle between a and b. If either
// vector has zero norm the score is 0.0, never NaN. When the lengths differ
// the dot product runs over the shared prefix while each norm uses the full
// vector; mixed-dimensionality corpora are tolerated, not rejected.
func CosineSimilarity(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}

	var dot float64
	for i := 0; i < n; i++ {
		dot += a[i] * b[i]
	}

	var na, nb float64
	for _, x := range a {
		na += x * x
	}
	for _, x := range b {
		nb += x * x
	}
	if na == 0 || nb == 0 {
		return 0.0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// Rank scores every candidate against the query embedding and returns the
// topK best matches in descending score order. The sort is stable, so tied
// candidates keep their input order. topK <= 0 yields an empty result. A
// non-empty sources slice restricts candidates to those source tags before
// scoring.
func Rank(query []float64, candidates []models.Chunk, topK int, sources []string) []models.ScoredChunk {
	if topK <= 0 {
		return nil
	}

	allow := make(map[string]bool, len(sources))
	for _, s := range sources {
		allow[s] = true
	}

	scored := make([]models.ScoredChunk, 0, len(candidates))
	for _, c := range candidates {
		if len(allow) > 0 && !allow[c.Source] {
			continue
		}
		scored = append(scored, models.ScoredChunk{
			Score: CosineSimilarity(query, c.Embedding),
			Chunk: c,
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if topK < len(scored) {
		scored = scored[:topK]
	}
	return scored
}
