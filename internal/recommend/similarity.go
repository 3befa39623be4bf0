package recommend

import (
	"math"
	"sort"
)

// Neighbor is a learner similar to the target learner.
type Neighbor struct {
	LearnerID  string
	Similarity float64
}

// Cosine returns the cosine similarity of two sparse rating vectors, or 0
// when either is empty or all-zero. Keys are visited in sorted order so
// identical vectors score exactly 1.
func Cosine(a, b map[string]float64) float64 {
	keys := make([]string, 0, len(a)+len(b))
	for k := range a {
		keys = append(keys, k)
	}
	for k := range b {
		if _, ok := a[k]; !ok {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	var dot, na, nb float64
	for _, k := range keys {
		va, vb := a[k], b[k]
		dot += va * vb
		na += va * va
		nb += vb * vb
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return math.Min(1, dot/math.Sqrt(na*nb))
}

// Neighbors returns up to k learners whose similarity to learnerID exceeds
// minSimilarity, most similar first, ties broken by learner ID.
func Neighbors(m Matrix, learnerID string, k int, minSimilarity float64) []Neighbor {
	target, ok := m[learnerID]
	if !ok || len(target) == 0 {
		return nil
	}

	var out []Neighbor
	for _, other := range m.Learners() {
		if other == learnerID {
			continue
		}
		if sim := Cosine(target, m[other]); sim > minSimilarity {
			out = append(out, Neighbor{LearnerID: other, Similarity: sim})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Similarity != out[j].Similarity {
			return out[i].Similarity > out[j].Similarity
		}
		return out[i].LearnerID < out[j].LearnerID
	})
	if k > 0 && len(out) > k {
		out = out[:k]
	}
	return out
}
