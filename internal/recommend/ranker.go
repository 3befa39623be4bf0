package recommend

import (
	"math"
	"sort"
	"time"

	"github.com/abhisek/masteryrank/internal/apperr"
	"github.com/abhisek/masteryrank/internal/behavior"
	"github.com/abhisek/masteryrank/internal/clock"
)

const (
	signalThreshold = 0.5
	noveltyScale    = 10
)

// Explanation lines attached to results.
const (
	ExplainCF         = "Learners with similar interests are studying this"
	ExplainContent    = "Matches your learning preferences and skill profile"
	ExplainPopularity = "Popular and well reviewed"
	ExplainDefault    = "Picked for your learning journey"
)

// Ranker blends collaborative, content and popularity signals over the
// behavior store and item catalog it was built with.
type Ranker struct {
	behaviors *behavior.Store
	catalog   *behavior.Catalog
	now       clock.Clock
	cfg       Config
}

// NewRanker creates a ranker. A nil clock uses the system clock.
func NewRanker(behaviors *behavior.Store, catalog *behavior.Catalog, now clock.Clock, cfg Config) *Ranker {
	return &Ranker{behaviors: behaviors, catalog: catalog, now: clock.Or(now), cfg: cfg}
}

// Config returns the ranker configuration.
func (r *Ranker) Config() Config {
	return r.cfg
}

// Recommend ranks candidates for a learner and returns at most topN results.
// Duplicate candidate IDs are collapsed to their first occurrence.
func (r *Ranker) Recommend(learnerID string, candidates []behavior.Item, topN int, diversityWeight float64) ([]Result, error) {
	if topN <= 0 {
		return nil, apperr.Invalid("topN", "must be positive, got %d", topN)
	}
	if math.IsNaN(diversityWeight) || diversityWeight < 0 || diversityWeight > 1 {
		return nil, apperr.Invalid("diversityWeight", "must be in [0,1], got %v", diversityWeight)
	}
	items := dedupe(candidates)
	if len(items) == 0 {
		return nil, apperr.Invalid("candidates", "at least one candidate item is required")
	}

	now := r.now()
	matrix := BuildMatrix(r.behaviors, now)
	row := matrix[learnerID]

	cf := r.collaborative(matrix, learnerID, items)
	content := r.contentScores(learnerID, items)
	pop := Popularity(items)
	div := Diversity(items)

	w := r.cfg.Weights.normalized()
	results := make([]Result, 0, len(items))
	for _, it := range items {
		sig := Signals{CF: cf[it.ID], Content: content[it.ID], Popularity: pop[it.ID]}
		base := sig.CF*w.CF + sig.Content*w.Content + sig.Popularity*w.Popularity

		novelty := 1.0
		if rating, ok := row[it.ID]; ok {
			novelty = max(0, 1-rating/noveltyScale)
		}
		diversity := div[it.ID]

		results = append(results, Result{
			Item:        it,
			Score:       base*(1-diversityWeight) + diversity*diversityWeight,
			BaseScore:   base,
			Reason:      reasonFor(base),
			Confidence:  (base*0.6 + diversity*0.2 + novelty*0.2) * 100,
			Diversity:   diversity,
			Novelty:     novelty,
			Explanation: explain(sig),
			Signals:     sig,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Item.ID < results[j].Item.ID
	})
	if len(results) > topN {
		results = results[:topN]
	}
	return results, nil
}

// collaborative predicts ratings for unrated candidates as the
// similarity-weighted mean of neighbor ratings, normalized by the
// largest prediction in the set.
func (r *Ranker) collaborative(m Matrix, learnerID string, items []behavior.Item) map[string]float64 {
	scores := make(map[string]float64)
	neighbors := Neighbors(m, learnerID, r.cfg.Neighbors, r.cfg.MinSimilarity)
	if len(neighbors) == 0 {
		return scores
	}
	row := m[learnerID]

	var hi float64
	for _, it := range items {
		if _, rated := row[it.ID]; rated {
			continue
		}
		var weighted, simSum float64
		for _, n := range neighbors {
			if v, ok := m[n.LearnerID][it.ID]; ok {
				weighted += n.Similarity * v
				simSum += n.Similarity
			}
		}
		if simSum > 0 {
			v := weighted / simSum
			scores[it.ID] = v
			hi = max(hi, v)
		}
	}
	if hi > 0 {
		for id, v := range scores {
			scores[id] = v / hi
		}
	}
	return scores
}

func (r *Ranker) contentScores(learnerID string, items []behavior.Item) map[string]float64 {
	scores := make(map[string]float64)
	profile, ok := BuildProfile(r.behaviors.Events(learnerID), r.catalog, r.cfg.ProfileTags, r.cfg.ProfileSkills)
	if !ok {
		return scores
	}
	for _, it := range items {
		scores[it.ID] = ContentSimilarity(profile, it)
	}
	return scores
}

// Profile returns the content profile of a learner, if any history maps
// onto the catalog.
func (r *Ranker) Profile(learnerID string) (Profile, bool) {
	return BuildProfile(r.behaviors.Events(learnerID), r.catalog, r.cfg.ProfileTags, r.cfg.ProfileSkills)
}

// SimilarLearners returns the learner's nearest neighbors at time at.
func (r *Ranker) SimilarLearners(learnerID string, at time.Time) []Neighbor {
	return Neighbors(BuildMatrix(r.behaviors, at), learnerID, r.cfg.Neighbors, r.cfg.MinSimilarity)
}

func reasonFor(score float64) string {
	switch {
	case score > 0.8:
		return "Strongly recommended"
	case score > 0.6:
		return "Recommended"
	case score > 0.4:
		return "Worth trying"
	default:
		return "May explore"
	}
}

func explain(s Signals) []string {
	var out []string
	if s.CF > signalThreshold {
		out = append(out, ExplainCF)
	}
	if s.Content > signalThreshold {
		out = append(out, ExplainContent)
	}
	if s.Popularity > signalThreshold {
		out = append(out, ExplainPopularity)
	}
	if len(out) == 0 {
		out = append(out, ExplainDefault)
	}
	return out
}

func dedupe(items []behavior.Item) []behavior.Item {
	seen := make(map[string]bool, len(items))
	out := make([]behavior.Item, 0, len(items))
	for _, it := range items {
		if seen[it.ID] {
			continue
		}
		seen[it.ID] = true
		out = append(out, it)
	}
	return out
}
