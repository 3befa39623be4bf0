package recommend

import (
	"math"
	"sort"
	"time"

	"github.com/abhisek/masteryrank/internal/behavior"
	"github.com/abhisek/masteryrank/internal/clock"
)

// baseRatings is the implicit strength of each behavior type.
var baseRatings = map[behavior.BehaviorType]float64{
	behavior.BehaviorView:     1,
	behavior.BehaviorPractice: 3,
	behavior.BehaviorCollect:  4,
	behavior.BehaviorCorrect:  5,
	behavior.BehaviorWrong:    2,
}

const (
	durationBonusSeconds = 300 // seconds for the full +1 duration bonus
	ratingDecayDays      = 30
)

// ImplicitRating converts one event into a rating as seen at now:
// base rating, up to +1 for study time, up to +2 for the score, then
// scaled by 0.5 + 0.5*exp(-age/30d).
func ImplicitRating(e behavior.Event, now time.Time) float64 {
	rating := baseRatings[e.BehaviorType]
	if e.DurationSeconds != nil && *e.DurationSeconds > 0 {
		rating += math.Min(*e.DurationSeconds/durationBonusSeconds, 1)
	}
	if e.Score != nil {
		rating += *e.Score / 100 * 2
	}
	ageDays := clock.DaysBetween(e.Timestamp, now)
	return rating * (0.5 + 0.5*math.Exp(-ageDays/ratingDecayDays))
}

// Matrix is the sparse learner -> item -> accumulated rating table.
type Matrix map[string]map[string]float64

// BuildMatrix folds every stored event into a rating matrix evaluated at now.
// Ratings for the same (learner, item) pair accumulate additively.
func BuildMatrix(store *behavior.Store, now time.Time) Matrix {
	m := make(Matrix)
	store.Each(func(e behavior.Event) {
		row, ok := m[e.LearnerID]
		if !ok {
			row = make(map[string]float64)
			m[e.LearnerID] = row
		}
		row[e.ItemID] += ImplicitRating(e, now)
	})
	return m
}

// Rating returns the learner's accumulated rating for an item.
func (m Matrix) Rating(learnerID, itemID string) (float64, bool) {
	v, ok := m[learnerID][itemID]
	return v, ok
}

// Learners returns every learner in the matrix, sorted.
func (m Matrix) Learners() []string {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
