package knowledge

import (
	"math"
	"sort"
	"time"

	"github.com/abhisek/masteryrank/internal/apperr"
	"github.com/abhisek/masteryrank/internal/clock"
)

// Tracker maintains per-(learner, skill) mastery estimates using Bayesian
// Knowledge Tracing with an exponential forgetting term.
//
// A Tracker is not safe for concurrent use.
type Tracker struct {
	params  Params
	now     clock.Clock
	states  map[Key]*State
	history map[Key]*history
}

// history is the compact practice history the update rules need.
// The sum of consecutive practice intervals telescopes to last-first,
// so the full record list is never retained.
type history struct {
	first         time.Time
	last          time.Time
	records       int
	recent        []bool // last trendWindow outcomes, oldest first
	difficultySum float64
}

func (h *history) push(r Record) {
	if h.records == 0 {
		h.first = r.Timestamp
	}
	h.last = r.Timestamp
	h.records++
	h.difficultySum += r.Difficulty
	h.recent = append(h.recent, r.Correct)
	if len(h.recent) > trendWindow {
		h.recent = h.recent[len(h.recent)-trendWindow:]
	}
}

func (h *history) recentCorrectRate() float64 {
	if len(h.recent) == 0 {
		return 0
	}
	n := 0
	for _, ok := range h.recent {
		if ok {
			n++
		}
	}
	return float64(n) / float64(len(h.recent))
}

// NewTracker creates an empty tracker. A nil clock uses the system clock.
func NewTracker(params Params, now clock.Clock) *Tracker {
	return &Tracker{
		params:  params,
		now:     clock.Or(now),
		states:  make(map[Key]*State),
		history: make(map[Key]*history),
	}
}

// Params returns the tracker's constants.
func (t *Tracker) Params() Params {
	return t.params
}

// ValidateRecord checks a record against the input constraints.
func ValidateRecord(r Record) error {
	switch {
	case r.LearnerID == "":
		return apperr.Invalid("learnerId", "must not be empty")
	case r.SkillID == "":
		return apperr.Invalid("skillId", "must not be empty")
	case r.Timestamp.IsZero():
		return apperr.Invalid("timestamp", "must be set")
	case r.ResponseTimeSeconds < 0 || math.IsNaN(r.ResponseTimeSeconds):
		return apperr.Invalid("responseTimeSeconds", "must be >= 0, got %v", r.ResponseTimeSeconds)
	case r.Difficulty < 1 || r.Difficulty > 5 || math.IsNaN(r.Difficulty):
		return apperr.Invalid("difficulty", "must be within [1,5], got %v", r.Difficulty)
	case r.AttemptCount < 0:
		return apperr.Invalid("attemptCount", "must be >= 0, got %d", r.AttemptCount)
	}
	return nil
}

// Apply folds a practice record into the (learner, skill) state, creating
// it on first sight. Invalid records are rejected without touching state.
func (t *Tracker) Apply(r Record) error {
	if err := ValidateRecord(r); err != nil {
		return err
	}

	key := Key{Learner: r.LearnerID, Skill: r.SkillID}
	st, ok := t.states[key]
	if !ok {
		st = &State{
			LearnerID:        r.LearnerID,
			SkillID:          r.SkillID,
			MasteryLevel:     t.params.PInit,
			Confidence:       0.5,
			ForgettingRate:   t.params.PForget,
			LastPracticeTime: r.Timestamp,
			Trend:            TrendStable,
		}
		t.states[key] = st
	}
	if r.SkillName != "" {
		st.SkillName = r.SkillName
	}

	h, ok := t.history[key]
	if !ok {
		h = &history{}
		t.history[key] = h
	}
	h.push(r)

	// Decay from the stored anchor to the moment of this attempt.
	decayed := decay(st.MasteryLevel, st.ForgettingRate, clock.DaysBetween(st.LastPracticeTime, r.Timestamp))

	var next float64
	if r.Correct {
		gain := (1 - decayed) * t.params.PLearn * DifficultyFactor(r.Difficulty)
		next = decayed + gain
		if r.ResponseTimeSeconds < t.params.FastAnswerSeconds {
			next = math.Min(1, next*fastAnswerBonus)
		}
	} else {
		slip := t.params.PSlip * (1 + r.Difficulty/5)
		next = decayed * (1 - slip)
		if r.HintUsed {
			next *= hintPenalty
		}
	}
	next = clamp01(next)

	st.TotalAttempts++
	if r.Correct {
		st.CorrectAttempts++
	}
	st.AvgResponseTime = (st.AvgResponseTime*float64(st.TotalAttempts-1) + r.ResponseTimeSeconds) /
		float64(st.TotalAttempts)
	st.Confidence = math.Min(1, 0.5+0.05*float64(st.TotalAttempts))
	st.Trend = classifyTrend(h, next, st.MasteryLevel)

	st.MasteryLevel = next
	if r.Timestamp.After(st.LastPracticeTime) {
		st.LastPracticeTime = r.Timestamp
	}
	st.ForgettingRate = t.forgettingRate(h)

	return nil
}

// classifyTrend compares the mastery delta with the recent correct rate.
func classifyTrend(h *history, next, prev float64) Trend {
	if h.records < trendMinRecords {
		return TrendStable
	}
	rate := h.recentCorrectRate()
	switch {
	case next > prev && rate > 0.6:
		return TrendImproving
	case next < prev || rate < 0.4:
		return TrendDeclining
	default:
		return TrendStable
	}
}

// forgettingRate scales the base rate by the average practice interval:
// weekly practice keeps the base rate, tighter spacing lowers it.
func (t *Tracker) forgettingRate(h *history) float64 {
	if h.records < 2 {
		return t.params.PForget
	}
	avgDays := clock.DaysBetween(h.first, h.last) / float64(h.records-1)
	factor := math.Min(2, math.Max(0.5, avgDays/7))
	return t.params.PForget * factor
}

// MasteryAt returns the state's mastery decayed from its anchor to at.
// This is the single place forgetting is applied outside Apply.
func (t *Tracker) MasteryAt(st State, at time.Time) float64 {
	return decay(st.MasteryLevel, st.ForgettingRate, clock.DaysBetween(st.LastPracticeTime, at))
}

// CurrentMastery returns the state's mastery decayed to the tracker's now.
func (t *Tracker) CurrentMastery(st State) float64 {
	return t.MasteryAt(st, t.now())
}

// Now returns the tracker clock's current instant.
func (t *Tracker) Now() time.Time {
	return t.now()
}

// State returns a copy of the state for a pair.
func (t *Tracker) State(learnerID, skillID string) (State, bool) {
	st, ok := t.states[Key{Learner: learnerID, Skill: skillID}]
	if !ok {
		return State{}, false
	}
	return *st, true
}

// States returns copies of every state for a learner, sorted by skill ID.
func (t *Tracker) States(learnerID string) []State {
	var out []State
	for k, st := range t.states {
		if k.Learner == learnerID {
			out = append(out, *st)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SkillID < out[j].SkillID })
	return out
}

// Learners returns every learner with at least one state, sorted.
func (t *Tracker) Learners() []string {
	seen := make(map[string]bool)
	var out []string
	for k := range t.states {
		if !seen[k.Learner] {
			seen[k.Learner] = true
			out = append(out, k.Learner)
		}
	}
	sort.Strings(out)
	return out
}

// Len returns the number of tracked pairs.
func (t *Tracker) Len() int {
	return len(t.states)
}

// Reset drops every state and history.
func (t *Tracker) Reset() {
	t.states = make(map[Key]*State)
	t.history = make(map[Key]*history)
}

func decay(mastery, rate, days float64) float64 {
	if days <= 0 {
		return mastery
	}
	return mastery * math.Exp(-rate*days)
}

func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
