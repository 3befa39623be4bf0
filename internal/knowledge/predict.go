package knowledge

import (
	"math"
	"sort"
	"time"

	"github.com/abhisek/masteryrank/internal/clock"
)

// Predict forecasts a learner's performance on a skill. It returns false
// for a pair the tracker has never seen.
func (t *Tracker) Predict(learnerID, skillID string) (Prediction, bool) {
	st, ok := t.states[Key{Learner: learnerID, Skill: skillID}]
	if !ok {
		return Prediction{}, false
	}

	now := t.now()
	current := t.MasteryAt(*st, now)
	predicted := t.MasteryAt(*st, now.Add(t.params.Horizon))
	risk := RiskFor(predicted)

	return Prediction{
		LearnerID:          st.LearnerID,
		SkillID:            st.SkillID,
		SkillName:          st.SkillName,
		CurrentMastery:     current,
		PredictedMastery:   predicted,
		Horizon:            t.params.Horizon,
		SuccessProbability: t.SuccessProbability(current),
		RecommendedAction:  ActionFor(current),
		RiskLevel:          risk,
		TimeToMastery:      TimeToMastery(current, st.AvgResponseTime),
		Suggestions:        suggestions(*st, current, risk, clock.DaysBetween(st.LastPracticeTime, now)),
	}, true
}

// SuccessProbability is P(correct) = m(1-slip) + (1-m)guess.
func (t *Tracker) SuccessProbability(mastery float64) float64 {
	m := clamp01(mastery)
	return m*(1-t.params.PSlip) + (1-m)*t.params.PGuess
}

// TimeToMastery estimates the practice time needed to reach 0.9 mastery,
// assuming each practice adds 0.05 and costs twice the average response
// time once explanations are included.
func TimeToMastery(mastery, avgResponseSeconds float64) time.Duration {
	if mastery >= masteryTarget {
		return 0
	}
	// The epsilon keeps float noise such as 2.0000000000000004 from
	// rounding up an extra practice.
	practices := math.Ceil((masteryTarget-mastery)/masteryStep - 1e-9)
	seconds := practices * avgResponseSeconds * 2
	return time.Duration(seconds * float64(time.Second))
}

func suggestions(st State, mastery float64, risk RiskLevel, idleDays float64) []string {
	var out []string

	switch {
	case mastery < 0.4:
		out = append(out,
			"Start again from the core concepts of this skill",
			"Watch a worked explanation before practicing")
	case mastery < 0.7:
		out = append(out,
			"Keep practicing and focus on the mistakes you repeat",
			"Try medium-difficulty questions")
	case mastery < masteryTarget:
		out = append(out,
			"Challenge yourself with harder questions",
			"Summarize the key ideas in your own words")
	default:
		out = append(out,
			"Mastered: explain it to someone else to lock it in",
			"Occasional review will keep it fresh")
	}

	switch risk {
	case RiskHigh:
		out = append(out, "High forgetting risk: review this soon")
	case RiskMedium:
		out = append(out, "Plan a review within the next 3 days")
	}

	switch st.Trend {
	case TrendDeclining:
		out = append(out, "Recent results are slipping: try a different study approach")
	case TrendImproving:
		out = append(out, "Good momentum: keep the current pace")
	}

	if idleDays > 7 {
		out = append(out, "Not practiced for over a week: revisit it")
	}
	return out
}

// WeakSkills returns a learner's skills whose current mastery is below 0.6,
// weakest first.
func (t *Tracker) WeakSkills(learnerID string) []State {
	now := t.now()
	type scored struct {
		st      State
		mastery float64
	}
	var weak []scored
	for _, st := range t.States(learnerID) {
		if m := t.MasteryAt(st, now); m < 0.6 {
			weak = append(weak, scored{st: st, mastery: m})
		}
	}
	sort.SliceStable(weak, func(i, j int) bool { return weak[i].mastery < weak[j].mastery })

	out := make([]State, len(weak))
	for i, w := range weak {
		out[i] = w.st
	}
	return out
}

// ReviewNeeded returns a learner's skills idle for more than three days
// that are not yet mastered, sorted by skill ID.
func (t *Tracker) ReviewNeeded(learnerID string) []State {
	now := t.now()
	var out []State
	for _, st := range t.States(learnerID) {
		if clock.DaysBetween(st.LastPracticeTime, now) > 3 && t.MasteryAt(st, now) < masteryTarget {
			out = append(out, st)
		}
	}
	return out
}

// DifficultyEstimate returns the perceived difficulty of a skill for a
// learner: the average attempted difficulty inflated by the error rate,
// capped at 5. Unknown pairs default to 3.
func (t *Tracker) DifficultyEstimate(learnerID, skillID string) float64 {
	key := Key{Learner: learnerID, Skill: skillID}
	h, ok := t.history[key]
	st, hasState := t.states[key]
	if !ok || !hasState || h.records == 0 {
		return 3
	}
	avg := h.difficultySum / float64(h.records)
	return math.Min(5, avg*(2-st.Accuracy()))
}
