package planner

import (
	"math"
	"sort"
	"strings"

	"github.com/abhisek/masteryrank/internal/clock"
	"github.com/abhisek/masteryrank/internal/knowledge"
)

// Step is one entry of a prioritized study plan.
type Step struct {
	SkillID            string              `json:"skillId"`
	SkillName          string              `json:"skillName,omitempty"`
	Priority           float64             `json:"priority"` // 1-10
	EstimatedMinutes   float64             `json:"estimatedMinutes"`
	DifficultyEstimate float64             `json:"difficultyEstimate"`
	Prerequisites      []string            `json:"prerequisites"`
	Reason             string              `json:"reason"`
	Mastery            float64             `json:"mastery"`
	RiskLevel          knowledge.RiskLevel `json:"riskLevel"`
}

// Planner turns tracker output into a review plan.
type Planner struct {
	tracker *knowledge.Tracker
	prereqs map[string][]string
}

// New creates a planner reading from the given tracker.
func New(tracker *knowledge.Tracker) *Planner {
	return &Planner{tracker: tracker}
}

// WithPrerequisites attaches a skill -> prerequisite skills graph used to
// fill Step.Prerequisites.
func (p *Planner) WithPrerequisites(graph map[string][]string) *Planner {
	p.prereqs = graph
	return p
}

// GeneratePath builds the learner's plan, highest priority first. Skills
// with equal priority are ordered by ID.
//
// Priority = 4(1-mastery) + risk bonus (3 high, 1.5 medium) +
// min(2, idle days/7) + 1 if declining, clamped to [1,10].
func (p *Planner) GeneratePath(learnerID string) []Step {
	now := p.tracker.Now()
	var steps []Step

	for _, st := range p.tracker.States(learnerID) {
		pred, ok := p.tracker.Predict(learnerID, st.SkillID)
		if !ok {
			continue
		}
		idleDays := clock.DaysBetween(st.LastPracticeTime, now)

		priority := 4 * (1 - pred.CurrentMastery)
		priority += riskBonus(pred.RiskLevel)
		priority += math.Min(2, idleDays/7)
		if st.Trend == knowledge.TrendDeclining {
			priority++
		}
		priority = math.Min(10, math.Max(1, priority))

		steps = append(steps, Step{
			SkillID:            st.SkillID,
			SkillName:          st.SkillName,
			Priority:           priority,
			EstimatedMinutes:   pred.TimeToMastery.Minutes(),
			DifficultyEstimate: p.tracker.DifficultyEstimate(learnerID, st.SkillID),
			Prerequisites:      p.prerequisitesOf(st.SkillID),
			Reason:             reason(pred.CurrentMastery, pred.RiskLevel, idleDays, st.Trend),
			Mastery:            pred.CurrentMastery,
			RiskLevel:          pred.RiskLevel,
		})
	}

	sort.SliceStable(steps, func(i, j int) bool {
		if steps[i].Priority != steps[j].Priority {
			return steps[i].Priority > steps[j].Priority
		}
		return steps[i].SkillID < steps[j].SkillID
	})
	return steps
}

// Top returns at most n steps of a plan. n <= 0 returns the whole plan.
func Top(path []Step, n int) []Step {
	if n <= 0 || n >= len(path) {
		return path
	}
	return path[:n]
}

func riskBonus(r knowledge.RiskLevel) float64 {
	switch r {
	case knowledge.RiskHigh:
		return 3
	case knowledge.RiskMedium:
		return 1.5
	default:
		return 0
	}
}

func reason(mastery float64, risk knowledge.RiskLevel, idleDays float64, trend knowledge.Trend) string {
	var parts []string
	if mastery < 0.4 {
		parts = append(parts, "weak foundation")
	}
	if risk == knowledge.RiskHigh {
		parts = append(parts, "high forgetting risk")
	}
	if idleDays > 7 {
		parts = append(parts, "not practiced for over a week")
	}
	if trend == knowledge.TrendDeclining {
		parts = append(parts, "recent performance declining")
	}
	if len(parts) == 0 {
		return "keep consolidating"
	}
	return strings.Join(parts, ", ")
}

func (p *Planner) prerequisitesOf(skillID string) []string {
	pre := append([]string{}, p.prereqs[skillID]...)
	sort.Strings(pre)
	return pre
}
