package advisor

import (
	"github.com/abhisek/masteryrank/internal/knowledge"
	"github.com/abhisek/masteryrank/internal/planner"
	"github.com/abhisek/masteryrank/internal/recommend"
)

// Input is the read-only view of a learner handed to the model.
type Input struct {
	LearnerID       string
	Predictions     []knowledge.Prediction
	Path            []planner.Step
	Recommendations []recommend.Result
}

func (in Input) empty() bool {
	return len(in.Predictions) == 0 && len(in.Path) == 0
}

// StudyPlan is a structured week plan proposed by the model.
type StudyPlan struct {
	Summary       string    `json:"summary"`
	Sessions      []Session `json:"sessions"`
	Encouragement string    `json:"encouragement"`
}

// Session is one block of a StudyPlan.
type Session struct {
	Day     int    `json:"day"`
	SkillID string `json:"skill_id"`
	Minutes int    `json:"minutes"`
	Focus   string `json:"focus"`
}

// TotalMinutes sums the planned session lengths.
func (p StudyPlan) TotalMinutes() int {
	total := 0
	for _, s := range p.Sessions {
		total += s.Minutes
	}
	return total
}
