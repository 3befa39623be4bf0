package knowledge

import "time"

// Key identifies a (learner, skill) pair.
type Key struct {
	Learner string
	Skill   string
}

// Record is a single practice attempt. Immutable once created.
type Record struct {
	LearnerID           string    `json:"learnerId"`
	SkillID             string    `json:"skillId"`
	SkillName           string    `json:"skillName,omitempty"`
	Timestamp           time.Time `json:"timestamp"`
	Correct             bool      `json:"isCorrect"`
	ResponseTimeSeconds float64   `json:"responseTimeSeconds"`
	Difficulty          float64   `json:"difficulty"` // 1-5
	AttemptCount        int       `json:"attemptCount"`
	HintUsed            bool      `json:"hintUsed"`
}

// Trend describes the recent direction of a learner's performance on a skill.
type Trend string

const (
	TrendImproving Trend = "improving"
	TrendStable    Trend = "stable"
	TrendDeclining Trend = "declining"
)

// State is the mastery estimate for one (learner, skill) pair.
type State struct {
	LearnerID        string    `json:"learnerId"`
	SkillID          string    `json:"skillId"`
	SkillName        string    `json:"skillName,omitempty"`
	MasteryLevel     float64   `json:"masteryLevel"` // as of LastPracticeTime
	Confidence       float64   `json:"confidence"`
	ForgettingRate   float64   `json:"forgettingRate"` // per day
	LastPracticeTime time.Time `json:"lastPracticeTime"`
	TotalAttempts    int       `json:"totalAttempts"`
	CorrectAttempts  int       `json:"correctAttempts"`
	AvgResponseTime  float64   `json:"avgResponseTime"` // seconds
	Trend            Trend     `json:"trend"`
}

// Accuracy returns the share of correct attempts.
func (s State) Accuracy() float64 {
	if s.TotalAttempts == 0 {
		return 0
	}
	return float64(s.CorrectAttempts) / float64(s.TotalAttempts)
}

// Action is the next step recommended for a skill.
type Action string

const (
	ActionReview   Action = "review"
	ActionPractice Action = "practice"
	ActionAdvance  Action = "advance"
	ActionMaster   Action = "master"
)

// ActionFor maps a mastery level to a recommended action.
func ActionFor(mastery float64) Action {
	switch {
	case mastery >= 0.9:
		return ActionMaster
	case mastery >= 0.7:
		return ActionAdvance
	case mastery >= 0.4:
		return ActionPractice
	default:
		return ActionReview
	}
}

// RiskLevel grades how likely a skill is to be forgotten.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// RiskFor maps a predicted mastery level to a forgetting risk.
func RiskFor(predicted float64) RiskLevel {
	switch {
	case predicted >= 0.7:
		return RiskLow
	case predicted >= 0.4:
		return RiskMedium
	default:
		return RiskHigh
	}
}

// Prediction is the forecast for one (learner, skill) pair.
type Prediction struct {
	LearnerID          string        `json:"learnerId"`
	SkillID            string        `json:"skillId"`
	SkillName          string        `json:"skillName,omitempty"`
	CurrentMastery     float64       `json:"currentMastery"`
	PredictedMastery   float64       `json:"predictedMastery"`
	Horizon            time.Duration `json:"horizon"`
	SuccessProbability float64       `json:"successProbability"`
	RecommendedAction  Action        `json:"recommendedAction"`
	RiskLevel          RiskLevel     `json:"riskLevel"`
	TimeToMastery      time.Duration `json:"timeToMastery"`
	Suggestions        []string      `json:"suggestions"`
}
