package knowledge

import (
	"fmt"
	"math"
	"time"

	"github.com/abhisek/masteryrank/internal/apperr"
)

// Params holds the Bayesian Knowledge Tracing constants.
type Params struct {
	PInit   float64 `yaml:"p_init"`   // mastery assigned on the first record
	PLearn  float64 `yaml:"p_learn"`  // gain rate on a correct answer
	PForget float64 `yaml:"p_forget"` // base forgetting rate per day
	PSlip   float64 `yaml:"p_slip"`   // wrong despite mastery
	PGuess  float64 `yaml:"p_guess"`  // right despite no mastery

	// Horizon is how far ahead Predict looks.
	Horizon time.Duration `yaml:"horizon"`

	// FastAnswerSeconds is the response time under which a correct
	// answer earns the speed bonus.
	FastAnswerSeconds float64 `yaml:"fast_answer_seconds"`
}

const (
	fastAnswerBonus = 1.1
	hintPenalty     = 0.9
	trendWindow     = 5
	trendMinRecords = 3
	masteryTarget   = 0.9
	masteryStep     = 0.05
)

// DefaultParams returns the standard tracker constants.
func DefaultParams() Params {
	return Params{
		PInit:             0.1,
		PLearn:            0.3,
		PForget:           0.1,
		PSlip:             0.1,
		PGuess:            0.2,
		Horizon:           7 * 24 * time.Hour,
		FastAnswerSeconds: 30,
	}
}

// Validate checks that every probability lies in [0,1] and rates are positive.
func (p Params) Validate() error {
	probs := []struct {
		name string
		v    float64
	}{
		{"p_init", p.PInit},
		{"p_learn", p.PLearn},
		{"p_slip", p.PSlip},
		{"p_guess", p.PGuess},
	}
	for _, pr := range probs {
		if math.IsNaN(pr.v) || pr.v < 0 || pr.v > 1 {
			return apperr.Invalid(pr.name, "must be within [0,1], got %v", pr.v)
		}
	}
	if math.IsNaN(p.PForget) || math.IsInf(p.PForget, 0) || p.PForget <= 0 {
		return apperr.Invalid("p_forget", "must be a finite number > 0, got %v", p.PForget)
	}
	if p.Horizon < 0 {
		return apperr.Invalid("horizon", "must be >= 0, got %s", p.Horizon)
	}
	if math.IsNaN(p.FastAnswerSeconds) || p.FastAnswerSeconds < 0 {
		return apperr.Invalid("fast_answer_seconds", "must be >= 0, got %v", p.FastAnswerSeconds)
	}
	return nil
}

// DifficultyFactor scales the learning gain: 0.6 at difficulty 1, 1.0 at 5.
func DifficultyFactor(difficulty float64) float64 {
	return 0.5 + 0.1*difficulty
}

// Fingerprint identifies the constants that shape stored states. Predict-only
// settings (PGuess, Horizon) are left out since they never reach State.
func (p Params) Fingerprint() string {
	return fmt.Sprintf("init=%g learn=%g forget=%g slip=%g fast=%g",
		p.PInit, p.PLearn, p.PForget, p.PSlip, p.FastAnswerSeconds)
}
