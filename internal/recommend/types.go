package recommend

import (
	"fmt"
	"math"

	"github.com/abhisek/masteryrank/internal/apperr"
	"github.com/abhisek/masteryrank/internal/behavior"
)

// Weights blends the three ranking signals.
type Weights struct {
	CF         float64 `yaml:"cf" json:"cf"`
	Content    float64 `yaml:"content" json:"content"`
	Popularity float64 `yaml:"popularity" json:"popularity"`
}

// DefaultWeights returns the 0.4 / 0.4 / 0.2 blend.
func DefaultWeights() Weights {
	return Weights{CF: 0.4, Content: 0.4, Popularity: 0.2}
}

// Validate rejects negative or non-finite weights and an all-zero blend.
// Weights need not sum to 1; the ranker uses them as proportions.
func (w Weights) Validate() error {
	fields := []struct {
		name string
		v    float64
	}{{"cf", w.CF}, {"content", w.Content}, {"popularity", w.Popularity}}
	for _, f := range fields {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) || f.v < 0 {
			return apperr.Invalid("weights."+f.name, "must be a finite non-negative number, got %v", f.v)
		}
	}
	if w.sum() == 0 {
		return apperr.Invalid("weights", "at least one weight must be positive")
	}
	return nil
}

func (w Weights) sum() float64 {
	return w.CF + w.Content + w.Popularity
}

// normalized scales the weights to sum to 1 so blended scores stay in [0,1].
func (w Weights) normalized() Weights {
	s := w.sum()
	if s == 0 {
		return w
	}
	return Weights{CF: w.CF / s, Content: w.Content / s, Popularity: w.Popularity / s}
}

// Config tunes the ranker.
type Config struct {
	Weights       Weights `yaml:"weights"`
	Neighbors     int     `yaml:"neighbors"`
	MinSimilarity float64 `yaml:"min_similarity"`
	ProfileTags   int     `yaml:"profile_tags"`
	ProfileSkills int     `yaml:"profile_skills"`
}

// DefaultConfig returns the standard ranker configuration.
func DefaultConfig() Config {
	return Config{
		Weights:       DefaultWeights(),
		Neighbors:     20,
		MinSimilarity: 0.1,
		ProfileTags:   5,
		ProfileSkills: 10,
	}
}

// Validate checks the configuration for consistency.
func (c Config) Validate() error {
	if err := c.Weights.Validate(); err != nil {
		return err
	}
	if c.Neighbors <= 0 {
		return apperr.Invalid("neighbors", "must be positive, got %d", c.Neighbors)
	}
	if math.IsNaN(c.MinSimilarity) || c.MinSimilarity < 0 || c.MinSimilarity >= 1 {
		return apperr.Invalid("min_similarity", "must be in [0,1), got %v", c.MinSimilarity)
	}
	if c.ProfileTags <= 0 || c.ProfileSkills <= 0 {
		return apperr.Invalid("profile", "tag and skill limits must be positive")
	}
	return nil
}

// Signals holds the per-item signal values before blending.
type Signals struct {
	CF         float64 `json:"cf"`
	Content    float64 `json:"content"`
	Popularity float64 `json:"popularity"`
}

// Result is one ranked recommendation.
type Result struct {
	Item        behavior.Item `json:"item"`
	Score       float64       `json:"score"`
	BaseScore   float64       `json:"baseScore"`
	Reason      string        `json:"reason"`
	Confidence  float64       `json:"confidence"`
	Diversity   float64       `json:"diversity"`
	Novelty     float64       `json:"novelty"`
	Explanation []string      `json:"explanation"`
	Signals     Signals       `json:"signals"`
}

func (r Result) String() string {
	return fmt.Sprintf("%s score=%.3f confidence=%.0f", r.Item.ID, r.Score, r.Confidence)
}
