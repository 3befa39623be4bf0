package advisor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/abhisek/masteryrank/internal/llm"
)

// ErrNoHistory is returned when the learner has nothing to advise on.
var ErrNoHistory = errors.New("learner has no practice history")

// Service turns tracker output into tutoring text through an LLM. It only
// reads the Input it is given.
type Service struct {
	provider llm.Provider
	cfg      Config
}

// NewService creates an advisor service.
func NewService(provider llm.Provider, cfg Config) *Service {
	return &Service{provider: provider, cfg: cfg}
}

// Advise streams a narrative study recommendation. The stream is lazy:
// nothing is requested until it is ranged over.
func (s *Service) Advise(ctx context.Context, in Input) llm.Stream {
	if in.empty() {
		return func(yield func(llm.Chunk, error) bool) {
			yield(llm.Chunk{}, ErrNoHistory)
		}
	}

	ctx = llm.WithLearner(llm.WithPurpose(ctx, llm.PurposeAdvice), in.LearnerID)
	return s.provider.Stream(ctx, llm.Request{
		System: adviceSystemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildAdviceUserMessage(in, s.cfg.MaxSkills)},
		},
		MaxTokens:   s.cfg.MaxTokens,
		Temperature: s.cfg.Temperature,
	})
}

// Plan asks for a structured study plan. Sessions naming skills outside
// the input are dropped.
func (s *Service) Plan(ctx context.Context, in Input) (*StudyPlan, error) {
	if in.empty() {
		return nil, ErrNoHistory
	}

	ctx = llm.WithLearner(llm.WithPurpose(ctx, llm.PurposePlan), in.LearnerID)
	resp, err := llm.Generate(ctx, s.provider, llm.Request{
		System: planSystemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildPlanUserMessage(in, s.cfg.MaxSkills, s.cfg.Days)},
		},
		Schema:      StudyPlanSchema,
		MaxTokens:   s.cfg.MaxTokens,
		Temperature: s.cfg.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("study plan generation: %w", err)
	}

	var plan StudyPlan
	if err := json.Unmarshal(resp.Content, &plan); err != nil {
		return nil, fmt.Errorf("parse study plan: %w", err)
	}

	known := knownSkills(in)
	kept := plan.Sessions[:0]
	for _, sess := range plan.Sessions {
		if known[sess.SkillID] && sess.Day <= s.cfg.Days {
			kept = append(kept, sess)
		}
	}
	plan.Sessions = kept
	if len(plan.Sessions) == 0 {
		return nil, fmt.Errorf("study plan names no known skills")
	}
	return &plan, nil
}

func knownSkills(in Input) map[string]bool {
	known := make(map[string]bool, len(in.Predictions)+len(in.Path))
	for _, p := range in.Predictions {
		known[p.SkillID] = true
	}
	for _, st := range in.Path {
		known[st.SkillID] = true
	}
	return known
}
