package llm

import "context"

// Purposes recorded with each logged request.
const (
	PurposeAdvice = "advice"
	PurposePlan   = "plan"
)

type ctxKey int

const (
	purposeKey ctxKey = iota
	learnerKey
)

// WithPurpose tags requests made with ctx for usage accounting.
func WithPurpose(ctx context.Context, purpose string) context.Context {
	return context.WithValue(ctx, purposeKey, purpose)
}

// PurposeFrom returns the purpose tag, or "unknown".
func PurposeFrom(ctx context.Context) string {
	if v, ok := ctx.Value(purposeKey).(string); ok && v != "" {
		return v
	}
	return "unknown"
}

// WithLearner names the learner a request is about. It only reaches logs.
func WithLearner(ctx context.Context, learnerID string) context.Context {
	return context.WithValue(ctx, learnerKey, learnerID)
}

// LearnerFrom returns the learner tag, or "".
func LearnerFrom(ctx context.Context) string {
	v, _ := ctx.Value(learnerKey).(string)
	return v
}
