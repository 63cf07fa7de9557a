package llm

import "context"

// Call phases. They tag each gateway call with what the caller is doing so
// the fake client (and log lines) can tell the call patterns apart.
const (
	PhaseNextQuestion = "next_question"
	PhaseFollowup     = "followup"
	PhaseProfile      = "profile"
	PhaseReview       = "review"
	PhaseDiary        = "diary"
)

type ctxKeyPhase struct{}

// WithPhase tags the context with the current call phase.
func WithPhase(ctx context.Context, phase string) context.Context {
	return context.WithValue(ctx, ctxKeyPhase{}, phase)
}

// PhaseFrom returns the phase string stored in the context.
func PhaseFrom(ctx context.Context) string {
	if v := ctx.Value(ctxKeyPhase{}); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return "unknown"
}
