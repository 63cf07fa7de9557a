package dialogue

import (
	"context"
	"log"
	"strings"

	"deary/internal/llm"
)

// ReviewResult says whether the collected answers are rich enough for a
// diary, and when not, what to ask to fill the gap.
type ReviewResult struct {
	NeedsMoreInfo bool   `json:"needsMoreInfo"`
	Question      string `json:"question"`
}

// ReviewAnswers is the last check before synthesis. It is advisory: every
// failure path reports "good enough" so a flaky model can never block the
// diary.
func (e *Engine) ReviewAnswers(ctx context.Context, answers AnswerSet, lang Language) ReviewResult {
	if e.client == nil {
		return ReviewResult{}
	}
	raw, err := e.client.GenerateJSON(
		llm.WithPhase(ctx, llm.PhaseReview),
		reviewPrompt(answers, lang),
		llm.Options{Temperature: 0.7, MaxOutputTokens: 1000},
	)
	if err != nil {
		log.Printf("answer review failed, proceeding to synthesis: %v", err)
		return ReviewResult{}
	}
	var res ReviewResult
	if err := llm.DecodeObjectInto(string(raw), &res); err != nil {
		return ReviewResult{}
	}
	if res.NeedsMoreInfo && strings.TrimSpace(res.Question) == "" {
		res.NeedsMoreInfo = false
	}
	return res
}
