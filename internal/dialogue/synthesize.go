package dialogue

import (
	"context"
	"errors"
	"strings"

	"deary/internal/llm"
)

// ErrNoAnswers rejects synthesis (and finish-now) before any answer exists.
var ErrNoAnswers = errors.New("dialogue: no answers collected")

// insufficientMessage replaces an empty model response so an empty diary is
// never persisted.
var insufficientMessage = map[Language]string{
	LangKo: "기록된 내용이 없어 일기를 완성하지 못했다.",
	LangEn: "Could not complete the diary due to insufficient information.",
}

// Synthesize turns the finalized answer set into first-person, past-tense
// diary prose. Unlike every other operation, a missing or failing gateway is
// fatal here: there is no acceptable fallback prose, the caller must surface
// the failure.
func (e *Engine) Synthesize(ctx context.Context, answers AnswerSet, lang Language) (string, error) {
	if len(answers.Ordered()) == 0 {
		return "", ErrNoAnswers
	}
	if e.client == nil {
		return "", llm.ErrUnavailable
	}
	text, err := e.client.GenerateText(
		llm.WithPhase(ctx, llm.PhaseDiary),
		diaryPrompt(answers, lang),
		llm.Options{Temperature: 0.7, MaxOutputTokens: 2000},
	)
	if err != nil {
		return "", err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return insufficientMessage[lang], nil
	}
	return text, nil
}
