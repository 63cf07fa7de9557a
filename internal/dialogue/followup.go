package dialogue

import (
	"context"
	"log"
	"strings"
	"unicode/utf8"

	"deary/internal/llm"
)

// dontKnowPhrases are the "I can't say" patterns that stop a follow-up
// chain. Matching any of them means: do not badger the user.
var dontKnowPhrases = map[Language][]string{
	LangKo: {"모르겠", "잘 모르겠", "말하기 어려", "기분은 잘 모르겠", "말 못하겠"},
	LangEn: {"don't know", "not sure", "can't say", "hard to say", "don't remember"},
}

// reflectivePrompt invites the user back to the moment without asking
// directly how they felt.
var reflectivePrompt = map[Language]string{
	LangKo: "그때를 떠올려보면 어떤 게 가장 먼저 생각나시나요? 궁금해요.",
	LangEn: "That moment sounds interesting. What comes to mind when you think back to it?",
}

// FollowupRequest is one question/answer exchange to evaluate.
type FollowupRequest struct {
	Question   string
	Answer     string
	AllAnswers AnswerSet
	Language   Language
}

// FollowupDecision reports whether to probe further and with what.
type FollowupDecision struct {
	NeedsFollowup bool   `json:"needsFollowup"`
	Question      string `json:"followupQuestion"`
}

// EvaluateFollowup decides whether the answer warrants a probe. Priority:
// don't-know phrases win (no probe), very short answers always get the
// reflective prompt, everything else is the model's call with an asymmetric
// length-based fallback when the model is unreachable.
func (e *Engine) EvaluateFollowup(ctx context.Context, req FollowupRequest) FollowupDecision {
	trimmed := strings.TrimSpace(req.Answer)
	lower := strings.ToLower(trimmed)
	runes := utf8.RuneCountInString(trimmed)

	for _, phrase := range dontKnowPhrases[req.Language] {
		if strings.Contains(lower, phrase) {
			return FollowupDecision{}
		}
	}
	if runes < e.cfg.ShortAnswerLen {
		return FollowupDecision{NeedsFollowup: true, Question: reflectivePrompt[req.Language]}
	}

	if e.client == nil {
		return e.followupFallback(req.Language, runes)
	}

	raw, err := e.client.GenerateJSON(
		llm.WithPhase(ctx, llm.PhaseFollowup),
		followupPrompt(req),
		llm.Options{Temperature: 0.7, MaxOutputTokens: 1000},
	)
	if err != nil {
		log.Printf("follow-up analysis failed, using length fallback: %v", err)
		return e.followupFallback(req.Language, runes)
	}
	var dec FollowupDecision
	if err := llm.DecodeObjectInto(string(raw), &dec); err != nil {
		return e.followupFallback(req.Language, runes)
	}
	if dec.NeedsFollowup && strings.TrimSpace(dec.Question) == "" {
		dec.Question = reflectivePrompt[req.Language]
	}
	return dec
}

// followupFallback is deliberately asymmetric: when the model cannot judge,
// probe only answers below the generous cutoff so rich answers are left
// alone.
func (e *Engine) followupFallback(lang Language, runes int) FollowupDecision {
	if runes < e.cfg.FallbackFollowupLen {
		return FollowupDecision{NeedsFollowup: true, Question: reflectivePrompt[lang]}
	}
	return FollowupDecision{}
}
