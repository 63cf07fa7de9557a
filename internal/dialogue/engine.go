package dialogue

import (
	"context"
	"log"
	"strings"
	"unicode/utf8"

	"deary/internal/llm"
)

// Engine decides the conversation flow: which question to ask next, whether
// an answer deserves a follow-up, and when the interview is done. It is
// stateless between calls; everything it needs arrives in the request.
type Engine struct {
	client llm.Client // nil means the gateway is absent
	cfg    Config
}

func NewEngine(client llm.Client, cfg Config) *Engine {
	return &Engine{client: client, cfg: cfg.normalized()}
}

// Config returns the engine's normalized tuning values.
func (e *Engine) Config() Config { return e.cfg }

// SelectRequest is everything the next-question decision depends on.
type SelectRequest struct {
	Answers AnswerSet
	Profile map[string]any
	// TurnCount is the number of fully completed turns so far.
	TurnCount int
	Language  Language
	// AskedTexts is the literal text of every question and follow-up already
	// shown this session.
	AskedTexts []string
	// SkippedText, when set, is the question the user skipped; its theme is
	// avoided for the replacement.
	SkippedText string
}

// Selection is the engine's answer: the next question, or the end signal.
type Selection struct {
	Question  string `json:"question"`
	ShouldEnd bool   `json:"shouldEnd"`
}

// SelectNextQuestion always resolves to a non-empty question (or the end
// signal); gateway trouble is absorbed by the deterministic fallback.
func (e *Engine) SelectNextQuestion(ctx context.Context, req SelectRequest) Selection {
	// Counts arrive from the transport; a negative one means the first turn.
	if req.TurnCount < 0 {
		req.TurnCount = 0
	}
	pools := poolsFor(req.Language)

	// The first question always comes from the morning pool and never from
	// its emotion-probe variant.
	if req.TurnCount == 0 {
		for i, q := range pools.morning {
			if i == morningEmotionProbeIndex {
				continue
			}
			if !anyNearDuplicate(q, req.AskedTexts) {
				return Selection{Question: q}
			}
		}
		return Selection{Question: pools.morning[0]}
	}

	endLocal := e.shouldEndLocally(req)
	fallback := e.fallbackQuestion(req, pools)

	if e.client == nil {
		return Selection{Question: fallback, ShouldEnd: endLocal}
	}

	var parsed Selection
	raw, err := e.client.GenerateJSON(
		llm.WithPhase(ctx, llm.PhaseNextQuestion),
		nextQuestionPrompt(req, pools),
		llm.Options{Temperature: 0.9, MaxOutputTokens: 1000},
	)
	if err != nil {
		log.Printf("next-question generation failed, using fallback: %v", err)
		return Selection{Question: fallback, ShouldEnd: endLocal}
	}
	if err := llm.DecodeObjectInto(string(raw), &parsed); err != nil {
		return Selection{Question: fallback, ShouldEnd: endLocal}
	}

	question := strings.TrimSpace(parsed.Question)
	if question == "" || anyNearDuplicate(question, req.AskedTexts) {
		question = fallback
	}
	shouldEnd := parsed.ShouldEnd || endLocal
	if req.TurnCount < e.cfg.MinTurns {
		// The turn floor binds regardless of what the model claims.
		shouldEnd = false
	}
	return Selection{Question: question, ShouldEnd: shouldEnd}
}

// shouldEndLocally is the deterministic end decision: at or past the turn
// floor, end once enough substantive answers exist, or when the recent
// answers are persistently low-information (the anti-badgering backstop).
func (e *Engine) shouldEndLocally(req SelectRequest) bool {
	if req.TurnCount < e.cfg.MinTurns {
		return false
	}
	if req.Answers.SubstantiveCount(e.cfg.ShortAnswerLen) >= e.cfg.EndSubstantiveMin {
		return true
	}
	ordered := req.Answers.Ordered()
	if len(ordered) < 3 {
		return false
	}
	for _, qa := range ordered[len(ordered)-3:] {
		if utf8.RuneCountInString(strings.TrimSpace(qa.Answer)) >= e.cfg.ShortAnswerLen {
			return false
		}
	}
	return true
}

// fallbackQuestion picks deterministically from the per-theme rotation:
// first question not already asked and not in the skipped question's theme,
// else the turnCount-indexed slot.
func (e *Engine) fallbackQuestion(req SelectRequest, pools *questionPools) string {
	order := pools.fallbackOrder()
	skippedTheme, hasSkipped := Theme(0), false
	if strings.TrimSpace(req.SkippedText) != "" {
		skippedTheme, hasSkipped = pools.themeOf(req.SkippedText)
	}
	for _, q := range order {
		if anyNearDuplicate(q, req.AskedTexts) {
			continue
		}
		if hasSkipped {
			if t, ok := pools.themeOf(q); ok && t == skippedTheme {
				continue
			}
		}
		return q
	}
	return order[req.TurnCount%len(order)]
}

// isNearDuplicate is the textual-overlap policy used for duplicate
// avoidance: exact match or substring containment in either direction.
// Swap this out for a stronger similarity measure without touching callers.
func isNearDuplicate(a, b string) bool {
	a = strings.TrimSpace(a)
	b = strings.TrimSpace(b)
	if a == "" || b == "" {
		return false
	}
	return a == b || strings.Contains(a, b) || strings.Contains(b, a)
}

func anyNearDuplicate(q string, asked []string) bool {
	for _, a := range asked {
		if isNearDuplicate(q, a) {
			return true
		}
	}
	return false
}
