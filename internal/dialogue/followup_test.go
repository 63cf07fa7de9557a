package dialogue

import (
	"context"
	"strings"
	"testing"

	"deary/internal/llm"
)

func TestEvaluateFollowup_ShortAnswerGetsReflectivePrompt(t *testing.T) {
	e := NewEngine(nil, Config{})
	dec := e.EvaluateFollowup(context.Background(), FollowupRequest{
		Question: "What did you have for lunch today?",
		Answer:   "ok",
		Language: LangEn,
	})
	if !dec.NeedsFollowup {
		t.Fatalf("two-character answer must get a follow-up")
	}
	lower := strings.ToLower(dec.Question)
	if strings.Contains(lower, "how did you feel") || strings.Contains(lower, "feel?") {
		t.Fatalf("reflective prompt must not be a direct emotion question: %q", dec.Question)
	}
	if dec.Question != reflectivePrompt[LangEn] {
		t.Fatalf("want the fixed reflective prompt, got %q", dec.Question)
	}
}

func TestEvaluateFollowup_DontKnowStopsProbing(t *testing.T) {
	e := NewEngine(nil, Config{})
	cases := []struct {
		answer string
		lang   Language
	}{
		{"I don't know", LangEn},
		{"Not sure really", LangEn},
		{"잘 모르겠어요", LangKo},
		{"그건 말하기 어려운데요", LangKo},
	}
	for _, c := range cases {
		dec := e.EvaluateFollowup(context.Background(), FollowupRequest{
			Question: "q",
			Answer:   c.answer,
			Language: c.lang,
		})
		if dec.NeedsFollowup {
			t.Fatalf("%q (%s): must not badger the user", c.answer, c.lang)
		}
	}
}

func TestEvaluateFollowup_GatewayDownAsymmetricFallback(t *testing.T) {
	fake := llm.NewFakeClient()
	fake.Err = llm.ErrUnavailable
	e := NewEngine(fake, Config{})

	// Medium answer (>=10, <30 runes): probe.
	dec := e.EvaluateFollowup(context.Background(), FollowupRequest{
		Question: "q",
		Answer:   "had lunch with a friend",
		Language: LangEn,
	})
	if !dec.NeedsFollowup || dec.Question == "" {
		t.Fatalf("medium answer should be probed when the model is down")
	}

	// Rich answer (>=30 runes): leave alone.
	dec = e.EvaluateFollowup(context.Background(), FollowupRequest{
		Question: "q",
		Answer:   "had a long lunch with my old friend from college and we talked for hours",
		Language: LangEn,
	})
	if dec.NeedsFollowup {
		t.Fatalf("rich answer must not be probed when the model is down")
	}
}

func TestEvaluateFollowup_ModelDecision(t *testing.T) {
	fake := llm.NewFakeClient()
	fake.JSONByPhase[llm.PhaseFollowup] = `{"needsFollowup":true,"followupQuestion":"Tuna kimbap, or the basic kind?"}`
	e := NewEngine(fake, Config{})

	dec := e.EvaluateFollowup(context.Background(), FollowupRequest{
		Question:   "What did you have for lunch today?",
		Answer:     "just had some kimbap today",
		AllAnswers: AnswerSet{"q_0": "just had some kimbap today"},
		Language:   LangEn,
	})
	if !dec.NeedsFollowup || dec.Question != "Tuna kimbap, or the basic kind?" {
		t.Fatalf("model decision not honored: %+v", dec)
	}
}

func TestEvaluateFollowup_ModelYesWithoutQuestionUsesReflective(t *testing.T) {
	fake := llm.NewFakeClient()
	fake.JSONByPhase[llm.PhaseFollowup] = `{"needsFollowup":true,"followupQuestion":""}`
	e := NewEngine(fake, Config{})

	dec := e.EvaluateFollowup(context.Background(), FollowupRequest{
		Question: "q",
		Answer:   "a perfectly reasonable answer",
		Language: LangEn,
	})
	if !dec.NeedsFollowup || dec.Question != reflectivePrompt[LangEn] {
		t.Fatalf("missing follow-up text must be replaced by the reflective prompt: %+v", dec)
	}
}

func TestEvaluateFollowup_MalformedModelOutputFallsBack(t *testing.T) {
	fake := llm.NewFakeClient()
	fake.TextByPhase[llm.PhaseFollowup] = "not json"
	fake.JSONByPhase[llm.PhaseFollowup] = `no braces at all`
	e := NewEngine(fake, Config{})

	dec := e.EvaluateFollowup(context.Background(), FollowupRequest{
		Question: "q",
		Answer:   "short but over ten",
		Language: LangEn,
	})
	// 18 runes: under the 30-rune fallback cutoff, so probe.
	if !dec.NeedsFollowup {
		t.Fatalf("expected fallback probe on malformed output")
	}
}
