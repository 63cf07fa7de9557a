package dialogue

import (
	"context"
	"errors"
	"strings"
	"testing"

	"deary/internal/llm"
)

// memProfiles is an in-memory ProfileSource for session tests.
type memProfiles struct {
	m    map[string]map[string]any
	sets int
}

func newMemProfiles() *memProfiles {
	return &memProfiles{m: map[string]map[string]any{}}
}

func (p *memProfiles) Get(userID string) map[string]any {
	if prof, ok := p.m[userID]; ok {
		return prof
	}
	return map[string]any{}
}

func (p *memProfiles) Set(userID string, profile map[string]any) error {
	p.sets++
	p.m[userID] = profile
	return nil
}

func TestSession_FullInterviewReachesDiary(t *testing.T) {
	ctx := context.Background()
	fake := llm.NewFakeClient()
	profiles := newMemProfiles()
	s := NewSession(NewEngine(fake, Config{}), profiles, "user-1", LangEn)

	ev, err := s.Start(ctx)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if ev.Type != EventQuestion || ev.Question == "" {
		t.Fatalf("Start event = %+v", ev)
	}

	answers := []string{
		"I woke up around seven and went for a run in the park",
		"Lunch was kimbap with a friend from my old job",
		"Work was slow so I spent the afternoon reading",
		"I felt calm and a little proud of the run",
	}
	var last Event
	for i, a := range answers {
		last, err = s.Submit(ctx, a)
		if err != nil {
			t.Fatalf("Submit %d: %v", i, err)
		}
		if i < len(answers)-1 && last.Type != EventQuestion {
			t.Fatalf("Submit %d event = %+v, want a question", i, last)
		}
	}

	// Four substantive answers at the turn floor must end the interview.
	if last.Type != EventDone {
		t.Fatalf("final event = %+v, want done", last)
	}
	if last.Content == "" {
		t.Fatalf("done event has no diary content")
	}
	if got := len(last.Answers.Ordered()); got != 4 {
		t.Fatalf("answer count = %d, want 4", got)
	}
	if s.State() != StateDone {
		t.Fatalf("state = %v, want done", s.State())
	}
	if profiles.sets == 0 {
		t.Fatalf("profile was never persisted")
	}

	if _, err := s.Submit(ctx, "one more thing"); !errors.Is(err, ErrSessionDone) {
		t.Fatalf("Submit after done: err = %v", err)
	}
	if _, err := s.Finish(ctx); !errors.Is(err, ErrSessionDone) {
		t.Fatalf("Finish after done: err = %v", err)
	}
}

func TestSession_FollowupDepthIsBounded(t *testing.T) {
	ctx := context.Background()
	fake := llm.NewFakeClient()
	// A model that always wants one more follow-up must still be cut off.
	fake.JSONByPhase[llm.PhaseFollowup] = `{"needsFollowup":true,"followupQuestion":"What else happened around then?"}`
	s := NewSession(NewEngine(fake, Config{}), nil, "user-1", LangEn)

	if _, err := s.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}

	for i := 0; i < 3; i++ {
		ev, err := s.Submit(ctx, "went to the market and bought flowers")
		if err != nil {
			t.Fatalf("Submit %d: %v", i, err)
		}
		if ev.Type != EventFollowup {
			t.Fatalf("Submit %d event = %+v, want a follow-up", i, ev)
		}
	}
	ev, err := s.Submit(ctx, "that was really all there was to it")
	if err != nil {
		t.Fatalf("Submit at depth limit: %v", err)
	}
	if ev.Type != EventQuestion {
		t.Fatalf("event after depth limit = %+v, want a fresh question", ev)
	}

	// All four answers fold onto the first question's key.
	if len(s.Answers()) != 1 {
		t.Fatalf("answer keys = %v, want only q_0", s.Answers())
	}
	joined := s.Answers()[Key(0)]
	if strings.Count(joined, "went to the market") != 3 || !strings.Contains(joined, "all there was") {
		t.Fatalf("folded answer = %q", joined)
	}
}

func TestSession_SkipAdvancesWithoutEvaluation(t *testing.T) {
	ctx := context.Background()
	fake := llm.NewFakeClient()
	fake.JSONByPhase[llm.PhaseFollowup] = `{"needsFollowup":true,"followupQuestion":"probe"}`
	s := NewSession(NewEngine(fake, Config{}), nil, "user-1", LangKo)

	first, err := s.Start(ctx)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	ev, err := s.Skip(ctx)
	if err != nil {
		t.Fatalf("Skip: %v", err)
	}
	if ev.Type != EventQuestion || ev.Question == first.Question {
		t.Fatalf("Skip event = %+v", ev)
	}
	for _, phase := range fake.Calls {
		if phase == llm.PhaseFollowup {
			t.Fatalf("skip must not run the follow-up decision")
		}
	}
	if len(s.Answers()) != 0 {
		t.Fatalf("skip recorded an answer: %v", s.Answers())
	}
}

func TestSession_FinishNeedsAnAnswer(t *testing.T) {
	ctx := context.Background()
	s := NewSession(NewEngine(llm.NewFakeClient(), Config{}), nil, "user-1", LangEn)

	if _, err := s.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if _, err := s.Finish(ctx); !errors.Is(err, ErrNoAnswers) {
		t.Fatalf("Finish with no answers: err = %v", err)
	}
	// The failed finish must not kill the session.
	if s.State() != StateAwaitingAnswer {
		t.Fatalf("state after failed finish = %v", s.State())
	}

	if _, err := s.Submit(ctx, "spent the evening cooking pasta for my sister"); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	ev, err := s.Finish(ctx)
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}
	if ev.Type != EventDone || ev.Content == "" {
		t.Fatalf("Finish event = %+v", ev)
	}
}

func TestSession_InputValidation(t *testing.T) {
	ctx := context.Background()
	s := NewSession(NewEngine(llm.NewFakeClient(), Config{}), nil, "user-1", LangEn)

	if _, err := s.Submit(ctx, "answer before any question"); err == nil {
		t.Fatalf("Submit before Start must fail")
	}
	if _, err := s.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if _, err := s.Start(ctx); !errors.Is(err, ErrAlreadyStarted) {
		t.Fatalf("second Start: err = %v", err)
	}
	if _, err := s.Submit(ctx, "   "); !errors.Is(err, ErrEmptyAnswer) {
		t.Fatalf("blank Submit: err = %v", err)
	}
}
