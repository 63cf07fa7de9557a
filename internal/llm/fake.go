package llm

import (
	"context"
	"encoding/json"
)

// FakeClient returns deterministic, minimal payloads per phase for
// offline/testing use. Responses can be overridden per phase; unset phases
// fall back to a harmless canned answer.
type FakeClient struct {
	// JSONByPhase overrides GenerateJSON output for a phase.
	JSONByPhase map[string]string
	// TextByPhase overrides GenerateText output for a phase.
	TextByPhase map[string]string
	// Err, when set, is returned from every call.
	Err error

	// Calls records the phases seen, in order.
	Calls []string
}

func NewFakeClient() *FakeClient {
	return &FakeClient{
		JSONByPhase: map[string]string{},
		TextByPhase: map[string]string{},
	}
}

func (f *FakeClient) Name() string { return "FakeLLM" }
func (f *FakeClient) Close() error { return nil }

func (f *FakeClient) GenerateJSON(ctx context.Context, prompt string, opts Options) (json.RawMessage, error) {
	phase := PhaseFrom(ctx)
	f.Calls = append(f.Calls, phase)
	if f.Err != nil {
		return nil, f.Err
	}
	if s, ok := f.JSONByPhase[phase]; ok {
		return DecodeObject(s)
	}
	var obj any
	switch phase {
	case PhaseNextQuestion:
		obj = map[string]any{"question": "", "shouldEnd": false}
	case PhaseFollowup:
		obj = map[string]any{"needsFollowup": false}
	case PhaseReview:
		obj = map[string]any{"needsMoreInfo": false}
	default:
		obj = map[string]any{}
	}
	b, _ := json.Marshal(obj)
	return json.RawMessage(b), nil
}

func (f *FakeClient) GenerateText(ctx context.Context, prompt string, opts Options) (string, error) {
	phase := PhaseFrom(ctx)
	f.Calls = append(f.Calls, phase)
	if f.Err != nil {
		return "", f.Err
	}
	if s, ok := f.TextByPhase[phase]; ok {
		return s, nil
	}
	return "fake " + phase + " output", nil
}
