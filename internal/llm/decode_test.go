package llm

import (
	"errors"
	"testing"
)

func TestDecodeObject_Plain(t *testing.T) {
	raw, err := DecodeObject(`{"question":"q","shouldEnd":false}`)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	var out struct {
		Question  string `json:"question"`
		ShouldEnd bool   `json:"shouldEnd"`
	}
	if err := DecodeObjectInto(string(raw), &out); err != nil {
		t.Fatalf("decode into: %v", err)
	}
	if out.Question != "q" || out.ShouldEnd {
		t.Fatalf("unexpected decode result: %+v", out)
	}
}

func TestDecodeObject_WrappedInProse(t *testing.T) {
	text := "Sure, here is the JSON:\n```json\n{\"needsFollowup\": true}\n```\nHope that helps."
	var out struct {
		NeedsFollowup bool `json:"needsFollowup"`
	}
	if err := DecodeObjectInto(text, &out); err != nil {
		t.Fatalf("decode into: %v", err)
	}
	if !out.NeedsFollowup {
		t.Fatalf("expected needsFollowup=true")
	}
}

func TestDecodeObject_RepairsBrokenJSON(t *testing.T) {
	// trailing comma and single quotes both need the repair pass
	raw, err := DecodeObject(`{'question': 'hello', 'shouldEnd': false,}`)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(raw) == 0 {
		t.Fatalf("empty raw message")
	}
}

func TestDecodeObject_NoObject(t *testing.T) {
	if _, err := DecodeObject("no json here"); !errors.Is(err, ErrMalformed) {
		t.Fatalf("expected ErrMalformed, got %v", err)
	}
}
