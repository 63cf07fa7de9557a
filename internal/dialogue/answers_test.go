package dialogue

import (
	"testing"
)

func TestAnswerSet_OrderedByTurnIndex(t *testing.T) {
	a := AnswerSet{
		"q_10": "tenth",
		"q_2":  "second",
		"q_0":  "zeroth",
		"q_1":  "   ", // whitespace-only answers are filtered out
	}
	got := a.Ordered()
	if len(got) != 3 {
		t.Fatalf("expected 3 answers, got %d", len(got))
	}
	want := []string{"q_0", "q_2", "q_10"}
	for i, qa := range got {
		if qa.Key != want[i] {
			t.Fatalf("position %d: want %s, got %s", i, want[i], qa.Key)
		}
	}
}

func TestAnswerSet_AppendFoldsFollowup(t *testing.T) {
	a := AnswerSet{}
	a.Append("q_0", "had kimbap")
	a.Append("q_0", "tuna, with a colleague")
	if a["q_0"] != "had kimbap tuna, with a colleague" {
		t.Fatalf("unexpected folded answer: %q", a["q_0"])
	}
	if len(a) != 1 {
		t.Fatalf("follow-up must not create a new key, got %d keys", len(a))
	}
	a.Append("q_0", "   ")
	if a["q_0"] != "had kimbap tuna, with a colleague" {
		t.Fatalf("empty append must be a no-op, got %q", a["q_0"])
	}
}

func TestAnswerSet_ContextText(t *testing.T) {
	a := AnswerSet{"q_1": "lunch", "q_0": "coffee"}
	want := "q_0: coffee\nq_1: lunch"
	if got := a.ContextText(); got != want {
		t.Fatalf("context text:\nwant %q\ngot  %q", want, got)
	}
}

func TestAnswerSet_SubstantiveCountUsesRunes(t *testing.T) {
	a := AnswerSet{
		"q_0": "ok",
		"q_1": "오늘은 친구랑 점심을 먹었다", // 15 runes, far more bytes
		"q_2": "a long enough english answer",
	}
	if got := a.SubstantiveCount(10); got != 2 {
		t.Fatalf("substantive count: want 2, got %d", got)
	}
}
