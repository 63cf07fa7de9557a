package dialogue

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"deary/internal/llm"
)

func TestMergeProfile_UnionsCollections(t *testing.T) {
	existing := map[string]any{"hobbies": []any{"running"}}
	extracted := map[string]any{"hobbies": []any{"running", "reading"}}

	merged := MergeProfile(existing, extracted)
	require.Equal(t, []string{"running", "reading"}, merged["hobbies"])
}

func TestMergeProfile_CollectionsAreMonotonic(t *testing.T) {
	existing := map[string]any{
		"hobbies": []any{"running", "baking"},
		"friends": []any{"Minji"},
	}
	extracted := map[string]any{
		"hobbies": []any{"reading"},
		"friends": []any{}, // empty extraction must not shrink anything
	}
	merged := MergeProfile(existing, extracted)
	require.Len(t, merged["hobbies"], 3)
	require.Equal(t, []string{"Minji"}, merged["friends"])
}

func TestMergeProfile_ScalarOverwriteIsIdempotent(t *testing.T) {
	existing := map[string]any{"occupation": "student", "ageGroup": "20s"}
	extracted := map[string]any{"occupation": "office worker"}

	once := MergeProfile(existing, extracted)
	twice := MergeProfile(once, extracted)
	require.Equal(t, once, twice)
	require.Equal(t, "office worker", once["occupation"])
	require.Equal(t, "20s", once["ageGroup"])
}

func TestMergeProfile_NilValuesPreserveExisting(t *testing.T) {
	existing := map[string]any{"aiName": "Deary", "hobbies": []any{"running"}}
	extracted := map[string]any{"aiName": nil, "hobbies": nil}

	merged := MergeProfile(existing, extracted)
	require.Equal(t, "Deary", merged["aiName"])
	require.Equal(t, []any{"running"}, merged["hobbies"])
}

func TestMergeProfile_DropsEmptyCollectionEntries(t *testing.T) {
	merged := MergeProfile(
		map[string]any{"interests": []any{"coffee"}},
		map[string]any{"interests": []any{"", "  ", "jazz", "coffee"}},
	)
	require.Equal(t, []string{"coffee", "jazz"}, merged["interests"])
}

func TestMergeProfile_NeverDeletesKeys(t *testing.T) {
	existing := map[string]any{"occupation": "student", "lifestyle": "night owl"}
	merged := MergeProfile(existing, map[string]any{"education": "computer science"})
	require.Equal(t, "student", merged["occupation"])
	require.Equal(t, "night owl", merged["lifestyle"])
	require.Equal(t, "computer science", merged["education"])
}

func TestExtractProfile_GatewayFailureKeepsExisting(t *testing.T) {
	fake := llm.NewFakeClient()
	fake.Err = llm.ErrUnavailable
	e := NewEngine(fake, Config{})

	existing := map[string]any{"occupation": "student"}
	got := e.ExtractProfile(context.Background(), AnswerSet{"q_0": "studied all day"}, existing, LangEn)
	require.Equal(t, existing, got)
}

func TestExtractProfile_MergesModelOutput(t *testing.T) {
	fake := llm.NewFakeClient()
	fake.JSONByPhase[llm.PhaseProfile] = `{"occupation":"college student","hobbies":["running"],"aiName":null}`
	e := NewEngine(fake, Config{})

	got := e.ExtractProfile(context.Background(),
		AnswerSet{"q_0": "went running before class"},
		map[string]any{"hobbies": []any{"baking"}, "aiName": "Deary"},
		LangEn,
	)
	require.Equal(t, "college student", got["occupation"])
	require.Equal(t, []string{"baking", "running"}, got["hobbies"])
	require.Equal(t, "Deary", got["aiName"])
}

func TestExtractProfile_NilClientReturnsExisting(t *testing.T) {
	e := NewEngine(nil, Config{})
	existing := map[string]any{"occupation": "student"}
	require.Equal(t, existing, e.ExtractProfile(context.Background(), AnswerSet{"q_0": "x"}, existing, LangKo))
}
