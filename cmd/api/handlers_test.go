package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"deary/internal/diary"
	"deary/internal/dialogue"
	"deary/internal/kvstore"
	"deary/internal/llm"
)

func newTestHandlers(t *testing.T, fake *llm.FakeClient) *handlers {
	t.Helper()
	kv := kvstore.New(filepath.Join(t.TempDir(), "kv_store.json"))
	var client llm.Client
	if fake != nil {
		client = fake
	}
	return &handlers{
		engine:   dialogue.NewEngine(client, dialogue.DefaultConfig()),
		diaries:  diary.NewStore(kv),
		profiles: diary.NewProfileStore(kv),
		client:   client,
	}
}

func doJSON(t *testing.T, mux http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestHealthAndModels(t *testing.T) {
	mux := newMux(newTestHandlers(t, llm.NewFakeClient()))

	rec := doJSON(t, mux, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, mux, http.MethodGet, "/models", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var models map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &models))
	require.Equal(t, true, models["available"])
	require.Equal(t, "FakeLLM", models["model"])
}

func TestModels_NoClient(t *testing.T) {
	mux := newMux(newTestHandlers(t, nil))
	rec := doJSON(t, mux, http.MethodGet, "/models", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var models map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &models))
	require.Equal(t, false, models["available"])
}

func TestNextQuestion_FirstTurn(t *testing.T) {
	mux := newMux(newTestHandlers(t, llm.NewFakeClient()))

	rec := doJSON(t, mux, http.MethodPost, "/next-question", map[string]any{
		"answers":       map[string]string{},
		"questionCount": 0,
		"language":      "ko",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var sel dialogue.Selection
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sel))
	require.NotEmpty(t, sel.Question)
	require.False(t, sel.ShouldEnd)
}

func TestNextQuestion_RejectsNegativeCount(t *testing.T) {
	mux := newMux(newTestHandlers(t, nil))

	rec := doJSON(t, mux, http.MethodPost, "/next-question", map[string]any{
		"answers":       map[string]string{},
		"questionCount": -1,
		"language":      "en",
		"askedQuestions": []string{
			"What was the very first thing you did this morning? Had some water, or checked your phone?",
			"What did you have for lunch today? I hope it was something good.",
			"If you could capture today in one photo, what moment would you take? I'm curious.",
			"Who did you talk to the most today?",
			"Did you finish what you had to do (or homework) as planned today, or did you put some things off?",
		},
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAnalyzeAnswer_ShortAnswerProbes(t *testing.T) {
	mux := newMux(newTestHandlers(t, llm.NewFakeClient()))

	rec := doJSON(t, mux, http.MethodPost, "/analyze-answer", map[string]any{
		"question": "How was your morning?",
		"answer":   "fine",
		"language": "en",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var dec dialogue.FollowupDecision
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dec))
	require.True(t, dec.NeedsFollowup)
	require.NotEmpty(t, dec.Question)

	rec = doJSON(t, mux, http.MethodPost, "/analyze-answer", map[string]any{
		"question": "q", "answer": "  ", "language": "en",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGenerateDiary_PersistsEntry(t *testing.T) {
	fake := llm.NewFakeClient()
	fake.TextByPhase[llm.PhaseDiary] = "Today I went for a long run and felt great."
	mux := newMux(newTestHandlers(t, fake))

	rec := doJSON(t, mux, http.MethodPost, "/generate-diary", map[string]any{
		"userId":   "user-1",
		"answers":  map[string]string{"q_0": "went for a run this morning"},
		"language": "en",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Content string      `json:"content"`
		Entry   diary.Entry `json:"entry"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, fake.TextByPhase[llm.PhaseDiary], resp.Content)
	require.NotEmpty(t, resp.Entry.ID)
	require.NotEmpty(t, resp.Entry.Date)

	// The entry is listed and can be deleted.
	rec = doJSON(t, mux, http.MethodGet, "/diaries?userId=user-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		Diaries []diary.Entry `json:"diaries"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list.Diaries, 1)

	rec = doJSON(t, mux, http.MethodDelete, "/diaries/"+resp.Entry.ID+"?userId=user-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, mux, http.MethodGet, "/diaries?userId=user-1", nil)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Empty(t, list.Diaries)
}

func TestGenerateDiary_Validation(t *testing.T) {
	mux := newMux(newTestHandlers(t, llm.NewFakeClient()))

	rec := doJSON(t, mux, http.MethodPost, "/generate-diary", map[string]any{
		"answers": map[string]string{}, "language": "en",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGenerateDiary_GatewayDown(t *testing.T) {
	mux := newMux(newTestHandlers(t, nil))

	rec := doJSON(t, mux, http.MethodPost, "/generate-diary", map[string]any{
		"answers": map[string]string{"q_0": "a full day of gardening"}, "language": "en",
	})
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestProfileRoundTrip(t *testing.T) {
	fake := llm.NewFakeClient()
	fake.JSONByPhase[llm.PhaseProfile] = `{"occupation":"gardener","hobbies":["gardening"]}`
	mux := newMux(newTestHandlers(t, fake))

	rec := doJSON(t, mux, http.MethodPost, "/update-profile", map[string]any{
		"userId":   "user-1",
		"answers":  map[string]string{"q_0": "spent the day repotting plants"},
		"language": "en",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, mux, http.MethodGet, "/profile/user-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Profile map[string]any `json:"profile"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "gardener", resp.Profile["occupation"])

	rec = doJSON(t, mux, http.MethodPost, "/update-profile", map[string]any{
		"answers": map[string]string{"q_0": "x"}, "language": "en",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTTS_UnavailableWithoutSpeaker(t *testing.T) {
	mux := newMux(newTestHandlers(t, llm.NewFakeClient()))

	rec := doJSON(t, mux, http.MethodPost, "/tts", map[string]any{
		"text": "오늘 하루 어땠어요?", "language": "ko",
	})
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestCORSPreflight(t *testing.T) {
	mux := newMux(newTestHandlers(t, llm.NewFakeClient()))

	req := httptest.NewRequest(http.MethodOptions, "/next-question", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
	require.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "POST")
}
