package main

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"deary/internal/diary"
	"deary/internal/dialogue"
	"deary/internal/llm"
	"deary/internal/tts"
)

type handlers struct {
	engine   *dialogue.Engine
	diaries  *diary.Store
	profiles *diary.ProfileStore
	speech   *tts.Service
	client   llm.Client
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func readJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func (h *handlers) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleModels reports which model backs the interview, if any.
func (h *handlers) handleModels(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{"available": h.client != nil}
	if h.client != nil {
		resp["model"] = h.client.Name()
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *handlers) handleListDiaries(w http.ResponseWriter, r *http.Request) {
	userID := strings.TrimSpace(r.URL.Query().Get("userId"))
	entries, err := h.diaries.List(userID)
	if err != nil {
		if errors.Is(err, diary.ErrMissingUser) {
			writeError(w, http.StatusBadRequest, "userId is required")
			return
		}
		writeError(w, http.StatusInternalServerError, "could not list diaries")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"diaries": entries})
}

func (h *handlers) handleSaveDiary(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID string      `json:"userId"`
		Entry  diary.Entry `json:"entry"`
	}
	if !readJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Entry.Content) == "" {
		writeError(w, http.StatusBadRequest, "entry content is required")
		return
	}
	if req.Entry.Timestamp == 0 {
		req.Entry.Timestamp = time.Now().UnixMilli()
	}
	if strings.TrimSpace(req.Entry.Date) == "" {
		req.Entry.Date = time.Now().Format("2006-01-02")
	}
	saved, err := h.diaries.Put(req.UserID, req.Entry)
	if err != nil {
		if errors.Is(err, diary.ErrMissingUser) {
			writeError(w, http.StatusBadRequest, "userId is required")
			return
		}
		writeError(w, http.StatusInternalServerError, "could not save diary")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"entry": saved})
}

func (h *handlers) handleDeleteDiary(w http.ResponseWriter, r *http.Request) {
	userID := strings.TrimSpace(r.URL.Query().Get("userId"))
	entryID := r.PathValue("id")
	if err := h.diaries.Delete(userID, entryID); err != nil {
		if errors.Is(err, diary.ErrMissingUser) {
			writeError(w, http.StatusBadRequest, "userId and id are required")
			return
		}
		writeError(w, http.StatusInternalServerError, "could not delete diary")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

func (h *handlers) handleNextQuestion(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID          string            `json:"userId"`
		Answers         map[string]string `json:"answers"`
		Profile         map[string]any    `json:"profile"`
		QuestionCount   int               `json:"questionCount"`
		Language        string            `json:"language"`
		AskedQuestions  []string          `json:"askedQuestions"`
		SkippedQuestion string            `json:"skippedQuestion"`
	}
	if !readJSON(w, r, &req) {
		return
	}
	if req.QuestionCount < 0 {
		writeError(w, http.StatusBadRequest, "questionCount must not be negative")
		return
	}
	profile := req.Profile
	if profile == nil && strings.TrimSpace(req.UserID) != "" {
		profile = h.profiles.Get(req.UserID)
	}
	sel := h.engine.SelectNextQuestion(r.Context(), dialogue.SelectRequest{
		Answers:     dialogue.AnswerSet(req.Answers),
		Profile:     profile,
		TurnCount:   req.QuestionCount,
		Language:    dialogue.ParseLanguage(req.Language),
		AskedTexts:  req.AskedQuestions,
		SkippedText: req.SkippedQuestion,
	})
	writeJSON(w, http.StatusOK, sel)
}

func (h *handlers) handleAnalyzeAnswer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Question   string            `json:"question"`
		Answer     string            `json:"answer"`
		Language   string            `json:"language"`
		AllAnswers map[string]string `json:"allAnswers"`
	}
	if !readJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Answer) == "" {
		writeError(w, http.StatusBadRequest, "answer is required")
		return
	}
	dec := h.engine.EvaluateFollowup(r.Context(), dialogue.FollowupRequest{
		Question:   req.Question,
		Answer:     req.Answer,
		AllAnswers: dialogue.AnswerSet(req.AllAnswers),
		Language:   dialogue.ParseLanguage(req.Language),
	})
	writeJSON(w, http.StatusOK, dec)
}

func (h *handlers) handleReviewAnswers(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Answers  map[string]string `json:"answers"`
		Language string            `json:"language"`
	}
	if !readJSON(w, r, &req) {
		return
	}
	res := h.engine.ReviewAnswers(r.Context(), dialogue.AnswerSet(req.Answers), dialogue.ParseLanguage(req.Language))
	writeJSON(w, http.StatusOK, res)
}

func (h *handlers) handleGenerateDiary(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID   string            `json:"userId"`
		Answers  map[string]string `json:"answers"`
		Language string            `json:"language"`
		Date     string            `json:"date"`
	}
	if !readJSON(w, r, &req) {
		return
	}
	content, err := h.engine.Synthesize(r.Context(), dialogue.AnswerSet(req.Answers), dialogue.ParseLanguage(req.Language))
	if err != nil {
		switch {
		case errors.Is(err, dialogue.ErrNoAnswers):
			writeError(w, http.StatusBadRequest, "answers are required")
		case errors.Is(err, llm.ErrUnavailable):
			writeError(w, http.StatusServiceUnavailable, "diary generation is unavailable")
		default:
			writeError(w, http.StatusBadGateway, "diary generation failed")
		}
		return
	}

	resp := map[string]any{"content": content}
	if strings.TrimSpace(req.UserID) != "" {
		date := strings.TrimSpace(req.Date)
		if date == "" {
			date = time.Now().Format("2006-01-02")
		}
		entry, err := h.diaries.Put(req.UserID, diary.Entry{
			Date:      date,
			Content:   content,
			Answers:   req.Answers,
			Timestamp: time.Now().UnixMilli(),
		})
		if err != nil {
			log.Printf("diary save failed for %s: %v", req.UserID, err)
		} else {
			resp["entry"] = entry
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *handlers) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID   string            `json:"userId"`
		Answers  map[string]string `json:"answers"`
		Language string            `json:"language"`
	}
	if !readJSON(w, r, &req) {
		return
	}
	userID := strings.TrimSpace(req.UserID)
	if userID == "" {
		writeError(w, http.StatusBadRequest, "userId is required")
		return
	}
	existing := h.profiles.Get(userID)
	updated := h.engine.ExtractProfile(r.Context(), dialogue.AnswerSet(req.Answers), existing, dialogue.ParseLanguage(req.Language))
	if err := h.profiles.Set(userID, updated); err != nil {
		writeError(w, http.StatusInternalServerError, "could not save profile")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"profile": updated})
}

func (h *handlers) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	userID := strings.TrimSpace(r.PathValue("userId"))
	if userID == "" {
		writeError(w, http.StatusBadRequest, "userId is required")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"profile": h.profiles.Get(userID)})
}

func (h *handlers) handleTTS(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text     string `json:"text"`
		Language string `json:"language"`
	}
	if !readJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}
	if h.speech == nil {
		writeError(w, http.StatusServiceUnavailable, "speech synthesis is unavailable")
		return
	}
	wav, err := h.speech.Speak(r.Context(), req.Text, string(dialogue.ParseLanguage(req.Language)))
	if err != nil {
		if errors.Is(err, llm.ErrUnavailable) {
			writeError(w, http.StatusServiceUnavailable, "speech synthesis is unavailable")
			return
		}
		writeError(w, http.StatusBadGateway, "speech synthesis failed")
		return
	}
	w.Header().Set("Content-Type", "audio/wav")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(wav); err != nil {
		log.Printf("write audio: %v", err)
	}
}
