package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

func newMux(h *handlers) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", h.handleHealth)
	mux.HandleFunc("GET /models", h.handleModels)

	mux.HandleFunc("GET /diaries", h.handleListDiaries)
	mux.HandleFunc("POST /diaries", h.handleSaveDiary)
	mux.HandleFunc("DELETE /diaries/{id}", h.handleDeleteDiary)

	mux.HandleFunc("POST /next-question", h.handleNextQuestion)
	mux.HandleFunc("POST /analyze-answer", h.handleAnalyzeAnswer)
	mux.HandleFunc("POST /review-answers", h.handleReviewAnswers)
	mux.HandleFunc("POST /generate-diary", h.handleGenerateDiary)

	mux.HandleFunc("POST /update-profile", h.handleUpdateProfile)
	mux.HandleFunc("GET /profile/{userId}", h.handleGetProfile)

	mux.HandleFunc("POST /tts", h.handleTTS)

	mux.HandleFunc("GET /ws/session", h.handleSessionWS)

	// Middleware
	return corsMiddleware(mux)
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := strings.TrimSpace(r.Header.Get("Origin"))
		if origin != "" {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Vary", "Origin")
		} else {
			w.Header().Set("Access-Control-Allow-Origin", "*")
		}
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE")
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization")
		if r.Method == "OPTIONS" {
			return
		}
		next.ServeHTTP(w, r)
	})
}

type server struct {
	httpServer *http.Server
}

func newServer(port string, handler http.Handler) *server {
	return &server{
		httpServer: &http.Server{
			Addr:    port,
			Handler: h2c.NewHandler(handler, &http2.Server{}),
		},
	}
}

func (s *server) Start() error {
	log.Printf("Starting API server on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
