package main

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"deary/internal/dialogue"
	"deary/internal/llm"
)

const (
	sessionWSWriteWait = 10 * time.Second
	sessionWSPongWait  = 60 * time.Second
	sessionWSPingEvery = (sessionWSPongWait * 9) / 10
)

var sessionWSUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(_ *http.Request) bool {
		return true
	},
}

type sessionWSInbound struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

type sessionWSOutbound struct {
	Type     string             `json:"type"`
	Question string             `json:"question,omitempty"`
	Content  string             `json:"content,omitempty"`
	Answers  dialogue.AnswerSet `json:"answers,omitempty"`
	Code     string             `json:"code,omitempty"`
	Message  string             `json:"message,omitempty"`
}

// handleSessionWS runs one interview over a websocket. The read loop drives
// the session sequentially; a writer goroutine owns the connection's write
// side and keeps the ping schedule.
func (h *handlers) handleSessionWS(w http.ResponseWriter, r *http.Request) {
	userID := strings.TrimSpace(r.URL.Query().Get("userId"))
	if userID == "" {
		http.Error(w, "userId is required", http.StatusBadRequest)
		return
	}
	langParam := r.URL.Query().Get("language")
	if langParam == "" {
		langParam = r.URL.Query().Get("lang")
	}
	lang := dialogue.ParseLanguage(langParam)

	conn, err := sessionWSUpgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	if err := conn.SetReadDeadline(time.Now().Add(sessionWSPongWait)); err != nil {
		return
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(sessionWSPongWait))
	})

	writeCh := make(chan sessionWSOutbound, 32)
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		ticker := time.NewTicker(sessionWSPingEvery)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				// Flush whatever is queued; the final done event carries
				// the diary and must not be lost to shutdown ordering.
				for {
					select {
					case out := <-writeCh:
						if err := conn.SetWriteDeadline(time.Now().Add(sessionWSWriteWait)); err != nil {
							return
						}
						if err := conn.WriteJSON(out); err != nil {
							return
						}
					default:
						return
					}
				}
			case out := <-writeCh:
				if err := conn.SetWriteDeadline(time.Now().Add(sessionWSWriteWait)); err != nil {
					return
				}
				if err := conn.WriteJSON(out); err != nil {
					return
				}
			case <-ticker.C:
				if err := conn.SetWriteDeadline(time.Now().Add(sessionWSWriteWait)); err != nil {
					return
				}
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			}
		}
	}()

	session := dialogue.NewSession(h.engine, h.profiles, userID, lang)

	for {
		var in sessionWSInbound
		if err := conn.ReadJSON(&in); err != nil {
			cancel()
			<-writerDone
			return
		}

		msgType := strings.ToLower(strings.TrimSpace(in.Type))
		var (
			ev     dialogue.Event
			evErr  error
			silent bool
		)
		switch msgType {
		case "ping":
			pushSessionWS(ctx, writeCh, sessionWSOutbound{Type: "pong"})
			silent = true
		case "start":
			ev, evErr = session.Start(ctx)
		case "answer":
			ev, evErr = session.Submit(ctx, in.Text)
		case "skip":
			ev, evErr = session.Skip(ctx)
		case "finish":
			ev, evErr = session.Finish(ctx)
		default:
			pushSessionWS(ctx, writeCh, sessionWSOutbound{
				Type:    "error",
				Code:    "invalid_argument",
				Message: "unknown message type",
			})
			silent = true
		}
		if silent {
			continue
		}
		if evErr != nil {
			pushSessionWS(ctx, writeCh, sessionWSOutbound{
				Type:    "error",
				Code:    sessionErrCode(evErr),
				Message: evErr.Error(),
			})
			continue
		}

		out := sessionWSOutbound{Type: string(ev.Type), Question: ev.Question}
		if ev.Type == dialogue.EventDone {
			out.Content = ev.Content
			out.Answers = ev.Answers
		}
		pushSessionWS(ctx, writeCh, out)

		if ev.Type == dialogue.EventDone {
			cancel()
			<-writerDone
			return
		}
	}
}

func sessionErrCode(err error) string {
	switch {
	case errors.Is(err, dialogue.ErrEmptyAnswer),
		errors.Is(err, dialogue.ErrNoAnswers),
		errors.Is(err, dialogue.ErrAlreadyStarted):
		return "invalid_argument"
	case errors.Is(err, dialogue.ErrSessionDone):
		return "session_done"
	case errors.Is(err, llm.ErrUnavailable):
		return "unavailable"
	default:
		return "internal"
	}
}

// pushSessionWS queues one reply for the writer. Session replies block
// until queued; dropping one would desynchronize the interview.
func pushSessionWS(ctx context.Context, ch chan<- sessionWSOutbound, out sessionWSOutbound) {
	select {
	case ch <- out:
	case <-ctx.Done():
	}
}
