package dialogue

import (
	"context"
	"errors"
	"log"
	"strings"
)

var (
	ErrSessionDone    = errors.New("dialogue: session already finished")
	ErrEmptyAnswer    = errors.New("dialogue: empty answer")
	ErrAlreadyStarted = errors.New("dialogue: session already started")
)

// ProfileSource is the slice of profile persistence a session needs. Reads
// must degrade to an empty profile on failure; write failures are logged
// here and never stop the interview.
type ProfileSource interface {
	Get(userID string) map[string]any
	Set(userID string, profile map[string]any) error
}

// SessionState names the interview phases.
type SessionState int

const (
	StateNew SessionState = iota
	StateAwaitingAnswer
	StateDone
)

// EventType discriminates what a session hands back after each input.
type EventType string

const (
	EventQuestion EventType = "question"
	EventFollowup EventType = "followup"
	EventDone     EventType = "done"
)

// Event is the session's reply to one user action: the next thing to show.
type Event struct {
	Type     EventType `json:"type"`
	Question string    `json:"question,omitempty"`
	// Content carries the synthesized diary when Type is EventDone.
	Content string    `json:"content,omitempty"`
	Answers AnswerSet `json:"answers,omitempty"`
}

// Session drives one interview: it owns the answer set, the asked-question
// history, the turn counter and the follow-up depth, and calls the engine
// for every decision. One session serves one user conversation; it is not
// safe for concurrent use.
type Session struct {
	engine   *Engine
	profiles ProfileSource
	userID   string
	lang     Language

	answers       AnswerSet
	asked         []string
	turn          int
	followupDepth int
	current       string // question currently awaiting an answer
	state         SessionState

	// pendingFetch guards against duplicate initial fetches. Per-session by
	// design: concurrent sessions must not share this flag.
	pendingFetch bool
}

func NewSession(engine *Engine, profiles ProfileSource, userID string, lang Language) *Session {
	return &Session{
		engine:   engine,
		profiles: profiles,
		userID:   userID,
		lang:     lang,
		answers:  AnswerSet{},
	}
}

func (s *Session) State() SessionState { return s.state }
func (s *Session) Answers() AnswerSet  { return s.answers }

// Start issues the first question.
func (s *Session) Start(ctx context.Context) (Event, error) {
	if s.state != StateNew || s.pendingFetch {
		return Event{}, ErrAlreadyStarted
	}
	s.pendingFetch = true
	defer func() { s.pendingFetch = false }()

	sel := s.engine.SelectNextQuestion(ctx, SelectRequest{
		Answers:    s.answers,
		Profile:    s.profile(),
		TurnCount:  0,
		Language:   s.lang,
		AskedTexts: s.asked,
	})
	s.ask(sel.Question)
	return Event{Type: EventQuestion, Question: sel.Question}, nil
}

// Submit records the user's answer to the current question, runs the
// follow-up decision, and either probes deeper or advances the interview.
func (s *Session) Submit(ctx context.Context, text string) (Event, error) {
	if s.state == StateDone {
		return Event{}, ErrSessionDone
	}
	if s.state != StateAwaitingAnswer {
		return Event{}, ErrAlreadyStarted
	}
	if strings.TrimSpace(text) == "" {
		return Event{}, ErrEmptyAnswer
	}

	key := Key(s.turn)
	s.answers.Append(key, text)

	if s.followupDepth < s.engine.Config().MaxFollowups {
		dec := s.engine.EvaluateFollowup(ctx, FollowupRequest{
			Question:   s.current,
			Answer:     s.answers[key],
			AllAnswers: s.answers,
			Language:   s.lang,
		})
		if dec.NeedsFollowup {
			s.followupDepth++
			s.ask(dec.Question)
			return Event{Type: EventFollowup, Question: dec.Question}, nil
		}
	}
	return s.advance(ctx, "")
}

// Skip abandons the current question without evaluation and moves on. The
// replacement avoids the skipped question's theme.
func (s *Session) Skip(ctx context.Context) (Event, error) {
	if s.state == StateDone {
		return Event{}, ErrSessionDone
	}
	if s.state != StateAwaitingAnswer {
		return Event{}, ErrAlreadyStarted
	}
	return s.advance(ctx, s.current)
}

// Finish ends the interview immediately and synthesizes the diary. Needs at
// least one collected answer.
func (s *Session) Finish(ctx context.Context) (Event, error) {
	if s.state == StateDone {
		return Event{}, ErrSessionDone
	}
	return s.synthesize(ctx)
}

func (s *Session) advance(ctx context.Context, skipped string) (Event, error) {
	s.updateProfile(ctx)
	s.turn++
	s.followupDepth = 0

	sel := s.engine.SelectNextQuestion(ctx, SelectRequest{
		Answers:     s.answers,
		Profile:     s.profile(),
		TurnCount:   s.turn,
		Language:    s.lang,
		AskedTexts:  s.asked,
		SkippedText: skipped,
	})
	if sel.ShouldEnd {
		return s.synthesize(ctx)
	}
	s.ask(sel.Question)
	return Event{Type: EventQuestion, Question: sel.Question}, nil
}

func (s *Session) synthesize(ctx context.Context) (Event, error) {
	content, err := s.engine.Synthesize(ctx, s.answers, s.lang)
	if err != nil {
		return Event{}, err
	}
	s.state = StateDone
	return Event{Type: EventDone, Content: content, Answers: s.answers}, nil
}

func (s *Session) ask(question string) {
	s.asked = append(s.asked, question)
	s.current = question
	s.state = StateAwaitingAnswer
}

func (s *Session) profile() map[string]any {
	if s.profiles == nil {
		return map[string]any{}
	}
	return s.profiles.Get(s.userID)
}

func (s *Session) updateProfile(ctx context.Context) {
	if s.profiles == nil || len(s.answers.Ordered()) == 0 {
		return
	}
	updated := s.engine.ExtractProfile(ctx, s.answers, s.profile(), s.lang)
	if err := s.profiles.Set(s.userID, updated); err != nil {
		log.Printf("profile write failed for %s: %v", s.userID, err)
	}
}
