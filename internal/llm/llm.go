package llm

import (
	"context"
	"encoding/json"
	"errors"
)

var (
	// ErrUnavailable means the model capability is not configured or not
	// reachable (missing credential, network failure, exhausted retries).
	ErrUnavailable = errors.New("llm: model unavailable")
	// ErrMalformed means the model answered, but not with parseable JSON.
	ErrMalformed = errors.New("llm: malformed response from model")
)

// Options carries per-call generation parameters.
type Options struct {
	Temperature     float32
	MaxOutputTokens int32
}

// Client is the text-generation capability the rest of the code talks to.
// Callers must treat every error as a signal to run their deterministic
// fallback; the model has no availability guarantee.
type Client interface {
	Name() string
	GenerateJSON(ctx context.Context, prompt string, opts Options) (json.RawMessage, error)
	GenerateText(ctx context.Context, prompt string, opts Options) (string, error)
	Close() error
}
