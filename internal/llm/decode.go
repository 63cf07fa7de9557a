package llm

import (
	"encoding/json"
	"strings"

	"github.com/kaptinlin/jsonrepair"
)

// DecodeObject extracts the outermost JSON object from model output and
// returns it as a raw message. Models occasionally wrap JSON in prose or
// markdown fences, or emit slightly broken JSON (trailing commas, single
// quotes); the repair pass handles those before we give up.
func DecodeObject(text string) (json.RawMessage, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end < start {
		return nil, ErrMalformed
	}
	candidate := text[start : end+1]

	if json.Valid([]byte(candidate)) {
		return json.RawMessage(candidate), nil
	}
	repaired, err := jsonrepair.JSONRepair(candidate)
	if err != nil || !json.Valid([]byte(repaired)) {
		return nil, ErrMalformed
	}
	return json.RawMessage(repaired), nil
}

// DecodeObjectInto is DecodeObject plus unmarshalling into v.
func DecodeObjectInto(text string, v any) error {
	raw, err := DecodeObject(text)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return ErrMalformed
	}
	return nil
}
