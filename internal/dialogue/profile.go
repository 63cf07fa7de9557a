package dialogue

import (
	"context"
	"fmt"
	"log"
	"strings"

	"deary/internal/llm"
)

// collectionKeys are the profile attributes that accumulate: they are
// unioned on merge and never shrunk.
var collectionKeys = map[string]bool{
	"hobbies":   true,
	"friends":   true,
	"interests": true,
}

// MergeProfile folds freshly extracted attributes into an existing profile.
// Collection attributes are unioned with duplicates and empty entries
// removed; scalars overwrite only when the extracted value is non-nil; keys
// absent from extracted are left untouched.
func MergeProfile(existing, extracted map[string]any) map[string]any {
	merged := make(map[string]any, len(existing)+len(extracted))
	for k, v := range existing {
		merged[k] = v
	}
	for k, v := range extracted {
		if v == nil {
			continue
		}
		if collectionKeys[k] {
			combined := unionStrings(toStringList(merged[k]), toStringList(v))
			if len(combined) > 0 {
				merged[k] = combined
			}
			continue
		}
		merged[k] = v
	}
	return merged
}

func toStringList(v any) []string {
	switch x := v.(type) {
	case nil:
		return nil
	case []string:
		return x
	case []any:
		out := make([]string, 0, len(x))
		for _, item := range x {
			if s, ok := item.(string); ok {
				out = append(out, s)
			} else if item != nil {
				out = append(out, fmt.Sprint(item))
			}
		}
		return out
	case string:
		return []string{x}
	}
	return nil
}

func unionStrings(lists ...[]string) []string {
	seen := make(map[string]bool)
	out := make([]string, 0)
	for _, list := range lists {
		for _, s := range list {
			s = strings.TrimSpace(s)
			if s == "" || seen[s] {
				continue
			}
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

// ExtractProfile asks the model for persona attributes worth remembering
// (occupation, hobbies, people, lifestyle, ...) and merges them into the
// existing profile. Any gateway trouble returns the existing profile
// unchanged; personalization degrades, the interview continues.
func (e *Engine) ExtractProfile(ctx context.Context, answers AnswerSet, existing map[string]any, lang Language) map[string]any {
	if existing == nil {
		existing = map[string]any{}
	}
	if e.client == nil {
		return existing
	}
	raw, err := e.client.GenerateJSON(
		llm.WithPhase(ctx, llm.PhaseProfile),
		profilePrompt(answers, existing, lang),
		llm.Options{Temperature: 0.3, MaxOutputTokens: 1000},
	)
	if err != nil {
		log.Printf("profile extraction failed, keeping existing profile: %v", err)
		return existing
	}
	var extracted map[string]any
	if err := llm.DecodeObjectInto(string(raw), &extracted); err != nil || extracted == nil {
		return existing
	}
	return MergeProfile(existing, extracted)
}
