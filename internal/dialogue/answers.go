package dialogue

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"
)

// AnswerSet maps question keys ("q_0", "q_1", ...) to the user's free-text
// answers. Keys are assigned by turn index and never reused; a follow-up
// answer is folded onto its main question's key, so one key always holds one
// full exchange.
type AnswerSet map[string]string

// Key returns the answer key for turn index i.
func Key(i int) string {
	return fmt.Sprintf("q_%d", i)
}

// QA is one key/answer pair in turn order.
type QA struct {
	Key    string
	Answer string
}

// Ordered returns the non-empty answers sorted by turn index. Keys without
// the q_N shape sort after the numbered ones, in lexical order.
func (a AnswerSet) Ordered() []QA {
	out := make([]QA, 0, len(a))
	for k, v := range a {
		if strings.TrimSpace(v) == "" {
			continue
		}
		out = append(out, QA{Key: k, Answer: v})
	}
	sort.Slice(out, func(i, j int) bool {
		ni, iok := keyIndex(out[i].Key)
		nj, jok := keyIndex(out[j].Key)
		if iok && jok {
			return ni < nj
		}
		if iok != jok {
			return iok
		}
		return out[i].Key < out[j].Key
	})
	return out
}

func keyIndex(key string) (int, bool) {
	rest, ok := strings.CutPrefix(key, "q_")
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(rest)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Append space-joins more text onto an existing answer. Used when a
// follow-up answer arrives for a question that already has one.
func (a AnswerSet) Append(key, text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	if prev := strings.TrimSpace(a[key]); prev != "" {
		a[key] = prev + " " + text
		return
	}
	a[key] = text
}

// ContextText renders the answers as "key: value" lines in turn order, the
// shape every prompt embeds.
func (a AnswerSet) ContextText() string {
	var b strings.Builder
	for _, qa := range a.Ordered() {
		fmt.Fprintf(&b, "%s: %s\n", qa.Key, qa.Answer)
	}
	return strings.TrimRight(b.String(), "\n")
}

// SubstantiveCount counts answers whose trimmed length reaches minRunes.
func (a AnswerSet) SubstantiveCount(minRunes int) int {
	n := 0
	for _, qa := range a.Ordered() {
		if utf8.RuneCountInString(strings.TrimSpace(qa.Answer)) >= minRunes {
			n++
		}
	}
	return n
}
