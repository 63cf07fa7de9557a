// Package diary persists completed diary entries and accumulated user
// profiles. Both live in the shared kv store: entries under
// "diary:{userID}:{entryID}", profiles under "user_profile:{userID}".
package diary

import (
	"encoding/json"
	"errors"
	"log"
	"sort"
	"strings"

	"github.com/google/uuid"

	"deary/internal/kvstore"
)

var ErrMissingUser = errors.New("diary: missing user id")

// Entry is one finished diary. Entries are immutable once stored; the only
// mutation the store offers is deletion.
type Entry struct {
	ID        string            `json:"id"`
	Date      string            `json:"date"`
	Content   string            `json:"content"`
	Answers   map[string]string `json:"answers"`
	Timestamp int64             `json:"timestamp"`
}

type Store struct {
	kv *kvstore.Store
}

func NewStore(kv *kvstore.Store) *Store {
	return &Store{kv: kv}
}

func entryKey(userID, entryID string) string {
	return "diary:" + userID + ":" + entryID
}

// Put stores a finished entry for the user, assigning an ID when absent.
func (s *Store) Put(userID string, entry Entry) (Entry, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return Entry{}, ErrMissingUser
	}
	if strings.TrimSpace(entry.ID) == "" {
		entry.ID = uuid.NewString()
	}
	if err := s.kv.Set(entryKey(userID, entry.ID), entry); err != nil {
		return Entry{}, err
	}
	return entry, nil
}

// List returns the user's entries, newest first.
func (s *Store) List(userID string) ([]Entry, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, ErrMissingUser
	}
	rows, err := s.kv.ListByPrefix("diary:" + userID + ":")
	if err != nil {
		return nil, err
	}
	out := make([]Entry, 0, len(rows))
	for _, raw := range rows {
		var e Entry
		if err := json.Unmarshal(raw, &e); err != nil {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp > out[j].Timestamp })
	return out, nil
}

// Delete removes one entry.
func (s *Store) Delete(userID, entryID string) error {
	userID = strings.TrimSpace(userID)
	if userID == "" || strings.TrimSpace(entryID) == "" {
		return ErrMissingUser
	}
	return s.kv.Delete(entryKey(userID, entryID))
}

// ProfileStore reads and writes the accumulating per-user profile.
type ProfileStore struct {
	kv *kvstore.Store
}

func NewProfileStore(kv *kvstore.Store) *ProfileStore {
	return &ProfileStore{kv: kv}
}

func profileKey(userID string) string {
	return "user_profile:" + userID
}

// Get returns the stored profile, or an empty one when the user has none or
// the read fails. A store outage degrades personalization, it must never
// block the interview.
func (p *ProfileStore) Get(userID string) map[string]any {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return map[string]any{}
	}
	var profile map[string]any
	ok, err := p.kv.Get(profileKey(userID), &profile)
	if err != nil {
		log.Printf("profile read failed for %s: %v", userID, err)
		return map[string]any{}
	}
	if !ok || profile == nil {
		return map[string]any{}
	}
	return profile
}

// Set overwrites the stored profile.
func (p *ProfileStore) Set(userID string, profile map[string]any) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return ErrMissingUser
	}
	return p.kv.Set(profileKey(userID), profile)
}
