package kvstore

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

func (s *Store) ensureLoadedFile() {
	s.loadOnce.Do(func() {
		b, err := os.ReadFile(s.path)
		if err != nil {
			return
		}
		var rows map[string]json.RawMessage
		if err := json.Unmarshal(b, &rows); err != nil {
			return
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		for k, v := range rows {
			if strings.TrimSpace(k) == "" {
				continue
			}
			s.byKey[k] = v
		}
	})
}

func (s *Store) saveFile() {
	s.mu.RLock()
	rows := make(map[string]json.RawMessage, len(s.byKey))
	for k, v := range s.byKey {
		rows[k] = v
	}
	s.mu.RUnlock()

	b, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return
	}
	_ = os.MkdirAll(filepath.Dir(s.path), 0o755)
	_ = os.WriteFile(s.path, b, 0o644)
}

func (s *Store) setFile(key string, raw json.RawMessage) error {
	s.ensureLoadedFile()
	s.mu.Lock()
	s.byKey[key] = raw
	s.mu.Unlock()
	s.saveFile()
	return nil
}

func (s *Store) getFile(key string) (json.RawMessage, bool) {
	s.ensureLoadedFile()
	s.mu.RLock()
	raw, ok := s.byKey[key]
	s.mu.RUnlock()
	return raw, ok
}

func (s *Store) deleteFile(key string) error {
	s.ensureLoadedFile()
	s.mu.Lock()
	delete(s.byKey, key)
	s.mu.Unlock()
	s.saveFile()
	return nil
}

func (s *Store) listByPrefixFile(prefix string) []json.RawMessage {
	s.ensureLoadedFile()
	s.mu.RLock()
	keys := make([]string, 0, len(s.byKey))
	for k := range s.byKey {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	s.mu.RUnlock()
	sort.Strings(keys)

	out := make([]json.RawMessage, 0, len(keys))
	s.mu.RLock()
	for _, k := range keys {
		out = append(out, s.byKey[k])
	}
	s.mu.RUnlock()
	return out
}
