package kvstore

import (
	"database/sql"
	"encoding/json"
	"errors"
)

var errEmptyKey = errors.New("kvstore: empty key")

func (s *Store) ensureSchema() error {
	if s == nil || s.db == nil {
		return nil
	}
	s.schemaOnce.Do(func() {
		_, s.schemaErr = s.db.Exec(`
CREATE TABLE IF NOT EXISTS kv_store (
  key TEXT PRIMARY KEY,
  value JSONB NOT NULL
);
`)
	})
	return s.schemaErr
}

func (s *Store) setDB(key string, raw json.RawMessage) error {
	if err := s.ensureSchema(); err != nil {
		return err
	}
	_, err := s.db.Exec(`
INSERT INTO kv_store (key, value)
VALUES ($1, $2)
ON CONFLICT (key)
DO UPDATE SET value=EXCLUDED.value`, key, []byte(raw))
	return err
}

func (s *Store) getDB(key string) (json.RawMessage, bool, error) {
	if err := s.ensureSchema(); err != nil {
		return nil, false, err
	}
	var raw []byte
	err := s.db.QueryRow(`SELECT value FROM kv_store WHERE key = $1`, key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return json.RawMessage(raw), true, nil
}

func (s *Store) deleteDB(key string) error {
	if err := s.ensureSchema(); err != nil {
		return err
	}
	_, err := s.db.Exec(`DELETE FROM kv_store WHERE key = $1`, key)
	return err
}

func (s *Store) listByPrefixDB(prefix string) ([]json.RawMessage, error) {
	if err := s.ensureSchema(); err != nil {
		return nil, err
	}
	rows, err := s.db.Query(`SELECT value FROM kv_store WHERE key LIKE $1 ORDER BY key`, likePattern(prefix))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]json.RawMessage, 0, 32)
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			continue
		}
		out = append(out, json.RawMessage(raw))
	}
	return out, rows.Err()
}

// likePattern escapes LIKE metacharacters so a literal prefix match is done.
func likePattern(prefix string) string {
	out := make([]byte, 0, len(prefix)+2)
	for i := 0; i < len(prefix); i++ {
		switch c := prefix[i]; c {
		case '%', '_', '\\':
			out = append(out, '\\', c)
		default:
			out = append(out, c)
		}
	}
	return string(out) + "%"
}
