// Package storage persists the posted-state document: the mapping from a
// product URL to its posting record. The document is loaded wholesale at
// startup and rewritten wholesale after every successful post, so each
// record is durable before the next candidate is attempted.
package storage

import (
	"encoding/json"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/BunsoMendoza/dealbot-tech/internal/models"
)

type Store struct {
	path    string
	mu      sync.RWMutex
	records map[string]models.PostedRecord
}

// Open loads the posted-state document at path. A missing or unparsable
// document yields an empty store — the bot must always be able to start.
func Open(path string) *Store {
	s := &Store{
		path:    path,
		records: make(map[string]models.PostedRecord),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("Failed to read posted-state document, starting empty", "path", path, "error", err)
		}
		return s
	}
	if err := json.Unmarshal(data, &s.records); err != nil {
		slog.Warn("Posted-state document is unparsable, starting empty", "path", path, "error", err)
		s.records = make(map[string]models.PostedRecord)
	}
	return s
}

// Contains reports whether url already has a posting record.
func (s *Store) Contains(url string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.records[url]
	return ok
}

// Record writes a posting record for url and persists the full document
// synchronously. On a persistence failure the in-memory record is kept and
// the error returned: the post already happened externally, and losing the
// durability write is less harmful than re-posting. A later run may still
// re-post the URL if the write never lands.
func (s *Store) Record(url, title, externalID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[url] = models.PostedRecord{
		Title:      title,
		ExternalID: externalID,
		PostedAt:   time.Now().UTC(),
	}
	return s.persistLocked()
}

func (s *Store) persistLocked() error {
	data, err := json.MarshalIndent(s.records, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0644)
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Snapshot returns a copy of the mapping for read-only consumers like the
// health endpoint.
func (s *Store) Snapshot() map[string]models.PostedRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]models.PostedRecord, len(s.records))
	for k, v := range s.records {
		out[k] = v
	}
	return out
}
