package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/techcorp/website/internal/core"
)

// Storage persists the store snapshot as a single document. Load returns
// nil data when nothing has been stored yet.
type Storage interface {
	Load() ([]byte, error)
	Save(data []byte) error
}

// FileStorage keeps the snapshot in one JSON file on disk.
type FileStorage struct {
	Path string
}

func (f *FileStorage) Load() ([]byte, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read chat state: %w", err)
	}

	return data, nil
}

func (f *FileStorage) Save(data []byte) error {
	if err := os.MkdirAll(filepath.Dir(f.Path), 0o755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}

	if err := os.WriteFile(f.Path, data, 0o644); err != nil {
		return fmt.Errorf("write chat state: %w", err)
	}

	return nil
}

// Cleanup caps the stored sessions at maxSessions, discarding the least
// recently updated ones. It rewrites only the sessions field, leaving the
// rest of the document untouched. Intended to run at startup, before the
// store loads.
func (f *FileStorage) Cleanup(maxSessions int) error {
	data, err := f.Load()
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return nil
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parse chat state: %w", err)
	}

	var sessions []core.Session
	if raw, ok := doc["sessions"]; ok {
		if err := json.Unmarshal(raw, &sessions); err != nil {
			return fmt.Errorf("parse stored sessions: %w", err)
		}
	}

	if len(sessions) <= maxSessions {
		return nil
	}

	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].UpdatedAt.After(sessions[j].UpdatedAt)
	})
	sessions = sessions[:maxSessions]

	trimmed, err := json.Marshal(sessions)
	if err != nil {
		return fmt.Errorf("serialize trimmed sessions: %w", err)
	}
	doc["sessions"] = trimmed

	updated, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("serialize chat state: %w", err)
	}

	return f.Save(updated)
}
