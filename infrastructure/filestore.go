package infrastructure

import (
	"context"
	"encoding/json"
	"os"
	"sync"

	"github.com/tolikvseokey-dev/bk-reminder-bot/domain"
)

// FileStore keeps the reminders document in a single JSON file. Save writes
// a temp file and renames it over the old one, so a reader never sees a
// half-written document.
type FileStore struct {
	path string
	mu   sync.Mutex
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Load(ctx context.Context) (domain.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := os.ReadFile(s.path)
	if err != nil {
		// Missing file, unreadable file: no data yet.
		return domain.Document{}, nil
	}
	var doc domain.Document
	if err := json.Unmarshal(b, &doc); err != nil {
		return domain.Document{}, nil
	}
	return doc, nil
}

func (s *FileStore) Save(ctx context.Context, doc domain.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if doc.Reminders == nil {
		doc.Reminders = []domain.Reminder{}
	}
	b, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}
