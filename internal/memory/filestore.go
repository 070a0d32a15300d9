package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Per-user cap on interactions kept by the file substitute.
const fileStoreUserCap = 50

// FileStore is the local substitute for the postgres backend: a per-user
// append-only interaction log serialized as JSON at a well-known path. It
// carries the same contract as PostgresStore so callers never observe which
// variant served a request, only reduced personalization quality.
type FileStore struct {
	mu    sync.Mutex
	path  string
	users map[string][]Interaction
}

func NewFileStore(path string) (*FileStore, error) {
	s := &FileStore{
		path:  path,
		users: make(map[string][]Interaction),
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create memory dir: %w", err)
	}

	raw, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		return s, nil
	case err != nil:
		return nil, fmt.Errorf("read memory file: %w", err)
	}

	if err := json.Unmarshal(raw, &s.users); err != nil {
		// A corrupt file degrades to an empty history rather than refusing
		// to start; the next save rewrites it.
		s.users = make(map[string][]Interaction)
	}
	return s, nil
}

func (s *FileStore) Context(_ context.Context, userID string) ([]ContextEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.users[userID]
	if len(items) > contextInteractionLimit {
		items = items[len(items)-contextInteractionLimit:]
	}
	return entriesFromInteractions(items), nil
}

func (s *FileStore) SaveInteraction(_ context.Context, userID, userMessage, botResponse string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := append(s.users[userID], Interaction{
		ID:          uuid.NewString(),
		UserID:      userID,
		UserMessage: userMessage,
		BotResponse: botResponse,
		CreatedAt:   time.Now().UTC(),
	})
	if len(items) > fileStoreUserCap {
		items = items[len(items)-fileStoreUserCap:]
	}
	s.users[userID] = items

	return s.persistLocked()
}

func (s *FileStore) Summary(_ context.Context, userID string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.users[userID]
	if len(items) == 0 {
		return "", false, nil
	}
	return summaryText(userID, len(items), items), true, nil
}

func (s *FileStore) ClearUser(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[userID]; !exists {
		return nil
	}
	delete(s.users, userID)
	return s.persistLocked()
}

// persistLocked writes the full map through a temp file and rename so a crash
// mid-write never corrupts the durable copy. Caller holds s.mu.
func (s *FileStore) persistLocked() error {
	raw, err := json.MarshalIndent(s.users, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal memory: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("write memory file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace memory file: %w", err)
	}
	return nil
}

func (s *FileStore) Close() error { return nil }
