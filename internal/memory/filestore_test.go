package memory

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

func newTestFileStore(t *testing.T) *FileStore {
	t.Helper()
	s, err := NewFileStore(filepath.Join(t.TempDir(), "memory.json"))
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}
	return s
}

func TestFileStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestFileStore(t)

	if err := s.SaveInteraction(ctx, "alice", "Hi there", "Hello Alice!"); err != nil {
		t.Fatalf("SaveInteraction() error = %v", err)
	}

	entries, err := s.Context(ctx, "alice")
	if err != nil {
		t.Fatalf("Context() error = %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("len(entries) = %d, want 2", len(entries))
	}
	if entries[0].Role != RoleUser || entries[0].Content != "Hi there" {
		t.Errorf("entries[0] = %+v, want user turn %q", entries[0], "Hi there")
	}
	if entries[1].Role != RoleAssistant || entries[1].Content != "Hello Alice!" {
		t.Errorf("entries[1] = %+v, want assistant turn %q", entries[1], "Hello Alice!")
	}
}

func TestFileStoreContextCapAndRecency(t *testing.T) {
	ctx := context.Background()
	s := newTestFileStore(t)

	for i := 0; i < 30; i++ {
		msg := fmt.Sprintf("message %d", i)
		if err := s.SaveInteraction(ctx, "alice", msg, "reply "+msg); err != nil {
			t.Fatalf("SaveInteraction(%d) error = %v", i, err)
		}
	}

	entries, err := s.Context(ctx, "alice")
	if err != nil {
		t.Fatalf("Context() error = %v", err)
	}
	if len(entries) != 20 {
		t.Fatalf("len(entries) = %d, want 20", len(entries))
	}
	// Oldest surviving entry is interaction 20; newest is 29.
	if entries[0].Content != "message 20" {
		t.Errorf("oldest entry = %q, want %q", entries[0].Content, "message 20")
	}
	if entries[len(entries)-1].Content != "reply message 29" {
		t.Errorf("newest entry = %q, want %q", entries[len(entries)-1].Content, "reply message 29")
	}
}

func TestFileStoreUserPartition(t *testing.T) {
	ctx := context.Background()
	s := newTestFileStore(t)

	if err := s.SaveInteraction(ctx, "alice", "alice secret", "noted"); err != nil {
		t.Fatalf("SaveInteraction() error = %v", err)
	}
	if err := s.SaveInteraction(ctx, "bob", "bob question", "answer"); err != nil {
		t.Fatalf("SaveInteraction() error = %v", err)
	}

	entries, err := s.Context(ctx, "bob")
	if err != nil {
		t.Fatalf("Context() error = %v", err)
	}
	for _, e := range entries {
		if e.Content == "alice secret" {
			t.Fatalf("bob's context leaked alice's interaction: %+v", entries)
		}
	}

	empty, err := s.Context(ctx, "carol")
	if err != nil {
		t.Fatalf("Context() error = %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("unknown user context = %+v, want empty", empty)
	}
}

func TestFileStoreInteractionCap(t *testing.T) {
	ctx := context.Background()
	s := newTestFileStore(t)

	for i := 0; i < fileStoreUserCap+10; i++ {
		if err := s.SaveInteraction(ctx, "alice", fmt.Sprintf("m%d", i), "r"); err != nil {
			t.Fatalf("SaveInteraction(%d) error = %v", i, err)
		}
	}

	s.mu.Lock()
	stored := len(s.users["alice"])
	oldest := s.users["alice"][0].UserMessage
	s.mu.Unlock()

	if stored != fileStoreUserCap {
		t.Errorf("stored = %d, want %d", stored, fileStoreUserCap)
	}
	if oldest != "m10" {
		t.Errorf("oldest retained = %q, want %q", oldest, "m10")
	}
}

func TestFileStoreSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "memory.json")

	first, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}
	if err := first.SaveInteraction(ctx, "alice", "remember me", "I will"); err != nil {
		t.Fatalf("SaveInteraction() error = %v", err)
	}

	second, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	entries, err := second.Context(ctx, "alice")
	if err != nil {
		t.Fatalf("Context() error = %v", err)
	}
	if len(entries) != 2 || entries[0].Content != "remember me" {
		t.Fatalf("reopened context = %+v, want persisted interaction", entries)
	}
}

func TestFileStoreCorruptFileDegradesToEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "memory.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("seed corrupt file: %v", err)
	}

	s, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("NewFileStore() error = %v, want graceful recovery", err)
	}
	entries, err := s.Context(context.Background(), "alice")
	if err != nil {
		t.Fatalf("Context() error = %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("context from corrupt file = %+v, want empty", entries)
	}
}

func TestFileStoreSummary(t *testing.T) {
	ctx := context.Background()
	s := newTestFileStore(t)

	if _, ok, err := s.Summary(ctx, "alice"); err != nil || ok {
		t.Fatalf("Summary() before history = (%v, %v), want no summary", ok, err)
	}

	long := "this user message is definitely longer than fifty characters in total"
	for _, msg := range []string{"first topic", "second topic", "third topic", long} {
		if err := s.SaveInteraction(ctx, "alice", msg, "reply"); err != nil {
			t.Fatalf("SaveInteraction() error = %v", err)
		}
	}

	summary, ok, err := s.Summary(ctx, "alice")
	if err != nil || !ok {
		t.Fatalf("Summary() = (%v, %v), want summary present", ok, err)
	}
	want := "User alice: 4 previous interactions. Recent topics: second topic, third topic, " + long[:50] + "..."
	if summary != want {
		t.Errorf("Summary() = %q, want %q", summary, want)
	}
}

func TestFileStoreClearUser(t *testing.T) {
	ctx := context.Background()
	s := newTestFileStore(t)

	if err := s.SaveInteraction(ctx, "alice", "hi", "hello"); err != nil {
		t.Fatalf("SaveInteraction() error = %v", err)
	}
	if err := s.ClearUser(ctx, "alice"); err != nil {
		t.Fatalf("ClearUser() error = %v", err)
	}
	entries, err := s.Context(ctx, "alice")
	if err != nil {
		t.Fatalf("Context() error = %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("context after clear = %+v, want empty", entries)
	}

	// Clearing an unknown user is a no-op, not an error.
	if err := s.ClearUser(ctx, "nobody"); err != nil {
		t.Fatalf("ClearUser(unknown) error = %v", err)
	}
}
