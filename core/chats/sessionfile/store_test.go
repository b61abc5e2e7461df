package sessionfile

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/quillchat/voice-core/core/chats"
)

func TestSaveAndLoadRoundTrip(t *testing.T) {
	store := NewStore(t.TempDir())

	session := chats.NewSession()
	session.Title = "Expense policy"
	if err := session.Append(chats.RoleUser, "what is the meal allowance?"); err != nil {
		t.Fatalf("expected append to succeed, got %v", err)
	}
	if err := session.Append(chats.RoleAssistant, "Forty euros per day."); err != nil {
		t.Fatalf("expected append to succeed, got %v", err)
	}

	if err := store.Save(session); err != nil {
		t.Fatalf("expected save to succeed, got %v", err)
	}

	loaded, err := store.Load(session.ID)
	if err != nil {
		t.Fatalf("expected load to succeed, got %v", err)
	}
	if loaded.Title != "Expense policy" {
		t.Fatalf("expected title to round-trip, got %q", loaded.Title)
	}
	if loaded.MessageCount() != 2 {
		t.Fatalf("expected 2 messages, got %d", loaded.MessageCount())
	}
	if loaded.Messages[1].Content != "Forty euros per day." {
		t.Fatalf("expected assistant message to round-trip, got %q", loaded.Messages[1].Content)
	}
}

func TestLoadMissingSession(t *testing.T) {
	store := NewStore(t.TempDir())

	if _, err := store.Load("nonexistent"); err == nil {
		t.Fatalf("expected an error for a missing session")
	}
}

func TestListSortsNewestFirst(t *testing.T) {
	store := NewStore(t.TempDir())

	older := chats.NewSession()
	older.UpdatedAt = time.Now().Add(-time.Hour)
	newer := chats.NewSession()

	if err := store.Save(older); err != nil {
		t.Fatalf("expected save to succeed, got %v", err)
	}
	if err := store.Save(newer); err != nil {
		t.Fatalf("expected save to succeed, got %v", err)
	}

	sessions, err := store.List()
	if err != nil {
		t.Fatalf("expected list to succeed, got %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(sessions))
	}
	if sessions[0].ID != newer.ID {
		t.Fatalf("expected newest session first, got %s", sessions[0].ID)
	}
}

func TestListSkipsCorruptedFiles(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)

	session := chats.NewSession()
	if err := store.Save(session); err != nil {
		t.Fatalf("expected save to succeed, got %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{not json"), 0644); err != nil {
		t.Fatalf("expected fixture write to succeed, got %v", err)
	}

	sessions, err := store.List()
	if err != nil {
		t.Fatalf("expected list to succeed, got %v", err)
	}
	if len(sessions) != 1 {
		t.Fatalf("expected corrupted file to be skipped, got %d sessions", len(sessions))
	}
}

func TestListOnMissingDirectory(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "never-created"))

	sessions, err := store.List()
	if err != nil {
		t.Fatalf("expected list on a missing directory to succeed, got %v", err)
	}
	if len(sessions) != 0 {
		t.Fatalf("expected no sessions, got %d", len(sessions))
	}
}

func TestDeleteRemovesSession(t *testing.T) {
	store := NewStore(t.TempDir())

	session := chats.NewSession()
	if err := store.Save(session); err != nil {
		t.Fatalf("expected save to succeed, got %v", err)
	}
	if err := store.Delete(session.ID); err != nil {
		t.Fatalf("expected delete to succeed, got %v", err)
	}
	if _, err := store.Load(session.ID); err == nil {
		t.Fatalf("expected load after delete to fail")
	}
}
