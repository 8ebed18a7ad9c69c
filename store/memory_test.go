package store

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"chatfree/models"
)

func newTestUser(t *testing.T, s *MemoryStore) string {
	t.Helper()
	u := models.User{Username: "alice", Email: "alice@example.com"}
	if err := u.SetPassword("secret1"); err != nil {
		t.Fatalf("set password: %v", err)
	}
	if err := s.CreateUser(context.Background(), &u); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u.ID.Hex()
}

func TestAppendMessageKeepsOrder(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	uid := newTestUser(t, s)

	chat, err := s.CreateChat(ctx, uid, "ordering")
	if err != nil {
		t.Fatalf("create chat: %v", err)
	}

	for i := 0; i < 5; i++ {
		sender := models.SenderUser
		if i%2 == 1 {
			sender = models.SenderBot
		}
		msg := models.Message{Sender: sender, Text: fmt.Sprintf("turn %d", i)}
		if err := s.AppendMessage(ctx, uid, chat.ID.Hex(), msg); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}

	got, err := s.GetChat(ctx, uid, chat.ID.Hex())
	if err != nil {
		t.Fatalf("get chat: %v", err)
	}
	if len(got.Messages) != 5 {
		t.Fatalf("expected 5 messages, got %d", len(got.Messages))
	}
	for i, m := range got.Messages {
		if want := fmt.Sprintf("turn %d", i); m.Text != want {
			t.Fatalf("message %d: got %q want %q", i, m.Text, want)
		}
	}
}

func TestCreateChatReturnsPersistedElement(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	uid := newTestUser(t, s)

	first, err := s.CreateChat(ctx, uid, "first")
	if err != nil {
		t.Fatalf("create chat: %v", err)
	}
	second, err := s.CreateChat(ctx, uid, "second")
	if err != nil {
		t.Fatalf("create chat: %v", err)
	}
	if first.ID.IsZero() || second.ID.IsZero() {
		t.Fatalf("expected generated ids, got %v and %v", first.ID, second.ID)
	}
	if first.ID == second.ID {
		t.Fatalf("expected distinct ids")
	}

	summaries, err := s.ListChats(ctx, uid)
	if err != nil {
		t.Fatalf("list chats: %v", err)
	}
	if len(summaries) != 2 {
		t.Fatalf("expected 2 chats, got %d", len(summaries))
	}
	if summaries[1].ID != second.ID.Hex() {
		t.Fatalf("expected last summary to be the newest chat")
	}
}

func TestDeleteChatNotFoundLeavesOthers(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	uid := newTestUser(t, s)

	kept, err := s.CreateChat(ctx, uid, "kept")
	if err != nil {
		t.Fatalf("create chat: %v", err)
	}

	if err := s.DeleteChat(ctx, uid, "64a000000000000000000000"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown chat, got %v", err)
	}

	summaries, err := s.ListChats(ctx, uid)
	if err != nil {
		t.Fatalf("list chats: %v", err)
	}
	if len(summaries) != 1 || summaries[0].ID != kept.ID.Hex() {
		t.Fatalf("expected the existing chat to be untouched, got %+v", summaries)
	}

	if err := s.DeleteChat(ctx, uid, kept.ID.Hex()); err != nil {
		t.Fatalf("delete existing chat: %v", err)
	}
	if err := s.DeleteChat(ctx, uid, kept.ID.Hex()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestChatsAreScopedToUser(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	uid := newTestUser(t, s)

	other := models.User{Username: "bob", Email: "bob@example.com"}
	if err := other.SetPassword("secret2"); err != nil {
		t.Fatalf("set password: %v", err)
	}
	if err := s.CreateUser(ctx, &other); err != nil {
		t.Fatalf("create user: %v", err)
	}

	chat, err := s.CreateChat(ctx, uid, "private")
	if err != nil {
		t.Fatalf("create chat: %v", err)
	}

	if _, err := s.GetChat(ctx, other.ID.Hex(), chat.ID.Hex()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected cross-user get to fail, got %v", err)
	}
	if err := s.DeleteChat(ctx, other.ID.Hex(), chat.ID.Hex()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected cross-user delete to fail, got %v", err)
	}
}

func TestCreateUserDuplicate(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	newTestUser(t, s)

	dup := models.User{Username: "alice2", Email: "alice@example.com"}
	if err := dup.SetPassword("secret3"); err != nil {
		t.Fatalf("set password: %v", err)
	}
	if err := s.CreateUser(ctx, &dup); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
}

func TestUnknownUserIsNotFound(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	if _, err := s.ListChats(ctx, "64a000000000000000000001"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound listing chats, got %v", err)
	}
	if _, err := s.CreateChat(ctx, "64a000000000000000000001", "x"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound creating chat, got %v", err)
	}
}
