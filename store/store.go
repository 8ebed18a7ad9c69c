package store

import (
	"context"
	"errors"

	"chatfree/models"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("already exists")
)

// UserStore persists user accounts.
type UserStore interface {
	CreateUser(ctx context.Context, u *models.User) error
	FindUserByEmail(ctx context.Context, email string) (models.User, error)
	FindUserByID(ctx context.Context, id string) (models.User, error)
}

// ChatStore persists per-user chat history. Chats are embedded in the owning
// user's document; a chat id is only meaningful together with its user id.
type ChatStore interface {
	// ListChats returns summaries in stored (append) order.
	ListChats(ctx context.Context, userID string) ([]models.ChatSummary, error)
	// CreateChat appends an empty chat and returns the persisted element,
	// re-read after the write so the caller sees the generated id.
	CreateChat(ctx context.Context, userID, title string) (models.Chat, error)
	GetChat(ctx context.Context, userID, chatID string) (models.Chat, error)
	AppendMessage(ctx context.Context, userID, chatID string, msg models.Message) error
	// DeleteChat removes the chat atomically, scoped to the user. A delete
	// that modifies nothing reports ErrNotFound.
	DeleteChat(ctx context.Context, userID, chatID string) error
}

// Store is the full persistence surface the handlers depend on.
type Store interface {
	UserStore
	ChatStore
}
