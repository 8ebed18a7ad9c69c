package store

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"chatfree/models"
)

// MemoryStore mirrors MongoStore's semantics in-process. It backs the test
// suite and local development without a database.
type MemoryStore struct {
	mu    sync.RWMutex
	users map[string]*models.User // key: user ID hex
	email map[string]string       // email -> user ID hex
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users: make(map[string]*models.User),
		email: make(map[string]string),
	}
}

func (m *MemoryStore) CreateUser(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.email[u.Email]; ok {
		return ErrDuplicate
	}
	for _, existing := range m.users {
		if existing.Username == u.Username {
			return ErrDuplicate
		}
	}
	if u.ID.IsZero() {
		u.ID = bson.NewObjectID()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now()
	}
	if u.Chats == nil {
		u.Chats = []models.Chat{}
	}
	cp := *u
	m.users[u.ID.Hex()] = &cp
	m.email[u.Email] = u.ID.Hex()
	return nil
}

func (m *MemoryStore) FindUserByEmail(_ context.Context, email string) (models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.email[email]
	if !ok {
		return models.User{}, ErrNotFound
	}
	return copyUser(m.users[id]), nil
}

func (m *MemoryStore) FindUserByID(_ context.Context, id string) (models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	if !ok {
		return models.User{}, ErrNotFound
	}
	return copyUser(u), nil
}

func (m *MemoryStore) ListChats(_ context.Context, userID string) ([]models.ChatSummary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[userID]
	if !ok {
		return nil, ErrNotFound
	}
	summaries := make([]models.ChatSummary, 0, len(u.Chats))
	for _, c := range u.Chats {
		summaries = append(summaries, c.Summary())
	}
	return summaries, nil
}

func (m *MemoryStore) CreateChat(_ context.Context, userID, title string) (models.Chat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return models.Chat{}, ErrNotFound
	}
	u.Chats = append(u.Chats, models.Chat{
		ID:       bson.NewObjectID(),
		Title:    title,
		Messages: []models.Message{},
	})
	return copyChat(u.Chats[len(u.Chats)-1]), nil
}

func (m *MemoryStore) GetChat(_ context.Context, userID, chatID string) (models.Chat, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[userID]
	if !ok {
		return models.Chat{}, ErrNotFound
	}
	for _, c := range u.Chats {
		if c.ID.Hex() == chatID {
			return copyChat(c), nil
		}
	}
	return models.Chat{}, ErrNotFound
}

func (m *MemoryStore) AppendMessage(_ context.Context, userID, chatID string, msg models.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return ErrNotFound
	}
	for i := range u.Chats {
		if u.Chats[i].ID.Hex() == chatID {
			u.Chats[i].Messages = append(u.Chats[i].Messages, msg)
			return nil
		}
	}
	return ErrNotFound
}

func (m *MemoryStore) DeleteChat(_ context.Context, userID, chatID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return ErrNotFound
	}
	filtered := u.Chats[:0]
	removed := false
	for _, c := range u.Chats {
		if c.ID.Hex() == chatID {
			removed = true
			continue
		}
		filtered = append(filtered, c)
	}
	if !removed {
		return ErrNotFound
	}
	u.Chats = filtered
	return nil
}

func copyUser(u *models.User) models.User {
	cp := *u
	cp.Chats = make([]models.Chat, len(u.Chats))
	for i, c := range u.Chats {
		cp.Chats[i] = copyChat(c)
	}
	return cp
}

func copyChat(c models.Chat) models.Chat {
	cp := c
	cp.Messages = append([]models.Message(nil), c.Messages...)
	return cp
}
