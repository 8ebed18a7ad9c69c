package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"chatfree/middleware"
	"chatfree/models"
	"chatfree/store"
)

type fakeCompleter struct {
	reply string
	err   error
	calls int
}

func (f *fakeCompleter) GenerateReply(_ context.Context, _ string) (string, error) {
	f.calls++
	return f.reply, f.err
}

func newChatRouter(s store.ChatStore, ai Completer, uid string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	middleware.SetRateLimitConfig(time.Second, 1000)
	r := gin.New()
	g := r.Group("/")
	g.Use(func(c *gin.Context) {
		c.Set(middleware.ContextUserIDKey, uid)
		c.Next()
	})
	g.GET("/chat", ListChats(s))
	g.POST("/chat/new", CreateChat(s))
	g.GET("/chat/:chatId", GetChat(s))
	g.POST("/chat/:chatId/message", middleware.RateLimit(), SendMessage(s, ai))
	g.DELETE("/chat/:chatId", DeleteChat(s))
	return r
}

func seedUserAndChat(t *testing.T, s *store.MemoryStore) (uid, chatID string) {
	t.Helper()
	u := models.User{Username: "alice", Email: "alice@example.com"}
	if err := u.SetPassword("secret1"); err != nil {
		t.Fatalf("set password: %v", err)
	}
	if err := s.CreateUser(context.Background(), &u); err != nil {
		t.Fatalf("create user: %v", err)
	}
	chat, err := s.CreateChat(context.Background(), u.ID.Hex(), "greetings")
	if err != nil {
		t.Fatalf("create chat: %v", err)
	}
	return u.ID.Hex(), chat.ID.Hex()
}

func doJSON(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestSendMessageSuccessPersistsBothTurns(t *testing.T) {
	s := store.NewMemoryStore()
	uid, chatID := seedUserAndChat(t, s)
	ai := &fakeCompleter{reply: "hi, human"}
	r := newChatRouter(s, ai, uid)

	w := doJSON(r, http.MethodPost, "/chat/"+chatID+"/message", `{"message":"hello"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Reply  string `json:"reply"`
		ChatID string `json:"chatId"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Reply != "hi, human" || resp.ChatID != chatID {
		t.Fatalf("unexpected response: %+v", resp)
	}

	chat, err := s.GetChat(context.Background(), uid, chatID)
	if err != nil {
		t.Fatalf("get chat: %v", err)
	}
	if len(chat.Messages) != 2 {
		t.Fatalf("expected 2 persisted messages, got %d", len(chat.Messages))
	}
	if chat.Messages[0].Sender != models.SenderUser || chat.Messages[0].Text != "hello" {
		t.Fatalf("unexpected user message: %+v", chat.Messages[0])
	}
	if chat.Messages[1].Sender != models.SenderBot || chat.Messages[1].Text != "hi, human" {
		t.Fatalf("unexpected bot message: %+v", chat.Messages[1])
	}
}

func TestSendMessageUpstreamFailureKeepsUserMessage(t *testing.T) {
	s := store.NewMemoryStore()
	uid, chatID := seedUserAndChat(t, s)
	ai := &fakeCompleter{err: errors.New("upstream down")}
	r := newChatRouter(s, ai, uid)

	w := doJSON(r, http.MethodPost, "/chat/"+chatID+"/message", `{"message":"hello"}`)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), upstreamErrorMessage) {
		t.Fatalf("expected generic upstream message, got %s", w.Body.String())
	}

	// no rollback: the user turn stays, message count grows by exactly 1
	chat, err := s.GetChat(context.Background(), uid, chatID)
	if err != nil {
		t.Fatalf("get chat: %v", err)
	}
	if len(chat.Messages) != 1 {
		t.Fatalf("expected 1 persisted message, got %d", len(chat.Messages))
	}
	if chat.Messages[0].Sender != models.SenderUser {
		t.Fatalf("expected the surviving message to be the user's, got %+v", chat.Messages[0])
	}
}

func TestSendMessageEmptyNeverReachesUpstream(t *testing.T) {
	s := store.NewMemoryStore()
	uid, chatID := seedUserAndChat(t, s)
	ai := &fakeCompleter{reply: "unused"}
	r := newChatRouter(s, ai, uid)

	for _, body := range []string{`{"message":""}`, `{"message":"   "}`, `{}`} {
		w := doJSON(r, http.MethodPost, "/chat/"+chatID+"/message", body)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("body %s: expected 400, got %d", body, w.Code)
		}
	}
	if ai.calls != 0 {
		t.Fatalf("expected no upstream calls, got %d", ai.calls)
	}

	chat, _ := s.GetChat(context.Background(), uid, chatID)
	if len(chat.Messages) != 0 {
		t.Fatalf("expected no persisted messages, got %d", len(chat.Messages))
	}
}

func TestSendMessageUnknownChat(t *testing.T) {
	s := store.NewMemoryStore()
	uid, _ := seedUserAndChat(t, s)
	ai := &fakeCompleter{reply: "unused"}
	r := newChatRouter(s, ai, uid)

	w := doJSON(r, http.MethodPost, "/chat/64a000000000000000000000/message", `{"message":"hello"}`)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
	if ai.calls != 0 {
		t.Fatalf("expected no upstream calls, got %d", ai.calls)
	}
}

func TestCreateListGetChat(t *testing.T) {
	s := store.NewMemoryStore()
	uid, _ := seedUserAndChat(t, s)
	r := newChatRouter(s, &fakeCompleter{}, uid)

	w := doJSON(r, http.MethodPost, "/chat/new", `{"title":"second chat"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var created struct {
		ID    string `json:"_id"`
		Title string `json:"title"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode created chat: %v", err)
	}
	if created.ID == "" || created.Title != "second chat" {
		t.Fatalf("unexpected created chat: %+v", created)
	}

	w = doJSON(r, http.MethodGet, "/chat", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var summaries []models.ChatSummary
	if err := json.Unmarshal(w.Body.Bytes(), &summaries); err != nil {
		t.Fatalf("decode summaries: %v", err)
	}
	if len(summaries) != 2 || summaries[1].ID != created.ID {
		t.Fatalf("expected the new chat last, got %+v", summaries)
	}

	w = doJSON(r, http.MethodGet, "/chat/"+created.ID, "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var chat struct {
		Messages []models.Message `json:"messages"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &chat); err != nil {
		t.Fatalf("decode chat: %v", err)
	}
	if len(chat.Messages) != 0 {
		t.Fatalf("expected a fresh chat to have no messages")
	}
}

func TestDeleteChat(t *testing.T) {
	s := store.NewMemoryStore()
	uid, chatID := seedUserAndChat(t, s)
	r := newChatRouter(s, &fakeCompleter{}, uid)

	w := doJSON(r, http.MethodDelete, "/chat/64a000000000000000000000", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown chat, got %d", w.Code)
	}

	w = doJSON(r, http.MethodDelete, "/chat/"+chatID, "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	summaries, err := s.ListChats(context.Background(), uid)
	if err != nil {
		t.Fatalf("list chats: %v", err)
	}
	if len(summaries) != 0 {
		t.Fatalf("expected no chats after delete, got %d", len(summaries))
	}
}
