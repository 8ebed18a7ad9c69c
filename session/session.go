package session

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"
)

// State names the phase the session is in.
type State int

const (
	StateNoChat State = iota
	StateNewChatPending
	StateChatLoaded
	StateMessageInFlight
)

// NewChatID is the sentinel identifier for a conversation that exists only
// locally until the first message creates it server-side.
const NewChatID = "new"

// errorReply is the synthetic bot bubble shown when a send fails. It is local
// only; the server never stores it, so the transcript diverges from the
// persisted history until the chat is reloaded.
const errorReply = "Sorry, an error occurred. Please try again."

var ErrEmptyMessage = errors.New("message is empty")

// Session is the client-side chat state machine: the chat list, the active
// chat's transcript, and the transitions the UI drives. Not safe for
// concurrent use; it models a single-threaded UI event loop.
type Session struct {
	api   *Client
	creds *CredentialStore

	chats    []ChatSummary
	activeID string
	messages []Message
	state    State
}

// NewSession wires the state machine to an API client. creds may be nil when
// the caller manages credentials itself.
func NewSession(api *Client, creds *CredentialStore) *Session {
	return &Session{api: api, creds: creds}
}

func (s *Session) State() State { return s.state }

func (s *Session) ActiveChatID() string { return s.activeID }

func (s *Session) Chats() []ChatSummary { return s.chats }

func (s *Session) Messages() []Message { return s.messages }

// Load fetches the chat list and selects the most recent chat, or moves to
// new-chat-pending when the user has none.
func (s *Session) Load(ctx context.Context) error {
	chats, err := s.api.ListChats(ctx)
	if err != nil {
		return err
	}
	s.chats = chats
	if len(chats) == 0 {
		s.NewChat()
		return nil
	}
	return s.SelectChat(ctx, chats[len(chats)-1].ID)
}

// NewChat clears the transcript and parks the session on the sentinel id.
// No network call is involved until the first send.
func (s *Session) NewChat() {
	s.activeID = NewChatID
	s.messages = nil
	s.state = StateNewChatPending
}

// SelectChat switches the active chat. Selecting the already-active id is a
// no-op with no network call.
func (s *Session) SelectChat(ctx context.Context, chatID string) error {
	if chatID == s.activeID {
		return nil
	}
	if chatID == NewChatID {
		s.NewChat()
		return nil
	}
	s.activeID = chatID
	chat, err := s.api.GetChat(ctx, chatID)
	if err != nil {
		// transcript keeps whatever was loaded before; a reselect retries
		return err
	}
	s.messages = chat.Messages
	s.state = StateChatLoaded
	return nil
}

// Send posts a message to the active chat, creating the chat first when the
// session is on the sentinel. The user message is appended optimistically
// before any network round trip; a failed send appends a local error bubble
// instead of surfacing an error.
func (s *Session) Send(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyMessage
	}

	s.messages = append(s.messages, Message{Sender: "user", Text: text, Timestamp: time.Now()})
	s.state = StateMessageInFlight

	if s.activeID == NewChatID || s.activeID == "" {
		chat, err := s.api.CreateChat(ctx, text)
		if err != nil {
			log.Printf("[session] failed to create chat: %v", err)
			s.appendErrorBubble()
			s.state = StateNewChatPending
			return nil
		}
		s.chats = append(s.chats, ChatSummary{ID: chat.ID, Title: chat.Title})
		s.activeID = chat.ID
	}

	reply, err := s.api.SendMessage(ctx, s.activeID, text)
	if err != nil {
		log.Printf("[session] failed to send message: %v", err)
		s.appendErrorBubble()
	} else {
		s.messages = append(s.messages, Message{Sender: "bot", Text: reply, Timestamp: time.Now()})
	}
	s.state = StateChatLoaded
	return nil
}

// DeleteChat removes a chat after the confirm callback approves (the modal
// analog). When the active chat goes away the session falls back to the new
// most-recent chat, or to new-chat-pending when none remain.
func (s *Session) DeleteChat(ctx context.Context, chatID string, confirm func() bool) error {
	if confirm != nil && !confirm() {
		return nil
	}
	if err := s.api.DeleteChat(ctx, chatID); err != nil {
		log.Printf("[session] failed to delete chat: %v", err)
		return err
	}

	filtered := s.chats[:0]
	for _, c := range s.chats {
		if c.ID != chatID {
			filtered = append(filtered, c)
		}
	}
	s.chats = filtered

	if s.activeID == chatID {
		if len(s.chats) > 0 {
			return s.SelectChat(ctx, s.chats[len(s.chats)-1].ID)
		}
		s.NewChat()
	}
	return nil
}

// Logout asks the server to revoke the token, ignoring failures, then always
// clears the stored credentials and local state.
func (s *Session) Logout(ctx context.Context, confirm func() bool) error {
	if confirm != nil && !confirm() {
		return nil
	}
	if err := s.api.Logout(ctx); err != nil {
		log.Printf("[session] server logout failed, clearing locally anyway: %v", err)
	}
	var clearErr error
	if s.creds != nil {
		clearErr = s.creds.Clear()
	}
	s.api.SetToken("")
	s.chats = nil
	s.messages = nil
	s.activeID = ""
	s.state = StateNoChat
	return clearErr
}

func (s *Session) appendErrorBubble() {
	s.messages = append(s.messages, Message{Sender: "bot", Text: errorReply, Timestamp: time.Now()})
}
