package session

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client calls the chat backend over HTTP with a bearer token.
type Client struct {
	baseURL    string
	httpClient *http.Client
	token      string
}

// APIError carries the backend's status and message body.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("api error %d", e.Status)
}

type ChatSummary struct {
	ID           string `json:"_id"`
	Title        string `json:"title"`
	MessageCount int    `json:"messages_count"`
}

type Message struct {
	Sender    string    `json:"sender"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

type Chat struct {
	ID       string    `json:"_id"`
	Title    string    `json:"title"`
	Messages []Message `json:"messages"`
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

// SetToken sets the bearer token used on subsequent calls.
func (c *Client) SetToken(token string) {
	c.token = token
}

func (c *Client) Register(ctx context.Context, username, email, password, password2 string) error {
	payload := map[string]string{
		"username":  username,
		"email":     email,
		"password":  password,
		"password2": password2,
	}
	return c.doJSON(ctx, http.MethodPost, "/register", payload, nil)
}

// Login authenticates and returns the credentials, including the token the
// client adopts for later calls.
func (c *Client) Login(ctx context.Context, email, password string) (Credentials, error) {
	payload := map[string]string{"email": email, "password": password}
	var resp struct {
		Token    string `json:"token"`
		ID       string `json:"id"`
		Username string `json:"username"`
		Email    string `json:"email"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/login", payload, &resp); err != nil {
		return Credentials{}, err
	}
	creds := Credentials{Token: resp.Token, UserID: resp.ID, Username: resp.Username, Email: resp.Email}
	c.token = creds.Token
	return creds, nil
}

func (c *Client) Logout(ctx context.Context) error {
	return c.doJSON(ctx, http.MethodPost, "/logout", nil, nil)
}

func (c *Client) ListChats(ctx context.Context) ([]ChatSummary, error) {
	var chats []ChatSummary
	if err := c.doJSON(ctx, http.MethodGet, "/chat", nil, &chats); err != nil {
		return nil, err
	}
	return chats, nil
}

func (c *Client) CreateChat(ctx context.Context, title string) (Chat, error) {
	var chat Chat
	err := c.doJSON(ctx, http.MethodPost, "/chat/new", map[string]string{"title": title}, &chat)
	return chat, err
}

func (c *Client) GetChat(ctx context.Context, chatID string) (Chat, error) {
	var chat Chat
	err := c.doJSON(ctx, http.MethodGet, "/chat/"+chatID, nil, &chat)
	return chat, err
}

// SendMessage posts a message and returns the bot reply text.
func (c *Client) SendMessage(ctx context.Context, chatID, text string) (string, error) {
	var resp struct {
		Reply  string `json:"reply"`
		ChatID string `json:"chatId"`
	}
	err := c.doJSON(ctx, http.MethodPost, "/chat/"+chatID+"/message", map[string]string{"message": text}, &resp)
	if err != nil {
		return "", err
	}
	return resp.Reply, nil
}

func (c *Client) DeleteChat(ctx context.Context, chatID string) error {
	return c.doJSON(ctx, http.MethodDelete, "/chat/"+chatID, nil, nil)
}

func (c *Client) doJSON(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode}
		var parsed struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(respBytes, &parsed) == nil {
			apiErr.Message = parsed.Message
		}
		return apiErr
	}
	if out != nil {
		return json.Unmarshal(respBytes, out)
	}
	return nil
}
