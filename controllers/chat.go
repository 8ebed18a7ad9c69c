package controllers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"chatfree/middleware"
	"chatfree/models"
	"chatfree/store"
)

// Completer produces a reply for a single prompt. Calls are stateless; the
// stored history never reaches the upstream API.
type Completer interface {
	GenerateReply(ctx context.Context, text string) (string, error)
}

const upstreamErrorMessage = "Error communicating with Gemini API"

func currentUserID(c *gin.Context) string {
	raw, _ := c.Get(middleware.ContextUserIDKey)
	uid, _ := raw.(string)
	return uid
}

// ListChats returns the user's chat summaries in stored order.
func ListChats(s store.ChatStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		summaries, err := s.ListChats(c.Request.Context(), currentUserID(c))
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to fetch chats"})
			return
		}
		c.JSON(http.StatusOK, summaries)
	}
}

// CreateChat appends a new empty chat and returns the persisted element.
func CreateChat(s store.ChatStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body struct {
			Title string `json:"title"`
		}
		if err := c.ShouldBindJSON(&body); err != nil || strings.TrimSpace(body.Title) == "" {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Title is required"})
			return
		}

		chat, err := s.CreateChat(c.Request.Context(), currentUserID(c), body.Title)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to create chat"})
			return
		}
		c.JSON(http.StatusCreated, chat)
	}
}

// GetChat returns one chat with its messages.
func GetChat(s store.ChatStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		chat, err := s.GetChat(c.Request.Context(), currentUserID(c), c.Param("chatId"))
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"message": "Chat not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to fetch chat"})
			return
		}
		c.JSON(http.StatusOK, chat)
	}
}

// SendMessage relays a user message to the completion API and persists both
// turns. The user message is written before the upstream call and is never
// rolled back: a failed call leaves the chat with an unanswered message and
// retry stays with the human.
func SendMessage(s store.ChatStore, ai Completer) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body struct {
			Message string `json:"message"`
		}
		if err := c.ShouldBindJSON(&body); err != nil || strings.TrimSpace(body.Message) == "" {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Message is required."})
			return
		}

		uid := currentUserID(c)
		chatID := c.Param("chatId")
		ctx := c.Request.Context()

		if _, err := s.GetChat(ctx, uid, chatID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"message": "Chat not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to fetch chat"})
			return
		}

		userMsg := models.Message{Sender: models.SenderUser, Text: body.Message, Timestamp: time.Now()}
		if err := s.AppendMessage(ctx, uid, chatID, userMsg); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to save message"})
			return
		}

		reply, err := ai.GenerateReply(ctx, body.Message)
		if err != nil {
			log.Printf("[relay] gemini call failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": upstreamErrorMessage})
			return
		}

		botMsg := models.Message{Sender: models.SenderBot, Text: reply, Timestamp: time.Now()}
		if err := s.AppendMessage(ctx, uid, chatID, botMsg); err != nil {
			log.Printf("[relay] failed to save bot reply: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": upstreamErrorMessage})
			return
		}

		c.JSON(http.StatusOK, gin.H{"reply": reply, "chatId": chatID})
	}
}

// DeleteChat removes a chat by id, scoped to the authenticated user.
func DeleteChat(s store.ChatStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		err := s.DeleteChat(c.Request.Context(), currentUserID(c), c.Param("chatId"))
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"message": "Chat not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error while deleting chat"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Chat deleted successfully"})
	}
}
