package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Message senders. A chat alternates user/bot turns but the store does not
// enforce it: a failed relay call leaves a user message without a reply.
const (
	SenderUser = "user"
	SenderBot  = "bot"
)

type Message struct {
	Sender    string    `bson:"sender" json:"sender"`
	Text      string    `bson:"text" json:"text"`
	Timestamp time.Time `bson:"timestamp" json:"timestamp"`
}

// Chat is one titled conversation, embedded in its owner's user document.
type Chat struct {
	ID       bson.ObjectID `bson:"_id,omitempty" json:"_id"`
	Title    string        `bson:"title" json:"title"`
	Messages []Message     `bson:"messages" json:"messages"`
}

// ChatSummary is the list-view projection of a chat.
type ChatSummary struct {
	ID           string `json:"_id"`
	Title        string `json:"title"`
	MessageCount int    `json:"messages_count"`
}

func (c Chat) Summary() ChatSummary {
	return ChatSummary{ID: c.ID.Hex(), Title: c.Title, MessageCount: len(c.Messages)}
}
