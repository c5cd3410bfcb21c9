package types

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// MessageRole represents the role of a message sender.
type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

// Message represents a single turn in a conversation.
type Message struct {
	ID        string      `json:"id"`
	Role      MessageRole `json:"role"`
	Content   string      `json:"content"`
	Timestamp time.Time   `json:"timestamp"`
	Mode      Mode        `json:"mode,omitempty"`
}

// NewMessage creates a message with a generated ID and the current time.
func NewMessage(role MessageRole, content string, mode Mode) Message {
	return Message{
		ID:        uuid.NewString(),
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
		Mode:      mode,
	}
}

// Conversation is a named, timestamped ordered list of messages.
type Conversation struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Messages  []Message `json:"messages"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DefaultTitle is used for conversations with no user messages yet.
const DefaultTitle = "New conversation"

const titleMaxLen = 40

// DeriveTitle computes a conversation title from its first user message:
// the first 40 characters plus an ellipsis when truncated, or DefaultTitle
// when no user message exists.
func DeriveTitle(messages []Message) string {
	for _, m := range messages {
		if m.Role != RoleUser {
			continue
		}
		content := strings.TrimSpace(m.Content)
		if content == "" {
			break
		}
		runes := []rune(content)
		if len(runes) > titleMaxLen {
			return string(runes[:titleMaxLen]) + "..."
		}
		return content
	}
	return DefaultTitle
}

// Favorite is a saved assistant response, independent of its owning conversation.
// Content is a copy, not a reference: deleting the conversation must not
// affect favorites.
type Favorite struct {
	ID      string    `json:"id"`
	Content string    `json:"content"`
	Mode    Mode      `json:"mode,omitempty"`
	SavedAt time.Time `json:"saved_at"`
	Query   string    `json:"query,omitempty"`
}
