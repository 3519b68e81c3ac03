package models

import "time"

// FileRef is an uploaded file attached to a chat.
type FileRef struct {
	Name   string `json:"name"`
	FileID string `json:"fileId"`
}

// Chat is a conversation owned by one authenticated user.
type Chat struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Title     string    `json:"title"`
	FocusMode string    `json:"focusMode"`
	Files     []FileRef `json:"files"`
	CreatedAt time.Time `json:"createdAt"`
}

// Role of a stored message.
type Role string

const (
	RoleUser       Role = "user"
	RoleAssistant  Role = "assistant"
	RoleSource     Role = "source"
	RoleSuggestion Role = "suggestion"
)

// Message is one row of a chat transcript. ID is the storage ordinal and
// totally orders messages within a chat; MessageID is the client-visible token.
type Message struct {
	ID          int64          `json:"id"`
	MessageID   string         `json:"messageId"`
	ChatID      string         `json:"chatId"`
	UserID      string         `json:"userId"`
	Role        Role           `json:"role"`
	Content     string         `json:"content"`
	Sources     []SearchResult `json:"sources,omitempty"`
	Suggestions []string       `json:"suggestions,omitempty"`
	CreatedAt   time.Time      `json:"createdAt"`
}
