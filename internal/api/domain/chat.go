package domain

import "time"

// Topic is a chat context: a named conversation template with its own model
// configuration. SystemPrompt and FirstMessage are write-once at creation.
type Topic struct {
	ID           int64
	Name         string
	Description  string
	Model        string
	SystemPrompt string
	FirstMessage string
	Notes        string
	Temperature  float64
	MaxTokens    int
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Message is one turn in a topic's conversation.
type Message struct {
	ID        int64
	TopicID   int64
	UserID    int64
	Role      string // "system", "user" or "assistant"
	Content   string
	CreatedAt time.Time
}
