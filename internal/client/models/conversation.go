package models

import "time"

// Conversation is one entry of the server conversation list. ID is
// server-assigned and opaque.
type Conversation struct {
	ID           string
	Title        string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	MessageCount int
	LastMessage  *string
}

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// EntryState tracks an optimistic log entry until the server settles it.
type EntryState string

const (
	StatePending   EntryState = "pending"
	StateConfirmed EntryState = "confirmed"
	StateFailed    EntryState = "failed"
)

// Message is one bubble of the active conversation.
type Message struct {
	ID        string
	Text      string
	Role      Role
	Timestamp time.Time
	State     EntryState
}

func (m Message) IsUser() bool { return m.Role == RoleUser }

// Exchange is the server record of one question/answer pair.
type Exchange struct {
	ID        int64
	Question  string
	Answer    string
	Timestamp time.Time
}

// ChatReply is the server answer to one chat exchange.
type ChatReply struct {
	Answer         string
	ConversationID string
}
