package models

import (
	"time"

	"github.com/google/uuid"
)

// Reply sources.
const (
	ReplySourceLLM   = "llm"
	ReplySourceLocal = "local"
)

// AssistantReply is the orchestrator's answer envelope. Grounded is true
// only when the text was derived from actual ledger facts.
type AssistantReply struct {
	Text     string
	Grounded bool
	Source   string
}

// ChatMessage is one stored question/answer exchange.
type ChatMessage struct {
	ID        uuid.UUID `db:"id"`
	UserID    uuid.UUID `db:"user_id"`
	Question  string    `db:"question"`
	Answer    string    `db:"answer"`
	Grounded  bool      `db:"grounded"`
	Source    string    `db:"source"`
	CreatedAt time.Time `db:"created_at"`
}
