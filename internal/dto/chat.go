package dto

import "finsight/internal/models"

type ChatRequest struct {
	Message string `json:"message" validate:"required"`
	// Period in YYYY-MM form; empty means the current month.
	Period string `json:"period,omitempty"`
	// LedgerVersion optionally pins the ledger state the client has
	// seen; a mismatch is rejected instead of silently answering from
	// newer data.
	LedgerVersion *uint64 `json:"ledger_version,omitempty"`
}

type ChatResponse struct {
	Reply            string `json:"reply"`
	Grounded         bool   `json:"grounded"`
	Source           string `json:"source"`
	LedgerVersion    uint64 `json:"ledger_version"`
	ContextFacts     int    `json:"context_facts"`
	ContextTruncated bool   `json:"context_truncated"`
}

type ChatMessageResponse struct {
	ID        string `json:"id"`
	Question  string `json:"question"`
	Answer    string `json:"answer"`
	Grounded  bool   `json:"grounded"`
	Source    string `json:"source"`
	CreatedAt string `json:"created_at"`
}

type ChatHistoryResponse struct {
	Messages []ChatMessageResponse `json:"messages"`
}

func NewChatHistoryResponse(messages []models.ChatMessage) ChatHistoryResponse {
	out := ChatHistoryResponse{Messages: make([]ChatMessageResponse, 0, len(messages))}
	for _, m := range messages {
		out.Messages = append(out.Messages, ChatMessageResponse{
			ID:        m.ID.String(),
			Question:  m.Question,
			Answer:    m.Answer,
			Grounded:  m.Grounded,
			Source:    m.Source,
			CreatedAt: m.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		})
	}
	return out
}
