package dto

import "finsight/internal/models"

type CreateTransactionRequest struct {
	Amount      string `json:"amount" validate:"required"`
	Category    string `json:"category" validate:"required"`
	Description string `json:"description"`
	Account     string `json:"account"`
	Date        string `json:"date" validate:"required"`
}

// UpdateTransactionRequest carries only the fields to change; nil
// fields keep their current values.
type UpdateTransactionRequest struct {
	Amount      *string `json:"amount,omitempty"`
	Category    *string `json:"category,omitempty"`
	Description *string `json:"description,omitempty"`
	Account     *string `json:"account,omitempty"`
	Date        *string `json:"date,omitempty"`
}

type TransactionResponse struct {
	ID          string `json:"id"`
	Amount      string `json:"amount"`
	AmountCents int64  `json:"amount_cents"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Account     string `json:"account,omitempty"`
	Date        string `json:"date"`
	Version     int    `json:"version"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

type ListTransactionsResponse struct {
	Transactions  []TransactionResponse `json:"transactions"`
	Total         int                   `json:"total"`
	LedgerVersion uint64                `json:"ledger_version"`
}

func NewTransactionResponse(tx models.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:          tx.ID.String(),
		Amount:      models.FormatAmount(tx.AmountCents),
		AmountCents: tx.AmountCents,
		Category:    tx.Category,
		Description: tx.Description,
		Account:     tx.Account,
		Date:        tx.Date.Format("2006-01-02"),
		Version:     tx.Version,
		CreatedAt:   tx.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		UpdatedAt:   tx.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

func NewListTransactionsResponse(txs []models.Transaction, version uint64) ListTransactionsResponse {
	out := ListTransactionsResponse{
		Transactions:  make([]TransactionResponse, 0, len(txs)),
		Total:         len(txs),
		LedgerVersion: version,
	}
	for _, tx := range txs {
		out.Transactions = append(out.Transactions, NewTransactionResponse(tx))
	}
	return out
}
