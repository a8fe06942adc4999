package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Transaction is one ledger record. Amounts are minor units: negative
// for expenses, positive for income.
type Transaction struct {
	ID          uuid.UUID `db:"id"`
	UserID      uuid.UUID `db:"user_id"`
	AmountCents int64     `db:"amount_cents"`
	Category    string    `db:"category"`
	Description string    `db:"description"`
	Account     string    `db:"account"`
	Date        time.Time `db:"date"`
	Version     int       `db:"version"`
	Deleted     bool      `db:"deleted"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

func (t Transaction) IsExpense() bool {
	return t.AmountCents < 0
}

// ExpenseCents returns the spend magnitude, zero for income records.
func (t Transaction) ExpenseCents() int64 {
	if t.AmountCents < 0 {
		return -t.AmountCents
	}
	return 0
}

// TransactionPatch carries the fields of an edit. Nil means leave as is.
type TransactionPatch struct {
	AmountCents *int64
	Category    *string
	Description *string
	Account     *string
	Date        *time.Time
}

func (p TransactionPatch) Empty() bool {
	return p.AmountCents == nil && p.Category == nil && p.Description == nil &&
		p.Account == nil && p.Date == nil
}

// NormalizeCategory canonicalizes a category name for grouping and
// budget matching.
func NormalizeCategory(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
