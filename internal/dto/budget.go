package dto

import "finsight/internal/models"

type SetBudgetRequest struct {
	Category string `json:"category" validate:"required"`
	Period   string `json:"period" validate:"required"`
	Limit    string `json:"limit" validate:"required"`
}

type BudgetResponse struct {
	Category   string `json:"category"`
	Period     string `json:"period"`
	Limit      string `json:"limit"`
	LimitCents int64  `json:"limit_cents"`
	Version    int    `json:"version"`
	UpdatedAt  string `json:"updated_at"`
}

type ListBudgetsResponse struct {
	Budgets       []BudgetResponse `json:"budgets"`
	LedgerVersion uint64           `json:"ledger_version"`
}

func NewBudgetResponse(b models.Budget) BudgetResponse {
	return BudgetResponse{
		Category:   b.Category,
		Period:     b.Period.String(),
		Limit:      models.FormatAmount(b.LimitCents),
		LimitCents: b.LimitCents,
		Version:    b.Version,
		UpdatedAt:  b.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

func NewListBudgetsResponse(budgets []models.Budget, version uint64) ListBudgetsResponse {
	out := ListBudgetsResponse{
		Budgets:       make([]BudgetResponse, 0, len(budgets)),
		LedgerVersion: version,
	}
	for _, b := range budgets {
		out.Budgets = append(out.Budgets, NewBudgetResponse(b))
	}
	return out
}
