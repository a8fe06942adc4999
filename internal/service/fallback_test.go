package service

import (
	"testing"
	"time"

	"finsight/internal/ledger"
	"finsight/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestIsGreeting(t *testing.T) {
	tests := []struct {
		message string
		want    bool
	}{
		{"hi", true},
		{"Hello!", true},
		{"hey there", true},
		{"HI there friend", true},
		{"greetings", true},
		{"how much did I spend on hiking?", false},
		{"this is a question", false},
		{"", false},
		{"hello how much did I spend this month", false},
	}

	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			assert.Equal(t, tt.want, IsGreeting(tt.message))
		})
	}
}

func newTestLocal() (*LocalAnswerer, uuid.UUID, ledger.View) {
	analytics := NewAnalyticsService(zap.NewNop())
	userID := uuid.New()

	view := ledger.View{
		Version: 4,
		Transactions: []models.Transaction{
			income("salary", 300000, utc(2024, time.March, 1)),
			expense("groceries", 52000, utc(2024, time.March, 10)),
			expense("rent", 120000, utc(2024, time.March, 1)),
			expense("coffee", 4500, utc(2024, time.March, 12)),
			expense("groceries", 8000, utc(2024, time.February, 20)),
		},
		Budgets: []models.Budget{
			budget("groceries", march, 50000),
		},
	}
	return NewLocalAnswerer(analytics, zap.NewNop()), userID, view
}

func TestLocalAnswerer_TopCategory(t *testing.T) {
	local, userID, view := newTestLocal()

	got := local.Answer(userID, view, march, "where did I spend the most?", utc(2024, time.March, 20))
	assert.Contains(t, got, "rent")
	assert.Contains(t, got, "1200.00")
}

func TestLocalAnswerer_CategoryWithBudget(t *testing.T) {
	local, userID, view := newTestLocal()

	got := local.Answer(userID, view, march, "how are groceries doing?", utc(2024, time.March, 20))
	assert.Contains(t, got, "520.00")
	assert.Contains(t, got, "500.00")
	assert.Contains(t, got, "104%")
}

func TestLocalAnswerer_CategoryWithoutBudget(t *testing.T) {
	local, userID, view := newTestLocal()

	got := local.Answer(userID, view, march, "what about coffee?", utc(2024, time.March, 20))
	assert.Contains(t, got, "45.00")
	assert.Contains(t, got, "no budget")
}

func TestLocalAnswerer_SpecificDate(t *testing.T) {
	local, userID, view := newTestLocal()

	got := local.Answer(userID, view, march, "what did I spend on 2024-03-10?", utc(2024, time.March, 20))
	assert.Contains(t, got, "2024-03-10")
	assert.Contains(t, got, "520.00")

	got = local.Answer(userID, view, march, "and on 2024-03-11?", utc(2024, time.March, 20))
	assert.Contains(t, got, "No spending recorded")
}

func TestLocalAnswerer_TodayAndYesterday(t *testing.T) {
	local, userID, view := newTestLocal()
	now := utc(2024, time.March, 13)

	got := local.Answer(userID, view, march, "spending yesterday?", now)
	assert.Contains(t, got, "2024-03-12")
	assert.Contains(t, got, "45.00")

	got = local.Answer(userID, view, march, "what about today", now)
	assert.Contains(t, got, "2024-03-13")
}

func TestLocalAnswerer_MonthName(t *testing.T) {
	local, userID, view := newTestLocal()

	got := local.Answer(userID, view, march, "how was february?", utc(2024, time.March, 20))
	assert.Contains(t, got, "2024-02")
	assert.Contains(t, got, "80.00")
}

func TestLocalAnswerer_Summary(t *testing.T) {
	local, userID, view := newTestLocal()

	got := local.Answer(userID, view, march, "give me a summary", utc(2024, time.March, 20))
	assert.Contains(t, got, "1765.00")
	assert.Contains(t, got, "3000.00")
	assert.Contains(t, got, "rent")
}

func TestLocalAnswerer_UnknownQuestion(t *testing.T) {
	local, userID, view := newTestLocal()

	got := local.Answer(userID, view, march, "will it rain tomorrow?", utc(2024, time.March, 20))
	assert.Contains(t, got, "summary")
}

func TestLocalAnswerer_Greeting(t *testing.T) {
	local, userID, view := newTestLocal()
	analytics := local.analytics

	snap := analytics.Snapshot(userID, view, march)
	got := local.Greeting(snap)
	assert.Contains(t, got, "2024-03")
	assert.Contains(t, got, "1765.00")

	empty := analytics.Snapshot(userID, view, models.Period{Year: 2030, Month: time.January})
	assert.Contains(t, local.Greeting(empty), "Add some transactions")
}
