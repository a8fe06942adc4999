package service

import (
	"strings"
	"testing"
	"time"

	"finsight/internal/models"
	"finsight/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestBuilder(tokens int) *ContextBuilder {
	return NewContextBuilder(&config.AssistantConfig{
		ContextTokens: tokens,
		RecentFacts:   5,
	}, zap.NewNop())
}

func overspendInsight(category string, delta int64) models.Insight {
	return models.Insight{
		Kind:       models.InsightOverspend,
		Category:   category,
		Severity:   models.SeverityCritical,
		DeltaCents: delta,
		Message:    category + " is over budget",
	}
}

func TestContextBuilder_EmptyInputs(t *testing.T) {
	b := newTestBuilder(512)

	payload := b.Build("how am I doing?", models.Snapshot{Period: march}, nil, nil)
	assert.True(t, payload.IsEmpty())
	assert.False(t, payload.Truncated)
	assert.Equal(t, 0, payload.Tokens)
}

func TestContextBuilder_InsightsComeFirst(t *testing.T) {
	b := newTestBuilder(512)

	snap := snapshotWith(march,
		budgetedCategory("groceries", 52000, 50000),
		spentCategory("coffee", 4500),
	)
	snap.Totals = models.Totals{SpentCents: 56500, IncomeCents: 300000, NetCents: 243500}

	recent := []models.Transaction{
		expense("coffee", 450, utc(2024, time.March, 20)),
	}
	insights := []models.Insight{overspendInsight("groceries", 2000)}

	payload := b.Build("anything", snap, insights, recent)

	require.NotEmpty(t, payload.Facts)
	assert.False(t, payload.Truncated)
	assert.Equal(t, "groceries is over budget", payload.Facts[0].Value)

	// Totals and categories follow, recent transactions close the list.
	last := payload.Facts[len(payload.Facts)-1]
	assert.True(t, strings.HasPrefix(last.Metric, "transaction "))
	assert.LessOrEqual(t, payload.Tokens, 512)
}

func TestContextBuilder_KeywordPromotionWithinClass(t *testing.T) {
	b := newTestBuilder(512)

	// Groceries dwarfs coffee in spend, but the question names coffee.
	snap := snapshotWith(march,
		spentCategory("groceries", 90000),
		spentCategory("coffee", 450),
	)
	snap.Totals = models.Totals{SpentCents: 90450, NetCents: -90450}

	payload := b.Build("how much coffee this month?", snap, nil, nil)
	require.NotEmpty(t, payload.Facts)
	assert.Equal(t, "coffee", payload.Facts[0].Category)
}

func TestContextBuilder_KeywordsNeverOutrankInsights(t *testing.T) {
	b := newTestBuilder(512)

	snap := snapshotWith(march,
		spentCategory("coffee", 450),
		budgetedCategory("groceries", 52000, 50000),
	)
	snap.Totals = models.Totals{SpentCents: 52450, NetCents: -52450}
	insights := []models.Insight{overspendInsight("groceries", 2000)}

	payload := b.Build("tell me about coffee", snap, insights, nil)
	require.NotEmpty(t, payload.Facts)

	// The insight still leads even though the query matches an
	// aggregate fact.
	assert.Equal(t, "groceries is over budget", payload.Facts[0].Value)
}

func TestContextBuilder_TruncatesInsteadOfDroppingTopInsight(t *testing.T) {
	// Budget of 6 tokens is 24 characters, far below the insight line.
	b := newTestBuilder(6)

	long := overspendInsight("groceries", 2000)
	long.Message = "groceries is over budget: spent 520.00 of 500.00 (104% used), trim the weekly shop"

	snap := snapshotWith(march, budgetedCategory("groceries", 52000, 50000))
	snap.Totals = models.Totals{SpentCents: 52000, NetCents: -52000}

	payload := b.Build("status", snap, []models.Insight{long}, nil)

	require.Len(t, payload.Facts, 1)
	assert.True(t, payload.Truncated)
	assert.True(t, strings.HasSuffix(payload.Facts[0].Value, "..."))
	assert.LessOrEqual(t, payload.Tokens, 6)
	// The surviving prefix still identifies the insight.
	assert.Contains(t, payload.Facts[0].Value, "groceries")
}

func TestContextBuilder_MarksDroppedFacts(t *testing.T) {
	snap := snapshotWith(march,
		spentCategory("alpha", 1000),
		spentCategory("beta", 2000),
		spentCategory("gamma", 3000),
	)
	snap.Totals = models.Totals{SpentCents: 6000, NetCents: -6000}

	wide := newTestBuilder(4096)
	full := wide.Build("summary", snap, nil, nil)
	require.False(t, full.Truncated)
	fullCount := len(full.Facts)

	// A budget that fits some but not all facts must say so.
	narrow := newTestBuilder(full.Tokens - 1)
	cut := narrow.Build("summary", snap, nil, nil)
	assert.True(t, cut.Truncated)
	assert.Less(t, len(cut.Facts), fullCount)
	assert.NotEmpty(t, cut.Facts)
	assert.LessOrEqual(t, cut.Tokens, full.Tokens-1)
}

func TestContextBuilder_RecentLimit(t *testing.T) {
	b := NewContextBuilder(&config.AssistantConfig{
		ContextTokens: 4096,
		RecentFacts:   2,
	}, zap.NewNop())

	recent := []models.Transaction{
		expense("a", 100, utc(2024, time.March, 1)),
		expense("b", 200, utc(2024, time.March, 2)),
		expense("c", 300, utc(2024, time.March, 3)),
	}

	payload := b.Build("recent", models.Snapshot{Period: march}, nil, recent)
	assert.Len(t, payload.Facts, 2)
}

func TestContextBuilder_PayloadRenderCarriesMarker(t *testing.T) {
	payload := models.ContextPayload{
		Facts:     []models.Fact{{Category: "food", Metric: "month to date", Value: "12.00 spent"}},
		Tokens:    8,
		Truncated: true,
	}
	rendered := payload.Render()
	assert.Contains(t, rendered, "1. [food] month to date: 12.00 spent")
	assert.True(t, strings.HasSuffix(strings.TrimSpace(rendered), models.TruncationMarker))
}
