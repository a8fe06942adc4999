package service

import (
	"testing"

	"finsight/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func snapshotWith(period models.Period, categories ...models.CategorySummary) models.Snapshot {
	return models.Snapshot{Period: period, LedgerVersion: 1, Categories: categories}
}

func budgetedCategory(name string, spent, limit int64) models.CategorySummary {
	return models.CategorySummary{
		Category:       name,
		SpentCents:     spent,
		LimitCents:     limit,
		RemainingCents: limit - spent,
		Budgeted:       true,
	}
}

func spentCategory(name string, spent int64) models.CategorySummary {
	return models.CategorySummary{Category: name, SpentCents: spent}
}

func newTestInsights(t *testing.T) *InsightService {
	t.Helper()
	return NewInsightService(models.DefaultInsightThresholds(), zap.NewNop())
}

func TestInsightService_Overspend(t *testing.T) {
	svc := newTestInsights(t)

	// 52000 spent against a 50000 limit is 104% utilization.
	current := snapshotWith(march, budgetedCategory("groceries", 52000, 50000))
	insights := svc.Derive(current, models.Snapshot{})

	require.Len(t, insights, 1)
	ins := insights[0]
	assert.Equal(t, models.InsightOverspend, ins.Kind)
	assert.Equal(t, "groceries", ins.Category)
	assert.Equal(t, models.SeverityCritical, ins.Severity)
	assert.Equal(t, int64(2000), ins.DeltaCents)
	assert.Contains(t, ins.Message, "104%")
	assert.Contains(t, ins.Message, "520.00")
	assert.Contains(t, ins.Message, "500.00")
}

func TestInsightService_BudgetRuleBoundaries(t *testing.T) {
	svc := newTestInsights(t)

	tests := []struct {
		name  string
		spent int64
		limit int64
		want  models.InsightKind
		none  bool
	}{
		{name: "one cent over limit", spent: 50001, limit: 50000, want: models.InsightOverspend},
		{name: "exactly at limit is near limit", spent: 50000, limit: 50000, want: models.InsightNearLimit},
		{name: "exactly at near threshold", spent: 42500, limit: 50000, want: models.InsightNearLimit},
		{name: "one cent under near threshold", spent: 42499, limit: 50000, none: true},
		{name: "well under budget", spent: 100, limit: 50000, none: true},
		{name: "zero limit has no utilization", spent: 12345, limit: 0, none: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			current := snapshotWith(march, budgetedCategory("food", tt.spent, tt.limit))
			insights := svc.Derive(current, models.Snapshot{})
			if tt.none {
				assert.Empty(t, insights)
				return
			}
			require.Len(t, insights, 1)
			assert.Equal(t, tt.want, insights[0].Kind)
		})
	}
}

func TestInsightService_OverspendExcludesNearLimit(t *testing.T) {
	svc := newTestInsights(t)

	// A category over its limit is also past the near-limit threshold;
	// only the overspend rule may fire.
	current := snapshotWith(march, budgetedCategory("food", 90000, 50000))
	insights := svc.Derive(current, models.Snapshot{})

	require.Len(t, insights, 1)
	assert.Equal(t, models.InsightOverspend, insights[0].Kind)
}

func TestInsightService_Trends(t *testing.T) {
	svc := newTestInsights(t)
	february := march.Previous()

	tests := []struct {
		name string
		prev int64
		cur  int64
		want models.InsightKind
		none bool
	}{
		{name: "up just above threshold", prev: 10000, cur: 12001, want: models.InsightTrendUp},
		{name: "exactly twenty percent up is quiet", prev: 10000, cur: 12000, none: true},
		{name: "down just above threshold", prev: 10000, cur: 7999, want: models.InsightTrendDown},
		{name: "exactly twenty percent down is quiet", prev: 10000, cur: 8000, none: true},
		{name: "unchanged", prev: 10000, cur: 10000, none: true},
		{name: "vanished entirely", prev: 10000, cur: 0, want: models.InsightTrendDown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			current := snapshotWith(march, spentCategory("transport", tt.cur))
			previous := snapshotWith(february, spentCategory("transport", tt.prev))
			insights := svc.Derive(current, previous)
			if tt.none {
				assert.Empty(t, insights)
				return
			}
			require.Len(t, insights, 1)
			ins := insights[0]
			assert.Equal(t, tt.want, ins.Kind)
			assert.Equal(t, models.SeverityInfo, ins.Severity)
		})
	}
}

func TestInsightService_TrendNeedsBaseline(t *testing.T) {
	svc := newTestInsights(t)

	// New categories have no previous spend to compare against, and an
	// absent previous snapshot produces no trends at all.
	current := snapshotWith(march, spentCategory("hobbies", 99999))
	previous := snapshotWith(march.Previous(), spentCategory("transport", 0))
	assert.Empty(t, svc.Derive(current, previous))
	assert.Empty(t, svc.Derive(current, models.Snapshot{}))
}

func TestInsightService_Ordering(t *testing.T) {
	svc := newTestInsights(t)
	february := march.Previous()

	current := snapshotWith(march,
		budgetedCategory("alpha", 46000, 50000),  // near limit, warning
		budgetedCategory("omega", 60000, 50000),  // overspend, critical
		budgetedCategory("beta", 45000, 50000),   // near limit, warning
		spentCategory("zeta", 20000),             // trend up, info
		spentCategory("delta", 1000),             // trend down, info
	)
	previous := snapshotWith(february,
		spentCategory("zeta", 10000),
		spentCategory("delta", 10000),
	)

	insights := svc.Derive(current, previous)
	require.Len(t, insights, 5)

	// Severity descending, then category ascending.
	assert.Equal(t, "omega", insights[0].Category)
	assert.Equal(t, models.SeverityCritical, insights[0].Severity)
	assert.Equal(t, "alpha", insights[1].Category)
	assert.Equal(t, "beta", insights[2].Category)
	assert.Equal(t, "delta", insights[3].Category)
	assert.Equal(t, models.InsightTrendDown, insights[3].Kind)
	assert.Equal(t, "zeta", insights[4].Category)
	assert.Equal(t, models.InsightTrendUp, insights[4].Kind)
}

func TestInsightService_FreshSlicePerCall(t *testing.T) {
	svc := newTestInsights(t)

	current := snapshotWith(march,
		budgetedCategory("food", 60000, 50000),
		budgetedCategory("rent", 48000, 50000),
	)

	first := svc.Derive(current, models.Snapshot{})
	require.Len(t, first, 2)
	second := svc.Derive(current, models.Snapshot{})
	assert.Equal(t, first, second)

	// Callers own the returned slice outright.
	first[0].Category = "mangled"
	first[1].Severity = models.SeverityInfo
	third := svc.Derive(current, models.Snapshot{})
	assert.Equal(t, second, third)
}

func TestInsightService_CustomThresholds(t *testing.T) {
	svc := NewInsightService(models.InsightThresholds{
		OverspendRatio: 1.10,
		NearLimitRatio: 0.50,
		TrendThreshold: 0.05,
	}, zap.NewNop())

	current := snapshotWith(march, budgetedCategory("food", 55000, 50000))
	insights := svc.Derive(current, models.Snapshot{})

	// 110% utilization is not over a 1.10 threshold, but far past 0.50.
	require.Len(t, insights, 1)
	assert.Equal(t, models.InsightNearLimit, insights[0].Kind)

	previous := snapshotWith(march.Previous(), spentCategory("gas", 10000))
	current = snapshotWith(march, spentCategory("gas", 10600))
	insights = svc.Derive(current, previous)
	require.Len(t, insights, 1)
	assert.Equal(t, models.InsightTrendUp, insights[0].Kind)
}
