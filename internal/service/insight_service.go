package service

import (
	"fmt"
	"math"
	"sort"

	"finsight/internal/models"

	"go.uber.org/zap"
)

// bpUnit is basis points per unit ratio. Thresholds are converted once
// so every rule comparison runs on integers.
const bpUnit = 10000

// InsightService derives budget and trend observations from snapshots.
type InsightService struct {
	overspendBP int64
	nearLimitBP int64
	trendBP     int64
	logger      *zap.Logger
}

func NewInsightService(t models.InsightThresholds, logger *zap.Logger) *InsightService {
	return &InsightService{
		overspendBP: toBasisPoints(t.OverspendRatio),
		nearLimitBP: toBasisPoints(t.NearLimitRatio),
		trendBP:     toBasisPoints(t.TrendThreshold),
		logger:      logger,
	}
}

func toBasisPoints(ratio float64) int64 {
	return int64(math.Round(ratio * bpUnit))
}

// Derive recomputes the insight list for current against previous. It
// reads nothing but its arguments and returns a fresh slice on every
// call, ordered by severity descending, then category, then kind.
// A category triggers at most one budget rule: overspend wins over
// near-limit.
func (s *InsightService) Derive(current, previous models.Snapshot) []models.Insight {
	insights := make([]models.Insight, 0, len(current.Categories))

	for _, c := range current.Categories {
		if !c.UtilizationDefined() {
			continue
		}
		spentBP := c.SpentCents * bpUnit
		switch {
		case spentBP > s.overspendBP*c.LimitCents:
			insights = append(insights, models.Insight{
				Kind:       models.InsightOverspend,
				Category:   c.Category,
				Severity:   models.SeverityCritical,
				DeltaCents: c.SpentCents - c.LimitCents,
				Message: fmt.Sprintf("%s is over budget: spent %s of %s (%d%% used)",
					c.Category, models.FormatAmount(c.SpentCents),
					models.FormatAmount(c.LimitCents), utilizationPercent(c)),
			})
		case spentBP >= s.nearLimitBP*c.LimitCents:
			insights = append(insights, models.Insight{
				Kind:       models.InsightNearLimit,
				Category:   c.Category,
				Severity:   models.SeverityWarning,
				DeltaCents: c.LimitCents - c.SpentCents,
				Message: fmt.Sprintf("%s is close to its limit: spent %s of %s (%d%% used)",
					c.Category, models.FormatAmount(c.SpentCents),
					models.FormatAmount(c.LimitCents), utilizationPercent(c)),
			})
		}
	}

	insights = append(insights, s.trendInsights(current, previous)...)

	sort.Slice(insights, func(i, j int) bool {
		a, b := insights[i], insights[j]
		if a.Severity != b.Severity {
			return a.Severity > b.Severity
		}
		if a.Category != b.Category {
			return a.Category < b.Category
		}
		return a.Kind < b.Kind
	})

	s.logger.Debug("Insights derived",
		zap.String("period", current.Period.String()),
		zap.Int("count", len(insights)),
	)
	return insights
}

// trendInsights compares per-category spend against the previous
// period. Categories with no spend last period are skipped: there is no
// base to compute a change against.
func (s *InsightService) trendInsights(current, previous models.Snapshot) []models.Insight {
	if len(previous.Categories) == 0 {
		return nil
	}

	curSpent := make(map[string]int64, len(current.Categories))
	for _, c := range current.Categories {
		curSpent[c.Category] = c.SpentCents
	}

	var out []models.Insight
	for _, c := range previous.Categories {
		prev := c.SpentCents
		if prev <= 0 {
			continue
		}
		cur := curSpent[c.Category]
		delta := cur - prev
		if delta == 0 {
			continue
		}

		kind := models.InsightTrendUp
		direction := "rose"
		abs := delta
		if delta < 0 {
			kind = models.InsightTrendDown
			direction = "fell"
			abs = -delta
		}
		if abs*bpUnit <= s.trendBP*prev {
			continue
		}

		out = append(out, models.Insight{
			Kind:       kind,
			Category:   c.Category,
			Severity:   models.SeverityInfo,
			DeltaCents: abs,
			Message: fmt.Sprintf("Spending on %s %s %d%% vs %s (%s to %s)",
				c.Category, direction, abs*100/prev, previous.Period,
				models.FormatAmount(prev), models.FormatAmount(cur)),
		})
	}
	return out
}

// utilizationPercent is the integer percentage of the limit spent,
// rounded down.
func utilizationPercent(c models.CategorySummary) int64 {
	return c.SpentCents * 100 / c.LimitCents
}
