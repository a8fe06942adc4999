package service

import (
	"bytes"
	"math"
	"sort"
	"sync"
	"time"

	"finsight/internal/ledger"
	"finsight/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const anomalyMinSamples = 3

type snapshotKey struct {
	userID uuid.UUID
	period models.Period
}

// AnalyticsService computes aggregates over ledger views. Snapshots are
// cached per user and keyed by period; a version change drops the
// user's whole cache rather than chasing individual entries. All the
// arithmetic below is integer minor units, so results are reproducible
// bit for bit.
type AnalyticsService struct {
	logger *zap.Logger

	mu       sync.Mutex
	versions map[uuid.UUID]uint64
	cache    map[snapshotKey]models.Snapshot
}

func NewAnalyticsService(logger *zap.Logger) *AnalyticsService {
	return &AnalyticsService{
		logger:   logger,
		versions: make(map[uuid.UUID]uint64),
		cache:    make(map[snapshotKey]models.Snapshot),
	}
}

// Snapshot returns the aggregate for one period, from cache when the
// ledger version still matches.
func (s *AnalyticsService) Snapshot(userID uuid.UUID, view ledger.View, period models.Period) models.Snapshot {
	s.mu.Lock()
	if s.versions[userID] != view.Version {
		for key := range s.cache {
			if key.userID == userID {
				delete(s.cache, key)
			}
		}
		s.versions[userID] = view.Version
		s.logger.Debug("Snapshot cache invalidated",
			zap.String("user_id", userID.String()),
			zap.Uint64("version", view.Version),
		)
	}
	key := snapshotKey{userID: userID, period: period}
	if snap, ok := s.cache[key]; ok {
		s.mu.Unlock()
		return cloneSnapshot(snap)
	}
	s.mu.Unlock()

	snap := computeSnapshot(view, period)

	s.mu.Lock()
	// A newer view may have invalidated the cache while we computed;
	// only keep results that still belong to the current version.
	if s.versions[userID] == view.Version {
		s.cache[key] = snap
	}
	s.mu.Unlock()

	return cloneSnapshot(snap)
}

// computeSnapshot is a pure function of its inputs: equal (view
// version, period) pairs always produce identical snapshots.
func computeSnapshot(view ledger.View, period models.Period) models.Snapshot {
	spent := make(map[string]int64)
	var totals models.Totals

	for _, tx := range view.Transactions {
		if !period.Contains(tx.Date) {
			continue
		}
		if tx.AmountCents < 0 {
			spent[tx.Category] += -tx.AmountCents
			totals.SpentCents += -tx.AmountCents
		} else {
			totals.IncomeCents += tx.AmountCents
		}
	}
	totals.NetCents = totals.IncomeCents - totals.SpentCents

	limits := make(map[string]int64)
	for _, b := range view.Budgets {
		if b.Period == period {
			limits[b.Category] = b.LimitCents
		}
	}

	names := make([]string, 0, len(spent)+len(limits))
	for c := range spent {
		names = append(names, c)
	}
	for c := range limits {
		if _, ok := spent[c]; !ok {
			names = append(names, c)
		}
	}
	sort.Strings(names)

	categories := make([]models.CategorySummary, 0, len(names))
	for _, name := range names {
		limit, budgeted := limits[name]
		cs := models.CategorySummary{
			Category:   name,
			SpentCents: spent[name],
			Budgeted:   budgeted,
		}
		if budgeted {
			cs.LimitCents = limit
			cs.RemainingCents = limit - cs.SpentCents
		}
		categories = append(categories, cs)
	}

	return models.Snapshot{
		Period:        period,
		LedgerVersion: view.Version,
		Categories:    categories,
		Totals:        totals,
	}
}

func cloneSnapshot(s models.Snapshot) models.Snapshot {
	out := s
	out.Categories = append([]models.CategorySummary(nil), s.Categories...)
	return out
}

// DailySeries buckets expenses by calendar day and category between
// from and to inclusive, sorted by day then category.
func (s *AnalyticsService) DailySeries(view ledger.View, from, to time.Time) []models.DailySpend {
	type bucket struct {
		date     time.Time
		category string
	}
	from = truncateDay(from)
	to = truncateDay(to)

	sums := make(map[bucket]int64)
	for _, tx := range view.Transactions {
		if tx.AmountCents >= 0 {
			continue
		}
		d := truncateDay(tx.Date)
		if d.Before(from) || d.After(to) {
			continue
		}
		sums[bucket{date: d, category: tx.Category}] += -tx.AmountCents
	}

	out := make([]models.DailySpend, 0, len(sums))
	for b, cents := range sums {
		out = append(out, models.DailySpend{Date: b.date, Category: b.category, SpentCents: cents})
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// PeriodSeries computes totals for the n periods ending at end, oldest
// first. Periods are independent and the view is immutable, so they are
// aggregated concurrently.
func (s *AnalyticsService) PeriodSeries(view ledger.View, end models.Period, n int) ([]models.PeriodTotal, error) {
	if n <= 0 {
		return []models.PeriodTotal{}, nil
	}

	periods := make([]models.Period, n)
	p := end
	for i := n - 1; i >= 0; i-- {
		periods[i] = p
		p = p.Previous()
	}

	out := make([]models.PeriodTotal, n)
	var g errgroup.Group
	for i, period := range periods {
		g.Go(func() error {
			snap := computeSnapshot(view, period)
			out[i] = models.PeriodTotal{
				Period:      period,
				SpentCents:  snap.Totals.SpentCents,
				IncomeCents: snap.Totals.IncomeCents,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Forecast projects per-category spend for period as the plain average
// over the lookback periods immediately before it.
func (s *AnalyticsService) Forecast(view ledger.View, period models.Period, lookback int) []models.CategoryForecast {
	if lookback <= 0 {
		lookback = 3
	}

	sums := make(map[string]int64)
	p := period.Previous()
	for i := 0; i < lookback; i++ {
		snap := computeSnapshot(view, p)
		for _, c := range snap.Categories {
			if c.SpentCents > 0 {
				sums[c.Category] += c.SpentCents
			}
		}
		p = p.Previous()
	}

	out := make([]models.CategoryForecast, 0, len(sums))
	for category, total := range sums {
		out = append(out, models.CategoryForecast{
			Category:      category,
			ExpectedCents: total / int64(lookback),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out
}

// Anomalies flags expenses in the period sitting more than two standard
// deviations from their category's historical mean. Categories with
// fewer than three records have no usable baseline.
func (s *AnalyticsService) Anomalies(view ledger.View, period models.Period) []models.Anomaly {
	byCategory := make(map[string][]models.Transaction)
	for _, tx := range view.Transactions {
		if tx.AmountCents < 0 {
			byCategory[tx.Category] = append(byCategory[tx.Category], tx)
		}
	}

	var out []models.Anomaly
	for _, txs := range byCategory {
		if len(txs) < anomalyMinSamples {
			continue
		}

		var sum float64
		for _, tx := range txs {
			sum += float64(tx.ExpenseCents())
		}
		mean := sum / float64(len(txs))

		var variance float64
		for _, tx := range txs {
			d := float64(tx.ExpenseCents()) - mean
			variance += d * d
		}
		stddev := math.Sqrt(variance / float64(len(txs)))
		if stddev == 0 {
			continue
		}

		for _, tx := range txs {
			if !period.Contains(tx.Date) {
				continue
			}
			deviation := math.Abs(float64(tx.ExpenseCents()) - mean)
			if deviation > 2*stddev {
				out = append(out, models.Anomaly{
					Transaction:    tx,
					MeanCents:      int64(math.Round(mean)),
					DeviationCents: int64(math.Round(deviation)),
				})
			}
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].DeviationCents != out[j].DeviationCents {
			return out[i].DeviationCents > out[j].DeviationCents
		}
		return bytes.Compare(out[i].Transaction.ID[:], out[j].Transaction.ID[:]) < 0
	})
	return out
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
