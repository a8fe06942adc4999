package models

import "time"

// CategorySummary aggregates one category within a period.
type CategorySummary struct {
	Category       string
	SpentCents     int64
	LimitCents     int64
	RemainingCents int64
	Budgeted       bool
}

// UtilizationDefined reports whether spent/limit is meaningful for this
// category. Unbudgeted categories and zero limits have no utilization.
func (c CategorySummary) UtilizationDefined() bool {
	return c.Budgeted && c.LimitCents > 0
}

// Utilization is for presentation only. Rule evaluation compares the
// integer pair directly to avoid float drift.
func (c CategorySummary) Utilization() float64 {
	return float64(c.SpentCents) / float64(c.LimitCents)
}

// Totals carries the period-wide sums in minor units.
type Totals struct {
	SpentCents  int64
	IncomeCents int64
	NetCents    int64
}

// Snapshot is the aggregate of a ledger for one period. Snapshots
// computed for the same (ledger version, period) are identical.
type Snapshot struct {
	Period        Period
	LedgerVersion uint64
	Categories    []CategorySummary // sorted by category
	Totals        Totals
}

func (s Snapshot) IsEmpty() bool {
	return len(s.Categories) == 0 && s.Totals == Totals{}
}

func (s Snapshot) Category(name string) (CategorySummary, bool) {
	name = NormalizeCategory(name)
	for _, c := range s.Categories {
		if c.Category == name {
			return c, true
		}
	}
	return CategorySummary{}, false
}

// TopExpense returns the category with the highest spend.
func (s Snapshot) TopExpense() (CategorySummary, bool) {
	var top CategorySummary
	found := false
	for _, c := range s.Categories {
		if c.SpentCents > top.SpentCents {
			top = c
			found = true
		}
	}
	return top, found
}

// DailySpend is one point of the per-day trend series.
type DailySpend struct {
	Date       time.Time
	Category   string
	SpentCents int64
}

// PeriodTotal is one point of the month-over-month series.
type PeriodTotal struct {
	Period      Period
	SpentCents  int64
	IncomeCents int64
}

// CategoryForecast is a naive projection of next-period spend from the
// trailing average.
type CategoryForecast struct {
	Category      string
	ExpectedCents int64
}

// Anomaly flags a transaction far outside its category's usual range.
type Anomaly struct {
	Transaction    Transaction
	MeanCents      int64
	DeviationCents int64
}
