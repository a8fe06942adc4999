package service

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"finsight/internal/ledger"
	"finsight/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var greetingWords = map[string]bool{
	"hi": true, "hello": true, "hey": true, "yo": true,
	"hiya": true, "greetings": true,
}

// IsGreeting reports whether the message is a bare greeting rather
// than a question worth a completion call.
func IsGreeting(message string) bool {
	words := strings.Fields(strings.ToLower(message))
	if len(words) == 0 || len(words) > 3 {
		return false
	}
	return greetingWords[strings.Trim(words[0], "!,.?")]
}

var dateQueryRe = regexp.MustCompile(`\b(\d{4}-\d{2}-\d{2})\b`)

var monthNames = []struct {
	name  string
	month time.Month
}{
	{"january", time.January}, {"february", time.February},
	{"march", time.March}, {"april", time.April},
	{"may", time.May}, {"june", time.June},
	{"july", time.July}, {"august", time.August},
	{"september", time.September}, {"october", time.October},
	{"november", time.November}, {"december", time.December},
}

// LocalAnswerer produces deterministic answers straight from the
// aggregates. It backs the chat flow when the completion backend is
// down and handles the greeting shortcut, so degraded replies still
// quote real figures instead of inventing them.
type LocalAnswerer struct {
	analytics *AnalyticsService
	logger    *zap.Logger
}

func NewLocalAnswerer(analytics *AnalyticsService, logger *zap.Logger) *LocalAnswerer {
	return &LocalAnswerer{analytics: analytics, logger: logger}
}

// Greeting renders the short spending overview used for greetings.
func (a *LocalAnswerer) Greeting(snap models.Snapshot) string {
	if snap.IsEmpty() {
		return "Hello! I'm your finance assistant. Add some transactions and I can tell you where your money goes."
	}
	return fmt.Sprintf(
		"Hello! So far in %s you spent %s against %s of income (net %s). Ask me about any category or date.",
		snap.Period,
		models.FormatAmount(snap.Totals.SpentCents),
		models.FormatAmount(snap.Totals.IncomeCents),
		models.FormatAmount(snap.Totals.NetCents),
	)
}

// Answer resolves common question shapes against the snapshot: top
// spending category, specific dates, month names, category names and a
// whole-period summary. Anything else gets a usage hint.
func (a *LocalAnswerer) Answer(userID uuid.UUID, view ledger.View, period models.Period, query string, now time.Time) string {
	snap := a.analytics.Snapshot(userID, view, period)
	q := strings.ToLower(query)

	if strings.Contains(q, "spend the most") || strings.Contains(q, "spent the most") ||
		strings.Contains(q, "biggest expense") || strings.Contains(q, "largest expense") {
		top, ok := snap.TopExpense()
		if !ok {
			return fmt.Sprintf("No expenses recorded for %s yet.", period)
		}
		return fmt.Sprintf("Your biggest spending category in %s is %s at %s.",
			period, top.Category, models.FormatAmount(top.SpentCents))
	}

	if m := dateQueryRe.FindString(q); m != "" {
		if date, err := time.Parse("2006-01-02", m); err == nil {
			return a.daySummary(view, date)
		}
	}
	if strings.Contains(q, "today") {
		return a.daySummary(view, now)
	}
	if strings.Contains(q, "yesterday") {
		return a.daySummary(view, now.AddDate(0, 0, -1))
	}

	for _, mn := range monthNames {
		if !strings.Contains(q, mn.name) {
			continue
		}
		target := models.Period{Year: period.Year, Month: mn.month}
		msnap := a.analytics.Snapshot(userID, view, target)
		return fmt.Sprintf("In %s you spent %s and received %s (net %s).",
			target,
			models.FormatAmount(msnap.Totals.SpentCents),
			models.FormatAmount(msnap.Totals.IncomeCents),
			models.FormatAmount(msnap.Totals.NetCents))
	}

	for _, c := range snap.Categories {
		if !strings.Contains(q, c.Category) {
			continue
		}
		if c.UtilizationDefined() {
			return fmt.Sprintf("%s in %s: spent %s of %s budget, %s remaining (%d%% used).",
				c.Category, period,
				models.FormatAmount(c.SpentCents),
				models.FormatAmount(c.LimitCents),
				models.FormatAmount(c.RemainingCents),
				utilizationPercent(c))
		}
		return fmt.Sprintf("%s in %s: spent %s (no budget set).",
			c.Category, period, models.FormatAmount(c.SpentCents))
	}

	if strings.Contains(q, "summary") || strings.Contains(q, "overview") ||
		strings.Contains(q, "how much") || strings.Contains(q, "total") {
		return a.summary(snap)
	}

	return `I can report totals, category spending, budgets and specific dates. Try "summary", "where did I spend the most", or name a category.`
}

func (a *LocalAnswerer) daySummary(view ledger.View, date time.Time) string {
	day := date.Format("2006-01-02")
	var spent int64
	count := 0
	for _, tx := range view.Transactions {
		if tx.IsExpense() && tx.Date.Format("2006-01-02") == day {
			spent += tx.ExpenseCents()
			count++
		}
	}
	if count == 0 {
		return fmt.Sprintf("No spending recorded on %s.", day)
	}
	return fmt.Sprintf("On %s you spent %s across %d transaction(s).",
		day, models.FormatAmount(spent), count)
}

func (a *LocalAnswerer) summary(snap models.Snapshot) string {
	if snap.IsEmpty() {
		return fmt.Sprintf("No financial data for %s yet.", snap.Period)
	}

	cats := append([]models.CategorySummary(nil), snap.Categories...)
	sort.Slice(cats, func(i, j int) bool {
		if cats[i].SpentCents != cats[j].SpentCents {
			return cats[i].SpentCents > cats[j].SpentCents
		}
		return cats[i].Category < cats[j].Category
	})

	var b strings.Builder
	fmt.Fprintf(&b, "Summary for %s: spent %s, income %s, net %s.",
		snap.Period,
		models.FormatAmount(snap.Totals.SpentCents),
		models.FormatAmount(snap.Totals.IncomeCents),
		models.FormatAmount(snap.Totals.NetCents))

	shown := 0
	for _, c := range cats {
		if c.SpentCents == 0 || shown == 3 {
			break
		}
		if shown == 0 {
			b.WriteString(" Top categories:")
		} else {
			b.WriteString(",")
		}
		fmt.Fprintf(&b, " %s %s", c.Category, models.FormatAmount(c.SpentCents))
		shown++
	}
	if shown > 0 {
		b.WriteString(".")
	}
	return b.String()
}
