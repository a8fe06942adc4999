package service

import (
	"fmt"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"finsight/internal/models"
	"finsight/pkg/config"

	"go.uber.org/zap"
)

// fact classes, in priority order.
const (
	classInsight = iota
	classAggregate
	classRecent
)

// ContextBuilder selects and orders the facts that fit a single
// completion call. Insights always rank above aggregates and aggregates
// above recent records; query keyword matches promote facts within
// their class only, so a chatty query can never push the top insight
// out of the payload.
type ContextBuilder struct {
	tokenBudget int
	recentLimit int
	logger      *zap.Logger
}

func NewContextBuilder(cfg *config.AssistantConfig, logger *zap.Logger) *ContextBuilder {
	return &ContextBuilder{
		tokenBudget: cfg.ContextTokens,
		recentLimit: cfg.RecentFacts,
		logger:      logger,
	}
}

type rankedFact struct {
	fact    models.Fact
	class   int
	matches int
	sev     int
	weight  int64
	seq     int
}

// Build assembles the payload for one question under the token budget.
// The top-ranked fact is never dropped: when even it alone does not
// fit, it is truncated in place and the payload is marked.
func (b *ContextBuilder) Build(query string, snap models.Snapshot, insights []models.Insight, recent []models.Transaction) models.ContextPayload {
	facts := b.collectFacts(snap, insights, recent)
	if len(facts) == 0 {
		return models.ContextPayload{}
	}

	keywords := queryKeywords(query)
	for i := range facts {
		facts[i].matches = overlapScore(facts[i].fact, keywords)
	}

	sort.SliceStable(facts, func(i, j int) bool {
		a, b := facts[i], facts[j]
		if a.class != b.class {
			return a.class < b.class
		}
		if a.matches != b.matches {
			return a.matches > b.matches
		}
		if a.sev != b.sev {
			return a.sev > b.sev
		}
		if a.weight != b.weight {
			return a.weight > b.weight
		}
		return a.seq < b.seq
	})

	payload := models.ContextPayload{}
	for i, rf := range facts {
		cost := models.EstimateTokens(rf.fact.Render())
		if payload.Tokens+cost > b.tokenBudget {
			if i == 0 {
				fact, cost := truncateFact(rf.fact, b.tokenBudget)
				payload.Facts = append(payload.Facts, fact)
				payload.Tokens += cost
			}
			payload.Truncated = true
			break
		}
		payload.Facts = append(payload.Facts, rf.fact)
		payload.Tokens += cost
	}

	b.logger.Debug("Context payload built",
		zap.Int("facts", len(payload.Facts)),
		zap.Int("tokens", payload.Tokens),
		zap.Bool("truncated", payload.Truncated),
	)
	return payload
}

func (b *ContextBuilder) collectFacts(snap models.Snapshot, insights []models.Insight, recent []models.Transaction) []rankedFact {
	var facts []rankedFact
	add := func(class int, sev models.Severity, weight int64, fact models.Fact) {
		facts = append(facts, rankedFact{
			fact:   fact,
			class:  class,
			sev:    int(sev),
			weight: weight,
			seq:    len(facts),
		})
	}

	for _, ins := range insights {
		add(classInsight, ins.Severity, ins.DeltaCents, models.Fact{
			Category: ins.Category,
			Metric:   strings.ToLower(string(ins.Kind)),
			Value:    ins.Message,
		})
	}

	if !snap.IsEmpty() {
		t := snap.Totals
		month := snap.Period.String()
		add(classAggregate, 0, absCents(t.SpentCents), models.Fact{
			Metric: "total spent " + month, Value: models.FormatAmount(t.SpentCents),
		})
		add(classAggregate, 0, absCents(t.IncomeCents), models.Fact{
			Metric: "total income " + month, Value: models.FormatAmount(t.IncomeCents),
		})
		add(classAggregate, 0, absCents(t.NetCents), models.Fact{
			Metric: "net " + month, Value: models.FormatAmount(t.NetCents),
		})
	}

	for _, c := range snap.Categories {
		value := models.FormatAmount(c.SpentCents) + " spent"
		if c.Budgeted {
			value = fmt.Sprintf("%s spent of %s budget, %s remaining",
				models.FormatAmount(c.SpentCents),
				models.FormatAmount(c.LimitCents),
				models.FormatAmount(c.RemainingCents))
		}
		add(classAggregate, 0, c.SpentCents, models.Fact{
			Category: c.Category, Metric: "month to date", Value: value,
		})
	}

	for i, tx := range recent {
		if b.recentLimit > 0 && i >= b.recentLimit {
			break
		}
		value := models.FormatAmount(tx.AmountCents)
		if tx.Description != "" {
			value += " " + tx.Description
		}
		add(classRecent, 0, tx.ExpenseCents(), models.Fact{
			Category: tx.Category,
			Metric:   "transaction " + tx.Date.Format("2006-01-02"),
			Value:    value,
		})
	}

	return facts
}

// truncateFact cuts a rendered fact down so its token cost fits the
// budget, never splitting a rune. EstimateTokens rounds up per four
// bytes, so a line of at most budget*4 bytes always fits.
func truncateFact(f models.Fact, budget int) (models.Fact, int) {
	if budget < 1 {
		budget = 1
	}
	line := f.Render()
	maxLen := budget * 4
	if len(line) <= maxLen {
		return f, models.EstimateTokens(line)
	}

	keep := maxLen - len("...")
	if keep < 0 {
		keep = 0
	}
	for keep > 0 && !utf8.RuneStart(line[keep]) {
		keep--
	}
	cut := models.Fact{Value: line[:keep] + "..."}
	return cut, models.EstimateTokens(cut.Render())
}

func queryKeywords(query string) map[string]bool {
	words := strings.FieldsFunc(strings.ToLower(query), splitWord)
	out := make(map[string]bool, len(words))
	for _, w := range words {
		if len(w) >= 3 {
			out[w] = true
		}
	}
	return out
}

// overlapScore counts distinct query keywords that appear in the fact's
// category or metric.
func overlapScore(f models.Fact, keywords map[string]bool) int {
	if len(keywords) == 0 {
		return 0
	}
	haystack := strings.ToLower(f.Category + " " + f.Metric)
	seen := make(map[string]bool)
	for _, w := range strings.FieldsFunc(haystack, splitWord) {
		if keywords[w] {
			seen[w] = true
		}
	}
	return len(seen)
}

func splitWord(r rune) bool {
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}

func absCents(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
