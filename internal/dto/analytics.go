package dto

import "finsight/internal/models"

type CategorySummaryResponse struct {
	Category    string   `json:"category"`
	Spent       string   `json:"spent"`
	SpentCents  int64    `json:"spent_cents"`
	Limit       string   `json:"limit,omitempty"`
	LimitCents  int64    `json:"limit_cents,omitempty"`
	Remaining   string   `json:"remaining,omitempty"`
	Budgeted    bool     `json:"budgeted"`
	Utilization *float64 `json:"utilization,omitempty"`
}

type TotalsResponse struct {
	Spent  string `json:"spent"`
	Income string `json:"income"`
	Net    string `json:"net"`
}

type SnapshotResponse struct {
	Period        string                    `json:"period"`
	LedgerVersion uint64                    `json:"ledger_version"`
	Totals        TotalsResponse            `json:"totals"`
	Categories    []CategorySummaryResponse `json:"categories"`
}

type InsightResponse struct {
	Kind     string `json:"kind"`
	Category string `json:"category"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
	Delta    string `json:"delta"`
}

type InsightsResponse struct {
	Period        string            `json:"period"`
	LedgerVersion uint64            `json:"ledger_version"`
	Insights      []InsightResponse `json:"insights"`
}

type DailySpendResponse struct {
	Date     string `json:"date"`
	Category string `json:"category"`
	Spent    string `json:"spent"`
}

type TrendsResponse struct {
	Days   int                  `json:"days"`
	Points []DailySpendResponse `json:"points"`
}

type PeriodTotalResponse struct {
	Period string `json:"period"`
	Spent  string `json:"spent"`
	Income string `json:"income"`
}

type PeriodSeriesResponse struct {
	Periods []PeriodTotalResponse `json:"periods"`
}

type CategoryForecastResponse struct {
	Category string `json:"category"`
	Expected string `json:"expected"`
}

type ForecastResponse struct {
	Period     string                     `json:"period"`
	Lookback   int                        `json:"lookback"`
	Categories []CategoryForecastResponse `json:"categories"`
}

type AnomalyResponse struct {
	Transaction TransactionResponse `json:"transaction"`
	Mean        string              `json:"mean"`
	Deviation   string              `json:"deviation"`
}

type AnomaliesResponse struct {
	Period    string            `json:"period"`
	Anomalies []AnomalyResponse `json:"anomalies"`
}

func NewSnapshotResponse(snap models.Snapshot) SnapshotResponse {
	out := SnapshotResponse{
		Period:        snap.Period.String(),
		LedgerVersion: snap.LedgerVersion,
		Totals: TotalsResponse{
			Spent:  models.FormatAmount(snap.Totals.SpentCents),
			Income: models.FormatAmount(snap.Totals.IncomeCents),
			Net:    models.FormatAmount(snap.Totals.NetCents),
		},
		Categories: make([]CategorySummaryResponse, 0, len(snap.Categories)),
	}
	for _, c := range snap.Categories {
		cr := CategorySummaryResponse{
			Category:   c.Category,
			Spent:      models.FormatAmount(c.SpentCents),
			SpentCents: c.SpentCents,
			Budgeted:   c.Budgeted,
		}
		if c.Budgeted {
			cr.Limit = models.FormatAmount(c.LimitCents)
			cr.LimitCents = c.LimitCents
			cr.Remaining = models.FormatAmount(c.RemainingCents)
		}
		if c.UtilizationDefined() {
			u := c.Utilization()
			cr.Utilization = &u
		}
		out.Categories = append(out.Categories, cr)
	}
	return out
}

func NewInsightsResponse(period models.Period, version uint64, insights []models.Insight) InsightsResponse {
	out := InsightsResponse{
		Period:        period.String(),
		LedgerVersion: version,
		Insights:      make([]InsightResponse, 0, len(insights)),
	}
	for _, ins := range insights {
		out.Insights = append(out.Insights, InsightResponse{
			Kind:     string(ins.Kind),
			Category: ins.Category,
			Severity: ins.Severity.String(),
			Message:  ins.Message,
			Delta:    models.FormatAmount(ins.DeltaCents),
		})
	}
	return out
}

func NewTrendsResponse(days int, points []models.DailySpend) TrendsResponse {
	out := TrendsResponse{Days: days, Points: make([]DailySpendResponse, 0, len(points))}
	for _, p := range points {
		out.Points = append(out.Points, DailySpendResponse{
			Date:     p.Date.Format("2006-01-02"),
			Category: p.Category,
			Spent:    models.FormatAmount(p.SpentCents),
		})
	}
	return out
}

func NewPeriodSeriesResponse(totals []models.PeriodTotal) PeriodSeriesResponse {
	out := PeriodSeriesResponse{Periods: make([]PeriodTotalResponse, 0, len(totals))}
	for _, t := range totals {
		out.Periods = append(out.Periods, PeriodTotalResponse{
			Period: t.Period.String(),
			Spent:  models.FormatAmount(t.SpentCents),
			Income: models.FormatAmount(t.IncomeCents),
		})
	}
	return out
}

func NewForecastResponse(period models.Period, lookback int, forecasts []models.CategoryForecast) ForecastResponse {
	out := ForecastResponse{
		Period:     period.String(),
		Lookback:   lookback,
		Categories: make([]CategoryForecastResponse, 0, len(forecasts)),
	}
	for _, f := range forecasts {
		out.Categories = append(out.Categories, CategoryForecastResponse{
			Category: f.Category,
			Expected: models.FormatAmount(f.ExpectedCents),
		})
	}
	return out
}

func NewAnomaliesResponse(period models.Period, anomalies []models.Anomaly) AnomaliesResponse {
	out := AnomaliesResponse{
		Period:    period.String(),
		Anomalies: make([]AnomalyResponse, 0, len(anomalies)),
	}
	for _, a := range anomalies {
		out.Anomalies = append(out.Anomalies, AnomalyResponse{
			Transaction: NewTransactionResponse(a.Transaction),
			Mean:        models.FormatAmount(a.MeanCents),
			Deviation:   models.FormatAmount(a.DeviationCents),
		})
	}
	return out
}
