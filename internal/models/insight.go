package models

// InsightKind names the rule that produced an insight.
type InsightKind string

const (
	InsightOverspend InsightKind = "OVERSPEND"
	InsightNearLimit InsightKind = "NEAR_LIMIT"
	InsightTrendUp   InsightKind = "TREND_UP"
	InsightTrendDown InsightKind = "TREND_DOWN"
)

// Severity orders insights; higher is more urgent.
type Severity int

const (
	SeverityInfo Severity = iota + 1
	SeverityWarning
	SeverityCritical
)

func (s Severity) String() string {
	switch s {
	case SeverityCritical:
		return "critical"
	case SeverityWarning:
		return "warning"
	default:
		return "info"
	}
}

// Insight is one derived observation about a snapshot. DeltaCents holds
// the magnitude behind the message: the overspend amount, the headroom
// left, or the absolute spend change against the previous period.
type Insight struct {
	Kind       InsightKind
	Category   string
	Severity   Severity
	Message    string
	DeltaCents int64
}

// InsightThresholds configures the derivation rules. Ratios are against
// the budget limit; the trend threshold is against last period's spend.
type InsightThresholds struct {
	OverspendRatio float64
	NearLimitRatio float64
	TrendThreshold float64
}

func DefaultInsightThresholds() InsightThresholds {
	return InsightThresholds{
		OverspendRatio: 1.0,
		NearLimitRatio: 0.85,
		TrendThreshold: 0.20,
	}
}
