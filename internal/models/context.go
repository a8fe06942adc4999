package models

import (
	"fmt"
	"strings"
)

// Fact is one grounding statement handed to the assistant.
type Fact struct {
	Category string
	Metric   string
	Value    string
}

// Render produces the single line used both for token accounting and in
// the final prompt.
func (f Fact) Render() string {
	switch {
	case f.Category == "" && f.Metric == "":
		return f.Value
	case f.Category == "":
		return fmt.Sprintf("%s: %s", f.Metric, f.Value)
	default:
		return fmt.Sprintf("[%s] %s: %s", f.Category, f.Metric, f.Value)
	}
}

// EstimateTokens approximates token cost at four characters per token,
// which tracks the supported completion models closely enough for
// budgeting.
func EstimateTokens(s string) int {
	return (len(s) + 3) / 4
}

// TruncationMarker closes a payload whose facts did not all fit.
const TruncationMarker = "(context truncated to fit the token budget)"

// ContextPayload is the bounded set of facts backing one assistant call.
type ContextPayload struct {
	Facts     []Fact
	Tokens    int
	Truncated bool
}

func (p ContextPayload) IsEmpty() bool {
	return len(p.Facts) == 0
}

// Render lays the facts out as a numbered list, with the truncation
// marker as the last line when set.
func (p ContextPayload) Render() string {
	if len(p.Facts) == 0 {
		return "No financial data available."
	}
	var b strings.Builder
	for i, f := range p.Facts {
		fmt.Fprintf(&b, "%d. %s\n", i+1, f.Render())
	}
	if p.Truncated {
		b.WriteString(TruncationMarker)
		b.WriteString("\n")
	}
	return b.String()
}
