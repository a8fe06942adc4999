package models

import (
	"fmt"
	"time"
)

// PeriodLayout is the wire format for monthly periods.
const PeriodLayout = "2006-01"

// Period identifies one calendar month. The zero value means "unspecified".
type Period struct {
	Year  int
	Month time.Month
}

func PeriodOf(t time.Time) Period {
	return Period{Year: t.Year(), Month: t.Month()}
}

func ParsePeriod(s string) (Period, error) {
	t, err := time.Parse(PeriodLayout, s)
	if err != nil {
		return Period{}, fmt.Errorf("invalid period %q: expected YYYY-MM", s)
	}
	return PeriodOf(t), nil
}

func (p Period) IsZero() bool {
	return p.Year == 0 && p.Month == 0
}

func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, int(p.Month))
}

// Start returns midnight UTC on the first day of the month.
func (p Period) Start() time.Time {
	return time.Date(p.Year, p.Month, 1, 0, 0, 0, 0, time.UTC)
}

func (p Period) Previous() Period {
	return PeriodOf(p.Start().AddDate(0, -1, 0))
}

func (p Period) Next() Period {
	return PeriodOf(p.Start().AddDate(0, 1, 0))
}

// Contains reports whether t falls inside the month, whatever location
// is attached to t.
func (p Period) Contains(t time.Time) bool {
	return t.Year() == p.Year && t.Month() == p.Month
}

// Before reports whether p is strictly earlier than other.
func (p Period) Before(other Period) bool {
	if p.Year != other.Year {
		return p.Year < other.Year
	}
	return p.Month < other.Month
}
