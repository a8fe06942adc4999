package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePeriod(t *testing.T) {
	p, err := ParsePeriod("2024-03")
	require.NoError(t, err)
	assert.Equal(t, Period{Year: 2024, Month: time.March}, p)
	assert.Equal(t, "2024-03", p.String())

	_, err = ParsePeriod("2024-13")
	assert.Error(t, err)
	_, err = ParsePeriod("march")
	assert.Error(t, err)
	_, err = ParsePeriod("2024-03-01")
	assert.Error(t, err)
}

func TestPeriodPrevious(t *testing.T) {
	p := Period{Year: 2024, Month: time.March}
	assert.Equal(t, Period{Year: 2024, Month: time.February}, p.Previous())

	jan := Period{Year: 2024, Month: time.January}
	assert.Equal(t, Period{Year: 2023, Month: time.December}, jan.Previous())
	assert.Equal(t, jan, jan.Previous().Next())
}

func TestPeriodContains(t *testing.T) {
	p := Period{Year: 2024, Month: time.February}

	assert.True(t, p.Contains(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)))
	assert.True(t, p.Contains(time.Date(2024, 2, 29, 23, 59, 59, 0, time.UTC)))
	assert.False(t, p.Contains(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)))
	assert.False(t, p.Contains(time.Date(2023, 2, 15, 0, 0, 0, 0, time.UTC)))
}

func TestPeriodOrdering(t *testing.T) {
	a := Period{Year: 2023, Month: time.December}
	b := Period{Year: 2024, Month: time.January}

	assert.True(t, a.Before(b))
	assert.False(t, b.Before(a))
	assert.False(t, a.Before(a))
}

func TestPeriodZeroValue(t *testing.T) {
	var p Period
	assert.True(t, p.IsZero())
	assert.False(t, PeriodOf(time.Now()).IsZero())
}
