package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		name  string
		in    string
		want  int64
		valid bool
	}{
		{"whole units", "50", 5000, true},
		{"two decimals", "12.34", 1234, true},
		{"comma separator", "12,34", 1234, true},
		{"negative expense", "-120.50", -12050, true},
		{"explicit plus", "+3000", 300000, true},
		{"single decimal digit", "5.5", 550, true},
		{"rounds half up", "0.005", 1, true},
		{"rounds down below half", "12.344", 1234, true},
		{"rounds up at half", "12.345", 1235, true},
		{"carry into whole units", "-0.999", -100, true},
		{"leading dot", ".75", 75, true},
		{"trailing dot", "12.", 1200, true},
		{"surrounding spaces", "  42.00 ", 4200, true},
		{"zero", "0", 0, true},
		{"empty", "", 0, false},
		{"just a dot", ".", 0, false},
		{"letters", "abc", 0, false},
		{"scientific notation", "1e5", 0, false},
		{"double sign", "--5", 0, false},
		{"two dots", "1.2.3", 0, false},
		{"non-digit fraction", "1.2x", 0, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseAmount(tc.in)
			if !tc.valid {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "12.34", FormatAmount(1234))
	assert.Equal(t, "-120.50", FormatAmount(-12050))
	assert.Equal(t, "0.00", FormatAmount(0))
	assert.Equal(t, "0.05", FormatAmount(5))
	assert.Equal(t, "-0.99", FormatAmount(-99))
	assert.Equal(t, "3000.00", FormatAmount(300000))
}

func TestParseAmountRoundTrip(t *testing.T) {
	for _, cents := range []int64{0, 1, -1, 99, -12050, 523999, -100} {
		parsed, err := ParseAmount(FormatAmount(cents))
		require.NoError(t, err)
		assert.Equal(t, cents, parsed)
	}
}
