package models

import (
	"fmt"
	"strconv"
	"strings"
)

const maxWholeUnits = (1<<63 - 1) / 100

// ParseAmount converts a signed decimal string to minor units (cents).
// Both "." and "," work as decimal separators. A third fractional digit
// rounds half-up.
//
//	ParseAmount("12.34") -> 1234
//	ParseAmount("-50")   -> -5000
//	ParseAmount("0.005") -> 1
func ParseAmount(s string) (int64, error) {
	raw := strings.TrimSpace(s)
	if raw == "" {
		return 0, fmt.Errorf("empty amount")
	}

	neg := false
	switch raw[0] {
	case '-':
		neg = true
		raw = raw[1:]
	case '+':
		raw = raw[1:]
	}

	raw = strings.ReplaceAll(raw, ",", ".")
	intPart, fracPart, _ := strings.Cut(raw, ".")
	if intPart == "" && fracPart == "" {
		return 0, fmt.Errorf("malformed amount %q", s)
	}
	if intPart == "" {
		intPart = "0"
	}

	for i := 0; i < len(intPart); i++ {
		if intPart[i] < '0' || intPart[i] > '9' {
			return 0, fmt.Errorf("malformed amount %q", s)
		}
	}
	for i := 0; i < len(fracPart); i++ {
		if fracPart[i] < '0' || fracPart[i] > '9' {
			return 0, fmt.Errorf("malformed amount %q", s)
		}
	}

	whole, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil || whole > maxWholeUnits {
		return 0, fmt.Errorf("malformed amount %q", s)
	}

	var frac int64
	switch {
	case len(fracPart) == 0:
	case len(fracPart) == 1:
		frac = int64(fracPart[0]-'0') * 10
	default:
		frac = int64(fracPart[0]-'0')*10 + int64(fracPart[1]-'0')
		if len(fracPart) > 2 && fracPart[2] >= '5' {
			frac++
		}
	}

	cents := whole*100 + frac
	if neg {
		cents = -cents
	}
	return cents, nil
}

// FormatAmount renders minor units as a plain decimal string with two
// fractional digits.
func FormatAmount(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}
