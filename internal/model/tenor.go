package model

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ParseTenor converts labels like "1M", "3m", "10Y" or "y_10y" into year fractions.
// Weeks ("2W") and days ("30D", ACT/365) are accepted too.
func ParseTenor(s string) (float64, error) {
	t := strings.ToUpper(strings.TrimSpace(s))
	t = strings.TrimPrefix(t, "Y_")
	if len(t) < 2 {
		return 0, fmt.Errorf("invalid tenor %q", s)
	}
	unit := t[len(t)-1]
	n, err := strconv.ParseFloat(t[:len(t)-1], 64)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid tenor %q", s)
	}
	switch unit {
	case 'Y':
		return n, nil
	case 'M':
		return n / 12, nil
	case 'W':
		return n * 7 / 365, nil
	case 'D':
		return n / 365, nil
	default:
		return 0, fmt.Errorf("invalid tenor unit in %q", s)
	}
}

// FormatTenor renders a year fraction the way scenario files and reports label it.
func FormatTenor(years float64) string {
	months := math.Round(years * 12)
	if years < 1 && math.Abs(years*12-months) < 1e-9 {
		return fmt.Sprintf("%dM", int(months))
	}
	return strconv.FormatFloat(years, 'f', -1, 64) + "Y"
}
