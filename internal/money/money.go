// Package money keeps currency amounts at cent precision. Amounts are carried
// as float64 throughout the app; this package is the single place where they
// are rounded, parsed and formatted.
package money

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Round rounds v to two decimal places, half away from zero.
func Round(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

// Format renders v with exactly two decimals and no grouping.
func Format(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

// Parse reads an amount as typed by a user or exported by a bank:
// "$1,234.50", "1234.5", "(12.00)" for negatives.
func Parse(s string) (float64, error) {
	clean := strings.TrimSpace(s)
	clean = strings.ReplaceAll(clean, "$", "")
	clean = strings.ReplaceAll(clean, ",", "")
	clean = strings.TrimSpace(clean)

	if strings.HasPrefix(clean, "(") && strings.HasSuffix(clean, ")") {
		clean = "-" + clean[1:len(clean)-1]
	}
	if clean == "" {
		return 0, fmt.Errorf("empty amount")
	}

	d, err := decimal.NewFromString(clean)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q", s)
	}
	return d.Round(2).InexactFloat64(), nil
}

// Equal reports whether a and b are the same amount at cent precision.
func Equal(a, b float64) bool {
	return decimal.NewFromFloat(a).Round(2).Equal(decimal.NewFromFloat(b).Round(2))
}

// Sum adds amounts exactly at cent precision.
func Sum(values ...float64) float64 {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(decimal.NewFromFloat(v))
	}
	return total.Round(2).InexactFloat64()
}
