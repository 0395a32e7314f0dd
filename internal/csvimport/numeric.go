// Package csvimport turns raw upstream CSV exports into field maps and
// lenient numeric values.
package csvimport

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	minInt32 = decimal.NewFromInt(math.MinInt32)
	maxInt32 = decimal.NewFromInt(math.MaxInt32)
)

var spaceStripper = strings.NewReplacer(" ", "", "\u00a0", "", "\u202f", "", "\t", "")

func normalizeNumber(text string) string {
	s := strings.TrimSpace(text)
	if s == "" {
		return ""
	}
	s = spaceStripper.Replace(s)
	return strings.ReplaceAll(s, ",", ".")
}

// ParseDecimal parses "1 234,56" style cells. Empty or malformed input yields
// an invalid NullDecimal, never an error.
func ParseDecimal(text string) decimal.NullDecimal {
	s := normalizeNumber(text)
	if s == "" {
		return decimal.NullDecimal{}
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: d, Valid: true}
}

// ParseInt parses an integer-like cell, truncating any fractional part
// toward zero ("12,0" is 12). Empty, malformed or out of int32 range input
// yields nil.
func ParseInt(text string) *int {
	d := ParseDecimal(text)
	if !d.Valid {
		return nil
	}
	t := d.Decimal.Truncate(0)
	if t.LessThan(minInt32) || t.GreaterThan(maxInt32) {
		return nil
	}
	n := int(t.IntPart())
	return &n
}
