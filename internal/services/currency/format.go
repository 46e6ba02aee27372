// Package currency formats amounts for display and converts between
// currencies using published reference rates.
package currency

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"fintrack/internal/models"
)

// MaxDecimals caps the number of decimal places a format may ask for
const MaxDecimals = 8

// Format renders amount with f. Rounding is half away from zero.
// Non-finite amounts render as zero.
func Format(amount float64, f models.CurrencyFormat) string {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		amount = 0
	}
	f = withDefaults(f)

	d := decimal.NewFromFloat(amount).Round(int32(f.Decimals))
	negative := d.IsNegative()

	fixed := d.Abs().StringFixed(int32(f.Decimals))
	intPart, fracPart, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	if negative {
		b.WriteByte('-')
	}
	if f.Placement != models.SymbolAfter {
		b.WriteString(f.Symbol)
	}
	b.WriteString(group(intPart, f.Grouping, f.ThousandSeparator))
	if fracPart != "" {
		b.WriteString(f.DecimalSeparator)
		b.WriteString(fracPart)
	}
	if f.Placement == models.SymbolAfter && f.Symbol != "" {
		b.WriteByte(' ')
		b.WriteString(f.Symbol)
	}
	return b.String()
}

// ParseAmount reads a user-typed amount, tolerating a leading currency
// symbol and thousands separators in f's style
func ParseAmount(s string, f models.CurrencyFormat) (float64, error) {
	f = withDefaults(f)
	clean := strings.TrimSpace(s)
	if f.Symbol != "" {
		clean = strings.TrimSpace(strings.ReplaceAll(clean, f.Symbol, ""))
	}
	if f.ThousandSeparator != "" {
		clean = strings.ReplaceAll(clean, f.ThousandSeparator, "")
	}
	if f.DecimalSeparator != "." {
		clean = strings.ReplaceAll(clean, f.DecimalSeparator, ".")
	}

	d, err := decimal.NewFromString(clean)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q", s)
	}
	return d.InexactFloat64(), nil
}

// group inserts sep into a string of digits
func group(digits string, style models.Grouping, sep string) string {
	if style == models.GroupingNone || sep == "" || len(digits) <= 3 {
		return digits
	}

	head, tail := digits[:len(digits)-3], digits[len(digits)-3:]
	size := 3
	if style == models.GroupingIndian {
		size = 2
	}

	var parts []string
	for len(head) > size {
		parts = append([]string{head[len(head)-size:]}, parts...)
		head = head[:len(head)-size]
	}
	parts = append([]string{head}, parts...)
	parts = append(parts, tail)
	return strings.Join(parts, sep)
}

func withDefaults(f models.CurrencyFormat) models.CurrencyFormat {
	def := models.DefaultPreferences().Currency
	if f.Decimals < 0 {
		f.Decimals = 0
	}
	if f.Decimals > MaxDecimals {
		f.Decimals = MaxDecimals
	}
	if f.DecimalSeparator == "" {
		f.DecimalSeparator = def.DecimalSeparator
	}
	if f.Grouping == "" {
		f.Grouping = def.Grouping
	}
	return f
}
