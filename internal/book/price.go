package book

import (
	"strconv"

	"github.com/shopspring/decimal"
)

// Unit conversions from venue wire formats to probability space.
//
// Polymarket quotes prices as decimal strings ("0.555") and its streaming
// feed as tenths of a cent; Kalshi quotes integer cents. Parsing goes
// through shopspring/decimal so "0.1" style inputs don't pick up binary
// noise before the final float conversion. Everything downstream of these
// helpers is plain float64.

var (
	hundred  = decimal.NewFromInt(100)
	thousand = decimal.NewFromInt(1000)
)

// ProbFromCents converts an integer Kalshi cent price (0..100) to a
// probability.
func ProbFromCents(cents int) float64 {
	return decimal.NewFromInt(int64(cents)).Div(hundred).InexactFloat64()
}

// ProbFromMilliString converts a Polymarket streaming price quoted in
// thousandths ("555" = 0.555) to a probability. Returns 0 on parse failure.
func ProbFromMilliString(s string) float64 {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0
	}
	return d.Div(thousand).InexactFloat64()
}

// ProbFromString parses a decimal probability string ("0.555"). Returns 0
// on parse failure.
func ProbFromString(s string) float64 {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0
	}
	return d.InexactFloat64()
}

// SizeFromString parses a decimal size string. Returns 0 on parse failure.
func SizeFromString(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}
