package services

import (
	"fmt"
	"math"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

// RoundingIncrement is the granularity every estimate bound is rounded to.
const RoundingIncrement = 50

// RoundTo rounds amount to the nearest multiple of increment, half away
// from zero. Decimal arithmetic keeps values such as 1.15 * 1000 from
// landing a cent under a rounding boundary.
func RoundTo(amount float64, increment int64) float64 {
	if increment <= 0 {
		return amount
	}
	inc := decimal.NewFromInt(increment)
	rounded := decimal.NewFromFloat(amount).Div(inc).Round(0).Mul(inc)
	return rounded.InexactFloat64()
}

// FormatUSD formats an amount as whole US dollars with thousands
// separators, e.g. $12,300.
func FormatUSD(amount float64) string {
	n := int64(math.Round(amount))
	if n < 0 {
		return "-$" + humanize.Comma(-n)
	}
	return "$" + humanize.Comma(n)
}

// FormatUSDRange formats a low/high pair as "$7,000 - $14,500".
func FormatUSDRange(low, high float64) string {
	return FormatUSD(low) + " - " + FormatUSD(high)
}

// FormatFactor formats a multiplier as "1.15x".
func FormatFactor(f float64) string {
	return fmt.Sprintf("%.2fx", f)
}

// FormatPercentChange formats a multiplier as a signed percentage relative
// to 1.0: 1.15 -> "+15%", 0.9 -> "-10%".
func FormatPercentChange(f float64) string {
	pct := math.Round((f - 1) * 100)
	if pct == 0 {
		return "0%"
	}
	return fmt.Sprintf("%+.0f%%", pct)
}
