package common

import (
	"fmt"
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Placeholder rendered for absent or non-numeric display values
const numberPlaceholder = "-"

var displayPrinter = message.NewPrinter(language.English)

// FormatNumber formats a nullable numeric value for display.
// Values of 10,000 and above render as grouped integers, smaller
// values as grouped two-decimal figures.
func FormatNumber(x *float64) string {
	if x == nil || math.IsNaN(*x) {
		return numberPlaceholder
	}
	v := *x
	if math.Abs(v) >= 1e4 {
		return displayPrinter.Sprint(number.Decimal(v, number.MaxFractionDigits(0)))
	}
	return displayPrinter.Sprint(number.Decimal(v,
		number.MinFractionDigits(2), number.MaxFractionDigits(2)))
}

// FormatPercent formats a nullable value as a percentage with two decimals.
// Magnitudes at or below 1.5 are read as fractions and scaled by 100;
// anything larger is assumed to already be a percent figure.
func FormatPercent(x *float64) string {
	if x == nil || math.IsNaN(*x) {
		return numberPlaceholder
	}
	v := *x
	if math.Abs(v) < 5 && math.Abs(v) <= 1.5 {
		return fmt.Sprintf("%.2f%%", v*100)
	}
	return fmt.Sprintf("%.2f%%", v)
}
