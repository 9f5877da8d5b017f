package engine

import "github.com/shopspring/decimal"

// Earnings applies an hourly rate to a duration. Negative hours or a
// non-positive rate yield zero, never an error.
//
// The result is NOT rounded here: rounding to 2 decimal places happens once
// at the point of persistence (RoundMoney), not at every intermediate read,
// to avoid compounding rounding error across aggregation.
func Earnings(hours, hourlyRate decimal.Decimal) decimal.Decimal {
	if hours.IsNegative() || !hourlyRate.IsPositive() {
		return decimal.Zero
	}
	return hours.Mul(hourlyRate)
}

// RoundMoney applies the persistence rounding policy: 2 decimal places.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// RoundHours applies the persistence rounding policy for hour figures.
func RoundHours(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}
