package service

import (
	"time"

	"github.com/shopspring/decimal"
)

// RatioPlaces is the number of decimal places kept for derived ratios
// (average cost, gain percentage) in API responses.
const RatioPlaces = 4

// roundRatio rounds a derived ratio to RatioPlaces using half-away-from-zero rounding.
//
// Example:
//
//	roundRatio(decimal.RequireFromString("36.363636")) // 36.3636
func roundRatio(value decimal.Decimal) decimal.Decimal {
	return value.Round(RatioPlaces)
}

func roundRatioPtr(value *decimal.Decimal) *decimal.Decimal {
	if value == nil {
		return nil
	}
	r := roundRatio(*value)
	return &r
}

// now returns the current time in UTC.
func now() time.Time {
	return time.Now().UTC()
}
