// Package currency converts catalog prices quoted in Indian rupees to
// US dollars for payment processing.
package currency

import (
	"fmt"
	"math"
)

// INRPerUSD is the fixed conversion rate applied when charging a
// checkout session.
const INRPerUSD = 83.91

// usdPerRupeeEstimate is a coarser rate used only for the price
// estimate shown before checkout. It intentionally differs from the
// charge rate, so estimates may be off by a cent or two.
const usdPerRupeeEstimate = 0.01192

// ConvertINRToUSDCents converts an amount in paise to USD cents at
// the charge rate, rounding half away from zero.
func ConvertINRToUSDCents(paise int64) int64 {
	return int64(math.Round(float64(paise) / INRPerUSD))
}

// EstimateUSD formats an approximate dollar figure for an amount in
// rupees, for display only.
func EstimateUSD(rupees float64) string {
	return fmt.Sprintf("%.2f", rupees*usdPerRupeeEstimate)
}
