package pricing

import "math"

// Round2 rounds to two decimal places, half away from zero
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Total computes an order total from quantity and per-kg price. Totals
// are computed exactly once at order creation and never recomputed.
func Total(quantityKg, pricePerKg float64) float64 {
	return Round2(quantityKg * pricePerKg)
}

// Commission computes the platform's cut of an order total.
func Commission(total, rate float64) float64 {
	return Round2(total * rate)
}
