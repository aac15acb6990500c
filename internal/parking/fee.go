package parking

import "math"

// DefaultRatePerHour is the fallback hourly rate in currency units.
const DefaultRatePerHour = 2.0

// CalculateFee computes the parking fee for a stay of durationMinutes.
// Billing is fractional-hour with a one-hour minimum: a 10 minute stay is
// billed as one hour, a 90 minute stay as 1.5 hours. The result is rounded
// to cents.
func CalculateFee(durationMinutes int, ratePerHour float64) float64 {
	if ratePerHour <= 0 {
		ratePerHour = DefaultRatePerHour
	}
	hours := float64(durationMinutes) / 60
	if hours < 1 {
		hours = 1
	}
	return math.Round(hours*ratePerHour*100) / 100
}
