package booking

import "math"

// ServiceFee is the fixed fee added to every booking, in the station's
// currency.
const ServiceFee = 0.50

// slotHours is the duration of one slot; the day is divided into 48
// half-hour slots.
const slotHours = 0.5

// PricingInput is what the calculator needs: the station's hourly rate and
// the number of selected slots.
type PricingInput struct {
	HourlyRate float64
	Slots      int
}

// PricingResult is the derived price breakdown.
type PricingResult struct {
	DurationHours float64 `json:"durationHours"`
	ServiceFee    float64 `json:"serviceFee"`
	Total         float64 `json:"total"`
}

// ComputePricing maps a slot count and hourly rate to a price breakdown.
// Pure and deterministic: no I/O, no side effects. The total is rounded
// half-up on the cent boundary.
func ComputePricing(in PricingInput) PricingResult {
	durationHours := float64(in.Slots) * slotHours
	total := ServiceFee + in.HourlyRate*durationHours

	return PricingResult{
		DurationHours: durationHours,
		ServiceFee:    ServiceFee,
		Total:         round2(total),
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
