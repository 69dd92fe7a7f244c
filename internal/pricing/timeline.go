package pricing

import (
	"math"
	"time"
)

// Complexity scores a pattern for scheduling: 1 point for a window, 0.5 for
// resealability.
func Complexity(pattern QuotePattern) float64 {
	complexity := 0.0
	if pattern.Features.Window != nil {
		complexity += 1
	}
	if pattern.Features.Resealability != nil {
		complexity += 0.5
	}
	return complexity
}

// Timeline estimates production and delivery. Shipping is a flat number of
// days regardless of the destination postal code.
func Timeline(rates Rates, pattern QuotePattern, postalCode string, now time.Time) ProductionTimeline {
	quantityDays := int(math.Ceil(float64(pattern.Quantity) / 1000))
	complexity := Complexity(pattern)

	minDays := rates.BaseProductionDays + quantityDays/2 + int(complexity*2)
	maxDays := minDays + rates.ProductionSpread
	shipping := shippingDays(rates, postalCode)
	total := maxDays + shipping

	return ProductionTimeline{
		MinProductionDays:     minDays,
		MaxProductionDays:     maxDays,
		ShippingDays:          shipping,
		TotalDays:             total,
		EstimatedDeliveryDate: now.AddDate(0, 0, total),
		BufferDays:            rates.BufferDays,
		Factors: TimelineFactors{
			MaterialAvailability: 1.0,
			ProductionComplexity: complexity,
			QueuePosition:        1.0,
			SeasonDemand:         1.0,
		},
	}
}

// TODO: zone-based shipping once carrier rate tables are available per postal prefix.
func shippingDays(rates Rates, postalCode string) int {
	return rates.ShippingDays
}
