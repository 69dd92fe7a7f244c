package pricing

// FilmArea returns the film consumed per unit in mm²: front and back panel
// plus two side gussets when the bag has depth.
func FilmArea(bag BagSpecification) float64 {
	area := bag.Width * bag.Height
	if bag.Depth > 0 {
		area += bag.Width * bag.Depth * 2
	}
	return area
}

// MaterialCost derives the per-unit material cost.
func MaterialCost(rates Rates, pattern QuotePattern, material MaterialPricingInfo) MaterialCostBreakdown {
	materialRate := rates.MaterialRatePerMM2 * material.PriceMultiplier
	variableCost := FilmArea(pattern.Bag) * materialRate
	base := rates.BaseProcessingFee + variableCost

	b := MaterialCostBreakdown{BaseMaterialCost: base}
	b.Total = b.BaseMaterialCost + b.ThicknessAdjustment + b.BarrierAdjustment + b.SizeAdjustment + b.QuantityAdjustment
	return b
}

// InkCostMultiplier starts at 1.0 and adds 0.3 for full coverage and 0.3 for
// premium quality.
func InkCostMultiplier(coverage PrintCoverage, quality PrintQuality) float64 {
	multiplier := 1.0
	if coverage == CoverageFull {
		multiplier += 0.3
	}
	if quality == QualityPremium {
		multiplier += 0.3
	}
	return multiplier
}

// PrintingCost derives the printing breakdown. Plate, labor and setup are
// fixed per order; only the per-unit ink cost is carried in Total.
func PrintingCost(rates Rates, pattern QuotePattern) PrintingCostBreakdown {
	colors := float64(pattern.Printing.PrintColors.Total())

	areaM2 := (pattern.Bag.Width * pattern.Bag.Height) / 1e6
	inkPerUnit := areaM2 * InkCostMultiplier(pattern.Printing.PrintCoverage, pattern.Printing.PrintQuality) * rates.InkCostPerM2

	laborBase := rates.LaborBaseSmallRun
	if pattern.Quantity > rates.LaborLargeRunQuantity {
		laborBase = rates.LaborBaseLargeRun
	}

	return PrintingCostBreakdown{
		PlateCost:           colors * rates.PlateCostPerColor,
		InkCost:             inkPerUnit,
		LaborCost:           colors*rates.LaborCostPerColor + laborBase,
		SetupCost:           rates.PrintingSetupCost,
		PremiumFeaturesCost: map[string]float64{},
		Total:               inkPerUnit,
	}
}

// FeatureCost prices the optional add-ons. Window and barrier are modeled but
// carry no cost yet.
func FeatureCost(rates Rates, features FeatureSpecification) FeatureCostBreakdown {
	var b FeatureCostBreakdown
	if features.Resealability != nil {
		b.ResealabilityCost = rates.ZipperCost
	}
	if features.CustomShape != nil {
		if features.CustomShape.Type == "notch" {
			b.CustomShapeCost = rates.NotchCost
		} else {
			b.CustomShapeCost = rates.CornerCutCost
		}
	}
	b.Total = b.WindowCost + b.BarrierCost + b.ResealabilityCost + b.CustomShapeCost
	return b
}

// BasePrice is the per-unit price before discounts and setup amortization.
func BasePrice(rates Rates, bag BagTypePricingInfo, material MaterialCostBreakdown, printing PrintingCostBreakdown, features FeatureCostBreakdown) float64 {
	base := bag.BasePrice + material.Total + printing.Total + features.Total
	return base * (1 + rates.MinProfitMargin)
}

// ApplicableTier returns the tier with the highest MinQuantity containing
// quantity.
func ApplicableTier(quantity int, tiers []VolumeDiscountTier) (VolumeDiscountTier, bool) {
	var best VolumeDiscountTier
	found := false
	for _, tier := range tiers {
		if !tier.Contains(quantity) {
			continue
		}
		if !found || tier.MinQuantity > best.MinQuantity {
			best = tier
			found = true
		}
	}
	return best, found
}

func VolumeDiscount(quantity int, basePrice float64, tiers []VolumeDiscountTier) float64 {
	tier, ok := ApplicableTier(quantity, tiers)
	if !ok {
		return 0
	}
	return basePrice * tier.DiscountRate
}

// UserDiscountRate stacks the tier rate with the repeat-order bonus.
func UserDiscountRate(rates Rates, tier UserTier, isRepeatOrder bool) float64 {
	rate := 0.0
	switch tier {
	case TierPremium:
		rate += rates.PremiumDiscount
	case TierEnterprise:
		rate += rates.EnterpriseDiscount
	}
	if isRepeatOrder {
		rate += rates.RepeatOrderBonus
	}
	return rate
}

func UserDiscount(rates Rates, basePrice float64, tier UserTier, isRepeatOrder bool) float64 {
	return basePrice * UserDiscountRate(rates, tier, isRepeatOrder)
}

// SetupFee is the fixed order cost: the process setup (gravure from the
// high-volume threshold) plus the fixed printing components.
func SetupFee(rates Rates, quantity int, printing PrintingCostBreakdown) float64 {
	setup := rates.FixedSetupCost
	if quantity >= rates.HighVolumeThreshold {
		setup = rates.HighVolumeSetupCost
	}
	return setup + printing.FixedCost()
}

// Margin is the share of the unit price not consumed by variable costs.
func Margin(unitPrice float64, material MaterialCostBreakdown, printing PrintingCostBreakdown, features FeatureCostBreakdown) float64 {
	if unitPrice <= 0 {
		return 0
	}
	cost := material.Total + printing.Total + features.Total
	return (unitPrice - cost) / unitPrice
}
