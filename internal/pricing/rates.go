package pricing

// Rates holds the calibration constants of the engine. Monetary values are in
// the catalog currency (JPY).
type Rates struct {
	// Setup
	FixedSetupCost      float64
	HighVolumeSetupCost float64
	HighVolumeThreshold int

	// Material, per unit
	BaseProcessingFee  float64
	MaterialRatePerMM2 float64

	// Options, per unit
	ZipperCost    float64
	NotchCost     float64
	CornerCutCost float64

	// Printing
	PlateCostPerColor     float64
	InkCostPerM2          float64
	LaborCostPerColor     float64
	LaborBaseSmallRun     float64
	LaborBaseLargeRun     float64
	LaborLargeRunQuantity int
	PrintingSetupCost     float64

	// Discounts
	PremiumDiscount    float64
	EnterpriseDiscount float64
	RepeatOrderBonus   float64

	// Timeline
	BaseProductionDays int
	ProductionSpread   int
	ShippingDays       int
	BufferDays         int

	MinProfitMargin float64
	TaxRate         float64
}

// DefaultRates returns the current calibration. Margin is baked into the
// rates, so MinProfitMargin is zero.
func DefaultRates() Rates {
	return Rates{
		FixedSetupCost:      150000,
		HighVolumeSetupCost: 200000,
		HighVolumeThreshold: 50000,

		BaseProcessingFee:  0,
		MaterialRatePerMM2: 0.0015,

		ZipperCost:    10.0,
		NotchCost:     4.6,
		CornerCutCost: 4.6,

		PlateCostPerColor:     0,
		InkCostPerM2:          0,
		LaborCostPerColor:     0,
		LaborBaseSmallRun:     2500,
		LaborBaseLargeRun:     5000,
		LaborLargeRunQuantity: 1000,
		PrintingSetupCost:     3500,

		PremiumDiscount:    0.05,
		EnterpriseDiscount: 0.10,
		RepeatOrderBonus:   0.02,

		BaseProductionDays: 7,
		ProductionSpread:   3,
		ShippingDays:       5,
		BufferDays:         3,

		MinProfitMargin: 0,
		TaxRate:         0.10,
	}
}
