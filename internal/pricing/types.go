package pricing

import "time"

// Bag type identifiers known to the default reference tables.
const (
	BagFlat3Side = "flat_3_side"
	BagStandUp   = "stand_up"
	BagGusset    = "gusset"
)

// BagSpecification describes the geometry and material identity of one design.
// Dimensions are millimeters.
type BagSpecification struct {
	BagTypeID             string  `json:"bagTypeId"`
	MaterialCompositionID string  `json:"materialCompositionId"`
	Width                 float64 `json:"width"`
	Height                float64 `json:"height"`
	// Depth is the gusset depth; zero means the format has no side panels.
	Depth float64 `json:"depth,omitempty"`
	// Capacity is informational (ml) and not priced.
	Capacity float64 `json:"capacity,omitempty"`
}

// SideColors holds optional side-panel color counts.
type SideColors struct {
	Left  int `json:"left"`
	Right int `json:"right"`
}

// PrintColors holds per-surface color counts.
type PrintColors struct {
	Front int         `json:"front"`
	Back  int         `json:"back"`
	Sides *SideColors `json:"sides,omitempty"`
}

// Total returns the sum of colors over every surface.
func (c PrintColors) Total() int {
	total := c.Front + c.Back
	if c.Sides != nil {
		total += c.Sides.Left + c.Sides.Right
	}
	return total
}

type PrintCoverage string

const (
	CoveragePartial PrintCoverage = "partial"
	CoverageFull    PrintCoverage = "full"
	CoverageCustom  PrintCoverage = "custom"
)

type PrintQuality string

const (
	QualityStandard PrintQuality = "standard"
	QualityPremium  PrintQuality = "premium"
	QualityPhoto    PrintQuality = "photo"
)

// PrintingSpecification describes print complexity.
type PrintingSpecification struct {
	PrintColors   PrintColors   `json:"printColors"`
	PrintCoverage PrintCoverage `json:"printCoverage"`
	PrintQuality  PrintQuality  `json:"printQuality,omitempty"`
	PrintPosition string        `json:"printPosition,omitempty"`
}

// Resealability is a closure add-on: zipper, adhesive or velcro.
type Resealability struct {
	Type string `json:"type"`
}

// CustomShape is a die-cut, notch or corner-cut add-on.
type CustomShape struct {
	Type       string `json:"type"`
	Complexity string `json:"complexity,omitempty"`
}

type Window struct {
	Shape string  `json:"shape,omitempty"`
	Size  float64 `json:"size,omitempty"`
}

type Barrier struct {
	Level string `json:"level,omitempty"`
}

// FeatureSpecification lists optional add-ons; a nil field means absent.
type FeatureSpecification struct {
	Resealability *Resealability `json:"resealability,omitempty"`
	CustomShape   *CustomShape   `json:"customShape,omitempty"`
	Window        *Window        `json:"window,omitempty"`
	Barrier       *Barrier       `json:"barrier,omitempty"`
}

// QuotePattern is the unit of pricing.
type QuotePattern struct {
	ID          string                `json:"id,omitempty"`
	PatternName string                `json:"patternName,omitempty"`
	SKUCount    int                   `json:"skuCount"`
	Quantity    int                   `json:"quantity"`
	Bag         BagSpecification      `json:"bag"`
	Printing    PrintingSpecification `json:"printing"`
	Features    FeatureSpecification  `json:"features"`
}

type UserTier string

const (
	TierBasic      UserTier = "basic"
	TierPremium    UserTier = "premium"
	TierEnterprise UserTier = "enterprise"
)

// PriceCalculationInput is the argument of Engine.CalculatePrice.
type PriceCalculationInput struct {
	Pattern            QuotePattern `json:"pattern"`
	UserTier           UserTier     `json:"userTier"`
	IsRepeatOrder      bool         `json:"isRepeatOrder"`
	DeliveryPostalCode string       `json:"deliveryPostalCode,omitempty"`
}

type MaterialCostBreakdown struct {
	BaseMaterialCost    float64 `json:"baseMaterialCost"`
	ThicknessAdjustment float64 `json:"thicknessAdjustment"`
	BarrierAdjustment   float64 `json:"barrierAdjustment"`
	SizeAdjustment      float64 `json:"sizeAdjustment"`
	QuantityAdjustment  float64 `json:"quantityAdjustment"`
	Total               float64 `json:"total"`
}

// PrintingCostBreakdown separates fixed costs (plate, labor, setup) from the
// per-unit ink cost. Only InkCost is carried in Total.
type PrintingCostBreakdown struct {
	PlateCost           float64            `json:"plateCost"`
	InkCost             float64            `json:"inkCost"`
	LaborCost           float64            `json:"laborCost"`
	SetupCost           float64            `json:"setupCost"`
	PremiumFeaturesCost map[string]float64 `json:"premiumFeaturesCost"`
	Total               float64            `json:"total"`
}

// FixedCost is the part of printing folded into the setup fee.
func (p PrintingCostBreakdown) FixedCost() float64 {
	return p.PlateCost + p.LaborCost + p.SetupCost
}

type FeatureCostBreakdown struct {
	WindowCost        float64 `json:"windowCost"`
	BarrierCost       float64 `json:"barrierCost"`
	ResealabilityCost float64 `json:"resealabilityCost"`
	CustomShapeCost   float64 `json:"customShapeCost"`
	Total             float64 `json:"total"`
}

// PriceBreakdown is the monetary output of a calculation. TotalPrice is always
// UnitPrice * quantity.
type PriceBreakdown struct {
	BasePrice      float64               `json:"basePrice"`
	MaterialCost   MaterialCostBreakdown `json:"materialCost"`
	PrintingCost   PrintingCostBreakdown `json:"printingCost"`
	FeatureCost    FeatureCostBreakdown  `json:"featureCost"`
	VolumeDiscount float64               `json:"volumeDiscount"`
	UserDiscount   float64               `json:"userDiscount"`
	SetupFee       float64               `json:"setupFee"`
	UnitPrice      float64               `json:"unitPrice"`
	TotalPrice     float64               `json:"totalPrice"`
	Margin         float64               `json:"margin"`
}

type TimelineFactors struct {
	MaterialAvailability float64 `json:"materialAvailability"`
	ProductionComplexity float64 `json:"productionComplexity"`
	QueuePosition        float64 `json:"queuePosition"`
	SeasonDemand         float64 `json:"seasonDemand"`
}

type ProductionTimeline struct {
	MinProductionDays     int             `json:"minProductionDays"`
	MaxProductionDays     int             `json:"maxProductionDays"`
	ShippingDays          int             `json:"shippingDays"`
	TotalDays             int             `json:"totalDays"`
	EstimatedDeliveryDate time.Time       `json:"estimatedDeliveryDate"`
	BufferDays            int             `json:"bufferDays"`
	Factors               TimelineFactors `json:"factors"`
}

type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// ValidationError is a blocking problem. When Fixable is set, SuggestedValue
// holds a corrected value the caller can apply.
type ValidationError struct {
	Field          string   `json:"field"`
	Code           string   `json:"code"`
	Message        string   `json:"message"`
	Severity       Severity `json:"severity"`
	Fixable        bool     `json:"fixable"`
	SuggestedValue any      `json:"suggestedValue,omitempty"`
}

type ValidationWarning struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationSuggestion struct {
	Field          string `json:"field"`
	Code           string `json:"code"`
	Message        string `json:"message"`
	SuggestedValue any    `json:"suggestedValue,omitempty"`
}

type ValidationResult struct {
	IsValid     bool                   `json:"isValid"`
	Errors      []ValidationError      `json:"errors"`
	Warnings    []ValidationWarning    `json:"warnings"`
	Suggestions []ValidationSuggestion `json:"suggestions"`
}

// QuotePatternCalculationResult is the full output of Engine.CalculatePrice.
// IsAvailable is false exactly when validation failed; the breakdown is then
// zero-valued and must not be read as a free product.
type QuotePatternCalculationResult struct {
	PatternID          string             `json:"patternId"`
	PatternName        string             `json:"patternName"`
	Specifications     QuotePattern       `json:"specifications"`
	PriceBreakdown     PriceBreakdown     `json:"priceBreakdown"`
	ProductionTimeline ProductionTimeline `json:"productionTimeline"`
	Validation         ValidationResult   `json:"validation"`
	IsAvailable        bool               `json:"isAvailable"`
}

// TaxInclusiveTotal applies a flat tax rate to the total price.
func (r QuotePatternCalculationResult) TaxInclusiveTotal(rate float64) float64 {
	return r.PriceBreakdown.TotalPrice * (1 + rate)
}

// Clone returns a copy that shares no slices with v.
func (v ValidationResult) Clone() ValidationResult {
	out := v
	if v.Errors != nil {
		out.Errors = append([]ValidationError{}, v.Errors...)
	}
	if v.Warnings != nil {
		out.Warnings = append([]ValidationWarning{}, v.Warnings...)
	}
	if v.Suggestions != nil {
		out.Suggestions = append([]ValidationSuggestion{}, v.Suggestions...)
	}
	return out
}

// Clone returns a copy that shares no pointers with p.
func (p QuotePattern) Clone() QuotePattern {
	out := p
	if p.Printing.PrintColors.Sides != nil {
		sides := *p.Printing.PrintColors.Sides
		out.Printing.PrintColors.Sides = &sides
	}
	f := p.Features
	if f.Resealability != nil {
		v := *f.Resealability
		out.Features.Resealability = &v
	}
	if f.CustomShape != nil {
		v := *f.CustomShape
		out.Features.CustomShape = &v
	}
	if f.Window != nil {
		v := *f.Window
		out.Features.Window = &v
	}
	if f.Barrier != nil {
		v := *f.Barrier
		out.Features.Barrier = &v
	}
	return out
}
