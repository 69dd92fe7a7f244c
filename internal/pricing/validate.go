package pricing

import "fmt"

const (
	MinDimensionMM = 50
	MaxDimensionMM = 500
)

// Validation codes.
const (
	CodeInvalidRange     = "INVALID_RANGE"
	CodeInvalidQuantity  = "INVALID_QUANTITY"
	CodeInvalidDepth     = "INVALID_DEPTH"
	CodeUnknownBagType   = "UNKNOWN_BAG_TYPE"
	CodeUnknownMaterial  = "UNKNOWN_MATERIAL"
	CodeBelowMinQuantity = "BELOW_MIN_QUANTITY"
	CodeNextVolumeTier   = "NEXT_VOLUME_TIER"
)

// Rule inspects a pattern and appends its findings to v.
type Rule func(pattern QuotePattern, v *ValidationResult)

// DefaultRules are the field checks run before any reference lookup.
var DefaultRules = []Rule{
	dimensionRule("bag.width", "Bag width", func(p QuotePattern) float64 { return p.Bag.Width }),
	dimensionRule("bag.height", "Bag height", func(p QuotePattern) float64 { return p.Bag.Height }),
	depthRule,
	quantityRule,
}

// Validate runs rules over pattern. IsValid is false when any error was added.
func Validate(pattern QuotePattern, rules []Rule) ValidationResult {
	v := ValidationResult{
		Errors:      []ValidationError{},
		Warnings:    []ValidationWarning{},
		Suggestions: []ValidationSuggestion{},
	}
	for _, rule := range rules {
		rule(pattern, &v)
	}
	v.IsValid = len(v.Errors) == 0
	return v
}

// AddError records a blocking error and marks v invalid.
func (v *ValidationResult) AddError(e ValidationError) {
	if e.Severity == "" {
		e.Severity = SeverityError
	}
	v.Errors = append(v.Errors, e)
	v.IsValid = false
}

func dimensionRule(field, label string, get func(QuotePattern) float64) Rule {
	return func(p QuotePattern, v *ValidationResult) {
		value := get(p)
		if value >= MinDimensionMM && value <= MaxDimensionMM {
			return
		}
		v.AddError(ValidationError{
			Field:          field,
			Code:           CodeInvalidRange,
			Message:        fmt.Sprintf("%s must be between %dmm and %dmm", label, MinDimensionMM, MaxDimensionMM),
			Fixable:        true,
			SuggestedValue: clamp(value, MinDimensionMM, MaxDimensionMM),
		})
	}
}

func depthRule(p QuotePattern, v *ValidationResult) {
	if p.Bag.Depth >= 0 {
		return
	}
	v.AddError(ValidationError{
		Field:          "bag.depth",
		Code:           CodeInvalidDepth,
		Message:        "Bag depth cannot be negative",
		Fixable:        true,
		SuggestedValue: 0.0,
	})
}

func quantityRule(p QuotePattern, v *ValidationResult) {
	if p.Quantity > 0 {
		return
	}
	v.AddError(ValidationError{
		Field:          "quantity",
		Code:           CodeInvalidQuantity,
		Message:        "Quantity must be greater than zero",
		Fixable:        true,
		SuggestedValue: 1,
	})
}

// advise appends the non-blocking findings that need reference data.
func advise(v *ValidationResult, pattern QuotePattern, bag BagTypePricingInfo, tiers []VolumeDiscountTier) {
	if bag.MinQuantity > 0 && pattern.Quantity < bag.MinQuantity {
		v.Warnings = append(v.Warnings, ValidationWarning{
			Field:   "quantity",
			Code:    CodeBelowMinQuantity,
			Message: fmt.Sprintf("Quantity is below the recommended minimum of %d for this bag type", bag.MinQuantity),
		})
	}

	current, _ := ApplicableTier(pattern.Quantity, tiers)
	var next *VolumeDiscountTier
	for i := range tiers {
		tier := tiers[i]
		if tier.MinQuantity <= pattern.Quantity || tier.DiscountRate <= current.DiscountRate {
			continue
		}
		if next == nil || tier.MinQuantity < next.MinQuantity {
			next = &tiers[i]
		}
	}
	if next != nil {
		v.Suggestions = append(v.Suggestions, ValidationSuggestion{
			Field:          "quantity",
			Code:           CodeNextVolumeTier,
			Message:        fmt.Sprintf("Ordering %d or more units unlocks a %.0f%% volume discount", next.MinQuantity, next.DiscountRate*100),
			SuggestedValue: next.MinQuantity,
		})
	}
}

func clamp(value, lo, hi float64) float64 {
	if value < lo {
		return lo
	}
	if value > hi {
		return hi
	}
	return value
}
