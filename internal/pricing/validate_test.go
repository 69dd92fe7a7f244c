package pricing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_DefaultRules(t *testing.T) {
	cases := []struct {
		name      string
		mutate    func(*QuotePattern)
		code      string
		field     string
		suggested any
	}{
		{"width below range", func(p *QuotePattern) { p.Bag.Width = 10 }, CodeInvalidRange, "bag.width", 50.0},
		{"width above range", func(p *QuotePattern) { p.Bag.Width = 900 }, CodeInvalidRange, "bag.width", 500.0},
		{"height above range", func(p *QuotePattern) { p.Bag.Height = 501 }, CodeInvalidRange, "bag.height", 500.0},
		{"negative depth", func(p *QuotePattern) { p.Bag.Depth = -1 }, CodeInvalidDepth, "bag.depth", 0.0},
		{"negative quantity", func(p *QuotePattern) { p.Quantity = -10 }, CodeInvalidQuantity, "quantity", 1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := flatPattern(1000)
			tc.mutate(&p)

			v := Validate(p, DefaultRules)
			require.False(t, v.IsValid)
			require.Len(t, v.Errors, 1)
			e := v.Errors[0]
			assert.Equal(t, tc.code, e.Code)
			assert.Equal(t, tc.field, e.Field)
			assert.Equal(t, SeverityError, e.Severity)
			assert.True(t, e.Fixable)
			assert.Equal(t, tc.suggested, e.SuggestedValue)
		})
	}
}

func TestValidate_BoundsAreInclusive(t *testing.T) {
	p := flatPattern(1)
	p.Bag.Width = MinDimensionMM
	p.Bag.Height = MaxDimensionMM

	v := Validate(p, DefaultRules)
	assert.True(t, v.IsValid)
	assert.NotNil(t, v.Errors)
	assert.NotNil(t, v.Warnings)
	assert.NotNil(t, v.Suggestions)
}

func TestWithRules_CustomRuleBlocksPricing(t *testing.T) {
	maxSKUs := func(p QuotePattern, v *ValidationResult) {
		if p.SKUCount > 5 {
			v.AddError(ValidationError{Field: "skuCount", Code: "TOO_MANY_SKUS", Message: "At most 5 SKUs per pattern"})
		}
	}
	rules := append(append([]Rule{}, DefaultRules...), maxSKUs)
	engine := newTestEngine(t, WithRules(rules...))

	pattern := flatPattern(1000)
	pattern.SKUCount = 6
	result, err := engine.CalculatePrice(context.Background(), PriceCalculationInput{Pattern: pattern, UserTier: TierBasic})
	require.NoError(t, err)
	assert.False(t, result.IsAvailable)
	require.Len(t, result.Validation.Errors, 1)
	assert.Equal(t, "TOO_MANY_SKUS", result.Validation.Errors[0].Code)
	assert.Equal(t, SeverityError, result.Validation.Errors[0].Severity)
}

func TestWithRates_TenantCalibration(t *testing.T) {
	rates := DefaultRates()
	rates.FixedSetupCost = 100000
	rates.MinProfitMargin = 0.1
	engine := newTestEngine(t, WithRates(rates))
	assert.Equal(t, 100000.0, engine.Rates().FixedSetupCost)

	result, err := engine.CalculatePrice(context.Background(), PriceCalculationInput{Pattern: flatPattern(1000), UserTier: TierBasic})
	require.NoError(t, err)

	// base 30 * 1.1 plus (100000 + 2500 + 3500) / 1000
	assert.InDelta(t, 33, result.PriceBreakdown.BasePrice, delta)
	assert.InDelta(t, 139, result.PriceBreakdown.UnitPrice, delta)
}

func TestAdvise_NextTierPicksSmallestBetterTier(t *testing.T) {
	tiers := []VolumeDiscountTier{
		{MinQuantity: 1000, DiscountRate: 0},
		{MinQuantity: 10000, DiscountRate: 0.10},
		{MinQuantity: 3000, DiscountRate: 0.05},
	}
	v := Validate(flatPattern(500), DefaultRules)
	advise(&v, flatPattern(500), BagTypePricingInfo{MinQuantity: 1000}, tiers)

	require.Len(t, v.Warnings, 1)
	assert.Equal(t, CodeBelowMinQuantity, v.Warnings[0].Code)
	require.Len(t, v.Suggestions, 1)
	assert.Equal(t, 3000, v.Suggestions[0].SuggestedValue)

	v = Validate(flatPattern(20000), DefaultRules)
	advise(&v, flatPattern(20000), BagTypePricingInfo{MinQuantity: 1000}, tiers)
	assert.Empty(t, v.Warnings)
	assert.Empty(t, v.Suggestions)
}
