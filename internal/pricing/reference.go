package pricing

import (
	"context"
	"errors"
	"fmt"
	"sort"
)

// ErrReferenceNotFound is returned (wrapped) by providers for unknown ids.
// The engine reports it as a validation error instead of failing.
var ErrReferenceNotFound = errors.New("reference data not found")

// BagTypePricingInfo is the catalog entry of a bag format.
type BagTypePricingInfo struct {
	BasePrice      float64 `json:"basePrice" yaml:"basePrice"`
	MinQuantity    int     `json:"minQuantity" yaml:"minQuantity"`
	SizeComplexity string  `json:"sizeComplexity" yaml:"sizeComplexity"`
	ProductionDays int     `json:"productionDays" yaml:"productionDays"`
	SetupCost      float64 `json:"setupCost" yaml:"setupCost"`
}

// MaterialPricingInfo is the catalog entry of a film/laminate stack.
type MaterialPricingInfo struct {
	BasePrice          float64 `json:"basePrice" yaml:"basePrice"`
	PriceMultiplier    float64 `json:"priceMultiplier" yaml:"priceMultiplier"`
	ThicknessCost      float64 `json:"thicknessCost" yaml:"thicknessCost"`
	BarrierCost        float64 `json:"barrierCost" yaml:"barrierCost"`
	AvailabilityFactor float64 `json:"availabilityFactor" yaml:"availabilityFactor"`
}

// VolumeDiscountTier applies DiscountRate to quantities in
// [MinQuantity, MaxQuantity]. MaxQuantity 0 means open-ended.
type VolumeDiscountTier struct {
	MinQuantity      int     `json:"minQuantity" yaml:"minQuantity"`
	MaxQuantity      int     `json:"maxQuantity,omitempty" yaml:"maxQuantity"`
	DiscountRate     float64 `json:"discountRate" yaml:"discountRate"`
	EfficiencyFactor float64 `json:"efficiencyFactor" yaml:"efficiencyFactor"`
}

// Contains reports whether quantity falls inside the tier.
func (t VolumeDiscountTier) Contains(quantity int) bool {
	if quantity < t.MinQuantity {
		return false
	}
	return t.MaxQuantity == 0 || quantity <= t.MaxQuantity
}

type BagTypePricingProvider interface {
	BagTypePricing(ctx context.Context, bagTypeID string) (BagTypePricingInfo, error)
}

type MaterialPricingProvider interface {
	MaterialPricing(ctx context.Context, materialCompositionID string) (MaterialPricingInfo, error)
}

type VolumeDiscountProvider interface {
	VolumeDiscounts(ctx context.Context, bagTypeID, materialCompositionID string) ([]VolumeDiscountTier, error)
}

// References bundles the three lookups the engine depends on.
type References struct {
	BagTypes  BagTypePricingProvider
	Materials MaterialPricingProvider
	Discounts VolumeDiscountProvider
}

// StaticReferences serves reference data from in-memory tables. When Strict
// is false, unknown bag types fall back to DefaultBagType and unknown
// materials to DefaultMaterial, mirroring the mocked catalog.
type StaticReferences struct {
	BagTypes        map[string]BagTypePricingInfo
	Materials       map[string]MaterialPricingInfo
	Tiers           []VolumeDiscountTier
	DefaultBagType  BagTypePricingInfo
	DefaultMaterial MaterialPricingInfo
	Strict          bool
}

// DefaultStaticReferences returns the mocked catalog: stand-up and gusset
// pouches carry a base price over flat bags, every material has multiplier
// 1.0 and there are two volume tiers (0% from 1000, 5% from 3000).
func DefaultStaticReferences() *StaticReferences {
	flat := BagTypePricingInfo{
		BasePrice:      0,
		MinQuantity:    1000,
		SizeComplexity: "moderate",
		ProductionDays: 7,
		SetupCost:      5000,
	}
	standUp := flat
	standUp.BasePrice = 8
	gusset := flat
	gusset.BasePrice = 15

	material := MaterialPricingInfo{
		BasePrice:          1.0,
		PriceMultiplier:    1.0,
		AvailabilityFactor: 1.0,
	}

	return &StaticReferences{
		BagTypes: map[string]BagTypePricingInfo{
			BagFlat3Side: flat,
			BagStandUp:   standUp,
			BagGusset:    gusset,
		},
		Materials: map[string]MaterialPricingInfo{},
		Tiers: []VolumeDiscountTier{
			{MinQuantity: 1000, DiscountRate: 0, EfficiencyFactor: 1.0},
			{MinQuantity: 3000, DiscountRate: 0.05, EfficiencyFactor: 1.05},
		},
		DefaultBagType:  flat,
		DefaultMaterial: material,
	}
}

// AsReferences wires s as every provider.
func (s *StaticReferences) AsReferences() References {
	return References{BagTypes: s, Materials: s, Discounts: s}
}

func (s *StaticReferences) BagTypePricing(ctx context.Context, bagTypeID string) (BagTypePricingInfo, error) {
	if info, ok := s.BagTypes[bagTypeID]; ok {
		return info, nil
	}
	if s.Strict {
		return BagTypePricingInfo{}, fmt.Errorf("bag type %q: %w", bagTypeID, ErrReferenceNotFound)
	}
	return s.DefaultBagType, nil
}

func (s *StaticReferences) MaterialPricing(ctx context.Context, materialCompositionID string) (MaterialPricingInfo, error) {
	if info, ok := s.Materials[materialCompositionID]; ok {
		return info, nil
	}
	if s.Strict {
		return MaterialPricingInfo{}, fmt.Errorf("material %q: %w", materialCompositionID, ErrReferenceNotFound)
	}
	return s.DefaultMaterial, nil
}

func (s *StaticReferences) VolumeDiscounts(ctx context.Context, bagTypeID, materialCompositionID string) ([]VolumeDiscountTier, error) {
	tiers := make([]VolumeDiscountTier, len(s.Tiers))
	copy(tiers, s.Tiers)
	sort.Slice(tiers, func(i, j int) bool { return tiers[i].MinQuantity < tiers[j].MinQuantity })
	return tiers, nil
}
