package catalog_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Simplici0/pouch.works/internal/catalog"
	"github.com/Simplici0/pouch.works/internal/db"
	"github.com/Simplici0/pouch.works/internal/migrations"
	"github.com/Simplici0/pouch.works/internal/pricing"
	"github.com/Simplici0/pouch.works/internal/seed"
)

func openSeeded(t *testing.T) *sql.DB {
	t.Helper()
	ctx := context.Background()

	database, err := db.Open(ctx, filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	require.NoError(t, migrations.Up(ctx, database))
	_, err = seed.Run(ctx, database, seed.DefaultCatalog())
	require.NoError(t, err)
	return database
}

func TestStore_Lookups(t *testing.T) {
	ctx := context.Background()
	store := catalog.NewStore(openSeeded(t))

	bag, err := store.BagTypePricing(ctx, pricing.BagStandUp)
	require.NoError(t, err)
	assert.Equal(t, 8.0, bag.BasePrice)
	assert.Equal(t, 1000, bag.MinQuantity)

	material, err := store.MaterialPricing(ctx, "pet_al")
	require.NoError(t, err)
	assert.Equal(t, 1.0, material.PriceMultiplier)

	_, err = store.BagTypePricing(ctx, "envelope")
	assert.ErrorIs(t, err, pricing.ErrReferenceNotFound)

	_, err = store.MaterialPricing(ctx, "paper")
	assert.ErrorIs(t, err, pricing.ErrReferenceNotFound)

	tiers, err := store.VolumeDiscounts(ctx, pricing.BagFlat3Side, "pet_al")
	require.NoError(t, err)
	require.Len(t, tiers, 2)
	assert.Equal(t, 1000, tiers[0].MinQuantity)
	assert.InDelta(t, 0.05, tiers[1].DiscountRate, 1e-12)
}

func TestStore_ScopedTiers(t *testing.T) {
	ctx := context.Background()
	database := openSeeded(t)
	store := catalog.NewStore(database)

	_, err := database.ExecContext(ctx, `
		INSERT INTO volume_discount_tiers (bag_type_id, min_quantity, discount_rate, efficiency_factor)
		VALUES (?, 2000, 0.08, 1)
	`, pricing.BagStandUp)
	require.NoError(t, err)

	standUp, err := store.VolumeDiscounts(ctx, pricing.BagStandUp, "pet_al")
	require.NoError(t, err)
	require.Len(t, standUp, 3)
	assert.Equal(t, []int{1000, 2000, 3000}, []int{standUp[0].MinQuantity, standUp[1].MinQuantity, standUp[2].MinQuantity})

	flat, err := store.VolumeDiscounts(ctx, pricing.BagFlat3Side, "pet_al")
	require.NoError(t, err)
	assert.Len(t, flat, 2)

	all, err := store.ListVolumeTiers(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "", all[0].BagTypeID)
	assert.Equal(t, pricing.BagStandUp, all[2].BagTypeID)
}

func TestStore_UpsertAndList(t *testing.T) {
	ctx := context.Background()
	store := catalog.NewStore(openSeeded(t))

	err := store.UpsertBagType(ctx, catalog.BagType{
		ID:                 "spout",
		BagTypePricingInfo: pricing.BagTypePricingInfo{BasePrice: 30, MinQuantity: 3000, SizeComplexity: "complex", ProductionDays: 14},
	})
	require.NoError(t, err)

	err = store.UpsertMaterial(ctx, catalog.Material{
		ID:                  "pet_al",
		MaterialPricingInfo: pricing.MaterialPricingInfo{BasePrice: 1, PriceMultiplier: 1.4, AvailabilityFactor: 1},
	})
	require.NoError(t, err)

	bags, err := store.ListBagTypes(ctx)
	require.NoError(t, err)
	ids := make([]string, len(bags))
	for i, b := range bags {
		ids[i] = b.ID
	}
	assert.Equal(t, []string{pricing.BagFlat3Side, pricing.BagGusset, "spout", pricing.BagStandUp}, ids)

	materials, err := store.ListMaterials(ctx)
	require.NoError(t, err)
	for _, m := range materials {
		if m.ID == "pet_al" {
			assert.Equal(t, 1.4, m.PriceMultiplier)
		}
	}

	assert.Error(t, store.UpsertBagType(ctx, catalog.BagType{}))
	assert.Error(t, store.UpsertMaterial(ctx, catalog.Material{}))
}

func TestStore_DrivesEngine(t *testing.T) {
	ctx := context.Background()
	engine, err := pricing.NewEngine(catalog.NewStore(openSeeded(t)).References())
	require.NoError(t, err)

	pattern := pricing.QuotePattern{
		SKUCount: 1,
		Quantity: 1000,
		Bag: pricing.BagSpecification{
			BagTypeID:             pricing.BagFlat3Side,
			MaterialCompositionID: "opp-alu-foil",
			Width:                 100,
			Height:                200,
		},
		Printing: pricing.PrintingSpecification{PrintCoverage: pricing.CoveragePartial},
	}

	result, err := engine.CalculatePrice(ctx, pricing.PriceCalculationInput{Pattern: pattern, UserTier: pricing.TierBasic})
	require.NoError(t, err)
	require.True(t, result.IsAvailable)
	assert.InDelta(t, 186, result.PriceBreakdown.UnitPrice, 1e-9)

	pattern.Bag.MaterialCompositionID = "paper"
	result, err = engine.CalculatePrice(ctx, pricing.PriceCalculationInput{Pattern: pattern, UserTier: pricing.TierBasic})
	require.NoError(t, err)
	assert.False(t, result.IsAvailable)
	require.Len(t, result.Validation.Errors, 1)
	assert.Equal(t, pricing.CodeUnknownMaterial, result.Validation.Errors[0].Code)
}
