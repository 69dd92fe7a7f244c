// Package catalog provides reference-data backends for the pricing engine.
package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Simplici0/pouch.works/internal/pricing"
)

// BagType is a catalog row for a bag format.
type BagType struct {
	ID string `json:"id"`
	pricing.BagTypePricingInfo
}

// Material is a catalog row for a material composition.
type Material struct {
	ID string `json:"id"`
	pricing.MaterialPricingInfo
}

// VolumeTier is a discount tier. Empty BagTypeID or MaterialID means the
// tier applies to every bag type or material.
type VolumeTier struct {
	ID         int64  `json:"id"`
	BagTypeID  string `json:"bagTypeId,omitempty"`
	MaterialID string `json:"materialCompositionId,omitempty"`
	pricing.VolumeDiscountTier
}

// Store serves the pricing reference providers from SQLite. Lookups of
// unknown or inactive ids return a wrapped pricing.ErrReferenceNotFound.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// References wires the store as every provider.
func (s *Store) References() pricing.References {
	return pricing.References{BagTypes: s, Materials: s, Discounts: s}
}

func (s *Store) BagTypePricing(ctx context.Context, bagTypeID string) (pricing.BagTypePricingInfo, error) {
	var info pricing.BagTypePricingInfo
	err := s.db.QueryRowContext(ctx, `
		SELECT base_price, min_quantity, size_complexity, production_days, setup_cost
		FROM bag_types
		WHERE id = ? AND active = 1
	`, bagTypeID).Scan(&info.BasePrice, &info.MinQuantity, &info.SizeComplexity, &info.ProductionDays, &info.SetupCost)
	if errors.Is(err, sql.ErrNoRows) {
		return pricing.BagTypePricingInfo{}, fmt.Errorf("bag type %q: %w", bagTypeID, pricing.ErrReferenceNotFound)
	}
	if err != nil {
		return pricing.BagTypePricingInfo{}, fmt.Errorf("query bag type %q: %w", bagTypeID, err)
	}
	return info, nil
}

func (s *Store) MaterialPricing(ctx context.Context, materialCompositionID string) (pricing.MaterialPricingInfo, error) {
	var info pricing.MaterialPricingInfo
	err := s.db.QueryRowContext(ctx, `
		SELECT base_price, price_multiplier, thickness_cost, barrier_cost, availability_factor
		FROM material_compositions
		WHERE id = ? AND active = 1
	`, materialCompositionID).Scan(&info.BasePrice, &info.PriceMultiplier, &info.ThicknessCost, &info.BarrierCost, &info.AvailabilityFactor)
	if errors.Is(err, sql.ErrNoRows) {
		return pricing.MaterialPricingInfo{}, fmt.Errorf("material %q: %w", materialCompositionID, pricing.ErrReferenceNotFound)
	}
	if err != nil {
		return pricing.MaterialPricingInfo{}, fmt.Errorf("query material %q: %w", materialCompositionID, err)
	}
	return info, nil
}

// VolumeDiscounts returns the tiers scoped to the pair plus the global ones,
// ordered by minimum quantity.
func (s *Store) VolumeDiscounts(ctx context.Context, bagTypeID, materialCompositionID string) ([]pricing.VolumeDiscountTier, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT min_quantity, max_quantity, discount_rate, efficiency_factor
		FROM volume_discount_tiers
		WHERE (bag_type_id IS NULL OR bag_type_id = ?)
		  AND (material_composition_id IS NULL OR material_composition_id = ?)
		ORDER BY min_quantity ASC
	`, bagTypeID, materialCompositionID)
	if err != nil {
		return nil, fmt.Errorf("query volume tiers: %w", err)
	}
	defer rows.Close()

	var tiers []pricing.VolumeDiscountTier
	for rows.Next() {
		var t pricing.VolumeDiscountTier
		if err := rows.Scan(&t.MinQuantity, &t.MaxQuantity, &t.DiscountRate, &t.EfficiencyFactor); err != nil {
			return nil, fmt.Errorf("scan volume tier: %w", err)
		}
		tiers = append(tiers, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate volume tiers: %w", err)
	}
	return tiers, nil
}

func (s *Store) ListBagTypes(ctx context.Context) ([]BagType, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, base_price, min_quantity, size_complexity, production_days, setup_cost
		FROM bag_types
		WHERE active = 1
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("list bag types: %w", err)
	}
	defer rows.Close()

	out := []BagType{}
	for rows.Next() {
		var b BagType
		if err := rows.Scan(&b.ID, &b.BasePrice, &b.MinQuantity, &b.SizeComplexity, &b.ProductionDays, &b.SetupCost); err != nil {
			return nil, fmt.Errorf("scan bag type: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// UpsertBagType inserts or replaces a bag type and reactivates it.
func (s *Store) UpsertBagType(ctx context.Context, b BagType) error {
	if b.ID == "" {
		return errors.New("bag type id is required")
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO bag_types (id, base_price, min_quantity, size_complexity, production_days, setup_cost, active)
		VALUES (?, ?, ?, ?, ?, ?, 1)
		ON CONFLICT(id) DO UPDATE SET
			base_price = excluded.base_price,
			min_quantity = excluded.min_quantity,
			size_complexity = excluded.size_complexity,
			production_days = excluded.production_days,
			setup_cost = excluded.setup_cost,
			active = 1,
			updated_at = CURRENT_TIMESTAMP
	`, b.ID, b.BasePrice, b.MinQuantity, b.SizeComplexity, b.ProductionDays, b.SetupCost)
	if err != nil {
		return fmt.Errorf("upsert bag type %q: %w", b.ID, err)
	}
	return nil
}

func (s *Store) ListMaterials(ctx context.Context) ([]Material, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, base_price, price_multiplier, thickness_cost, barrier_cost, availability_factor
		FROM material_compositions
		WHERE active = 1
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("list materials: %w", err)
	}
	defer rows.Close()

	out := []Material{}
	for rows.Next() {
		var m Material
		if err := rows.Scan(&m.ID, &m.BasePrice, &m.PriceMultiplier, &m.ThicknessCost, &m.BarrierCost, &m.AvailabilityFactor); err != nil {
			return nil, fmt.Errorf("scan material: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// UpsertMaterial inserts or replaces a material composition and reactivates it.
func (s *Store) UpsertMaterial(ctx context.Context, m Material) error {
	if m.ID == "" {
		return errors.New("material id is required")
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO material_compositions (id, base_price, price_multiplier, thickness_cost, barrier_cost, availability_factor, active)
		VALUES (?, ?, ?, ?, ?, ?, 1)
		ON CONFLICT(id) DO UPDATE SET
			base_price = excluded.base_price,
			price_multiplier = excluded.price_multiplier,
			thickness_cost = excluded.thickness_cost,
			barrier_cost = excluded.barrier_cost,
			availability_factor = excluded.availability_factor,
			active = 1,
			updated_at = CURRENT_TIMESTAMP
	`, m.ID, m.BasePrice, m.PriceMultiplier, m.ThicknessCost, m.BarrierCost, m.AvailabilityFactor)
	if err != nil {
		return fmt.Errorf("upsert material %q: %w", m.ID, err)
	}
	return nil
}

func (s *Store) ListVolumeTiers(ctx context.Context) ([]VolumeTier, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, IFNULL(bag_type_id, ''), IFNULL(material_composition_id, ''),
		       min_quantity, max_quantity, discount_rate, efficiency_factor
		FROM volume_discount_tiers
		ORDER BY IFNULL(bag_type_id, ''), IFNULL(material_composition_id, ''), min_quantity
	`)
	if err != nil {
		return nil, fmt.Errorf("list volume tiers: %w", err)
	}
	defer rows.Close()

	out := []VolumeTier{}
	for rows.Next() {
		var t VolumeTier
		if err := rows.Scan(&t.ID, &t.BagTypeID, &t.MaterialID, &t.MinQuantity, &t.MaxQuantity, &t.DiscountRate, &t.EfficiencyFactor); err != nil {
			return nil, fmt.Errorf("scan volume tier: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
