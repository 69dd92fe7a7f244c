package seed

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"github.com/Simplici0/pouch.works/internal/catalog"
	"github.com/Simplici0/pouch.works/internal/pricing"
)

// DefaultMaterialIDs are the compositions offered by the simulator.
var DefaultMaterialIDs = []string{
	"alu-vapor",
	"kraft-pe",
	"opp-alu-foil",
	"pet-transparent",
	"pet_al",
	"pet_ldpe",
	"pet_ny_al",
	"pet_vmpet",
}

// Stats contains seed operation counters.
type Stats struct {
	Inserts int
	Updates int
}

// DefaultCatalog is the starting catalog: the static reference tables with
// every default material listed explicitly.
func DefaultCatalog() catalog.File {
	refs := pricing.DefaultStaticReferences()
	materials := make(map[string]pricing.MaterialPricingInfo, len(DefaultMaterialIDs))
	for _, id := range DefaultMaterialIDs {
		materials[id] = refs.DefaultMaterial
	}
	return catalog.File{
		BagTypes:    refs.BagTypes,
		Materials:   materials,
		VolumeTiers: refs.Tiers,
	}
}

// Run inserts the rows of c that are missing. Existing rows are left as
// they are so admin edits survive restarts.
func Run(ctx context.Context, db *sql.DB, c catalog.File) (Stats, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return Stats{}, fmt.Errorf("begin seed transaction: %w", err)
	}

	stats := Stats{}

	if err := ensureBagTypes(ctx, tx, c.BagTypes, &stats); err != nil {
		_ = tx.Rollback()
		return Stats{}, err
	}
	if err := ensureMaterials(ctx, tx, c.Materials, &stats); err != nil {
		_ = tx.Rollback()
		return Stats{}, err
	}
	if err := ensureGlobalTiers(ctx, tx, c.VolumeTiers, &stats); err != nil {
		_ = tx.Rollback()
		return Stats{}, err
	}

	if err := tx.Commit(); err != nil {
		return Stats{}, fmt.Errorf("commit seed transaction: %w", err)
	}

	return stats, nil
}

func ensureBagTypes(ctx context.Context, tx *sql.Tx, bagTypes map[string]pricing.BagTypePricingInfo, stats *Stats) error {
	for _, id := range sortedKeys(bagTypes) {
		b := bagTypes[id]
		res, err := tx.ExecContext(ctx, `
			INSERT OR IGNORE INTO bag_types (id, base_price, min_quantity, size_complexity, production_days, setup_cost)
			VALUES (?, ?, ?, ?, ?, ?)
		`, id, b.BasePrice, b.MinQuantity, b.SizeComplexity, b.ProductionDays, b.SetupCost)
		if err != nil {
			return fmt.Errorf("insert bag type %q: %w", id, err)
		}
		if err := count(res, stats); err != nil {
			return err
		}
	}
	return nil
}

func ensureMaterials(ctx context.Context, tx *sql.Tx, materials map[string]pricing.MaterialPricingInfo, stats *Stats) error {
	for _, id := range sortedKeys(materials) {
		m := materials[id]
		res, err := tx.ExecContext(ctx, `
			INSERT OR IGNORE INTO material_compositions (id, base_price, price_multiplier, thickness_cost, barrier_cost, availability_factor)
			VALUES (?, ?, ?, ?, ?, ?)
		`, id, m.BasePrice, m.PriceMultiplier, m.ThicknessCost, m.BarrierCost, m.AvailabilityFactor)
		if err != nil {
			return fmt.Errorf("insert material %q: %w", id, err)
		}
		if err := count(res, stats); err != nil {
			return err
		}
	}
	return nil
}

func ensureGlobalTiers(ctx context.Context, tx *sql.Tx, tiers []pricing.VolumeDiscountTier, stats *Stats) error {
	for _, t := range tiers {
		var exists bool
		if err := tx.QueryRowContext(ctx, `
			SELECT EXISTS(
				SELECT 1
				FROM volume_discount_tiers
				WHERE bag_type_id IS NULL AND material_composition_id IS NULL AND min_quantity = ?
				LIMIT 1
			)
		`, t.MinQuantity).Scan(&exists); err != nil {
			return fmt.Errorf("check volume tier %d existence: %w", t.MinQuantity, err)
		}
		if exists {
			continue
		}

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO volume_discount_tiers (min_quantity, max_quantity, discount_rate, efficiency_factor)
			VALUES (?, ?, ?, ?)
		`, t.MinQuantity, t.MaxQuantity, t.DiscountRate, t.EfficiencyFactor); err != nil {
			return fmt.Errorf("insert volume tier %d: %w", t.MinQuantity, err)
		}
		stats.Inserts++
	}
	return nil
}

func count(res sql.Result, stats *Stats) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	stats.Inserts += int(n)
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
