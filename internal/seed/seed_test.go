package seed

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/Simplici0/pouch.works/internal/catalog"
	"github.com/Simplici0/pouch.works/internal/db"
	"github.com/Simplici0/pouch.works/internal/migrations"
	"github.com/Simplici0/pouch.works/internal/pricing"
)

func TestRunIsIdempotent(t *testing.T) {
	ctx := context.Background()

	dbPath := filepath.Join(t.TempDir(), "seed-test.db")
	database, err := db.Open(ctx, dbPath)
	if err != nil {
		t.Fatalf("open sqlite database: %v", err)
	}
	defer database.Close()

	if err := migrations.Up(ctx, database); err != nil {
		t.Fatalf("run migrations: %v", err)
	}

	defaults := DefaultCatalog()
	want := len(defaults.BagTypes) + len(defaults.Materials) + len(defaults.VolumeTiers)

	for i := 0; i < 10; i++ {
		stats, err := Run(ctx, database, defaults)
		if err != nil {
			t.Fatalf("run seed (iteration=%d): %v", i, err)
		}
		if i == 0 {
			if stats.Inserts != want {
				t.Fatalf("expected %d inserts in first run, got %d", want, stats.Inserts)
			}
			continue
		}
		if stats.Inserts != 0 {
			t.Fatalf("expected 0 inserts in iteration %d, got %d", i, stats.Inserts)
		}
	}

	assertCount(t, database, `SELECT COUNT(*) FROM bag_types`, nil, 3)
	assertCount(t, database, `SELECT COUNT(*) FROM material_compositions WHERE id = ?`, "opp-alu-foil", 1)
	assertCount(t, database, `SELECT COUNT(*) FROM volume_discount_tiers WHERE bag_type_id IS NULL`, nil, 2)
}

func TestRunKeepsEditedRows(t *testing.T) {
	ctx := context.Background()

	database, err := db.Open(ctx, filepath.Join(t.TempDir(), "seed-edit.db"))
	if err != nil {
		t.Fatalf("open sqlite database: %v", err)
	}
	defer database.Close()
	if err := migrations.Up(ctx, database); err != nil {
		t.Fatalf("run migrations: %v", err)
	}
	if _, err := Run(ctx, database, DefaultCatalog()); err != nil {
		t.Fatalf("seed: %v", err)
	}

	store := catalog.NewStore(database)
	edited := catalog.BagType{ID: pricing.BagGusset, BagTypePricingInfo: pricing.BagTypePricingInfo{BasePrice: 20, MinQuantity: 500}}
	if err := store.UpsertBagType(ctx, edited); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	if _, err := Run(ctx, database, DefaultCatalog()); err != nil {
		t.Fatalf("reseed: %v", err)
	}

	info, err := store.BagTypePricing(ctx, pricing.BagGusset)
	if err != nil {
		t.Fatalf("lookup gusset: %v", err)
	}
	if info.BasePrice != 20 {
		t.Fatalf("expected edited base price 20, got %v", info.BasePrice)
	}
}

func assertCount(t *testing.T, database *sql.DB, query string, args any, expected int) {
	t.Helper()

	var count int
	var err error
	switch v := args.(type) {
	case nil:
		err = database.QueryRow(query).Scan(&count)
	case []any:
		err = database.QueryRow(query, v...).Scan(&count)
	default:
		err = database.QueryRow(query, v).Scan(&count)
	}
	if err != nil {
		t.Fatalf("count query failed: %v", err)
	}
	if count != expected {
		t.Fatalf("expected count %d, got %d", expected, count)
	}
}
