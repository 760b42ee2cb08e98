package core_test

import (
	"context"
	"os"
	"testing"

	"warehouseledger/internal/core"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

// setupTestDB connects to TEST_DATABASE_URL, truncates every domain table,
// and seeds one warehouse, two locations, and one item. Set TEST_DATABASE_URL
// in your .env or environment to run these tests against a real Postgres.
func setupTestDB(t *testing.T) *pgxpool.Pool {
	_ = godotenv.Load("../../.env")

	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set — skipping integration test to protect live database")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	_, err = pool.Exec(ctx, `
		TRUNCATE TABLE cycle_count_lines, cycle_counts, pick_lines, pick_waves,
			transfer_lines, transfers, reservations, ledger, locations, items, warehouses
			RESTART IDENTITY CASCADE;

		INSERT INTO warehouses (id, code, name) VALUES (1, 'WH1', 'Main Warehouse');
		INSERT INTO locations (id, warehouse_id, code, is_pickable) VALUES (1, 1, 'A-1-1', true);
		INSERT INTO locations (id, warehouse_id, code, is_pickable) VALUES (2, 1, 'A-1-2', true);
		INSERT INTO items (id, sku, name) VALUES (1, 'SKU-001', 'Widget');
	`)
	if err != nil {
		t.Fatalf("Failed to seed test database: %v", err)
	}

	return pool
}

func TestLedger_SumDeltaAccumulates(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ledger := core.NewLedger(pool)
	ctx := context.Background()

	refType := "receipt"
	refID := 1

	if _, err := ledger.Append(ctx, pool, 1, 1, 10, core.ReasonReceipt, &refType, &refID, nil); err != nil {
		t.Fatalf("first append failed: %v", err)
	}
	if _, err := ledger.Append(ctx, pool, 1, 1, 5, core.ReasonReceipt, &refType, &refID, nil); err != nil {
		t.Fatalf("second append failed: %v", err)
	}
	if _, err := ledger.Append(ctx, pool, 1, 1, -3, core.ReasonPick, &refType, &refID, nil); err != nil {
		t.Fatalf("third append failed: %v", err)
	}

	sum, err := ledger.SumDelta(ctx, pool, 1, 1)
	if err != nil {
		t.Fatalf("SumDelta failed: %v", err)
	}
	if sum != 12 {
		t.Errorf("expected sum 12, got %d", sum)
	}
}

func TestLedger_SumDeltaIsScopedToLocation(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ledger := core.NewLedger(pool)
	ctx := context.Background()

	refType := "receipt"
	refID := 1
	if _, err := ledger.Append(ctx, pool, 1, 1, 10, core.ReasonReceipt, &refType, &refID, nil); err != nil {
		t.Fatalf("append at location 1 failed: %v", err)
	}

	sum, err := ledger.SumDelta(ctx, pool, 1, 2)
	if err != nil {
		t.Fatalf("SumDelta failed: %v", err)
	}
	if sum != 0 {
		t.Errorf("expected 0 at an untouched location, got %d", sum)
	}
}

func TestLedger_AppendRejectsZeroDelta(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ledger := core.NewLedger(pool)
	ctx := context.Background()

	_, err := ledger.Append(ctx, pool, 1, 1, 0, core.ReasonAdjustment, nil, nil, nil)
	if err == nil {
		t.Fatal("expected error for zero delta, got nil")
	}
}

func TestLedger_EntriesForReference(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ledger := core.NewLedger(pool)
	ctx := context.Background()

	refType := "transfer"
	refID := 42
	if _, err := ledger.Append(ctx, pool, 1, 1, -5, core.ReasonTransfer, &refType, &refID, nil); err != nil {
		t.Fatalf("append failed: %v", err)
	}
	if _, err := ledger.Append(ctx, pool, 1, 2, 5, core.ReasonTransfer, &refType, &refID, nil); err != nil {
		t.Fatalf("append failed: %v", err)
	}

	otherRef := 43
	if _, err := ledger.Append(ctx, pool, 1, 1, 1, core.ReasonAdjustment, &refType, &otherRef, nil); err != nil {
		t.Fatalf("append failed: %v", err)
	}

	entries, err := ledger.EntriesForReference(ctx, "transfer", 42)
	if err != nil {
		t.Fatalf("EntriesForReference failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries for reference 42, got %d", len(entries))
	}
	if entries[0].QuantityChange != -5 || entries[1].QuantityChange != 5 {
		t.Errorf("unexpected entries: %+v", entries)
	}
}
