package core_test

import (
	"context"
	"testing"

	"warehouseledger/internal/core"
)

func TestInventoryQuery_AvailableSubtractsReservations(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ledger := core.NewLedger(pool)
	reservations := core.NewReservationStore()
	inventory := core.NewInventoryQuery(pool, ledger, reservations)
	ctx := context.Background()

	refType := "receipt"
	refID := 1
	if _, err := ledger.Append(ctx, pool, 1, 1, 20, core.ReasonReceipt, &refType, &refID, nil); err != nil {
		t.Fatalf("append failed: %v", err)
	}
	if _, err := reservations.Create(ctx, pool, 1, 1, 7, 1); err != nil {
		t.Fatalf("create reservation failed: %v", err)
	}

	onHand, err := inventory.OnHand(ctx, 1, 1)
	if err != nil {
		t.Fatalf("OnHand failed: %v", err)
	}
	if onHand != 20 {
		t.Errorf("expected on hand 20, got %d", onHand)
	}

	available, err := inventory.Available(ctx, 1, 1)
	if err != nil {
		t.Fatalf("Available failed: %v", err)
	}
	if available != 13 {
		t.Errorf("expected available 13, got %d", available)
	}
}

func TestInventoryQuery_AvailableBatchPreservesOrder(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ledger := core.NewLedger(pool)
	reservations := core.NewReservationStore()
	inventory := core.NewInventoryQuery(pool, ledger, reservations)
	ctx := context.Background()

	refType := "receipt"
	refID := 1
	if _, err := ledger.Append(ctx, pool, 1, 1, 10, core.ReasonReceipt, &refType, &refID, nil); err != nil {
		t.Fatalf("append failed: %v", err)
	}
	if _, err := ledger.Append(ctx, pool, 1, 2, 30, core.ReasonReceipt, &refType, &refID, nil); err != nil {
		t.Fatalf("append failed: %v", err)
	}

	results, err := inventory.AvailableBatch(ctx, []core.ItemLocation{
		{ItemID: 1, LocationID: 1},
		{ItemID: 1, LocationID: 2},
	})
	if err != nil {
		t.Fatalf("AvailableBatch failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0] != 10 || results[1] != 30 {
		t.Errorf("expected [10 30] in request order, got %v", results)
	}
}
