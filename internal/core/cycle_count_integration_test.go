package core_test

import (
	"context"
	"testing"

	"warehouseledger/internal/core"
)

func TestCycleCountService_OpenSnapshotsExpectedQuantity(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ledger := core.NewLedger(pool)
	master := core.NewMasterData()
	reservations := core.NewReservationStore()
	inventory := core.NewInventoryQuery(pool, ledger, reservations)
	counts := core.NewCycleCountService(pool, ledger, master, inventory)
	ctx := context.Background()

	refType := "receipt"
	refID := 1
	if _, err := ledger.Append(ctx, pool, 1, 1, 17, core.ReasonReceipt, &refType, &refID, nil); err != nil {
		t.Fatalf("seed receipt failed: %v", err)
	}

	cw, err := counts.Open(ctx, "A-1-1", []string{"SKU-001"})
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if cw.Count.Status != core.CycleCountStatusOpen {
		t.Errorf("expected OPEN status, got %s", cw.Count.Status)
	}
	if len(cw.Lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(cw.Lines))
	}
	if cw.Lines[0].ExpectedQuantity != 17 {
		t.Errorf("expected snapshot of 17, got %d", cw.Lines[0].ExpectedQuantity)
	}
	if cw.Lines[0].CountedQuantity != nil {
		t.Errorf("expected counted_quantity to start nil, got %v", cw.Lines[0].CountedQuantity)
	}
}

func TestCycleCountService_SubmitLinePostsVarianceAndCompletes(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ledger := core.NewLedger(pool)
	master := core.NewMasterData()
	reservations := core.NewReservationStore()
	inventory := core.NewInventoryQuery(pool, ledger, reservations)
	counts := core.NewCycleCountService(pool, ledger, master, inventory)
	ctx := context.Background()

	refType := "receipt"
	refID := 1
	if _, err := ledger.Append(ctx, pool, 1, 1, 10, core.ReasonReceipt, &refType, &refID, nil); err != nil {
		t.Fatalf("seed receipt failed: %v", err)
	}

	cw, err := counts.Open(ctx, "A-1-1", []string{"SKU-001"})
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	sl, err := counts.SubmitLine(ctx, cw.Count.ID, 1, 8)
	if err != nil {
		t.Fatalf("SubmitLine failed: %v", err)
	}
	if sl.LedgerEntryID == nil {
		t.Fatal("expected an ADJUSTMENT ledger entry for a variance of -2")
	}
	if sl.Count.Status != core.CycleCountStatusCompleted {
		t.Errorf("expected the count to complete once its only line is submitted, got %s", sl.Count.Status)
	}

	onHand, err := ledger.SumDelta(ctx, pool, 1, 1)
	if err != nil {
		t.Fatalf("SumDelta failed: %v", err)
	}
	if onHand != 8 {
		t.Errorf("expected on hand 8 after the adjustment, got %d", onHand)
	}
}

func TestCycleCountService_SubmitLineSkipsLedgerWhenNoVariance(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ledger := core.NewLedger(pool)
	master := core.NewMasterData()
	reservations := core.NewReservationStore()
	inventory := core.NewInventoryQuery(pool, ledger, reservations)
	counts := core.NewCycleCountService(pool, ledger, master, inventory)
	ctx := context.Background()

	refType := "receipt"
	refID := 1
	if _, err := ledger.Append(ctx, pool, 1, 1, 10, core.ReasonReceipt, &refType, &refID, nil); err != nil {
		t.Fatalf("seed receipt failed: %v", err)
	}

	cw, err := counts.Open(ctx, "A-1-1", []string{"SKU-001"})
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	sl, err := counts.SubmitLine(ctx, cw.Count.ID, 1, 10)
	if err != nil {
		t.Fatalf("SubmitLine failed: %v", err)
	}
	if sl.LedgerEntryID != nil {
		t.Errorf("expected no ledger entry when counted quantity matches expected, got %v", *sl.LedgerEntryID)
	}
}

func TestCycleCountService_SubmitLineRejectsDoubleSubmit(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ledger := core.NewLedger(pool)
	master := core.NewMasterData()
	reservations := core.NewReservationStore()
	inventory := core.NewInventoryQuery(pool, ledger, reservations)
	counts := core.NewCycleCountService(pool, ledger, master, inventory)
	ctx := context.Background()

	refType := "receipt"
	refID := 1
	if _, err := ledger.Append(ctx, pool, 1, 1, 10, core.ReasonReceipt, &refType, &refID, nil); err != nil {
		t.Fatalf("seed receipt failed: %v", err)
	}

	cw, err := counts.Open(ctx, "A-1-1", []string{"SKU-001"})
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	if _, err := counts.SubmitLine(ctx, cw.Count.ID, 1, 10); err != nil {
		t.Fatalf("first SubmitLine failed: %v", err)
	}
	if _, err := counts.SubmitLine(ctx, cw.Count.ID, 1, 9); err == nil {
		t.Fatal("expected error submitting an already-submitted line, got nil")
	}
}

func TestCycleCountService_SubmitLineRejectsUnknownCount(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ledger := core.NewLedger(pool)
	master := core.NewMasterData()
	reservations := core.NewReservationStore()
	inventory := core.NewInventoryQuery(pool, ledger, reservations)
	counts := core.NewCycleCountService(pool, ledger, master, inventory)
	ctx := context.Background()

	if _, err := counts.SubmitLine(ctx, 999, 1, 5); err == nil {
		t.Fatal("expected error for a nonexistent cycle count, got nil")
	}
}
