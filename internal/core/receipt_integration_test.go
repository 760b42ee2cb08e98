package core_test

import (
	"context"
	"testing"

	"warehouseledger/internal/core"
)

func TestReceiptService_ReceiveSingle(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ledger := core.NewLedger(pool)
	master := core.NewMasterData()
	receipts := core.NewReceiptService(pool, ledger, master)
	ctx := context.Background()

	result, err := receipts.ReceiveSingle(ctx, "SKU-001", "A-1-1", 15)
	if err != nil {
		t.Fatalf("ReceiveSingle failed: %v", err)
	}
	if result.LedgerEntryID == 0 {
		t.Error("expected a nonzero ledger entry id")
	}

	onHand, err := ledger.SumDelta(ctx, pool, result.Item.ID, result.Location.ID)
	if err != nil {
		t.Fatalf("SumDelta failed: %v", err)
	}
	if onHand != 15 {
		t.Errorf("expected on hand 15, got %d", onHand)
	}
}

func TestReceiptService_ReceiveSingleRejectsUnknownSKU(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ledger := core.NewLedger(pool)
	master := core.NewMasterData()
	receipts := core.NewReceiptService(pool, ledger, master)
	ctx := context.Background()

	if _, err := receipts.ReceiveSingle(ctx, "NO-SUCH-SKU", "A-1-1", 5); err == nil {
		t.Fatal("expected error for unknown SKU, got nil")
	}
}

func TestReceiptService_ReceiveSingleRejectsNonPositiveQuantity(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ledger := core.NewLedger(pool)
	master := core.NewMasterData()
	receipts := core.NewReceiptService(pool, ledger, master)
	ctx := context.Background()

	if _, err := receipts.ReceiveSingle(ctx, "SKU-001", "A-1-1", 0); err == nil {
		t.Fatal("expected error for zero quantity, got nil")
	}
}

func TestReceiptService_ReceiveBulkAllOrNothing(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ledger := core.NewLedger(pool)
	master := core.NewMasterData()
	receipts := core.NewReceiptService(pool, ledger, master)
	ctx := context.Background()

	whID := 1
	rows := []core.BulkReceiptRow{
		{SKU: "SKU-001", LocationCode: "A-1-1", Quantity: 10},
		{SKU: "SKU-002", LocationCode: "NEW-LOC", Quantity: 5, LocationDefaults: core.LocationDefaults{WarehouseID: &whID}},
		{SKU: "SKU-003", LocationCode: "A-1-1", Quantity: -1}, // invalid row, should roll back the whole batch
	}

	result, err := receipts.ReceiveBulk(ctx, rows)
	if err != nil {
		t.Fatalf("ReceiveBulk returned a Go error instead of a reported row error: %v", err)
	}
	if len(result.Errors) != 1 {
		t.Fatalf("expected exactly 1 row error, got %d: %+v", len(result.Errors), result.Errors)
	}
	if result.Errors[0].Row != 3 {
		t.Errorf("expected the failing row to be reported as row 3, got %d", result.Errors[0].Row)
	}

	// Because this is all-or-nothing, the first two rows must NOT have been
	// persisted even though they were individually valid.
	item, err := master.FindItemBySKU(ctx, pool, "SKU-002")
	if err != nil {
		t.Fatalf("FindItemBySKU failed: %v", err)
	}
	if item != nil {
		t.Error("expected SKU-002 to not exist after a rolled-back bulk receipt")
	}
}

func TestReceiptService_ReceiveBulkFindOrCreatesMasterData(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ledger := core.NewLedger(pool)
	master := core.NewMasterData()
	receipts := core.NewReceiptService(pool, ledger, master)
	ctx := context.Background()

	whID := 1
	rows := []core.BulkReceiptRow{
		{SKU: "SKU-NEW", LocationCode: "A-1-1", Quantity: 8},
		{SKU: "SKU-001", LocationCode: "B-NEW", Quantity: 3, LocationDefaults: core.LocationDefaults{WarehouseID: &whID}},
	}

	result, err := receipts.ReceiveBulk(ctx, rows)
	if err != nil {
		t.Fatalf("ReceiveBulk failed: %v", err)
	}
	if len(result.Errors) != 0 {
		t.Fatalf("expected no row errors, got %+v", result.Errors)
	}
	if result.SuccessfulRows != 2 {
		t.Errorf("expected 2 successful rows, got %d", result.SuccessfulRows)
	}

	item, err := master.FindItemBySKU(ctx, pool, "SKU-NEW")
	if err != nil {
		t.Fatalf("FindItemBySKU failed: %v", err)
	}
	if item == nil {
		t.Fatal("expected SKU-NEW to have been created")
	}
	if item.Name != "Item SKU-NEW" {
		t.Errorf("expected default item name, got %q", item.Name)
	}

	loc, err := master.FindLocationByCode(ctx, pool, "B-NEW")
	if err != nil {
		t.Fatalf("FindLocationByCode failed: %v", err)
	}
	if loc == nil {
		t.Fatal("expected B-NEW to have been created")
	}
}
