package core

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ReceiptService records incoming stock against an item/location, in single
// or bulk (all-or-nothing) form.
type ReceiptService struct {
	pool   *pgxpool.Pool
	ledger *Ledger
	master *MasterData
}

func NewReceiptService(pool *pgxpool.Pool, ledger *Ledger, master *MasterData) *ReceiptService {
	return &ReceiptService{pool: pool, ledger: ledger, master: master}
}

// ReceivedLedgerEntry is what one receipt line produces.
type ReceivedLedgerEntry struct {
	LedgerEntryID int
	Item          Item
	Location      Location
}

// ReceiveSingle resolves item (by SKU) and location (by code) — both must
// already exist — and posts one RECEIPT ledger entry for quantity, tagged
// with a fold-hashed reference_id derived from a fresh receipt UUID.
func (s *ReceiptService) ReceiveSingle(ctx context.Context, sku, locationCode string, quantity int) (ReceivedLedgerEntry, error) {
	if quantity <= 0 {
		return ReceivedLedgerEntry{}, badRequestErr("quantity must be positive for receipts")
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return ReceivedLedgerEntry{}, internalErr("failed to begin transaction", err)
	}
	defer tx.Rollback(ctx)

	item, err := s.master.FindItemBySKU(ctx, tx, sku)
	if err != nil {
		return ReceivedLedgerEntry{}, err
	}
	if item == nil {
		return ReceivedLedgerEntry{}, notFoundErr("item with SKU %q not found", sku)
	}

	loc, err := s.master.FindLocationByCode(ctx, tx, locationCode)
	if err != nil {
		return ReceivedLedgerEntry{}, err
	}
	if loc == nil {
		return ReceivedLedgerEntry{}, notFoundErr("location with code %q not found", locationCode)
	}

	receiptID := uuid.New().String()
	entryID, err := s.postReceiptEntry(ctx, tx, item.ID, loc.ID, quantity, receiptID)
	if err != nil {
		return ReceivedLedgerEntry{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return ReceivedLedgerEntry{}, internalErr("failed to commit receipt", err)
	}

	return ReceivedLedgerEntry{LedgerEntryID: entryID, Item: *item, Location: *loc}, nil
}

// postReceiptEntry computes balance_after from the current on-hand quantity
// and appends one RECEIPT ledger row referencing the receipt UUID's fold hash.
func (s *ReceiptService) postReceiptEntry(ctx context.Context, q pgxQuerier, itemID, locationID, quantity int, receiptID string) (int, error) {
	if quantity <= 0 {
		return 0, badRequestErr("quantity must be positive for receipts")
	}

	onHand, err := s.ledger.SumDelta(ctx, q, itemID, locationID)
	if err != nil {
		return 0, err
	}
	balanceAfter := onHand + quantity

	refType := "receipt"
	refID := int(foldHash(receiptID))
	return s.ledger.Append(ctx, q, itemID, locationID, quantity, ReasonReceipt, &refType, &refID, &balanceAfter)
}

// BulkReceiptRow is one row of a bulk receipt batch. SKU and LocationCode are
// required; the rest are only consulted when find-or-create needs to create
// a new item or location.
type BulkReceiptRow struct {
	SKU          string
	LocationCode string
	Quantity     int

	ItemDefaults     ItemDefaults
	LocationDefaults LocationDefaults
}

// BulkReceiptRowError records why one row of a bulk batch failed. Row is 1-indexed.
type BulkReceiptRowError struct {
	Row   int
	Error string
}

// BulkReceiptResult reports the outcome of a bulk receipt run. A non-empty
// Errors means the whole batch was rolled back — this is all-or-nothing.
type BulkReceiptResult struct {
	ReceiptID      string
	TotalRows      int
	SuccessfulRows int
	Errors         []BulkReceiptRowError
}

// ReceiveBulk processes every row under one receipt UUID shared by the whole
// batch, using find-or-create semantics for items and locations. If any row
// fails, the entire transaction is rolled back and the result reports every
// row error with successfulRows frozen at the count reached before rollback
// — the caller sees what *would* have succeeded, but nothing was persisted.
func (s *ReceiptService) ReceiveBulk(ctx context.Context, rows []BulkReceiptRow) (BulkReceiptResult, error) {
	receiptID := uuid.New().String()
	result := BulkReceiptResult{ReceiptID: receiptID, TotalRows: len(rows)}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return result, internalErr("failed to begin transaction", err)
	}
	defer tx.Rollback(ctx)

	for i, row := range rows {
		rowNum := i + 1

		if row.Quantity <= 0 {
			result.Errors = append(result.Errors, BulkReceiptRowError{Row: rowNum, Error: "quantity must be positive"})
			continue
		}

		item, err := s.master.FindOrCreateItemBySKU(ctx, tx, row.SKU, row.ItemDefaults)
		if err != nil {
			result.Errors = append(result.Errors, BulkReceiptRowError{Row: rowNum, Error: fmt.Sprintf("failed to find/create item: %v", err)})
			continue
		}

		loc, err := s.master.FindOrCreateLocationByCode(ctx, tx, row.LocationCode, row.LocationDefaults)
		if err != nil {
			result.Errors = append(result.Errors, BulkReceiptRowError{Row: rowNum, Error: fmt.Sprintf("failed to find/create location: %v", err)})
			continue
		}

		if _, err := s.postReceiptEntry(ctx, tx, item.ID, loc.ID, row.Quantity, receiptID); err != nil {
			result.Errors = append(result.Errors, BulkReceiptRowError{Row: rowNum, Error: fmt.Sprintf("failed to create ledger entry: %v", err)})
			continue
		}

		result.SuccessfulRows++
	}

	if len(result.Errors) > 0 {
		return result, nil
	}

	if err := tx.Commit(ctx); err != nil {
		return result, internalErr("failed to commit bulk receipt", err)
	}
	return result, nil
}
