package core

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TransferService moves stock between locations as a two-phase DRAFT →
// COMPLETED operation: Create validates and reserves nothing, Complete
// posts the paired ledger entries atomically.
type TransferService struct {
	pool      *pgxpool.Pool
	ledger    *Ledger
	master    *MasterData
	inventory *InventoryQuery
}

func NewTransferService(pool *pgxpool.Pool, ledger *Ledger, master *MasterData, inventory *InventoryQuery) *TransferService {
	return &TransferService{pool: pool, ledger: ledger, master: master, inventory: inventory}
}

// TransferItemRequest is one line of a transfer-creation request.
type TransferItemRequest struct {
	SKU      string
	Quantity int
}

// TransferWithLines bundles a Transfer header with its lines.
type TransferWithLines struct {
	Transfer Transfer
	Lines    []TransferLine
}

// Create validates both locations exist and differ, resolves each SKU,
// checks available stock at the source location, and inserts a DRAFT
// transfer with its lines. It does not reserve or move anything yet.
func (s *TransferService) Create(ctx context.Context, fromLocationID, toLocationID int, items []TransferItemRequest) (TransferWithLines, error) {
	if fromLocationID == toLocationID {
		return TransferWithLines{}, badRequestErr("source and destination locations must be different")
	}
	if len(items) == 0 {
		return TransferWithLines{}, badRequestErr("at least one item is required")
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return TransferWithLines{}, internalErr("failed to begin transaction", err)
	}
	defer tx.Rollback(ctx)

	if _, err := s.lockLocation(ctx, tx, fromLocationID); err != nil {
		return TransferWithLines{}, err
	}
	if _, err := s.lockLocation(ctx, tx, toLocationID); err != nil {
		return TransferWithLines{}, err
	}

	type resolved struct {
		itemID   int
		quantity int
	}
	var lines []resolved
	pairs := make([]ItemLocation, 0, len(items))
	itemIDs := make([]int, 0, len(items))

	for _, req := range items {
		if req.Quantity <= 0 {
			return TransferWithLines{}, badRequestErr("quantity must be positive for item with SKU %q", req.SKU)
		}
		item, err := s.master.FindItemBySKU(ctx, tx, req.SKU)
		if err != nil {
			return TransferWithLines{}, err
		}
		if item == nil {
			return TransferWithLines{}, notFoundErr("item with SKU %q not found", req.SKU)
		}
		lines = append(lines, resolved{itemID: item.ID, quantity: req.Quantity})
		pairs = append(pairs, ItemLocation{ItemID: item.ID, LocationID: fromLocationID})
		itemIDs = append(itemIDs, item.ID)
	}

	available, err := s.inventory.AvailableBatch(ctx, pairs)
	if err != nil {
		return TransferWithLines{}, err
	}
	for i, l := range lines {
		if available[i] < l.quantity {
			return TransferWithLines{}, badRequestErr(
				"insufficient stock for item id %d: available %d, requested %d", itemIDs[i], available[i], l.quantity)
		}
	}

	var transfer Transfer
	err = tx.QueryRow(ctx, `
		INSERT INTO transfers (from_location_id, to_location_id, status, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		RETURNING id, from_location_id, to_location_id, status, created_at, updated_at
	`, fromLocationID, toLocationID, string(TransferStatusDraft)).Scan(
		&transfer.ID, &transfer.FromLocationID, &transfer.ToLocationID, &transfer.Status, &transfer.CreatedAt, &transfer.UpdatedAt,
	)
	if err != nil {
		return TransferWithLines{}, internalErr("failed to create transfer", err)
	}

	var createdLines []TransferLine
	for _, l := range lines {
		var line TransferLine
		err := tx.QueryRow(ctx, `
			INSERT INTO transfer_lines (transfer_id, item_id, quantity)
			VALUES ($1, $2, $3)
			RETURNING id, transfer_id, item_id, quantity
		`, transfer.ID, l.itemID, l.quantity).Scan(&line.ID, &line.TransferID, &line.ItemID, &line.Quantity)
		if err != nil {
			return TransferWithLines{}, internalErr("failed to create transfer line", err)
		}
		createdLines = append(createdLines, line)
	}

	if err := tx.Commit(ctx); err != nil {
		return TransferWithLines{}, internalErr("failed to commit transfer creation", err)
	}

	return TransferWithLines{Transfer: transfer, Lines: createdLines}, nil
}

// CompletedTransfer bundles a completed Transfer with its lines and the
// (source, destination) ledger entry id pairs posted for each line.
type CompletedTransfer struct {
	Transfer      Transfer
	Lines         []TransferLine
	LedgerEntries [][2]int
}

// Complete posts a pair of ledger entries (negative at source, positive at
// destination) for every line of a DRAFT transfer and flips it to COMPLETED,
// all within one transaction.
func (s *TransferService) Complete(ctx context.Context, transferID int) (CompletedTransfer, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return CompletedTransfer{}, internalErr("failed to begin transaction", err)
	}
	defer tx.Rollback(ctx)

	var transfer Transfer
	err = tx.QueryRow(ctx, `
		SELECT id, from_location_id, to_location_id, status, created_at, updated_at
		FROM transfers WHERE id = $1 FOR UPDATE
	`, transferID).Scan(&transfer.ID, &transfer.FromLocationID, &transfer.ToLocationID, &transfer.Status, &transfer.CreatedAt, &transfer.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return CompletedTransfer{}, notFoundErr("transfer with id %d not found", transferID)
		}
		return CompletedTransfer{}, internalErr("failed to fetch transfer", err)
	}

	if transfer.Status != TransferStatusDraft {
		return CompletedTransfer{}, badRequestErr(
			"transfer with id %d is not in DRAFT status (current status: %s)", transferID, transfer.Status)
	}

	lines, err := s.fetchTransferLines(ctx, tx, transferID)
	if err != nil {
		return CompletedTransfer{}, err
	}
	if len(lines) == 0 {
		return CompletedTransfer{}, badRequestErr("transfer with id %d has no lines", transferID)
	}

	refType := "transfer"
	var ledgerPairs [][2]int
	for _, line := range lines {
		sourceOnHand, err := s.ledger.SumDelta(ctx, tx, line.ItemID, transfer.FromLocationID)
		if err != nil {
			return CompletedTransfer{}, err
		}
		sourceBalanceAfter := sourceOnHand - line.Quantity
		sourceEntryID, err := s.ledger.Append(ctx, tx, line.ItemID, transfer.FromLocationID, -line.Quantity,
			ReasonTransfer, &refType, &transfer.ID, &sourceBalanceAfter)
		if err != nil {
			return CompletedTransfer{}, err
		}

		destOnHand, err := s.ledger.SumDelta(ctx, tx, line.ItemID, transfer.ToLocationID)
		if err != nil {
			return CompletedTransfer{}, err
		}
		destBalanceAfter := destOnHand + line.Quantity
		destEntryID, err := s.ledger.Append(ctx, tx, line.ItemID, transfer.ToLocationID, line.Quantity,
			ReasonTransfer, &refType, &transfer.ID, &destBalanceAfter)
		if err != nil {
			return CompletedTransfer{}, err
		}

		ledgerPairs = append(ledgerPairs, [2]int{sourceEntryID, destEntryID})
	}

	_, err = tx.Exec(ctx, `UPDATE transfers SET status = $1, updated_at = NOW() WHERE id = $2`,
		string(TransferStatusCompleted), transferID)
	if err != nil {
		return CompletedTransfer{}, internalErr("failed to update transfer status", err)
	}
	transfer.Status = TransferStatusCompleted

	if err := tx.Commit(ctx); err != nil {
		return CompletedTransfer{}, internalErr("failed to commit transfer completion", err)
	}

	return CompletedTransfer{Transfer: transfer, Lines: lines, LedgerEntries: ledgerPairs}, nil
}

func (s *TransferService) lockLocation(ctx context.Context, q pgxQuerier, locationID int) (Location, error) {
	var loc Location
	err := q.QueryRow(ctx, `
		SELECT id, warehouse_id, code, aisle, bin, shelf, is_pickable, is_bulk
		FROM locations WHERE id = $1 FOR UPDATE
	`, locationID).Scan(&loc.ID, &loc.WarehouseID, &loc.Code, &loc.Aisle, &loc.Bin, &loc.Shelf, &loc.IsPickable, &loc.IsBulk)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Location{}, notFoundErr("location with id %d not found", locationID)
		}
		return Location{}, internalErr("failed to lock location", err)
	}
	return loc, nil
}

func (s *TransferService) fetchTransferLines(ctx context.Context, q pgxQuerier, transferID int) ([]TransferLine, error) {
	rows, err := q.Query(ctx, `
		SELECT id, transfer_id, item_id, quantity FROM transfer_lines WHERE transfer_id = $1 ORDER BY id
	`, transferID)
	if err != nil {
		return nil, internalErr("failed to fetch transfer lines", err)
	}
	defer rows.Close()

	var lines []TransferLine
	for rows.Next() {
		var l TransferLine
		if err := rows.Scan(&l.ID, &l.TransferID, &l.ItemID, &l.Quantity); err != nil {
			return nil, internalErr("failed to scan transfer line", err)
		}
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, internalErr("error iterating transfer lines", err)
	}
	return lines, nil
}
