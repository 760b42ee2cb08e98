package core

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CycleCountService reconciles expected vs. counted quantity for a set of
// items at one location, posting an ADJUSTMENT ledger entry only where the
// two differ.
type CycleCountService struct {
	pool      *pgxpool.Pool
	ledger    *Ledger
	master    *MasterData
	inventory *InventoryQuery
}

func NewCycleCountService(pool *pgxpool.Pool, ledger *Ledger, master *MasterData, inventory *InventoryQuery) *CycleCountService {
	return &CycleCountService{pool: pool, ledger: ledger, master: master, inventory: inventory}
}

// CycleCountWithLines bundles a CycleCount header with its lines.
type CycleCountWithLines struct {
	Count CycleCount
	Lines []CycleCountLine
}

// Open snapshots the current on-hand quantity for each SKU at locationCode
// and inserts an OPEN cycle count with one line per item.
func (s *CycleCountService) Open(ctx context.Context, locationCode string, skus []string) (CycleCountWithLines, error) {
	if len(skus) == 0 {
		return CycleCountWithLines{}, badRequestErr("at least one item is required")
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return CycleCountWithLines{}, internalErr("failed to begin transaction", err)
	}
	defer tx.Rollback(ctx)

	loc, err := s.master.FindLocationByCode(ctx, tx, locationCode)
	if err != nil {
		return CycleCountWithLines{}, err
	}
	if loc == nil {
		return CycleCountWithLines{}, notFoundErr("location with code %q not found", locationCode)
	}

	type resolved struct {
		itemID   int
		expected int
	}
	var lines []resolved
	for _, sku := range skus {
		item, err := s.master.FindItemBySKU(ctx, tx, sku)
		if err != nil {
			return CycleCountWithLines{}, err
		}
		if item == nil {
			return CycleCountWithLines{}, notFoundErr("item with SKU %q not found", sku)
		}
		expected, err := s.ledger.SumDelta(ctx, tx, item.ID, loc.ID)
		if err != nil {
			return CycleCountWithLines{}, err
		}
		lines = append(lines, resolved{itemID: item.ID, expected: expected})
	}

	var count CycleCount
	err = tx.QueryRow(ctx, `
		INSERT INTO cycle_counts (location_id, status, created_at, updated_at)
		VALUES ($1, $2, NOW(), NOW())
		RETURNING id, location_id, status, created_at, updated_at
	`, loc.ID, string(CycleCountStatusOpen)).Scan(&count.ID, &count.LocationID, &count.Status, &count.CreatedAt, &count.UpdatedAt)
	if err != nil {
		return CycleCountWithLines{}, internalErr("failed to create cycle count", err)
	}

	var createdLines []CycleCountLine
	for _, l := range lines {
		var line CycleCountLine
		err := tx.QueryRow(ctx, `
			INSERT INTO cycle_count_lines (cycle_count_id, item_id, expected_quantity, counted_quantity)
			VALUES ($1, $2, $3, NULL)
			RETURNING id, cycle_count_id, item_id, expected_quantity, counted_quantity
		`, count.ID, l.itemID, l.expected).Scan(&line.ID, &line.CycleCountID, &line.ItemID, &line.ExpectedQuantity, &line.CountedQuantity)
		if err != nil {
			return CycleCountWithLines{}, internalErr("failed to create cycle count line", err)
		}
		createdLines = append(createdLines, line)
	}

	if err := tx.Commit(ctx); err != nil {
		return CycleCountWithLines{}, internalErr("failed to commit cycle count creation", err)
	}

	return CycleCountWithLines{Count: count, Lines: createdLines}, nil
}

// SubmittedLine reports the outcome of submitting one cycle count line: the
// updated line and, if a variance was posted, the ledger entry id.
type SubmittedLine struct {
	Count         CycleCount
	Line          CycleCountLine
	LedgerEntryID *int
}

// SubmitLine records countedQuantity for one not-yet-submitted line of an
// OPEN cycle count. If countedQuantity differs from the line's expected
// quantity, one ADJUSTMENT ledger entry is posted; otherwise no ledger row
// is written. Once every line of the count has a recorded counted
// quantity, the count flips OPEN→COMPLETED.
func (s *CycleCountService) SubmitLine(ctx context.Context, cycleCountID, itemID, countedQuantity int) (SubmittedLine, error) {
	if countedQuantity < 0 {
		return SubmittedLine{}, badRequestErr("counted quantity must not be negative")
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return SubmittedLine{}, internalErr("failed to begin transaction", err)
	}
	defer tx.Rollback(ctx)

	var count CycleCount
	err = tx.QueryRow(ctx, `
		SELECT id, location_id, status, created_at, updated_at FROM cycle_counts WHERE id = $1 FOR UPDATE
	`, cycleCountID).Scan(&count.ID, &count.LocationID, &count.Status, &count.CreatedAt, &count.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return SubmittedLine{}, notFoundErr("cycle count with id %d not found", cycleCountID)
		}
		return SubmittedLine{}, internalErr("failed to fetch cycle count", err)
	}
	if count.Status != CycleCountStatusOpen {
		return SubmittedLine{}, badRequestErr(
			"cycle count with id %d is not in OPEN status (current status: %s)", cycleCountID, count.Status)
	}

	var line CycleCountLine
	err = tx.QueryRow(ctx, `
		SELECT id, cycle_count_id, item_id, expected_quantity, counted_quantity
		FROM cycle_count_lines WHERE cycle_count_id = $1 AND item_id = $2 FOR UPDATE
	`, cycleCountID, itemID).Scan(&line.ID, &line.CycleCountID, &line.ItemID, &line.ExpectedQuantity, &line.CountedQuantity)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return SubmittedLine{}, notFoundErr("cycle count line for item id %d not found in count %d", itemID, cycleCountID)
		}
		return SubmittedLine{}, internalErr("failed to fetch cycle count line", err)
	}
	if line.CountedQuantity != nil {
		return SubmittedLine{}, badRequestErr("cycle count line for item id %d has already been submitted", itemID)
	}

	var ledgerEntryID *int
	delta := countedQuantity - line.ExpectedQuantity
	if delta != 0 {
		refType := "cycle_count"
		balanceAfter := countedQuantity
		id, err := s.ledger.Append(ctx, tx, line.ItemID, count.LocationID, delta, ReasonAdjustment, &refType, &count.ID, &balanceAfter)
		if err != nil {
			return SubmittedLine{}, err
		}
		ledgerEntryID = &id
	}

	_, err = tx.Exec(ctx, `UPDATE cycle_count_lines SET counted_quantity = $1 WHERE id = $2`, countedQuantity, line.ID)
	if err != nil {
		return SubmittedLine{}, internalErr("failed to update cycle count line", err)
	}
	line.CountedQuantity = &countedQuantity

	var remaining int
	err = tx.QueryRow(ctx, `
		SELECT COUNT(*) FROM cycle_count_lines WHERE cycle_count_id = $1 AND counted_quantity IS NULL
	`, cycleCountID).Scan(&remaining)
	if err != nil {
		return SubmittedLine{}, internalErr("failed to check remaining cycle count lines", err)
	}
	if remaining == 0 {
		_, err = tx.Exec(ctx, `UPDATE cycle_counts SET status = $1, updated_at = NOW() WHERE id = $2`,
			string(CycleCountStatusCompleted), cycleCountID)
		if err != nil {
			return SubmittedLine{}, internalErr("failed to complete cycle count", err)
		}
		count.Status = CycleCountStatusCompleted
	}

	if err := tx.Commit(ctx); err != nil {
		return SubmittedLine{}, internalErr("failed to commit cycle count line submission", err)
	}

	return SubmittedLine{Count: count, Line: line, LedgerEntryID: ledgerEntryID}, nil
}
