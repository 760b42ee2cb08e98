package core

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PickService runs the three-phase outbound pick workflow: Create (DRAFT,
// validates availability but reserves nothing), Allocate (DRAFT→ALLOCATED,
// creates reservations), Confirm (ALLOCATED→COMPLETED, posts PICK ledger
// entries and releases the reservations).
type PickService struct {
	pool         *pgxpool.Pool
	ledger       *Ledger
	master       *MasterData
	inventory    *InventoryQuery
	reservations *ReservationStore
}

func NewPickService(pool *pgxpool.Pool, ledger *Ledger, master *MasterData, inventory *InventoryQuery, reservations *ReservationStore) *PickService {
	return &PickService{pool: pool, ledger: ledger, master: master, inventory: inventory, reservations: reservations}
}

// PickItemRequest is one line of a pick-wave creation request.
type PickItemRequest struct {
	SKU          string
	Quantity     int
	LocationCode string
}

// PickWaveWithLines bundles a PickWave header with its lines.
type PickWaveWithLines struct {
	Wave  PickWave
	Lines []PickLine
}

// Create validates each requested item/location pair and its available
// stock, then inserts a DRAFT pick wave with PENDING lines. No reservation
// is made yet.
func (s *PickService) Create(ctx context.Context, items []PickItemRequest) (PickWaveWithLines, error) {
	if len(items) == 0 {
		return PickWaveWithLines{}, badRequestErr("at least one item is required")
	}

	type resolved struct {
		itemID     int
		locationID int
		quantity   int
	}
	var lines []resolved

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return PickWaveWithLines{}, internalErr("failed to begin transaction", err)
	}
	defer tx.Rollback(ctx)

	for _, req := range items {
		if req.Quantity <= 0 {
			return PickWaveWithLines{}, badRequestErr("quantity must be positive for item with SKU %q", req.SKU)
		}

		item, err := s.master.FindItemBySKU(ctx, tx, req.SKU)
		if err != nil {
			return PickWaveWithLines{}, err
		}
		if item == nil {
			return PickWaveWithLines{}, notFoundErr("item with SKU %q not found", req.SKU)
		}

		loc, err := s.master.FindLocationByCode(ctx, tx, req.LocationCode)
		if err != nil {
			return PickWaveWithLines{}, err
		}
		if loc == nil {
			return PickWaveWithLines{}, notFoundErr("location with code %q not found", req.LocationCode)
		}

		available, err := s.inventory.Available(ctx, item.ID, loc.ID)
		if err != nil {
			return PickWaveWithLines{}, err
		}
		if available < req.Quantity {
			return PickWaveWithLines{}, badRequestErr(
				"insufficient stock for item %q (SKU: %s). available: %d, requested: %d",
				item.Name, req.SKU, available, req.Quantity)
		}

		lines = append(lines, resolved{itemID: item.ID, locationID: loc.ID, quantity: req.Quantity})
	}

	var wave PickWave
	err = tx.QueryRow(ctx, `
		INSERT INTO pick_waves (status, created_at, updated_at)
		VALUES ($1, NOW(), NOW())
		RETURNING id, status, created_at, updated_at
	`, string(PickWaveStatusDraft)).Scan(&wave.ID, &wave.Status, &wave.CreatedAt, &wave.UpdatedAt)
	if err != nil {
		return PickWaveWithLines{}, internalErr("failed to create pick wave", err)
	}

	var createdLines []PickLine
	for _, l := range lines {
		var line PickLine
		err := tx.QueryRow(ctx, `
			INSERT INTO pick_lines (wave_id, item_id, location_id, quantity, status)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id, wave_id, item_id, location_id, quantity, status
		`, wave.ID, l.itemID, l.locationID, l.quantity, string(PickLineStatusPending)).Scan(
			&line.ID, &line.WaveID, &line.ItemID, &line.LocationID, &line.Quantity, &line.Status,
		)
		if err != nil {
			return PickWaveWithLines{}, internalErr("failed to create pick line", err)
		}
		createdLines = append(createdLines, line)
	}

	if err := tx.Commit(ctx); err != nil {
		return PickWaveWithLines{}, internalErr("failed to commit pick wave creation", err)
	}

	return PickWaveWithLines{Wave: wave, Lines: createdLines}, nil
}

// AllocatedPickWave bundles an ALLOCATED PickWave with its lines and the
// reservations created for it.
type AllocatedPickWave struct {
	Wave         PickWave
	Lines        []PickLine
	Reservations []Reservation
}

// Allocate re-checks availability for every line of a DRAFT pick wave and
// creates a reservation per line, then flips the wave to ALLOCATED.
func (s *PickService) Allocate(ctx context.Context, pickWaveID int) (AllocatedPickWave, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return AllocatedPickWave{}, internalErr("failed to begin transaction", err)
	}
	defer tx.Rollback(ctx)

	wave, err := s.lockWave(ctx, tx, pickWaveID)
	if err != nil {
		return AllocatedPickWave{}, err
	}
	if wave.Status != PickWaveStatusDraft {
		return AllocatedPickWave{}, badRequestErr(
			"pick wave with id %d is not in DRAFT status (current status: %s)", pickWaveID, wave.Status)
	}

	lines, err := s.fetchLines(ctx, tx, pickWaveID)
	if err != nil {
		return AllocatedPickWave{}, err
	}
	if len(lines) == 0 {
		return AllocatedPickWave{}, badRequestErr("pick wave with id %d has no lines", pickWaveID)
	}

	var reservations []Reservation
	for _, line := range lines {
		available, err := s.inventory.Available(ctx, line.ItemID, line.LocationID)
		if err != nil {
			return AllocatedPickWave{}, err
		}
		if available < line.Quantity {
			return AllocatedPickWave{}, badRequestErr(
				"insufficient stock for pick line %d (item_id: %d, location_id: %d). available: %d, requested: %d",
				line.ID, line.ItemID, line.LocationID, available, line.Quantity)
		}

		res, err := s.reservations.Create(ctx, tx, line.ItemID, line.LocationID, line.Quantity, pickWaveID)
		if err != nil {
			return AllocatedPickWave{}, err
		}
		reservations = append(reservations, res)
	}

	_, err = tx.Exec(ctx, `UPDATE pick_waves SET status = $1, updated_at = NOW() WHERE id = $2`,
		string(PickWaveStatusAllocated), pickWaveID)
	if err != nil {
		return AllocatedPickWave{}, internalErr("failed to update pick wave status", err)
	}
	wave.Status = PickWaveStatusAllocated

	if err := tx.Commit(ctx); err != nil {
		return AllocatedPickWave{}, internalErr("failed to commit pick wave allocation", err)
	}

	return AllocatedPickWave{Wave: wave, Lines: lines, Reservations: reservations}, nil
}

// ConfirmedPick bundles a confirmed PickWave with its lines and the ids of
// the PICK ledger entries posted.
type ConfirmedPick struct {
	Wave          PickWave
	Lines         []PickLine
	LedgerEntries []int
}

// Confirm posts one negative PICK ledger entry per line of an ALLOCATED pick
// wave, releases every reservation the wave holds, marks each line
// CONFIRMED, and flips the wave to COMPLETED once every line is confirmed.
func (s *PickService) Confirm(ctx context.Context, pickWaveID int) (ConfirmedPick, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return ConfirmedPick{}, internalErr("failed to begin transaction", err)
	}
	defer tx.Rollback(ctx)

	wave, err := s.lockWave(ctx, tx, pickWaveID)
	if err != nil {
		return ConfirmedPick{}, err
	}
	if wave.Status != PickWaveStatusAllocated {
		return ConfirmedPick{}, badRequestErr(
			"pick wave with id %d is not in ALLOCATED status (current status: %s)", pickWaveID, wave.Status)
	}

	lines, err := s.fetchLines(ctx, tx, pickWaveID)
	if err != nil {
		return ConfirmedPick{}, err
	}
	if len(lines) == 0 {
		return ConfirmedPick{}, badRequestErr("pick wave with id %d has no lines", pickWaveID)
	}

	refType := "pick_wave"
	var ledgerEntries []int
	var updatedLines []PickLine
	for _, line := range lines {
		onHand, err := s.ledger.SumDelta(ctx, tx, line.ItemID, line.LocationID)
		if err != nil {
			return ConfirmedPick{}, err
		}
		balanceAfter := onHand - line.Quantity

		entryID, err := s.ledger.Append(ctx, tx, line.ItemID, line.LocationID, -line.Quantity,
			ReasonPick, &refType, &wave.ID, &balanceAfter)
		if err != nil {
			return ConfirmedPick{}, err
		}
		ledgerEntries = append(ledgerEntries, entryID)

		_, err = tx.Exec(ctx, `UPDATE pick_lines SET status = $1 WHERE id = $2`, string(PickLineStatusConfirmed), line.ID)
		if err != nil {
			return ConfirmedPick{}, internalErr("failed to update pick line status", err)
		}
		line.Status = PickLineStatusConfirmed
		updatedLines = append(updatedLines, line)
	}

	if _, err := s.reservations.ReleaseByPickWave(ctx, tx, pickWaveID); err != nil {
		return ConfirmedPick{}, err
	}

	allConfirmed := true
	for _, l := range updatedLines {
		if l.Status != PickLineStatusConfirmed {
			allConfirmed = false
			break
		}
	}
	newStatus := PickWaveStatusPicking
	if allConfirmed {
		newStatus = PickWaveStatusCompleted
	}

	_, err = tx.Exec(ctx, `UPDATE pick_waves SET status = $1, updated_at = NOW() WHERE id = $2`, string(newStatus), pickWaveID)
	if err != nil {
		return ConfirmedPick{}, internalErr("failed to update pick wave status", err)
	}
	wave.Status = newStatus

	if err := tx.Commit(ctx); err != nil {
		return ConfirmedPick{}, internalErr("failed to commit pick confirmation", err)
	}

	return ConfirmedPick{Wave: wave, Lines: updatedLines, LedgerEntries: ledgerEntries}, nil
}

func (s *PickService) lockWave(ctx context.Context, q pgxQuerier, pickWaveID int) (PickWave, error) {
	var wave PickWave
	err := q.QueryRow(ctx, `
		SELECT id, status, created_at, updated_at FROM pick_waves WHERE id = $1 FOR UPDATE
	`, pickWaveID).Scan(&wave.ID, &wave.Status, &wave.CreatedAt, &wave.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return PickWave{}, notFoundErr("pick wave with id %d not found", pickWaveID)
		}
		return PickWave{}, internalErr("failed to fetch pick wave", err)
	}
	return wave, nil
}

func (s *PickService) fetchLines(ctx context.Context, q pgxQuerier, pickWaveID int) ([]PickLine, error) {
	rows, err := q.Query(ctx, `
		SELECT id, wave_id, item_id, location_id, quantity, status FROM pick_lines WHERE wave_id = $1 ORDER BY id
	`, pickWaveID)
	if err != nil {
		return nil, internalErr("failed to fetch pick lines", err)
	}
	defer rows.Close()

	var lines []PickLine
	for rows.Next() {
		var l PickLine
		if err := rows.Scan(&l.ID, &l.WaveID, &l.ItemID, &l.LocationID, &l.Quantity, &l.Status); err != nil {
			return nil, internalErr("failed to scan pick line", err)
		}
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, internalErr("error iterating pick lines", err)
	}
	return lines, nil
}
