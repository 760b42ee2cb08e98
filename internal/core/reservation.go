package core

import (
	"context"
	"fmt"
)

// ReservationStore creates and releases soft-hold reservations. Reservations
// never touch the ledger — they only narrow Available via ReservationStore's
// sum queries, which InventoryQuery reads.
type ReservationStore struct{}

func NewReservationStore() *ReservationStore {
	return &ReservationStore{}
}

// pickWaveReason formats the owner key a pick wave's reservations are tagged
// with, e.g. "pick_wave:42".
func pickWaveReason(pickWaveID int) string {
	return fmt.Sprintf("pick_wave:%d", pickWaveID)
}

// Create inserts a reservation of quantity for (itemID, locationID) owned by
// the given pick wave. quantity must be positive.
func (r *ReservationStore) Create(ctx context.Context, q pgxQuerier, itemID, locationID, quantity, pickWaveID int) (Reservation, error) {
	if quantity <= 0 {
		return Reservation{}, badRequestErr("reservation quantity must be positive")
	}

	reason := pickWaveReason(pickWaveID)
	var res Reservation
	err := q.QueryRow(ctx, `
		INSERT INTO reservations (item_id, location_id, quantity, expires_at, reason, created_at)
		VALUES ($1, $2, $3, NULL, $4, NOW())
		RETURNING id, item_id, location_id, quantity, expires_at, reason, created_at
	`, itemID, locationID, quantity, reason).Scan(
		&res.ID, &res.ItemID, &res.LocationID, &res.Quantity, &res.ExpiresAt, &res.Reason, &res.CreatedAt,
	)
	if err != nil {
		return Reservation{}, internalErr("failed to create reservation", err)
	}
	return res, nil
}

// ReleaseByPickWave deletes every reservation owned by the given pick wave
// and returns how many rows were removed.
func (r *ReservationStore) ReleaseByPickWave(ctx context.Context, q pgxQuerier, pickWaveID int) (int64, error) {
	tag, err := q.Exec(ctx, `DELETE FROM reservations WHERE reason = $1`, pickWaveReason(pickWaveID))
	if err != nil {
		return 0, internalErr("failed to release reservations for pick wave", err)
	}
	return tag.RowsAffected(), nil
}

// SumActive returns the total reserved quantity for (itemID, locationID)
// across all non-expired reservations — expires_at IS NULL counts as
// never-expiring.
func (r *ReservationStore) SumActive(ctx context.Context, q pgxQuerier, itemID, locationID int) (int, error) {
	var sum int
	err := q.QueryRow(ctx, `
		SELECT COALESCE(SUM(quantity), 0)
		FROM reservations
		WHERE item_id = $1 AND location_id = $2
		  AND (expires_at IS NULL OR expires_at > NOW())
	`, itemID, locationID).Scan(&sum)
	if err != nil {
		return 0, internalErr("failed to sum active reservations", err)
	}
	return sum, nil
}

// SumByPickWave returns the total quantity reserved under a given pick wave,
// irrespective of expiry — used to audit what a wave currently holds.
func (r *ReservationStore) SumByPickWave(ctx context.Context, q pgxQuerier, pickWaveID int) (int, error) {
	var sum int
	err := q.QueryRow(ctx, `
		SELECT COALESCE(SUM(quantity), 0)
		FROM reservations
		WHERE reason = $1
	`, pickWaveReason(pickWaveID)).Scan(&sum)
	if err != nil {
		return 0, internalErr("failed to sum reservations for pick wave", err)
	}
	return sum, nil
}
