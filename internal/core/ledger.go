package core

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// pgxQuerier is satisfied by both *pgxpool.Pool and pgx.Tx, letting every
// ledger/reservation/inventory read or write run either standalone or
// nested inside a caller-owned transaction.
type pgxQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Ledger appends inventory movements and is the sole write path into the
// ledger table. Nothing else in this package inserts a ledger row directly.
type Ledger struct {
	pool *pgxpool.Pool
}

func NewLedger(pool *pgxpool.Pool) *Ledger {
	return &Ledger{pool: pool}
}

// Append inserts one ledger row. delta must be nonzero. balanceAfter is
// advisory (never used to compute on-hand) and is typically
// on_hand-before + delta.
func (l *Ledger) Append(ctx context.Context, q pgxQuerier, itemID, locationID, delta int,
	reason ReasonType, referenceType *string, referenceID *int, balanceAfter *int) (int, error) {

	if delta == 0 {
		return 0, badRequestErr("ledger entry quantity_change must be nonzero")
	}

	var id int
	err := q.QueryRow(ctx, `
		INSERT INTO ledger (item_id, location_id, quantity_change, balance_after, reason_type, reference_type, reference_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		RETURNING id
	`, itemID, locationID, delta, balanceAfter, string(reason), referenceType, referenceID).Scan(&id)
	if err != nil {
		return 0, internalErr("failed to append ledger entry", err)
	}
	return id, nil
}

// SumDelta returns the sum of quantity_change for (itemID, locationID) — the
// on-hand quantity. This is never cached: every call re-sums the ledger.
func (l *Ledger) SumDelta(ctx context.Context, q pgxQuerier, itemID, locationID int) (int, error) {
	var sum int
	err := q.QueryRow(ctx, `
		SELECT COALESCE(SUM(quantity_change), 0)
		FROM ledger
		WHERE item_id = $1 AND location_id = $2
	`, itemID, locationID).Scan(&sum)
	if err != nil {
		return 0, internalErr("failed to sum ledger quantity_change", err)
	}
	return sum, nil
}

// EntriesForReference returns every ledger row posted against a given
// (referenceType, referenceID) pair, ordered by id — used by audit/reporting
// callers that need to see everything one workflow run posted.
func (l *Ledger) EntriesForReference(ctx context.Context, referenceType string, referenceID int) ([]LedgerEntry, error) {
	rows, err := l.pool.Query(ctx, `
		SELECT id, item_id, location_id, quantity_change, balance_after, reason_type, reference_type, reference_id, created_at
		FROM ledger
		WHERE reference_type = $1 AND reference_id = $2
		ORDER BY id
	`, referenceType, referenceID)
	if err != nil {
		return nil, internalErr("failed to query ledger entries by reference", err)
	}
	defer rows.Close()

	var entries []LedgerEntry
	for rows.Next() {
		var e LedgerEntry
		if err := rows.Scan(&e.ID, &e.ItemID, &e.LocationID, &e.QuantityChange, &e.BalanceAfter,
			&e.ReasonType, &e.ReferenceType, &e.ReferenceID, &e.CreatedAt); err != nil {
			return nil, internalErr("failed to scan ledger entry", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, internalErr("error iterating ledger entries", err)
	}
	return entries, nil
}

// foldHash reproduces the 32-bit wrapping fold hash used to derive an integer
// reference_id from a UUID string: h = h*31 + byte, with int32 wraparound.
// Go's fixed-width integer arithmetic wraps the same way Rust's
// wrapping_mul/wrapping_add do, so this is a direct port.
func foldHash(s string) int32 {
	var h int32
	for i := 0; i < len(s); i++ {
		h = h*31 + int32(s[i])
	}
	return h
}
