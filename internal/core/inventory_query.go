package core

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"
)

// InventoryQuery derives on-hand, reserved, and available quantities.
// Nothing in this package stores these as columns — they are always
// recomputed from the ledger and reservations tables.
type InventoryQuery struct {
	pool         *pgxpool.Pool
	ledger       *Ledger
	reservations *ReservationStore
}

func NewInventoryQuery(pool *pgxpool.Pool, ledger *Ledger, reservations *ReservationStore) *InventoryQuery {
	return &InventoryQuery{pool: pool, ledger: ledger, reservations: reservations}
}

// OnHand returns the sum of ledger quantity_change for (itemID, locationID).
func (q *InventoryQuery) OnHand(ctx context.Context, itemID, locationID int) (int, error) {
	return q.ledger.SumDelta(ctx, q.pool, itemID, locationID)
}

// Reserved returns the sum of active (non-expired) reservations for
// (itemID, locationID).
func (q *InventoryQuery) Reserved(ctx context.Context, itemID, locationID int) (int, error) {
	return q.reservations.SumActive(ctx, q.pool, itemID, locationID)
}

// Available returns OnHand minus Reserved. The result is not clamped: it can
// be negative, since TransferService.Complete and CycleCountService.SubmitLine
// post ledger entries without re-checking availability.
func (q *InventoryQuery) Available(ctx context.Context, itemID, locationID int) (int, error) {
	onHand, err := q.OnHand(ctx, itemID, locationID)
	if err != nil {
		return 0, err
	}
	reserved, err := q.Reserved(ctx, itemID, locationID)
	if err != nil {
		return 0, err
	}
	return onHand - reserved, nil
}

// ItemLocation identifies one (item, location) pair for a batch query.
type ItemLocation struct {
	ItemID     int
	LocationID int
}

// AvailableBatch computes Available for each pair concurrently, one goroutine
// per pair pulling its own pooled connection, and fails fast via the group's
// shared context on the first error. The result slice is in the same order
// as pairs. Used by TransferService.Create's line-validation loop so
// independent admission reads don't serialize behind each other.
func (q *InventoryQuery) AvailableBatch(ctx context.Context, pairs []ItemLocation) ([]int, error) {
	results := make([]int, len(pairs))
	g, gctx := errgroup.WithContext(ctx)
	for i, pair := range pairs {
		i, pair := i, pair
		g.Go(func() error {
			avail, err := q.Available(gctx, pair.ItemID, pair.LocationID)
			if err != nil {
				return err
			}
			results[i] = avail
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
