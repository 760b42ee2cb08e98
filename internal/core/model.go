package core

import "time"

// Warehouse is the physical site a set of locations belongs to.
type Warehouse struct {
	ID        int       `json:"id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	Timezone  string    `json:"timezone"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// Location is a specific stocking position within a warehouse.
type Location struct {
	ID          int    `json:"id"`
	WarehouseID int    `json:"warehouse_id"`
	Code        string `json:"code"`
	Aisle       string `json:"aisle"`
	Bin         string `json:"bin"`
	Shelf       string `json:"shelf"`
	IsPickable  bool   `json:"is_pickable"`
	IsBulk      bool   `json:"is_bulk"`
}

// Item is a SKU-identified product master record.
type Item struct {
	ID            int     `json:"id"`
	SKU           string  `json:"sku"`
	Name          string  `json:"name"`
	UnitOfMeasure string  `json:"unit_of_measure"`
	Barcode       *string `json:"barcode,omitempty"`
	IsSerialized  bool    `json:"is_serialized"`
}

// ReasonType enumerates why a ledger entry was posted.
type ReasonType string

const (
	ReasonReceipt    ReasonType = "RECEIPT"
	ReasonTransfer   ReasonType = "TRANSFER"
	ReasonPick       ReasonType = "PICK"
	ReasonCount      ReasonType = "COUNT"
	ReasonAdjustment ReasonType = "ADJUSTMENT"
)

// LedgerEntry is one append-only row in the inventory ledger. The ledger is
// the sole source of truth for on-hand quantity: the QuantityChange values
// for a given (ItemID, LocationID) pair always sum to the current on-hand
// quantity. BalanceAfter is advisory only — it is never used to compute
// on-hand.
type LedgerEntry struct {
	ID             int        `json:"id"`
	ItemID         int        `json:"item_id"`
	LocationID     int        `json:"location_id"`
	QuantityChange int        `json:"quantity_change"`
	BalanceAfter   *int       `json:"balance_after,omitempty"`
	ReasonType     ReasonType `json:"reason_type"`
	ReferenceType  *string    `json:"reference_type,omitempty"`
	ReferenceID    *int       `json:"reference_id,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// Reservation soft-locks a quantity of an item at a location against a named
// owner (Reason, e.g. "pick_wave:42"). ExpiresAt is carried for forward
// compatibility with a future expiry sweeper; no current operation sets it.
type Reservation struct {
	ID         int        `json:"id"`
	ItemID     int        `json:"item_id"`
	LocationID int        `json:"location_id"`
	Quantity   int        `json:"quantity"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
	Reason     *string    `json:"reason,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// TransferStatus is the lifecycle state of a Transfer.
type TransferStatus string

const (
	TransferStatusDraft     TransferStatus = "DRAFT"
	TransferStatusInTransit TransferStatus = "IN_TRANSIT" // reserved; no operation sets this yet
	TransferStatusCompleted TransferStatus = "COMPLETED"
)

// Transfer moves stock for one or more items from one location to another.
type Transfer struct {
	ID             int            `json:"id"`
	FromLocationID int            `json:"from_location_id"`
	ToLocationID   int            `json:"to_location_id"`
	Status         TransferStatus `json:"status"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// TransferLine is one item/quantity pair within a Transfer.
type TransferLine struct {
	ID         int `json:"id"`
	TransferID int `json:"transfer_id"`
	ItemID     int `json:"item_id"`
	Quantity   int `json:"quantity"`
}

// PickWaveStatus is the lifecycle state of a PickWave.
type PickWaveStatus string

const (
	PickWaveStatusDraft     PickWaveStatus = "DRAFT"
	PickWaveStatusAllocated PickWaveStatus = "ALLOCATED"
	PickWaveStatusPicking   PickWaveStatus = "PICKING"
	PickWaveStatusCompleted PickWaveStatus = "COMPLETED"
)

// PickLineStatus is the lifecycle state of a single PickLine.
type PickLineStatus string

const (
	PickLineStatusPending   PickLineStatus = "PENDING"
	PickLineStatusConfirmed PickLineStatus = "CONFIRMED"
)

// PickWave groups the lines of a single outbound pick operation.
type PickWave struct {
	ID        int            `json:"id"`
	Status    PickWaveStatus `json:"status"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// PickLine is one item/location/quantity to pick within a PickWave.
type PickLine struct {
	ID         int            `json:"id"`
	WaveID     int            `json:"wave_id"`
	ItemID     int            `json:"item_id"`
	LocationID int            `json:"location_id"`
	Quantity   int            `json:"quantity"`
	Status     PickLineStatus `json:"status"`
}

// CycleCountStatus is the lifecycle state of a CycleCount.
type CycleCountStatus string

const (
	CycleCountStatusOpen      CycleCountStatus = "OPEN"
	CycleCountStatusCompleted CycleCountStatus = "COMPLETED"
)

// CycleCount is a location-scoped stock audit: expected quantities are
// snapshotted at open time, then reconciled against counted quantities.
type CycleCount struct {
	ID         int              `json:"id"`
	LocationID int              `json:"location_id"`
	Status     CycleCountStatus `json:"status"`
	CreatedAt  time.Time        `json:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at"`
}

// CycleCountLine carries one item's expected and (once submitted) counted
// quantity within a CycleCount.
type CycleCountLine struct {
	ID               int    `json:"id"`
	CycleCountID     int    `json:"cycle_count_id"`
	ItemID           int    `json:"item_id"`
	ExpectedQuantity int    `json:"expected_quantity"`
	CountedQuantity  *int   `json:"counted_quantity,omitempty"`
}
