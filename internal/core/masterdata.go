package core

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
)

// MasterData resolves and, where the workflow allows it, lazily creates the
// Item/Location/Warehouse rows that Receiving and bulk import operate over.
// It is a thin query/insert helper, not a full CRUD surface — master-data
// CRUD proper is an external collaborator, out of this core's scope.
type MasterData struct{}

func NewMasterData() *MasterData {
	return &MasterData{}
}

// FindItemBySKU returns the item with the given SKU, or nil if none exists.
func (m *MasterData) FindItemBySKU(ctx context.Context, q pgxQuerier, sku string) (*Item, error) {
	var it Item
	err := q.QueryRow(ctx, `
		SELECT id, sku, name, unit_of_measure, barcode, is_serialized
		FROM items WHERE sku = $1
	`, sku).Scan(&it.ID, &it.SKU, &it.Name, &it.UnitOfMeasure, &it.Barcode, &it.IsSerialized)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, internalErr("failed to find item by sku", err)
	}
	return &it, nil
}

// FindLocationByCode returns the location with the given code, or nil if none exists.
func (m *MasterData) FindLocationByCode(ctx context.Context, q pgxQuerier, code string) (*Location, error) {
	var loc Location
	err := q.QueryRow(ctx, `
		SELECT id, warehouse_id, code, aisle, bin, shelf, is_pickable, is_bulk
		FROM locations WHERE code = $1
	`, code).Scan(&loc.ID, &loc.WarehouseID, &loc.Code, &loc.Aisle, &loc.Bin, &loc.Shelf, &loc.IsPickable, &loc.IsBulk)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, internalErr("failed to find location by code", err)
	}
	return &loc, nil
}

// FindWarehouseByCode returns the warehouse with the given code, or nil if none exists.
func (m *MasterData) FindWarehouseByCode(ctx context.Context, q pgxQuerier, code string) (*Warehouse, error) {
	var w Warehouse
	err := q.QueryRow(ctx, `
		SELECT id, code, name, address, timezone, is_active, created_at
		FROM warehouses WHERE code = $1
	`, code).Scan(&w.ID, &w.Code, &w.Name, &w.Address, &w.Timezone, &w.IsActive, &w.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, internalErr("failed to find warehouse by code", err)
	}
	return &w, nil
}

// ItemDefaults carries the optional overrides a bulk-receipt row may supply
// for a not-yet-seen SKU. Unset fields take the defaults noted per-field.
type ItemDefaults struct {
	Name          *string // default: "Item <sku>"
	UnitOfMeasure *string // default: "EA"
	Barcode       *string // default: sku
	IsSerialized  *bool   // default: false
}

// FindOrCreateItemBySKU returns the existing item for sku, or creates one
// with the given defaults (or this function's own defaults where unset).
func (m *MasterData) FindOrCreateItemBySKU(ctx context.Context, q pgxQuerier, sku string, d ItemDefaults) (*Item, error) {
	if existing, err := m.FindItemBySKU(ctx, q, sku); err != nil {
		return nil, err
	} else if existing != nil {
		return existing, nil
	}

	name := "Item " + sku
	if d.Name != nil {
		name = *d.Name
	}
	uom := "EA"
	if d.UnitOfMeasure != nil {
		uom = *d.UnitOfMeasure
	}
	barcode := sku
	if d.Barcode != nil {
		barcode = *d.Barcode
	}
	isSerialized := false
	if d.IsSerialized != nil {
		isSerialized = *d.IsSerialized
	}

	var it Item
	it.Barcode = &barcode
	err := q.QueryRow(ctx, `
		INSERT INTO items (sku, name, unit_of_measure, barcode, is_serialized)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, sku, name, unit_of_measure, barcode, is_serialized
	`, sku, name, uom, barcode, isSerialized).Scan(&it.ID, &it.SKU, &it.Name, &it.UnitOfMeasure, &it.Barcode, &it.IsSerialized)
	if err != nil {
		return nil, internalErr("failed to create item", err)
	}
	return &it, nil
}

// LocationDefaults carries the optional overrides a bulk-receipt row may
// supply for a not-yet-seen location code. WarehouseID is required when the
// location does not already exist — it cannot be defaulted.
type LocationDefaults struct {
	WarehouseID *int
	Aisle       *string // default: "A"
	Bin         *string // default: "1"
	Shelf       *string // default: "1"
	IsPickable  *bool   // default: false
	IsBulk      *bool   // default: false
}

// FindOrCreateLocationByCode returns the existing location for code, or
// creates one from the given defaults. Returns BadRequest if the location
// doesn't exist and WarehouseID wasn't supplied.
func (m *MasterData) FindOrCreateLocationByCode(ctx context.Context, q pgxQuerier, code string, d LocationDefaults) (*Location, error) {
	if existing, err := m.FindLocationByCode(ctx, q, code); err != nil {
		return nil, err
	} else if existing != nil {
		return existing, nil
	}

	if d.WarehouseID == nil {
		return nil, badRequestErr("warehouse_id is required when creating new location with code: %s", code)
	}

	aisle := "A"
	if d.Aisle != nil {
		aisle = *d.Aisle
	}
	bin := "1"
	if d.Bin != nil {
		bin = *d.Bin
	}
	shelf := "1"
	if d.Shelf != nil {
		shelf = *d.Shelf
	}
	isPickable := false
	if d.IsPickable != nil {
		isPickable = *d.IsPickable
	}
	isBulk := false
	if d.IsBulk != nil {
		isBulk = *d.IsBulk
	}

	var loc Location
	err := q.QueryRow(ctx, `
		INSERT INTO locations (warehouse_id, code, aisle, bin, shelf, is_pickable, is_bulk)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, warehouse_id, code, aisle, bin, shelf, is_pickable, is_bulk
	`, *d.WarehouseID, code, aisle, bin, shelf, isPickable, isBulk).Scan(
		&loc.ID, &loc.WarehouseID, &loc.Code, &loc.Aisle, &loc.Bin, &loc.Shelf, &loc.IsPickable, &loc.IsBulk,
	)
	if err != nil {
		return nil, internalErr("failed to create location", err)
	}
	return &loc, nil
}
