package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// InventorySnapshotRow is one stock level of one product at one internal location,
// stamped with the business date of the run that produced it.
type InventorySnapshotRow struct {
	SnapshotDate      time.Time       `json:"snapshot_date"`
	ProductID         *string         `json:"product_id"`
	ProductName       *string         `json:"product_name"`
	ProductBarcode    *string         `json:"product_barcode"`
	LocationID        *string         `json:"location_id"`
	LocationName      *string         `json:"location_name"`
	OnHandQuantity    decimal.Decimal `json:"on_hand_quantity"`
	ReservedQuantity  decimal.Decimal `json:"reserved_quantity"`
	AvailableQuantity decimal.Decimal `json:"available_quantity"`
}

// SnapshotColumns lists the warehouse columns in the order of InventorySnapshotRow.Values.
var SnapshotColumns = []string{
	"snapshot_date",
	"product_id",
	"product_name",
	"product_barcode",
	"location_id",
	"location_name",
	"on_hand_quantity",
	"reserved_quantity",
	"available_quantity",
}

// Values returns the row as positional values matching SnapshotColumns.
func (r InventorySnapshotRow) Values() []any {
	return []any{
		r.SnapshotDate,
		r.ProductID,
		r.ProductName,
		r.ProductBarcode,
		r.LocationID,
		r.LocationName,
		r.OnHandQuantity,
		r.ReservedQuantity,
		r.AvailableQuantity,
	}
}

// SnapshotKey identifies a row within the historical table.
type SnapshotKey struct {
	SnapshotDate string
	ProductID    string
	LocationID   string
}

func (r InventorySnapshotRow) Key() SnapshotKey {
	k := SnapshotKey{SnapshotDate: FormatDate(r.SnapshotDate)}
	if r.ProductID != nil {
		k.ProductID = *r.ProductID
	}
	if r.LocationID != nil {
		k.LocationID = *r.LocationID
	}
	return k
}
