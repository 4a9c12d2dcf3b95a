// Package ledger holds the movement ledger: one row per product, location
// and originating document, carrying quantity in and quantity out. Rows are
// written only by the document services, never by handlers directly.
package ledger

import (
	"errors"
	"time"
)

// Ref identifies the document type that produced a ledger row.
type Ref string

const (
	RefPurchasing    Ref = "Purchasing"
	RefStockMovement Ref = "StockMovement"
	RefColorKitchen  Ref = "Ck"
	RefStockOpname   Ref = "StockOpname"
)

// Location is a node in the internal goods-flow graph.
type Location string

const (
	LocationGudang  Location = "Gudang"
	LocationKitchen Location = "Kitchen"
	LocationUsage   Location = "Usage"
	LocationOpname  Location = "Opname"
)

var (
	ErrInvalidRef      = errors.New("ledger: invalid ref")
	ErrInvalidLocation = errors.New("ledger: invalid location")
	ErrInvalidQuantity = errors.New("ledger: quantity must not be negative")
)

// Entry is one ledger row. For any (ref, ref_code, product, location)
// combination at most one row exists; the document services keep it in
// step with the source detail line.
type Entry struct {
	ID          int64     `json:"id"`
	Date        time.Time `json:"date"`
	Ref         Ref       `json:"ref"`
	RefCode     string    `json:"ref_code"`
	Location    Location  `json:"location"`
	QuantityIn  float64   `json:"quantity_in"`
	QuantityOut float64   `json:"quantity_out"`
	ProductID   int64     `json:"product_id"`
}

// Key identifies the detail line a ledger row mirrors.
type Key struct {
	Ref       Ref
	RefCode   string
	ProductID int64
	Location  Location
}

func (r Ref) Valid() bool {
	switch r {
	case RefPurchasing, RefStockMovement, RefColorKitchen, RefStockOpname:
		return true
	}
	return false
}

func (l Location) Valid() bool {
	switch l {
	case LocationGudang, LocationKitchen, LocationUsage, LocationOpname:
		return true
	}
	return false
}

func (e Entry) Validate() error {
	if !e.Ref.Valid() {
		return ErrInvalidRef
	}
	if !e.Location.Valid() {
		return ErrInvalidLocation
	}
	if e.QuantityIn < 0 || e.QuantityOut < 0 {
		return ErrInvalidQuantity
	}
	return nil
}
