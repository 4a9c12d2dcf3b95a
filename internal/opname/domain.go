// Package opname manages periodic stock reconciliation: the ledger-derived
// system quantity is compared against a physical count and the warehouse
// balance is trued up to the count through ledger entries.
package opname

import (
	"errors"
	"time"
)

var (
	ErrNotFound        = errors.New("opname: not found")
	ErrInvalidQuantity = errors.New("opname: physical quantity must not be negative")
	ErrCodeRequired    = errors.New("opname: code required")
)

type StockOpname struct {
	ID        int64     `json:"id"`
	Code      string    `json:"code"`
	Date      time.Time `json:"date"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Detail is one counted product. Difference is persisted at write time as
// SystemQuantity−PhysicalQuantity: positive means the books overstate
// stock, negative means they understate it.
type Detail struct {
	ID               int64   `json:"id"`
	OpnameID         int64   `json:"opname_id"`
	ProductID        int64   `json:"product_id"`
	SystemQuantity   float64 `json:"system_quantity"`
	PhysicalQuantity float64 `json:"physical_quantity"`
	Difference       float64 `json:"difference"`
}

type CreateHeaderInput struct {
	Code string
	Date time.Time
}

type CreateDetailInput struct {
	OpnameID         int64
	ProductID        int64
	PhysicalQuantity float64
}

func (in CreateHeaderInput) validate() error {
	if in.Code == "" {
		return ErrCodeRequired
	}
	return nil
}

func (in CreateDetailInput) validate() error {
	if in.PhysicalQuantity < 0 {
		return ErrInvalidQuantity
	}
	return nil
}
