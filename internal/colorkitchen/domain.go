// Package colorkitchen manages production consumption: dye batches with
// shared dyestuff details and per-production-order (OPJ) entries with
// auxiliary chemical details. Either detail kind keeps a paired ledger
// entry in step with it: quantity OUT at the kitchen, IN at usage, keyed
// by the owning batch's or entry's code.
package colorkitchen

import (
	"errors"
	"time"
)

var (
	ErrNotFound        = errors.New("colorkitchen: not found")
	ErrInvalidQuantity = errors.New("colorkitchen: quantity must be positive")
	ErrCodeRequired    = errors.New("colorkitchen: code required")
)

// Batch is a dye lot shared by one or more production orders.
type Batch struct {
	ID        int64     `json:"id"`
	Code      string    `json:"code"`
	Date      time.Time `json:"date"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BatchDetail records dyestuff consumed at batch level.
type BatchDetail struct {
	ID           int64   `json:"id"`
	BatchID      int64   `json:"batch_id"`
	ProductID    int64   `json:"product_id"`
	Quantity     float64 `json:"quantity"`
	UnitCostUsed float64 `json:"unit_cost_used"`
	TotalCost    float64 `json:"total_cost"`
}

// Entry is one production order (OPJ) within a batch, tied to a design.
type Entry struct {
	ID            int64     `json:"id"`
	Code          string    `json:"code"`
	Date          time.Time `json:"date"`
	Rolls         int       `json:"rolls"`
	PasteQuantity float64   `json:"paste_quantity"`
	DesignID      int64     `json:"design_id"`
	BatchID       int64     `json:"batch_id"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// EntryDetail records auxiliary chemicals consumed by one entry.
type EntryDetail struct {
	ID           int64   `json:"id"`
	EntryID      int64   `json:"entry_id"`
	ProductID    int64   `json:"product_id"`
	Quantity     float64 `json:"quantity"`
	UnitCostUsed float64 `json:"unit_cost_used"`
	TotalCost    float64 `json:"total_cost"`
}

type CreateBatchInput struct {
	Code string
	Date time.Time
}

type CreateEntryInput struct {
	Code          string
	Date          time.Time
	Rolls         int
	PasteQuantity float64
	DesignID      int64
	BatchID       int64
}

type CreateDetailInput struct {
	OwnerID   int64
	ProductID int64
	Quantity  float64
}

type UpdateDetailInput struct {
	Quantity float64
}

func (in CreateBatchInput) validate() error {
	if in.Code == "" {
		return ErrCodeRequired
	}
	return nil
}

func (in CreateEntryInput) validate() error {
	if in.Code == "" {
		return ErrCodeRequired
	}
	return nil
}

func (in CreateDetailInput) validate() error {
	if in.Quantity <= 0 {
		return ErrInvalidQuantity
	}
	return nil
}

func (in UpdateDetailInput) validate() error {
	if in.Quantity <= 0 {
		return ErrInvalidQuantity
	}
	return nil
}
