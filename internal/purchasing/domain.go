// Package purchasing manages purchase documents and their lines. Every
// line mutation recomputes the owning product's average cost and keeps one
// warehouse ledger row in step with the line, all inside one transaction.
package purchasing

import (
	"errors"
	"time"
)

var (
	ErrNotFound        = errors.New("purchasing: not found")
	ErrInvalidQuantity = errors.New("purchasing: quantity must be positive")
	ErrInvalidPrice    = errors.New("purchasing: price must not be negative")
	ErrCodeRequired    = errors.New("purchasing: document code required")
)

// Purchasing is a document header grouping lines that share a supplier and
// document code/date.
type Purchasing struct {
	ID            int64     `json:"id"`
	Code          string    `json:"code"`
	Date          time.Time `json:"date"`
	PurchaseOrder string    `json:"purchase_order"`
	SupplierID    int64     `json:"supplier_id"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Line is one purchased item. Its costing contribution is quantity*price;
// discount and the tax fields are reporting data and do not reduce the
// costing base.
type Line struct {
	ID           int64   `json:"id"`
	PurchasingID int64   `json:"purchasing_id"`
	ProductID    int64   `json:"product_id"`
	Quantity     float64 `json:"quantity"`
	Price        float64 `json:"price"`
	Discount     float64 `json:"discount"`
	PPN          float64 `json:"ppn"`
	PPH          float64 `json:"pph"`
	DPP          float64 `json:"dpp"`
	TaxNo        string  `json:"tax_no"`
	ExchangeRate float64 `json:"exchange_rate"`
}

// CreateHeaderInput carries the fields for a new document header.
type CreateHeaderInput struct {
	Code          string
	Date          time.Time
	PurchaseOrder string
	SupplierID    int64
}

// CreateLineInput carries the fields for a new line.
type CreateLineInput struct {
	PurchasingID int64
	ProductID    int64
	Quantity     float64
	Price        float64
	Discount     float64
	PPN          float64
	PPH          float64
	DPP          float64
	TaxNo        string
	ExchangeRate float64
}

// UpdateLineInput carries the updatable line fields. The product is
// intentionally absent: reassigning a line to another product is not
// supported, the ledger row is matched on the original product.
type UpdateLineInput struct {
	Quantity     float64
	Price        float64
	Discount     float64
	PPN          float64
	PPH          float64
	DPP          float64
	TaxNo        string
	ExchangeRate float64
}

func (in CreateHeaderInput) validate() error {
	if in.Code == "" {
		return ErrCodeRequired
	}
	return nil
}

func (in CreateLineInput) validate() error {
	if in.Quantity <= 0 {
		return ErrInvalidQuantity
	}
	if in.Price < 0 {
		return ErrInvalidPrice
	}
	return nil
}

func (in UpdateLineInput) validate() error {
	if in.Quantity <= 0 {
		return ErrInvalidQuantity
	}
	if in.Price < 0 {
		return ErrInvalidPrice
	}
	return nil
}
