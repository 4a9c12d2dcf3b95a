// Package movement manages stock movement documents: transfers of product
// quantity from the warehouse to the kitchen. Each line snapshots the
// product's average cost at creation time as unit_cost_used and keeps a
// paired ledger entry (warehouse OUT, kitchen IN) in step with it.
package movement

import (
	"errors"
	"time"
)

var (
	ErrNotFound        = errors.New("movement: not found")
	ErrInvalidQuantity = errors.New("movement: quantity must be positive")
	ErrCodeRequired    = errors.New("movement: document code required")
)

type StockMovement struct {
	ID          int64     `json:"id"`
	Code        string    `json:"code"`
	Date        time.Time `json:"date"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Line carries the moved quantity plus the cost snapshot. TotalCost is
// computed and persisted at write time as Quantity*UnitCostUsed; the cost
// never changes after creation, only the quantity can.
type Line struct {
	ID              int64   `json:"id"`
	StockMovementID int64   `json:"stock_movement_id"`
	ProductID       int64   `json:"product_id"`
	Quantity        float64 `json:"quantity"`
	UnitCostUsed    float64 `json:"unit_cost_used"`
	TotalCost       float64 `json:"total_cost"`
}

type CreateHeaderInput struct {
	Code        string
	Date        time.Time
	Description string
}

type CreateLineInput struct {
	StockMovementID int64
	ProductID       int64
	Quantity        float64
}

type UpdateLineInput struct {
	Quantity float64
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
	return nil
}

func (in UpdateLineInput) validate() error {
	if in.Quantity <= 0 {
		return ErrInvalidQuantity
	}
	return nil
}
