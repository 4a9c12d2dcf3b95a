// Package costing maintains the weighted-average unit cost per product.
// The cache table is recomputed from full purchase history on every
// purchasing mutation; consumption documents stamp the cached value onto
// their lines as unit_cost_used.
package costing

import (
	"errors"
	"time"
)

// ErrNoCostHistory indicates a product has no purchase history and thus
// no average cost. Consumers stamping unit_cost_used must treat this as a
// hard error for the row, never default to zero.
var ErrNoCostHistory = errors.New("costing: no cost history for product")

// CacheEntry is one row of product_avg_cost_cache.
type CacheEntry struct {
	ProductID    int64     `json:"product_id"`
	AvgCost      float64   `json:"avg_cost"`
	TotalQtyIn   float64   `json:"total_qty_in"`
	TotalValueIn float64   `json:"total_value_in"`
	LastUpdated  time.Time `json:"last_updated"`
}
