package costing

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/chromatex/dyehouse/internal/platform/db"
)

// Engine recomputes and reads the cost cache. It takes a db.DBTX so the
// document services can run it inside the same transaction as the
// document and ledger writes.
type Engine struct {
	db db.DBTX
}

func NewEngine(dbtx db.DBTX) *Engine {
	return &Engine{db: dbtx}
}

// RecomputeForProducts rebuilds the cache rows for the given products from
// their full purchasing history. A full scan per call is deliberate: it
// stays correct under any sequence of inserts, updates and deletes without
// incremental bookkeeping. Empty input is a no-op.
func (e *Engine) RecomputeForProducts(ctx context.Context, productIDs []int64) error {
	if len(productIDs) == 0 {
		return nil
	}
	_, err := e.db.Exec(ctx, `
		INSERT INTO product_avg_cost_cache (product_id, total_qty_in, total_value_in, avg_cost, last_updated)
		SELECT p.id,
		       COALESCE(SUM(pl.quantity), 0),
		       COALESCE(SUM(pl.quantity * pl.price), 0),
		       CASE WHEN COALESCE(SUM(pl.quantity), 0) = 0 THEN 0
		            ELSE ROUND(SUM(pl.quantity * pl.price) / SUM(pl.quantity), 2)
		       END,
		       NOW()
		FROM products p
		LEFT JOIN purchasing_lines pl ON pl.product_id = p.id
		WHERE p.id = ANY($1)
		GROUP BY p.id
		ON CONFLICT (product_id) DO UPDATE SET
			total_qty_in   = EXCLUDED.total_qty_in,
			total_value_in = EXCLUDED.total_value_in,
			avg_cost       = EXCLUDED.avg_cost,
			last_updated   = EXCLUDED.last_updated`,
		productIDs)
	if err != nil {
		return fmt.Errorf("costing: recompute: %w", err)
	}
	return nil
}

// AvgCostForProduct reads the cache row for a product. Returns
// ErrNoCostHistory when no row exists yet.
func (e *Engine) AvgCostForProduct(ctx context.Context, productID int64) (CacheEntry, error) {
	var entry CacheEntry
	err := e.db.QueryRow(ctx, `
		SELECT product_id, avg_cost, total_qty_in, total_value_in, last_updated
		FROM product_avg_cost_cache
		WHERE product_id = $1`,
		productID).Scan(&entry.ProductID, &entry.AvgCost, &entry.TotalQtyIn, &entry.TotalValueIn, &entry.LastUpdated)
	if errors.Is(err, pgx.ErrNoRows) {
		return CacheEntry{}, ErrNoCostHistory
	}
	if err != nil {
		return CacheEntry{}, fmt.Errorf("costing: read cache: %w", err)
	}
	return entry, nil
}

// RefreshView rebuilds the product_avg_cost materialized view. Expensive
// and blocking; invoked after bulk imports and by the worker task, never
// per document mutation.
func (e *Engine) RefreshView(ctx context.Context) error {
	if _, err := e.db.Exec(ctx, `REFRESH MATERIALIZED VIEW product_avg_cost`); err != nil {
		return fmt.Errorf("costing: refresh view: %w", err)
	}
	return nil
}
