package importer

import (
	"context"

	"github.com/chromatex/dyehouse/internal/colorkitchen"
	"github.com/chromatex/dyehouse/internal/costing"
	"github.com/chromatex/dyehouse/internal/masterdata/designs"
	"github.com/chromatex/dyehouse/internal/masterdata/products"
	"github.com/chromatex/dyehouse/internal/masterdata/suppliers"
	"github.com/chromatex/dyehouse/internal/movement"
	"github.com/chromatex/dyehouse/internal/opname"
	"github.com/chromatex/dyehouse/internal/purchasing"
)

// Reference lookups. The masterdata services satisfy these; lookups
// normalize names/codes the same way the masterdata write path does.
type ProductDirectory interface {
	GetByName(ctx context.Context, name string) (products.Product, error)
}

type SupplierDirectory interface {
	GetByCode(ctx context.Context, code string) (suppliers.Supplier, error)
}

type DesignDirectory interface {
	GetByCode(ctx context.Context, code string) (designs.Design, error)
}

// Document write surfaces, satisfied by the respective services.
type PurchasingWriter interface {
	GetHeaderByCode(ctx context.Context, code string) (purchasing.Purchasing, error)
	CreateHeader(ctx context.Context, in purchasing.CreateHeaderInput) (purchasing.Purchasing, error)
	CreateLine(ctx context.Context, in purchasing.CreateLineInput, policy costing.UpdatePolicy) (purchasing.Line, error)
	RecomputeProducts(ctx context.Context, productIDs []int64) error
}

type MovementWriter interface {
	GetHeaderByCode(ctx context.Context, code string) (movement.StockMovement, error)
	CreateHeader(ctx context.Context, in movement.CreateHeaderInput) (movement.StockMovement, error)
	CreateLine(ctx context.Context, in movement.CreateLineInput) (movement.Line, error)
}

type ColorKitchenWriter interface {
	GetBatchByCode(ctx context.Context, code string) (colorkitchen.Batch, error)
	CreateBatch(ctx context.Context, in colorkitchen.CreateBatchInput) (colorkitchen.Batch, error)
	GetEntryByCode(ctx context.Context, code string) (colorkitchen.Entry, error)
	CreateEntry(ctx context.Context, in colorkitchen.CreateEntryInput) (colorkitchen.Entry, error)
	CreateBatchDetail(ctx context.Context, in colorkitchen.CreateDetailInput) (colorkitchen.BatchDetail, error)
	CreateEntryDetail(ctx context.Context, in colorkitchen.CreateDetailInput) (colorkitchen.EntryDetail, error)
}

type OpnameWriter interface {
	GetHeaderByCode(ctx context.Context, code string) (opname.StockOpname, error)
	CreateHeader(ctx context.Context, in opname.CreateHeaderInput) (opname.StockOpname, error)
	CreateDetail(ctx context.Context, in opname.CreateDetailInput) (opname.Detail, error)
}

// ViewRefreshQueue enqueues the materialized view rebuild after a bulk
// load. *jobs.Client satisfies it.
type ViewRefreshQueue interface {
	EnqueueCostViewRefresh(ctx context.Context, batchID string) error
}

// CostCacheInvalidator drops redis-cached average costs once the batched
// recompute commits. *costing.Reader satisfies it.
type CostCacheInvalidator interface {
	Invalidate(ctx context.Context, productIDs ...int64) error
}
