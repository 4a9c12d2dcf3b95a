package colorkitchen

import (
	"context"

	"github.com/chromatex/dyehouse/internal/costing"
	"github.com/chromatex/dyehouse/internal/ledger"
)

// CostReader resolves the average cost stamped onto new details.
type CostReader interface {
	AvgCostForProduct(ctx context.Context, productID int64) (costing.CacheEntry, error)
}

type TxRepository interface {
	GetBatch(ctx context.Context, id int64) (Batch, error)
	InsertBatch(ctx context.Context, b Batch) (int64, error)
	GetEntry(ctx context.Context, id int64) (Entry, error)
	InsertEntry(ctx context.Context, e Entry) (int64, error)

	GetBatchDetail(ctx context.Context, id int64) (BatchDetail, error)
	InsertBatchDetail(ctx context.Context, d BatchDetail) (int64, error)
	UpdateBatchDetail(ctx context.Context, d BatchDetail) error
	DeleteBatchDetail(ctx context.Context, id int64) error

	GetEntryDetail(ctx context.Context, id int64) (EntryDetail, error)
	InsertEntryDetail(ctx context.Context, d EntryDetail) (int64, error)
	UpdateEntryDetail(ctx context.Context, d EntryDetail) error
	DeleteEntryDetail(ctx context.Context, id int64) error

	Ledger() ledger.Writer
	Costing() CostReader
}

type Repository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context, tx TxRepository) error) error

	GetBatch(ctx context.Context, id int64) (Batch, error)
	GetBatchByCode(ctx context.Context, code string) (Batch, error)
	GetEntry(ctx context.Context, id int64) (Entry, error)
	GetEntryByCode(ctx context.Context, code string) (Entry, error)
	ListBatchDetails(ctx context.Context, batchID int64) ([]BatchDetail, error)
	ListEntryDetails(ctx context.Context, entryID int64) ([]EntryDetail, error)
}
