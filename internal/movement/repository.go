package movement

import (
	"context"

	"github.com/chromatex/dyehouse/internal/costing"
	"github.com/chromatex/dyehouse/internal/ledger"
)

// CostReader resolves the average cost stamped onto new lines.
// *costing.Engine satisfies it inside a transaction.
type CostReader interface {
	AvgCostForProduct(ctx context.Context, productID int64) (costing.CacheEntry, error)
}

// TxRepository is the transactional surface: line write and its two ledger
// rows commit together.
type TxRepository interface {
	GetHeader(ctx context.Context, id int64) (StockMovement, error)
	InsertHeader(ctx context.Context, m StockMovement) (int64, error)
	GetLine(ctx context.Context, id int64) (Line, error)
	InsertLine(ctx context.Context, l Line) (int64, error)
	UpdateLine(ctx context.Context, l Line) error
	DeleteLine(ctx context.Context, id int64) error

	Ledger() ledger.Writer
	Costing() CostReader
}

type Repository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context, tx TxRepository) error) error

	GetHeader(ctx context.Context, id int64) (StockMovement, error)
	GetHeaderByCode(ctx context.Context, code string) (StockMovement, error)
	ListLines(ctx context.Context, stockMovementID int64) ([]Line, error)
}
