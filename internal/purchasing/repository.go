package purchasing

import (
	"context"

	"github.com/chromatex/dyehouse/internal/ledger"
	"github.com/chromatex/dyehouse/internal/masterdata/shared"
)

// CostEngine is the costing surface the service drives. *costing.Engine
// satisfies it; tests substitute an in-memory recorder.
type CostEngine interface {
	RecomputeForProducts(ctx context.Context, productIDs []int64) error
}

// TxRepository is the transactional surface for one unit of work: the
// document write, its ledger rows and the cost recompute share a single
// transaction and commit or fail together.
type TxRepository interface {
	GetHeader(ctx context.Context, id int64) (Purchasing, error)
	InsertHeader(ctx context.Context, p Purchasing) (int64, error)
	GetLine(ctx context.Context, id int64) (Line, error)
	InsertLine(ctx context.Context, l Line) (int64, error)
	UpdateLine(ctx context.Context, l Line) error
	DeleteLine(ctx context.Context, id int64) error

	Ledger() ledger.Writer
	Costing() CostEngine
}

// Repository provides pool-level reads plus transactional units of work.
type Repository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context, tx TxRepository) error) error

	GetHeader(ctx context.Context, id int64) (Purchasing, error)
	GetHeaderByCode(ctx context.Context, code string) (Purchasing, error)
	ListHeaders(ctx context.Context, f shared.ListFilters) ([]Purchasing, int, error)
	ListLines(ctx context.Context, purchasingID int64) ([]Line, error)
}
