package opname

import (
	"context"
	"time"

	"github.com/chromatex/dyehouse/internal/ledger"
)

// BalanceReader resolves the ledger-derived system quantity.
// *ledger.Store satisfies it.
type BalanceReader interface {
	LocationBalance(ctx context.Context, productID int64, location ledger.Location, asOf time.Time) (float64, error)
}

type TxRepository interface {
	GetHeader(ctx context.Context, id int64) (StockOpname, error)
	InsertHeader(ctx context.Context, o StockOpname) (int64, error)
	GetDetail(ctx context.Context, id int64) (Detail, error)
	InsertDetail(ctx context.Context, d Detail) (int64, error)
	DeleteDetail(ctx context.Context, id int64) error

	Ledger() ledger.Writer
	Balances() BalanceReader
}

type Repository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context, tx TxRepository) error) error

	GetHeader(ctx context.Context, id int64) (StockOpname, error)
	GetHeaderByCode(ctx context.Context, code string) (StockOpname, error)
	ListDetails(ctx context.Context, opnameID int64) ([]Detail, error)
}
