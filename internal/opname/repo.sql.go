package opname

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/chromatex/dyehouse/internal/ledger"
	"github.com/chromatex/dyehouse/internal/masterdata/shared"
	"github.com/chromatex/dyehouse/internal/platform/db"
)

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

func (r *pgxRepository) WithTx(ctx context.Context, fn func(ctx context.Context, tx TxRepository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepository{tx: tx, ledger: ledger.NewStore(tx)})
	})
}

func (r *pgxRepository) GetHeader(ctx context.Context, id int64) (StockOpname, error) {
	return scanHeader(r.pool.QueryRow(ctx, headerSelect+` WHERE id = $1`, id))
}

func (r *pgxRepository) GetHeaderByCode(ctx context.Context, code string) (StockOpname, error) {
	return scanHeader(r.pool.QueryRow(ctx, headerSelect+` WHERE code = $1`, code))
}

func (r *pgxRepository) ListDetails(ctx context.Context, opnameID int64) ([]Detail, error) {
	rows, err := r.pool.Query(ctx, detailSelect+` WHERE opname_id = $1 ORDER BY id`, opnameID)
	if err != nil {
		return nil, fmt.Errorf("opname: list details: %w", err)
	}
	defer rows.Close()

	var details []Detail
	for rows.Next() {
		d, err := scanDetail(rows)
		if err != nil {
			return nil, err
		}
		details = append(details, d)
	}
	return details, rows.Err()
}

type txRepository struct {
	tx     pgx.Tx
	ledger *ledger.Store
}

func (t *txRepository) Ledger() ledger.Writer   { return t.ledger }
func (t *txRepository) Balances() BalanceReader { return t.ledger }

func (t *txRepository) GetHeader(ctx context.Context, id int64) (StockOpname, error) {
	return scanHeader(t.tx.QueryRow(ctx, headerSelect+` WHERE id = $1`, id))
}

func (t *txRepository) InsertHeader(ctx context.Context, o StockOpname) (int64, error) {
	var id int64
	err := t.tx.QueryRow(ctx, `
		INSERT INTO stock_opnames (code, date, created_at, updated_at)
		VALUES ($1, $2, NOW(), NOW())
		RETURNING id`,
		o.Code, o.Date).Scan(&id)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return 0, fmt.Errorf("opname: code %q: %w", o.Code, shared.ErrDuplicate)
		}
		return 0, fmt.Errorf("opname: insert header: %w", err)
	}
	return id, nil
}

func (t *txRepository) GetDetail(ctx context.Context, id int64) (Detail, error) {
	return scanDetail(t.tx.QueryRow(ctx, detailSelect+` WHERE id = $1`, id))
}

func (t *txRepository) InsertDetail(ctx context.Context, d Detail) (int64, error) {
	var id int64
	err := t.tx.QueryRow(ctx, `
		INSERT INTO stock_opname_details (opname_id, product_id, system_quantity, physical_quantity, difference)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		d.OpnameID, d.ProductID, d.SystemQuantity, d.PhysicalQuantity, d.Difference).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("opname: insert detail: %w", err)
	}
	return id, nil
}

func (t *txRepository) DeleteDetail(ctx context.Context, id int64) error {
	tag, err := t.tx.Exec(ctx, `DELETE FROM stock_opname_details WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("opname: delete detail: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

const headerSelect = `
	SELECT id, code, date, created_at, updated_at
	FROM stock_opnames`

const detailSelect = `
	SELECT id, opname_id, product_id, system_quantity, physical_quantity, difference
	FROM stock_opname_details`

func scanHeader(row pgx.Row) (StockOpname, error) {
	var o StockOpname
	err := row.Scan(&o.ID, &o.Code, &o.Date, &o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return StockOpname{}, ErrNotFound
	}
	if err != nil {
		return StockOpname{}, fmt.Errorf("opname: scan header: %w", err)
	}
	return o, nil
}

func scanDetail(row pgx.Row) (Detail, error) {
	var d Detail
	err := row.Scan(&d.ID, &d.OpnameID, &d.ProductID, &d.SystemQuantity, &d.PhysicalQuantity, &d.Difference)
	if errors.Is(err, pgx.ErrNoRows) {
		return Detail{}, ErrNotFound
	}
	if err != nil {
		return Detail{}, fmt.Errorf("opname: scan detail: %w", err)
	}
	return d, nil
}
