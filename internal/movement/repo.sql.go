package movement

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/chromatex/dyehouse/internal/costing"
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
		return fn(ctx, &txRepository{
			tx:     tx,
			ledger: ledger.NewStore(tx),
			cost:   costing.NewEngine(tx),
		})
	})
}

func (r *pgxRepository) GetHeader(ctx context.Context, id int64) (StockMovement, error) {
	return scanHeader(r.pool.QueryRow(ctx, headerSelect+` WHERE id = $1`, id))
}

func (r *pgxRepository) GetHeaderByCode(ctx context.Context, code string) (StockMovement, error) {
	return scanHeader(r.pool.QueryRow(ctx, headerSelect+` WHERE code = $1`, code))
}

func (r *pgxRepository) ListLines(ctx context.Context, stockMovementID int64) ([]Line, error) {
	rows, err := r.pool.Query(ctx, lineSelect+` WHERE stock_movement_id = $1 ORDER BY id`, stockMovementID)
	if err != nil {
		return nil, fmt.Errorf("movement: list lines: %w", err)
	}
	defer rows.Close()

	var lines []Line
	for rows.Next() {
		l, err := scanLine(rows)
		if err != nil {
			return nil, err
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

type txRepository struct {
	tx     pgx.Tx
	ledger *ledger.Store
	cost   *costing.Engine
}

func (t *txRepository) Ledger() ledger.Writer { return t.ledger }
func (t *txRepository) Costing() CostReader   { return t.cost }

func (t *txRepository) GetHeader(ctx context.Context, id int64) (StockMovement, error) {
	return scanHeader(t.tx.QueryRow(ctx, headerSelect+` WHERE id = $1`, id))
}

func (t *txRepository) InsertHeader(ctx context.Context, m StockMovement) (int64, error) {
	var id int64
	err := t.tx.QueryRow(ctx, `
		INSERT INTO stock_movements (code, date, description, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		RETURNING id`,
		m.Code, m.Date, m.Description).Scan(&id)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return 0, fmt.Errorf("movement: code %q: %w", m.Code, shared.ErrDuplicate)
		}
		return 0, fmt.Errorf("movement: insert header: %w", err)
	}
	return id, nil
}

func (t *txRepository) GetLine(ctx context.Context, id int64) (Line, error) {
	return scanLine(t.tx.QueryRow(ctx, lineSelect+` WHERE id = $1`, id))
}

func (t *txRepository) InsertLine(ctx context.Context, l Line) (int64, error) {
	var id int64
	err := t.tx.QueryRow(ctx, `
		INSERT INTO stock_movement_lines (stock_movement_id, product_id, quantity, unit_cost_used, total_cost)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		l.StockMovementID, l.ProductID, l.Quantity, l.UnitCostUsed, l.TotalCost).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("movement: insert line: %w", err)
	}
	return id, nil
}

func (t *txRepository) UpdateLine(ctx context.Context, l Line) error {
	tag, err := t.tx.Exec(ctx, `
		UPDATE stock_movement_lines
		SET quantity = $1, unit_cost_used = $2, total_cost = $3
		WHERE id = $4`,
		l.Quantity, l.UnitCostUsed, l.TotalCost, l.ID)
	if err != nil {
		return fmt.Errorf("movement: update line: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (t *txRepository) DeleteLine(ctx context.Context, id int64) error {
	tag, err := t.tx.Exec(ctx, `DELETE FROM stock_movement_lines WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("movement: delete line: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

const headerSelect = `
	SELECT id, code, date, description, created_at, updated_at
	FROM stock_movements`

const lineSelect = `
	SELECT id, stock_movement_id, product_id, quantity, unit_cost_used, total_cost
	FROM stock_movement_lines`

func scanHeader(row pgx.Row) (StockMovement, error) {
	var m StockMovement
	err := row.Scan(&m.ID, &m.Code, &m.Date, &m.Description, &m.CreatedAt, &m.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return StockMovement{}, ErrNotFound
	}
	if err != nil {
		return StockMovement{}, fmt.Errorf("movement: scan header: %w", err)
	}
	return m, nil
}

func scanLine(row pgx.Row) (Line, error) {
	var l Line
	err := row.Scan(&l.ID, &l.StockMovementID, &l.ProductID, &l.Quantity, &l.UnitCostUsed, &l.TotalCost)
	if errors.Is(err, pgx.ErrNoRows) {
		return Line{}, ErrNotFound
	}
	if err != nil {
		return Line{}, fmt.Errorf("movement: scan line: %w", err)
	}
	return l, nil
}
