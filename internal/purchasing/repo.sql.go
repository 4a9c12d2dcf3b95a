package purchasing

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

// NewRepository returns the PostgreSQL-backed repository.
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

func (r *pgxRepository) GetHeader(ctx context.Context, id int64) (Purchasing, error) {
	return scanHeader(r.pool.QueryRow(ctx, headerSelect+` WHERE id = $1`, id))
}

func (r *pgxRepository) GetHeaderByCode(ctx context.Context, code string) (Purchasing, error) {
	return scanHeader(r.pool.QueryRow(ctx, headerSelect+` WHERE code = $1`, code))
}

func (r *pgxRepository) ListHeaders(ctx context.Context, f shared.ListFilters) ([]Purchasing, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM purchasings
		WHERE ($1 = '' OR code ILIKE '%' || $1 || '%' OR purchase_order ILIKE '%' || $1 || '%')
		  AND ($2 = 0 OR supplier_id = $2)`,
		f.Search, f.SupplierID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("purchasing: count headers: %w", err)
	}

	rows, err := r.pool.Query(ctx, headerSelect+`
		WHERE ($1 = '' OR code ILIKE '%' || $1 || '%' OR purchase_order ILIKE '%' || $1 || '%')
		  AND ($2 = 0 OR supplier_id = $2)
		ORDER BY date DESC, id DESC
		LIMIT $3 OFFSET $4`,
		f.Search, f.SupplierID, f.Limit, (f.Page-1)*f.Limit)
	if err != nil {
		return nil, 0, fmt.Errorf("purchasing: list headers: %w", err)
	}
	defer rows.Close()

	var headers []Purchasing
	for rows.Next() {
		h, err := scanHeader(rows)
		if err != nil {
			return nil, 0, err
		}
		headers = append(headers, h)
	}
	return headers, total, rows.Err()
}

func (r *pgxRepository) ListLines(ctx context.Context, purchasingID int64) ([]Line, error) {
	rows, err := r.pool.Query(ctx, lineSelect+` WHERE purchasing_id = $1 ORDER BY id`, purchasingID)
	if err != nil {
		return nil, fmt.Errorf("purchasing: list lines: %w", err)
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
func (t *txRepository) Costing() CostEngine   { return t.cost }

func (t *txRepository) GetHeader(ctx context.Context, id int64) (Purchasing, error) {
	return scanHeader(t.tx.QueryRow(ctx, headerSelect+` WHERE id = $1`, id))
}

func (t *txRepository) InsertHeader(ctx context.Context, p Purchasing) (int64, error) {
	var id int64
	err := t.tx.QueryRow(ctx, `
		INSERT INTO purchasings (code, date, purchase_order, supplier_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		RETURNING id`,
		p.Code, p.Date, p.PurchaseOrder, p.SupplierID).Scan(&id)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return 0, fmt.Errorf("purchasing: code %q: %w", p.Code, shared.ErrDuplicate)
		}
		return 0, fmt.Errorf("purchasing: insert header: %w", err)
	}
	return id, nil
}

func (t *txRepository) GetLine(ctx context.Context, id int64) (Line, error) {
	return scanLine(t.tx.QueryRow(ctx, lineSelect+` WHERE id = $1`, id))
}

func (t *txRepository) InsertLine(ctx context.Context, l Line) (int64, error) {
	var id int64
	err := t.tx.QueryRow(ctx, `
		INSERT INTO purchasing_lines
			(purchasing_id, product_id, quantity, price, discount, ppn, pph, dpp, tax_no, exchange_rate)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`,
		l.PurchasingID, l.ProductID, l.Quantity, l.Price, l.Discount, l.PPN, l.PPH, l.DPP, l.TaxNo, l.ExchangeRate).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("purchasing: insert line: %w", err)
	}
	return id, nil
}

func (t *txRepository) UpdateLine(ctx context.Context, l Line) error {
	tag, err := t.tx.Exec(ctx, `
		UPDATE purchasing_lines
		SET quantity = $1, price = $2, discount = $3, ppn = $4, pph = $5,
		    dpp = $6, tax_no = $7, exchange_rate = $8
		WHERE id = $9`,
		l.Quantity, l.Price, l.Discount, l.PPN, l.PPH, l.DPP, l.TaxNo, l.ExchangeRate, l.ID)
	if err != nil {
		return fmt.Errorf("purchasing: update line: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (t *txRepository) DeleteLine(ctx context.Context, id int64) error {
	tag, err := t.tx.Exec(ctx, `DELETE FROM purchasing_lines WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("purchasing: delete line: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

const headerSelect = `
	SELECT id, code, date, purchase_order, supplier_id, created_at, updated_at
	FROM purchasings`

const lineSelect = `
	SELECT id, purchasing_id, product_id, quantity, price, discount, ppn, pph, dpp, tax_no, exchange_rate
	FROM purchasing_lines`

func scanHeader(row pgx.Row) (Purchasing, error) {
	var p Purchasing
	err := row.Scan(&p.ID, &p.Code, &p.Date, &p.PurchaseOrder, &p.SupplierID, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Purchasing{}, ErrNotFound
	}
	if err != nil {
		return Purchasing{}, fmt.Errorf("purchasing: scan header: %w", err)
	}
	return p, nil
}

func scanLine(row pgx.Row) (Line, error) {
	var l Line
	err := row.Scan(&l.ID, &l.PurchasingID, &l.ProductID, &l.Quantity, &l.Price,
		&l.Discount, &l.PPN, &l.PPH, &l.DPP, &l.TaxNo, &l.ExchangeRate)
	if errors.Is(err, pgx.ErrNoRows) {
		return Line{}, ErrNotFound
	}
	if err != nil {
		return Line{}, fmt.Errorf("purchasing: scan line: %w", err)
	}
	return l, nil
}
