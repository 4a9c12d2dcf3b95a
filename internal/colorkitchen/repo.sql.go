package colorkitchen

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

func (r *pgxRepository) GetBatch(ctx context.Context, id int64) (Batch, error) {
	return scanBatch(r.pool.QueryRow(ctx, batchSelect+` WHERE id = $1`, id))
}

func (r *pgxRepository) GetBatchByCode(ctx context.Context, code string) (Batch, error) {
	return scanBatch(r.pool.QueryRow(ctx, batchSelect+` WHERE code = $1`, code))
}

func (r *pgxRepository) GetEntry(ctx context.Context, id int64) (Entry, error) {
	return scanEntry(r.pool.QueryRow(ctx, entrySelect+` WHERE id = $1`, id))
}

func (r *pgxRepository) GetEntryByCode(ctx context.Context, code string) (Entry, error) {
	return scanEntry(r.pool.QueryRow(ctx, entrySelect+` WHERE code = $1`, code))
}

func (r *pgxRepository) ListBatchDetails(ctx context.Context, batchID int64) ([]BatchDetail, error) {
	rows, err := r.pool.Query(ctx, batchDetailSelect+` WHERE batch_id = $1 ORDER BY id`, batchID)
	if err != nil {
		return nil, fmt.Errorf("colorkitchen: list batch details: %w", err)
	}
	defer rows.Close()

	var details []BatchDetail
	for rows.Next() {
		d, err := scanBatchDetail(rows)
		if err != nil {
			return nil, err
		}
		details = append(details, d)
	}
	return details, rows.Err()
}

func (r *pgxRepository) ListEntryDetails(ctx context.Context, entryID int64) ([]EntryDetail, error) {
	rows, err := r.pool.Query(ctx, entryDetailSelect+` WHERE entry_id = $1 ORDER BY id`, entryID)
	if err != nil {
		return nil, fmt.Errorf("colorkitchen: list entry details: %w", err)
	}
	defer rows.Close()

	var details []EntryDetail
	for rows.Next() {
		d, err := scanEntryDetail(rows)
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
	cost   *costing.Engine
}

func (t *txRepository) Ledger() ledger.Writer { return t.ledger }
func (t *txRepository) Costing() CostReader   { return t.cost }

func (t *txRepository) GetBatch(ctx context.Context, id int64) (Batch, error) {
	return scanBatch(t.tx.QueryRow(ctx, batchSelect+` WHERE id = $1`, id))
}

func (t *txRepository) InsertBatch(ctx context.Context, b Batch) (int64, error) {
	var id int64
	err := t.tx.QueryRow(ctx, `
		INSERT INTO color_kitchen_batches (code, date, created_at, updated_at)
		VALUES ($1, $2, NOW(), NOW())
		RETURNING id`,
		b.Code, b.Date).Scan(&id)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return 0, fmt.Errorf("colorkitchen: batch code %q: %w", b.Code, shared.ErrDuplicate)
		}
		return 0, fmt.Errorf("colorkitchen: insert batch: %w", err)
	}
	return id, nil
}

func (t *txRepository) GetEntry(ctx context.Context, id int64) (Entry, error) {
	return scanEntry(t.tx.QueryRow(ctx, entrySelect+` WHERE id = $1`, id))
}

func (t *txRepository) InsertEntry(ctx context.Context, e Entry) (int64, error) {
	var id int64
	err := t.tx.QueryRow(ctx, `
		INSERT INTO color_kitchen_entries (code, date, rolls, paste_quantity, design_id, batch_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		RETURNING id`,
		e.Code, e.Date, e.Rolls, e.PasteQuantity, e.DesignID, e.BatchID).Scan(&id)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return 0, fmt.Errorf("colorkitchen: entry code %q: %w", e.Code, shared.ErrDuplicate)
		}
		return 0, fmt.Errorf("colorkitchen: insert entry: %w", err)
	}
	return id, nil
}

func (t *txRepository) GetBatchDetail(ctx context.Context, id int64) (BatchDetail, error) {
	return scanBatchDetail(t.tx.QueryRow(ctx, batchDetailSelect+` WHERE id = $1`, id))
}

func (t *txRepository) InsertBatchDetail(ctx context.Context, d BatchDetail) (int64, error) {
	var id int64
	err := t.tx.QueryRow(ctx, `
		INSERT INTO color_kitchen_batch_details (batch_id, product_id, quantity, unit_cost_used, total_cost)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		d.BatchID, d.ProductID, d.Quantity, d.UnitCostUsed, d.TotalCost).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("colorkitchen: insert batch detail: %w", err)
	}
	return id, nil
}

func (t *txRepository) UpdateBatchDetail(ctx context.Context, d BatchDetail) error {
	tag, err := t.tx.Exec(ctx, `
		UPDATE color_kitchen_batch_details
		SET quantity = $1, unit_cost_used = $2, total_cost = $3
		WHERE id = $4`,
		d.Quantity, d.UnitCostUsed, d.TotalCost, d.ID)
	if err != nil {
		return fmt.Errorf("colorkitchen: update batch detail: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (t *txRepository) DeleteBatchDetail(ctx context.Context, id int64) error {
	tag, err := t.tx.Exec(ctx, `DELETE FROM color_kitchen_batch_details WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("colorkitchen: delete batch detail: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (t *txRepository) GetEntryDetail(ctx context.Context, id int64) (EntryDetail, error) {
	return scanEntryDetail(t.tx.QueryRow(ctx, entryDetailSelect+` WHERE id = $1`, id))
}

func (t *txRepository) InsertEntryDetail(ctx context.Context, d EntryDetail) (int64, error) {
	var id int64
	err := t.tx.QueryRow(ctx, `
		INSERT INTO color_kitchen_entry_details (entry_id, product_id, quantity, unit_cost_used, total_cost)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		d.EntryID, d.ProductID, d.Quantity, d.UnitCostUsed, d.TotalCost).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("colorkitchen: insert entry detail: %w", err)
	}
	return id, nil
}

func (t *txRepository) UpdateEntryDetail(ctx context.Context, d EntryDetail) error {
	tag, err := t.tx.Exec(ctx, `
		UPDATE color_kitchen_entry_details
		SET quantity = $1, unit_cost_used = $2, total_cost = $3
		WHERE id = $4`,
		d.Quantity, d.UnitCostUsed, d.TotalCost, d.ID)
	if err != nil {
		return fmt.Errorf("colorkitchen: update entry detail: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (t *txRepository) DeleteEntryDetail(ctx context.Context, id int64) error {
	tag, err := t.tx.Exec(ctx, `DELETE FROM color_kitchen_entry_details WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("colorkitchen: delete entry detail: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

const batchSelect = `
	SELECT id, code, date, created_at, updated_at
	FROM color_kitchen_batches`

const entrySelect = `
	SELECT id, code, date, rolls, paste_quantity, design_id, batch_id, created_at, updated_at
	FROM color_kitchen_entries`

const batchDetailSelect = `
	SELECT id, batch_id, product_id, quantity, unit_cost_used, total_cost
	FROM color_kitchen_batch_details`

const entryDetailSelect = `
	SELECT id, entry_id, product_id, quantity, unit_cost_used, total_cost
	FROM color_kitchen_entry_details`

func scanBatch(row pgx.Row) (Batch, error) {
	var b Batch
	err := row.Scan(&b.ID, &b.Code, &b.Date, &b.CreatedAt, &b.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Batch{}, ErrNotFound
	}
	if err != nil {
		return Batch{}, fmt.Errorf("colorkitchen: scan batch: %w", err)
	}
	return b, nil
}

func scanEntry(row pgx.Row) (Entry, error) {
	var e Entry
	err := row.Scan(&e.ID, &e.Code, &e.Date, &e.Rolls, &e.PasteQuantity, &e.DesignID, &e.BatchID, &e.CreatedAt, &e.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Entry{}, ErrNotFound
	}
	if err != nil {
		return Entry{}, fmt.Errorf("colorkitchen: scan entry: %w", err)
	}
	return e, nil
}

func scanBatchDetail(row pgx.Row) (BatchDetail, error) {
	var d BatchDetail
	err := row.Scan(&d.ID, &d.BatchID, &d.ProductID, &d.Quantity, &d.UnitCostUsed, &d.TotalCost)
	if errors.Is(err, pgx.ErrNoRows) {
		return BatchDetail{}, ErrNotFound
	}
	if err != nil {
		return BatchDetail{}, fmt.Errorf("colorkitchen: scan batch detail: %w", err)
	}
	return d, nil
}

func scanEntryDetail(row pgx.Row) (EntryDetail, error) {
	var d EntryDetail
	err := row.Scan(&d.ID, &d.EntryID, &d.ProductID, &d.Quantity, &d.UnitCostUsed, &d.TotalCost)
	if errors.Is(err, pgx.ErrNoRows) {
		return EntryDetail{}, ErrNotFound
	}
	if err != nil {
		return EntryDetail{}, fmt.Errorf("colorkitchen: scan entry detail: %w", err)
	}
	return d, nil
}
