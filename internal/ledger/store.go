package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/chromatex/dyehouse/internal/platform/db"
)

// Writer is the ledger surface the document services depend on. The
// concrete Store satisfies it over a pool or a transaction; tests swap in
// an in-memory implementation.
type Writer interface {
	Insert(ctx context.Context, e Entry) error
	UpdateQuantity(ctx context.Context, key Key, date time.Time, quantityIn, quantityOut float64) error
	Delete(ctx context.Context, ref Ref, refCode string, productID int64, locations ...Location) error
}

// Store persists ledger rows. It accepts a db.DBTX so the same code runs
// inside a document service's transaction or standalone over the pool.
type Store struct {
	db db.DBTX
}

func NewStore(dbtx db.DBTX) *Store {
	return &Store{db: dbtx}
}

func (s *Store) Insert(ctx context.Context, e Entry) error {
	if err := e.Validate(); err != nil {
		return err
	}
	_, err := s.db.Exec(ctx, `
		INSERT INTO ledgers (date, ref, ref_code, location, quantity_in, quantity_out, product_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		e.Date, string(e.Ref), e.RefCode, string(e.Location), e.QuantityIn, e.QuantityOut, e.ProductID)
	if err != nil {
		return fmt.Errorf("ledger: insert: %w", err)
	}
	return nil
}

// UpdateQuantity rewrites the quantities and date of the row matching key.
// A missing row is not an error; the caller's detail line may predate
// ledger bookkeeping.
func (s *Store) UpdateQuantity(ctx context.Context, key Key, date time.Time, quantityIn, quantityOut float64) error {
	_, err := s.db.Exec(ctx, `
		UPDATE ledgers
		SET quantity_in = $1, quantity_out = $2, date = $3
		WHERE ref = $4 AND ref_code = $5 AND product_id = $6 AND location = $7`,
		quantityIn, quantityOut, date, string(key.Ref), key.RefCode, key.ProductID, string(key.Location))
	if err != nil {
		return fmt.Errorf("ledger: update: %w", err)
	}
	return nil
}

// Delete removes the rows for a detail line at the given locations. With no
// locations given, every location for the (ref, ref_code, product) triple
// is removed.
func (s *Store) Delete(ctx context.Context, ref Ref, refCode string, productID int64, locations ...Location) error {
	if len(locations) == 0 {
		_, err := s.db.Exec(ctx, `
			DELETE FROM ledgers WHERE ref = $1 AND ref_code = $2 AND product_id = $3`,
			string(ref), refCode, productID)
		if err != nil {
			return fmt.Errorf("ledger: delete: %w", err)
		}
		return nil
	}

	locs := make([]string, len(locations))
	for i, l := range locations {
		locs[i] = string(l)
	}
	_, err := s.db.Exec(ctx, `
		DELETE FROM ledgers
		WHERE ref = $1 AND ref_code = $2 AND product_id = $3 AND location = ANY($4)`,
		string(ref), refCode, productID, locs)
	if err != nil {
		return fmt.Errorf("ledger: delete: %w", err)
	}
	return nil
}
