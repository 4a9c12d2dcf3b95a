package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/chromatex/dyehouse/internal/shared"
)

// LocationBalance returns the net quantity of a product at a location as of
// the given date: Σ quantity_in − Σ quantity_out over all rows up to and
// including asOf. This is the system quantity the stock opname compares
// against the physical count.
func (s *Store) LocationBalance(ctx context.Context, productID int64, location Location, asOf time.Time) (float64, error) {
	if !location.Valid() {
		return 0, ErrInvalidLocation
	}
	var balance float64
	err := s.db.QueryRow(ctx, `
		SELECT COALESCE(SUM(quantity_in - quantity_out), 0)
		FROM ledgers
		WHERE product_id = $1 AND location = $2 AND date <= $3`,
		productID, string(location), asOf).Scan(&balance)
	if err != nil {
		return 0, fmt.Errorf("ledger: location balance: %w", err)
	}
	return balance, nil
}

// History lists a product's ledger rows newest first.
func (s *Store) History(ctx context.Context, productID int64, p shared.Pagination) ([]Entry, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, date, ref, ref_code, location, quantity_in, quantity_out, product_id
		FROM ledgers
		WHERE product_id = $1
		ORDER BY date DESC, id DESC
		LIMIT $2 OFFSET $3`,
		productID, p.PerPage, p.Offset())
	if err != nil {
		return nil, fmt.Errorf("ledger: history: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Date, &e.Ref, &e.RefCode, &e.Location, &e.QuantityIn, &e.QuantityOut, &e.ProductID); err != nil {
			return nil, fmt.Errorf("ledger: scan history: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
