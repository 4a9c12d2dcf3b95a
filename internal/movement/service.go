package movement

import (
	"context"
	"log/slog"

	"github.com/chromatex/dyehouse/internal/ledger"
)

// Service owns the stock movement write path. Lines are priced once at
// creation from the cost cache; a product with no purchase history is a
// hard error, never a zero-cost default.
type Service struct {
	logger *slog.Logger
	repo   Repository
}

func NewService(logger *slog.Logger, repo Repository) *Service {
	return &Service{logger: logger, repo: repo}
}

func (s *Service) CreateHeader(ctx context.Context, in CreateHeaderInput) (StockMovement, error) {
	if err := in.validate(); err != nil {
		return StockMovement{}, err
	}
	header := StockMovement{Code: in.Code, Date: in.Date, Description: in.Description}
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		id, err := tx.InsertHeader(ctx, header)
		if err != nil {
			return err
		}
		header.ID = id
		return nil
	})
	if err != nil {
		return StockMovement{}, err
	}
	return header, nil
}

// CreateLine stamps the current average cost onto the line, persists
// total_cost = quantity*unit_cost_used, and writes the paired ledger rows:
// quantity OUT at the warehouse, the same quantity IN at the kitchen.
func (s *Service) CreateLine(ctx context.Context, in CreateLineInput) (Line, error) {
	if err := in.validate(); err != nil {
		return Line{}, err
	}
	var line Line
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		header, err := tx.GetHeader(ctx, in.StockMovementID)
		if err != nil {
			return err
		}
		entry, err := tx.Costing().AvgCostForProduct(ctx, in.ProductID)
		if err != nil {
			return err
		}

		line = Line{
			StockMovementID: in.StockMovementID,
			ProductID:       in.ProductID,
			Quantity:        in.Quantity,
			UnitCostUsed:    entry.AvgCost,
			TotalCost:       in.Quantity * entry.AvgCost,
		}
		id, err := tx.InsertLine(ctx, line)
		if err != nil {
			return err
		}
		line.ID = id

		out := ledger.Entry{
			Date:        header.Date,
			Ref:         ledger.RefStockMovement,
			RefCode:     header.Code,
			Location:    ledger.LocationGudang,
			QuantityOut: line.Quantity,
			ProductID:   line.ProductID,
		}
		if err := tx.Ledger().Insert(ctx, out); err != nil {
			return err
		}
		recv := out
		recv.Location = ledger.LocationKitchen
		recv.QuantityOut = 0
		recv.QuantityIn = line.Quantity
		return tx.Ledger().Insert(ctx, recv)
	})
	if err != nil {
		return Line{}, err
	}
	return line, nil
}

// UpdateLine changes the quantity and syncs both ledger rows. The cost
// snapshot stays as stamped at creation; only total_cost is re-derived.
func (s *Service) UpdateLine(ctx context.Context, id int64, in UpdateLineInput) (Line, error) {
	if err := in.validate(); err != nil {
		return Line{}, err
	}
	var updated Line
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		line, err := tx.GetLine(ctx, id)
		if err != nil {
			return err
		}
		header, err := tx.GetHeader(ctx, line.StockMovementID)
		if err != nil {
			return err
		}

		line.Quantity = in.Quantity
		line.TotalCost = line.Quantity * line.UnitCostUsed
		if err := tx.UpdateLine(ctx, line); err != nil {
			return err
		}
		updated = line

		key := ledger.Key{
			Ref:       ledger.RefStockMovement,
			RefCode:   header.Code,
			ProductID: line.ProductID,
			Location:  ledger.LocationGudang,
		}
		if err := tx.Ledger().UpdateQuantity(ctx, key, header.Date, 0, line.Quantity); err != nil {
			return err
		}
		key.Location = ledger.LocationKitchen
		return tx.Ledger().UpdateQuantity(ctx, key, header.Date, line.Quantity, 0)
	})
	if err != nil {
		return Line{}, err
	}
	return updated, nil
}

// DeleteLine removes the line and both of its ledger rows.
func (s *Service) DeleteLine(ctx context.Context, id int64) error {
	return s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		line, err := tx.GetLine(ctx, id)
		if err != nil {
			return err
		}
		header, err := tx.GetHeader(ctx, line.StockMovementID)
		if err != nil {
			return err
		}
		if err := tx.DeleteLine(ctx, id); err != nil {
			return err
		}
		return tx.Ledger().Delete(ctx, ledger.RefStockMovement, header.Code, line.ProductID,
			ledger.LocationGudang, ledger.LocationKitchen)
	})
}

func (s *Service) GetHeader(ctx context.Context, id int64) (StockMovement, error) {
	return s.repo.GetHeader(ctx, id)
}

func (s *Service) GetHeaderByCode(ctx context.Context, code string) (StockMovement, error) {
	return s.repo.GetHeaderByCode(ctx, code)
}

func (s *Service) ListLines(ctx context.Context, stockMovementID int64) ([]Line, error) {
	return s.repo.ListLines(ctx, stockMovementID)
}
