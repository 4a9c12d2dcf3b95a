package purchasing

import (
	"context"
	"errors"
	"log/slog"

	"github.com/chromatex/dyehouse/internal/costing"
	"github.com/chromatex/dyehouse/internal/ledger"
)

// Service owns the purchasing write path. Each line mutation runs as one
// unit of work: line write, cost recompute and warehouse ledger row commit
// together or not at all.
type Service struct {
	logger *slog.Logger
	repo   Repository
}

func NewService(logger *slog.Logger, repo Repository) *Service {
	return &Service{logger: logger, repo: repo}
}

func (s *Service) CreateHeader(ctx context.Context, in CreateHeaderInput) (Purchasing, error) {
	if err := in.validate(); err != nil {
		return Purchasing{}, err
	}
	header := Purchasing{
		Code:          in.Code,
		Date:          in.Date,
		PurchaseOrder: in.PurchaseOrder,
		SupplierID:    in.SupplierID,
	}
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		id, err := tx.InsertHeader(ctx, header)
		if err != nil {
			return err
		}
		header.ID = id
		return nil
	})
	if err != nil {
		return Purchasing{}, err
	}
	return header, nil
}

// CreateLine inserts a line and, unless policy defers, recomputes the
// product's average cost and writes its warehouse ledger row. With
// DeferRecompute the line is written bare; the bulk caller recomputes once
// afterwards via RecomputeProducts.
func (s *Service) CreateLine(ctx context.Context, in CreateLineInput, policy costing.UpdatePolicy) (Line, error) {
	if err := in.validate(); err != nil {
		return Line{}, err
	}
	line := Line{
		PurchasingID: in.PurchasingID,
		ProductID:    in.ProductID,
		Quantity:     in.Quantity,
		Price:        in.Price,
		Discount:     in.Discount,
		PPN:          in.PPN,
		PPH:          in.PPH,
		DPP:          in.DPP,
		TaxNo:        in.TaxNo,
		ExchangeRate: in.ExchangeRate,
	}
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		id, err := tx.InsertLine(ctx, line)
		if err != nil {
			return err
		}
		line.ID = id

		if policy.Defer() {
			return nil
		}

		header, err := tx.GetHeader(ctx, line.PurchasingID)
		if errors.Is(err, ErrNotFound) {
			// Headerless line: leave the ledger and cache untouched.
			s.logger.Warn("purchasing line without header",
				slog.Int64("line_id", line.ID),
				slog.Int64("purchasing_id", line.PurchasingID))
			return nil
		}
		if err != nil {
			return err
		}
		if err := tx.Costing().RecomputeForProducts(ctx, []int64{line.ProductID}); err != nil {
			return err
		}
		return tx.Ledger().Insert(ctx, ledger.Entry{
			Date:       header.Date,
			Ref:        ledger.RefPurchasing,
			RefCode:    header.Code,
			Location:   ledger.LocationGudang,
			QuantityIn: line.Quantity,
			ProductID:  line.ProductID,
		})
	})
	if err != nil {
		return Line{}, err
	}
	return line, nil
}

// UpdateLine rewrites a line's fields and, unless policy defers, recomputes
// the cost and syncs the warehouse ledger row to the new quantity.
func (s *Service) UpdateLine(ctx context.Context, id int64, in UpdateLineInput, policy costing.UpdatePolicy) (Line, error) {
	if err := in.validate(); err != nil {
		return Line{}, err
	}
	var updated Line
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		line, err := tx.GetLine(ctx, id)
		if err != nil {
			return err
		}
		line.Quantity = in.Quantity
		line.Price = in.Price
		line.Discount = in.Discount
		line.PPN = in.PPN
		line.PPH = in.PPH
		line.DPP = in.DPP
		line.TaxNo = in.TaxNo
		line.ExchangeRate = in.ExchangeRate
		if err := tx.UpdateLine(ctx, line); err != nil {
			return err
		}
		updated = line

		if policy.Defer() {
			return nil
		}

		header, err := tx.GetHeader(ctx, line.PurchasingID)
		if errors.Is(err, ErrNotFound) {
			s.logger.Warn("purchasing line without header",
				slog.Int64("line_id", line.ID),
				slog.Int64("purchasing_id", line.PurchasingID))
			return nil
		}
		if err != nil {
			return err
		}
		if err := tx.Costing().RecomputeForProducts(ctx, []int64{line.ProductID}); err != nil {
			return err
		}
		return tx.Ledger().UpdateQuantity(ctx, ledger.Key{
			Ref:       ledger.RefPurchasing,
			RefCode:   header.Code,
			ProductID: line.ProductID,
			Location:  ledger.LocationGudang,
		}, header.Date, line.Quantity, 0)
	})
	if err != nil {
		return Line{}, err
	}
	return updated, nil
}

// DeleteLine removes a line and its warehouse ledger row. The cost
// recompute runs regardless of policy; deferring deletes was never part of
// the bulk-import contract and a stale cache after a delete would misprice
// later consumption.
func (s *Service) DeleteLine(ctx context.Context, id int64, policy costing.UpdatePolicy) error {
	_ = policy
	return s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		line, err := tx.GetLine(ctx, id)
		if err != nil {
			return err
		}
		if err := tx.DeleteLine(ctx, id); err != nil {
			return err
		}
		if err := tx.Costing().RecomputeForProducts(ctx, []int64{line.ProductID}); err != nil {
			return err
		}
		header, err := tx.GetHeader(ctx, line.PurchasingID)
		if errors.Is(err, ErrNotFound) {
			s.logger.Warn("purchasing line without header",
				slog.Int64("line_id", line.ID),
				slog.Int64("purchasing_id", line.PurchasingID))
			return nil
		}
		if err != nil {
			return err
		}
		return tx.Ledger().Delete(ctx, ledger.RefPurchasing, header.Code, line.ProductID, ledger.LocationGudang)
	})
}

// RecomputeProducts runs one batched cost recompute for the given product
// set. Bulk importers call it after loading with DeferRecompute.
func (s *Service) RecomputeProducts(ctx context.Context, productIDs []int64) error {
	if len(productIDs) == 0 {
		return nil
	}
	return s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		return tx.Costing().RecomputeForProducts(ctx, productIDs)
	})
}

func (s *Service) GetHeader(ctx context.Context, id int64) (Purchasing, error) {
	return s.repo.GetHeader(ctx, id)
}

func (s *Service) GetHeaderByCode(ctx context.Context, code string) (Purchasing, error) {
	return s.repo.GetHeaderByCode(ctx, code)
}

func (s *Service) ListLines(ctx context.Context, purchasingID int64) ([]Line, error) {
	return s.repo.ListLines(ctx, purchasingID)
}
