package colorkitchen

import (
	"context"
	"log/slog"
	"time"

	"github.com/chromatex/dyehouse/internal/ledger"
)

// Service owns the color kitchen write path. Batch-level and entry-level
// details follow the same rules: cost stamped once at creation, paired
// ledger rows (kitchen OUT, usage IN) kept in step with the detail.
type Service struct {
	logger *slog.Logger
	repo   Repository
}

func NewService(logger *slog.Logger, repo Repository) *Service {
	return &Service{logger: logger, repo: repo}
}

func (s *Service) CreateBatch(ctx context.Context, in CreateBatchInput) (Batch, error) {
	if err := in.validate(); err != nil {
		return Batch{}, err
	}
	batch := Batch{Code: in.Code, Date: in.Date}
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		id, err := tx.InsertBatch(ctx, batch)
		if err != nil {
			return err
		}
		batch.ID = id
		return nil
	})
	if err != nil {
		return Batch{}, err
	}
	return batch, nil
}

func (s *Service) CreateEntry(ctx context.Context, in CreateEntryInput) (Entry, error) {
	if err := in.validate(); err != nil {
		return Entry{}, err
	}
	entry := Entry{
		Code:          in.Code,
		Date:          in.Date,
		Rolls:         in.Rolls,
		PasteQuantity: in.PasteQuantity,
		DesignID:      in.DesignID,
		BatchID:       in.BatchID,
	}
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if _, err := tx.GetBatch(ctx, in.BatchID); err != nil {
			return err
		}
		id, err := tx.InsertEntry(ctx, entry)
		if err != nil {
			return err
		}
		entry.ID = id
		return nil
	})
	if err != nil {
		return Entry{}, err
	}
	return entry, nil
}

// CreateBatchDetail consumes dyestuff at batch level, keyed by the batch
// code in the ledger.
func (s *Service) CreateBatchDetail(ctx context.Context, in CreateDetailInput) (BatchDetail, error) {
	if err := in.validate(); err != nil {
		return BatchDetail{}, err
	}
	var detail BatchDetail
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		batch, err := tx.GetBatch(ctx, in.OwnerID)
		if err != nil {
			return err
		}
		entry, err := tx.Costing().AvgCostForProduct(ctx, in.ProductID)
		if err != nil {
			return err
		}
		detail = BatchDetail{
			BatchID:      in.OwnerID,
			ProductID:    in.ProductID,
			Quantity:     in.Quantity,
			UnitCostUsed: entry.AvgCost,
			TotalCost:    in.Quantity * entry.AvgCost,
		}
		id, err := tx.InsertBatchDetail(ctx, detail)
		if err != nil {
			return err
		}
		detail.ID = id
		return insertConsumptionPair(ctx, tx.Ledger(), batch.Code, batch.Date, detail.ProductID, detail.Quantity)
	})
	if err != nil {
		return BatchDetail{}, err
	}
	return detail, nil
}

func (s *Service) UpdateBatchDetail(ctx context.Context, id int64, in UpdateDetailInput) (BatchDetail, error) {
	if err := in.validate(); err != nil {
		return BatchDetail{}, err
	}
	var updated BatchDetail
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		detail, err := tx.GetBatchDetail(ctx, id)
		if err != nil {
			return err
		}
		batch, err := tx.GetBatch(ctx, detail.BatchID)
		if err != nil {
			return err
		}
		detail.Quantity = in.Quantity
		detail.TotalCost = detail.Quantity * detail.UnitCostUsed
		if err := tx.UpdateBatchDetail(ctx, detail); err != nil {
			return err
		}
		updated = detail
		return updateConsumptionPair(ctx, tx.Ledger(), batch.Code, batch.Date, detail.ProductID, detail.Quantity)
	})
	if err != nil {
		return BatchDetail{}, err
	}
	return updated, nil
}

func (s *Service) DeleteBatchDetail(ctx context.Context, id int64) error {
	return s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		detail, err := tx.GetBatchDetail(ctx, id)
		if err != nil {
			return err
		}
		batch, err := tx.GetBatch(ctx, detail.BatchID)
		if err != nil {
			return err
		}
		if err := tx.DeleteBatchDetail(ctx, id); err != nil {
			return err
		}
		return deleteConsumptionPair(ctx, tx.Ledger(), batch.Code, detail.ProductID)
	})
}

// CreateEntryDetail consumes auxiliary chemicals for one production order,
// keyed by the entry code in the ledger.
func (s *Service) CreateEntryDetail(ctx context.Context, in CreateDetailInput) (EntryDetail, error) {
	if err := in.validate(); err != nil {
		return EntryDetail{}, err
	}
	var detail EntryDetail
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		entry, err := tx.GetEntry(ctx, in.OwnerID)
		if err != nil {
			return err
		}
		cost, err := tx.Costing().AvgCostForProduct(ctx, in.ProductID)
		if err != nil {
			return err
		}
		detail = EntryDetail{
			EntryID:      in.OwnerID,
			ProductID:    in.ProductID,
			Quantity:     in.Quantity,
			UnitCostUsed: cost.AvgCost,
			TotalCost:    in.Quantity * cost.AvgCost,
		}
		id, err := tx.InsertEntryDetail(ctx, detail)
		if err != nil {
			return err
		}
		detail.ID = id
		return insertConsumptionPair(ctx, tx.Ledger(), entry.Code, entry.Date, detail.ProductID, detail.Quantity)
	})
	if err != nil {
		return EntryDetail{}, err
	}
	return detail, nil
}

func (s *Service) UpdateEntryDetail(ctx context.Context, id int64, in UpdateDetailInput) (EntryDetail, error) {
	if err := in.validate(); err != nil {
		return EntryDetail{}, err
	}
	var updated EntryDetail
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		detail, err := tx.GetEntryDetail(ctx, id)
		if err != nil {
			return err
		}
		entry, err := tx.GetEntry(ctx, detail.EntryID)
		if err != nil {
			return err
		}
		detail.Quantity = in.Quantity
		detail.TotalCost = detail.Quantity * detail.UnitCostUsed
		if err := tx.UpdateEntryDetail(ctx, detail); err != nil {
			return err
		}
		updated = detail
		return updateConsumptionPair(ctx, tx.Ledger(), entry.Code, entry.Date, detail.ProductID, detail.Quantity)
	})
	if err != nil {
		return EntryDetail{}, err
	}
	return updated, nil
}

func (s *Service) DeleteEntryDetail(ctx context.Context, id int64) error {
	return s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		detail, err := tx.GetEntryDetail(ctx, id)
		if err != nil {
			return err
		}
		entry, err := tx.GetEntry(ctx, detail.EntryID)
		if err != nil {
			return err
		}
		if err := tx.DeleteEntryDetail(ctx, id); err != nil {
			return err
		}
		return deleteConsumptionPair(ctx, tx.Ledger(), entry.Code, detail.ProductID)
	})
}

func (s *Service) GetBatch(ctx context.Context, id int64) (Batch, error) {
	return s.repo.GetBatch(ctx, id)
}

func (s *Service) GetBatchByCode(ctx context.Context, code string) (Batch, error) {
	return s.repo.GetBatchByCode(ctx, code)
}

func (s *Service) GetEntry(ctx context.Context, id int64) (Entry, error) {
	return s.repo.GetEntry(ctx, id)
}

func (s *Service) GetEntryByCode(ctx context.Context, code string) (Entry, error) {
	return s.repo.GetEntryByCode(ctx, code)
}

func (s *Service) ListBatchDetails(ctx context.Context, batchID int64) ([]BatchDetail, error) {
	return s.repo.ListBatchDetails(ctx, batchID)
}

func (s *Service) ListEntryDetails(ctx context.Context, entryID int64) ([]EntryDetail, error) {
	return s.repo.ListEntryDetails(ctx, entryID)
}

func insertConsumptionPair(ctx context.Context, w ledger.Writer, code string, date time.Time, productID int64, qty float64) error {
	out := ledger.Entry{
		Date:        date,
		Ref:         ledger.RefColorKitchen,
		RefCode:     code,
		Location:    ledger.LocationKitchen,
		QuantityOut: qty,
		ProductID:   productID,
	}
	if err := w.Insert(ctx, out); err != nil {
		return err
	}
	usage := out
	usage.Location = ledger.LocationUsage
	usage.QuantityOut = 0
	usage.QuantityIn = qty
	return w.Insert(ctx, usage)
}

func updateConsumptionPair(ctx context.Context, w ledger.Writer, code string, date time.Time, productID int64, qty float64) error {
	key := ledger.Key{
		Ref:       ledger.RefColorKitchen,
		RefCode:   code,
		ProductID: productID,
		Location:  ledger.LocationKitchen,
	}
	if err := w.UpdateQuantity(ctx, key, date, 0, qty); err != nil {
		return err
	}
	key.Location = ledger.LocationUsage
	return w.UpdateQuantity(ctx, key, date, qty, 0)
}

func deleteConsumptionPair(ctx context.Context, w ledger.Writer, code string, productID int64) error {
	return w.Delete(ctx, ledger.RefColorKitchen, code, productID,
		ledger.LocationKitchen, ledger.LocationUsage)
}
