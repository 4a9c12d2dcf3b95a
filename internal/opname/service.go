package opname

import (
	"context"
	"log/slog"
	"math"

	"github.com/chromatex/dyehouse/internal/ledger"
)

// Service owns the reconciliation write path. The detail write and the
// true-up ledger entries share one transaction.
type Service struct {
	logger *slog.Logger
	repo   Repository
}

func NewService(logger *slog.Logger, repo Repository) *Service {
	return &Service{logger: logger, repo: repo}
}

func (s *Service) CreateHeader(ctx context.Context, in CreateHeaderInput) (StockOpname, error) {
	if err := in.validate(); err != nil {
		return StockOpname{}, err
	}
	header := StockOpname{Code: in.Code, Date: in.Date}
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		id, err := tx.InsertHeader(ctx, header)
		if err != nil {
			return err
		}
		header.ID = id
		return nil
	})
	if err != nil {
		return StockOpname{}, err
	}
	return header, nil
}

// CreateDetail reconciles one product: the warehouse balance as of the
// opname date is the system quantity, the count is the physical one. A
// positive difference books stock out of the warehouse; a negative one is
// treated as an unrecorded kitchen-to-warehouse return discovered by the
// count and books it back in.
func (s *Service) CreateDetail(ctx context.Context, in CreateDetailInput) (Detail, error) {
	if err := in.validate(); err != nil {
		return Detail{}, err
	}
	var detail Detail
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		header, err := tx.GetHeader(ctx, in.OpnameID)
		if err != nil {
			return err
		}
		system, err := tx.Balances().LocationBalance(ctx, in.ProductID, ledger.LocationGudang, header.Date)
		if err != nil {
			return err
		}

		detail = Detail{
			OpnameID:         in.OpnameID,
			ProductID:        in.ProductID,
			SystemQuantity:   system,
			PhysicalQuantity: in.PhysicalQuantity,
			Difference:       system - in.PhysicalQuantity,
		}
		id, err := tx.InsertDetail(ctx, detail)
		if err != nil {
			return err
		}
		detail.ID = id

		switch {
		case detail.Difference > 0:
			return tx.Ledger().Insert(ctx, ledger.Entry{
				Date:        header.Date,
				Ref:         ledger.RefStockOpname,
				RefCode:     header.Code,
				Location:    ledger.LocationGudang,
				QuantityOut: detail.Difference,
				ProductID:   detail.ProductID,
			})
		case detail.Difference < 0:
			shortfall := math.Abs(detail.Difference)
			if err := tx.Ledger().Insert(ctx, ledger.Entry{
				Date:        header.Date,
				Ref:         ledger.RefStockOpname,
				RefCode:     header.Code,
				Location:    ledger.LocationKitchen,
				QuantityOut: shortfall,
				ProductID:   detail.ProductID,
			}); err != nil {
				return err
			}
			return tx.Ledger().Insert(ctx, ledger.Entry{
				Date:       header.Date,
				Ref:        ledger.RefStockOpname,
				RefCode:    header.Code,
				Location:   ledger.LocationGudang,
				QuantityIn: shortfall,
				ProductID:  detail.ProductID,
			})
		}
		return nil
	})
	if err != nil {
		return Detail{}, err
	}
	return detail, nil
}

// DeleteDetail removes a counted row and any true-up entries it produced.
func (s *Service) DeleteDetail(ctx context.Context, id int64) error {
	return s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		detail, err := tx.GetDetail(ctx, id)
		if err != nil {
			return err
		}
		header, err := tx.GetHeader(ctx, detail.OpnameID)
		if err != nil {
			return err
		}
		if err := tx.DeleteDetail(ctx, id); err != nil {
			return err
		}
		return tx.Ledger().Delete(ctx, ledger.RefStockOpname, header.Code, detail.ProductID)
	})
}

func (s *Service) GetHeader(ctx context.Context, id int64) (StockOpname, error) {
	return s.repo.GetHeader(ctx, id)
}

func (s *Service) GetHeaderByCode(ctx context.Context, code string) (StockOpname, error) {
	return s.repo.GetHeaderByCode(ctx, code)
}

func (s *Service) ListDetails(ctx context.Context, opnameID int64) ([]Detail, error) {
	return s.repo.ListDetails(ctx, opnameID)
}
