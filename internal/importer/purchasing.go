package importer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/chromatex/dyehouse/internal/costing"
	"github.com/chromatex/dyehouse/internal/purchasing"
)

// PurchasingImporter loads purchasing rows with deferred costing: lines go
// in without per-row recomputes, then one batched recompute covers every
// affected product. Recomputing full purchase history per row would make a
// multi-thousand-row load quadratic.
type PurchasingImporter struct {
	logger    *slog.Logger
	products  ProductDirectory
	suppliers SupplierDirectory
	writer    PurchasingWriter
	queue     ViewRefreshQueue
	cache     CostCacheInvalidator
}

func NewPurchasingImporter(logger *slog.Logger, products ProductDirectory, suppliers SupplierDirectory, writer PurchasingWriter, queue ViewRefreshQueue, cache CostCacheInvalidator) *PurchasingImporter {
	return &PurchasingImporter{
		logger:    logger,
		products:  products,
		suppliers: suppliers,
		writer:    writer,
		queue:     queue,
		cache:     cache,
	}
}

// Import inserts rows one by one, skipping and reporting rows whose
// product or supplier cannot be resolved.
func (imp *PurchasingImporter) Import(ctx context.Context, rows []PurchasingRow) (Summary, error) {
	if len(rows) == 0 {
		return Summary{}, ErrNoRows
	}
	summary := Summary{BatchID: uuid.NewString()}
	affected := map[int64]struct{}{}
	headers := map[string]purchasing.Purchasing{}

	for i, row := range rows {
		rowNo := i + 1

		product, err := imp.products.GetByName(ctx, row.ProductName)
		if err != nil {
			summary.skip(rowNo, fmt.Sprintf("product not found: %s", row.ProductName))
			continue
		}
		supplier, err := imp.suppliers.GetByCode(ctx, row.SupplierCode)
		if err != nil {
			summary.skip(rowNo, fmt.Sprintf("supplier not found: %s", row.SupplierCode))
			continue
		}

		header, ok := headers[row.HeaderCode]
		if !ok {
			header, err = imp.ensureHeader(ctx, row, supplier.ID)
			if err != nil {
				summary.skip(rowNo, fmt.Sprintf("header %s: %v", row.HeaderCode, err))
				continue
			}
			headers[row.HeaderCode] = header
		}

		_, err = imp.writer.CreateLine(ctx, purchasing.CreateLineInput{
			PurchasingID: header.ID,
			ProductID:    product.ID,
			Quantity:     row.Quantity,
			Price:        row.Price,
			Discount:     row.Discount,
			PPN:          row.PPN,
			PPH:          row.PPH,
			DPP:          row.DPP,
			TaxNo:        row.TaxNo,
			ExchangeRate: row.ExchangeRate,
		}, costing.DeferRecompute)
		if err != nil {
			summary.skip(rowNo, err.Error())
			continue
		}
		summary.Inserted++
		affected[product.ID] = struct{}{}
	}

	if len(affected) > 0 {
		ids := make([]int64, 0, len(affected))
		for id := range affected {
			ids = append(ids, id)
		}
		if err := imp.writer.RecomputeProducts(ctx, ids); err != nil {
			return summary, fmt.Errorf("importer: batched recompute: %w", err)
		}
		if imp.cache != nil {
			if err := imp.cache.Invalidate(ctx, ids...); err != nil {
				imp.logger.Warn("cost cache invalidate failed",
					slog.String("batch_id", summary.BatchID),
					slog.Any("error", err))
			}
		}
	}

	if imp.queue != nil {
		if err := imp.queue.EnqueueCostViewRefresh(ctx, summary.BatchID); err != nil {
			imp.logger.Warn("view refresh enqueue failed",
				slog.String("batch_id", summary.BatchID),
				slog.Any("error", err))
		}
	}

	imp.logger.Info("purchasing import finished",
		slog.String("batch_id", summary.BatchID),
		slog.Int("inserted", summary.Inserted),
		slog.Int("skipped", summary.Skipped))
	return summary, nil
}

func (imp *PurchasingImporter) ensureHeader(ctx context.Context, row PurchasingRow, supplierID int64) (purchasing.Purchasing, error) {
	header, err := imp.writer.GetHeaderByCode(ctx, row.HeaderCode)
	if err == nil {
		return header, nil
	}
	if !errors.Is(err, purchasing.ErrNotFound) {
		return purchasing.Purchasing{}, err
	}
	return imp.writer.CreateHeader(ctx, purchasing.CreateHeaderInput{
		Code:          row.HeaderCode,
		Date:          row.Date,
		PurchaseOrder: row.PurchaseOrder,
		SupplierID:    supplierID,
	})
}
