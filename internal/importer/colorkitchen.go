package importer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/chromatex/dyehouse/internal/colorkitchen"
)

// ColorKitchenImporter loads batch and entry consumption rows. Unlike the
// other importers it validates every reference up front and inserts
// nothing when any row fails: a production order with half its recipe
// loaded is worse than one that is missing entirely.
type ColorKitchenImporter struct {
	logger   *slog.Logger
	products ProductDirectory
	designs  DesignDirectory
	writer   ColorKitchenWriter
}

func NewColorKitchenImporter(logger *slog.Logger, products ProductDirectory, designs DesignDirectory, writer ColorKitchenWriter) *ColorKitchenImporter {
	return &ColorKitchenImporter{logger: logger, products: products, designs: designs, writer: writer}
}

func (imp *ColorKitchenImporter) Import(ctx context.Context, rows []ColorKitchenRow) (Summary, error) {
	if len(rows) == 0 {
		return Summary{}, ErrNoRows
	}
	summary := Summary{BatchID: uuid.NewString()}

	// Validation pass: resolve every reference before any insert.
	productIDs := make([]int64, len(rows))
	designIDs := make([]int64, len(rows))
	for i, row := range rows {
		rowNo := i + 1
		product, err := imp.products.GetByName(ctx, row.ProductName)
		if err != nil {
			summary.skip(rowNo, fmt.Sprintf("product not found: %s", row.ProductName))
			continue
		}
		productIDs[i] = product.ID

		if row.EntryCode != "" {
			design, err := imp.designs.GetByCode(ctx, row.DesignCode)
			if err != nil {
				summary.skip(rowNo, fmt.Sprintf("design not found: %s", row.DesignCode))
				continue
			}
			designIDs[i] = design.ID
		}
	}
	if len(summary.Errors) > 0 {
		summary.Skipped = len(rows)
		return summary, ErrBatchRejected
	}

	batches := map[string]colorkitchen.Batch{}
	entries := map[string]colorkitchen.Entry{}
	for i, row := range rows {
		rowNo := i + 1

		batch, ok := batches[row.BatchCode]
		if !ok {
			var err error
			batch, err = imp.ensureBatch(ctx, row)
			if err != nil {
				return summary, fmt.Errorf("importer: batch %s: %w", row.BatchCode, err)
			}
			batches[row.BatchCode] = batch
		}

		if row.EntryCode == "" {
			if _, err := imp.writer.CreateBatchDetail(ctx, colorkitchen.CreateDetailInput{
				OwnerID:   batch.ID,
				ProductID: productIDs[i],
				Quantity:  row.Quantity,
			}); err != nil {
				summary.skip(rowNo, err.Error())
				continue
			}
			summary.Inserted++
			continue
		}

		entry, ok := entries[row.EntryCode]
		if !ok {
			var err error
			entry, err = imp.ensureEntry(ctx, row, batch.ID, designIDs[i])
			if err != nil {
				return summary, fmt.Errorf("importer: entry %s: %w", row.EntryCode, err)
			}
			entries[row.EntryCode] = entry
		}
		if _, err := imp.writer.CreateEntryDetail(ctx, colorkitchen.CreateDetailInput{
			OwnerID:   entry.ID,
			ProductID: productIDs[i],
			Quantity:  row.Quantity,
		}); err != nil {
			summary.skip(rowNo, err.Error())
			continue
		}
		summary.Inserted++
	}

	imp.logger.Info("color kitchen import finished",
		slog.String("batch_id", summary.BatchID),
		slog.Int("inserted", summary.Inserted),
		slog.Int("skipped", summary.Skipped))
	return summary, nil
}

func (imp *ColorKitchenImporter) ensureBatch(ctx context.Context, row ColorKitchenRow) (colorkitchen.Batch, error) {
	batch, err := imp.writer.GetBatchByCode(ctx, row.BatchCode)
	if err == nil {
		return batch, nil
	}
	if !errors.Is(err, colorkitchen.ErrNotFound) {
		return colorkitchen.Batch{}, err
	}
	return imp.writer.CreateBatch(ctx, colorkitchen.CreateBatchInput{
		Code: row.BatchCode,
		Date: row.Date,
	})
}

func (imp *ColorKitchenImporter) ensureEntry(ctx context.Context, row ColorKitchenRow, batchID, designID int64) (colorkitchen.Entry, error) {
	entry, err := imp.writer.GetEntryByCode(ctx, row.EntryCode)
	if err == nil {
		return entry, nil
	}
	if !errors.Is(err, colorkitchen.ErrNotFound) {
		return colorkitchen.Entry{}, err
	}
	return imp.writer.CreateEntry(ctx, colorkitchen.CreateEntryInput{
		Code:          row.EntryCode,
		Date:          row.Date,
		Rolls:         row.Rolls,
		PasteQuantity: row.PasteQuantity,
		DesignID:      designID,
		BatchID:       batchID,
	})
}
