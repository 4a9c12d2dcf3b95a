package importer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/chromatex/dyehouse/internal/costing"
	"github.com/chromatex/dyehouse/internal/movement"
)

// MovementImporter loads stock movement rows. A product without purchase
// history cannot be priced, so that row is skipped and reported; the rest
// of the batch continues.
type MovementImporter struct {
	logger   *slog.Logger
	products ProductDirectory
	writer   MovementWriter
}

func NewMovementImporter(logger *slog.Logger, products ProductDirectory, writer MovementWriter) *MovementImporter {
	return &MovementImporter{logger: logger, products: products, writer: writer}
}

func (imp *MovementImporter) Import(ctx context.Context, rows []MovementRow) (Summary, error) {
	if len(rows) == 0 {
		return Summary{}, ErrNoRows
	}
	summary := Summary{BatchID: uuid.NewString()}
	headers := map[string]movement.StockMovement{}

	for i, row := range rows {
		rowNo := i + 1

		product, err := imp.products.GetByName(ctx, row.ProductName)
		if err != nil {
			summary.skip(rowNo, fmt.Sprintf("product not found: %s", row.ProductName))
			continue
		}

		header, ok := headers[row.HeaderCode]
		if !ok {
			header, err = imp.ensureHeader(ctx, row)
			if err != nil {
				summary.skip(rowNo, fmt.Sprintf("header %s: %v", row.HeaderCode, err))
				continue
			}
			headers[row.HeaderCode] = header
		}

		_, err = imp.writer.CreateLine(ctx, movement.CreateLineInput{
			StockMovementID: header.ID,
			ProductID:       product.ID,
			Quantity:        row.Quantity,
		})
		if err != nil {
			if errors.Is(err, costing.ErrNoCostHistory) {
				summary.skip(rowNo, fmt.Sprintf("no cost history for product: %s", row.ProductName))
			} else {
				summary.skip(rowNo, err.Error())
			}
			continue
		}
		summary.Inserted++
	}

	imp.logger.Info("movement import finished",
		slog.String("batch_id", summary.BatchID),
		slog.Int("inserted", summary.Inserted),
		slog.Int("skipped", summary.Skipped))
	return summary, nil
}

func (imp *MovementImporter) ensureHeader(ctx context.Context, row MovementRow) (movement.StockMovement, error) {
	header, err := imp.writer.GetHeaderByCode(ctx, row.HeaderCode)
	if err == nil {
		return header, nil
	}
	if !errors.Is(err, movement.ErrNotFound) {
		return movement.StockMovement{}, err
	}
	return imp.writer.CreateHeader(ctx, movement.CreateHeaderInput{
		Code: row.HeaderCode,
		Date: row.Date,
	})
}
