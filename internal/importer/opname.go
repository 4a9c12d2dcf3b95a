package importer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/chromatex/dyehouse/internal/opname"
)

// OpnameImporter loads counted stock rows; the opname service derives the
// system quantity and books the true-up entries per row.
type OpnameImporter struct {
	logger   *slog.Logger
	products ProductDirectory
	writer   OpnameWriter
}

func NewOpnameImporter(logger *slog.Logger, products ProductDirectory, writer OpnameWriter) *OpnameImporter {
	return &OpnameImporter{logger: logger, products: products, writer: writer}
}

func (imp *OpnameImporter) Import(ctx context.Context, rows []OpnameRow) (Summary, error) {
	if len(rows) == 0 {
		return Summary{}, ErrNoRows
	}
	summary := Summary{BatchID: uuid.NewString()}
	headers := map[string]opname.StockOpname{}

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

		if _, err := imp.writer.CreateDetail(ctx, opname.CreateDetailInput{
			OpnameID:         header.ID,
			ProductID:        product.ID,
			PhysicalQuantity: row.PhysicalQuantity,
		}); err != nil {
			summary.skip(rowNo, err.Error())
			continue
		}
		summary.Inserted++
	}

	imp.logger.Info("opname import finished",
		slog.String("batch_id", summary.BatchID),
		slog.Int("inserted", summary.Inserted),
		slog.Int("skipped", summary.Skipped))
	return summary, nil
}

func (imp *OpnameImporter) ensureHeader(ctx context.Context, row OpnameRow) (opname.StockOpname, error) {
	header, err := imp.writer.GetHeaderByCode(ctx, row.HeaderCode)
	if err == nil {
		return header, nil
	}
	if !errors.Is(err, opname.ErrNotFound) {
		return opname.StockOpname{}, err
	}
	return imp.writer.CreateHeader(ctx, opname.CreateHeaderInput{
		Code: row.HeaderCode,
		Date: row.Date,
	})
}
