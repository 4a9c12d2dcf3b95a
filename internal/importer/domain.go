// Package importer loads validated spreadsheet rows into the document
// services in bulk. Failure semantics differ per importer: purchasing,
// movement and opname skip bad rows and report them, the color kitchen
// importer validates every row up front and rejects the whole batch on
// any missing reference.
package importer

import (
	"errors"
	"time"
)

var (
	// ErrNoRows means the parsed file produced nothing to import.
	ErrNoRows = errors.New("importer: no rows to import")
	// ErrBatchRejected means up-front validation failed and nothing was
	// inserted; the summary carries the per-row reasons.
	ErrBatchRejected = errors.New("importer: batch rejected")
)

// RowError records why one row was not imported. Row is 1-based over the
// input slice.
type RowError struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

// Summary is the structured result returned to the caller.
type Summary struct {
	BatchID  string     `json:"batch_id"`
	Inserted int        `json:"inserted"`
	Skipped  int        `json:"skipped"`
	Errors   []RowError `json:"errors"`
}

func (s *Summary) skip(row int, reason string) {
	s.Skipped++
	s.Errors = append(s.Errors, RowError{Row: row, Reason: reason})
}

// PurchasingRow is one validated purchasing spreadsheet row.
type PurchasingRow struct {
	HeaderCode    string
	Date          time.Time
	PurchaseOrder string
	SupplierCode  string
	ProductName   string
	Quantity      float64
	Price         float64
	Discount      float64
	PPN           float64
	PPH           float64
	DPP           float64
	TaxNo         string
	ExchangeRate  float64
}

// MovementRow is one validated stock movement spreadsheet row.
type MovementRow struct {
	HeaderCode  string
	Date        time.Time
	ProductName string
	Quantity    float64
}

// ColorKitchenRow is one validated color kitchen spreadsheet row. Rows
// with an EntryCode are auxiliary-chemical details on that entry; rows
// without one are dyestuff details on the batch.
type ColorKitchenRow struct {
	BatchCode     string
	EntryCode     string
	Date          time.Time
	DesignCode    string
	Rolls         int
	PasteQuantity float64
	ProductName   string
	Quantity      float64
}

// OpnameRow is one validated stock opname spreadsheet row.
type OpnameRow struct {
	HeaderCode       string
	Date             time.Time
	ProductName      string
	PhysicalQuantity float64
}
