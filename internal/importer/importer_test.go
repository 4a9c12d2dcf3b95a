package importer

import (
	"context"
	"log/slog"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/chromatex/dyehouse/internal/colorkitchen"
	"github.com/chromatex/dyehouse/internal/costing"
	"github.com/chromatex/dyehouse/internal/masterdata/designs"
	"github.com/chromatex/dyehouse/internal/masterdata/products"
	"github.com/chromatex/dyehouse/internal/masterdata/shared"
	"github.com/chromatex/dyehouse/internal/masterdata/suppliers"
	"github.com/chromatex/dyehouse/internal/movement"
	"github.com/chromatex/dyehouse/internal/opname"
	"github.com/chromatex/dyehouse/internal/purchasing"
)

type stubProducts map[string]int64

func (s stubProducts) GetByName(_ context.Context, name string) (products.Product, error) {
	id, ok := s[shared.NormalizeProductName(name)]
	if !ok {
		return products.Product{}, shared.ErrNotFound
	}
	return products.Product{ID: id, Name: shared.NormalizeProductName(name)}, nil
}

type stubSuppliers map[string]int64

func (s stubSuppliers) GetByCode(_ context.Context, code string) (suppliers.Supplier, error) {
	id, ok := s[code]
	if !ok {
		return suppliers.Supplier{}, shared.ErrNotFound
	}
	return suppliers.Supplier{ID: id, Code: code}, nil
}

type stubDesigns map[string]int64

func (s stubDesigns) GetByCode(_ context.Context, code string) (designs.Design, error) {
	id, ok := s[code]
	if !ok {
		return designs.Design{}, shared.ErrNotFound
	}
	return designs.Design{ID: id, Code: code}, nil
}

type stubPurchasingWriter struct {
	headers    map[string]purchasing.Purchasing
	nextID     int64
	lines      []purchasing.CreateLineInput
	policies   []costing.UpdatePolicy
	recomputed [][]int64
}

func newStubPurchasingWriter() *stubPurchasingWriter {
	return &stubPurchasingWriter{headers: map[string]purchasing.Purchasing{}, nextID: 1}
}

func (s *stubPurchasingWriter) GetHeaderByCode(_ context.Context, code string) (purchasing.Purchasing, error) {
	h, ok := s.headers[code]
	if !ok {
		return purchasing.Purchasing{}, purchasing.ErrNotFound
	}
	return h, nil
}

func (s *stubPurchasingWriter) CreateHeader(_ context.Context, in purchasing.CreateHeaderInput) (purchasing.Purchasing, error) {
	h := purchasing.Purchasing{ID: s.nextID, Code: in.Code, Date: in.Date, SupplierID: in.SupplierID}
	s.nextID++
	s.headers[in.Code] = h
	return h, nil
}

func (s *stubPurchasingWriter) CreateLine(_ context.Context, in purchasing.CreateLineInput, policy costing.UpdatePolicy) (purchasing.Line, error) {
	s.lines = append(s.lines, in)
	s.policies = append(s.policies, policy)
	return purchasing.Line{ID: int64(len(s.lines))}, nil
}

func (s *stubPurchasingWriter) RecomputeProducts(_ context.Context, ids []int64) error {
	s.recomputed = append(s.recomputed, ids)
	return nil
}

type stubQueue struct {
	batches []string
}

func (s *stubQueue) EnqueueCostViewRefresh(_ context.Context, batchID string) error {
	s.batches = append(s.batches, batchID)
	return nil
}

type stubInvalidator struct {
	dropped [][]int64
}

func (s *stubInvalidator) Invalidate(_ context.Context, productIDs ...int64) error {
	s.dropped = append(s.dropped, productIDs)
	return nil
}

func TestPurchasingImportDefersAndBatchesRecompute(t *testing.T) {
	prods := stubProducts{"DYE RED": 1, "DYE BLUE": 2}
	sups := stubSuppliers{"SUP-01": 10}
	writer := newStubPurchasingWriter()
	queue := &stubQueue{}
	cache := &stubInvalidator{}
	imp := NewPurchasingImporter(slog.Default(), prods, sups, writer, queue, cache)

	date := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	rows := []PurchasingRow{
		{HeaderCode: "PB-1", Date: date, SupplierCode: "SUP-01", ProductName: "dye red", Quantity: 100, Price: 10},
		{HeaderCode: "PB-1", Date: date, SupplierCode: "SUP-01", ProductName: "Dye Blue", Quantity: 50, Price: 4},
		{HeaderCode: "PB-1", Date: date, SupplierCode: "SUP-01", ProductName: "dye red", Quantity: 50, Price: 16},
		{HeaderCode: "PB-1", Date: date, SupplierCode: "SUP-01", ProductName: "unknown dye", Quantity: 5, Price: 1},
	}
	summary, err := imp.Import(context.Background(), rows)
	require.NoError(t, err)
	require.Equal(t, 3, summary.Inserted)
	require.Equal(t, 1, summary.Skipped)
	require.Len(t, summary.Errors, 1)
	require.Equal(t, 4, summary.Errors[0].Row)
	require.NotEmpty(t, summary.BatchID)

	for _, p := range writer.policies {
		require.Equal(t, costing.DeferRecompute, p)
	}
	require.Len(t, writer.recomputed, 1)
	got := append([]int64(nil), writer.recomputed[0]...)
	sort.Slice(got, func(i, j int) bool { return got[i] < got[j] })
	require.Equal(t, []int64{1, 2}, got)

	require.Equal(t, []string{summary.BatchID}, queue.batches)
	require.Len(t, writer.headers, 1)
	require.Len(t, cache.dropped, 1)
	require.ElementsMatch(t, []int64{1, 2}, cache.dropped[0])
}

func TestPurchasingImportEmptyBatch(t *testing.T) {
	imp := NewPurchasingImporter(slog.Default(), stubProducts{}, stubSuppliers{}, newStubPurchasingWriter(), nil, nil)
	_, err := imp.Import(context.Background(), nil)
	require.ErrorIs(t, err, ErrNoRows)
}

type stubMovementWriter struct {
	headers map[string]movement.StockMovement
	nextID  int64
	noCost  map[int64]bool
	lines   []movement.CreateLineInput
}

func newStubMovementWriter() *stubMovementWriter {
	return &stubMovementWriter{headers: map[string]movement.StockMovement{}, nextID: 1, noCost: map[int64]bool{}}
}

func (s *stubMovementWriter) GetHeaderByCode(_ context.Context, code string) (movement.StockMovement, error) {
	h, ok := s.headers[code]
	if !ok {
		return movement.StockMovement{}, movement.ErrNotFound
	}
	return h, nil
}

func (s *stubMovementWriter) CreateHeader(_ context.Context, in movement.CreateHeaderInput) (movement.StockMovement, error) {
	h := movement.StockMovement{ID: s.nextID, Code: in.Code, Date: in.Date}
	s.nextID++
	s.headers[in.Code] = h
	return h, nil
}

func (s *stubMovementWriter) CreateLine(_ context.Context, in movement.CreateLineInput) (movement.Line, error) {
	if s.noCost[in.ProductID] {
		return movement.Line{}, costing.ErrNoCostHistory
	}
	s.lines = append(s.lines, in)
	return movement.Line{ID: int64(len(s.lines))}, nil
}

func TestMovementImportSkipsUnpricedRows(t *testing.T) {
	prods := stubProducts{"CHEM A": 1, "CHEM B": 2}
	writer := newStubMovementWriter()
	writer.noCost[2] = true
	imp := NewMovementImporter(slog.Default(), prods, writer)

	date := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	summary, err := imp.Import(context.Background(), []MovementRow{
		{HeaderCode: "SM-1", Date: date, ProductName: "chem a", Quantity: 30},
		{HeaderCode: "SM-1", Date: date, ProductName: "chem b", Quantity: 10},
	})
	require.NoError(t, err)
	require.Equal(t, 1, summary.Inserted)
	require.Equal(t, 1, summary.Skipped)
	require.Contains(t, summary.Errors[0].Reason, "no cost history")
	require.Len(t, writer.lines, 1)
}

type stubCKWriter struct {
	batches      map[string]colorkitchen.Batch
	entries      map[string]colorkitchen.Entry
	nextID       int64
	batchDetails []colorkitchen.CreateDetailInput
	entryDetails []colorkitchen.CreateDetailInput
}

func newStubCKWriter() *stubCKWriter {
	return &stubCKWriter{batches: map[string]colorkitchen.Batch{}, entries: map[string]colorkitchen.Entry{}, nextID: 1}
}

func (s *stubCKWriter) GetBatchByCode(_ context.Context, code string) (colorkitchen.Batch, error) {
	b, ok := s.batches[code]
	if !ok {
		return colorkitchen.Batch{}, colorkitchen.ErrNotFound
	}
	return b, nil
}

func (s *stubCKWriter) CreateBatch(_ context.Context, in colorkitchen.CreateBatchInput) (colorkitchen.Batch, error) {
	b := colorkitchen.Batch{ID: s.nextID, Code: in.Code, Date: in.Date}
	s.nextID++
	s.batches[in.Code] = b
	return b, nil
}

func (s *stubCKWriter) GetEntryByCode(_ context.Context, code string) (colorkitchen.Entry, error) {
	e, ok := s.entries[code]
	if !ok {
		return colorkitchen.Entry{}, colorkitchen.ErrNotFound
	}
	return e, nil
}

func (s *stubCKWriter) CreateEntry(_ context.Context, in colorkitchen.CreateEntryInput) (colorkitchen.Entry, error) {
	e := colorkitchen.Entry{ID: s.nextID, Code: in.Code, Date: in.Date, DesignID: in.DesignID, BatchID: in.BatchID}
	s.nextID++
	s.entries[in.Code] = e
	return e, nil
}

func (s *stubCKWriter) CreateBatchDetail(_ context.Context, in colorkitchen.CreateDetailInput) (colorkitchen.BatchDetail, error) {
	s.batchDetails = append(s.batchDetails, in)
	return colorkitchen.BatchDetail{ID: int64(len(s.batchDetails))}, nil
}

func (s *stubCKWriter) CreateEntryDetail(_ context.Context, in colorkitchen.CreateDetailInput) (colorkitchen.EntryDetail, error) {
	s.entryDetails = append(s.entryDetails, in)
	return colorkitchen.EntryDetail{ID: int64(len(s.entryDetails))}, nil
}

func TestColorKitchenImportRejectsWholeBatchOnMissingReference(t *testing.T) {
	prods := stubProducts{"DYE RED": 1}
	des := stubDesigns{"D-100": 5}
	writer := newStubCKWriter()
	imp := NewColorKitchenImporter(slog.Default(), prods, des, writer)

	date := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	summary, err := imp.Import(context.Background(), []ColorKitchenRow{
		{BatchCode: "CKB-1", Date: date, ProductName: "dye red", Quantity: 10},
		{BatchCode: "CKB-1", EntryCode: "OPJ-1", DesignCode: "D-404", Date: date, ProductName: "dye red", Quantity: 2},
	})
	require.ErrorIs(t, err, ErrBatchRejected)
	require.Zero(t, summary.Inserted)
	require.Equal(t, 2, summary.Skipped)
	require.Empty(t, writer.batchDetails)
	require.Empty(t, writer.entryDetails)
	require.Empty(t, writer.batches)
}

func TestColorKitchenImportLoadsBatchAndEntryDetails(t *testing.T) {
	prods := stubProducts{"DYE RED": 1, "SODA ASH": 2}
	des := stubDesigns{"D-100": 5}
	writer := newStubCKWriter()
	imp := NewColorKitchenImporter(slog.Default(), prods, des, writer)

	date := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	summary, err := imp.Import(context.Background(), []ColorKitchenRow{
		{BatchCode: "CKB-1", Date: date, ProductName: "dye red", Quantity: 10},
		{BatchCode: "CKB-1", EntryCode: "OPJ-1", DesignCode: "D-100", Date: date, Rolls: 8, ProductName: "soda ash", Quantity: 3},
	})
	require.NoError(t, err)
	require.Equal(t, 2, summary.Inserted)
	require.Zero(t, summary.Skipped)
	require.Len(t, writer.batchDetails, 1)
	require.Len(t, writer.entryDetails, 1)
	require.Equal(t, writer.batches["CKB-1"].ID, writer.entries["OPJ-1"].BatchID)
}

type stubOpnameWriter struct {
	headers map[string]opname.StockOpname
	nextID  int64
	details []opname.CreateDetailInput
}

func newStubOpnameWriter() *stubOpnameWriter {
	return &stubOpnameWriter{headers: map[string]opname.StockOpname{}, nextID: 1}
}

func (s *stubOpnameWriter) GetHeaderByCode(_ context.Context, code string) (opname.StockOpname, error) {
	h, ok := s.headers[code]
	if !ok {
		return opname.StockOpname{}, opname.ErrNotFound
	}
	return h, nil
}

func (s *stubOpnameWriter) CreateHeader(_ context.Context, in opname.CreateHeaderInput) (opname.StockOpname, error) {
	h := opname.StockOpname{ID: s.nextID, Code: in.Code, Date: in.Date}
	s.nextID++
	s.headers[in.Code] = h
	return h, nil
}

func (s *stubOpnameWriter) CreateDetail(_ context.Context, in opname.CreateDetailInput) (opname.Detail, error) {
	s.details = append(s.details, in)
	return opname.Detail{ID: int64(len(s.details))}, nil
}

func TestOpnameImportSharesHeaderAcrossRows(t *testing.T) {
	prods := stubProducts{"DYE RED": 1, "SODA ASH": 2}
	writer := newStubOpnameWriter()
	imp := NewOpnameImporter(slog.Default(), prods, writer)

	date := time.Date(2026, 5, 31, 0, 0, 0, 0, time.UTC)
	summary, err := imp.Import(context.Background(), []OpnameRow{
		{HeaderCode: "SO-1", Date: date, ProductName: "dye red", PhysicalQuantity: 100},
		{HeaderCode: "SO-1", Date: date, ProductName: "soda ash", PhysicalQuantity: 40},
		{HeaderCode: "SO-1", Date: date, ProductName: "missing", PhysicalQuantity: 7},
	})
	require.NoError(t, err)
	require.Equal(t, 2, summary.Inserted)
	require.Equal(t, 1, summary.Skipped)
	require.Len(t, writer.headers, 1)
	require.Len(t, writer.details, 2)
}
