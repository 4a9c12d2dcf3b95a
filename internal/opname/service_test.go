package opname

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/chromatex/dyehouse/internal/ledger"
	"github.com/chromatex/dyehouse/internal/ledger/ledgertest"
)

type memoryRepo struct {
	headers    map[int64]StockOpname
	details    map[int64]Detail
	nextHeader int64
	nextDetail int64
	ledger     *ledgertest.MemoryWriter
	balances   map[int64]float64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		headers:    map[int64]StockOpname{},
		details:    map[int64]Detail{},
		nextHeader: 1,
		nextDetail: 1,
		ledger:     ledgertest.NewMemoryWriter(),
		balances:   map[int64]float64{},
	}
}

func (m *memoryRepo) WithTx(ctx context.Context, fn func(ctx context.Context, tx TxRepository) error) error {
	return fn(ctx, m)
}

func (m *memoryRepo) Ledger() ledger.Writer   { return m.ledger }
func (m *memoryRepo) Balances() BalanceReader { return (*memoryBalances)(m) }

func (m *memoryRepo) GetHeader(_ context.Context, id int64) (StockOpname, error) {
	h, ok := m.headers[id]
	if !ok {
		return StockOpname{}, ErrNotFound
	}
	return h, nil
}

func (m *memoryRepo) GetHeaderByCode(_ context.Context, code string) (StockOpname, error) {
	for _, h := range m.headers {
		if h.Code == code {
			return h, nil
		}
	}
	return StockOpname{}, ErrNotFound
}

func (m *memoryRepo) InsertHeader(_ context.Context, o StockOpname) (int64, error) {
	o.ID = m.nextHeader
	m.nextHeader++
	m.headers[o.ID] = o
	return o.ID, nil
}

func (m *memoryRepo) GetDetail(_ context.Context, id int64) (Detail, error) {
	d, ok := m.details[id]
	if !ok {
		return Detail{}, ErrNotFound
	}
	return d, nil
}

func (m *memoryRepo) InsertDetail(_ context.Context, d Detail) (int64, error) {
	d.ID = m.nextDetail
	m.nextDetail++
	m.details[d.ID] = d
	return d.ID, nil
}

func (m *memoryRepo) DeleteDetail(_ context.Context, id int64) error {
	if _, ok := m.details[id]; !ok {
		return ErrNotFound
	}
	delete(m.details, id)
	return nil
}

func (m *memoryRepo) ListDetails(_ context.Context, opnameID int64) ([]Detail, error) {
	var out []Detail
	for _, d := range m.details {
		if d.OpnameID == opnameID {
			out = append(out, d)
		}
	}
	return out, nil
}

type memoryBalances memoryRepo

func (m *memoryBalances) LocationBalance(_ context.Context, productID int64, _ ledger.Location, _ time.Time) (float64, error) {
	return m.balances[productID], nil
}

func newTestService(t *testing.T) (*Service, *memoryRepo, StockOpname) {
	t.Helper()
	repo := newMemoryRepo()
	svc := NewService(slog.Default(), repo)
	header, err := svc.CreateHeader(context.Background(), CreateHeaderInput{
		Code: "SO-2026-001",
		Date: time.Date(2026, 5, 31, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	return svc, repo, header
}

func TestOverstatedStockBooksOneWarehouseOut(t *testing.T) {
	svc, repo, header := newTestService(t)
	ctx := context.Background()
	repo.balances[1] = 120

	detail, err := svc.CreateDetail(ctx, CreateDetailInput{
		OpnameID: header.ID, ProductID: 1, PhysicalQuantity: 100,
	})
	require.NoError(t, err)
	require.InDelta(t, 120.0, detail.SystemQuantity, 0.001)
	require.InDelta(t, 20.0, detail.Difference, 0.001)

	rows := repo.ledger.Find(ledger.RefStockOpname, header.Code, 1)
	require.Len(t, rows, 1)
	require.Equal(t, ledger.LocationGudang, rows[0].Location)
	require.InDelta(t, 20.0, rows[0].QuantityOut, 0.001)
	require.InDelta(t, 0.0, rows[0].QuantityIn, 0.001)
}

func TestUnderstatedStockBooksKitchenReturn(t *testing.T) {
	svc, repo, header := newTestService(t)
	ctx := context.Background()
	repo.balances[2] = 80

	detail, err := svc.CreateDetail(ctx, CreateDetailInput{
		OpnameID: header.ID, ProductID: 2, PhysicalQuantity: 100,
	})
	require.NoError(t, err)
	require.InDelta(t, -20.0, detail.Difference, 0.001)

	rows := repo.ledger.Find(ledger.RefStockOpname, header.Code, 2)
	require.Len(t, rows, 2)
	byLoc := map[ledger.Location]ledger.Entry{}
	for _, e := range rows {
		byLoc[e.Location] = e
	}
	require.InDelta(t, 20.0, byLoc[ledger.LocationKitchen].QuantityOut, 0.001)
	require.InDelta(t, 20.0, byLoc[ledger.LocationGudang].QuantityIn, 0.001)
}

func TestExactCountWritesNothing(t *testing.T) {
	svc, repo, header := newTestService(t)
	ctx := context.Background()
	repo.balances[3] = 50

	detail, err := svc.CreateDetail(ctx, CreateDetailInput{
		OpnameID: header.ID, ProductID: 3, PhysicalQuantity: 50,
	})
	require.NoError(t, err)
	require.InDelta(t, 0.0, detail.Difference, 0.001)
	require.Empty(t, repo.ledger.Entries())
}

func TestDeleteDetailRemovesTrueUpRows(t *testing.T) {
	svc, repo, header := newTestService(t)
	ctx := context.Background()
	repo.balances[4] = 80

	detail, err := svc.CreateDetail(ctx, CreateDetailInput{
		OpnameID: header.ID, ProductID: 4, PhysicalQuantity: 100,
	})
	require.NoError(t, err)
	require.Len(t, repo.ledger.Find(ledger.RefStockOpname, header.Code, 4), 2)

	require.NoError(t, svc.DeleteDetail(ctx, detail.ID))
	require.Empty(t, repo.ledger.Find(ledger.RefStockOpname, header.Code, 4))
	require.Empty(t, repo.details)
}
