package movement

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/chromatex/dyehouse/internal/costing"
	"github.com/chromatex/dyehouse/internal/ledger"
	"github.com/chromatex/dyehouse/internal/ledger/ledgertest"
)

type memoryRepo struct {
	headers    map[int64]StockMovement
	lines      map[int64]Line
	nextHeader int64
	nextLine   int64
	ledger     *ledgertest.MemoryWriter
	costs      map[int64]costing.CacheEntry
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		headers:    map[int64]StockMovement{},
		lines:      map[int64]Line{},
		nextHeader: 1,
		nextLine:   1,
		ledger:     ledgertest.NewMemoryWriter(),
		costs:      map[int64]costing.CacheEntry{},
	}
}

func (m *memoryRepo) WithTx(ctx context.Context, fn func(ctx context.Context, tx TxRepository) error) error {
	return fn(ctx, m)
}

func (m *memoryRepo) Ledger() ledger.Writer { return m.ledger }
func (m *memoryRepo) Costing() CostReader   { return (*memoryCosts)(m) }

func (m *memoryRepo) GetHeader(_ context.Context, id int64) (StockMovement, error) {
	h, ok := m.headers[id]
	if !ok {
		return StockMovement{}, ErrNotFound
	}
	return h, nil
}

func (m *memoryRepo) GetHeaderByCode(_ context.Context, code string) (StockMovement, error) {
	for _, h := range m.headers {
		if h.Code == code {
			return h, nil
		}
	}
	return StockMovement{}, ErrNotFound
}

func (m *memoryRepo) InsertHeader(_ context.Context, h StockMovement) (int64, error) {
	h.ID = m.nextHeader
	m.nextHeader++
	m.headers[h.ID] = h
	return h.ID, nil
}

func (m *memoryRepo) GetLine(_ context.Context, id int64) (Line, error) {
	l, ok := m.lines[id]
	if !ok {
		return Line{}, ErrNotFound
	}
	return l, nil
}

func (m *memoryRepo) InsertLine(_ context.Context, l Line) (int64, error) {
	l.ID = m.nextLine
	m.nextLine++
	m.lines[l.ID] = l
	return l.ID, nil
}

func (m *memoryRepo) UpdateLine(_ context.Context, l Line) error {
	if _, ok := m.lines[l.ID]; !ok {
		return ErrNotFound
	}
	m.lines[l.ID] = l
	return nil
}

func (m *memoryRepo) DeleteLine(_ context.Context, id int64) error {
	if _, ok := m.lines[id]; !ok {
		return ErrNotFound
	}
	delete(m.lines, id)
	return nil
}

func (m *memoryRepo) ListLines(_ context.Context, headerID int64) ([]Line, error) {
	var out []Line
	for _, l := range m.lines {
		if l.StockMovementID == headerID {
			out = append(out, l)
		}
	}
	return out, nil
}

type memoryCosts memoryRepo

func (m *memoryCosts) AvgCostForProduct(_ context.Context, productID int64) (costing.CacheEntry, error) {
	entry, ok := m.costs[productID]
	if !ok {
		return costing.CacheEntry{}, costing.ErrNoCostHistory
	}
	return entry, nil
}

func newTestService(t *testing.T) (*Service, *memoryRepo, StockMovement) {
	t.Helper()
	repo := newMemoryRepo()
	svc := NewService(slog.Default(), repo)
	header, err := svc.CreateHeader(context.Background(), CreateHeaderInput{
		Code: "SM-2026-001",
		Date: time.Date(2026, 3, 12, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	return svc, repo, header
}

func TestCreateLineStampsCostAndPairsLedger(t *testing.T) {
	svc, repo, header := newTestService(t)
	ctx := context.Background()
	const dyeRed int64 = 42
	repo.costs[dyeRed] = costing.CacheEntry{ProductID: dyeRed, AvgCost: 12.0}

	line, err := svc.CreateLine(ctx, CreateLineInput{
		StockMovementID: header.ID, ProductID: dyeRed, Quantity: 30,
	})
	require.NoError(t, err)
	require.InDelta(t, 12.0, line.UnitCostUsed, 0.001)
	require.InDelta(t, 360.0, line.TotalCost, 0.001)

	rows := repo.ledger.Find(ledger.RefStockMovement, header.Code, dyeRed)
	require.Len(t, rows, 2)
	byLoc := map[ledger.Location]ledger.Entry{}
	for _, e := range rows {
		byLoc[e.Location] = e
	}
	require.InDelta(t, 30.0, byLoc[ledger.LocationGudang].QuantityOut, 0.001)
	require.InDelta(t, 0.0, byLoc[ledger.LocationGudang].QuantityIn, 0.001)
	require.InDelta(t, 30.0, byLoc[ledger.LocationKitchen].QuantityIn, 0.001)
	require.InDelta(t, 0.0, byLoc[ledger.LocationKitchen].QuantityOut, 0.001)
}

func TestCreateLineWithoutCostHistoryFails(t *testing.T) {
	svc, repo, header := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateLine(ctx, CreateLineInput{
		StockMovementID: header.ID, ProductID: 9, Quantity: 5,
	})
	require.ErrorIs(t, err, costing.ErrNoCostHistory)
	require.Empty(t, repo.ledger.Entries())
	require.Empty(t, repo.lines)
}

func TestUpdateLineKeepsCostSnapshot(t *testing.T) {
	svc, repo, header := newTestService(t)
	ctx := context.Background()
	repo.costs[7] = costing.CacheEntry{ProductID: 7, AvgCost: 10.0}

	line, err := svc.CreateLine(ctx, CreateLineInput{
		StockMovementID: header.ID, ProductID: 7, Quantity: 20,
	})
	require.NoError(t, err)

	// Cost changes after the line was priced; the snapshot must not move.
	repo.costs[7] = costing.CacheEntry{ProductID: 7, AvgCost: 99.0}

	updated, err := svc.UpdateLine(ctx, line.ID, UpdateLineInput{Quantity: 25})
	require.NoError(t, err)
	require.InDelta(t, 10.0, updated.UnitCostUsed, 0.001)
	require.InDelta(t, 250.0, updated.TotalCost, 0.001)

	rows := repo.ledger.Find(ledger.RefStockMovement, header.Code, 7)
	require.Len(t, rows, 2)
	for _, e := range rows {
		switch e.Location {
		case ledger.LocationGudang:
			require.InDelta(t, 25.0, e.QuantityOut, 0.001)
		case ledger.LocationKitchen:
			require.InDelta(t, 25.0, e.QuantityIn, 0.001)
		}
	}
}

func TestDeleteLineRemovesBothLedgerRows(t *testing.T) {
	svc, repo, header := newTestService(t)
	ctx := context.Background()
	repo.costs[3] = costing.CacheEntry{ProductID: 3, AvgCost: 4.0}

	line, err := svc.CreateLine(ctx, CreateLineInput{
		StockMovementID: header.ID, ProductID: 3, Quantity: 8,
	})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteLine(ctx, line.ID))
	require.Empty(t, repo.ledger.Find(ledger.RefStockMovement, header.Code, 3))
	require.Empty(t, repo.lines)
}
