package purchasing

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/chromatex/dyehouse/internal/costing"
	"github.com/chromatex/dyehouse/internal/ledger"
	"github.com/chromatex/dyehouse/internal/ledger/ledgertest"
	"github.com/chromatex/dyehouse/internal/masterdata/shared"
)

type memoryRepo struct {
	headers    map[int64]Purchasing
	lines      map[int64]Line
	nextHeader int64
	nextLine   int64
	ledger     *ledgertest.MemoryWriter
	cache      map[int64]costing.CacheEntry
	recomputes int
	headerErr  error
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		headers:    map[int64]Purchasing{},
		lines:      map[int64]Line{},
		nextHeader: 1,
		nextLine:   1,
		ledger:     ledgertest.NewMemoryWriter(),
		cache:      map[int64]costing.CacheEntry{},
	}
}

func (m *memoryRepo) WithTx(ctx context.Context, fn func(ctx context.Context, tx TxRepository) error) error {
	return fn(ctx, m)
}

func (m *memoryRepo) Ledger() ledger.Writer { return m.ledger }
func (m *memoryRepo) Costing() CostEngine   { return (*memoryCost)(m) }

func (m *memoryRepo) GetHeader(_ context.Context, id int64) (Purchasing, error) {
	if m.headerErr != nil {
		return Purchasing{}, m.headerErr
	}
	h, ok := m.headers[id]
	if !ok {
		return Purchasing{}, ErrNotFound
	}
	return h, nil
}

func (m *memoryRepo) GetHeaderByCode(_ context.Context, code string) (Purchasing, error) {
	for _, h := range m.headers {
		if h.Code == code {
			return h, nil
		}
	}
	return Purchasing{}, ErrNotFound
}

func (m *memoryRepo) ListHeaders(context.Context, shared.ListFilters) ([]Purchasing, int, error) {
	return nil, 0, nil
}

func (m *memoryRepo) ListLines(_ context.Context, purchasingID int64) ([]Line, error) {
	var out []Line
	for _, l := range m.lines {
		if l.PurchasingID == purchasingID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (m *memoryRepo) InsertHeader(_ context.Context, p Purchasing) (int64, error) {
	p.ID = m.nextHeader
	m.nextHeader++
	m.headers[p.ID] = p
	return p.ID, nil
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

// memoryCost recomputes the cache from the fake's current lines, mirroring
// the full-history SQL recompute.
type memoryCost memoryRepo

func (m *memoryCost) RecomputeForProducts(_ context.Context, productIDs []int64) error {
	m.recomputes++
	for _, id := range productIDs {
		var qty, value float64
		for _, l := range m.lines {
			if l.ProductID == id {
				qty += l.Quantity
				value += l.Quantity * l.Price
			}
		}
		avg := 0.0
		if qty != 0 {
			avg = value / qty
		}
		m.cache[id] = costing.CacheEntry{
			ProductID:    id,
			AvgCost:      avg,
			TotalQtyIn:   qty,
			TotalValueIn: value,
			LastUpdated:  time.Now(),
		}
	}
	return nil
}

func newTestService(t *testing.T) (*Service, *memoryRepo, Purchasing) {
	t.Helper()
	repo := newMemoryRepo()
	svc := NewService(slog.Default(), repo)
	header, err := svc.CreateHeader(context.Background(), CreateHeaderInput{
		Code:       "PB-2026-001",
		Date:       time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		SupplierID: 1,
	})
	require.NoError(t, err)
	return svc, repo, header
}

func TestCreateLineRecomputesCostAndWritesLedger(t *testing.T) {
	svc, repo, header := newTestService(t)
	ctx := context.Background()
	const dyeRed int64 = 42

	_, err := svc.CreateLine(ctx, CreateLineInput{
		PurchasingID: header.ID, ProductID: dyeRed, Quantity: 100, Price: 10,
	}, costing.RecomputeEachMutation)
	require.NoError(t, err)

	require.InDelta(t, 10.0, repo.cache[dyeRed].AvgCost, 0.001)
	rows := repo.ledger.Find(ledger.RefPurchasing, header.Code, dyeRed)
	require.Len(t, rows, 1)
	require.Equal(t, ledger.LocationGudang, rows[0].Location)
	require.InDelta(t, 100.0, rows[0].QuantityIn, 0.001)
	require.InDelta(t, 0.0, rows[0].QuantityOut, 0.001)

	_, err = svc.CreateLine(ctx, CreateLineInput{
		PurchasingID: header.ID, ProductID: dyeRed, Quantity: 50, Price: 16,
	}, costing.RecomputeEachMutation)
	require.NoError(t, err)
	require.InDelta(t, 12.0, repo.cache[dyeRed].AvgCost, 0.001)
}

func TestUpdateLineSyncsLedgerRow(t *testing.T) {
	svc, repo, header := newTestService(t)
	ctx := context.Background()

	line, err := svc.CreateLine(ctx, CreateLineInput{
		PurchasingID: header.ID, ProductID: 7, Quantity: 100, Price: 10,
	}, costing.RecomputeEachMutation)
	require.NoError(t, err)

	_, err = svc.UpdateLine(ctx, line.ID, UpdateLineInput{Quantity: 80, Price: 10}, costing.RecomputeEachMutation)
	require.NoError(t, err)

	rows := repo.ledger.Find(ledger.RefPurchasing, header.Code, 7)
	require.Len(t, rows, 1)
	require.InDelta(t, 80.0, rows[0].QuantityIn, 0.001)
	require.InDelta(t, 10.0, repo.cache[7].AvgCost, 0.001)
	require.InDelta(t, 80.0, repo.cache[7].TotalQtyIn, 0.001)
}

func TestDeleteLineRoundTrip(t *testing.T) {
	svc, repo, header := newTestService(t)
	ctx := context.Background()

	line, err := svc.CreateLine(ctx, CreateLineInput{
		PurchasingID: header.ID, ProductID: 5, Quantity: 20, Price: 3,
	}, costing.RecomputeEachMutation)
	require.NoError(t, err)

	require.NoError(t, svc.DeleteLine(ctx, line.ID, costing.RecomputeEachMutation))

	require.Empty(t, repo.ledger.Find(ledger.RefPurchasing, header.Code, 5))
	require.InDelta(t, 0.0, repo.cache[5].AvgCost, 0.001)
	require.InDelta(t, 0.0, repo.cache[5].TotalQtyIn, 0.001)
	require.InDelta(t, 0.0, repo.cache[5].TotalValueIn, 0.001)
}

func TestDeferRecomputeMatchesPerRowRecompute(t *testing.T) {
	ctx := context.Background()

	// Per-row recompute.
	svcA, repoA, headerA := newTestService(t)
	for _, q := range []float64{100, 50} {
		_, err := svcA.CreateLine(ctx, CreateLineInput{
			PurchasingID: headerA.ID, ProductID: 1, Quantity: q, Price: 10,
		}, costing.RecomputeEachMutation)
		require.NoError(t, err)
	}

	// Deferred, then one batched recompute.
	svcB, repoB, headerB := newTestService(t)
	for _, q := range []float64{100, 50} {
		_, err := svcB.CreateLine(ctx, CreateLineInput{
			PurchasingID: headerB.ID, ProductID: 1, Quantity: q, Price: 10,
		}, costing.DeferRecompute)
		require.NoError(t, err)
	}
	require.Empty(t, repoB.ledger.Entries())
	require.Empty(t, repoB.cache)
	require.NoError(t, svcB.RecomputeProducts(ctx, []int64{1}))

	require.InDelta(t, repoA.cache[1].AvgCost, repoB.cache[1].AvgCost, 0.001)
	require.InDelta(t, repoA.cache[1].TotalQtyIn, repoB.cache[1].TotalQtyIn, 0.001)
	require.InDelta(t, repoA.cache[1].TotalValueIn, repoB.cache[1].TotalValueIn, 0.001)
}

func TestDeleteLineRecomputesEvenWhenDeferred(t *testing.T) {
	svc, repo, header := newTestService(t)
	ctx := context.Background()

	line, err := svc.CreateLine(ctx, CreateLineInput{
		PurchasingID: header.ID, ProductID: 2, Quantity: 10, Price: 4,
	}, costing.RecomputeEachMutation)
	require.NoError(t, err)
	before := repo.recomputes

	require.NoError(t, svc.DeleteLine(ctx, line.ID, costing.DeferRecompute))
	require.Equal(t, before+1, repo.recomputes)
	require.InDelta(t, 0.0, repo.cache[2].TotalQtyIn, 0.001)
}

func TestCreateLineWithoutHeaderSkipsLedger(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(slog.Default(), repo)
	ctx := context.Background()

	line, err := svc.CreateLine(ctx, CreateLineInput{
		PurchasingID: 99, ProductID: 3, Quantity: 5, Price: 2,
	}, costing.RecomputeEachMutation)
	require.NoError(t, err)
	require.NotZero(t, line.ID)
	require.Empty(t, repo.ledger.Entries())
}

func TestCreateLineHeaderLookupFailureFailsCreate(t *testing.T) {
	repo := newMemoryRepo()
	repo.headerErr = errors.New("connection reset")
	svc := NewService(slog.Default(), repo)
	ctx := context.Background()

	_, err := svc.CreateLine(ctx, CreateLineInput{
		PurchasingID: 1, ProductID: 3, Quantity: 5, Price: 2,
	}, costing.RecomputeEachMutation)
	require.ErrorIs(t, err, repo.headerErr)
	require.Empty(t, repo.ledger.Entries())
	require.Zero(t, repo.recomputes)
}

func TestCreateLineValidation(t *testing.T) {
	svc, _, header := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateLine(ctx, CreateLineInput{
		PurchasingID: header.ID, ProductID: 1, Quantity: 0, Price: 5,
	}, costing.RecomputeEachMutation)
	require.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = svc.CreateLine(ctx, CreateLineInput{
		PurchasingID: header.ID, ProductID: 1, Quantity: 1, Price: -1,
	}, costing.RecomputeEachMutation)
	require.ErrorIs(t, err, ErrInvalidPrice)
}
