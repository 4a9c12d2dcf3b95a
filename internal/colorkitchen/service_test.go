package colorkitchen

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
	batches      map[int64]Batch
	entries      map[int64]Entry
	batchDetails map[int64]BatchDetail
	entryDetails map[int64]EntryDetail
	nextID       int64
	ledger       *ledgertest.MemoryWriter
	costs        map[int64]costing.CacheEntry
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		batches:      map[int64]Batch{},
		entries:      map[int64]Entry{},
		batchDetails: map[int64]BatchDetail{},
		entryDetails: map[int64]EntryDetail{},
		nextID:       1,
		ledger:       ledgertest.NewMemoryWriter(),
		costs:        map[int64]costing.CacheEntry{},
	}
}

func (m *memoryRepo) id() int64 {
	id := m.nextID
	m.nextID++
	return id
}

func (m *memoryRepo) WithTx(ctx context.Context, fn func(ctx context.Context, tx TxRepository) error) error {
	return fn(ctx, m)
}

func (m *memoryRepo) Ledger() ledger.Writer { return m.ledger }
func (m *memoryRepo) Costing() CostReader   { return (*memoryCosts)(m) }

func (m *memoryRepo) GetBatch(_ context.Context, id int64) (Batch, error) {
	b, ok := m.batches[id]
	if !ok {
		return Batch{}, ErrNotFound
	}
	return b, nil
}

func (m *memoryRepo) InsertBatch(_ context.Context, b Batch) (int64, error) {
	b.ID = m.id()
	m.batches[b.ID] = b
	return b.ID, nil
}

func (m *memoryRepo) GetBatchByCode(_ context.Context, code string) (Batch, error) {
	for _, b := range m.batches {
		if b.Code == code {
			return b, nil
		}
	}
	return Batch{}, ErrNotFound
}

func (m *memoryRepo) GetEntry(_ context.Context, id int64) (Entry, error) {
	e, ok := m.entries[id]
	if !ok {
		return Entry{}, ErrNotFound
	}
	return e, nil
}

func (m *memoryRepo) GetEntryByCode(_ context.Context, code string) (Entry, error) {
	for _, e := range m.entries {
		if e.Code == code {
			return e, nil
		}
	}
	return Entry{}, ErrNotFound
}

func (m *memoryRepo) InsertEntry(_ context.Context, e Entry) (int64, error) {
	e.ID = m.id()
	m.entries[e.ID] = e
	return e.ID, nil
}

func (m *memoryRepo) GetBatchDetail(_ context.Context, id int64) (BatchDetail, error) {
	d, ok := m.batchDetails[id]
	if !ok {
		return BatchDetail{}, ErrNotFound
	}
	return d, nil
}

func (m *memoryRepo) InsertBatchDetail(_ context.Context, d BatchDetail) (int64, error) {
	d.ID = m.id()
	m.batchDetails[d.ID] = d
	return d.ID, nil
}

func (m *memoryRepo) UpdateBatchDetail(_ context.Context, d BatchDetail) error {
	if _, ok := m.batchDetails[d.ID]; !ok {
		return ErrNotFound
	}
	m.batchDetails[d.ID] = d
	return nil
}

func (m *memoryRepo) DeleteBatchDetail(_ context.Context, id int64) error {
	if _, ok := m.batchDetails[id]; !ok {
		return ErrNotFound
	}
	delete(m.batchDetails, id)
	return nil
}

func (m *memoryRepo) GetEntryDetail(_ context.Context, id int64) (EntryDetail, error) {
	d, ok := m.entryDetails[id]
	if !ok {
		return EntryDetail{}, ErrNotFound
	}
	return d, nil
}

func (m *memoryRepo) InsertEntryDetail(_ context.Context, d EntryDetail) (int64, error) {
	d.ID = m.id()
	m.entryDetails[d.ID] = d
	return d.ID, nil
}

func (m *memoryRepo) UpdateEntryDetail(_ context.Context, d EntryDetail) error {
	if _, ok := m.entryDetails[d.ID]; !ok {
		return ErrNotFound
	}
	m.entryDetails[d.ID] = d
	return nil
}

func (m *memoryRepo) DeleteEntryDetail(_ context.Context, id int64) error {
	if _, ok := m.entryDetails[id]; !ok {
		return ErrNotFound
	}
	delete(m.entryDetails, id)
	return nil
}

func (m *memoryRepo) ListBatchDetails(_ context.Context, batchID int64) ([]BatchDetail, error) {
	var out []BatchDetail
	for _, d := range m.batchDetails {
		if d.BatchID == batchID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (m *memoryRepo) ListEntryDetails(_ context.Context, entryID int64) ([]EntryDetail, error) {
	var out []EntryDetail
	for _, d := range m.entryDetails {
		if d.EntryID == entryID {
			out = append(out, d)
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

func newTestService(t *testing.T) (*Service, *memoryRepo, Batch, Entry) {
	t.Helper()
	repo := newMemoryRepo()
	svc := NewService(slog.Default(), repo)
	ctx := context.Background()

	batch, err := svc.CreateBatch(ctx, CreateBatchInput{
		Code: "CKB-2026-001",
		Date: time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	entry, err := svc.CreateEntry(ctx, CreateEntryInput{
		Code:          "OPJ-2026-010",
		Date:          time.Date(2026, 4, 2, 0, 0, 0, 0, time.UTC),
		Rolls:         12,
		PasteQuantity: 40,
		DesignID:      3,
		BatchID:       batch.ID,
	})
	require.NoError(t, err)
	return svc, repo, batch, entry
}

func requirePair(t *testing.T, rows []ledger.Entry, qty float64) {
	t.Helper()
	require.Len(t, rows, 2)
	byLoc := map[ledger.Location]ledger.Entry{}
	for _, e := range rows {
		byLoc[e.Location] = e
	}
	require.InDelta(t, qty, byLoc[ledger.LocationKitchen].QuantityOut, 0.001)
	require.InDelta(t, 0.0, byLoc[ledger.LocationKitchen].QuantityIn, 0.001)
	require.InDelta(t, qty, byLoc[ledger.LocationUsage].QuantityIn, 0.001)
	require.InDelta(t, 0.0, byLoc[ledger.LocationUsage].QuantityOut, 0.001)
}

func TestBatchDetailPairsKitchenAndUsage(t *testing.T) {
	svc, repo, batch, _ := newTestService(t)
	ctx := context.Background()
	repo.costs[5] = costing.CacheEntry{ProductID: 5, AvgCost: 7.5}

	detail, err := svc.CreateBatchDetail(ctx, CreateDetailInput{
		OwnerID: batch.ID, ProductID: 5, Quantity: 16,
	})
	require.NoError(t, err)
	require.InDelta(t, 7.5, detail.UnitCostUsed, 0.001)
	require.InDelta(t, 120.0, detail.TotalCost, 0.001)

	requirePair(t, repo.ledger.Find(ledger.RefColorKitchen, batch.Code, 5), 16)
}

func TestEntryDetailKeyedByEntryCode(t *testing.T) {
	svc, repo, batch, entry := newTestService(t)
	ctx := context.Background()
	repo.costs[6] = costing.CacheEntry{ProductID: 6, AvgCost: 2.0}

	_, err := svc.CreateEntryDetail(ctx, CreateDetailInput{
		OwnerID: entry.ID, ProductID: 6, Quantity: 4,
	})
	require.NoError(t, err)

	requirePair(t, repo.ledger.Find(ledger.RefColorKitchen, entry.Code, 6), 4)
	require.Empty(t, repo.ledger.Find(ledger.RefColorKitchen, batch.Code, 6))
}

func TestUpdateBatchDetailSyncsPair(t *testing.T) {
	svc, repo, batch, _ := newTestService(t)
	ctx := context.Background()
	repo.costs[5] = costing.CacheEntry{ProductID: 5, AvgCost: 3.0}

	detail, err := svc.CreateBatchDetail(ctx, CreateDetailInput{
		OwnerID: batch.ID, ProductID: 5, Quantity: 10,
	})
	require.NoError(t, err)

	repo.costs[5] = costing.CacheEntry{ProductID: 5, AvgCost: 50.0}
	updated, err := svc.UpdateBatchDetail(ctx, detail.ID, UpdateDetailInput{Quantity: 12})
	require.NoError(t, err)
	require.InDelta(t, 3.0, updated.UnitCostUsed, 0.001)
	require.InDelta(t, 36.0, updated.TotalCost, 0.001)

	requirePair(t, repo.ledger.Find(ledger.RefColorKitchen, batch.Code, 5), 12)
}

func TestDeleteEntryDetailRemovesPair(t *testing.T) {
	svc, repo, _, entry := newTestService(t)
	ctx := context.Background()
	repo.costs[9] = costing.CacheEntry{ProductID: 9, AvgCost: 1.0}

	detail, err := svc.CreateEntryDetail(ctx, CreateDetailInput{
		OwnerID: entry.ID, ProductID: 9, Quantity: 2,
	})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteEntryDetail(ctx, detail.ID))
	require.Empty(t, repo.ledger.Find(ledger.RefColorKitchen, entry.Code, 9))
	require.Empty(t, repo.entryDetails)
}

func TestDetailWithoutCostHistoryFails(t *testing.T) {
	svc, repo, batch, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateBatchDetail(ctx, CreateDetailInput{
		OwnerID: batch.ID, ProductID: 99, Quantity: 1,
	})
	require.ErrorIs(t, err, costing.ErrNoCostHistory)
	require.Empty(t, repo.ledger.Entries())
}
