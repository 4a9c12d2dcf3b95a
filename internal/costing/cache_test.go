package costing

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

type stubSource struct {
	entries map[int64]CacheEntry
	calls   int
}

func (s *stubSource) AvgCostForProduct(_ context.Context, productID int64) (CacheEntry, error) {
	s.calls++
	entry, ok := s.entries[productID]
	if !ok {
		return CacheEntry{}, ErrNoCostHistory
	}
	return entry, nil
}

func newTestReader(t *testing.T, source Source) (*Reader, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewReader(client, source, time.Minute), mr
}

func TestReaderCachesHits(t *testing.T) {
	source := &stubSource{entries: map[int64]CacheEntry{
		7: {ProductID: 7, AvgCost: 12.0, TotalQtyIn: 150, TotalValueIn: 1800},
	}}
	reader, _ := newTestReader(t, source)

	ctx := context.Background()
	first, err := reader.AvgCost(ctx, 7)
	require.NoError(t, err)
	require.InDelta(t, 12.0, first.AvgCost, 0.001)

	second, err := reader.AvgCost(ctx, 7)
	require.NoError(t, err)
	require.InDelta(t, 12.0, second.AvgCost, 0.001)
	require.Equal(t, 1, source.calls)
}

func TestReaderMissingHistoryNotCached(t *testing.T) {
	source := &stubSource{entries: map[int64]CacheEntry{}}
	reader, _ := newTestReader(t, source)

	ctx := context.Background()
	_, err := reader.AvgCost(ctx, 9)
	require.ErrorIs(t, err, ErrNoCostHistory)

	// First purchase arrives; the miss must not have been poisoned.
	source.entries[9] = CacheEntry{ProductID: 9, AvgCost: 10}
	entry, err := reader.AvgCost(ctx, 9)
	require.NoError(t, err)
	require.InDelta(t, 10.0, entry.AvgCost, 0.001)
}

func TestReaderInvalidate(t *testing.T) {
	source := &stubSource{entries: map[int64]CacheEntry{
		3: {ProductID: 3, AvgCost: 5},
	}}
	reader, _ := newTestReader(t, source)

	ctx := context.Background()
	_, err := reader.AvgCost(ctx, 3)
	require.NoError(t, err)

	source.entries[3] = CacheEntry{ProductID: 3, AvgCost: 6}
	require.NoError(t, reader.Invalidate(ctx, 3))

	entry, err := reader.AvgCost(ctx, 3)
	require.NoError(t, err)
	require.InDelta(t, 6.0, entry.AvgCost, 0.001)
	require.Equal(t, 2, source.calls)
}

func TestUpdatePolicyDefer(t *testing.T) {
	require.False(t, RecomputeEachMutation.Defer())
	require.True(t, DeferRecompute.Defer())
}
