package cache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ZanzyTHEbar/learning-style-o-meter/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errMissing = errors.New("not found")

type memStore struct {
	mu    sync.Mutex
	items map[string]types.Assessment
	gets  int
	fail  error
}

func newMemStore() *memStore {
	return &memStore{items: make(map[string]types.Assessment)}
}

func (s *memStore) SaveAssessment(_ context.Context, a *types.Assessment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail != nil {
		return s.fail
	}
	s.items[a.ID] = *a
	return nil
}

func (s *memStore) GetAssessment(_ context.Context, id string) (*types.Assessment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gets++
	a, ok := s.items[id]
	if !ok {
		return nil, errMissing
	}
	return &a, nil
}

func (s *memStore) DeleteAssessment(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[id]; !ok {
		return errMissing
	}
	delete(s.items, id)
	return nil
}

func (s *memStore) DeleteOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for id, a := range s.items {
		if a.CreatedAt.Before(cutoff) {
			delete(s.items, id)
			n++
		}
	}
	return n, nil
}

type countingMetrics struct {
	hits, misses int
}

func (m *countingMetrics) IncrementCacheHit()  { m.hits++ }
func (m *countingMetrics) IncrementCacheMiss() { m.misses++ }

func TestSaveWritesThroughAndServesFromMemory(t *testing.T) {
	store := newMemStore()
	metrics := &countingMetrics{}
	c := NewCache(store, time.Minute, metrics)
	defer c.Close()

	ctx := context.Background()
	a := &types.Assessment{ID: "a1", Prediction: "Converging"}
	require.NoError(t, c.SaveAssessment(ctx, a))
	assert.Contains(t, store.items, "a1")

	got, err := c.GetAssessment(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, types.Label("Converging"), got.Prediction)
	assert.Equal(t, 0, store.gets)
	assert.Equal(t, 1, metrics.hits)
}

func TestGetReadsThroughOnMiss(t *testing.T) {
	store := newMemStore()
	store.items["b2"] = types.Assessment{ID: "b2", Prediction: "Diverging"}
	metrics := &countingMetrics{}
	c := NewCache(store, time.Minute, metrics)
	defer c.Close()

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		got, err := c.GetAssessment(ctx, "b2")
		require.NoError(t, err)
		assert.Equal(t, types.Label("Diverging"), got.Prediction)
	}

	assert.Equal(t, 1, store.gets)
	assert.Equal(t, 1, metrics.misses)
	assert.Equal(t, 2, metrics.hits)
}

func TestGetPropagatesStoreErrors(t *testing.T) {
	c := NewCache(newMemStore(), time.Minute, nil)
	defer c.Close()

	_, err := c.GetAssessment(context.Background(), "nope")
	assert.ErrorIs(t, err, errMissing)
	assert.Equal(t, 0, c.Size())
}

func TestSaveDoesNotCacheOnStoreFailure(t *testing.T) {
	store := newMemStore()
	store.fail = errors.New("disk full")
	c := NewCache(store, time.Minute, nil)
	defer c.Close()

	err := c.SaveAssessment(context.Background(), &types.Assessment{ID: "x"})
	assert.Error(t, err)
	assert.Equal(t, 0, c.Size())
}

func TestExpiredEntriesReload(t *testing.T) {
	store := newMemStore()
	c := NewCache(store, time.Minute, nil)
	defer c.Close()

	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	ctx := context.Background()
	require.NoError(t, c.SaveAssessment(ctx, &types.Assessment{ID: "e"}))

	now = now.Add(2 * time.Minute)
	stats := c.Stats()
	assert.Equal(t, 1, stats["expired_items"])

	_, err := c.GetAssessment(ctx, "e")
	require.NoError(t, err)
	assert.Equal(t, 1, store.gets)

	now = now.Add(2 * time.Minute)
	c.evictExpired()
	assert.Equal(t, 0, c.Size())
}

func TestReturnedAssessmentsAreCopies(t *testing.T) {
	c := NewCache(newMemStore(), time.Minute, nil)
	defer c.Close()

	ctx := context.Background()
	require.NoError(t, c.SaveAssessment(ctx, &types.Assessment{ID: "c", Subject: "orig"}))

	got, err := c.GetAssessment(ctx, "c")
	require.NoError(t, err)
	got.Subject = "mutated"

	again, err := c.GetAssessment(ctx, "c")
	require.NoError(t, err)
	assert.Equal(t, "orig", again.Subject)
}

func TestCloseIsIdempotent(t *testing.T) {
	c := NewCache(newMemStore(), time.Minute, nil)
	c.Close()
	assert.NotPanics(t, c.Close)
}

func TestDeleteEvictsCachedCopy(t *testing.T) {
	store := newMemStore()
	c := NewCache(store, time.Hour, nil)
	defer c.Close()
	ctx := context.Background()

	require.NoError(t, c.SaveAssessment(ctx, &types.Assessment{ID: "a"}))
	require.NoError(t, c.DeleteAssessment(ctx, "a"))
	assert.Zero(t, c.Size())

	_, err := c.GetAssessment(ctx, "a")
	assert.ErrorIs(t, err, errMissing)
	assert.ErrorIs(t, c.DeleteAssessment(ctx, "a"), errMissing)
}

func TestDeleteOlderThanEvictsExpiredAssessments(t *testing.T) {
	store := newMemStore()
	c := NewCache(store, time.Hour, nil)
	defer c.Close()
	ctx := context.Background()

	cutoff := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, c.SaveAssessment(ctx, &types.Assessment{ID: "old", CreatedAt: cutoff.Add(-time.Hour)}))
	require.NoError(t, c.SaveAssessment(ctx, &types.Assessment{ID: "new", CreatedAt: cutoff.Add(time.Hour)}))

	n, err := c.DeleteOlderThan(ctx, cutoff)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	assert.Equal(t, 1, c.Size())

	_, err = c.GetAssessment(ctx, "old")
	assert.ErrorIs(t, err, errMissing)
}
