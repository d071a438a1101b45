package privacy

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePurger struct {
	mu      sync.Mutex
	cutoffs []time.Time
	deleted int64
	err     error
}

func (f *fakePurger) DeleteOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cutoffs = append(f.cutoffs, cutoff)
	return f.deleted, f.err
}

func (f *fakePurger) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.cutoffs)
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func TestPurgeUsesRetentionWindow(t *testing.T) {
	store := &fakePurger{deleted: 3}
	svc := NewRetentionService(store, 30*24*time.Hour, quietLogger())
	now := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	n, err := svc.Purge(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)
	require.Len(t, store.cutoffs, 1)
	assert.Equal(t, time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC), store.cutoffs[0])
}

func TestPurgeDisabledKeepsEverything(t *testing.T) {
	store := &fakePurger{}
	svc := NewRetentionService(store, 0, quietLogger())

	n, err := svc.Purge(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Zero(t, store.calls())
	assert.False(t, svc.Enabled())

	svc.Run(context.Background(), time.Millisecond)
	assert.Zero(t, store.calls(), "Run returns at once when disabled")
}

func TestPurgePropagatesStoreErrors(t *testing.T) {
	store := &fakePurger{err: errors.New("disk full")}
	svc := NewRetentionService(store, time.Hour, quietLogger())

	_, err := svc.Purge(context.Background())
	assert.EqualError(t, err, "disk full")
}

func TestRunPurgesUntilCancelled(t *testing.T) {
	store := &fakePurger{}
	svc := NewRetentionService(store, time.Hour, quietLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		svc.Run(ctx, 5*time.Millisecond)
		close(done)
	}()

	assert.Eventually(t, func() bool { return store.calls() >= 2 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}

func TestInfo(t *testing.T) {
	svc := NewRetentionService(&fakePurger{}, 90*24*time.Hour, nil)

	info := svc.Info()
	assert.Equal(t, true, info["retention_enabled"])
	assert.Equal(t, 90, info["retention_days"])
}
