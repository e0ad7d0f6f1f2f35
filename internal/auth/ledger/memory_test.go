package ledger

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestMemory(t *testing.T) *Memory {
	t.Helper()
	m := NewMemory()
	t.Cleanup(func() { _ = m.Close() })
	return m
}

func TestMemoryRevokeIsVisibleImmediately(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	m := newTestMemory(t)

	revoked, err := m.IsRevoked(ctx, "tok-1")
	require.NoError(t, err)
	require.False(t, revoked)

	first, err := m.Revoke(ctx, "tok-1", time.Hour)
	require.NoError(t, err)
	require.True(t, first)

	revoked, err = m.IsRevoked(ctx, "tok-1")
	require.NoError(t, err)
	require.True(t, revoked)
}

func TestMemoryRevokeIsSingleWinnerUnderContention(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	m := newTestMemory(t)

	const goroutines = 32
	var wins atomic.Int32
	var wg sync.WaitGroup

	for range goroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			first, err := m.Revoke(ctx, "contested", time.Hour)
			require.NoError(t, err)
			if first {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()

	require.Equal(t, int32(1), wins.Load())
}

func TestMemoryEntriesExpire(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	m := newTestMemory(t)

	now := time.Now()
	m.nowFunc = func() time.Time { return now }

	first, err := m.Revoke(ctx, "tok-ttl", time.Minute)
	require.NoError(t, err)
	require.True(t, first)

	// Advance past the entry's ttl: the revocation has outlived the token
	// it guarded and no longer applies.
	now = now.Add(2 * time.Minute)

	revoked, err := m.IsRevoked(ctx, "tok-ttl")
	require.NoError(t, err)
	require.False(t, revoked)

	// The id becomes revocable again (a fresh token could reuse storage).
	first, err = m.Revoke(ctx, "tok-ttl", time.Minute)
	require.NoError(t, err)
	require.True(t, first)
}

func TestMemoryConsumeIsOneShot(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	m := newTestMemory(t)

	first, err := m.Consume(ctx, "reset-tok", time.Hour)
	require.NoError(t, err)
	require.True(t, first)

	second, err := m.Consume(ctx, "reset-tok", time.Hour)
	require.NoError(t, err)
	require.False(t, second)
}

func TestMemoryUserCutoff(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	m := newTestMemory(t)

	_, ok, err := m.UserCutoff(ctx, "user-1")
	require.NoError(t, err)
	require.False(t, ok)

	cutoff := time.Now().Truncate(time.Second)
	require.NoError(t, m.RevokeAllForUser(ctx, "user-1", cutoff, time.Hour))

	got, ok, err := m.UserCutoff(ctx, "user-1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, cutoff, got)

	// A later cutoff supersedes; an earlier one does not regress it.
	later := cutoff.Add(time.Minute)
	require.NoError(t, m.RevokeAllForUser(ctx, "user-1", later, time.Hour))
	require.NoError(t, m.RevokeAllForUser(ctx, "user-1", cutoff, time.Hour))

	got, ok, err = m.UserCutoff(ctx, "user-1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, later, got)
}

func TestMemoryPruneDropsExpiredEntries(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	m := newTestMemory(t)

	now := time.Now()
	m.nowFunc = func() time.Time { return now }

	_, err := m.Revoke(ctx, "old", time.Minute)
	require.NoError(t, err)
	require.NoError(t, m.RevokeAllForUser(ctx, "user-old", now, time.Minute))

	now = now.Add(time.Hour)
	m.prune()

	m.mu.Lock()
	defer m.mu.Unlock()
	require.Empty(t, m.tokens)
	require.Empty(t, m.users)
}
