package ledger

import (
	"context"
	"sync"
	"time"
)

const defaultJanitorInterval = 5 * time.Minute

type userCutoff struct {
	cutoff    time.Time
	expiresAt time.Time
}

// Memory is the default in-process Ledger backing: a TTL map guarded by a
// mutex, pruned by a background janitor. All operations are linearizable;
// a check immediately following a revoke on another goroutine observes it.
type Memory struct {
	mu      sync.Mutex
	tokens  map[string]time.Time // token id -> entry expiry
	users   map[string]userCutoff
	nowFunc func() time.Time

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewMemory creates a memory ledger and starts its janitor.
func NewMemory() *Memory {
	m := &Memory{
		tokens:  make(map[string]time.Time),
		users:   make(map[string]userCutoff),
		nowFunc: time.Now,
		stopCh:  make(chan struct{}),
		doneCh:  make(chan struct{}),
	}
	go m.janitor(defaultJanitorInterval)
	return m
}

func (m *Memory) Revoke(_ context.Context, tokenID string, ttl time.Duration) (bool, error) {
	return m.put(tokenID, ttl), nil
}

func (m *Memory) Consume(_ context.Context, tokenID string, ttl time.Duration) (bool, error) {
	return m.put(tokenID, ttl), nil
}

func (m *Memory) put(tokenID string, ttl time.Duration) bool {
	now := m.nowFunc()

	m.mu.Lock()
	defer m.mu.Unlock()

	if exp, ok := m.tokens[tokenID]; ok && exp.After(now) {
		return false
	}
	m.tokens[tokenID] = now.Add(ttl)
	return true
}

func (m *Memory) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	now := m.nowFunc()

	m.mu.Lock()
	defer m.mu.Unlock()

	exp, ok := m.tokens[tokenID]
	return ok && exp.After(now), nil
}

func (m *Memory) RevokeAllForUser(_ context.Context, userID string, cutoff time.Time, ttl time.Duration) error {
	now := m.nowFunc()

	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.users[userID]
	if ok && existing.expiresAt.After(now) && existing.cutoff.After(cutoff) {
		// Never move an active watermark backwards.
		return nil
	}
	m.users[userID] = userCutoff{cutoff: cutoff, expiresAt: now.Add(ttl)}
	return nil
}

func (m *Memory) UserCutoff(_ context.Context, userID string) (time.Time, bool, error) {
	now := m.nowFunc()

	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.users[userID]
	if !ok || !entry.expiresAt.After(now) {
		return time.Time{}, false, nil
	}
	return entry.cutoff, true, nil
}

// Close stops the janitor. The ledger remains usable afterwards but no
// longer prunes expired entries.
func (m *Memory) Close() error {
	close(m.stopCh)
	<-m.doneCh
	return nil
}

func (m *Memory) janitor(interval time.Duration) {
	defer close(m.doneCh)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.prune()
		case <-m.stopCh:
			return
		}
	}
}

func (m *Memory) prune() {
	now := m.nowFunc()

	m.mu.Lock()
	defer m.mu.Unlock()

	for id, exp := range m.tokens {
		if !exp.After(now) {
			delete(m.tokens, id)
		}
	}
	for id, entry := range m.users {
		if !entry.expiresAt.After(now) {
			delete(m.users, id)
		}
	}
}
