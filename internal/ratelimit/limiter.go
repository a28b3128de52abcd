// Package ratelimit bounds how often a caller identifier may act within a
// sliding time window.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

const cleanupInterval = 5 * time.Minute

// Limiter admits or rejects one registration per call.
type Limiter interface {
	// Register records now for identifier and reports true if fewer than the
	// cap of registrations fall inside the window ending at now. A rejected
	// registration is not recorded.
	Register(ctx context.Context, identifier string, now time.Time) (bool, error)
	// Release removes one registration recorded at exactly at, returning the
	// slot to identifier. Releasing an unknown registration is a no-op.
	Release(ctx context.Context, identifier string, at time.Time) error
}

// Policy is the window and cap shared by every identifier.
type Policy struct {
	Window time.Duration
	Max    int
}

// Memory keeps submission timestamps in process memory.
type Memory struct {
	mu          sync.Mutex
	policy      Policy
	clients     map[string][]time.Time
	stopCleanup chan struct{}
	stopOnce    sync.Once
}

// NewMemory returns an in-memory limiter and starts its cleanup loop.
func NewMemory(policy Policy) *Memory {
	m := &Memory{
		policy:      policy,
		clients:     make(map[string][]time.Time),
		stopCleanup: make(chan struct{}),
	}
	go m.cleanupLoop()
	return m
}

func (m *Memory) cleanupLoop() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.cleanup(time.Now())
		case <-m.stopCleanup:
			return
		}
	}
}

// cleanup drops identifiers whose newest registration has left the window.
func (m *Memory) cleanup(now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, stamps := range m.clients {
		if len(stamps) == 0 || now.Sub(stamps[len(stamps)-1]) >= m.policy.Window {
			delete(m.clients, id)
		}
	}
}

// Stop ends the cleanup loop. It is safe to call more than once.
func (m *Memory) Stop() {
	m.stopOnce.Do(func() { close(m.stopCleanup) })
}

// Register implements Limiter.
func (m *Memory) Register(_ context.Context, identifier string, now time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	recent := prune(m.clients[identifier], now, m.policy.Window)
	if len(recent) >= m.policy.Max {
		m.clients[identifier] = recent
		return false, nil
	}

	m.clients[identifier] = append(recent, now)
	return true, nil
}

// Release implements Limiter.
func (m *Memory) Release(_ context.Context, identifier string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stamps := m.clients[identifier]
	for i := len(stamps) - 1; i >= 0; i-- {
		if stamps[i].Equal(at) {
			m.clients[identifier] = append(stamps[:i], stamps[i+1:]...)
			return nil
		}
	}
	return nil
}

// tracked reports how many identifiers are held; used by tests.
func (m *Memory) tracked() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.clients)
}

func prune(stamps []time.Time, now time.Time, window time.Duration) []time.Time {
	kept := stamps[:0]
	for _, t := range stamps {
		if now.Sub(t) < window {
			kept = append(kept, t)
		}
	}
	return kept
}
