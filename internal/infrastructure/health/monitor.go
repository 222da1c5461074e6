// Package health tracks whether the remote ERP connection is usable.
// Scheduled jobs consult the monitor before touching the remote so that a
// dead connection turns runs into cheap no-ops.
package health

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/storebridge/backend/internal/domain/integration"
)

const defaultCacheTTL = 5 * time.Minute

// Transition is emitted when the connection state flips.
type Transition struct {
	// Valid is the new state
	Valid bool
	// Reason is the probe failure message, empty when the connection recovered
	Reason string
	// Version is the remote version reported by a successful probe
	Version string
	// At is when the flip was observed
	At time.Time
}

// Monitor caches the result of remote connection probes.
type Monitor struct {
	gateway integration.ERPGateway
	log     *zap.Logger
	ttl     time.Duration
	now     func() time.Time

	// onTransition is invoked outside the lock when the state flips
	onTransition func(Transition)

	mu        sync.Mutex
	checked   bool
	valid     bool
	version   string
	expiresAt time.Time
}

// Option customizes a Monitor.
type Option func(*Monitor)

// WithTTL overrides how long a probe result is trusted.
func WithTTL(ttl time.Duration) Option {
	return func(m *Monitor) { m.ttl = ttl }
}

// WithClock overrides the time source, used by tests.
func WithClock(now func() time.Time) Option {
	return func(m *Monitor) { m.now = now }
}

// WithTransitionHook registers a callback for connection state flips.
func WithTransitionHook(hook func(Transition)) Option {
	return func(m *Monitor) { m.onTransition = hook }
}

// NewMonitor creates a Monitor probing through the given gateway.
func NewMonitor(gateway integration.ERPGateway, log *zap.Logger, opts ...Option) *Monitor {
	m := &Monitor{
		gateway: gateway,
		log:     log,
		ttl:     defaultCacheTTL,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// IsValid reports whether the remote connection works, probing at most once
// per TTL window.
func (m *Monitor) IsValid(ctx context.Context) bool {
	m.mu.Lock()
	if m.checked && m.now().Before(m.expiresAt) {
		valid := m.valid
		m.mu.Unlock()
		return valid
	}
	m.mu.Unlock()

	valid, _ := m.Check(ctx)
	return valid
}

// Check probes the remote unconditionally, refreshes the cache, and reports
// the result. The error carries the probe failure when the connection is down.
func (m *Monitor) Check(ctx context.Context) (bool, error) {
	status, err := m.gateway.Status(ctx)
	now := m.now()

	m.mu.Lock()
	previous := m.valid
	hadResult := m.checked
	m.checked = true
	m.expiresAt = now.Add(m.ttl)
	m.valid = err == nil
	if status != nil {
		m.version = status.Version
	}
	flipped := !hadResult || previous != m.valid
	version := m.version
	m.mu.Unlock()

	if err != nil {
		m.log.Warn("Remote connection check failed", zap.Error(err))
		if flipped {
			m.notify(Transition{Valid: false, Reason: err.Error(), At: now})
		}
		return false, err
	}

	m.log.Debug("Remote connection check succeeded", zap.String("version", version))
	if flipped {
		m.notify(Transition{Valid: true, Version: version, At: now})
	}
	return true, nil
}

// Invalidate drops the cached state so the next IsValid call probes again.
func (m *Monitor) Invalidate() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.checked = false
}

// Version returns the last remote version seen by a successful probe.
func (m *Monitor) Version() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.version
}

func (m *Monitor) notify(tr Transition) {
	if m.onTransition == nil {
		return
	}
	if tr.Valid {
		m.log.Info("Remote connection restored", zap.String("version", tr.Version))
	} else {
		m.log.Warn("Remote connection lost", zap.String("reason", tr.Reason))
	}
	m.onTransition(tr)
}
