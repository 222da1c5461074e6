package health

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/storebridge/backend/internal/domain/integration"
)

// stubGateway overrides Status; other gateway methods are never called here.
type stubGateway struct {
	integration.ERPGateway
	statusFn func(ctx context.Context) (*integration.RemoteStatus, error)
	calls    int
}

func (s *stubGateway) Status(ctx context.Context) (*integration.RemoteStatus, error) {
	s.calls++
	return s.statusFn(ctx)
}

func TestMonitorCaching(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	gateway := &stubGateway{statusFn: func(context.Context) (*integration.RemoteStatus, error) {
		return &integration.RemoteStatus{Version: "18.0.2"}, nil
	}}
	m := NewMonitor(gateway, zap.NewNop(), WithClock(clock), WithTTL(5*time.Minute))

	ctx := context.Background()
	assert.True(t, m.IsValid(ctx))
	assert.True(t, m.IsValid(ctx))
	assert.Equal(t, 1, gateway.calls, "second call within TTL must not probe")
	assert.Equal(t, "18.0.2", m.Version())

	now = now.Add(6 * time.Minute)
	assert.True(t, m.IsValid(ctx))
	assert.Equal(t, 2, gateway.calls, "expired cache probes again")

	m.Invalidate()
	assert.True(t, m.IsValid(ctx))
	assert.Equal(t, 3, gateway.calls)
}

func TestMonitorTransitions(t *testing.T) {
	var transitions []Transition
	var failing bool

	gateway := &stubGateway{statusFn: func(context.Context) (*integration.RemoteStatus, error) {
		if failing {
			return nil, integration.ErrRemoteUnavailable
		}
		return &integration.RemoteStatus{Version: "18.0.2"}, nil
	}}
	m := NewMonitor(gateway, zap.NewNop(),
		WithTTL(time.Minute),
		WithTransitionHook(func(tr Transition) { transitions = append(transitions, tr) }),
	)
	ctx := context.Background()

	ok, err := m.Check(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	require.Len(t, transitions, 1)
	assert.True(t, transitions[0].Valid)

	// Same state, no new transition.
	_, err = m.Check(ctx)
	require.NoError(t, err)
	assert.Len(t, transitions, 1)

	failing = true
	ok, err = m.Check(ctx)
	assert.False(t, ok)
	assert.ErrorIs(t, err, integration.ErrRemoteUnavailable)
	require.Len(t, transitions, 2)
	assert.False(t, transitions[1].Valid)
	assert.NotEmpty(t, transitions[1].Reason)

	failing = false
	ok, err = m.Check(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	require.Len(t, transitions, 3)
	assert.True(t, transitions[2].Valid)
	assert.Equal(t, "18.0.2", transitions[2].Version)
}

func TestMonitorIsValidCachesFailure(t *testing.T) {
	gateway := &stubGateway{statusFn: func(context.Context) (*integration.RemoteStatus, error) {
		return nil, integration.ErrRemoteUnavailable
	}}
	m := NewMonitor(gateway, zap.NewNop(), WithTTL(time.Minute))

	ctx := context.Background()
	assert.False(t, m.IsValid(ctx))
	assert.False(t, m.IsValid(ctx))
	assert.Equal(t, 1, gateway.calls, "failures are cached too")
}
