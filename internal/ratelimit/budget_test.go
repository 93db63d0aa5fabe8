package ratelimit

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBudgetDisabled(t *testing.T) {
	budget := NewBudget(0, 10)
	require.Nil(t, budget)

	decision, err := budget.Allow(context.Background(), "")
	require.NoError(t, err)
	assert.True(t, decision.Allowed)
}

func TestBudgetExhaustsAndRefills(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	budget := NewBudget(1, 2)
	budget.clock = clock.Now

	for i := 0; i < 2; i++ {
		decision, err := budget.Allow(ctx, "")
		require.NoError(t, err)
		require.True(t, decision.Allowed)
	}

	blocked, err := budget.Allow(ctx, "")
	require.NoError(t, err)
	assert.False(t, blocked.Allowed)
	assert.InDelta(t, time.Second, blocked.RetryAfter, float64(10*time.Millisecond))

	clock.Advance(time.Second)
	refilled, err := budget.Allow(ctx, "")
	require.NoError(t, err)
	assert.True(t, refilled.Allowed)
}

func TestClientKey(t *testing.T) {
	req := httptest.NewRequest("POST", "/api/chat", nil)

	req.RemoteAddr = "203.0.113.7:51234"
	assert.Equal(t, "203.0.113.7", ClientKey(req))

	// chi's RealIP stores the forwarded address without a port.
	req.RemoteAddr = "198.51.100.9"
	assert.Equal(t, "198.51.100.9", ClientKey(req))

	req.RemoteAddr = "[2001:db8::1]:443"
	assert.Equal(t, "2001:db8::1", ClientKey(req))

	req.RemoteAddr = ""
	assert.Equal(t, UnknownClient, ClientKey(req))
	assert.Equal(t, UnknownClient, ClientKey(nil))
}
