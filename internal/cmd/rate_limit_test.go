package cmd

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenInspectorsRequiresRedis(t *testing.T) {
	cfg := defaultConfig(t)

	_, _, err := openInspectors(cfg, "")
	assert.Error(t, err)
}

func TestOpenInspectorsSelectsEndpoint(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := defaultConfig(t)
	cfg.RateLimit.Backend = "redis"
	cfg.Redis.Addr = mr.Addr()

	all, closeAll, err := openInspectors(cfg, "")
	require.NoError(t, err)
	defer func() { _ = closeAll() }()
	assert.Len(t, all, 2)

	one, closeOne, err := openInspectors(cfg, "Contact")
	require.NoError(t, err)
	defer func() { _ = closeOne() }()
	require.Len(t, one, 1)
	assert.Equal(t, "contact", one[0].endpoint)

	_, _, err = openInspectors(cfg, "search")
	assert.Error(t, err)
}

func TestResetUsage(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	cfg := defaultConfig(t)
	cfg.RateLimit.Backend = "redis"
	cfg.Redis.Addr = mr.Addr()

	lim, err := buildLimiters(cfg)
	require.NoError(t, err)
	defer func() { _ = lim.Close() }()
	for i := 0; i < 3; i++ {
		_, err := lim.contact.Allow(ctx, "203.0.113.7")
		require.NoError(t, err)
	}

	inspectors, closeFn, err := openInspectors(cfg, "contact")
	require.NoError(t, err)
	defer func() { _ = closeFn() }()

	rows, err := resetUsage(ctx, inspectors, []string{"203.0.113.7"}, true)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 3, rows[0].Count)
	assert.False(t, rows[0].Cleared)

	decision, err := lim.contact.Allow(ctx, "203.0.113.7")
	require.NoError(t, err)
	assert.False(t, decision.Allowed, "dry run leaves the window in place")

	rows, err = resetUsage(ctx, inspectors, []string{"203.0.113.7"}, false)
	require.NoError(t, err)
	assert.True(t, rows[0].Cleared)

	decision, err = lim.contact.Allow(ctx, "203.0.113.7")
	require.NoError(t, err)
	assert.True(t, decision.Allowed)

	report := rateLimitReport("rate limits", rows)
	assert.Equal(t, []string{"contact", "203.0.113.7", "4/3", "3600s"}, report.Rows[0])
}
