package httpx

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestKeyedLimiterReserve(t *testing.T) {
	kl := newKeyedLimiter(RateLimitConfig{RequestsPerWindow: 2, Window: time.Minute, Burst: 2})
	now := time.Now()

	ok, _ := kl.reserve("a", now)
	require.True(t, ok)
	ok, _ = kl.reserve("a", now)
	require.True(t, ok)

	ok, wait := kl.reserve("a", now)
	require.False(t, ok)
	require.InDelta(t, 30*time.Second, wait, float64(time.Second))

	// A rejected request does not push the next token further out
	ok, _ = kl.reserve("a", now.Add(30*time.Second))
	require.True(t, ok)
}

func TestKeyedLimiterSweepsIdleKeys(t *testing.T) {
	kl := newKeyedLimiter(RateLimitConfig{RequestsPerWindow: 1, Window: time.Second, Burst: 1})
	start := kl.lastSweep

	kl.reserve("idle", start)
	kl.reserve("busy", start)
	require.Len(t, kl.entries, 2)

	kl.reserve("busy", start.Add(sweepInterval-time.Second))
	kl.reserve("busy", start.Add(sweepInterval+time.Second))

	require.Len(t, kl.entries, 1)
	require.Contains(t, kl.entries, "busy")
}
