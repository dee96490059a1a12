package upstream

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestThrottleAllowsBurstThenBlocks(t *testing.T) {
	throttle := NewThrottle(1, 2)

	require.True(t, throttle.Allow("com"))
	require.True(t, throttle.Allow("com"))
	require.False(t, throttle.Allow("com"), "burst exhausted")
}

func TestThrottleIsolatesKeys(t *testing.T) {
	throttle := NewThrottle(1, 1)

	require.True(t, throttle.Allow("com"))
	require.False(t, throttle.Allow("com"))
	require.True(t, throttle.Allow("org"), "other registries must not be affected")
}

func TestThrottleWaitHonoursDeadline(t *testing.T) {
	throttle := NewThrottle(0.1, 1)
	require.NoError(t, throttle.Wait(context.Background(), "com"))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := throttle.Wait(ctx, "com")
	require.Error(t, err, "second slot needs ~10s at 0.1 rps")
}

func TestThrottlePruneIdle(t *testing.T) {
	throttle := NewThrottle(1, 1)
	throttle.Allow("com")
	throttle.Allow("org")
	require.Equal(t, 2, throttle.Size())

	throttle.mu.Lock()
	throttle.entries["com"].lastSeen = time.Now().Add(-time.Hour)
	throttle.mu.Unlock()

	removed := throttle.PruneIdle()

	require.Equal(t, 1, removed)
	require.Equal(t, 1, throttle.Size())

	throttle.mu.Lock()
	_, comGone := throttle.entries["com"]
	_, orgKept := throttle.entries["org"]
	throttle.mu.Unlock()

	require.False(t, comGone)
	require.True(t, orgKept)
}

func TestThrottleClampsInvalidSettings(t *testing.T) {
	throttle := NewThrottle(-1, 0)

	require.True(t, throttle.Allow("com"), "clamped limiter must still grant a slot")
}
