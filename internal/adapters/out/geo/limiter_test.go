package geo

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIntervalLimiter(t *testing.T) {
	_, err := NewIntervalLimiter(0)
	require.Error(t, err)

	_, err = NewIntervalLimiter(time.Second)
	require.NoError(t, err)
}

func TestIntervalLimiter_SlotSpacing(t *testing.T) {
	limiter, err := NewIntervalLimiter(time.Second)
	require.NoError(t, err)

	// Virtual clock: record requested sleep offsets instead of sleeping.
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return base }

	var mu sync.Mutex
	var delays []time.Duration
	limiter.sleep = func(_ context.Context, d time.Duration) error {
		mu.Lock()
		delays = append(delays, d)
		mu.Unlock()
		return nil
	}

	const n = 5
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			require.NoError(t, limiter.Wait(context.Background()))
		}()
	}
	wg.Wait()

	// All callers arrived at the same instant: their reserved slots must be
	// exactly one interval apart, the last one (n-1) intervals out.
	require.Len(t, delays, n)
	seen := make(map[time.Duration]bool, n)
	for _, d := range delays {
		seen[d] = true
	}
	for i := 0; i < n; i++ {
		assert.True(t, seen[time.Duration(i)*time.Second], "missing slot at %ds", i)
	}
}

func TestIntervalLimiter_WaitHonorsContext(t *testing.T) {
	limiter, err := NewIntervalLimiter(50 * time.Millisecond)
	require.NoError(t, err)

	// First call takes the immediate slot.
	require.NoError(t, limiter.Wait(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = limiter.Wait(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestIntervalLimiter_RealSpacing(t *testing.T) {
	const interval = 20 * time.Millisecond
	limiter, err := NewIntervalLimiter(interval)
	require.NoError(t, err)

	start := time.Now()
	const n = 3
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			require.NoError(t, limiter.Wait(context.Background()))
		}()
	}
	wg.Wait()

	assert.GreaterOrEqual(t, time.Since(start), (n-1)*interval)
}
