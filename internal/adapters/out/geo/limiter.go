package geo

import (
	"context"
	"sync"
	"time"

	"fulfillment/internal/pkg/errs"
)

// IntervalLimiter enforces a minimum interval between outbound requests,
// process-wide. Each caller reserves the next free slot under the mutex and
// then sleeps until its slot, so concurrent callers are strictly serialized
// at least interval apart regardless of arrival order.
type IntervalLimiter struct {
	mu       sync.Mutex
	interval time.Duration
	next     time.Time

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// NewIntervalLimiter creates a limiter with the given minimum interval
// between requests.
func NewIntervalLimiter(interval time.Duration) (*IntervalLimiter, error) {
	if interval <= 0 {
		return nil, errs.NewValueIsInvalidError("interval")
	}

	return &IntervalLimiter{
		interval: interval,
		now:      time.Now,
		sleep:    sleepCtx,
	}, nil
}

// Wait blocks until the caller's reserved slot arrives or ctx is done. The
// slot stays consumed even when the caller gives up, which keeps the
// interval guarantee intact for everyone behind it.
func (l *IntervalLimiter) Wait(ctx context.Context) error {
	l.mu.Lock()
	now := l.now()
	slot := l.next
	if slot.Before(now) {
		slot = now
	}
	l.next = slot.Add(l.interval)
	l.mu.Unlock()

	return l.sleep(ctx, slot.Sub(now))
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
