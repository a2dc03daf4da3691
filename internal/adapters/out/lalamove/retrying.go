package lalamove

import (
	"context"
	"log/slog"
	"time"

	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"
)

// RetryConfig describes the retry behavior of RetryingClient.
type RetryConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// RetryingClient decorates a CourierClient with bounded retries for
// idempotent reads. Writes (place, edit, cancel, webhook registration) pass
// through untouched: the vendor documents no idempotency keys, so a retried
// write could dispatch a second physical order.
type RetryingClient struct {
	next   ports.CourierClient
	logger *slog.Logger
	cfg    RetryConfig
	sleep  func(time.Duration)
}

// NewRetryingClient wraps next with retry behavior for reads. Returns nil if
// next is nil.
func NewRetryingClient(next ports.CourierClient, logger *slog.Logger, cfg RetryConfig) *RetryingClient {
	if next == nil {
		return nil
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = 200 * time.Millisecond
	}
	if cfg.MaxDelay <= 0 {
		cfg.MaxDelay = 2 * time.Second
	}

	return &RetryingClient{
		next:   next,
		logger: logger.With("component", "lalamove_retry"),
		cfg:    cfg,
		sleep:  time.Sleep,
	}
}

// GetQuotation passes through without retries: a quotation is cheap to
// re-request from the caller and pricing may shift between attempts.
func (c *RetryingClient) GetQuotation(ctx context.Context, req ports.QuotationRequest) (ports.Quotation, error) {
	return c.next.GetQuotation(ctx, req)
}

// PlaceOrder passes through without retries to avoid duplicate dispatch.
func (c *RetryingClient) PlaceOrder(ctx context.Context, req ports.PlaceOrderRequest) (ports.PlacedOrder, error) {
	return c.next.PlaceOrder(ctx, req)
}

// EditOrder passes through without retries.
func (c *RetryingClient) EditOrder(ctx context.Context, orderID string, req ports.EditOrderRequest) error {
	return c.next.EditOrder(ctx, orderID, req)
}

// CancelOrder passes through without retries.
func (c *RetryingClient) CancelOrder(ctx context.Context, orderID string) error {
	return c.next.CancelOrder(ctx, orderID)
}

// GetOrderDetails retries retryable upstream failures with capped
// exponential backoff.
func (c *RetryingClient) GetOrderDetails(ctx context.Context, orderID string) (ports.CourierOrderDetails, error) {
	var details ports.CourierOrderDetails
	err := c.retry(ctx, "GetOrderDetails", func() error {
		var err error
		details, err = c.next.GetOrderDetails(ctx, orderID)
		return err
	})
	return details, err
}

// GetDriverDetails retries retryable upstream failures with capped
// exponential backoff.
func (c *RetryingClient) GetDriverDetails(ctx context.Context, orderID, driverID string) (ports.DriverDetails, error) {
	var details ports.DriverDetails
	err := c.retry(ctx, "GetDriverDetails", func() error {
		var err error
		details, err = c.next.GetDriverDetails(ctx, orderID, driverID)
		return err
	})
	return details, err
}

// SetWebhookURL passes through; startup code handles its own failure policy.
func (c *RetryingClient) SetWebhookURL(ctx context.Context, url string) error {
	return c.next.SetWebhookURL(ctx, url)
}

func (c *RetryingClient) retry(ctx context.Context, method string, call func() error) error {
	var lastErr error
	for attempt := 1; attempt <= c.cfg.MaxAttempts; attempt++ {
		err := call()
		if err == nil {
			return nil
		}
		lastErr = err

		if ctx.Err() != nil || attempt == c.cfg.MaxAttempts || !errs.IsRetryableUpstream(err) {
			break
		}

		delay := backoff(c.cfg.BaseDelay, c.cfg.MaxDelay, attempt)
		c.logger.Warn("courier read retry",
			"method", method,
			"attempt", attempt,
			"delay", delay,
			"error", err,
		)
		if !sleepWithContext(ctx, c.sleep, delay) {
			break
		}
	}
	return lastErr
}

func backoff(base, max time.Duration, attempt int) time.Duration {
	d := base << (attempt - 1)
	if d > max {
		return max
	}
	return d
}

func sleepWithContext(ctx context.Context, sleep func(time.Duration), d time.Duration) bool {
	if d <= 0 {
		return true
	}
	done := make(chan struct{})
	go func() {
		sleep(d)
		close(done)
	}()
	select {
	case <-ctx.Done():
		return false
	case <-done:
		return true
	}
}
