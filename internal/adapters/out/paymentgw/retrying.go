package paymentgw

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"parcelbot/internal/core/ports"
)

type counter interface {
	Inc()
}

// RetryConfig describes the backoff of RetryingGateway.
type RetryConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// DefaultRetryConfig is used for zero fields of the configured RetryConfig.
var DefaultRetryConfig = RetryConfig{
	MaxAttempts: 3,
	BaseDelay:   100 * time.Millisecond,
	MaxDelay:    2 * time.Second,
}

// RetryingGateway retries transient gateway failures with exponential
// backoff. A declined charge is never retried. Retries are safe because the
// idempotency key stays the same.
type RetryingGateway struct {
	next    ports.PaymentGateway
	logger  *slog.Logger
	retries counter
	cfg     RetryConfig
	wait    func(context.Context, time.Duration) bool
}

func NewRetryingGateway(next ports.PaymentGateway, logger *slog.Logger, retries counter, cfg RetryConfig) *RetryingGateway {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultRetryConfig.MaxAttempts
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = DefaultRetryConfig.BaseDelay
	}
	if cfg.MaxDelay <= 0 {
		cfg.MaxDelay = DefaultRetryConfig.MaxDelay
	}
	return &RetryingGateway{
		next:    next,
		logger:  logger.With("component", "payment-gateway"),
		retries: retries,
		cfg:     cfg,
		wait:    sleepWithContext,
	}
}

func (g *RetryingGateway) CreateCharge(ctx context.Context, req ports.ChargeRequest) (string, error) {
	var lastErr error
	for attempt := 1; attempt <= g.cfg.MaxAttempts; attempt++ {
		reference, err := g.next.CreateCharge(ctx, req)
		if err == nil {
			return reference, nil
		}
		lastErr = err

		if ctx.Err() != nil || attempt == g.cfg.MaxAttempts || !isRetryable(err) {
			break
		}

		delay := backoff(g.cfg.BaseDelay, g.cfg.MaxDelay, attempt)
		if g.retries != nil {
			g.retries.Inc()
		}
		g.logger.WarnContext(ctx, "payment gateway retry",
			"payment_id", req.IdempotencyKey.String(),
			"attempt", attempt,
			"delay", delay,
			"error", err,
		)
		if !g.wait(ctx, delay) {
			break
		}
	}
	return "", lastErr
}

func isRetryable(err error) bool {
	return !errors.Is(err, ports.ErrChargeDeclined) &&
		!errors.Is(err, context.Canceled) &&
		!errors.Is(err, context.DeadlineExceeded)
}

// backoff doubles the delay per attempt up to maxDelay.
func backoff(base, maxDelay time.Duration, attempt int) time.Duration {
	d := base << (attempt - 1)
	if d > maxDelay || d <= 0 {
		return maxDelay
	}
	return d
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
