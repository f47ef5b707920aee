package engine

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/aws-samples/sample-genai-sign-language-translator/internal/metrics"
	"github.com/aws-samples/sample-genai-sign-language-translator/internal/stage"
)

// Policy is a per-stage retry budget. Attempts are strictly sequential; the
// delay before attempt n+1 is Interval * Multiplier^(n-1).
type Policy struct {
	MaxAttempts int
	Interval    time.Duration
	Multiplier  float64
}

// Default policies, matching the deployed stage retry configuration.
var (
	// GlossPolicy and PosePolicy: 5 attempts, 15s base, x1.5 backoff.
	GlossPolicy = Policy{MaxAttempts: 5, Interval: 15 * time.Second, Multiplier: 1.5}
	PosePolicy  = Policy{MaxAttempts: 5, Interval: 15 * time.Second, Multiplier: 1.5}
	// TranscriptPolicy: 3 attempts at a fixed 2s interval.
	TranscriptPolicy = Policy{MaxAttempts: 3, Interval: 2 * time.Second, Multiplier: 1.0}
)

// withRetry invokes fn up to the policy's budget, backing off between
// attempts. Only retryable stage errors are retried; terminal failures and
// context cancellation surface immediately.
func withRetry(ctx context.Context, pol Policy, stageName string, logger *zap.Logger, fn func() error) error {
	delay := pol.Interval
	var lastErr error

	for attempt := 1; attempt <= pol.MaxAttempts; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if !stage.IsRetryable(lastErr) {
			return lastErr
		}
		if attempt == pol.MaxAttempts {
			break
		}

		metrics.StageRetriesTotal.WithLabelValues(stageName).Inc()
		logger.Warn("Stage invocation failed, retrying",
			zap.String("stage", stageName),
			zap.Int("attempt", attempt),
			zap.Duration("backoff", delay),
			zap.Error(lastErr),
		)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay = time.Duration(float64(delay) * pol.Multiplier)
	}

	return lastErr
}
