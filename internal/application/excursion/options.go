package excursion

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"

	"github.com/sskmusic7/salt-life-excursions-sub001/internal/domain/excursion"
	"github.com/sskmusic7/salt-life-excursions-sub001/internal/infrastructure/logger"
	"github.com/sskmusic7/salt-life-excursions-sub001/internal/infrastructure/telemetry"
)

const (
	defaultReadRetries   = 2
	defaultRetryInterval = 200 * time.Millisecond
	maxRetryInterval     = 2 * time.Second
)

type options struct {
	readRetries   int
	retryInterval time.Duration
	metrics       *telemetry.SupplyMetrics
	logger        *zap.Logger
}

func defaultOptions() options {
	return options{
		readRetries:   defaultReadRetries,
		retryInterval: defaultRetryInterval,
		logger:        zap.NewNop(),
	}
}

// Option configures a service
type Option func(*options)

// WithReadRetries sets how many times a failed read is retried and the
// initial backoff interval. retries == 0 disables retrying.
func WithReadRetries(retries int, interval time.Duration) Option {
	return func(o *options) {
		if retries >= 0 {
			o.readRetries = retries
		}
		if interval > 0 {
			o.retryInterval = interval
		}
	}
}

// WithMetrics records read retries
func WithMetrics(m *telemetry.SupplyMetrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// WithLogger sets the fallback logger used when the context carries none
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

func newOptions(opts []Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func (o options) log(ctx context.Context) *zap.Logger {
	return logger.LOr(ctx, o.logger)
}

// sendRead sends an idempotent read, retrying network failures and
// 5xx/429 responses with exponential backoff
func (o options) sendRead(ctx context.Context, transport excursion.SupplyTransport, req *excursion.SupplyRequest) (*excursion.SupplyResponse, error) {
	if o.readRetries == 0 {
		return transport.Send(ctx, req)
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = o.retryInterval
	b.MaxInterval = maxRetryInterval

	attempt := 0
	operation := func() (*excursion.SupplyResponse, error) {
		attempt++
		resp, err := transport.Send(ctx, req)
		if err == nil {
			return resp, nil
		}
		if ctx.Err() != nil || errors.Is(err, excursion.ErrConfiguration) || !excursion.IsRetryableRead(err) {
			return nil, backoff.Permanent(err)
		}
		return nil, err
	}
	notify := func(err error, wait time.Duration) {
		o.metrics.RecordRetry(ctx, req.Operation)
		o.log(ctx).Info("retrying supply read",
			zap.String("operation", req.Operation),
			zap.Int("attempt", attempt),
			zap.Duration("wait", wait),
			zap.Error(err),
		)
	}

	resp, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(b),
		backoff.WithMaxTries(uint(o.readRetries+1)),
		backoff.WithNotify(notify),
	)
	// the final attempt comes back still marked permanent
	var permanent *backoff.PermanentError
	if errors.As(err, &permanent) {
		err = permanent.Unwrap()
	}
	return resp, err
}
