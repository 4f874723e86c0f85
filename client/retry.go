package client

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// SleepFunc waits for d or until ctx is done, returning ctx.Err() in the
// latter case.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Retrier drives up to MaxAttempts sequential attempts of one request.
// Connectivity failures and transient statuses are retried; every other
// result ends the loop. It keeps no state between requests.
type Retrier struct {
	policy  RetryPolicy
	logger  zerolog.Logger
	sleep   SleepFunc
	metrics *Metrics
	nowFunc func() time.Time
}

type RetrierOption func(*Retrier)

func WithRetrierLogger(logger zerolog.Logger) RetrierOption {
	return func(r *Retrier) {
		r.logger = logger
	}
}

func WithRetrierSleep(sleep SleepFunc) RetrierOption {
	return func(r *Retrier) {
		r.sleep = sleep
	}
}

func WithRetrierMetrics(m *Metrics) RetrierOption {
	return func(r *Retrier) {
		r.metrics = m
	}
}

func NewRetrier(policy RetryPolicy, options ...RetrierOption) *Retrier {
	r := &Retrier{
		policy:  policy,
		logger:  log.Logger,
		sleep:   sleepContext,
		nowFunc: time.Now,
	}
	for _, opt := range options {
		opt(r)
	}
	return r
}

func (r *Retrier) Policy() RetryPolicy {
	return r.policy
}

func (r *Retrier) Interceptor() Interceptor {
	return func(next Handler) Handler {
		return func(ctx context.Context, req *Request) (*http.Response, error) {
			return r.Do(ctx, req, next)
		}
	}
}

// Do runs req through next. When the attempts run out, the last response
// is returned still open, or the last error if there was no response.
func (r *Retrier) Do(ctx context.Context, req *Request, next Handler) (*http.Response, error) {
	maxAttempts := r.policy.attempts()

	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		outcome := Classify(next(ctx, req))

		switch outcome.Kind {
		case OutcomeSuccess:
			return outcome.Response, nil
		case OutcomeFatal:
			discard(outcome.Response)
			return nil, outcome.Err
		}

		if attempt >= maxAttempts {
			r.logger.Error().
				Str("method", req.Method()).
				Str("path", req.Path()).
				Str("request_id", req.Header(RequestIDHeader)).
				Int("attempts", attempt).
				Str("reason", outcome.Reason).
				Msg("Giving up on request")
			if outcome.Err != nil {
				discard(outcome.Response)
				return nil, outcome.Err
			}
			return outcome.Response, nil
		}

		delay := r.policy.withRetryAfter(r.policy.Delay(attempt), outcome.Response, r.nowFunc())
		discard(outcome.Response)

		if err := ctx.Err(); err != nil {
			return nil, err
		}

		r.logger.Warn().
			Str("method", req.Method()).
			Str("path", req.Path()).
			Str("request_id", req.Header(RequestIDHeader)).
			Int("attempt", attempt).
			Dur("delay", delay).
			Str("reason", outcome.Reason).
			Msg("Retrying request")
		r.metrics.retried(req.Method())

		if err := r.sleep(ctx, delay); err != nil {
			return nil, err
		}
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
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
