// Package client implements the outgoing request pipeline: request id, an
// optional refresh-on-401 stage, bearer auth, bounded retries with backoff,
// optional rate limiting and metrics, in front of a Transport. Every failure
// leaves Client as an *apierror.Error.
package client

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/jrsteele09/go-auth-client/apierror"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

type Client struct {
	handler Handler
	retrier *Retrier
	logger  zerolog.Logger
}

type options struct {
	policy         RetryPolicy
	publicPaths    []string
	logger         zerolog.Logger
	metrics        *Metrics
	limiter        *rate.Limiter
	refresher      Refresher
	refreshTimeout time.Duration
	sleep          SleepFunc
}

type Option func(*options)

func WithRetryPolicy(policy RetryPolicy) Option {
	return func(o *options) {
		o.policy = policy
	}
}

// WithPublicPaths replaces DefaultPublicPaths.
func WithPublicPaths(paths ...string) Option {
	return func(o *options) {
		o.publicPaths = append([]string(nil), paths...)
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

func WithMetrics(m *Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

func WithRateLimiter(limiter *rate.Limiter) Option {
	return func(o *options) {
		o.limiter = limiter
	}
}

// WithRefresher enables refresh-and-retry on 401.
func WithRefresher(r Refresher) Option {
	return func(o *options) {
		o.refresher = r
	}
}

func WithRefreshTimeout(d time.Duration) Option {
	return func(o *options) {
		o.refreshTimeout = d
	}
}

// WithSleepFunc replaces the backoff wait, mainly for tests.
func WithSleepFunc(sleep SleepFunc) Option {
	return func(o *options) {
		o.sleep = sleep
	}
}

// New builds the pipeline over transport. store supplies the bearer token
// and, when a Refresher is configured, receives refreshed tokens.
func New(transport Transport, store TokenStore, opts ...Option) *Client {
	o := options{
		policy:         DefaultRetryPolicy(),
		publicPaths:    DefaultPublicPaths,
		logger:         log.Logger,
		refreshTimeout: 10 * time.Second,
		sleep:          sleepContext,
	}
	for _, opt := range opts {
		opt(&o)
	}

	retrier := NewRetrier(o.policy,
		WithRetrierLogger(o.logger),
		WithRetrierSleep(o.sleep),
		WithRetrierMetrics(o.metrics),
	)

	var refreshStage, rateLimitStage Interceptor
	if o.refresher != nil {
		coordinator := &refreshCoordinator{
			store:       store,
			refresher:   o.refresher,
			publicPaths: o.publicPaths,
			timeout:     o.refreshTimeout,
			logger:      o.logger,
			metrics:     o.metrics,
		}
		refreshStage = coordinator.Interceptor()
	}
	if o.limiter != nil {
		rateLimitStage = RateLimitInterceptor(o.limiter)
	}

	handler := Chain(transport.Execute,
		RequestIDInterceptor(),
		refreshStage,
		AuthInterceptor(store, o.publicPaths),
		retrier.Interceptor(),
		rateLimitStage,
		o.metrics.Interceptor(),
	)

	return &Client{handler: handler, retrier: retrier, logger: o.logger}
}

// Do sends req. A 2xx response is returned open for the caller to close;
// anything else comes back as an *apierror.Error.
func (c *Client) Do(ctx context.Context, req *Request) (*http.Response, error) {
	resp, err := c.handler(ctx, req)
	if err == nil && resp != nil && isSuccess(resp.StatusCode) {
		return resp, nil
	}

	apiErr := apierror.Normalize(resp, err)
	event := c.logger.Debug().
		Str("method", req.Method()).
		Str("path", req.Path()).
		Str("code", apiErr.Code).
		Int("status", apiErr.Status())
	if err != nil {
		event = event.Err(err)
	}
	event.Msg("Request failed")
	return nil, apiErr
}

// DoJSON sends req and decodes a successful body into out, which may be nil.
func (c *Client) DoJSON(ctx context.Context, req *Request, out any) error {
	resp, err := c.Do(ctx, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		c.logger.Debug().Err(err).Str("path", req.Path()).Msg("Failed to decode response body")
		return apierror.FromError(err)
	}
	return nil
}

func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.DoJSON(ctx, NewRequest(http.MethodGet, path), out)
}

func (c *Client) Post(ctx context.Context, path string, in, out any) error {
	req := NewRequest(http.MethodPost, path)
	if in != nil {
		var err error
		if req, err = req.WithJSON(in); err != nil {
			return apierror.FromError(err)
		}
	}
	return c.DoJSON(ctx, req, out)
}

func (c *Client) RetryPolicy() RetryPolicy {
	return c.retrier.Policy()
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}
