package client

import (
	"net/http"

	"github.com/jrsteele09/go-auth-client/internal/config"
	"golang.org/x/time/rate"
)

// NewFromConfig wires a Client from environment configuration. Extra
// options are applied last and win.
func NewFromConfig(cfg config.Config, store TokenStore, opts ...Option) (*Client, error) {
	httpClient := &http.Client{Timeout: cfg.GetRequestTimeout()}

	transport, err := NewHTTPTransport(cfg.GetBaseURL(), httpClient)
	if err != nil {
		return nil, err
	}

	base := []Option{
		WithRetryPolicy(RetryPolicyFromConfig(cfg)),
		WithRefreshTimeout(cfg.GetRefreshTimeout()),
	}
	if limit := cfg.GetRateLimit(); limit > 0 {
		base = append(base, WithRateLimiter(rate.NewLimiter(rate.Limit(limit), cfg.GetRateBurst())))
	}
	if tokenURL := cfg.GetTokenURL(); tokenURL != "" {
		base = append(base, WithRefresher(NewOAuth2Refresher(tokenURL, cfg.GetClientID(), cfg.GetClientSecret(), httpClient)))
	}

	return New(transport, store, append(base, opts...)...), nil
}
