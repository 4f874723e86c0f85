package client

import (
	"math"
	"math/rand"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/jrsteele09/go-auth-client/internal/config"
)

type BackoffStrategy int

const (
	// BackoffExponential waits BaseDelay * 2^(n-1) after attempt n.
	BackoffExponential BackoffStrategy = iota
	// BackoffLinear waits BaseDelay * n after attempt n.
	BackoffLinear
)

func (s BackoffStrategy) String() string {
	if s == BackoffLinear {
		return config.BackoffLinear
	}
	return config.BackoffExponential
}

func ParseBackoffStrategy(s string) BackoffStrategy {
	if strings.EqualFold(strings.TrimSpace(s), config.BackoffLinear) {
		return BackoffLinear
	}
	return BackoffExponential
}

// RetryPolicy bounds the retry stage. MaxDelay of zero means uncapped.
// Jitter spreads each delay by +/- that fraction.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	Strategy    BackoffStrategy
	Jitter      float64
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		BaseDelay:   1000 * time.Millisecond,
		MaxDelay:    30 * time.Second,
		Strategy:    BackoffExponential,
	}
}

func RetryPolicyFromConfig(cfg config.RetryConfig) RetryPolicy {
	return RetryPolicy{
		MaxAttempts: cfg.GetMaxRetryAttempts(),
		BaseDelay:   cfg.GetRetryBaseDelay(),
		MaxDelay:    cfg.GetRetryMaxDelay(),
		Strategy:    ParseBackoffStrategy(cfg.GetBackoffStrategy()),
		Jitter:      cfg.GetRetryJitter(),
	}
}

func (p RetryPolicy) attempts() int {
	if p.MaxAttempts < 1 {
		return 1
	}
	return p.MaxAttempts
}

// Delay is the wait after failed attempt n (1-based) before attempt n+1.
func (p RetryPolicy) Delay(attempt int) time.Duration {
	if attempt < 1 || p.BaseDelay <= 0 {
		return 0
	}

	var factor float64
	switch p.Strategy {
	case BackoffLinear:
		factor = float64(attempt)
	default:
		factor = math.Pow(2, float64(attempt-1))
	}

	d := float64(p.BaseDelay) * factor
	if p.Jitter > 0 {
		d *= 1 - p.Jitter + rand.Float64()*2*p.Jitter
	}
	return p.capped(d)
}

func (p RetryPolicy) capped(d float64) time.Duration {
	if d >= math.MaxInt64 {
		d = math.MaxInt64
	}
	out := time.Duration(d)
	if p.MaxDelay > 0 && out > p.MaxDelay {
		return p.MaxDelay
	}
	return out
}

// withRetryAfter raises delay to a server-supplied Retry-After, still
// bounded by MaxDelay.
func (p RetryPolicy) withRetryAfter(delay time.Duration, resp *http.Response, now time.Time) time.Duration {
	if resp == nil {
		return delay
	}
	after, ok := parseRetryAfter(resp.Header.Get("Retry-After"), now)
	if !ok || after <= delay {
		return delay
	}
	return p.capped(float64(after))
}

func parseRetryAfter(value string, now time.Time) (time.Duration, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}
	if secs, err := strconv.Atoi(value); err == nil {
		if secs < 0 {
			return 0, false
		}
		return time.Duration(secs) * time.Second, true
	}
	if at, err := http.ParseTime(value); err == nil {
		if d := at.Sub(now); d > 0 {
			return d, true
		}
	}
	return 0, false
}
