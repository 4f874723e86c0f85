package config

import (
	"strings"
	"time"
)

const (
	maxRetryAttemptsVar = "CLUTCH_MAX_RETRY_ATTEMPTS"
	retryBaseDelayVar   = "CLUTCH_RETRY_BASE_DELAY"
	retryMaxDelayVar    = "CLUTCH_RETRY_MAX_DELAY"
	backoffVar          = "CLUTCH_BACKOFF"
	retryJitterVar      = "CLUTCH_RETRY_JITTER"

	BackoffExponential = "exponential"
	BackoffLinear      = "linear"
)

type RetryConfig interface {
	GetMaxRetryAttempts() int
	GetRetryBaseDelay() time.Duration
	GetRetryMaxDelay() time.Duration
	GetBackoffStrategy() string
	GetRetryJitter() float64
}

type Retry struct{}

var _ RetryConfig = Retry{}

func (Retry) GetMaxRetryAttempts() int {
	attempts := GetIntEnv(maxRetryAttemptsVar, 3)
	if attempts < 1 {
		return 1
	}
	return attempts
}

func (Retry) GetRetryBaseDelay() time.Duration {
	return GetDurationEnv(retryBaseDelayVar, 1000*time.Millisecond)
}

func (Retry) GetRetryMaxDelay() time.Duration {
	return GetDurationEnv(retryMaxDelayVar, 30*time.Second)
}

// GetBackoffStrategy returns "exponential" unless "linear" is requested.
func (Retry) GetBackoffStrategy() string {
	if strings.EqualFold(GetEnv(backoffVar, BackoffExponential), BackoffLinear) {
		return BackoffLinear
	}
	return BackoffExponential
}

// GetRetryJitter is the +/- fraction applied to each delay, clamped to [0, 1].
func (Retry) GetRetryJitter() float64 {
	j := GetFloatEnv(retryJitterVar, 0)
	switch {
	case j < 0:
		return 0
	case j > 1:
		return 1
	}
	return j
}
