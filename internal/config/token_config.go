package config

import "time"

type TokenConfig interface {
	GetTokenFile() string
	GetTokenPassphrase() string
}

type RefreshConfig interface {
	GetTokenURL() string
	GetClientID() string
	GetClientSecret() string
	GetRefreshTimeout() time.Duration
}

type RateLimitConfig interface {
	GetRateLimit() float64
	GetRateBurst() int
}

type Tokens struct{}

var _ TokenConfig = Tokens{}

// GetTokenFile is the encrypted token file; empty keeps tokens in memory only.
func (Tokens) GetTokenFile() string {
	return GetEnv("CLUTCH_TOKEN_FILE", "")
}

func (Tokens) GetTokenPassphrase() string {
	return GetEnv("CLUTCH_TOKEN_PASSPHRASE", "")
}

type Refresh struct{}

var _ RefreshConfig = Refresh{}

// GetTokenURL enables refresh-on-401 when set.
func (Refresh) GetTokenURL() string {
	return GetEnv("CLUTCH_TOKEN_URL", "")
}

func (Refresh) GetClientID() string {
	return GetEnv("CLUTCH_CLIENT_ID", "clutch-mobile")
}

func (Refresh) GetClientSecret() string {
	return GetEnv("CLUTCH_CLIENT_SECRET", "")
}

func (Refresh) GetRefreshTimeout() time.Duration {
	return GetDurationEnv("CLUTCH_REFRESH_TIMEOUT", 10*time.Second)
}

type RateLimit struct{}

var _ RateLimitConfig = RateLimit{}

// GetRateLimit is requests per second; zero disables the limiter.
func (RateLimit) GetRateLimit() float64 {
	return GetFloatEnv("CLUTCH_RATE_LIMIT", 0)
}

func (RateLimit) GetRateBurst() int {
	burst := GetIntEnv("CLUTCH_RATE_BURST", 1)
	if burst < 1 {
		return 1
	}
	return burst
}
