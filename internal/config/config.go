package config

import "time"

type Config interface {
	EnvConfig
	RetryConfig
	TokenConfig
	RefreshConfig
	RateLimitConfig
}

type EnvConfig interface {
	GetAppName() string
	GetBaseURL() string
	GetRequestTimeout() time.Duration
	GetEnv() string
}

type mainConfig struct {
	EnvVars
	Retry
	Tokens
	Refresh
	RateLimit
}

func New() Config {
	return mainConfig{}
}
