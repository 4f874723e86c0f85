package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	appNameVar        = "APP_NAME"
	baseURLVar        = "CLUTCH_BASE_URL"
	requestTimeoutVar = "CLUTCH_REQUEST_TIMEOUT"
)

type EnvVars struct{}

var _ EnvConfig = EnvVars{}

func (EnvVars) GetAppName() string {
	return GetEnv(appNameVar, "Clutch Client")
}

// GetBaseURL returns the API root every request path is resolved against
// (e.g., "https://api.clutch.example.com/v1").
func (EnvVars) GetBaseURL() string {
	return strings.TrimRight(GetEnv(baseURLVar, "http://localhost:8080"), "/")
}

// GetRequestTimeout bounds a single attempt, not the whole retry sequence.
func (EnvVars) GetRequestTimeout() time.Duration {
	return GetDurationEnv(requestTimeoutVar, 30*time.Second)
}

func (EnvVars) GetEnv() string {
	env := os.Getenv("ENV")
	if env == "" {
		return "DEV"
	}
	return env
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}

// GetIntEnv returns defaultValue when the variable is unset or not an integer.
func GetIntEnv(envVar string, defaultValue int) int {
	value, err := strconv.Atoi(os.Getenv(envVar))
	if err != nil {
		return defaultValue
	}
	return value
}

// GetDurationEnv accepts Go duration strings ("250ms", "2s") or a bare
// integer number of milliseconds.
func GetDurationEnv(envVar string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	if ms, err := strconv.Atoi(value); err == nil {
		return time.Duration(ms) * time.Millisecond
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return d
}

func GetFloatEnv(envVar string, defaultValue float64) float64 {
	value, err := strconv.ParseFloat(os.Getenv(envVar), 64)
	if err != nil {
		return defaultValue
	}
	return value
}
