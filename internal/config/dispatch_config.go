package config

import (
	"strconv"
	"time"
)

// DispatchConfig holds dispatch coordinator tuning
type DispatchConfig struct {
	// Concurrency bounds the number of in-flight provider sends per
	// campaign. Unbounded fan-out trips the provider rate limiter.
	Concurrency int
	// MaxAttempts applies to transient provider errors only
	MaxAttempts int
	// BackoffBase is the first retry delay; it doubles per attempt up to
	// BackoffCap.
	BackoffBase time.Duration
	BackoffCap  time.Duration
}

// GetDispatchConfig returns dispatch configuration from environment variables
func GetDispatchConfig() *DispatchConfig {
	concurrency, _ := strconv.Atoi(getEnv("DISPATCH_CONCURRENCY", "10"))
	if concurrency < 1 {
		concurrency = 1
	}
	attempts, _ := strconv.Atoi(getEnv("DISPATCH_MAX_ATTEMPTS", "3"))
	if attempts < 1 {
		attempts = 1
	}
	backoffMs, _ := strconv.Atoi(getEnv("DISPATCH_BACKOFF_BASE_MS", "500"))
	capMs, _ := strconv.Atoi(getEnv("DISPATCH_BACKOFF_CAP_MS", "8000"))

	return &DispatchConfig{
		Concurrency: concurrency,
		MaxAttempts: attempts,
		BackoffBase: time.Duration(backoffMs) * time.Millisecond,
		BackoffCap:  time.Duration(capMs) * time.Millisecond,
	}
}

// GetWebhookVerifyToken returns the token expected during the webhook
// verification handshake
func GetWebhookVerifyToken() string {
	return getEnv("WHATSAPP_WEBHOOK_VERIFY_TOKEN", "")
}

// GetJWTSecret returns the shared secret used to verify bearer tokens
// issued by the identity service
func GetJWTSecret() string {
	return getEnv("JWT_SECRET", "")
}
