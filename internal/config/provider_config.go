package config

import (
	"os"
	"strconv"
	"time"
)

// ProviderConfig holds WhatsApp Cloud API configuration
type ProviderConfig struct {
	BaseURL        string
	AccessToken    string
	PhoneNumberID  string
	RequestTimeout time.Duration
}

// GetProviderConfig returns provider configuration from environment variables
func GetProviderConfig() *ProviderConfig {
	timeoutSec, _ := strconv.Atoi(getEnv("WHATSAPP_REQUEST_TIMEOUT_SECONDS", "15"))

	return &ProviderConfig{
		BaseURL:        getEnv("WHATSAPP_API_BASE_URL", "https://graph.facebook.com/v18.0"),
		AccessToken:    getEnv("WHATSAPP_ACCESS_TOKEN", ""),
		PhoneNumberID:  getEnv("WHATSAPP_PHONE_NUMBER_ID", ""),
		RequestTimeout: time.Duration(timeoutSec) * time.Second,
	}
}

// getEnv gets environment variable with fallback default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
