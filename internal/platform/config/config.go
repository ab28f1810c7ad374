package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type HTTPConfig struct {
	Addr string
}

type StoreConfig struct {
	DataDir string
	// Backups keeps a .backup copy of each collection file before every write.
	Backups bool
}

type ProviderConfig struct {
	BaseURL string
	Timeout time.Duration
}

type AppConfig struct {
	ServiceName string
	LogLevel    string
	HTTP        HTTPConfig
	Store       StoreConfig
	Provider    ProviderConfig
	CacheTTL    time.Duration
	// NATSURL is optional; empty disables the event publisher and
	// cache invalidation subscription.
	NATSURL string
}

func Load() (AppConfig, error) {
	cfg := AppConfig{
		ServiceName: getenv("SERVICE_NAME", "anitrack"),
		LogLevel:    getenv("LOG_LEVEL", "info"),
		HTTP: HTTPConfig{
			Addr: getenv("HTTP_ADDR", ":8080"),
		},
		Store: StoreConfig{
			DataDir: getenv("DATA_DIR", "./data"),
			Backups: !envBool("DISABLE_BACKUPS", false),
		},
		Provider: ProviderConfig{
			BaseURL: getenv("JIKAN_BASE_URL", ""),
			Timeout: envDuration("PROVIDER_TIMEOUT", 10*time.Second),
		},
		CacheTTL: time.Duration(envInt("CACHE_TTL_SECONDS", 3600)) * time.Second,
		NATSURL:  strings.TrimSpace(os.Getenv("NATS_URL")),
	}
	return cfg, nil
}

func getenv(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

func envInt(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func envBool(key string, fallback bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
