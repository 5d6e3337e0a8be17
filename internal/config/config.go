package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	HTTPAddr     string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	MarketplaceEmail    string
	MarketplacePassword string

	ChromeExecutable string
	ProfileDir       string
	UserAgent        string
	ChromeDebugPort  int
	CDPBaseURL       string

	LoginMaxWait       time.Duration
	LoginPollInterval  time.Duration
	MarketplaceMaxWait time.Duration

	DataDir       string
	ImagesDir     string
	DebugShotsDir string

	ForceVehicleType string
	WaitForEnter     bool

	PostgresDSN string
	RedisAddr   string
}

func Load() Config {
	return Config{
		HTTPAddr:     envOrDefault("LOTPOSTER_HTTP_ADDR", "127.0.0.1:3233"),
		ReadTimeout:  durationOrDefault("LOTPOSTER_READ_TIMEOUT", 15*time.Second),
		WriteTimeout: durationOrDefault("LOTPOSTER_WRITE_TIMEOUT", 15*time.Minute),
		IdleTimeout:  durationOrDefault("LOTPOSTER_IDLE_TIMEOUT", 60*time.Second),

		MarketplaceEmail:    os.Getenv("FACEBOOK_EMAIL"),
		MarketplacePassword: os.Getenv("FACEBOOK_PASSWORD"),

		ChromeExecutable: os.Getenv("CHROME_EXECUTABLE"),
		ProfileDir:       envOrDefault("USER_DATA_DIR", defaultProfileDir()),
		UserAgent:        envOrDefault("USER_AGENT", defaultUserAgent),
		ChromeDebugPort:  intOrDefault("CHROME_DEBUG_PORT", 9222),
		CDPBaseURL:       os.Getenv("CDP_BASE_URL"),

		LoginMaxWait:       durationOrDefault("FB_LOGIN_MAX_WAIT", 10*time.Minute),
		LoginPollInterval:  durationOrDefault("FB_LOGIN_POLL_INTERVAL", 1500*time.Millisecond),
		MarketplaceMaxWait: durationOrDefault("FB_MARKETPLACE_MAX_WAIT", 2*time.Minute),

		DataDir:       envOrDefault("LOTPOSTER_DATA_DIR", "data"),
		ImagesDir:     envOrDefault("LOTPOSTER_IMAGES_DIR", "images"),
		DebugShotsDir: os.Getenv("DEBUG_SHOTS_DIR"),

		ForceVehicleType: envOrDefault("FORCE_VEHICLE_TYPE", "Car/van"),
		WaitForEnter:     boolOrDefault("WAIT_FOR_ENTER", true),

		PostgresDSN: os.Getenv("POSTGRES_DSN"),
		RedisAddr:   os.Getenv("REDIS_ADDR"),
	}
}

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

func defaultProfileDir() string {
	return filepath.Join(".", ".chrome-profile")
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func durationOrDefault(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func intOrDefault(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func boolOrDefault(key string, fallback bool) bool {
	value := strings.TrimSpace(strings.ToLower(os.Getenv(key)))
	if value == "" {
		return fallback
	}
	switch value {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}
