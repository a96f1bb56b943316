package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the front-end settings.
type Config struct {
	// APIURL is the backend base URL, including the version prefix.
	APIURL string
	// DBPath is the local state file holding the session and form payloads.
	DBPath string
	// Addr is the listen address of the browser UI.
	Addr    string
	LogPath string
	// SendReturnMetadata includes the return form payload in the body of the
	// return call. Off by default: the backend contract for the return call
	// carries no body.
	SendReturnMetadata bool
	// RefreshSpec is the cron spec for background reservation refreshes.
	// Empty disables them.
	RefreshSpec     string
	NotificationTTL time.Duration
}

// Load reads the configuration from the environment, after loading an
// optional .env file from the working directory.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		APIURL:             strings.TrimRight(getEnv("TOOLSHED_API_URL", "http://localhost:8000/api/v1"), "/"),
		DBPath:             getEnv("TOOLSHED_DB", "toolshed.sqlite3"),
		Addr:               normalizeAddr(getEnv("TOOLSHED_ADDR", "127.0.0.1:3000")),
		LogPath:            getEnv("TOOLSHED_LOG", ""),
		SendReturnMetadata: getBool("TOOLSHED_SEND_RETURN_METADATA", false),
		RefreshSpec:        getEnv("TOOLSHED_REFRESH", "@every 1m"),
		NotificationTTL:    getDuration("TOOLSHED_NOTIFY_TTL", 6*time.Second),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

func normalizeAddr(addr string) string {
	if addr == "" {
		return addr
	}

	if addr[0] == ':' || addr[0] == '[' {
		return addr
	}

	for _, r := range addr {
		if r < '0' || r > '9' {
			return addr
		}
	}

	return ":" + addr
}
