package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	AppPort       string // HTTP + websocket listener
	TCPPort       string // legacy line-protocol listener
	LegacyRoom    string // room password legacy clients are placed in
	AllowedOrigin string

	LogLevel string
	LogJSON  bool

	// Rate limit for websocket upgrades
	WSRateLimit  int
	WSRateWindow int // seconds
}

// Load reads configuration from the environment. Every value has a
// default, so a bare `go run ./cmd/app` works out of the box.
func Load() *Config {
	_ = godotenv.Load()

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	tcpPort := os.Getenv("TCP_PORT")
	if tcpPort == "" {
		tcpPort = "5000"
	}

	legacyRoom := os.Getenv("LEGACY_ROOM")
	if legacyRoom == "" {
		legacyRoom = "legacy"
	}

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}

	wsRateLimit := 30
	if v := os.Getenv("WS_RATE_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			wsRateLimit = n
		}
	}

	wsRateWindow := 60
	if v := os.Getenv("WS_RATE_WINDOW_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			wsRateWindow = n
		}
	}

	return &Config{
		AppPort:       port,
		TCPPort:       tcpPort,
		LegacyRoom:    legacyRoom,
		AllowedOrigin: os.Getenv("ALLOWED_ORIGIN"),
		LogLevel:      logLevel,
		LogJSON:       os.Getenv("LOG_JSON") == "true",
		WSRateLimit:   wsRateLimit,
		WSRateWindow:  wsRateWindow,
	}
}
