package http

import (
	"time"

	"github.com/gin-gonic/gin"

	"gomoku_relay/internal/config"
	"gomoku_relay/internal/http/handlers"
	"gomoku_relay/internal/http/middleware"
	"gomoku_relay/internal/relay"
)

func RegisterRoutes(r *gin.Engine, coord *relay.Coordinator, version string, cfg *config.Config) {
	healthHandler := handlers.NewHealthHandler(version)

	// Health checks (no rate limiting)
	r.GET("/health", healthHandler.Health)
	r.GET("/healthz", healthHandler.Liveness)
	r.GET("/readyz", healthHandler.Readiness)

	// WebSocket endpoint for the event-protocol client
	wsRL := middleware.SimpleRateLimit(cfg.WSRateLimit, time.Duration(cfg.WSRateWindow)*time.Second)
	r.GET("/ws", wsRL, handlers.WS(coord, cfg.AllowedOrigin))
}
