package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"gomoku_relay/internal/http/middleware"
	"gomoku_relay/internal/logger"
	"gomoku_relay/internal/relay"
	"gomoku_relay/internal/ws"
)

// WS upgrades the request and hands the connection to the event
// gateway. Each connection gets a server-generated uuid as its handle;
// room membership comes later through the join event.
func WS(coord *relay.Coordinator, allowedOrigin string) gin.HandlerFunc {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if allowedOrigin == "" {
				return true
			}
			return r.Header.Get("Origin") == allowedOrigin
		},
	}

	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			middleware.WSUpgrades.WithLabelValues("error").Inc()
			logger.Warn("ws upgrade failed", "remote", c.ClientIP(), "err", err)
			return
		}
		middleware.WSUpgrades.WithLabelValues("ok").Inc()

		client := ws.NewClient(uuid.NewString(), conn, coord)
		go client.Run()
	}
}
