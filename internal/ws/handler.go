package ws

import (
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/JoshuaAmmons/econ-games/internal/service"
)

// HandleWS upgrades the connection for an authenticated player. The
// player token carries both the player and the session, so the URL
// needs nothing beyond ?token=.
func HandleWS(hub *Hub, sink Sink) gin.HandlerFunc {
	allowedOrigin := os.Getenv("ALLOWED_ORIGIN")
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			if allowedOrigin == "" {
				return true
			}
			return r.Header.Get("Origin") == allowedOrigin
		},
	}

	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "token required"})
			return
		}

		playerID, sessionID, err := service.ParsePlayerToken(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			wsLog().Warn("upgrade failed", "error", err)
			return
		}

		client := NewClient(playerID, sessionID, conn, hub, sink)
		go client.Run()
	}
}
