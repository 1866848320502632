package handler

import (
	"net/http"
	"strings"

	"campusreport/backend/internal/feed"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// originAllowed matches the Origin header against the configured origins.
// Requests without an Origin header come from non-browser clients and rely on the bearer token alone.
func originAllowed(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || len(allowed) == 0 {
			return true
		}
		for _, a := range allowed {
			if a == "*" || strings.EqualFold(a, origin) {
				return true
			}
		}
		return false
	}
}

// ServeComplaintFeed upgrades to a websocket streaming complaint events.
// RequireAuth and RequireRole have already run.
func (h *Handler) ServeComplaintFeed(c *gin.Context) {
	sess, _ := sessionFrom(c)

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     originAllowed(h.AllowedOrigins),
	}
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		return
	}

	client := feed.NewWebSocketClient(h.Hub, sess.UserID, conn)
	if !h.Hub.Register(client) {
		conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"))
		conn.Close()
		return
	}
	client.Run()
}
