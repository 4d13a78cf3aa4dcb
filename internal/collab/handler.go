package collab

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	// Cross-origin policy is enforced at the HTTP layer; websocket
	// access is gated by the token carried in the request.
	CheckOrigin: func(*http.Request) bool { return true },
}

// ServeWS upgrades the request and attaches the connection to the
// given room. The user name comes from the authenticated request.
func ServeWS(hub *Hub, w http.ResponseWriter, r *http.Request, roomID, user string, logger *slog.Logger) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn("websocket upgrade failed", "room", roomID, "error", err)
		return
	}
	NewClient(hub, conn, roomID, user, logger).Start()
}
