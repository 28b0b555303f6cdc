package wshandler

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"portal-notification-service/internal/middleware"
	"portal-notification-service/pkg/notifier/ws"
)

type WSHandler struct {
	manager *ws.Manager
	log     *zap.Logger
}

func NewWSHandler(manager *ws.Manager, log *zap.Logger) *WSHandler {
	return &WSHandler{manager: manager, log: log}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// origin checks happen at the gateway
		return true
	},
}

// HandleNotifications upgrades HTTP -> WebSocket and registers the
// connection for live inbox pushes.
func (h *WSHandler) HandleNotifications(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFrom(r.Context())

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		http.Error(w, "upgrade failed", http.StatusBadRequest)
		return
	}

	h.log.Info("inbox ws opened", zap.String("user_id", userID))

	c := h.manager.Add(userID, conn)

	// Reader loop: listen for pongs and client messages.
	conn.SetReadLimit(512)
	conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.SetPongHandler(func(string) error {
		c.LastSeen = time.Now()
		conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	h.manager.Remove(c)
}
