package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/NoBodyyy-dev/shispare-backend-sub000/internal/adapter/http/middleware"
	"github.com/NoBodyyy-dev/shispare-backend-sub000/internal/logging"
	"github.com/NoBodyyy-dev/shispare-backend-sub000/internal/notify"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// WSHandler attaches a realtime client to the hub. Browsers cannot set an
// Authorization header on the upgrade request, so the token also comes as a
// query parameter.
type WSHandler struct {
	hub      *notify.Hub
	authz    *middleware.Authz
	upgrader websocket.Upgrader
}

func NewWSHandler(hub *notify.Hub, authz *middleware.Authz) *WSHandler {
	return &WSHandler{
		hub:   hub,
		authz: authz,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

// clientCommand is what the frontend sends over the socket: room
// subscriptions scoped to a specific order.
type clientCommand struct {
	Action string `json:"action"` // "subscribe" | "unsubscribe"
	Room   string `json:"room"`
}

func (h *WSHandler) Attach(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}
	ident, ok := h.authz.VerifyToken(token)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logging.From(c).Error("websocket upgrade failed", "error", err)
		return
	}

	client := notify.NewClient(ident.UserID, ident.Role)
	h.hub.Register(client)

	go h.writePump(conn, client)
	go h.readPump(conn, client)
}

func (h *WSHandler) readPump(conn *websocket.Conn, client *notify.Client) {
	defer func() {
		h.hub.Unregister(client)
		_ = conn.Close()
	}()
	conn.SetReadLimit(1024)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var cmd clientCommand
		if err := json.Unmarshal(raw, &cmd); err != nil {
			continue
		}
		switch cmd.Action {
		case "subscribe":
			h.hub.Join(client, cmd.Room)
		case "unsubscribe":
			h.hub.Leave(client, cmd.Room)
		}
	}
}

func (h *WSHandler) writePump(conn *websocket.Conn, client *notify.Client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = conn.Close()
	}()

	for {
		select {
		case msg, ok := <-client.Send:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
