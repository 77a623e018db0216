package handler

import (
	"net/http"

	"lovechat/backend/internal/chathub"
	"lovechat/backend/internal/config"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  config.ReadBufferSize,
	WriteBufferSize: config.WriteBufferSize,
	// Allow connections from any origin. Restrict in production!
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ServeWebSocket upgrades the request and hands the connection to the hub.
// ?user names the peer whose thread is opened; without it the connection
// only tracks presence.
func (h *Handler) ServeWebSocket(c *gin.Context) {
	username := currentUser(c)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade has already written the error response
		return
	}

	client := chathub.NewWebSocketClient(h.Hub, conn, username, c.Query("user"), language(c), h.ClientBuffer)
	client.Run()
}
