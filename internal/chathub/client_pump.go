package chathub

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"lovechat/backend/internal/apperr"
	"lovechat/backend/internal/config"
	"lovechat/backend/internal/models"

	"github.com/gorilla/websocket"
)

// readPump joins the client to the hub, then reads commands until the
// connection drops. The hub disconnect always runs on the way out; it closes
// the send channel and writePump closes the socket once queued events are out.
func (c *WebSocketClient) readPump() {
	ctx := context.Background()
	defer func() {
		if err := c.Hub.HandleDisconnect(ctx, c); err != nil {
			log.Printf("ERROR: disconnect of %s: %v", c.ConnectionID, err)
		}
	}()

	if err := c.Hub.HandleConnect(ctx, c); err != nil {
		log.Printf("Connect of %s rejected: %v", c.ConnectionID, err)
		c.Hub.ReportError(c, err)
		return
	}

	c.Conn.SetReadLimit(config.MaxFrameSize)
	c.Conn.SetReadDeadline(time.Now().Add(config.PongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(config.PongWait))
		return nil
	})

	for {
		_, data, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("error reading message: %v", err)
			}
			return
		}

		var cmd models.ClientCommand
		if err := json.Unmarshal(data, &cmd); err != nil {
			log.Printf("Error decoding JSON from client %s: %v", c.ConnectionID, err)
			c.Hub.ReportError(c, apperr.InvalidOperation("unknown command"))
			continue
		}

		if err := c.Hub.HandleSend(ctx, c, cmd); err != nil {
			c.Hub.ReportError(c, err)
		}
	}
}

// writePump writes queued events to the WebSocket, one frame per event,
// and keeps the connection alive with pings.
func (c *WebSocketClient) writePump() {
	ticker := time.NewTicker(config.PingPeriod)

	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case ev, ok := <-c.send:
			c.Conn.SetWriteDeadline(time.Now().Add(config.WriteWait))
			if !ok {
				// the hub closed the channel
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.Conn.WriteJSON(ev); err != nil {
				log.Printf("Error writing event %s to client %s: %v", ev.Type, c.ConnectionID, err)
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(config.WriteWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
