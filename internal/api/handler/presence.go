package handler

import (
	"net/http"

	"lovechat/backend/internal/models"

	"github.com/gin-gonic/gin"
)

// Healthz reports liveness.
func (h *Handler) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// OnlineUsers lists users with an open connection on this server.
func (h *Handler) OnlineUsers(c *gin.Context) {
	users := h.Hub.OnlineUsers()
	if users == nil {
		users = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

// LastActive returns when :username was last seen by the hub.
func (h *Handler) LastActive(c *gin.Context) {
	username := models.NormalizeUsername(c.Param("username"))
	if h.Hub.Presence.IsOnline(username) {
		c.JSON(http.StatusOK, gin.H{"username": username, "online": true})
		return
	}
	if h.Activity == nil {
		c.JSON(http.StatusOK, gin.H{"username": username, "online": false})
		return
	}

	at, err := h.Activity.GetLastActive(c.Request.Context(), username)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"username": username, "online": false, "lastActive": at})
}
