// Package handler exposes the hub over HTTP: the WebSocket endpoint and the
// REST endpoints for message lists, presence and activity.
package handler

import (
	"net/http"
	"strings"

	"lovechat/backend/internal/apperr"
	"lovechat/backend/internal/chathub"
	"lovechat/backend/internal/localization"
	"lovechat/backend/internal/storage"
	"lovechat/backend/internal/thread"

	"github.com/gin-gonic/gin"
)

// Handler holds what the HTTP endpoints need.
type Handler struct {
	Hub      *chathub.Hub
	Threads  *thread.Service
	Activity storage.ActivityStore
	Auth     *Auth
	// ClientBuffer is the outgoing event buffer of each WebSocket client.
	ClientBuffer int
}

func NewHandler(hub *chathub.Hub, activity storage.ActivityStore, auth *Auth, clientBuffer int) *Handler {
	return &Handler{
		Hub:          hub,
		Threads:      hub.Threads,
		Activity:     activity,
		Auth:         auth,
		ClientBuffer: clientBuffer,
	}
}

// Register mounts every route on r.
func (h *Handler) Register(r *gin.Engine) {
	r.GET("/healthz", h.Healthz)

	r.GET("/hubs/message", h.RequireAuth(), h.ServeWebSocket)

	api := r.Group("/api", h.RequireAuth())
	{
		api.GET("/messages", h.ListMessages)
		api.GET("/messages/thread/:username", h.GetThread)
		api.POST("/messages", h.CreateMessage)
		api.DELETE("/messages/:id", h.DeleteMessage)

		api.GET("/presence/online", h.OnlineUsers)
		api.GET("/users/:username/last-active", h.LastActive)
	}
}

// language picks the client's language from ?lang or Accept-Language.
func language(c *gin.Context) string {
	if lang := c.Query("lang"); lang != "" {
		return strings.ToLower(lang)
	}
	if al := c.GetHeader("Accept-Language"); len(al) >= 2 {
		return strings.ToLower(al[:2])
	}
	return localization.DefaultLanguage
}

// writeError maps err to a status code and a localized body.
func (h *Handler) writeError(c *gin.Context, err error) {
	code := apperr.Code(err)
	status := http.StatusInternalServerError
	switch code {
	case apperr.CodeInvalidOperation:
		status = http.StatusBadRequest
	case apperr.CodeNotFound:
		status = http.StatusNotFound
	}

	msg := err.Error()
	if h.Hub.Localizer != nil {
		msg = h.Hub.Localizer.ErrorMessage(language(c), err)
	}
	c.JSON(status, gin.H{"error": code, "message": msg})
}
