package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"lovechat/backend/internal/apperr"
	"lovechat/backend/internal/models"
	"lovechat/backend/internal/storage"

	"github.com/gin-gonic/gin"
)

// CreateMessageRequest is the body of POST /api/messages.
type CreateMessageRequest struct {
	RecipientUsername string `json:"recipientUsername" binding:"required"`
	Content           string `json:"content" binding:"required"`
}

// paginationHeader is the JSON carried in the Pagination response header.
type paginationHeader struct {
	CurrentPage  int `json:"currentPage"`
	ItemsPerPage int `json:"itemsPerPage"`
	TotalItems   int `json:"totalItems"`
	TotalPages   int `json:"totalPages"`
}

// ListMessages returns a page of the caller's Inbox, Outbox or Unread messages.
func (h *Handler) ListMessages(c *gin.Context) {
	pageNumber, _ := strconv.Atoi(c.DefaultQuery("pageNumber", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "0"))

	page, err := h.Threads.GetMessagesForUser(c.Request.Context(), models.MessageParams{
		Username:   currentUser(c),
		Container:  c.DefaultQuery("container", models.ContainerUnread),
		PageNumber: pageNumber,
		PageSize:   pageSize,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	header, _ := json.Marshal(paginationHeader{
		CurrentPage:  page.CurrentPage,
		ItemsPerPage: page.PageSize,
		TotalItems:   page.TotalCount,
		TotalPages:   page.TotalPages,
	})
	c.Header("Pagination", string(header))
	c.Header("Access-Control-Expose-Headers", "Pagination")
	c.JSON(http.StatusOK, page.Items)
}

// GetThread returns the thread with :username and marks the caller's unread
// messages in it as read.
func (h *Handler) GetThread(c *gin.Context) {
	ctx := c.Request.Context()
	viewer, other := currentUser(c), c.Param("username")

	var msgs []models.Message
	err := h.Hub.Storage.Transaction(ctx, func(tx storage.Storage) error {
		var err error
		msgs, err = h.Threads.WithStorage(tx).CatchUp(ctx, viewer, other)
		return err
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	if msgs == nil {
		msgs = []models.Message{}
	}
	c.JSON(http.StatusOK, msgs)
}

// CreateMessage sends a message outside any WebSocket connection. Routing
// and read state follow the same rules as a live send.
func (h *Handler) CreateMessage(c *gin.Context) {
	var req CreateMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": apperr.CodeInvalidOperation, "message": err.Error()})
		return
	}

	msg, err := h.Hub.SendMessage(c.Request.Context(), currentUser(c), req.RecipientUsername, req.Content)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, msg)
}

// DeleteMessage hides a message on the caller's side.
func (h *Handler) DeleteMessage(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": apperr.CodeInvalidOperation, "message": "invalid message id"})
		return
	}

	if err := h.Threads.DeleteMessage(c.Request.Context(), uint(id), currentUser(c)); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
