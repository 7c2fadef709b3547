package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/procureflow/backend/internal/auth"
	"github.com/procureflow/backend/internal/repository"
	"go.uber.org/zap"
)

// NotificationHandler serves the per-user notification feed.
type NotificationHandler struct {
	notifications *repository.NotificationRepository
	logger        *zap.Logger
}

// NewNotificationHandler creates the notification handler.
func NewNotificationHandler(notifications *repository.NotificationRepository, logger *zap.Logger) *NotificationHandler {
	return &NotificationHandler{notifications: notifications, logger: logger}
}

// List returns the caller's feed, newest first. ?unread=true filters to
// unread entries.
func (h *NotificationHandler) List(c *gin.Context) {
	claims := auth.ClaimsFrom(c)

	feed, err := h.notifications.ListByUser(claims.Username, c.Query("unread") == "true")
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications": feed})
}

// MarkRead marks one of the caller's notifications as read.
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid notification id"})
		return
	}

	claims := auth.ClaimsFrom(c)
	marked, err := h.notifications.MarkRead(id, claims.Username)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if !marked {
		c.JSON(http.StatusNotFound, gin.H{"error": "notification not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"read": id})
}
