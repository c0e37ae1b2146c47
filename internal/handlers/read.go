package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"chat-pipeline/internal/services"
)

// ReadHandler manages read-position endpoints.
type ReadHandler struct {
	tracker *services.ReadTracker
}

// NewReadHandler builds a ReadHandler.
func NewReadHandler(tracker *services.ReadTracker) *ReadHandler {
	return &ReadHandler{tracker: tracker}
}

// MarkRead handles POST /rooms/:room_id/read.
func (h *ReadHandler) MarkRead(c *gin.Context) {
	var req struct {
		UserID        string `json:"user_id" binding:"required"`
		LastMessageID string `json:"last_message_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var lastMessageID *string
	if req.LastMessageID != "" {
		lastMessageID = &req.LastMessageID
	}

	member, err := h.tracker.MarkRead(c.Request.Context(), c.Param("room_id"), req.UserID, lastMessageID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, member)
}

// GetUnreadCounts handles GET /unread?user_id=&room_ids=a,b.
func (h *ReadHandler) GetUnreadCounts(c *gin.Context) {
	userID := c.Query("user_id")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
		return
	}

	counts, err := h.tracker.GetUnreadCounts(c.Request.Context(), userID, c.QueryArray("room_ids"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"counts": counts})
}
