package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"chat-pipeline/internal/repositories"
	"chat-pipeline/internal/services"
)

// MessageHandler manages the send and history endpoints.
type MessageHandler struct {
	ingest   *services.IngestService
	members  repositories.MemberRepository
	messages repositories.MessageRepository
}

// NewMessageHandler builds a MessageHandler.
func NewMessageHandler(ingest *services.IngestService, members repositories.MemberRepository, messages repositories.MessageRepository) *MessageHandler {
	return &MessageHandler{ingest: ingest, members: members, messages: messages}
}

// SendMessage handles POST /rooms/:room_id/messages. The response is a
// provisional acknowledgment; durable storage may complete after return.
func (h *MessageHandler) SendMessage(c *gin.Context) {
	var req struct {
		Content        string `json:"content" binding:"required"`
		SenderID       string `json:"sender_id" binding:"required"`
		SenderNickname string `json:"sender_nickname" binding:"required"`
		Type           string `json:"type"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	msg, err := h.ingest.SendMessage(c.Request.Context(), services.SendMessageInput{
		RoomID:         c.Param("room_id"),
		Content:        req.Content,
		SenderID:       req.SenderID,
		SenderNickname: req.SenderNickname,
		Type:           req.Type,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, msg)
}

// GetMessages handles GET /rooms/:room_id/messages?user_id=. Messages come
// back sorted by creation time regardless of queue arrival order.
func (h *MessageHandler) GetMessages(c *gin.Context) {
	roomID := c.Param("room_id")
	userID := c.Query("user_id")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
		return
	}

	member, err := h.members.IsMember(c.Request.Context(), roomID, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to verify membership"})
		return
	}
	if !member {
		c.JSON(http.StatusForbidden, gin.H{"error": "not a room member"})
		return
	}

	msgs, err := h.messages.ListRoomMessages(c.Request.Context(), roomID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load messages"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"messages": msgs})
}
