package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"chat-pipeline/internal/models"
	"chat-pipeline/internal/repositories"
	"chat-pipeline/internal/services"
)

// RoomHandler manages room provisioning and listing endpoints.
type RoomHandler struct {
	provisioner *services.Provisioner
	rooms       repositories.RoomRepository
}

// NewRoomHandler builds a RoomHandler.
func NewRoomHandler(provisioner *services.Provisioner, rooms repositories.RoomRepository) *RoomHandler {
	return &RoomHandler{provisioner: provisioner, rooms: rooms}
}

// CreatePrivateChat handles POST /rooms/private.
func (h *RoomHandler) CreatePrivateChat(c *gin.Context) {
	var req struct {
		UserA string `json:"user_a" binding:"required"`
		UserB string `json:"user_b" binding:"required"`
		NickA string `json:"nick_a" binding:"required"`
		NickB string `json:"nick_b" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	room, err := h.provisioner.CreatePrivateRoom(c.Request.Context(), req.UserA, req.UserB, req.NickA, req.NickB)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, room.Summary())
}

// CreateGroupChat handles POST /rooms/group.
func (h *RoomHandler) CreateGroupChat(c *gin.Context) {
	var req struct {
		Name            string   `json:"name" binding:"required"`
		Description     string   `json:"description"`
		CreatorID       string   `json:"creator_id" binding:"required"`
		CreatorNickname string   `json:"creator_nickname" binding:"required"`
		MemberIDs       []string `json:"member_ids"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	room, err := h.provisioner.CreateGroupRoom(c.Request.Context(), services.CreateGroupInput{
		Name:            req.Name,
		Description:     req.Description,
		CreatorID:       req.CreatorID,
		CreatorNickname: req.CreatorNickname,
		MemberIDs:       req.MemberIDs,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, room.Summary())
}

// ListRooms handles GET /rooms?user_id=.
func (h *RoomHandler) ListRooms(c *gin.Context) {
	userID := c.Query("user_id")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
		return
	}

	rooms, err := h.rooms.ListRoomsForUser(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load rooms"})
		return
	}

	summaries := make([]models.RoomSummary, 0, len(rooms))
	for _, room := range rooms {
		summaries = append(summaries, room.Summary())
	}
	c.JSON(http.StatusOK, gin.H{"rooms": summaries})
}
