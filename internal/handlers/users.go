package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"chat-pipeline/internal/models"
	"chat-pipeline/internal/repositories"
)

// UserHandler manages user profile endpoints.
type UserHandler struct {
	users repositories.UserRepository
}

// NewUserHandler builds a UserHandler.
func NewUserHandler(users repositories.UserRepository) *UserHandler {
	return &UserHandler{users: users}
}

// CreateUser handles POST /users. Creating an existing email returns the
// stored record unchanged.
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req struct {
		Email       string `json:"email" binding:"required"`
		Nickname    string `json:"nickname" binding:"required"`
		Avatar      string `json:"avatar"`
		Description string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.users.CreateUser(c.Request.Context(), models.User{
		Email:       req.Email,
		Nickname:    req.Nickname,
		Avatar:      req.Avatar,
		Description: req.Description,
		Owner:       req.Email,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create user"})
		return
	}

	c.JSON(http.StatusCreated, user)
}

// GetUser handles GET /users/:email.
func (h *UserHandler) GetUser(c *gin.Context) {
	user, err := h.users.GetUser(c.Request.Context(), c.Param("email"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// UpdateUser handles PUT /users/:email.
func (h *UserHandler) UpdateUser(c *gin.Context) {
	var req struct {
		Nickname    string `json:"nickname" binding:"required"`
		Avatar      string `json:"avatar"`
		Description string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.users.UpdateProfile(c.Request.Context(), c.Param("email"), req.Nickname, req.Avatar, req.Description)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}
