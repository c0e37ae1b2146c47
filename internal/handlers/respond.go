package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"chat-pipeline/internal/chaterr"
	"chat-pipeline/internal/repositories"
)

// respondError maps the pipeline's error taxonomy onto HTTP statuses.
// Duplicate races never reach this point; they are resolved to success below
// the service layer.
func respondError(c *gin.Context, err error) {
	var userNotFound *chaterr.UserNotFoundError
	var tooMany *chaterr.TooManyMembersError

	switch {
	case chaterr.IsValidation(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.As(err, &tooMany):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.As(err, &userNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error(), "missing": userNotFound.Missing})
	case errors.Is(err, chaterr.ErrNotAMember):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, chaterr.ErrMembershipNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, repositories.ErrRoomNotFound),
		errors.Is(err, repositories.ErrUserNotFound),
		errors.Is(err, repositories.ErrMessageNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
