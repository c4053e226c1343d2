package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/JoshuaAmmons/econ-games/internal/repository"
	"github.com/JoshuaAmmons/econ-games/internal/service"
)

// Handler carries the dependencies the REST surface needs.
type Handler struct {
	Sessions *service.SessionService

	// Shared secret exchanged for an admin JWT at /auth/admin.
	AdminToken string
}

func NewHandler(sessions *service.SessionService, adminToken string) *Handler {
	return &Handler{Sessions: sessions, AdminToken: adminToken}
}

func idParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid session id"})
		return 0, false
	}
	return id, true
}

// fail maps service errors onto HTTP statuses.
func fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, service.ErrUnknownGameType),
		errors.Is(err, service.ErrSessionNotJoinable),
		errors.Is(err, service.ErrSessionNotWaiting),
		errors.Is(err, service.ErrSessionNotActive),
		errors.Is(err, service.ErrNoActiveRound):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
