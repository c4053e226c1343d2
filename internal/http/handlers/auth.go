package handlers

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/JoshuaAmmons/econ-games/internal/service"
)

type adminAuthRequest struct {
	Token string `json:"token" binding:"required"`
}

// AdminAuth exchanges the shared console secret for a short-lived admin
// JWT.
func (h *Handler) AdminAuth(c *gin.Context) {
	var req adminAuthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "token required"})
		return
	}
	if subtle.ConstantTimeCompare([]byte(req.Token), []byte(h.AdminToken)) != 1 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}
	token, err := service.GenerateAdminToken()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}
