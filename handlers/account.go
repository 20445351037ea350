package handlers

import (
	"net/http"

	userRepo "taxly/database/repository/user"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AccountHandler serves the authenticated account surface reached with the
// token handed out by the signup funnel.
type AccountHandler struct {
	Repo userRepo.UserRepository
}

func NewAccountHandler(repo userRepo.UserRepository) *AccountHandler {
	return &AccountHandler{Repo: repo}
}

// MeHandler returns the caller's account record. The user ID comes from the
// auth middleware; credential hashes never serialize.
func (h *AccountHandler) MeHandler(c *gin.Context) {
	userID := c.GetString("userID")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	usr, err := h.Repo.GetByID(userID)
	if err != nil {
		getLogger(c).Error("failed to load account", zap.String("userId", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not load account"})
		return
	}

	usr.Password = ""
	c.JSON(http.StatusOK, gin.H{"user": usr})
}
