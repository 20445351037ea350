package handlers

import (
	"errors"
	"net/http"

	"taxly/services/verification"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// VerifyHandler consumes verification links clicked from the email.
type VerifyHandler struct {
	Verifier verification.Service
}

func NewVerifyHandler(verifier verification.Service) *VerifyHandler {
	return &VerifyHandler{Verifier: verifier}
}

// VerifyEmailHandler marks the address verified and leaves a signal for the
// originating flow to pick up. The tab that opened the link is throwaway, so
// the response is a plain confirmation page payload.
func (h *VerifyHandler) VerifyEmailHandler(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing verification token"})
		return
	}

	signal, err := h.Verifier.Confirm(c.Request.Context(), token)
	if err != nil {
		if errors.Is(err, verification.ErrInvalidToken) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "This verification link is invalid or has expired"})
			return
		}
		getLogger(c).Error("email verification failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not verify email. Please try again."})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Email verified. You can close this tab and return to your signup.",
		"email":   signal.Email,
	})
}
