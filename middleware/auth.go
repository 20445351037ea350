package middleware

import (
	"net/http"
	"strings"

	userRepo "taxly/database/repository/user"
	"taxly/utils"

	"github.com/gin-gonic/gin"
)

// JWTAuthMiddleware authenticates requests with the bearer token minted
// during signup. The token's hash must match the one stored on the account
// record, so revoking is a single field rewrite.
func JWTAuthMiddleware(repo userRepo.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			utils.JSONError(c, http.StatusUnauthorized, "Insufficient authorization", "missing bearer token")
			c.Abort()
			return
		}
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")

		userID, err := utils.ExtractIDFromToken(tokenString)
		if err != nil || userID == "" {
			utils.JSONError(c, http.StatusUnauthorized, "Insufficient authorization", "invalid token")
			c.Abort()
			return
		}

		usr, err := repo.GetByID(userID)
		if err != nil || usr == nil {
			utils.JSONError(c, http.StatusUnauthorized, "Authentication error", "unknown account")
			c.Abort()
			return
		}
		if usr.TokenHash == "" || usr.TokenHash != utils.HashToken(tokenString) {
			utils.JSONError(c, http.StatusUnauthorized, "Token mismatch", "token has been revoked")
			c.Abort()
			return
		}

		c.Set("userID", userID)
		c.Next()
	}
}
