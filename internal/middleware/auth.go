package middleware

import (
	"net/http"
	"strings"

	"github.com/epeers/stocktrack/internal/models"
	"github.com/gin-gonic/gin"
)

const UserIDKey = "user_id"

// TokenVerifier resolves a session token to a user id
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// Authenticate extracts the user ID from a Bearer session token. Requests
// without a valid token pass through unauthenticated.
func Authenticate(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := BearerToken(c)
		if token == "" {
			c.Next()
			return
		}

		userID, err := verifier.Verify(token)
		if err != nil {
			c.Next()
			return
		}

		c.Set(UserIDKey, userID)
		c.Next()
	}
}

// BearerToken returns the token from the Authorization header, or ""
func BearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// GetUserID retrieves the user ID from the context
func GetUserID(c *gin.Context) (string, bool) {
	userID, exists := c.Get(UserIDKey)
	if !exists {
		return "", false
	}
	return userID.(string), true
}

// RequireAuth ensures a user is authenticated
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, exists := GetUserID(c); !exists {
			c.JSON(http.StatusUnauthorized, models.ErrorResponse{
				Error:   "unauthorized",
				Message: "authentication required",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}
