package middleware

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/campusloop/campusloop-backend/internal/common"
	"github.com/campusloop/campusloop-backend/pkg/jwt"
	"github.com/gin-gonic/gin"
)

const (
	userIDKey = "userID"
	emailKey  = "email"
)

// JWTAuth JWT authentication middleware
func JWTAuth(jwtManager *jwt.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, problem := extractToken(c)
		if problem != "" {
			common.ErrorResponse(c, http.StatusUnauthorized, problem, nil)
			c.Abort()
			return
		}

		claims, err := jwtManager.VerifyToken(tokenString)
		if err != nil {
			if errors.Is(err, jwt.ErrExpiredToken) {
				common.ErrorResponse(c, http.StatusUnauthorized, "Token expired", err)
			} else {
				common.ErrorResponse(c, http.StatusUnauthorized, "Invalid token", err)
			}
			c.Abort()
			return
		}

		c.Set(userIDKey, claims.UserID)
		c.Set(emailKey, claims.Email)
		c.Next()
	}
}

// extractToken reads "Authorization: Bearer <token>".
// WebSocket upgrades may pass ?token= instead since browsers cannot set headers there.
// The second result is the rejection message, empty on success.
func extractToken(c *gin.Context) (string, string) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		if c.IsWebsocket() {
			if t := c.Query("token"); t != "" {
				return t, ""
			}
		}
		return "", "Missing authorization header"
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", "Invalid authorization header format"
	}
	return parts[1], ""
}

// GetUserID extracts user ID from context
func GetUserID(c *gin.Context) string {
	userID, exists := c.Get(userIDKey)
	if !exists {
		return ""
	}
	if str, ok := userID.(string); ok {
		return str
	}
	return ""
}

// GetUserIDUint returns the user ID as the numeric primary key, 0 when absent or malformed
func GetUserIDUint(c *gin.Context) uint {
	id, err := strconv.ParseUint(GetUserID(c), 10, 64)
	if err != nil {
		return 0
	}
	return uint(id)
}

// GetEmail extracts the email claim from context
func GetEmail(c *gin.Context) string {
	return c.GetString(emailKey)
}
