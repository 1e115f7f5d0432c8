package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/SIYAM1809/Real-Estate-Management-System/internal/auth"
	"github.com/SIYAM1809/Real-Estate-Management-System/internal/models"
)

const (
	// ContextKeyUserID holds the key for user ID in Gin context.
	ContextKeyUserID = "userID"
	// ContextKeyRole holds the key for the user's role in Gin context.
	ContextKeyRole = "role"
)

// AuthMiddleware creates a Gin middleware for JWT authentication.
func AuthMiddleware(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header format must be Bearer {token}"})
			return
		}

		claims, err := auth.ValidateJWT(parts[1], jwtSecret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": fmt.Sprintf("Invalid or expired token: %v", err)})
			return
		}

		c.Set(ContextKeyUserID, claims.UserID)
		c.Set(ContextKeyRole, claims.Role)

		c.Next()
	}
}

// RoleMiddleware allows the request through only for the given roles.
// Assumes AuthMiddleware runs first.
func RoleMiddleware(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := RoleFromContext(c)
		if ok {
			for _, allowed := range roles {
				if role == allowed {
					c.Next()
					return
				}
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": fmt.Sprintf("Requires role %v", roles)})
	}
}

// UserIDFromContext returns the authenticated user id, if any.
func UserIDFromContext(c *gin.Context) (string, bool) {
	userID := c.GetString(ContextKeyUserID)
	return userID, userID != ""
}

// RoleFromContext returns the authenticated user's role, if any.
func RoleFromContext(c *gin.Context) (models.Role, bool) {
	v, exists := c.Get(ContextKeyRole)
	if !exists {
		return "", false
	}
	role, ok := v.(models.Role)
	return role, ok
}
