package middleware

import (
	"net/http"
	"strings"

	"github.com/Janrichter12345/freetables/utils"

	"github.com/gin-gonic/gin"
)

// ContextUserID is the Gin context key carrying the authenticated subject.
const ContextUserID = "userID"

// JWTAuthMiddleware validates the bearer token and exposes its subject on
// the context. The identity provider itself is external; this service only
// verifies the signature and reads the subject claim.
func JWTAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Insufficient authorization",
			})
			return
		}
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")

		subject, err := utils.ExtractSubjectFromToken(tokenString)
		if err != nil || subject == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Insufficient authorization",
			})
			return
		}

		c.Set(ContextUserID, subject)
		c.Next()
	}
}

// UserID returns the authenticated subject set by JWTAuthMiddleware.
func UserID(c *gin.Context) string {
	v, ok := c.Get(ContextUserID)
	if !ok {
		return ""
	}
	id, _ := v.(string)
	return id
}
