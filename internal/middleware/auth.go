package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// SessionRequired rejects dashboard requests that carry no valid session cookie
func SessionRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := GetSession(c)

		if session == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "No dashboard session"})
			return
		}

		c.Next()
	}
}
