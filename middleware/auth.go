package middleware

import (
	"net/http"

	"SproutGo/utils"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware validates the JWT and stores the user id on the context.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := c.GetHeader("Authorization")
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing credentials"})
			return
		}

		claims, err := utils.ParseToken(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}

		c.Set("uid", claims.UserID)
		c.Next()
	}
}
