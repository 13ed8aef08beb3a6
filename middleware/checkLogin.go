package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// 檢查是否已登入
func CheckLoginMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, exists := GetSubject(c); !exists {
			c.JSON(http.StatusUnauthorized, gin.H{
				"message": "not authorized",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
