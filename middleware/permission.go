package middleware

import (
	"net/http"

	"CoffeeShop/models"
	"github.com/gin-gonic/gin"
)

// 檢查角色權限，需接在CheckLoginMiddleware之後
func CheckPermissionMiddleware(capability models.Capability) gin.HandlerFunc {
	return func(c *gin.Context) {
		subject, exists := GetSubject(c)
		if !exists {
			log.Error("permission check without subject")
			c.JSON(http.StatusInternalServerError, gin.H{
				"message": "missing subject",
			})
			c.Abort()
			return
		}
		if !subject.Can(capability) {
			c.JSON(http.StatusForbidden, gin.H{
				"message": "permission denied",
				"error":   string(capability) + " required",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
