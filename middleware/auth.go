package middleware

import (
	"github.com/gin-gonic/gin"
)

const (
	subjectKey = "Subject"
	tokenKey   = "Token"
)

// 解析身分，不中斷請求
func AuthMiddleware(gate Authorizer) gin.HandlerFunc {
	return func(c *gin.Context) {
		subject, ok := gate.Authorize(c.Request)
		if !ok {
			c.Next()
			return
		}

		c.Set(tokenKey, bearerToken(c.Request))
		c.Set(subjectKey, subject)
		c.Next()
	}
}

func GetSubject(c *gin.Context) (Subject, bool) {
	value, exists := c.Get(subjectKey)
	if !exists {
		return Subject{}, false
	}
	subject, ok := value.(Subject)
	return subject, ok
}

func GetToken(c *gin.Context) (string, bool) {
	value, exists := c.Get(tokenKey)
	if !exists {
		return "", false
	}
	token, ok := value.(string)
	return token, ok
}
