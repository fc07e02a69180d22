package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const workerPhoneKey = "worker_phone"

type TokenParser interface {
	Parse(token string) (string, error)
}

// WorkerAuth requires a bearer token from /api/worker/login and stores the
// phone it is scoped to in the request context.
func WorkerAuth(parser TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing worker token"})
			return
		}

		phone, err := parser.Parse(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid worker token"})
			return
		}

		c.Set(workerPhoneKey, phone)
		c.Next()
	}
}

// WorkerPhone returns the phone set by WorkerAuth.
func WorkerPhone(c *gin.Context) (string, bool) {
	value, ok := c.Get(workerPhoneKey)
	if !ok {
		return "", false
	}
	phone, ok := value.(string)
	return phone, ok && phone != ""
}
