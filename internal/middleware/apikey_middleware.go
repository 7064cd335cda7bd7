package middleware

import (
	"crypto/subtle"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

// APIKeyHeader — заголовок, в котором gateway передает ключ доступа
const APIKeyHeader = "X-API-Key"

// APIKeyAuth проверяет ключ доступа для всех маршрутов API.
// Единственный клиент сервиса — gateway сообщества, поэтому достаточно
// одного общего ключа; сравнение константное по времени.
func APIKeyAuth(apiKey string) gin.HandlerFunc {
	if apiKey == "" {
		log.Printf("[APIKeyAuth] ВНИМАНИЕ: ключ API не задан, защита маршрутов отключена")
		return func(c *gin.Context) { c.Next() }
	}

	expected := []byte(apiKey)
	return func(c *gin.Context) {
		provided := []byte(c.GetHeader(APIKeyHeader))
		if subtle.ConstantTimeCompare(provided, expected) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":      "Invalid or missing API key",
				"error_type": "unauthorized",
			})
			return
		}
		c.Next()
	}
}
