package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestIDHeader — заголовок сквозного идентификатора запроса
const RequestIDHeader = "X-Request-ID"

// RequestID прокидывает идентификатор запроса из заголовка gateway
// или генерирует новый. Значение доступно в контексте под ключом "request_id"
// и возвращается клиенту в том же заголовке.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set("request_id", requestID)
		c.Header(RequestIDHeader, requestID)
		c.Next()
	}
}
