package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"capstone/pkg/constants"
)

const requestIDKey = "request_id"

// RequestID 透传或生成请求ID
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(constants.HeaderRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(constants.HeaderRequestID, id)
		c.Next()
	}
}
