package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"capstone/internal/dto"
	"capstone/internal/pkg/jwt"
	"capstone/internal/service"
	"capstone/pkg/constants"
	pkgErrors "capstone/pkg/errors"
	"capstone/pkg/responses"
)

// AuthMiddleware JWT认证中间件, 角色以 users 表为准
func AuthMiddleware(tokens *jwt.Manager, users service.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 获取Authorization header
		authHeader := c.GetHeader(constants.HeaderAuthorization)
		if authHeader == "" {
			responses.ErrorWithCode(c, pkgErrors.CodeUnauthorized, "缺少Authorization Header")
			c.Abort()
			return
		}

		// 检查Bearer前缀
		if !strings.HasPrefix(authHeader, constants.HeaderBearerPrefix) {
			responses.ErrorWithCode(c, pkgErrors.CodeUnauthorized, "Authorization格式错误")
			c.Abort()
			return
		}

		token := strings.TrimPrefix(authHeader, constants.HeaderBearerPrefix)
		claims, err := tokens.ValidateToken(token)
		if err != nil {
			responses.Error(c, err)
			c.Abort()
			return
		}

		caller, err := users.Resolve(c.Request.Context(), claims.UserID)
		if err != nil {
			responses.Error(c, err)
			c.Abort()
			return
		}

		c.Set(constants.CallerContextKey, caller)
		c.Next()
	}
}

// GetCaller 读取认证后的调用方, 未经过认证时返回 nil
func GetCaller(c *gin.Context) *dto.Caller {
	v, ok := c.Get(constants.CallerContextKey)
	if !ok {
		return nil
	}
	caller, _ := v.(*dto.Caller)
	return caller
}
