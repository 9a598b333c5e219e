package responses

import (
	"github.com/gin-gonic/gin"

	pkgErrors "capstone/pkg/errors"
)

// Response 统一响应结构
type Response struct {
	Code    int            `json:"code"`
	Kind    pkgErrors.Kind `json:"kind,omitempty"`
	Message string         `json:"message"`
	Detail  string         `json:"detail,omitempty"` // 详细错误信息（可选）
	Data    interface{}    `json:"data,omitempty"`
}

// Success 成功响应
func Success(c *gin.Context, data interface{}) {
	c.JSON(200, Response{
		Code:    pkgErrors.CodeSuccess,
		Message: "success",
		Data:    data,
	})
}

// SuccessWithMessage 带消息的成功响应
func SuccessWithMessage(c *gin.Context, message string, data interface{}) {
	c.JSON(200, Response{
		Code:    pkgErrors.CodeSuccess,
		Message: message,
		Data:    data,
	})
}

// Error 错误响应
func Error(c *gin.Context, err error) {
	if appErr, ok := pkgErrors.As(err); ok {
		// 统一返回HTTP 200，业务错误码在response.code中
		c.JSON(200, Response{
			Code:    appErr.Code,
			Kind:    appErr.Kind,
			Message: appErr.Message,
		})
		return
	}

	// 未知错误也返回HTTP 200, 不向外暴露内部细节
	_ = c.Error(err)
	c.JSON(200, Response{
		Code:    pkgErrors.CodeInternalError,
		Kind:    pkgErrors.KindInternal,
		Message: pkgErrors.ErrInternalError.Message,
	})
}

// ErrorWithCode 自定义错误响应
func ErrorWithCode(c *gin.Context, code int, message string) {
	appErr := pkgErrors.New(code, message)
	c.JSON(200, Response{
		Code:    appErr.Code,
		Kind:    appErr.Kind,
		Message: appErr.Message,
	})
}

// ErrorWithDetail 带详细信息的错误响应
func ErrorWithDetail(c *gin.Context, code int, message, detail string) {
	appErr := pkgErrors.New(code, message)
	c.JSON(200, Response{
		Code:    appErr.Code,
		Kind:    appErr.Kind,
		Message: appErr.Message,
		Detail:  detail,
	})
}
