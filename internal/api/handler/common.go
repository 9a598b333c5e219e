package handler

import (
	"github.com/gin-gonic/gin"

	pkgErrors "capstone/pkg/errors"
	"capstone/pkg/responses"
	"capstone/pkg/utils"
)

func bindURI(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindUri(obj); err != nil {
		responses.ErrorWithDetail(c, pkgErrors.CodeBadRequest, "无效的路径参数", utils.FormatValidationError(err))
		return false
	}
	return true
}

func bindJSON(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		responses.ErrorWithDetail(c, pkgErrors.CodeBadRequest, "请求参数错误", utils.FormatValidationError(err))
		return false
	}
	return true
}

func bindQuery(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindQuery(obj); err != nil {
		responses.ErrorWithDetail(c, pkgErrors.CodeBadRequest, "请求参数错误", utils.FormatValidationError(err))
		return false
	}
	return true
}
