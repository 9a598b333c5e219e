package handler

import (
	"github.com/gin-gonic/gin"

	"capstone/internal/api/middleware"
	"capstone/internal/dto"
	"capstone/internal/service"
	"capstone/pkg/responses"
)

type UserHandler struct {
	service service.UserService
}

func NewUserHandler(service service.UserService) *UserHandler {
	return &UserHandler{service: service}
}

// Upsert 同步用户
// @Summary 从身份目录同步用户(按用户名新建或更新)
// @Tags User
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.UpsertUserRequest true "用户"
// @Success 200 {object} responses.Response{data=dto.UserResponse}
// @Router /users [post]
func (h *UserHandler) Upsert(c *gin.Context) {
	var req dto.UpsertUserRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.service.UpsertUser(c.Request.Context(), middleware.GetCaller(c), &req)
	if err != nil {
		responses.Error(c, err)
		return
	}

	responses.Success(c, user)
}

// Get 获取用户
// @Summary 获取用户
// @Tags User
// @Produce json
// @Security BearerAuth
// @Param id path int64 true "用户ID"
// @Success 200 {object} responses.Response{data=dto.UserResponse}
// @Router /users/{id} [get]
func (h *UserHandler) Get(c *gin.Context) {
	var uri dto.IDParam
	if !bindURI(c, &uri) {
		return
	}

	user, err := h.service.GetUser(c.Request.Context(), middleware.GetCaller(c), uri.ID)
	if err != nil {
		responses.Error(c, err)
		return
	}

	responses.Success(c, user)
}

// Me 当前用户
func (h *UserHandler) Me(c *gin.Context) {
	caller := middleware.GetCaller(c)
	user, err := h.service.GetUser(c.Request.Context(), caller, caller.UserID)
	if err != nil {
		responses.Error(c, err)
		return
	}

	responses.Success(c, user)
}
