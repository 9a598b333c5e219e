package handler

import (
	"github.com/gin-gonic/gin"

	"capstone/internal/api/middleware"
	"capstone/internal/dto"
	"capstone/internal/service"
	"capstone/pkg/responses"
)

type NotificationHandler struct {
	service service.NotificationService
}

func NewNotificationHandler(service service.NotificationService) *NotificationHandler {
	return &NotificationHandler{service: service}
}

// List 我的通知
// @Summary 我的通知(最近100条)
// @Tags Notification
// @Produce json
// @Security BearerAuth
// @Param unread_only query bool false "仅未读"
// @Success 200 {object} responses.Response{data=[]dto.NotificationResponse}
// @Router /notifications [get]
func (h *NotificationHandler) List(c *gin.Context) {
	var query dto.ListNotificationsQuery
	if !bindQuery(c, &query) {
		return
	}

	items, err := h.service.ListMine(c.Request.Context(), middleware.GetCaller(c), query.UnreadOnly)
	if err != nil {
		responses.Error(c, err)
		return
	}

	responses.Success(c, items)
}

// MarkRead 标记已读
// @Summary 标记通知已读
// @Tags Notification
// @Produce json
// @Security BearerAuth
// @Param id path int64 true "通知ID"
// @Success 200 {object} responses.Response
// @Router /notifications/{id}/read [post]
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	var uri dto.IDParam
	if !bindURI(c, &uri) {
		return
	}

	if err := h.service.MarkRead(c.Request.Context(), middleware.GetCaller(c), uri.ID); err != nil {
		responses.Error(c, err)
		return
	}

	responses.Success(c, nil)
}
