package handler

import (
	"github.com/gin-gonic/gin"

	"capstone/internal/api/middleware"
	"capstone/internal/dto"
	"capstone/internal/service"
	"capstone/pkg/responses"
)

type InvitationHandler struct {
	service service.InvitationService
}

func NewInvitationHandler(service service.InvitationService) *InvitationHandler {
	return &InvitationHandler{service: service}
}

// List 我的待处理邀请
// @Summary 我的待处理邀请
// @Tags Invitation
// @Produce json
// @Security BearerAuth
// @Success 200 {object} responses.Response{data=[]dto.InvitationResponse}
// @Router /invitations [get]
func (h *InvitationHandler) List(c *gin.Context) {
	invitations, err := h.service.ListPending(c.Request.Context(), middleware.GetCaller(c))
	if err != nil {
		responses.Error(c, err)
		return
	}

	responses.Success(c, invitations)
}

// Accept 接受邀请
// @Summary 接受邀请
// @Tags Invitation
// @Produce json
// @Security BearerAuth
// @Param id path int64 true "邀请ID"
// @Success 200 {object} responses.Response{data=dto.TeamResponse}
// @Router /invitations/{id}/accept [post]
func (h *InvitationHandler) Accept(c *gin.Context) {
	var uri dto.IDParam
	if !bindURI(c, &uri) {
		return
	}

	team, err := h.service.Accept(c.Request.Context(), middleware.GetCaller(c), uri.ID)
	if err != nil {
		responses.Error(c, err)
		return
	}

	responses.Success(c, team)
}

// Reject 拒绝邀请
// @Summary 拒绝邀请
// @Tags Invitation
// @Produce json
// @Security BearerAuth
// @Param id path int64 true "邀请ID"
// @Success 200 {object} responses.Response
// @Router /invitations/{id}/reject [post]
func (h *InvitationHandler) Reject(c *gin.Context) {
	var uri dto.IDParam
	if !bindURI(c, &uri) {
		return
	}

	if err := h.service.Reject(c.Request.Context(), middleware.GetCaller(c), uri.ID); err != nil {
		responses.Error(c, err)
		return
	}

	responses.Success(c, nil)
}
