package handler

import (
	"github.com/gin-gonic/gin"

	"capstone/internal/api/middleware"
	"capstone/internal/dto"
	"capstone/internal/service"
	"capstone/pkg/responses"
)

type TeamHandler struct {
	teamService service.TeamService
}

func NewTeamHandler(teamService service.TeamService) *TeamHandler {
	return &TeamHandler{
		teamService: teamService,
	}
}

// Create 创建团队
// @Summary 创建团队
// @Description 调用方成为唯一成员, 未指定班级时使用最近选修且未锁定的班级
// @Tags Team
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateTeamRequest true "创建团队请求"
// @Success 200 {object} responses.Response{data=dto.TeamResponse}
// @Router /teams [post]
func (h *TeamHandler) Create(c *gin.Context) {
	var req dto.CreateTeamRequest
	if !bindJSON(c, &req) {
		return
	}

	team, err := h.teamService.CreateTeam(c.Request.Context(), middleware.GetCaller(c), &req)
	if err != nil {
		responses.Error(c, err)
		return
	}

	responses.Success(c, team)
}

// Get 获取团队详情
// @Summary 获取团队详情
// @Tags Team
// @Produce json
// @Security BearerAuth
// @Param id path int64 true "团队ID"
// @Success 200 {object} responses.Response{data=dto.TeamResponse}
// @Router /teams/{id} [get]
func (h *TeamHandler) Get(c *gin.Context) {
	var uri dto.IDParam
	if !bindURI(c, &uri) {
		return
	}

	team, err := h.teamService.GetTeam(c.Request.Context(), middleware.GetCaller(c), uri.ID)
	if err != nil {
		responses.Error(c, err)
		return
	}

	responses.Success(c, team)
}

// List 获取团队列表
// @Summary 获取团队列表
// @Tags Team
// @Produce json
// @Security BearerAuth
// @Param section_id query int false "班级ID"
// @Success 200 {object} responses.Response{data=[]dto.TeamResponse}
// @Router /teams [get]
func (h *TeamHandler) List(c *gin.Context) {
	var query dto.ListTeamsQuery
	if !bindQuery(c, &query) {
		return
	}

	teams, err := h.teamService.ListTeams(c.Request.Context(), middleware.GetCaller(c), query.SectionID)
	if err != nil {
		responses.Error(c, err)
		return
	}

	responses.Success(c, teams)
}

// Mine 获取我的团队
// @Summary 获取当前用户所在的团队
// @Tags Team
// @Produce json
// @Security BearerAuth
// @Success 200 {object} responses.Response{data=dto.TeamResponse}
// @Router /teams/mine [get]
func (h *TeamHandler) Mine(c *gin.Context) {
	team, err := h.teamService.MyTeam(c.Request.Context(), middleware.GetCaller(c))
	if err != nil {
		responses.Error(c, err)
		return
	}

	responses.Success(c, team)
}

// Delete 删除团队
// @Summary 删除团队(级联删除项目、成员与邀请)
// @Tags Team
// @Produce json
// @Security BearerAuth
// @Param id path int64 true "团队ID"
// @Success 200 {object} responses.Response
// @Router /teams/{id} [delete]
func (h *TeamHandler) Delete(c *gin.Context) {
	var uri dto.IDParam
	if !bindURI(c, &uri) {
		return
	}

	if err := h.teamService.DeleteTeam(c.Request.Context(), middleware.GetCaller(c), uri.ID); err != nil {
		responses.Error(c, err)
		return
	}

	responses.Success(c, nil)
}

// Invite 邀请成员
// @Summary 邀请同班学生加入团队
// @Tags Team
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int64 true "团队ID"
// @Param request body dto.InviteMemberRequest true "邀请请求"
// @Success 200 {object} responses.Response{data=dto.InvitationResponse}
// @Router /teams/{id}/invitations [post]
func (h *TeamHandler) Invite(c *gin.Context) {
	var uri dto.IDParam
	if !bindURI(c, &uri) {
		return
	}
	var req dto.InviteMemberRequest
	if !bindJSON(c, &req) {
		return
	}

	invitation, err := h.teamService.InviteMember(c.Request.Context(), middleware.GetCaller(c), uri.ID, &req)
	if err != nil {
		responses.Error(c, err)
		return
	}

	responses.Success(c, invitation)
}

// Leave 退出团队
// @Summary 退出团队, 最后一名成员退出时删除团队
// @Tags Team
// @Produce json
// @Security BearerAuth
// @Param id path int64 true "团队ID"
// @Success 200 {object} responses.Response{data=dto.LeaveTeamResponse}
// @Router /teams/{id}/leave [post]
func (h *TeamHandler) Leave(c *gin.Context) {
	var uri dto.IDParam
	if !bindURI(c, &uri) {
		return
	}

	result, err := h.teamService.LeaveTeam(c.Request.Context(), middleware.GetCaller(c), uri.ID)
	if err != nil {
		responses.Error(c, err)
		return
	}

	responses.Success(c, result)
}

// RemoveMember 移除成员
// @Summary 移除团队成员
// @Tags Team
// @Produce json
// @Security BearerAuth
// @Param id path int64 true "团队ID"
// @Param user_id path int64 true "成员用户ID"
// @Success 200 {object} responses.Response
// @Router /teams/{id}/members/{user_id} [delete]
func (h *TeamHandler) RemoveMember(c *gin.Context) {
	var uri dto.MemberParam
	if !bindURI(c, &uri) {
		return
	}

	if err := h.teamService.RemoveMember(c.Request.Context(), middleware.GetCaller(c), uri.ID, uri.UserID); err != nil {
		responses.Error(c, err)
		return
	}

	responses.Success(c, nil)
}
