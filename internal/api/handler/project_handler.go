package handler

import (
	"github.com/gin-gonic/gin"

	"capstone/internal/api/middleware"
	"capstone/internal/dto"
	"capstone/internal/service"
	"capstone/pkg/responses"
)

type ProjectHandler struct {
	projectService service.ProjectService
	advisorService service.AdvisorService
}

func NewProjectHandler(projectService service.ProjectService, advisorService service.AdvisorService) *ProjectHandler {
	return &ProjectHandler{
		projectService: projectService,
		advisorService: advisorService,
	}
}

// Create 创建项目
// @Summary 为团队创建项目
// @Tags Project
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int64 true "团队ID"
// @Param request body dto.CreateProjectRequest true "创建项目请求"
// @Success 200 {object} responses.Response{data=dto.ProjectResponse}
// @Router /teams/{id}/project [post]
func (h *ProjectHandler) Create(c *gin.Context) {
	var uri dto.IDParam
	if !bindURI(c, &uri) {
		return
	}
	var req dto.CreateProjectRequest
	if !bindJSON(c, &req) {
		return
	}

	project, err := h.projectService.CreateProject(c.Request.Context(), middleware.GetCaller(c), uri.ID, &req)
	if err != nil {
		responses.Error(c, err)
		return
	}

	responses.Success(c, project)
}

// Get 获取项目详情
// @Summary 获取项目详情(含审批记录)
// @Tags Project
// @Produce json
// @Security BearerAuth
// @Param id path int64 true "项目ID"
// @Success 200 {object} responses.Response{data=dto.ProjectResponse}
// @Router /projects/{id} [get]
func (h *ProjectHandler) Get(c *gin.Context) {
	var uri dto.IDParam
	if !bindURI(c, &uri) {
		return
	}

	project, err := h.projectService.GetProject(c.Request.Context(), middleware.GetCaller(c), uri.ID)
	if err != nil {
		responses.Error(c, err)
		return
	}

	responses.Success(c, project)
}

// Update 编辑项目
// @Summary 编辑项目信息, 已通过的项目不可修改
// @Tags Project
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int64 true "项目ID"
// @Param request body dto.UpdateProjectRequest true "编辑项目请求"
// @Success 200 {object} responses.Response{data=dto.ProjectResponse}
// @Router /projects/{id} [put]
func (h *ProjectHandler) Update(c *gin.Context) {
	var uri dto.IDParam
	if !bindURI(c, &uri) {
		return
	}
	var req dto.UpdateProjectRequest
	if !bindJSON(c, &req) {
		return
	}

	project, err := h.projectService.EditProject(c.Request.Context(), middleware.GetCaller(c), uri.ID, &req)
	if err != nil {
		responses.Error(c, err)
		return
	}

	responses.Success(c, project)
}

// Delete 删除项目
// @Summary 删除项目
// @Tags Project
// @Produce json
// @Security BearerAuth
// @Param id path int64 true "项目ID"
// @Success 200 {object} responses.Response
// @Router /projects/{id} [delete]
func (h *ProjectHandler) Delete(c *gin.Context) {
	var uri dto.IDParam
	if !bindURI(c, &uri) {
		return
	}

	if err := h.projectService.DeleteProject(c.Request.Context(), middleware.GetCaller(c), uri.ID); err != nil {
		responses.Error(c, err)
		return
	}

	responses.Success(c, nil)
}

// Decide 审批项目
// @Summary 指导教师审批项目
// @Tags Project
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int64 true "项目ID"
// @Param request body dto.DecideRequest true "审批请求"
// @Success 200 {object} responses.Response{data=dto.ProjectResponse}
// @Router /projects/{id}/decision [post]
func (h *ProjectHandler) Decide(c *gin.Context) {
	var uri dto.IDParam
	if !bindURI(c, &uri) {
		return
	}
	var req dto.DecideRequest
	if !bindJSON(c, &req) {
		return
	}

	project, err := h.projectService.Decide(c.Request.Context(), middleware.GetCaller(c), uri.ID, &req)
	if err != nil {
		responses.Error(c, err)
		return
	}

	responses.Success(c, project)
}

// PendingReviews 待我审批的项目
// @Summary 当前指导教师待审批的项目
// @Tags Project
// @Produce json
// @Security BearerAuth
// @Success 200 {object} responses.Response{data=[]dto.ProjectResponse}
// @Router /projects/pending-review [get]
func (h *ProjectHandler) PendingReviews(c *gin.Context) {
	projects, err := h.projectService.ListPendingReviews(c.Request.Context(), middleware.GetCaller(c))
	if err != nil {
		responses.Error(c, err)
		return
	}

	responses.Success(c, projects)
}

// AttachAdvisor 选择指导教师
// @Summary 选择或更换指导教师, 项目进入待审批
// @Tags Project
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int64 true "项目ID"
// @Param request body dto.AttachAdvisorRequest true "指导教师"
// @Success 200 {object} responses.Response{data=dto.ProjectResponse}
// @Router /projects/{id}/advisor [put]
func (h *ProjectHandler) AttachAdvisor(c *gin.Context) {
	var uri dto.IDParam
	if !bindURI(c, &uri) {
		return
	}
	var req dto.AttachAdvisorRequest
	if !bindJSON(c, &req) {
		return
	}

	project, err := h.advisorService.AttachAdvisor(c.Request.Context(), middleware.GetCaller(c), uri.ID, &req)
	if err != nil {
		responses.Error(c, err)
		return
	}

	responses.Success(c, project)
}

// DetachAdvisor 取消指导教师
// @Summary 取消待审批项目的指导教师, 项目回到草稿
// @Tags Project
// @Produce json
// @Security BearerAuth
// @Param id path int64 true "项目ID"
// @Success 200 {object} responses.Response{data=dto.ProjectResponse}
// @Router /projects/{id}/advisor [delete]
func (h *ProjectHandler) DetachAdvisor(c *gin.Context) {
	var uri dto.IDParam
	if !bindURI(c, &uri) {
		return
	}

	project, err := h.advisorService.DetachAdvisor(c.Request.Context(), middleware.GetCaller(c), uri.ID)
	if err != nil {
		responses.Error(c, err)
		return
	}

	responses.Success(c, project)
}

// AvailableAdvisors 可选指导教师
// @Summary 指导教师列表及剩余名额
// @Tags Project
// @Produce json
// @Security BearerAuth
// @Param project_id query int false "项目ID, 用于标记当前指导教师"
// @Success 200 {object} responses.Response{data=[]dto.AdvisorAvailability}
// @Router /advisors/available [get]
func (h *ProjectHandler) AvailableAdvisors(c *gin.Context) {
	var query dto.AvailableAdvisorsQuery
	if !bindQuery(c, &query) {
		return
	}

	advisors, err := h.advisorService.ListAvailableAdvisors(c.Request.Context(), middleware.GetCaller(c), query.ProjectID)
	if err != nil {
		responses.Error(c, err)
		return
	}

	responses.Success(c, advisors)
}
