package handler

import (
	"github.com/gin-gonic/gin"

	"capstone/internal/api/middleware"
	"capstone/internal/dto"
	"capstone/internal/service"
	"capstone/pkg/responses"
)

// CatalogHandler 学期、班级、选课与续接
type CatalogHandler struct {
	termService         service.TermService
	sectionService      service.SectionService
	continuationService service.ContinuationService
}

func NewCatalogHandler(termService service.TermService, sectionService service.SectionService, continuationService service.ContinuationService) *CatalogHandler {
	return &CatalogHandler{
		termService:         termService,
		sectionService:      sectionService,
		continuationService: continuationService,
	}
}

// CreateTerm 创建学期
// @Summary 创建学期
// @Tags Catalog
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateTermRequest true "学期"
// @Success 200 {object} responses.Response{data=dto.TermResponse}
// @Router /terms [post]
func (h *CatalogHandler) CreateTerm(c *gin.Context) {
	var req dto.CreateTermRequest
	if !bindJSON(c, &req) {
		return
	}

	term, err := h.termService.CreateTerm(c.Request.Context(), middleware.GetCaller(c), &req)
	if err != nil {
		responses.Error(c, err)
		return
	}

	responses.Success(c, term)
}

// ListTerms 学期列表
// @Summary 学期列表
// @Tags Catalog
// @Produce json
// @Security BearerAuth
// @Success 200 {object} responses.Response{data=[]dto.TermResponse}
// @Router /terms [get]
func (h *CatalogHandler) ListTerms(c *gin.Context) {
	terms, err := h.termService.ListTerms(c.Request.Context(), middleware.GetCaller(c))
	if err != nil {
		responses.Error(c, err)
		return
	}

	responses.Success(c, terms)
}

// DeleteTerm 删除学期
// @Summary 删除学期, 学期下存在班级时拒绝
// @Tags Catalog
// @Produce json
// @Security BearerAuth
// @Param id path int64 true "学期ID"
// @Success 200 {object} responses.Response
// @Router /terms/{id} [delete]
func (h *CatalogHandler) DeleteTerm(c *gin.Context) {
	var uri dto.IDParam
	if !bindURI(c, &uri) {
		return
	}

	if err := h.termService.DeleteTerm(c.Request.Context(), middleware.GetCaller(c), uri.ID); err != nil {
		responses.Error(c, err)
		return
	}

	responses.Success(c, nil)
}

// CreateSection 创建班级
// @Summary 创建班级
// @Tags Catalog
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateSectionRequest true "班级"
// @Success 200 {object} responses.Response{data=dto.SectionResponse}
// @Router /sections [post]
func (h *CatalogHandler) CreateSection(c *gin.Context) {
	var req dto.CreateSectionRequest
	if !bindJSON(c, &req) {
		return
	}

	section, err := h.sectionService.CreateSection(c.Request.Context(), middleware.GetCaller(c), &req)
	if err != nil {
		responses.Error(c, err)
		return
	}

	responses.Success(c, section)
}

// ListSections 班级列表
// @Summary 班级列表
// @Tags Catalog
// @Produce json
// @Security BearerAuth
// @Param term_id query int false "学期ID"
// @Param course_type query string false "课程阶段 PRE_PROJECT/PROJECT"
// @Success 200 {object} responses.Response{data=[]dto.SectionResponse}
// @Router /sections [get]
func (h *CatalogHandler) ListSections(c *gin.Context) {
	var query dto.ListSectionsQuery
	if !bindQuery(c, &query) {
		return
	}

	sections, err := h.sectionService.ListSections(c.Request.Context(), middleware.GetCaller(c), &query)
	if err != nil {
		responses.Error(c, err)
		return
	}

	responses.Success(c, sections)
}

// GetSection 班级详情
// @Summary 班级详情
// @Tags Catalog
// @Produce json
// @Security BearerAuth
// @Param id path int64 true "班级ID"
// @Success 200 {object} responses.Response{data=dto.SectionResponse}
// @Router /sections/{id} [get]
func (h *CatalogHandler) GetSection(c *gin.Context) {
	var uri dto.IDParam
	if !bindURI(c, &uri) {
		return
	}

	section, err := h.sectionService.GetSection(c.Request.Context(), middleware.GetCaller(c), uri.ID)
	if err != nil {
		responses.Error(c, err)
		return
	}

	responses.Success(c, section)
}

// UpdateSection 更新班级
// @Summary 更新班级
// @Tags Catalog
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int64 true "班级ID"
// @Param request body dto.UpdateSectionRequest true "班级"
// @Success 200 {object} responses.Response{data=dto.SectionResponse}
// @Router /sections/{id} [put]
func (h *CatalogHandler) UpdateSection(c *gin.Context) {
	var uri dto.IDParam
	if !bindURI(c, &uri) {
		return
	}
	var req dto.UpdateSectionRequest
	if !bindJSON(c, &req) {
		return
	}

	section, err := h.sectionService.UpdateSection(c.Request.Context(), middleware.GetCaller(c), uri.ID, &req)
	if err != nil {
		responses.Error(c, err)
		return
	}

	responses.Success(c, section)
}

// SetTeamLock 锁定团队变更
// @Summary 锁定/解锁班级的团队成员变更
// @Tags Catalog
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int64 true "班级ID"
// @Param request body dto.SetTeamLockRequest true "锁定状态"
// @Success 200 {object} responses.Response{data=dto.SectionResponse}
// @Router /sections/{id}/lock [put]
func (h *CatalogHandler) SetTeamLock(c *gin.Context) {
	var uri dto.IDParam
	if !bindURI(c, &uri) {
		return
	}
	var req dto.SetTeamLockRequest
	if !bindJSON(c, &req) {
		return
	}

	section, err := h.sectionService.SetTeamLock(c.Request.Context(), middleware.GetCaller(c), uri.ID, *req.Locked)
	if err != nil {
		responses.Error(c, err)
		return
	}

	responses.Success(c, section)
}

// DeleteSection 删除班级
// @Summary 删除班级, 存在团队或选课记录时拒绝
// @Tags Catalog
// @Produce json
// @Security BearerAuth
// @Param id path int64 true "班级ID"
// @Success 200 {object} responses.Response
// @Router /sections/{id} [delete]
func (h *CatalogHandler) DeleteSection(c *gin.Context) {
	var uri dto.IDParam
	if !bindURI(c, &uri) {
		return
	}

	if err := h.sectionService.DeleteSection(c.Request.Context(), middleware.GetCaller(c), uri.ID); err != nil {
		responses.Error(c, err)
		return
	}

	responses.Success(c, nil)
}

// Enroll 批量选课
// @Summary 批量选课, 已选的学生跳过
// @Tags Catalog
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int64 true "班级ID"
// @Param request body dto.EnrollRequest true "学生ID列表"
// @Success 200 {object} responses.Response{data=dto.EnrollResponse}
// @Router /sections/{id}/enrollments [post]
func (h *CatalogHandler) Enroll(c *gin.Context) {
	var uri dto.IDParam
	if !bindURI(c, &uri) {
		return
	}
	var req dto.EnrollRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.sectionService.Enroll(c.Request.Context(), middleware.GetCaller(c), uri.ID, &req)
	if err != nil {
		responses.Error(c, err)
		return
	}

	responses.Success(c, result)
}

// ListEnrollments 选课名单
// @Summary 班级选课名单
// @Tags Catalog
// @Produce json
// @Security BearerAuth
// @Param id path int64 true "班级ID"
// @Success 200 {object} responses.Response{data=[]dto.EnrollmentResponse}
// @Router /sections/{id}/enrollments [get]
func (h *CatalogHandler) ListEnrollments(c *gin.Context) {
	var uri dto.IDParam
	if !bindURI(c, &uri) {
		return
	}

	enrollments, err := h.sectionService.ListEnrollments(c.Request.Context(), middleware.GetCaller(c), uri.ID)
	if err != nil {
		responses.Error(c, err)
		return
	}

	responses.Success(c, enrollments)
}

// Continue 续接到毕业设计班级
// @Summary 将预备阶段班级的团队续接到新学期的毕业设计班级
// @Tags Catalog
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int64 true "预备阶段班级ID"
// @Param request body dto.ContinueSectionRequest true "目标学期与团队"
// @Success 200 {object} responses.Response{data=dto.ContinueSectionResponse}
// @Router /sections/{id}/continue [post]
func (h *CatalogHandler) Continue(c *gin.Context) {
	var uri dto.IDParam
	if !bindURI(c, &uri) {
		return
	}
	var req dto.ContinueSectionRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.continuationService.ContinueToProject(c.Request.Context(), middleware.GetCaller(c), uri.ID, &req)
	if err != nil {
		responses.Error(c, err)
		return
	}

	responses.Success(c, result)
}
