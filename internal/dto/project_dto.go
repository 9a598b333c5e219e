package dto

// CreateProjectRequest 创建项目请求
type CreateProjectRequest struct {
	ProjectName    string  `json:"projectname" binding:"required,max=255"`
	ProjectNameEng *string `json:"projectname_eng" binding:"omitempty,max=255"`
	ProjectType    *string `json:"project_type" binding:"omitempty,max=50"`
	Description    *string `json:"description"`
}

// UpdateProjectRequest 编辑项目请求
type UpdateProjectRequest struct {
	ProjectName    *string `json:"projectname" binding:"omitempty,min=1,max=255"`
	ProjectNameEng *string `json:"projectname_eng" binding:"omitempty,max=255"`
	ProjectType    *string `json:"project_type" binding:"omitempty,max=50"`
	Description    *string `json:"description"`
}

// DecideRequest 审批请求
type DecideRequest struct {
	Decision string  `json:"decision" binding:"required,oneof=APPROVED REJECTED"`
	Comment  *string `json:"comment"`
}

// AttachAdvisorRequest 选择指导教师
type AttachAdvisorRequest struct {
	AdvisorID int64 `json:"advisor_id" binding:"required,min=1"`
}

// AvailableAdvisorsQuery 可选指导教师查询
type AvailableAdvisorsQuery struct {
	ProjectID *int64 `form:"project_id" binding:"omitempty,min=1"`
}

// ProjectResponse 项目响应
type ProjectResponse struct {
	ID                int64             `json:"id"`
	TeamID            int64             `json:"team_id"`
	ProjectName       string            `json:"projectname"`
	ProjectNameEng    *string           `json:"projectname_eng,omitempty"`
	ProjectType       *string           `json:"project_type,omitempty"`
	Description       *string           `json:"description,omitempty"`
	Status            string            `json:"status"`
	StatusName        string            `json:"status_name"`
	AdvisorID         *int64            `json:"advisor_id,omitempty"`
	LastReviewComment *string           `json:"last_review_comment,omitempty"`
	Reviews           []*ReviewResponse `json:"reviews,omitempty"`
	CreatedAt         string            `json:"created_at"`
	UpdatedAt         string            `json:"updated_at"`
}

// ReviewResponse 审批记录
type ReviewResponse struct {
	AdvisorID int64   `json:"advisor_id"`
	Decision  string  `json:"decision"`
	Comment   *string `json:"comment,omitempty"`
	DecidedAt string  `json:"decided_at"`
}

// AdvisorAvailability 指导教师可选情况
type AdvisorAvailability struct {
	Advisor     *UserBrief `json:"advisor"`
	CurrentLoad int64      `json:"current_load"`
	CanSelect   bool       `json:"can_select"`
	Reason      string     `json:"reason,omitempty"`
}
