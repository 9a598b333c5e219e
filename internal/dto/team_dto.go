package dto

// CreateTeamRequest 创建团队请求, 未指定班级时使用最近选修且未锁定的班级
type CreateTeamRequest struct {
	SectionID *int64  `json:"section_id" binding:"omitempty,min=1"`
	Name      *string `json:"name" binding:"omitempty,max=100"`
}

// InviteMemberRequest 邀请成员请求
type InviteMemberRequest struct {
	UserID int64 `json:"user_id" binding:"required,min=1"`
}

// ListTeamsQuery 团队列表查询
type ListTeamsQuery struct {
	SectionID *int64 `form:"section_id" binding:"omitempty,min=1"`
}

// TeamResponse 团队响应
type TeamResponse struct {
	ID           int64            `json:"id"`
	SectionID    int64            `json:"section_id"`
	CohortTermID int64            `json:"cohort_term_id"`
	GroupNumber  string           `json:"group_number"`
	Name         *string          `json:"name,omitempty"`
	Members      []*UserBrief     `json:"members"`
	Project      *ProjectResponse `json:"project,omitempty"`
	CreatedAt    string           `json:"created_at"`
}

// LeaveTeamResponse 退出团队结果
type LeaveTeamResponse struct {
	TeamID      int64 `json:"team_id"`
	TeamDeleted bool  `json:"team_deleted"`
}

// InvitationResponse 邀请响应
type InvitationResponse struct {
	ID          int64      `json:"id"`
	TeamID      int64      `json:"team_id"`
	GroupNumber string     `json:"group_number,omitempty"`
	SectionID   int64      `json:"section_id"`
	Inviter     *UserBrief `json:"inviter,omitempty"`
	InviteeID   int64      `json:"invitee_id"`
	Status      string     `json:"status"`
	CreatedAt   string     `json:"created_at"`
	ExpiresAt   string     `json:"expires_at,omitempty"`
}
