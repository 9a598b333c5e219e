package dto

import "time"

// CreateTermRequest 创建学期请求
type CreateTermRequest struct {
	AcademicYear int `json:"academic_year" binding:"required,min=1"`
	Semester     int `json:"semester" binding:"required,min=1,max=3"`
}

// TermResponse 学期响应
type TermResponse struct {
	ID           int64  `json:"id"`
	AcademicYear int    `json:"academic_year"`
	Semester     int    `json:"semester"`
	Label        string `json:"label"`
}

// CreateSectionRequest 创建班级请求
type CreateSectionRequest struct {
	TermID          int64      `json:"term_id" binding:"required,min=1"`
	SectionCode     string     `json:"section_code" binding:"required,max=50"`
	CourseType      string     `json:"course_type" binding:"required,oneof=PRE_PROJECT PROJECT"`
	StudyType       string     `json:"study_type" binding:"omitempty,max=50"`
	MinTeamSize     int        `json:"min_team_size" binding:"required,min=1"`
	MaxTeamSize     int        `json:"max_team_size" binding:"required,min=1,gtefield=MinTeamSize"`
	ProjectDeadline *time.Time `json:"project_deadline"`
}

// UpdateSectionRequest 更新班级请求, 不允许修改学期与课程阶段
type UpdateSectionRequest struct {
	SectionCode     *string    `json:"section_code" binding:"omitempty,max=50"`
	StudyType       *string    `json:"study_type" binding:"omitempty,max=50"`
	MinTeamSize     *int       `json:"min_team_size" binding:"omitempty,min=1"`
	MaxTeamSize     *int       `json:"max_team_size" binding:"omitempty,min=1"`
	ProjectDeadline *time.Time `json:"project_deadline"`
}

// SetTeamLockRequest 锁定/解锁团队变更
type SetTeamLockRequest struct {
	Locked *bool `json:"locked" binding:"required"`
}

// ListSectionsQuery 班级列表查询
type ListSectionsQuery struct {
	TermID     *int64 `form:"term_id" binding:"omitempty,min=1"`
	CourseType string `form:"course_type" binding:"omitempty,oneof=PRE_PROJECT PROJECT"`
}

// SectionResponse 班级响应
type SectionResponse struct {
	ID              int64         `json:"id"`
	TermID          int64         `json:"term_id"`
	Term            *TermResponse `json:"term,omitempty"`
	SectionCode     string        `json:"section_code"`
	CourseType      string        `json:"course_type"`
	StudyType       string        `json:"study_type"`
	MinTeamSize     int           `json:"min_team_size"`
	MaxTeamSize     int           `json:"max_team_size"`
	ProjectDeadline *string       `json:"project_deadline,omitempty"`
	TeamLocked      bool          `json:"team_locked"`
	ContinuedFromID *int64        `json:"continued_from_id,omitempty"`
	CreatedAt       string        `json:"created_at"`
}

// EnrollRequest 批量选课请求
type EnrollRequest struct {
	UserIDs []int64 `json:"user_ids" binding:"required,min=1,dive,min=1"`
}

// EnrollResponse 批量选课结果
type EnrollResponse struct {
	SectionID int64 `json:"section_id"`
	Requested int   `json:"requested"`
	Created   int64 `json:"created"`
}

// EnrollmentResponse 选课记录
type EnrollmentResponse struct {
	UserID     int64      `json:"user_id"`
	SectionID  int64      `json:"section_id"`
	User       *UserBrief `json:"user,omitempty"`
	EnrolledAt string     `json:"enrolled_at"`
}

// ContinueSectionRequest 续接到毕业设计阶段
type ContinueSectionRequest struct {
	TermID  int64   `json:"term_id" binding:"required,min=1"`
	TeamIDs []int64 `json:"team_ids" binding:"omitempty,dive,min=1"`
}

// ContinueSectionResponse 续接结果
type ContinueSectionResponse struct {
	Section           *SectionResponse `json:"section"`
	TeamsMoved        int64            `json:"teams_moved"`
	EnrollmentsCopied int64            `json:"enrollments_copied"`
}
