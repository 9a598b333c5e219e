package model

import (
	"time"

	"gorm.io/datatypes"
)

const ProjectTableName = "projects"
const ProjectAdvisorTableName = "project_advisors"
const ProjectReviewTableName = "project_reviews"

// Project 项目, 与团队一对一
type Project struct {
	BaseModel
	TeamID            int64   `gorm:"not null;uniqueIndex" json:"team_id"`
	ProjectName       string  `gorm:"column:projectname;size:255;not null" json:"projectname"`
	ProjectNameEng    *string `gorm:"column:projectname_eng;size:255" json:"projectname_eng,omitempty"`
	ProjectType       *string `gorm:"size:50" json:"project_type,omitempty"`
	Description       *string `gorm:"type:text" json:"description,omitempty"`
	Status            string  `gorm:"size:16;not null;default:'DRAFT';index" json:"status"`
	LastReviewComment *string `gorm:"type:text" json:"last_review_comment,omitempty"`

	Advisor *ProjectAdvisor `gorm:"foreignKey:ProjectID" json:"advisor,omitempty"`
}

func (Project) TableName() string {
	return ProjectTableName
}

// ProjectAdvisor 项目指导教师, 每个项目至多一行
type ProjectAdvisor struct {
	BaseModel
	ProjectID int64 `gorm:"not null;uniqueIndex" json:"project_id"`
	AdvisorID int64 `gorm:"not null;index" json:"advisor_id"`

	Advisor *User `gorm:"foreignKey:AdvisorID" json:"advisor,omitempty"`
}

func (ProjectAdvisor) TableName() string {
	return ProjectAdvisorTableName
}

// ProjectReview 审批记录, 重新选择指导教师后仍保留
type ProjectReview struct {
	BaseModel
	ProjectID int64          `gorm:"not null;index" json:"project_id"`
	AdvisorID int64          `gorm:"not null" json:"advisor_id"`
	Decision  string         `gorm:"size:16;not null" json:"decision"`
	Comment   *string        `gorm:"type:text" json:"comment,omitempty"`
	Snapshot  datatypes.JSON `json:"snapshot,omitempty"` // 审批时的项目字段
	DecidedAt time.Time      `gorm:"not null" json:"decided_at"`
}

func (ProjectReview) TableName() string {
	return ProjectReviewTableName
}
