package model

import "time"

const SectionTableName = "sections"
const EnrollmentTableName = "enrollments"

// Section 课程班级
type Section struct {
	BaseModel
	TermID          int64      `gorm:"not null;index" json:"term_id"`
	SectionCode     string     `gorm:"size:50;not null" json:"section_code"`
	CourseType      string     `gorm:"size:20;not null;index" json:"course_type"` // PRE_PROJECT, PROJECT
	StudyType       string     `gorm:"size:50" json:"study_type"`
	MinTeamSize     int        `gorm:"not null;default:1" json:"min_team_size"`
	MaxTeamSize     int        `gorm:"not null;default:3" json:"max_team_size"`
	ProjectDeadline *time.Time `json:"project_deadline,omitempty"`
	TeamLocked      bool       `gorm:"not null;default:false" json:"team_locked"`
	ContinuedFromID *int64     `gorm:"index" json:"continued_from_id,omitempty"` // 续接来源班级

	Term *Term `gorm:"foreignKey:TermID" json:"term,omitempty"`
}

func (Section) TableName() string {
	return SectionTableName
}

// Enrollment 选课记录, 只增不改
type Enrollment struct {
	BaseModel
	UserID     int64     `gorm:"not null;uniqueIndex:idx_enrollment_user_section" json:"user_id"`
	SectionID  int64     `gorm:"not null;uniqueIndex:idx_enrollment_user_section;index" json:"section_id"`
	EnrolledAt time.Time `gorm:"not null" json:"enrolled_at"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (Enrollment) TableName() string {
	return EnrollmentTableName
}
