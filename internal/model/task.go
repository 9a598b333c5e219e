package model

import "time"

// 以下表仅作为团队/项目级联删除的目标, 业务读写在外部系统

const (
	TaskTableName           = "tasks"
	TaskAssignmentTableName = "task_assignments"
	CommentTableName        = "comments"
	AttachmentTableName     = "attachments"
	GradeTableName          = "grades"
)

// Task 项目任务
type Task struct {
	BaseModel
	ProjectID int64      `gorm:"not null;index" json:"project_id"`
	Title     string     `gorm:"size:200;not null" json:"title"`
	Status    string     `gorm:"size:20;not null;default:'todo'" json:"status"`
	DueAt     *time.Time `json:"due_at,omitempty"`
}

func (Task) TableName() string {
	return TaskTableName
}

// TaskAssignment 任务分配
type TaskAssignment struct {
	BaseModel
	TaskID int64 `gorm:"not null;index" json:"task_id"`
	UserID int64 `gorm:"not null;index" json:"user_id"`
}

func (TaskAssignment) TableName() string {
	return TaskAssignmentTableName
}

// Comment 任务评论
type Comment struct {
	BaseModel
	TaskID   int64  `gorm:"not null;index" json:"task_id"`
	AuthorID int64  `gorm:"not null" json:"author_id"`
	Body     string `gorm:"type:text;not null" json:"body"`
}

func (Comment) TableName() string {
	return CommentTableName
}

// Attachment 任务附件（文件本体在外部存储）
type Attachment struct {
	BaseModel
	TaskID     int64  `gorm:"not null;index" json:"task_id"`
	FileName   string `gorm:"size:255;not null" json:"file_name"`
	StorageKey string `gorm:"size:255;not null" json:"storage_key"`
}

func (Attachment) TableName() string {
	return AttachmentTableName
}

// Grade 项目成绩
type Grade struct {
	BaseModel
	ProjectID int64   `gorm:"not null;index" json:"project_id"`
	GraderID  int64   `gorm:"not null" json:"grader_id"`
	Score     float64 `gorm:"not null" json:"score"`
	Note      *string `gorm:"type:text" json:"note,omitempty"`
}

func (Grade) TableName() string {
	return GradeTableName
}
