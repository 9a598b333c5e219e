package model

const TeamTableName = "teams"
const TeamMemberTableName = "team_members"
const GroupSequenceTableName = "group_sequences"

// Team 团队
type Team struct {
	BaseModel
	SectionID    int64   `gorm:"not null;index" json:"section_id"`
	CohortTermID int64   `gorm:"not null;uniqueIndex:idx_team_cohort_group" json:"cohort_term_id"` // 组号所属学期
	GroupNumber  string  `gorm:"size:16;not null;uniqueIndex:idx_team_cohort_group" json:"group_number"`
	Name         *string `gorm:"size:100" json:"name,omitempty"`

	Members []TeamMember `gorm:"foreignKey:TeamID" json:"members,omitempty"`
	Project *Project     `gorm:"foreignKey:TeamID" json:"project,omitempty"`
}

func (Team) TableName() string {
	return TeamTableName
}

// TeamMember 团队成员
type TeamMember struct {
	BaseModel
	TeamID int64 `gorm:"column:team_id;not null;uniqueIndex:idx_team_member_user" json:"team_id"`
	UserID int64 `gorm:"column:user_id;not null;uniqueIndex:idx_team_member_user;index" json:"user_id"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (TeamMember) TableName() string {
	return TeamMemberTableName
}

// GroupSequence 组号序列, 每个学期一行
type GroupSequence struct {
	TermID    int64 `gorm:"primaryKey;autoIncrement:false" json:"term_id"`
	LastValue int64 `gorm:"not null;default:0" json:"last_value"`
}

func (GroupSequence) TableName() string {
	return GroupSequenceTableName
}
