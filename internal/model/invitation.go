package model

import "time"

const InvitationTableName = "invitations"

// Invitation 入队邀请
type Invitation struct {
	BaseModel
	TeamID      int64      `gorm:"not null;index" json:"team_id"`
	SectionID   int64      `gorm:"not null;index:idx_invitation_invitee_section" json:"section_id"`
	InviterID   int64      `gorm:"not null" json:"inviter_id"`
	InviteeID   int64      `gorm:"not null;index:idx_invitation_invitee_section" json:"invitee_id"`
	Status      string     `gorm:"size:16;not null;default:'PENDING';index" json:"status"`
	RespondedAt *time.Time `json:"responded_at,omitempty"`

	Team    *Team `gorm:"foreignKey:TeamID" json:"team,omitempty"`
	Inviter *User `gorm:"foreignKey:InviterID" json:"inviter,omitempty"`
}

func (Invitation) TableName() string {
	return InvitationTableName
}

// Expired 是否已超过有效期
func (i *Invitation) Expired(now time.Time, ttl time.Duration) bool {
	return ttl > 0 && now.Sub(i.CreatedAt) > ttl
}
