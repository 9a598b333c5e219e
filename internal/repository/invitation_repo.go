package repository

import (
	"time"

	"gorm.io/gorm"

	"capstone/internal/model"
	"capstone/pkg/constants"
)

type InvitationRepository interface {
	Create(invitation *model.Invitation) error
	FindByID(id int64, opts ...QueryOption) (*model.Invitation, error)
	FindPending(teamID, inviteeID int64) (*model.Invitation, error)
	ListPendingForInvitee(inviteeID int64) ([]*model.Invitation, error)
	MarkAccepted(id int64, at time.Time) (int64, error)
	Delete(id int64) (int64, error)
	DeletePendingForInviteeInSection(inviteeID, sectionID int64, exceptID int64) (int64, error)
	// MovePendingToSection 团队迁移班级时同步其待处理邀请
	MovePendingToSection(teamIDs []int64, sectionID int64) (int64, error)
	DeletePendingCreatedBefore(before time.Time) (int64, error)
}

type invitationRepository struct {
	db *gorm.DB
}

func NewInvitationRepository(db *gorm.DB) InvitationRepository {
	return &invitationRepository{db: db}
}

func (r *invitationRepository) Create(invitation *model.Invitation) error {
	return translate(r.db.Create(invitation).Error, "创建邀请失败")
}

func (r *invitationRepository) FindByID(id int64, opts ...QueryOption) (*model.Invitation, error) {
	var invitation model.Invitation
	if err := applyOptions(r.db, opts).First(&invitation, id).Error; err != nil {
		return nil, translate(err, "查询邀请失败")
	}
	return &invitation, nil
}

func (r *invitationRepository) FindPending(teamID, inviteeID int64) (*model.Invitation, error) {
	var invitation model.Invitation
	err := r.db.Where("team_id = ? AND invitee_id = ? AND status = ?",
		teamID, inviteeID, constants.InvitationStatusPending).First(&invitation).Error
	if err != nil {
		return nil, translate(err, "查询邀请失败")
	}
	return &invitation, nil
}

func (r *invitationRepository) ListPendingForInvitee(inviteeID int64) ([]*model.Invitation, error) {
	var invitations []*model.Invitation
	err := r.db.Preload("Team").Preload("Inviter").
		Where("invitee_id = ? AND status = ?", inviteeID, constants.InvitationStatusPending).
		Order("created_at DESC, id DESC").Find(&invitations).Error
	if err != nil {
		return nil, translate(err, "查询邀请列表失败")
	}
	return invitations, nil
}

// MarkAccepted 仅对 PENDING 状态生效, 返回影响行数
func (r *invitationRepository) MarkAccepted(id int64, at time.Time) (int64, error) {
	result := r.db.Model(&model.Invitation{}).
		Where("id = ? AND status = ?", id, constants.InvitationStatusPending).
		Updates(map[string]interface{}{
			"status":       constants.InvitationStatusAccepted,
			"responded_at": at,
		})
	if result.Error != nil {
		return 0, translate(result.Error, "更新邀请状态失败")
	}
	return result.RowsAffected, nil
}

func (r *invitationRepository) Delete(id int64) (int64, error) {
	result := r.db.Delete(&model.Invitation{}, id)
	if result.Error != nil {
		return 0, translate(result.Error, "删除邀请失败")
	}
	return result.RowsAffected, nil
}

func (r *invitationRepository) DeletePendingForInviteeInSection(inviteeID, sectionID int64, exceptID int64) (int64, error) {
	result := r.db.
		Where("invitee_id = ? AND section_id = ? AND status = ? AND id <> ?",
			inviteeID, sectionID, constants.InvitationStatusPending, exceptID).
		Delete(&model.Invitation{})
	if result.Error != nil {
		return 0, translate(result.Error, "清理待处理邀请失败")
	}
	return result.RowsAffected, nil
}

func (r *invitationRepository) MovePendingToSection(teamIDs []int64, sectionID int64) (int64, error) {
	if len(teamIDs) == 0 {
		return 0, nil
	}
	result := r.db.Model(&model.Invitation{}).
		Where("team_id IN ? AND status = ?", teamIDs, constants.InvitationStatusPending).
		Update("section_id", sectionID)
	if result.Error != nil {
		return 0, translate(result.Error, "迁移待处理邀请失败")
	}
	return result.RowsAffected, nil
}

func (r *invitationRepository) DeletePendingCreatedBefore(before time.Time) (int64, error) {
	result := r.db.
		Where("status = ? AND created_at < ?", constants.InvitationStatusPending, before).
		Delete(&model.Invitation{})
	if result.Error != nil {
		return 0, translate(result.Error, "清理过期邀请失败")
	}
	return result.RowsAffected, nil
}
