package repository

import (
	"gorm.io/gorm"

	"capstone/internal/model"
)

type TeamMemberRepository interface {
	Create(member *model.TeamMember) error
	Delete(teamID, userID int64) (int64, error)
	Count(teamID int64) (int64, error)
	IsMember(teamID, userID int64) (bool, error)
	HasTeamInSection(userID, sectionID int64) (bool, error)
	ListUserIDs(teamIDs []int64) ([]int64, error)
}

type teamMemberRepository struct {
	db *gorm.DB
}

func NewTeamMemberRepository(db *gorm.DB) TeamMemberRepository {
	return &teamMemberRepository{db: db}
}

func (r *teamMemberRepository) Create(member *model.TeamMember) error {
	return translate(r.db.Create(member).Error, "添加团队成员失败")
}

func (r *teamMemberRepository) Delete(teamID, userID int64) (int64, error) {
	result := r.db.Where("team_id = ? AND user_id = ?", teamID, userID).Delete(&model.TeamMember{})
	if result.Error != nil {
		return 0, translate(result.Error, "移除团队成员失败")
	}
	return result.RowsAffected, nil
}

func (r *teamMemberRepository) Count(teamID int64) (int64, error) {
	var count int64
	err := r.db.Model(&model.TeamMember{}).Where("team_id = ?", teamID).Count(&count).Error
	return count, translate(err, "统计团队成员失败")
}

func (r *teamMemberRepository) IsMember(teamID, userID int64) (bool, error) {
	var count int64
	err := r.db.Model(&model.TeamMember{}).
		Where("team_id = ? AND user_id = ?", teamID, userID).
		Count(&count).Error
	if err != nil {
		return false, translate(err, "查询团队成员失败")
	}
	return count > 0, nil
}

// HasTeamInSection 用户在该班级内是否已有团队
func (r *teamMemberRepository) HasTeamInSection(userID, sectionID int64) (bool, error) {
	var count int64
	err := r.db.Model(&model.TeamMember{}).
		Joins("JOIN teams ON teams.id = team_members.team_id").
		Where("team_members.user_id = ? AND teams.section_id = ?", userID, sectionID).
		Count(&count).Error
	if err != nil {
		return false, translate(err, "查询团队成员失败")
	}
	return count > 0, nil
}

func (r *teamMemberRepository) ListUserIDs(teamIDs []int64) ([]int64, error) {
	if len(teamIDs) == 0 {
		return []int64{}, nil
	}
	var ids []int64
	err := r.db.Model(&model.TeamMember{}).
		Where("team_id IN ?", teamIDs).
		Distinct().Order("user_id ASC").Pluck("user_id", &ids).Error
	if err != nil {
		return nil, translate(err, "查询团队成员失败")
	}
	return ids, nil
}
