package repository

import (
	"gorm.io/gorm"

	"capstone/internal/model"
	"capstone/pkg/constants"
)

type ProjectRepository interface {
	Create(project *model.Project) error
	FindByID(id int64, opts ...QueryOption) (*model.Project, error)
	FindByTeamID(teamID int64, opts ...QueryOption) (*model.Project, error)
	UpdateFields(id int64, fields map[string]interface{}) error
	// ChangeStatus 乐观更新, 仅当当前状态为 from 时生效
	ChangeStatus(id int64, from, to string, extra map[string]interface{}) (int64, error)
	ListPendingByAdvisor(advisorID int64) ([]*model.Project, error)
}

type projectRepository struct {
	db *gorm.DB
}

func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &projectRepository{db: db}
}

func (r *projectRepository) Create(project *model.Project) error {
	return translate(r.db.Create(project).Error, "创建项目失败")
}

func (r *projectRepository) FindByID(id int64, opts ...QueryOption) (*model.Project, error) {
	var project model.Project
	if err := applyOptions(r.db, opts).First(&project, id).Error; err != nil {
		return nil, translate(err, "查询项目失败")
	}
	return &project, nil
}

func (r *projectRepository) FindByTeamID(teamID int64, opts ...QueryOption) (*model.Project, error) {
	var project model.Project
	if err := applyOptions(r.db, opts).Where("team_id = ?", teamID).First(&project).Error; err != nil {
		return nil, translate(err, "查询项目失败")
	}
	return &project, nil
}

func (r *projectRepository) UpdateFields(id int64, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	err := r.db.Model(&model.Project{}).Where("id = ?", id).Updates(fields).Error
	return translate(err, "更新项目失败")
}

func (r *projectRepository) ChangeStatus(id int64, from, to string, extra map[string]interface{}) (int64, error) {
	updates := map[string]interface{}{"status": to}
	for k, v := range extra {
		updates[k] = v
	}
	result := r.db.Model(&model.Project{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if result.Error != nil {
		return 0, translate(result.Error, "更新项目状态失败")
	}
	return result.RowsAffected, nil
}

func (r *projectRepository) ListPendingByAdvisor(advisorID int64) ([]*model.Project, error) {
	var projects []*model.Project
	err := r.db.Preload("Advisor").
		Select("projects.*").
		Joins("JOIN project_advisors ON project_advisors.project_id = projects.id").
		Where("project_advisors.advisor_id = ? AND projects.status = ?", advisorID, constants.ProjectStatusPending).
		Order("projects.id ASC").Find(&projects).Error
	if err != nil {
		return nil, translate(err, "查询待审批项目失败")
	}
	return projects, nil
}
