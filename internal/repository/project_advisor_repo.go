package repository

import (
	"gorm.io/gorm"

	"capstone/internal/model"
	"capstone/pkg/constants"
)

type ProjectAdvisorRepository interface {
	Create(link *model.ProjectAdvisor) error
	FindByProjectID(projectID int64) (*model.ProjectAdvisor, error)
	DeleteByProjectID(projectID int64) (int64, error)
	// CountApprovedByAdvisor 统计该教师名下状态为 APPROVED 的项目数
	CountApprovedByAdvisor(advisorID int64) (int64, error)
	CountApprovedByAdvisors(advisorIDs []int64) (map[int64]int64, error)
}

type projectAdvisorRepository struct {
	db *gorm.DB
}

func NewProjectAdvisorRepository(db *gorm.DB) ProjectAdvisorRepository {
	return &projectAdvisorRepository{db: db}
}

func (r *projectAdvisorRepository) Create(link *model.ProjectAdvisor) error {
	return translate(r.db.Create(link).Error, "关联指导教师失败")
}

func (r *projectAdvisorRepository) FindByProjectID(projectID int64) (*model.ProjectAdvisor, error) {
	var link model.ProjectAdvisor
	if err := r.db.Where("project_id = ?", projectID).First(&link).Error; err != nil {
		return nil, translate(err, "查询指导教师关联失败")
	}
	return &link, nil
}

func (r *projectAdvisorRepository) DeleteByProjectID(projectID int64) (int64, error) {
	result := r.db.Where("project_id = ?", projectID).Delete(&model.ProjectAdvisor{})
	if result.Error != nil {
		return 0, translate(result.Error, "解除指导教师关联失败")
	}
	return result.RowsAffected, nil
}

func (r *projectAdvisorRepository) approvedQuery() *gorm.DB {
	return r.db.Model(&model.ProjectAdvisor{}).
		Joins("JOIN projects ON projects.id = project_advisors.project_id").
		Where("projects.status = ?", constants.ProjectStatusApproved)
}

func (r *projectAdvisorRepository) CountApprovedByAdvisor(advisorID int64) (int64, error) {
	var count int64
	err := r.approvedQuery().Where("project_advisors.advisor_id = ?", advisorID).Count(&count).Error
	return count, translate(err, "统计指导项目数失败")
}

func (r *projectAdvisorRepository) CountApprovedByAdvisors(advisorIDs []int64) (map[int64]int64, error) {
	counts := make(map[int64]int64, len(advisorIDs))
	if len(advisorIDs) == 0 {
		return counts, nil
	}
	var rows []struct {
		AdvisorID int64
		Total     int64
	}
	err := r.approvedQuery().
		Select("project_advisors.advisor_id AS advisor_id, COUNT(*) AS total").
		Where("project_advisors.advisor_id IN ?", advisorIDs).
		Group("project_advisors.advisor_id").
		Scan(&rows).Error
	if err != nil {
		return nil, translate(err, "统计指导项目数失败")
	}
	for _, row := range rows {
		counts[row.AdvisorID] = row.Total
	}
	return counts, nil
}
