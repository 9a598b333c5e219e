package repository

import (
	"gorm.io/gorm"

	"capstone/internal/model"
)

type ProjectReviewRepository interface {
	Create(review *model.ProjectReview) error
	ListByProject(projectID int64) ([]*model.ProjectReview, error)
}

type projectReviewRepository struct {
	db *gorm.DB
}

func NewProjectReviewRepository(db *gorm.DB) ProjectReviewRepository {
	return &projectReviewRepository{db: db}
}

func (r *projectReviewRepository) Create(review *model.ProjectReview) error {
	return translate(r.db.Create(review).Error, "保存审批记录失败")
}

func (r *projectReviewRepository) ListByProject(projectID int64) ([]*model.ProjectReview, error) {
	var reviews []*model.ProjectReview
	err := r.db.Where("project_id = ?", projectID).Order("decided_at DESC, id DESC").Find(&reviews).Error
	if err != nil {
		return nil, translate(err, "查询审批记录失败")
	}
	return reviews, nil
}
