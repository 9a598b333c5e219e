package repository

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"capstone/internal/model"
)

type EnrollmentRepository interface {
	// CreateIgnoreDuplicates 批量写入, 已存在的 (user, section) 跳过, 返回实际写入条数
	CreateIgnoreDuplicates(enrollments []*model.Enrollment) (int64, error)
	Exists(userID, sectionID int64) (bool, error)
	ListBySection(sectionID int64) ([]*model.Enrollment, error)
	ListBySectionAndUsers(sectionID int64, userIDs []int64) ([]*model.Enrollment, error)
	ListSectionIDsByUser(userID int64) ([]int64, error)
}

type enrollmentRepository struct {
	db *gorm.DB
}

func NewEnrollmentRepository(db *gorm.DB) EnrollmentRepository {
	return &enrollmentRepository{db: db}
}

func (r *enrollmentRepository) CreateIgnoreDuplicates(enrollments []*model.Enrollment) (int64, error) {
	if len(enrollments) == 0 {
		return 0, nil
	}
	result := r.db.Clauses(clause.OnConflict{DoNothing: true}).CreateInBatches(enrollments, 200)
	if result.Error != nil {
		return 0, translate(result.Error, "写入选课记录失败")
	}
	return result.RowsAffected, nil
}

func (r *enrollmentRepository) Exists(userID, sectionID int64) (bool, error) {
	var count int64
	err := r.db.Model(&model.Enrollment{}).
		Where("user_id = ? AND section_id = ?", userID, sectionID).
		Count(&count).Error
	if err != nil {
		return false, translate(err, "查询选课记录失败")
	}
	return count > 0, nil
}

func (r *enrollmentRepository) ListBySection(sectionID int64) ([]*model.Enrollment, error) {
	var enrollments []*model.Enrollment
	err := r.db.Preload("User").Where("section_id = ?", sectionID).
		Order("user_id ASC").Find(&enrollments).Error
	if err != nil {
		return nil, translate(err, "查询选课记录失败")
	}
	return enrollments, nil
}

func (r *enrollmentRepository) ListBySectionAndUsers(sectionID int64, userIDs []int64) ([]*model.Enrollment, error) {
	if len(userIDs) == 0 {
		return []*model.Enrollment{}, nil
	}
	var enrollments []*model.Enrollment
	err := r.db.Where("section_id = ? AND user_id IN ?", sectionID, userIDs).
		Order("user_id ASC").Find(&enrollments).Error
	if err != nil {
		return nil, translate(err, "查询选课记录失败")
	}
	return enrollments, nil
}

func (r *enrollmentRepository) ListSectionIDsByUser(userID int64) ([]int64, error) {
	var ids []int64
	err := r.db.Model(&model.Enrollment{}).Where("user_id = ?", userID).Pluck("section_id", &ids).Error
	if err != nil {
		return nil, translate(err, "查询选课记录失败")
	}
	return ids, nil
}
