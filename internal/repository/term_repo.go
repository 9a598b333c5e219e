package repository

import (
	"gorm.io/gorm"

	"capstone/internal/model"
)

type TermRepository interface {
	Create(term *model.Term) error
	FindByID(id int64) (*model.Term, error)
	FindByYearSemester(year, semester int) (*model.Term, error)
	List() ([]*model.Term, error)
	CountSections(id int64) (int64, error)
	Delete(id int64) error
}

type termRepository struct {
	db *gorm.DB
}

func NewTermRepository(db *gorm.DB) TermRepository {
	return &termRepository{db: db}
}

func (r *termRepository) Create(term *model.Term) error {
	return translate(r.db.Create(term).Error, "创建学期失败")
}

func (r *termRepository) FindByID(id int64) (*model.Term, error) {
	var term model.Term
	if err := r.db.First(&term, id).Error; err != nil {
		return nil, translate(err, "查询学期失败")
	}
	return &term, nil
}

func (r *termRepository) FindByYearSemester(year, semester int) (*model.Term, error) {
	var term model.Term
	err := r.db.Where("academic_year = ? AND semester = ?", year, semester).First(&term).Error
	if err != nil {
		return nil, translate(err, "查询学期失败")
	}
	return &term, nil
}

func (r *termRepository) List() ([]*model.Term, error) {
	var terms []*model.Term
	if err := r.db.Order("academic_year DESC, semester DESC").Find(&terms).Error; err != nil {
		return nil, translate(err, "查询学期列表失败")
	}
	return terms, nil
}

func (r *termRepository) CountSections(id int64) (int64, error) {
	var count int64
	err := r.db.Model(&model.Section{}).Where("term_id = ?", id).Count(&count).Error
	return count, translate(err, "统计学期班级失败")
}

func (r *termRepository) Delete(id int64) error {
	return translate(r.db.Delete(&model.Term{}, id).Error, "删除学期失败")
}
