package repository

import (
	"gorm.io/gorm"

	"capstone/internal/model"
)

type SectionRepository interface {
	Create(section *model.Section) error
	FindByID(id int64, opts ...QueryOption) (*model.Section, error)
	FindByIDs(ids []int64) ([]*model.Section, error)
	FindContinuation(fromID, termID int64) (*model.Section, error)
	FindLatestEnrolledUnlocked(userID int64) (*model.Section, error)
	List(termID *int64, courseType string) ([]*model.Section, error)
	Update(section *model.Section) error
	CountTeams(id int64) (int64, error)
	CountEnrollments(id int64) (int64, error)
	Delete(id int64) error
}

type sectionRepository struct {
	db *gorm.DB
}

func NewSectionRepository(db *gorm.DB) SectionRepository {
	return &sectionRepository{db: db}
}

func (r *sectionRepository) Create(section *model.Section) error {
	return translate(r.db.Create(section).Error, "创建班级失败")
}

func (r *sectionRepository) FindByID(id int64, opts ...QueryOption) (*model.Section, error) {
	var section model.Section
	if err := applyOptions(r.db, opts).First(&section, id).Error; err != nil {
		return nil, translate(err, "查询班级失败")
	}
	return &section, nil
}

func (r *sectionRepository) FindByIDs(ids []int64) ([]*model.Section, error) {
	if len(ids) == 0 {
		return []*model.Section{}, nil
	}
	var sections []*model.Section
	err := r.db.Preload("Term").Where("id IN ?", ids).Find(&sections).Error
	if err != nil {
		return nil, translate(err, "查询班级失败")
	}
	return sections, nil
}

// FindContinuation 查找由 fromID 续接到指定学期的班级
func (r *sectionRepository) FindContinuation(fromID, termID int64) (*model.Section, error) {
	var section model.Section
	err := r.db.Where("continued_from_id = ? AND term_id = ?", fromID, termID).First(&section).Error
	if err != nil {
		return nil, translate(err, "查询续接班级失败")
	}
	return &section, nil
}

// FindLatestEnrolledUnlocked 用户选修的最近学期且未锁定团队的班级
func (r *sectionRepository) FindLatestEnrolledUnlocked(userID int64) (*model.Section, error) {
	var section model.Section
	err := r.db.Model(&model.Section{}).
		Select("sections.*").
		Joins("JOIN enrollments ON enrollments.section_id = sections.id").
		Joins("JOIN terms ON terms.id = sections.term_id").
		Where("enrollments.user_id = ? AND sections.team_locked = ?", userID, false).
		Order("terms.academic_year DESC, terms.semester DESC, sections.id DESC").
		First(&section).Error
	if err != nil {
		return nil, translate(err, "查询可用班级失败")
	}
	return &section, nil
}

func (r *sectionRepository) List(termID *int64, courseType string) ([]*model.Section, error) {
	var sections []*model.Section
	query := r.db.Model(&model.Section{}).Preload("Term")
	if termID != nil {
		query = query.Where("term_id = ?", *termID)
	}
	if courseType != "" {
		query = query.Where("course_type = ?", courseType)
	}
	if err := query.Order("term_id DESC, section_code ASC").Find(&sections).Error; err != nil {
		return nil, translate(err, "查询班级列表失败")
	}
	return sections, nil
}

func (r *sectionRepository) Update(section *model.Section) error {
	return translate(r.db.Save(section).Error, "更新班级失败")
}

func (r *sectionRepository) CountTeams(id int64) (int64, error) {
	var count int64
	err := r.db.Model(&model.Team{}).Where("section_id = ?", id).Count(&count).Error
	return count, translate(err, "统计班级团队失败")
}

func (r *sectionRepository) CountEnrollments(id int64) (int64, error) {
	var count int64
	err := r.db.Model(&model.Enrollment{}).Where("section_id = ?", id).Count(&count).Error
	return count, translate(err, "统计班级选课失败")
}

func (r *sectionRepository) Delete(id int64) error {
	return translate(r.db.Delete(&model.Section{}, id).Error, "删除班级失败")
}
