package repository

import (
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"capstone/internal/model"
)

type TeamRepository interface {
	Create(team *model.Team) error
	FindByID(id int64, opts ...QueryOption) (*model.Team, error)
	FindByMember(userID int64, opts ...QueryOption) (*model.Team, error)
	List(sectionID *int64) ([]*model.Team, error)
	ListForContinuation(sectionIDs []int64, teamIDs []int64) ([]*model.Team, error)
	MoveToSection(ids []int64, sectionID int64) (int64, error)
	// NextGroupNumber 在当前事务中递增学期组号序列并返回格式化后的组号
	NextGroupNumber(termID int64, width int) (string, error)
}

type teamRepository struct {
	db *gorm.DB
}

func NewTeamRepository(db *gorm.DB) TeamRepository {
	return &teamRepository{db: db}
}

func (r *teamRepository) Create(team *model.Team) error {
	return translate(r.db.Create(team).Error, "创建团队失败")
}

func (r *teamRepository) FindByID(id int64, opts ...QueryOption) (*model.Team, error) {
	var team model.Team
	if err := applyOptions(r.db, opts).First(&team, id).Error; err != nil {
		return nil, translate(err, "查询团队失败")
	}
	return &team, nil
}

func (r *teamRepository) FindByMember(userID int64, opts ...QueryOption) (*model.Team, error) {
	var team model.Team
	err := applyOptions(r.db, opts).
		Select("teams.*").
		Joins("JOIN team_members ON team_members.team_id = teams.id").
		Where("team_members.user_id = ?", userID).
		Order("teams.id DESC").
		First(&team).Error
	if err != nil {
		return nil, translate(err, "查询用户团队失败")
	}
	return &team, nil
}

func (r *teamRepository) List(sectionID *int64) ([]*model.Team, error) {
	var teams []*model.Team
	query := r.db.Model(&model.Team{}).
		Preload("Members", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("Members.User").
		Preload("Project")
	if sectionID != nil {
		query = query.Where("section_id = ?", *sectionID)
	}
	if err := query.Order("id ASC").Find(&teams).Error; err != nil {
		return nil, translate(err, "查询团队列表失败")
	}
	return teams, nil
}

// ListForContinuation 查询位于给定班级中的团队, teamIDs 为空时不过滤
func (r *teamRepository) ListForContinuation(sectionIDs []int64, teamIDs []int64) ([]*model.Team, error) {
	var teams []*model.Team
	query := r.db.Preload("Members").Where("section_id IN ?", sectionIDs)
	if len(teamIDs) > 0 {
		query = query.Where("id IN ?", teamIDs)
	}
	if err := query.Order("id ASC").Find(&teams).Error; err != nil {
		return nil, translate(err, "查询续接团队失败")
	}
	return teams, nil
}

func (r *teamRepository) MoveToSection(ids []int64, sectionID int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	result := r.db.Model(&model.Team{}).Where("id IN ?", ids).Update("section_id", sectionID)
	if result.Error != nil {
		return 0, translate(result.Error, "迁移团队班级失败")
	}
	return result.RowsAffected, nil
}

func (r *teamRepository) NextGroupNumber(termID int64, width int) (string, error) {
	seq := model.GroupSequence{TermID: termID}
	if err := r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&seq).Error; err != nil {
		return "", translate(err, "初始化组号序列失败")
	}
	err := r.db.Model(&model.GroupSequence{}).
		Where("term_id = ?", termID).
		Update("last_value", gorm.Expr("last_value + ?", 1)).Error
	if err != nil {
		return "", translate(err, "递增组号序列失败")
	}
	if err := r.db.Where("term_id = ?", termID).First(&seq).Error; err != nil {
		return "", translate(err, "读取组号序列失败")
	}
	return fmt.Sprintf("%0*d", width, seq.LastValue), nil
}
