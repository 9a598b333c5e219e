package repository

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"capstone/internal/model"
)

type UserRepository interface {
	Upsert(user *model.User) error
	FindByID(id int64, opts ...QueryOption) (*model.User, error)
	FindByIDs(ids []int64) ([]*model.User, error)
	ListByRole(role string) ([]*model.User, error)
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// Upsert 按用户名同步身份目录记录
func (r *userRepository) Upsert(user *model.User) error {
	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "username"}},
		DoUpdates: clause.AssignmentColumns([]string{"display_name", "email", "role", "updated_at"}),
	}).Create(user).Error
	if err != nil {
		return translate(err, "同步用户失败")
	}
	if user.ID == 0 {
		return translate(r.db.Where("username = ?", user.Username).First(user).Error, "查询用户失败")
	}
	return nil
}

func (r *userRepository) FindByID(id int64, opts ...QueryOption) (*model.User, error) {
	var user model.User
	if err := applyOptions(r.db, opts).First(&user, id).Error; err != nil {
		return nil, translate(err, "查询用户失败")
	}
	return &user, nil
}

func (r *userRepository) FindByIDs(ids []int64) ([]*model.User, error) {
	if len(ids) == 0 {
		return []*model.User{}, nil
	}
	var users []*model.User
	if err := r.db.Where("id IN ?", ids).Order("id ASC").Find(&users).Error; err != nil {
		return nil, translate(err, "查询用户失败")
	}
	return users, nil
}

func (r *userRepository) ListByRole(role string) ([]*model.User, error) {
	var users []*model.User
	if err := r.db.Where("role = ?", role).Order("id ASC").Find(&users).Error; err != nil {
		return nil, translate(err, "查询用户列表失败")
	}
	return users, nil
}
