package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"capstone/internal/dto"
	"capstone/internal/model"
	"capstone/internal/pkg/auth"
	"capstone/internal/repository"
	pkgErrors "capstone/pkg/errors"
)

// UserService 身份目录用户镜像
type UserService interface {
	UpsertUser(ctx context.Context, caller *dto.Caller, req *dto.UpsertUserRequest) (*dto.UserResponse, error)
	GetUser(ctx context.Context, caller *dto.Caller, userID int64) (*dto.UserResponse, error)
	// Resolve 按用户ID读取当前角色, 不信任Token中的角色声明
	Resolve(ctx context.Context, userID int64) (*dto.Caller, error)
}

type userService struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewUserService(db *gorm.DB, logger *zap.Logger) UserService {
	return &userService{db: db, logger: logger}
}

func (s *userService) UpsertUser(ctx context.Context, caller *dto.Caller, req *dto.UpsertUserRequest) (*dto.UserResponse, error) {
	if err := auth.Require(caller, auth.PermUserManage); err != nil {
		return nil, err
	}
	user := &model.User{
		Username:    req.Username,
		DisplayName: req.DisplayName,
		Email:       req.Email,
		Role:        req.Role,
	}
	if err := repository.NewUserRepository(s.db.WithContext(ctx)).Upsert(user); err != nil {
		return nil, err
	}
	s.logger.Info("同步用户", zap.Int64("user_id", user.ID), zap.String("username", user.Username), zap.String("role", user.Role))
	return s.GetUser(ctx, caller, user.ID)
}

func (s *userService) GetUser(ctx context.Context, caller *dto.Caller, userID int64) (*dto.UserResponse, error) {
	if err := auth.Require(caller, auth.PermCatalogView); err != nil {
		return nil, err
	}
	user, err := repository.NewUserRepository(s.db.WithContext(ctx)).FindByID(userID)
	if err != nil {
		if errors.Is(err, pkgErrors.ErrRecordNotFound) {
			return nil, pkgErrors.Newf(pkgErrors.ErrNotFound, "用户不存在")
		}
		return nil, err
	}
	return &dto.UserResponse{
		ID:          user.ID,
		Username:    user.Username,
		DisplayName: user.DisplayName,
		Email:       user.Email,
		Role:        user.Role,
		CreatedAt:   formatTime(user.CreatedAt),
		UpdatedAt:   formatTime(user.UpdatedAt),
	}, nil
}

func (s *userService) Resolve(ctx context.Context, userID int64) (*dto.Caller, error) {
	user, err := repository.NewUserRepository(s.db.WithContext(ctx)).FindByID(userID)
	if err != nil {
		if errors.Is(err, pkgErrors.ErrRecordNotFound) {
			return nil, pkgErrors.Newf(pkgErrors.ErrUnauthorized, "用户不存在或已被移除")
		}
		return nil, err
	}
	return &dto.Caller{UserID: user.ID, Role: user.Role}, nil
}
