package service

import (
	"context"
	"encoding/json"
	"time"

	"gorm.io/gorm"

	"capstone/internal/dto"
	"capstone/internal/model"
	"capstone/internal/pkg/auth"
	"capstone/internal/repository"
	pkgErrors "capstone/pkg/errors"
)

// NotificationService 站内通知查询
type NotificationService interface {
	ListMine(ctx context.Context, caller *dto.Caller, unreadOnly bool) ([]*dto.NotificationResponse, error)
	MarkRead(ctx context.Context, caller *dto.Caller, notificationID int64) error
}

type notificationService struct {
	db *gorm.DB
}

func NewNotificationService(db *gorm.DB) NotificationService {
	return &notificationService{db: db}
}

func (s *notificationService) ListMine(ctx context.Context, caller *dto.Caller, unreadOnly bool) ([]*dto.NotificationResponse, error) {
	if err := auth.Require(caller, auth.PermNotificationView); err != nil {
		return nil, err
	}
	items, err := repository.NewNotificationRepository(s.db.WithContext(ctx)).ListByUser(caller.UserID, unreadOnly, 100)
	if err != nil {
		return nil, err
	}
	responses := make([]*dto.NotificationResponse, len(items))
	for i, n := range items {
		responses[i] = toNotificationResponse(n)
	}
	return responses, nil
}

func (s *notificationService) MarkRead(ctx context.Context, caller *dto.Caller, notificationID int64) error {
	if err := auth.Require(caller, auth.PermNotificationView); err != nil {
		return err
	}
	affected, err := repository.NewNotificationRepository(s.db.WithContext(ctx)).MarkRead(notificationID, caller.UserID, time.Now())
	if err != nil {
		return err
	}
	if affected == 0 {
		return pkgErrors.Newf(pkgErrors.ErrNotFound, "通知不存在或已读")
	}
	return nil
}

func toNotificationResponse(n *model.Notification) *dto.NotificationResponse {
	return &dto.NotificationResponse{
		ID:        n.ID,
		Type:      n.Type,
		Title:     n.Title,
		Content:   n.Content,
		TeamID:    n.TeamID,
		ProjectID: n.ProjectID,
		Payload:   json.RawMessage(n.Payload),
		Read:      n.ReadAt != nil,
		CreatedAt: formatTime(n.CreatedAt),
	}
}
