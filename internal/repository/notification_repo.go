package repository

import (
	"time"

	"gorm.io/gorm"

	"capstone/internal/model"
)

type NotificationRepository interface {
	CreateBatch(notifications []*model.Notification) error
	ListByUser(userID int64, unreadOnly bool, limit int) ([]*model.Notification, error)
	MarkRead(id, userID int64, at time.Time) (int64, error)
}

type notificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) CreateBatch(notifications []*model.Notification) error {
	if len(notifications) == 0 {
		return nil
	}
	return translate(r.db.Create(notifications).Error, "写入通知失败")
}

func (r *notificationRepository) ListByUser(userID int64, unreadOnly bool, limit int) ([]*model.Notification, error) {
	var notifications []*model.Notification
	query := r.db.Where("user_id = ?", userID)
	if unreadOnly {
		query = query.Where("read_at IS NULL")
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Order("id DESC").Find(&notifications).Error; err != nil {
		return nil, translate(err, "查询通知失败")
	}
	return notifications, nil
}

func (r *notificationRepository) MarkRead(id, userID int64, at time.Time) (int64, error) {
	result := r.db.Model(&model.Notification{}).
		Where("id = ? AND user_id = ? AND read_at IS NULL", id, userID).
		Update("read_at", at)
	if result.Error != nil {
		return 0, translate(result.Error, "标记通知已读失败")
	}
	return result.RowsAffected, nil
}
