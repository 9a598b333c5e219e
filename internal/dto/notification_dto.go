package dto

import "encoding/json"

// ListNotificationsQuery 通知查询
type ListNotificationsQuery struct {
	UnreadOnly bool `form:"unread_only"`
}

// NotificationResponse 通知响应
type NotificationResponse struct {
	ID        int64           `json:"id"`
	Type      string          `json:"type"`
	Title     string          `json:"title"`
	Content   string          `json:"content"`
	TeamID    *int64          `json:"team_id,omitempty"`
	ProjectID *int64          `json:"project_id,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Read      bool            `json:"read"`
	CreatedAt string          `json:"created_at"`
}
