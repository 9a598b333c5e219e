package dto

// IDParam ID参数
type IDParam struct {
	ID int64 `uri:"id" binding:"required,min=1"`
}

// MemberParam 团队成员路径参数
type MemberParam struct {
	ID     int64 `uri:"id" binding:"required,min=1"`
	UserID int64 `uri:"user_id" binding:"required,min=1"`
}

// UserBrief 用户摘要
type UserBrief struct {
	ID          int64   `json:"id"`
	Username    string  `json:"username"`
	DisplayName *string `json:"display_name,omitempty"`
	Role        string  `json:"role,omitempty"`
}
