package dto

// Caller 已解析的调用方身份
type Caller struct {
	UserID int64  `json:"user_id"`
	Role   string `json:"role"`
}
