package dto

// UpsertUserRequest 同步身份目录用户
type UpsertUserRequest struct {
	Username    string  `json:"username" binding:"required,max=50"`
	DisplayName *string `json:"display_name" binding:"omitempty,max=100"`
	Email       *string `json:"email" binding:"omitempty,email,max=100"`
	Role        string  `json:"role" binding:"required,oneof=STUDENT ADVISOR ADMIN"`
}

// UserResponse 用户响应
type UserResponse struct {
	ID          int64   `json:"id"`
	Username    string  `json:"username"`
	DisplayName *string `json:"display_name,omitempty"`
	Email       *string `json:"email,omitempty"`
	Role        string  `json:"role"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
}
