package model

const UserTableName = "users"

// User 身份目录用户镜像, 本模块只读引用
type User struct {
	BaseModel
	Username    string  `gorm:"size:50;not null;uniqueIndex" json:"username"`
	DisplayName *string `gorm:"size:100" json:"display_name,omitempty"`
	Email       *string `gorm:"size:100" json:"email,omitempty"`
	Role        string  `gorm:"size:16;not null;index" json:"role"` // STUDENT, ADVISOR, ADMIN
}

// TableName 指定表名
func (User) TableName() string {
	return UserTableName
}
