package types

import "time"

// RegisterRequest 用户注册表单（头像文件单独处理）.
// Role 只做绑定，服务端注册时一律忽略.
type RegisterRequest struct {
	Name     string `form:"name"     rule:"required"`
	Email    string `form:"email"    rule:"required,email"`
	Password string `form:"password" rule:"required,min=1"`
	Role     string `form:"role"`
}

// LoginRequest 用户登录.
type LoginRequest struct {
	Email    string `form:"email"    json:"email"    rule:"required,email"`
	Password string `form:"password" json:"password" rule:"required"`
}

// UpdateUserRequest 更新用户资料，空值表示不修改.
type UpdateUserRequest struct {
	Name  string `form:"name"  json:"name"`
	Email string `form:"email" json:"email" rule:"omitempty,email"`
}

// UserResponse 用户视图，不携带密码.
type UserResponse struct {
	ID             uint      `json:"id"`
	UUID           string    `json:"uuid"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Role           string    `json:"role"`
	ProfilePicture string    `json:"profilePicture,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`

	ProfilePictureURL string `json:"profilePictureUrl,omitempty"`
}

// LoginResult 登录结果.
type LoginResult struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}
