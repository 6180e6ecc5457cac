package model

import (
	"time"
)

// User 用户模型.
type User struct {
	ID   uint   `gorm:"primaryKey"          json:"id"`
	UUID string `gorm:"size:36;uniqueIndex" json:"uuid"`
	Name string `gorm:"size:255;index"      json:"name"`
	// 邮箱作为登录名，全局唯一
	Email string `gorm:"size:255;uniqueIndex" json:"email"`
	// md5 十六进制摘要
	Password string `gorm:"size:32" json:"-"`
	// user 或 admin
	Role string `gorm:"size:16;default:user" json:"role"`
	// 头像文件名（公开目录下），可为空
	ProfilePicture string `gorm:"size:512" json:"profile_picture"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
