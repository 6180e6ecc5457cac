// Package model 定义数据库模型.
package model

import (
	"time"
)

// MaxContentLength 正文入库上限（字符数），超出部分在入库前被截断.
const MaxContentLength = 65535

// Story 故事模型.
type Story struct {
	ID uint `gorm:"primaryKey" json:"id"`
	// 对外分享用的稳定标识，创建后不变
	UUID        string `gorm:"size:36;uniqueIndex" json:"uuid"`
	Title       string `gorm:"size:512;index"      json:"title"`
	Author      string `gorm:"size:255;index"      json:"author"`
	Description string `gorm:"type:text"           json:"description"`
	// 封面图文件名（公开目录下），可为空
	Thumbnail string `gorm:"size:512" json:"thumbnail"`
	// 正文文件名（公开目录下）
	ContentFile string `gorm:"size:512" json:"content_file"`
	// 提取出的正文文本，长度受 MaxContentLength 约束
	ContentText string `gorm:"type:text" json:"content_text"`
	UserID      uint   `gorm:"index"     json:"user_id"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
