package model

import (
	"time"
)

// ReadLaterItem 稍后阅读条目，(user_id, story_id) 唯一，
// 重复加入由数据库唯一索引拒绝.
type ReadLaterItem struct {
	ID        uint  `gorm:"primaryKey"                       json:"id"`
	UserID    uint  `gorm:"index:idx_user_story,unique"      json:"user_id"`
	StoryID   uint  `gorm:"index:idx_user_story,unique"      json:"story_id"`
	Story     Story `gorm:"foreignKey:StoryID;references:ID" json:"story"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
