package types

import "time"

// AddReadLaterRequest 加入稍后阅读列表.
type AddReadLaterRequest struct {
	StoryID uint `form:"storyId" json:"storyId" rule:"required"`
}

// ReadLaterItemResponse 稍后阅读条目及其故事摘要.
type ReadLaterItemResponse struct {
	ID        uint         `json:"id"`
	StoryID   uint         `json:"storyId"`
	CreatedAt time.Time    `json:"createdAt"`
	Story     StorySummary `json:"story"`
}
