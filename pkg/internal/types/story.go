package types

import "time"

// CreateStoryRequest 创建故事的表单字段（文件部分单独处理）.
type CreateStoryRequest struct {
	Title       string `form:"title"       rule:"required"`
	Author      string `form:"author"      rule:"required"`
	Description string `form:"description" rule:"required"`
}

// UpdateStoryRequest 更新故事的表单字段，全部可选，空值表示不修改.
type UpdateStoryRequest struct {
	Title       string `form:"title"`
	Author      string `form:"author"`
	Description string `form:"description"`
}

// StoryResponse 故事详情.
type StoryResponse struct {
	ID          uint      `json:"id"`
	UUID        string    `json:"uuid"`
	Title       string    `json:"title"`
	Author      string    `json:"author"`
	Description string    `json:"description"`
	Thumbnail   string    `json:"thumbnail,omitempty"`
	ContentFile string    `json:"contentFile,omitempty"`
	ContentText string    `json:"contentText,omitempty"`
	UserID      uint      `json:"userId"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`

	ThumbnailURL string `json:"thumbnailUrl,omitempty"`
	ContentURL   string `json:"contentUrl,omitempty"`
}

// StorySummary 列表视图，不携带正文.
type StorySummary struct {
	ID          uint      `json:"id"`
	UUID        string    `json:"uuid"`
	Title       string    `json:"title"`
	Author      string    `json:"author"`
	Description string    `json:"description"`
	Thumbnail   string    `json:"thumbnail,omitempty"`
	UserID      uint      `json:"userId"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`

	ThumbnailURL string `json:"thumbnailUrl,omitempty"`
}

// CreateStoryResult 创建结果，除故事本身外还携带入库统计.
type CreateStoryResult struct {
	Story          StoryResponse `json:"story"`
	ContentLength  int           `json:"contentLength"`
	OriginalLength int           `json:"originalLength"`
	WasTruncated   bool          `json:"wasTruncated"`
}
