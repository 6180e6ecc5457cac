package queue

import "time"

// EventHeader 定义所有事件的通用头部元数据.
// 建议在发布消息时填充 TraceID、OccurredAt、Producer 等，便于追踪链路与审计.
type EventHeader struct {
	// Topic 冗余记录消息主题，便于离线处理或转储后定位来源主题.
	Topic string `json:"topic"`
	// TraceID 分布式追踪/关联 ID，可来自中间件或业务生成.
	TraceID string `json:"trace_id,omitempty"`
	// Producer 生产者服务名或节点标识.
	Producer string `json:"producer,omitempty"`
	// OccurredAt 事件发生时间（UTC，RFC3339）.
	OccurredAt time.Time `json:"occurred_at"`
	// Version 事件负载版本，便于向后兼容演进.
	Version string `json:"version,omitempty"`
}

// Message 是统一的消息封装，Header + Payload.
// T 即不同主题对应的负载结构体.
type Message[T any] struct {
	Header  EventHeader `json:"header"`
	Payload T           `json:"payload"`
}

// -------------------------- 故事领域 --------------------------

// StoryRef 标识一条故事记录.
type StoryRef struct {
	ID     uint   `json:"id"`
	UUID   string `json:"uuid"`
	Title  string `json:"title,omitempty"`
	Author string `json:"author,omitempty"`
	UserID uint   `json:"user_id"`
}

// StoryCreatedPayload 故事创建完成.
type StoryCreatedPayload struct {
	Story StoryRef `json:"story"`
	// 入库正文统计，便于下游监控截断率
	ContentLength  int  `json:"content_length"`
	OriginalLength int  `json:"original_length"`
	WasTruncated   bool `json:"was_truncated"`
}

// StoryUpdatedPayload 故事被更新.
type StoryUpdatedPayload struct {
	Story StoryRef `json:"story"`
	// 被替换的字段名列表（title/author/description/thumbnail/content）
	ChangedFields []string `json:"changed_fields,omitempty"`
}

// StoryDeletedPayload 故事被删除.
type StoryDeletedPayload struct {
	Story StoryRef `json:"story"`
	// 执行删除的用户（本人或管理员）
	DeletedBy string `json:"deleted_by,omitempty"`
}

// -------------------------- 用户领域 --------------------------

// UserRegisteredPayload 新用户注册完成.
type UserRegisteredPayload struct {
	UserID uint   `json:"user_id"`
	UUID   string `json:"uuid"`
	Email  string `json:"email"`
	Role   string `json:"role,omitempty"`
}

// -------------------------- 稍后阅读领域 --------------------------

// ReadLaterPayload 稍后阅读条目变更.
type ReadLaterPayload struct {
	UserID  uint `json:"user_id"`
	StoryID uint `json:"story_id"`
}
