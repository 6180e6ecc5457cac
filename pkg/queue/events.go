package queue

import "github.com/ThreeDotsLabs/watermill/message"

// -------------------------- 基于业务封装 events --------------------------

// PublishStoryCreated 发布 bs.story.created 事件。
// 故事正文提取入库、文件落位之后调用，通知下游流程（如统计、推荐等）。
// 可通过可选项 opts 注入 TraceID、Producer 等头部信息。
func PublishStoryCreated(pub message.Publisher, payload StoryCreatedPayload, opts ...func(*EventHeader)) error {
	msg, err := NewWatermillMessage(TopicStoryCreated, payload, opts...)
	if err != nil {
		return err
	}

	return pub.Publish(TopicStoryCreated, msg)
}

// PublishStoryUpdated 发布 bs.story.updated 事件。
func PublishStoryUpdated(pub message.Publisher, payload StoryUpdatedPayload, opts ...func(*EventHeader)) error {
	msg, err := NewWatermillMessage(TopicStoryUpdated, payload, opts...)
	if err != nil {
		return err
	}

	return pub.Publish(TopicStoryUpdated, msg)
}

// PublishStoryDeleted 发布 bs.story.deleted 事件。
func PublishStoryDeleted(pub message.Publisher, payload StoryDeletedPayload, opts ...func(*EventHeader)) error {
	msg, err := NewWatermillMessage(TopicStoryDeleted, payload, opts...)
	if err != nil {
		return err
	}

	return pub.Publish(TopicStoryDeleted, msg)
}

// PublishUserRegistered 发布 bs.user.registered 事件。
func PublishUserRegistered(pub message.Publisher, payload UserRegisteredPayload, opts ...func(*EventHeader)) error {
	msg, err := NewWatermillMessage(TopicUserRegistered, payload, opts...)
	if err != nil {
		return err
	}

	return pub.Publish(TopicUserRegistered, msg)
}

// PublishReadLaterAdded 发布 bs.readlater.added 事件。
func PublishReadLaterAdded(pub message.Publisher, payload ReadLaterPayload, opts ...func(*EventHeader)) error {
	msg, err := NewWatermillMessage(TopicReadLaterAdded, payload, opts...)
	if err != nil {
		return err
	}

	return pub.Publish(TopicReadLaterAdded, msg)
}

// PublishReadLaterRemoved 发布 bs.readlater.removed 事件。
func PublishReadLaterRemoved(pub message.Publisher, payload ReadLaterPayload, opts ...func(*EventHeader)) error {
	msg, err := NewWatermillMessage(TopicReadLaterRemoved, payload, opts...)
	if err != nil {
		return err
	}

	return pub.Publish(TopicReadLaterRemoved, msg)
}

// ParseStoryCreated 将 Watermill 消息解析为强类型 Envelope（StoryCreatedPayload）。
func ParseStoryCreated(msg *message.Message) (Message[StoryCreatedPayload], error) {
	return ParseWatermillMessage[StoryCreatedPayload](msg)
}

// ParseStoryDeleted 将 Watermill 消息解析为强类型 Envelope（StoryDeletedPayload）。
func ParseStoryDeleted(msg *message.Message) (Message[StoryDeletedPayload], error) {
	return ParseWatermillMessage[StoryDeletedPayload](msg)
}
