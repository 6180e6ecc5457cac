// Package queue 定义消息主题常量与通配模式，供发布/订阅使用.
package queue

// 主题命名规范：bs.<域>.<动作>，尽量稳定且向后兼容.
// 域：story(故事)、user(用户)、readlater(稍后阅读)
// 动作：created/updated/deleted/registered

const (
	// 故事生命周期.
	TopicStoryCreated = "bs.story.created" // 故事创建完成（正文已提取并入库，文件已落位）
	TopicStoryUpdated = "bs.story.updated" // 故事元数据或文件被更新
	TopicStoryDeleted = "bs.story.deleted" // 故事及其文件被删除

	// 用户生命周期.
	TopicUserRegistered = "bs.user.registered" // 新用户注册完成

	// 稍后阅读.
	TopicReadLaterAdded   = "bs.readlater.added"   // 故事被加入稍后阅读列表
	TopicReadLaterRemoved = "bs.readlater.removed" // 故事被移出稍后阅读列表
)

// 主题分组，用于批量操作或权限控制.
var (
	// 故事相关主题集合.
	StoryTopics = []string{
		TopicStoryCreated, TopicStoryUpdated, TopicStoryDeleted,
	}

	// 用户相关主题集合.
	UserTopics = []string{
		TopicUserRegistered,
	}

	// 稍后阅读相关主题集合.
	ReadLaterTopics = []string{
		TopicReadLaterAdded, TopicReadLaterRemoved,
	}
)
