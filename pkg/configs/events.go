package configs

import "github.com/spf13/viper"

// EventsConfig 控制事件发布的开关（全局与分主题）。
type EventsConfig struct {
	Enabled   bool                  `mapstructure:"enabled"` // 总开关
	Story     StoryEventsConfig     `mapstructure:"story"`
	User      UserEventsConfig      `mapstructure:"user"`
	ReadLater ReadLaterEventsConfig `mapstructure:"readlater"`
}

// StoryEventsConfig 故事生命周期事件开关。
type StoryEventsConfig struct {
	Created bool `mapstructure:"created"`
	Updated bool `mapstructure:"updated"`
	Deleted bool `mapstructure:"deleted"`
}

// UserEventsConfig 用户生命周期事件开关。
type UserEventsConfig struct {
	Registered bool `mapstructure:"registered"`
}

// ReadLaterEventsConfig 稍后阅读事件开关。
type ReadLaterEventsConfig struct {
	Added   bool `mapstructure:"added"`
	Removed bool `mapstructure:"removed"`
}

func (c *EventsConfig) setDefaults(v *viper.Viper) {
	// 总开关：默认启用事件系统
	v.SetDefault("events.enabled", true)

	// 故事领域的事件：默认仅开启最小必要集，避免噪声过大
	v.SetDefault("events.story.created", true)
	v.SetDefault("events.story.deleted", true)
	v.SetDefault("events.story.updated", false)

	v.SetDefault("events.user.registered", true)

	// 稍后阅读属于高频低价值动作，默认关闭
	v.SetDefault("events.readlater.added", false)
	v.SetDefault("events.readlater.removed", false)
}
