package router

import (
	"github.com/gin-gonic/gin"

	"github.com/yeisme/bacasendiri/pkg/internal/handle"
)

// RegisterStoriesRoutes 注册故事相关路由.
// 阅读是公开的（可挂响应缓存中间件），其余需要认证.
//
//	GET    /stories            -> 浏览/搜索
//	GET    /stories/read/:id   -> 阅读正文（公开，可缓存）
//	GET    /stories/c/me       -> 我的作品
//	POST   /stories/create     -> 上传故事
//	PUT    /stories/update/:id -> 更新故事
//	DELETE /stories/delete/:id -> 删除故事
func RegisterStoriesRoutes(g *gin.RouterGroup, authMW, cacheMW gin.HandlerFunc) {
	storiesRoutes := g.Group("/stories")
	{
		storiesRoutes.GET("/read/:id", noopMiddleware(cacheMW), handle.ReadStory)

		authed := storiesRoutes.Group("")
		authed.Use(noopMiddleware(authMW))
		{
			authed.GET("", handle.ListStories)
			authed.GET("/c/me", handle.MyStories)
			authed.POST("/create", handle.CreateStory)
			authed.PUT("/update/:id", handle.UpdateStory)
			authed.DELETE("/delete/:id", handle.DeleteStory)
		}
	}
}
