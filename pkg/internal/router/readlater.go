package router

import (
	"github.com/gin-gonic/gin"

	"github.com/yeisme/bacasendiri/pkg/internal/handle"
)

// RegisterReadLaterRoutes 注册稍后阅读路由，全部需要认证.
//
//	POST   /readlater         -> 加入列表
//	GET    /readlater/RL      -> 查看列表
//	DELETE /readlater/RL/:id  -> 按条目 id 移出列表
func RegisterReadLaterRoutes(g *gin.RouterGroup, authMW gin.HandlerFunc) {
	readLaterRoutes := g.Group("/readlater")
	readLaterRoutes.Use(noopMiddleware(authMW))
	{
		readLaterRoutes.POST("", handle.AddReadLater)
		readLaterRoutes.GET("/RL", handle.ListReadLater)
		readLaterRoutes.DELETE("/RL/:id", handle.RemoveReadLater)
	}
}
