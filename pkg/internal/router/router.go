// Package router 管理路由配置，将路径绑定到 pkg/internal/handle 的处理器.
// 认证与缓存中间件由上层构造后注入，router 只负责挂载.
package router

import (
	"github.com/gin-gonic/gin"
)

// noopMiddleware 注入的中间件为 nil 时的兜底，路由仍可挂载.
func noopMiddleware(mw gin.HandlerFunc) gin.HandlerFunc {
	if mw != nil {
		return mw
	}

	return func(c *gin.Context) { c.Next() }
}
