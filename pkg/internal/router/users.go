package router

import (
	"github.com/gin-gonic/gin"

	"github.com/yeisme/bacasendiri/pkg/internal/handle"
	"github.com/yeisme/bacasendiri/pkg/middleware"
)

// RegisterUsersRoutes 注册用户相关路由.注册与登录公开，其余需要认证.
//
//	POST   /users/register     -> 注册（公开）
//	POST   /users/login        -> 登录（公开）
//	GET    /users/profile      -> 当前用户资料
//	GET    /users              -> 搜索用户（仅管理员）
//	PUT    /users/update/:id   -> 更新资料（本人或管理员）
//	PUT    /users/picture/:id  -> 替换头像
//	DELETE /users/delete/:id   -> 删除用户（本人或管理员）
func RegisterUsersRoutes(g *gin.RouterGroup, authMW gin.HandlerFunc) {
	usersRoutes := g.Group("/users")
	{
		usersRoutes.POST("/register", handle.Register)
		usersRoutes.POST("/login", handle.Login)

		authed := usersRoutes.Group("")
		authed.Use(noopMiddleware(authMW))
		{
			authed.GET("/profile", handle.Profile)
			authed.GET("", middleware.RequireAdmin(), handle.SearchUsers)
			authed.PUT("/update/:id", handle.UpdateUser)
			authed.PUT("/picture/:id", handle.UpdateProfilePicture)
			authed.DELETE("/delete/:id", handle.DeleteUser)
		}
	}
}
