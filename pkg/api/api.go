// Package api 组装 HTTP 接口：构造认证/缓存中间件并把各业务路由挂到 gin 引擎.
package api

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/bacasendiri/pkg/cache"
	"github.com/yeisme/bacasendiri/pkg/configs"
	"github.com/yeisme/bacasendiri/pkg/internal/router"
	"github.com/yeisme/bacasendiri/pkg/internal/storage"
	"github.com/yeisme/bacasendiri/pkg/middleware"
)

const readCacheTTL = 30 * time.Second

// RegisterGroup 注册全部业务路由到传入的 gin 引擎.
// local 文件后端时额外挂载封面/正文/头像的静态目录.
func RegisterGroup(e *gin.Engine, manager *storage.Manager) *gin.Engine {
	cfg := configs.GetConfig()

	authMW := middleware.AuthMiddleware(cfg.Auth)

	// 公开阅读接口的响应缓存，KV 不可用时直接不挂
	var cacheMW gin.HandlerFunc

	if manager != nil && manager.KV != nil {
		cacheCfg := middleware.DefaultCacheConfig(cache.NewCache(manager.KV.KVStore))
		cacheCfg.TTL = readCacheTTL
		cacheMW = middleware.CacheMiddleware(cacheCfg)
	}

	root := e.Group("")
	router.RegisterUsersRoutes(root, authMW)
	router.RegisterStoriesRoutes(root, authMW, cacheMW)
	router.RegisterReadLaterRoutes(root, authMW)
	router.RegisterHealthCheckRoute(root)

	if cfg.Storage.Backend == configs.FileBackendLocal {
		e.Static("/"+cfg.Storage.ThumbnailDir, cfg.Storage.ThumbnailPath())
		e.Static("/"+cfg.Storage.ContentDir, cfg.Storage.ContentPath())
		e.Static("/"+cfg.Storage.ProfileDir, cfg.Storage.ProfilePath())
	}

	return e
}
