package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/yeisme/bacasendiri/pkg/context"
	"github.com/yeisme/bacasendiri/pkg/internal/storage"
)

// StorageMiddleware 将存储管理器注入 request context，service 层据此取用各客户端.
func StorageMiddleware(manager *storage.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := context.WithStorageManager(c.Request.Context(), manager)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
