// Package handle 提供请求处理器的实现：绑定/校验请求、调用 service、输出统一响应包络.
package handle

import (
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/bacasendiri/pkg/auth"
	"github.com/yeisme/bacasendiri/pkg/internal/service"
	"github.com/yeisme/bacasendiri/pkg/internal/types"
	"github.com/yeisme/bacasendiri/pkg/log"
	"github.com/yeisme/bacasendiri/pkg/middleware"
)

// multipart 文件字段名，与前端表单保持一致.
const (
	fieldThumbnail = "thumbnail" // 故事封面
	fieldContent   = "content"   // 故事正文文件
	fieldPicture   = "file"      // 用户头像
)

// currentIdentity 取出认证中间件注入的身份，未认证返回 401.
func currentIdentity(c *gin.Context) (*auth.Identity, bool) {
	id := middleware.GetIdentity(c)
	if id == nil {
		c.JSON(http.StatusUnauthorized,
			types.Fail(types.CodeUnauthenticated, "authentication required"))

		return nil, false
	}

	return id, true
}

// respondError 将业务错误映射为 HTTP 响应，5xx 时记录底层原因.
func respondError(c *gin.Context, err error) {
	apiErr := types.AsAPIError(err)

	if apiErr.HTTPStatus >= http.StatusInternalServerError {
		log.Logger().Error().Err(apiErr.Err).
			Str("path", c.Request.URL.Path).
			Str("code", apiErr.Code).
			Msg(apiErr.Message)
	}

	c.JSON(apiErr.HTTPStatus, types.Fail(apiErr.Code, apiErr.Message))
}

// formUpload 从 multipart 表单取一个文件，字段缺失返回 (nil, nil).
func formUpload(c *gin.Context, field string) (*service.Upload, error) {
	header, err := c.FormFile(field)
	if err != nil {
		if err == http.ErrMissingFile || err == http.ErrNotMultipart {
			return nil, nil
		}

		return nil, types.ErrValidation(types.CodeValidation, "invalid multipart form")
	}

	return uploadFromHeader(header), nil
}

func uploadFromHeader(header *multipart.FileHeader) *service.Upload {
	return &service.Upload{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Open: func() (io.ReadCloser, error) {
			return header.Open()
		},
	}
}
