package handle

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/bacasendiri/pkg/internal/service"
	"github.com/yeisme/bacasendiri/pkg/internal/types"
	"github.com/yeisme/bacasendiri/pkg/log"
	"github.com/yeisme/bacasendiri/pkg/rule"
)

// CreateStory 上传故事：multipart 表单，文本字段 + 封面(thumbnail) + 正文文件(content).
func CreateStory(c *gin.Context) {
	storyLog := log.Logger()

	id, ok := currentIdentity(c)
	if !ok {
		return
	}

	var req types.CreateStoryRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.Fail(types.CodeMissingData, "title, author and description are required"))

		return
	}

	if err := rule.ValidateStruct(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.Fail(types.CodeMissingData, err.Error()))

		return
	}

	thumbUp, err := formUpload(c, fieldThumbnail)
	if err != nil {
		respondError(c, err)

		return
	}

	contentUp, err := formUpload(c, fieldContent)
	if err != nil {
		respondError(c, err)

		return
	}

	svc := service.NewStoryService(c.Request.Context())

	res, err := svc.Create(c.Request.Context(), id, req, thumbUp, contentUp)
	if err != nil {
		respondError(c, err)

		return
	}

	storyLog.Info().
		Uint("story_id", res.Story.ID).
		Str("title", res.Story.Title).
		Bool("truncated", res.WasTruncated).
		Int("content_length", res.ContentLength).
		Msg("story created")

	c.JSON(http.StatusCreated, types.OK("story created", res))
}

// ListStories 浏览故事，search 参数对标题/作者做子串匹配.
func ListStories(c *gin.Context) {
	svc := service.NewStoryService(c.Request.Context())

	stories, err := svc.List(c.Request.Context(), c.Query("search"))
	if err != nil {
		respondError(c, err)

		return
	}

	c.JSON(http.StatusOK, types.OK("stories fetched", stories))
}

// ReadStory 公开阅读接口，返回完整正文.
func ReadStory(c *gin.Context) {
	svc := service.NewStoryService(c.Request.Context())

	story, err := svc.Read(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)

		return
	}

	c.JSON(http.StatusOK, types.OK("story fetched", story))
}

// MyStories 当前用户的作品列表.
func MyStories(c *gin.Context) {
	id, ok := currentIdentity(c)
	if !ok {
		return
	}

	svc := service.NewStoryService(c.Request.Context())

	stories, err := svc.Mine(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)

		return
	}

	c.JSON(http.StatusOK, types.OK("stories fetched", stories))
}

// UpdateStory 部分更新：文本字段与文件均可选.
func UpdateStory(c *gin.Context) {
	id, ok := currentIdentity(c)
	if !ok {
		return
	}

	var req types.UpdateStoryRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.Fail(types.CodeValidation, "invalid request"))

		return
	}

	thumbUp, err := formUpload(c, fieldThumbnail)
	if err != nil {
		respondError(c, err)

		return
	}

	contentUp, err := formUpload(c, fieldContent)
	if err != nil {
		respondError(c, err)

		return
	}

	svc := service.NewStoryService(c.Request.Context())

	story, err := svc.Update(c.Request.Context(), id, c.Param("id"), req, thumbUp, contentUp)
	if err != nil {
		respondError(c, err)

		return
	}

	c.JSON(http.StatusOK, types.OK("story updated", story))
}

// DeleteStory 删除故事及其文件.
func DeleteStory(c *gin.Context) {
	id, ok := currentIdentity(c)
	if !ok {
		return
	}

	svc := service.NewStoryService(c.Request.Context())

	if err := svc.Delete(c.Request.Context(), id, c.Param("id")); err != nil {
		respondError(c, err)

		return
	}

	c.JSON(http.StatusOK, types.OK("story deleted", nil))
}
