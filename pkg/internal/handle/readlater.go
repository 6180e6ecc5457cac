package handle

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/bacasendiri/pkg/internal/service"
	"github.com/yeisme/bacasendiri/pkg/internal/types"
)

// AddReadLater 将故事加入稍后阅读列表，表单字段 storyId.
func AddReadLater(c *gin.Context) {
	id, ok := currentIdentity(c)
	if !ok {
		return
	}

	var req types.AddReadLaterRequest
	if err := c.ShouldBind(&req); err != nil || req.StoryID == 0 {
		c.JSON(http.StatusBadRequest, types.Fail(types.CodeMissingData, "storyId is required"))

		return
	}

	svc := service.NewReadLaterService(c.Request.Context())

	item, err := svc.Add(c.Request.Context(), id, req.StoryID)
	if err != nil {
		respondError(c, err)

		return
	}

	c.JSON(http.StatusCreated, types.OK("story added to read later list", item))
}

// ListReadLater 当前用户的稍后阅读列表.
func ListReadLater(c *gin.Context) {
	id, ok := currentIdentity(c)
	if !ok {
		return
	}

	svc := service.NewReadLaterService(c.Request.Context())

	items, err := svc.List(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)

		return
	}

	c.JSON(http.StatusOK, types.OK("read later list fetched", items))
}

// RemoveReadLater 按条目 id（加入/列表返回的 id）移出稍后阅读列表.
func RemoveReadLater(c *gin.Context) {
	id, ok := currentIdentity(c)
	if !ok {
		return
	}

	itemID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusNotFound, types.Fail(types.CodeNotFound, "read later item not found"))

		return
	}

	svc := service.NewReadLaterService(c.Request.Context())

	if err := svc.Remove(c.Request.Context(), id, uint(itemID)); err != nil {
		respondError(c, err)

		return
	}

	c.JSON(http.StatusOK, types.OK("story removed from read later list", nil))
}
