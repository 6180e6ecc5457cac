package handle

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/bacasendiri/pkg/internal/service"
	"github.com/yeisme/bacasendiri/pkg/internal/types"
	"github.com/yeisme/bacasendiri/pkg/log"
	"github.com/yeisme/bacasendiri/pkg/rule"
)

// Register 注册用户，头像(file)可选.
func Register(c *gin.Context) {
	var req types.RegisterRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.Fail(types.CodeMissingData, "name, email and password are required"))

		return
	}

	if err := rule.ValidateStruct(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.Fail(types.CodeValidation, err.Error()))

		return
	}

	pictureUp, err := formUpload(c, fieldPicture)
	if err != nil {
		respondError(c, err)

		return
	}

	svc := service.NewUserService(c.Request.Context())

	user, err := svc.Register(c.Request.Context(), req, pictureUp)
	if err != nil {
		respondError(c, err)

		return
	}

	log.Logger().Info().Str("email", user.Email).Msg("user registered")

	c.JSON(http.StatusCreated, types.OK("user registered", user))
}

// Login 登录并签发令牌.
func Login(c *gin.Context) {
	var req types.LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.Fail(types.CodeMissingData, "email and password are required"))

		return
	}

	svc := service.NewUserService(c.Request.Context())

	res, err := svc.Login(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)

		return
	}

	c.JSON(http.StatusOK, types.OK("login successful", res))
}

// Profile 按令牌返回当前用户资料.
func Profile(c *gin.Context) {
	id, ok := currentIdentity(c)
	if !ok {
		return
	}

	svc := service.NewUserService(c.Request.Context())

	user, err := svc.Profile(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)

		return
	}

	c.JSON(http.StatusOK, types.OK("profile fetched", user))
}

// SearchUsers 按名字子串搜索用户.
func SearchUsers(c *gin.Context) {
	if _, ok := currentIdentity(c); !ok {
		return
	}

	svc := service.NewUserService(c.Request.Context())

	users, err := svc.Search(c.Request.Context(), c.Query("search"))
	if err != nil {
		respondError(c, err)

		return
	}

	c.JSON(http.StatusOK, types.OK("users fetched", users))
}

// UpdateUser 更新用户资料：本人或管理员.
func UpdateUser(c *gin.Context) {
	id, ok := currentIdentity(c)
	if !ok {
		return
	}

	var req types.UpdateUserRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.Fail(types.CodeValidation, "invalid request"))

		return
	}

	svc := service.NewUserService(c.Request.Context())

	user, err := svc.Update(c.Request.Context(), id, c.Param("id"), req)
	if err != nil {
		respondError(c, err)

		return
	}

	c.JSON(http.StatusOK, types.OK("user updated", user))
}

// UpdateProfilePicture 替换头像，字段名 file.
func UpdateProfilePicture(c *gin.Context) {
	id, ok := currentIdentity(c)
	if !ok {
		return
	}

	pictureUp, err := formUpload(c, fieldPicture)
	if err != nil {
		respondError(c, err)

		return
	}

	if pictureUp == nil {
		c.JSON(http.StatusBadRequest, types.Fail(types.CodeMissingData, "profile picture file is required"))

		return
	}

	svc := service.NewUserService(c.Request.Context())

	user, err := svc.UpdatePicture(c.Request.Context(), id, c.Param("id"), pictureUp)
	if err != nil {
		respondError(c, err)

		return
	}

	c.JSON(http.StatusOK, types.OK("profile picture updated", user))
}

// DeleteUser 删除用户：本人或管理员.
func DeleteUser(c *gin.Context) {
	id, ok := currentIdentity(c)
	if !ok {
		return
	}

	svc := service.NewUserService(c.Request.Context())

	if err := svc.Delete(c.Request.Context(), id, c.Param("id")); err != nil {
		respondError(c, err)

		return
	}

	c.JSON(http.StatusOK, types.OK("user deleted", nil))
}
