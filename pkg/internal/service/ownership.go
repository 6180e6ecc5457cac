package service

import (
	"github.com/yeisme/bacasendiri/pkg/auth"
	"github.com/yeisme/bacasendiri/pkg/internal/model"
)

// CanMutate 删除路径的权限：作者本人或管理员.
func CanMutate(current *model.User, story *model.Story) bool {
	if current == nil || story == nil {
		return false
	}

	if current.Role == auth.RoleAdmin {
		return true
	}

	return current.ID == story.UserID
}

// CanEdit 更新路径的权限：仅作者本人，管理员也不行.
func CanEdit(current *model.User, story *model.Story) bool {
	if current == nil || story == nil {
		return false
	}

	return current.ID == story.UserID
}
