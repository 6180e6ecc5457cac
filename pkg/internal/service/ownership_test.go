package service

import (
	"testing"

	"github.com/yeisme/bacasendiri/pkg/internal/model"
)

func TestOwnershipTruthTable(t *testing.T) {
	owner := &model.User{ID: 1, Role: "user"}
	other := &model.User{ID: 2, Role: "user"}
	admin := &model.User{ID: 3, Role: "admin"}
	story := &model.Story{ID: 10, UserID: 1}

	cases := []struct {
		name      string
		user      *model.User
		canMutate bool
		canEdit   bool
	}{
		{"owner", owner, true, true},
		{"other user", other, false, false},
		{"admin non-owner", admin, true, false},
		{"nil user", nil, false, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := CanMutate(tc.user, story); got != tc.canMutate {
				t.Errorf("CanMutate = %v, want %v", got, tc.canMutate)
			}

			if got := CanEdit(tc.user, story); got != tc.canEdit {
				t.Errorf("CanEdit = %v, want %v", got, tc.canEdit)
			}
		})
	}
}

func TestOwnershipNilStory(t *testing.T) {
	admin := &model.User{ID: 3, Role: "admin"}

	if CanMutate(admin, nil) || CanEdit(admin, nil) {
		t.Error("nil story must never be mutable")
	}
}

func TestAdminOwnedStoryEditable(t *testing.T) {
	admin := &model.User{ID: 3, Role: "admin"}
	own := &model.Story{ID: 11, UserID: 3}

	if !CanEdit(admin, own) {
		t.Error("admin must be able to edit their own story")
	}
}
