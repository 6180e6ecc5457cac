package service

import (
	"context"
	"strconv"
	"testing"

	"github.com/yeisme/bacasendiri/pkg/internal/model"
	"github.com/yeisme/bacasendiri/pkg/internal/types"
)

func TestReadLaterAddListRemove(t *testing.T) {
	env := newTestEnv(t)
	storySvc := env.storyService()
	rlSvc := env.readLaterService()

	_, author := env.seedUser(t, "alice", "user")
	_, reader := env.seedUser(t, "bob", "user")

	res, err := storySvc.Create(context.Background(), author, storyRequest(), pngUpload(), txtUpload("x"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	item, err := rlSvc.Add(context.Background(), reader, res.Story.ID)
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	if item.StoryID != res.Story.ID || item.Story.Title != res.Story.Title {
		t.Errorf("item = %+v", item)
	}

	list, err := rlSvc.List(context.Background(), reader)
	if err != nil || len(list) != 1 {
		t.Fatalf("List = %d items, err %v", len(list), err)
	}

	if list[0].Story.ThumbnailURL == "" {
		t.Error("list item must carry the story thumbnail url")
	}

	if err := rlSvc.Remove(context.Background(), reader, item.ID); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}

	list, err = rlSvc.List(context.Background(), reader)
	if err != nil || len(list) != 0 {
		t.Errorf("List after remove = %d items, err %v", len(list), err)
	}
}

func TestReadLaterDuplicate(t *testing.T) {
	env := newTestEnv(t)
	storySvc := env.storyService()
	rlSvc := env.readLaterService()

	_, author := env.seedUser(t, "alice", "user")
	_, reader := env.seedUser(t, "bob", "user")

	res, err := storySvc.Create(context.Background(), author, storyRequest(), pngUpload(), txtUpload("x"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if _, err := rlSvc.Add(context.Background(), reader, res.Story.ID); err != nil {
		t.Fatalf("first Add failed: %v", err)
	}

	_, err = rlSvc.Add(context.Background(), reader, res.Story.ID)
	if types.AsAPIError(err).Code != types.CodeAlreadyExists {
		t.Errorf("duplicate add must conflict, got %v", err)
	}

	var count int64
	env.db.Model(&model.ReadLaterItem{}).Count(&count)

	if count != 1 {
		t.Errorf("read later rows = %d, want 1", count)
	}
}

func TestReadLaterSameStoryTwoUsers(t *testing.T) {
	env := newTestEnv(t)
	storySvc := env.storyService()
	rlSvc := env.readLaterService()

	_, author := env.seedUser(t, "alice", "user")
	_, bob := env.seedUser(t, "bob", "user")
	_, carol := env.seedUser(t, "carol", "user")

	res, err := storySvc.Create(context.Background(), author, storyRequest(), pngUpload(), txtUpload("x"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	// 唯一性按 (user, story) 组合，不同用户互不影响
	if _, err := rlSvc.Add(context.Background(), bob, res.Story.ID); err != nil {
		t.Errorf("bob Add failed: %v", err)
	}

	if _, err := rlSvc.Add(context.Background(), carol, res.Story.ID); err != nil {
		t.Errorf("carol Add failed: %v", err)
	}
}

func TestReadLaterRemoveByItemID(t *testing.T) {
	env := newTestEnv(t)
	storySvc := env.storyService()
	rlSvc := env.readLaterService()

	_, author := env.seedUser(t, "alice", "user")
	_, reader := env.seedUser(t, "bob", "user")

	// 先发两个故事，只收藏第二个，让条目 id 和故事 id 错开
	if _, err := storySvc.Create(context.Background(), author, storyRequest(), pngUpload(), txtUpload("x")); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	second, err := storySvc.Create(context.Background(), author, storyRequest(), pngUpload(), txtUpload("y"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	item, err := rlSvc.Add(context.Background(), reader, second.Story.ID)
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	if item.ID == second.Story.ID {
		t.Fatalf("fixture ids must diverge: item %d, story %d", item.ID, second.Story.ID)
	}

	// 删除按加入时返回的条目 id，而不是故事 id
	if err := rlSvc.Remove(context.Background(), reader, item.ID); err != nil {
		t.Fatalf("Remove by item id failed: %v", err)
	}

	list, err := rlSvc.List(context.Background(), reader)
	if err != nil || len(list) != 0 {
		t.Errorf("List after remove = %d items, err %v", len(list), err)
	}
}

func TestReadLaterRemoveOtherUsersItem(t *testing.T) {
	env := newTestEnv(t)
	storySvc := env.storyService()
	rlSvc := env.readLaterService()

	_, author := env.seedUser(t, "alice", "user")
	_, bob := env.seedUser(t, "bob", "user")
	_, carol := env.seedUser(t, "carol", "user")

	res, err := storySvc.Create(context.Background(), author, storyRequest(), pngUpload(), txtUpload("x"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	item, err := rlSvc.Add(context.Background(), bob, res.Story.ID)
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	// 条目只有本人能删
	if err := rlSvc.Remove(context.Background(), carol, item.ID); types.AsAPIError(err).HTTPStatus != 404 {
		t.Errorf("removing another user's item must 404, got %v", err)
	}

	list, err := rlSvc.List(context.Background(), bob)
	if err != nil || len(list) != 1 {
		t.Errorf("bob's list = %d items, err %v", len(list), err)
	}
}

func TestReadLaterMissingStory(t *testing.T) {
	env := newTestEnv(t)
	rlSvc := env.readLaterService()
	_, reader := env.seedUser(t, "bob", "user")

	_, err := rlSvc.Add(context.Background(), reader, 9999)
	if types.AsAPIError(err).HTTPStatus != 404 {
		t.Errorf("missing story must 404, got %v", err)
	}

	if _, err := rlSvc.Add(context.Background(), reader, 0); types.AsAPIError(err).Code != types.CodeMissingData {
		t.Errorf("zero story id must be MISSING_DATA, got %v", err)
	}

	if err := rlSvc.Remove(context.Background(), reader, 9999); types.AsAPIError(err).HTTPStatus != 404 {
		t.Errorf("remove of absent item must 404, got %v", err)
	}
}

func TestDeleteStoryCascadesReadLater(t *testing.T) {
	env := newTestEnv(t)
	storySvc := env.storyService()
	rlSvc := env.readLaterService()

	_, author := env.seedUser(t, "alice", "user")
	_, reader := env.seedUser(t, "bob", "user")

	res, err := storySvc.Create(context.Background(), author, storyRequest(), pngUpload(), txtUpload("x"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if _, err := rlSvc.Add(context.Background(), reader, res.Story.ID); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	idParam := strconv.FormatUint(uint64(res.Story.ID), 10)
	if err := storySvc.Delete(context.Background(), author, idParam); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	var count int64
	env.db.Model(&model.ReadLaterItem{}).Count(&count)

	if count != 0 {
		t.Errorf("read later rows after story delete = %d, want 0", count)
	}
}
